package domain

import (
	"context"
	"time"
)

// ReviewPage is one page of an admin review search result.
type ReviewPage struct {
	Items []*Review
	Total int64
	Page  int
	Size  int
}

// ReportPage is one page of an admin report search result.
type ReportPage struct {
	Items []*ReportView
	Total int64
	Page  int
	Size  int
}

// ReviewRepository defines the persistence interface for reviews.
// Implementations translate storage errors into the domain sentinels:
// duplicate (product, email) pairs surface as ErrAlreadyReviewed and
// missing documents as ErrNotFound.
type ReviewRepository interface {
	// Create inserts the review, assigning its ID and CreatedAt.
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id int64) (*Review, error)
	// FindByProductAndEmail returns ErrNotFound when the member has not
	// reviewed the product.
	FindByProductAndEmail(ctx context.Context, productID int64, email string) (*Review, error)
	FindAllByProduct(ctx context.Context, productID int64) ([]*Review, error)
	// FindByEmailBetween returns the member's reviews created inside the
	// half-open interval [start, end).
	FindByEmailBetween(ctx context.Context, email string, start, end time.Time) ([]*Review, error)
	// Update persists comment, rating and the modification timestamp.
	Update(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id int64) error
	// AdjustLikeCount applies an atomic counter delta. A decrement on a
	// zero counter is a no-op; the counter never goes negative.
	AdjustLikeCount(ctx context.Context, id int64, delta int) error
	// AverageRating returns the mean rating and review count for a product;
	// (0, 0) when the product has no reviews.
	AverageRating(ctx context.Context, productID int64) (float64, int64, error)
	// Search executes the filter, ordered by creation time descending.
	Search(ctx context.Context, filter ReviewSearchFilter) ([]*Review, int64, error)
}

// LikeRepository defines the persistence interface for review likes.
type LikeRepository interface {
	// Create inserts the like, assigning its ID and CreatedAt. A duplicate
	// (review, email) pair surfaces as ErrAlreadyLiked.
	Create(ctx context.Context, like *Like) error
	// DeleteByReviewAndEmail removes the member's like; ErrNeverLiked when
	// no such like exists.
	DeleteByReviewAndEmail(ctx context.Context, reviewID int64, email string) error
	// FindReviewIDsByEmail lists the ids of reviews the member has liked.
	FindReviewIDsByEmail(ctx context.Context, email string) ([]int64, error)
}

// ReportRepository defines the persistence interface for abuse reports.
type ReportRepository interface {
	// Create inserts the report, assigning its ID and ReportedAt. A
	// duplicate (review, reporter) pair surfaces as ErrAlreadyReported.
	Create(ctx context.Context, report *Report) error
	Delete(ctx context.Context, id int64) error
	FindAllByReview(ctx context.Context, reviewID int64) ([]*Report, error)
	// Search executes the filter, ordered by report time descending.
	Search(ctx context.Context, filter ReportSearchFilter) ([]*Report, int64, error)
}

// --- Rating Events ---

// RatingEventType discriminates the rating-change event payload.
type RatingEventType string

const (
	RatingEventCreated RatingEventType = "created"
	RatingEventUpdated RatingEventType = "updated"
	RatingEventDeleted RatingEventType = "deleted"
)

// RatingEvent notifies downstream aggregators that a product's
// rating-relevant data changed. Rating and OldRating are nil when absent:
// created events carry no OldRating, deleted events no Rating.
type RatingEvent struct {
	Type      RatingEventType `json:"type"`
	ProductID int64           `json:"productId"`
	Rating    *int            `json:"rating,omitempty"`
	OldRating *int            `json:"oldRating,omitempty"`
}

// RatingEventPublisher delivers rating-change events at least once.
// Publishing is best-effort relative to the store mutation: a failure is
// logged by the caller and never rolls the mutation back.
type RatingEventPublisher interface {
	PublishRatingChange(ctx context.Context, event RatingEvent) error
}
