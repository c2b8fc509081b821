package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// --- Domain Specific Errors ---

var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("entity not found")
	// ErrForbidden indicates that the caller is not authorized to perform the action.
	ErrForbidden = errors.New("action forbidden")
	// ErrInvalidInput indicates that the provided input data is invalid.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrAlreadyReviewed indicates that a member has already reviewed a product.
	ErrAlreadyReviewed = errors.New("review already exists for this member and product")
	// ErrAlreadyLiked indicates that a member has already liked a review.
	ErrAlreadyLiked = errors.New("review already liked by this member")
	// ErrNeverLiked indicates that there is no like to cancel.
	ErrNeverLiked = errors.New("review was never liked by this member")
	// ErrAlreadyReported indicates that a member has already reported a review.
	ErrAlreadyReported = errors.New("review already reported by this member")
	// ErrRepository indicates a generic data persistence error.
	ErrRepository = errors.New("repository error")
)

// AdminRole is the role claim that grants moderation rights.
const AdminRole = "ADMIN"

// MaxCommentLength bounds review comments and report reasons.
const MaxCommentLength = 255

// --- Review Entity ---

// Review is a member's rating-plus-comment for one product. At most one
// review exists per (product, member email) pair; the repository enforces
// the invariant with a unique index.
//
// LikeCount is a denormalized cache over Like existence and must track it;
// it is adjusted only through the store's atomic counter operation.
type Review struct {
	ID          int64
	Email       string
	ProductID   int64
	ProductName string
	Rating      int
	Comment     string
	LikeCount   int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// NewReview validates the input and builds an unsaved review. ID and
// CreatedAt are assigned by the repository on insert.
func NewReview(email string, productID int64, productName, comment string, rating int) (*Review, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", ErrInvalidInput)
	}
	if productID <= 0 {
		return nil, fmt.Errorf("%w: productID must be positive", ErrInvalidInput)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	if len(comment) > MaxCommentLength {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", ErrInvalidInput, MaxCommentLength)
	}
	return &Review{
		Email:       email,
		ProductID:   productID,
		ProductName: productName,
		Rating:      rating,
		Comment:     comment,
	}, nil
}

// ReviewPatch carries a partial update. Each field is independently
// optional; nil means "leave unchanged".
type ReviewPatch struct {
	Comment *string
	Rating  *int
}

// Empty reports whether the patch changes nothing.
func (p ReviewPatch) Empty() bool {
	return p.Comment == nil && p.Rating == nil
}

// Validate checks the present fields against entity constraints.
func (p ReviewPatch) Validate() error {
	if p.Rating != nil && (*p.Rating < 1 || *p.Rating > 5) {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	if p.Comment != nil && len(*p.Comment) > MaxCommentLength {
		return fmt.Errorf("%w: comment exceeds %d characters", ErrInvalidInput, MaxCommentLength)
	}
	return nil
}

// ReviewWithLike is a review annotated with whether the calling member
// has liked it.
type ReviewWithLike struct {
	Review  *Review
	LikedBy bool
}

// --- Query Period ---

// Period selects the trailing window for a member's own review listing.
type Period string

const (
	PeriodToday       Period = "1d"
	PeriodOneMonth    Period = "1m"
	PeriodThreeMonths Period = "3m"
	PeriodSixMonths   Period = "6m"
	PeriodFiveYears   Period = "5y"
)

// Window maps the period onto a half-open interval
// [window start at local midnight, tomorrow at local midnight).
// Unrecognized values fall back to the five-year window.
func (p Period) Window(now time.Time) (start, end time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodToday:
		start = today
	case PeriodOneMonth:
		start = today.AddDate(0, -1, 0)
	case PeriodThreeMonths:
		start = today.AddDate(0, -3, 0)
	case PeriodSixMonths:
		start = today.AddDate(0, -6, 0)
	default: // PeriodFiveYears and anything unrecognized
		start = today.AddDate(-5, 0, 0)
	}
	return start, today.AddDate(0, 0, 1)
}
