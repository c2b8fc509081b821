package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/inkcloud/review-service/internal/domain"
	"github.com/inkcloud/review-service/internal/platform/logger"
	"go.uber.org/zap"
)

// ReviewUsecase implements the review lifecycle: creation with
// one-review-per-product-per-member semantics, listings, partial updates,
// batch deletion, the admin search, and rating-change event emission.
type ReviewUsecase struct {
	reviews domain.ReviewRepository
	likes   domain.LikeRepository
	events  domain.RatingEventPublisher
	logger  *logger.Logger
	now     func() time.Time
}

// NewReviewUsecase creates a new ReviewUsecase.
func NewReviewUsecase(reviews domain.ReviewRepository, likes domain.LikeRepository, events domain.RatingEventPublisher, log *logger.Logger) *ReviewUsecase {
	return &ReviewUsecase{
		reviews: reviews,
		likes:   likes,
		events:  events,
		logger:  log.Named("ReviewUsecase"),
		now:     time.Now,
	}
}

// CreateReviewInput holds the input parameters for creating a review.
type CreateReviewInput struct {
	ProductID   int64
	ProductName string
	Rating      int
	Comment     string
}

// CreateResult reports the outcome of a create call. Created is false when
// the member had already reviewed the product; ReviewID then carries the
// existing review's id. "Already reviewed" is a normal outcome, not an
// error.
type CreateResult struct {
	Created  bool
	ReviewID int64
}

// Create stores a new review for (in.ProductID, email) unless one already
// exists, and emits a "created" rating event on success.
func (uc *ReviewUsecase) Create(ctx context.Context, in CreateReviewInput, email string) (CreateResult, error) {
	uc.logger.Info("Creating review",
		zap.String("email", email),
		zap.Int64("product_id", in.ProductID),
		zap.Int("rating", in.Rating))

	review, err := domain.NewReview(email, in.ProductID, in.ProductName, in.Comment, in.Rating)
	if err != nil {
		return CreateResult{}, err
	}

	existing, err := uc.reviews.FindByProductAndEmail(ctx, in.ProductID, email)
	switch {
	case err == nil:
		return CreateResult{Created: false, ReviewID: existing.ID}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return CreateResult{}, fmt.Errorf("%w: duplicate lookup failed: %v", domain.ErrRepository, err)
	}

	if err := uc.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, domain.ErrAlreadyReviewed) {
			// Lost a race against a concurrent create for the same pair;
			// report the winner's id as the existing review.
			if winner, lookupErr := uc.reviews.FindByProductAndEmail(ctx, in.ProductID, email); lookupErr == nil {
				return CreateResult{Created: false, ReviewID: winner.ID}, nil
			}
			return CreateResult{}, err
		}
		uc.logger.Error("Failed to save review", zap.Error(err))
		return CreateResult{}, fmt.Errorf("%w: failed to create review: %v", domain.ErrRepository, err)
	}

	uc.publish(ctx, domain.RatingEvent{
		Type:      domain.RatingEventCreated,
		ProductID: review.ProductID,
		Rating:    intPtr(review.Rating),
	})

	uc.logger.Info("Review created", zap.Int64("review_id", review.ID))
	return CreateResult{Created: true, ReviewID: review.ID}, nil
}

// ListByProduct returns all reviews for a product together with the
// product's average rating (0 when there are none).
func (uc *ReviewUsecase) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, float64, error) {
	reviews, err := uc.reviews.FindAllByProduct(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	average, _, err := uc.reviews.AverageRating(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	return reviews, average, nil
}

// ListByProductForMember returns a product's reviews, each annotated with
// whether the calling member has liked it.
func (uc *ReviewUsecase) ListByProductForMember(ctx context.Context, productID int64, email string) ([]domain.ReviewWithLike, error) {
	reviews, err := uc.reviews.FindAllByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	likedIDs, err := uc.likes.FindReviewIDsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	annotated := make([]domain.ReviewWithLike, len(reviews))
	for i, r := range reviews {
		annotated[i] = domain.ReviewWithLike{Review: r, LikedBy: slices.Contains(likedIDs, r.ID)}
	}
	return annotated, nil
}

// ListByAuthor returns the member's own reviews created inside the period's
// window. Unrecognized periods behave as the five-year window.
func (uc *ReviewUsecase) ListByAuthor(ctx context.Context, email string, period domain.Period) ([]*domain.Review, error) {
	start, end := period.Window(uc.now())
	uc.logger.Debug("Listing reviews by author",
		zap.String("email", email),
		zap.String("period", string(period)),
		zap.Time("window_start", start),
		zap.Time("window_end", end))
	return uc.reviews.FindByEmailBetween(ctx, email, start, end)
}

// Detail fetches one review. A non-empty requester must be the author; an
// empty requester marks an administrative caller and bypasses the check.
func (uc *ReviewUsecase) Detail(ctx context.Context, reviewID int64, requester string) (*domain.Review, error) {
	review, err := uc.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if requester != "" && review.Email != requester {
		uc.logger.Warn("Non-author denied review detail",
			zap.Int64("review_id", reviewID),
			zap.String("requester", requester))
		return nil, domain.ErrForbidden
	}
	return review, nil
}

// Update applies a partial patch to the requester's own review. A rating
// change emits exactly one "updated" event carrying old and new values; a
// rating equal to the stored one emits nothing. An empty patch is a no-op.
func (uc *ReviewUsecase) Update(ctx context.Context, reviewID int64, patch domain.ReviewPatch, requester string) (*domain.Review, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	review, err := uc.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Email != requester {
		uc.logger.Warn("Non-author denied review update",
			zap.Int64("review_id", reviewID),
			zap.String("requester", requester))
		return nil, domain.ErrForbidden
	}
	if patch.Empty() {
		return review, nil
	}

	var ratingChanged bool
	oldRating := review.Rating
	if patch.Comment != nil {
		review.Comment = *patch.Comment
	}
	if patch.Rating != nil && *patch.Rating != review.Rating {
		review.Rating = *patch.Rating
		ratingChanged = true
	}

	updatedAt := uc.now()
	review.UpdatedAt = &updatedAt
	if err := uc.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	if ratingChanged {
		uc.publish(ctx, domain.RatingEvent{
			Type:      domain.RatingEventUpdated,
			ProductID: review.ProductID,
			Rating:    intPtr(review.Rating),
			OldRating: intPtr(oldRating),
		})
	}

	uc.logger.Info("Review updated", zap.Int64("review_id", reviewID), zap.Bool("rating_changed", ratingChanged))
	return review, nil
}

// Delete removes reviews by id, emitting one "deleted" event per review.
// Authors may delete their own reviews; holders of the ADMIN role may
// delete any. Ids are processed in order and the batch fails fast: the
// first failure aborts it, and deletions already performed for earlier ids
// stay committed.
func (uc *ReviewUsecase) Delete(ctx context.Context, reviewIDs []int64, requester string, roles []string) error {
	isAdmin := slices.Contains(roles, domain.AdminRole)

	for _, id := range reviewIDs {
		review, err := uc.reviews.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if review.Email != requester && !isAdmin {
			uc.logger.Warn("Delete denied",
				zap.Int64("review_id", id),
				zap.String("requester", requester))
			return domain.ErrForbidden
		}

		uc.publish(ctx, domain.RatingEvent{
			Type:      domain.RatingEventDeleted,
			ProductID: review.ProductID,
			OldRating: intPtr(review.Rating),
		})

		if err := uc.reviews.Delete(ctx, id); err != nil {
			return err
		}
		uc.logger.Info("Review deleted", zap.Int64("review_id", id), zap.String("requester", requester))
	}
	return nil
}

// AdminSearch runs the dynamic filtered search over all reviews, newest
// first.
func (uc *ReviewUsecase) AdminSearch(ctx context.Context, filter domain.ReviewSearchFilter) (*domain.ReviewPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.Page, filter.Size = domain.NormalizePage(filter.Page, filter.Size)

	items, total, err := uc.reviews.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &domain.ReviewPage{Items: items, Total: total, Page: filter.Page, Size: filter.Size}, nil
}

func (uc *ReviewUsecase) publish(ctx context.Context, event domain.RatingEvent) {
	if err := uc.events.PublishRatingChange(ctx, event); err != nil {
		// Event delivery is decoupled from the store mutation; log and move on.
		uc.logger.Warn("Failed to publish rating event",
			zap.String("type", string(event.Type)),
			zap.Int64("product_id", event.ProductID),
			zap.Error(err))
	}
}

func intPtr(v int) *int { return &v }
