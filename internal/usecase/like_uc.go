package usecase

import (
	"context"

	"github.com/inkcloud/review-service/internal/domain"
	"github.com/inkcloud/review-service/internal/platform/logger"
	"go.uber.org/zap"
)

// LikeUsecase toggles like marks on reviews and keeps the review's
// denormalized like counter in step with like existence. The like store's
// unique (review, member) index serializes concurrent toggles: only the
// insert that wins adjusts the counter, the loser observes the conflict.
type LikeUsecase struct {
	reviews domain.ReviewRepository
	likes   domain.LikeRepository
	logger  *logger.Logger
}

// NewLikeUsecase creates a new LikeUsecase.
func NewLikeUsecase(reviews domain.ReviewRepository, likes domain.LikeRepository, log *logger.Logger) *LikeUsecase {
	return &LikeUsecase{
		reviews: reviews,
		likes:   likes,
		logger:  log.Named("LikeUsecase"),
	}
}

// Like marks the review as liked by the member and increments the counter.
// ErrNotFound when the review is missing, ErrAlreadyLiked when the member
// has liked it before.
func (uc *LikeUsecase) Like(ctx context.Context, reviewID int64, email string) error {
	like, err := domain.NewLike(reviewID, email)
	if err != nil {
		return err
	}
	if _, err := uc.reviews.GetByID(ctx, reviewID); err != nil {
		return err
	}
	if err := uc.likes.Create(ctx, like); err != nil {
		return err
	}
	uc.logger.Info("Review liked", zap.Int64("review_id", reviewID), zap.String("email", email))
	return uc.reviews.AdjustLikeCount(ctx, reviewID, +1)
}

// Cancel removes the member's like and decrements the counter, which is
// clamped at zero even if it had drifted below the true like count.
// ErrNotFound when the review is missing, ErrNeverLiked when there is no
// like to cancel.
func (uc *LikeUsecase) Cancel(ctx context.Context, reviewID int64, email string) error {
	if _, err := uc.reviews.GetByID(ctx, reviewID); err != nil {
		return err
	}
	if err := uc.likes.DeleteByReviewAndEmail(ctx, reviewID, email); err != nil {
		return err
	}
	uc.logger.Info("Review like cancelled", zap.Int64("review_id", reviewID), zap.String("email", email))
	return uc.reviews.AdjustLikeCount(ctx, reviewID, -1)
}
