package domain

import (
	"fmt"
	"strings"
	"time"
)

// Like is a member's endorsement mark on a review. Existence is the sole
// source of truth for "has this member liked this review"; the review's
// LikeCount merely caches the count. At most one like exists per
// (review, member email) pair.
type Like struct {
	ID        int64
	ReviewID  int64
	Email     string
	CreatedAt time.Time
}

// NewLike validates the input and builds an unsaved like.
func NewLike(reviewID int64, email string) (*Like, error) {
	if reviewID <= 0 {
		return nil, fmt.Errorf("%w: reviewID must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", ErrInvalidInput)
	}
	return &Like{ReviewID: reviewID, Email: email}, nil
}
