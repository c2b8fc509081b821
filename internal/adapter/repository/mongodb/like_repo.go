package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/inkcloud/review-service/internal/domain"
	"github.com/inkcloud/review-service/internal/platform/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	likeCollectionName = "review_likes"
	likeSequenceName   = "review_like_id"
)

// LikeRepository implements domain.LikeRepository using MongoDB. The
// unique (review_id, email) index deduplicates likes and serializes
// concurrent like attempts for the same pair.
type LikeRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewLikeRepository creates the repository and ensures its indexes.
func NewLikeRepository(db *mongo.Database, log *logger.Logger) (*LikeRepository, error) {
	collection := db.Collection(likeCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "review_id", Value: 1}, {Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for review_likes collection", zap.Error(err))
	}

	return &LikeRepository{
		db:         db,
		collection: collection,
		logger:     log.Named("LikeRepository"),
	}, nil
}

// Create inserts a new like, assigning a sequence id and the creation
// timestamp.
func (r *LikeRepository) Create(ctx context.Context, like *domain.Like) error {
	id, err := nextSequence(ctx, r.db, likeSequenceName)
	if err != nil {
		return fmt.Errorf("db sequence failed: %w", err)
	}
	like.ID = id
	like.CreatedAt = time.Now()

	doc := &likeDocument{
		ID:        like.ID,
		ReviewID:  like.ReviewID,
		Email:     like.Email,
		CreatedAt: like.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate like",
				zap.Int64("review_id", like.ReviewID),
				zap.String("email", like.Email))
			return domain.ErrAlreadyLiked
		}
		return fmt.Errorf("db insert failed: %w", err)
	}
	return nil
}

// DeleteByReviewAndEmail removes the member's like on a review.
func (r *LikeRepository) DeleteByReviewAndEmail(ctx context.Context, reviewID int64, email string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"review_id": reviewID, "email": email})
	if err != nil {
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNeverLiked
	}
	return nil
}

// FindReviewIDsByEmail lists the ids of reviews the member has liked.
func (r *LikeRepository) FindReviewIDsByEmail(ctx context.Context, email string) ([]int64, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*likeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	ids := make([]int64, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ReviewID
	}
	return ids, nil
}
