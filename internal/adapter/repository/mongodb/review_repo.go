package mongodb

import (
	"context"
	"errors"
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
	reviewCollectionName = "reviews"
	reviewSequenceName   = "review_id"
)

// ReviewRepository implements domain.ReviewRepository using MongoDB.
// The unique (product_id, email) index is the enforcement point for the
// one-review-per-product-per-member invariant; a concurrent duplicate
// insert loses there and surfaces as domain.ErrAlreadyReviewed.
type ReviewRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewReviewRepository creates the repository and ensures its indexes.
func NewReviewRepository(db *mongo.Database, log *logger.Logger) (*ReviewRepository, error) {
	collection := db.Collection(reviewCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Indexes may already exist or be managed out of band; log and continue.
		log.Error("Failed to create indexes for reviews collection", zap.Error(err))
	}

	return &ReviewRepository{
		db:         db,
		collection: collection,
		logger:     log.Named("ReviewRepository"),
	}, nil
}

// Create inserts a new review, assigning a sequence id and the creation
// timestamp.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	id, err := nextSequence(ctx, r.db, reviewSequenceName)
	if err != nil {
		return fmt.Errorf("db sequence failed: %w", err)
	}
	review.ID = id
	review.CreatedAt = time.Now()

	doc := fromDomainReview(review)
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate review for member and product",
				zap.Int64("product_id", review.ProductID),
				zap.String("email", review.Email))
			return domain.ErrAlreadyReviewed
		}
		return fmt.Errorf("db insert failed: %w", err)
	}
	r.logger.Debug("Review inserted", zap.Int64("review_id", id))
	return nil
}

// GetByID retrieves a review by its id.
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	var doc reviewDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByProductAndEmail looks up the member's review of a product.
func (r *ReviewRepository) FindByProductAndEmail(ctx context.Context, productID int64, email string) (*domain.Review, error) {
	var doc reviewDocument
	err := r.collection.FindOne(ctx, bson.M{"product_id": productID, "email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

// FindAllByProduct retrieves a product's reviews, newest first.
func (r *ReviewRepository) FindAllByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	return r.findAll(ctx, bson.M{"product_id": productID})
}

// FindByEmailBetween retrieves the member's reviews created in [start, end).
func (r *ReviewRepository) FindByEmailBetween(ctx context.Context, email string, start, end time.Time) ([]*domain.Review, error) {
	return r.findAll(ctx, bson.M{
		"email":      email,
		"created_at": bson.M{"$gte": start, "$lt": end},
	})
}

func (r *ReviewRepository) findAll(ctx context.Context, query bson.M) ([]*domain.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*reviewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	reviews := make([]*domain.Review, len(docs))
	for i, doc := range docs {
		reviews[i] = doc.toDomain()
	}
	return reviews, nil
}

// Update persists the mutable review fields.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": review.ID},
		bson.M{"$set": bson.M{
			"rating":     review.Rating,
			"comment":    review.Comment,
			"updated_at": review.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a review. Likes and reports referencing it are left in
// place; report presentation tolerates the dangling reference.
func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustLikeCount applies an atomic $inc to the like counter. Decrements
// are filtered on like_count > 0 so the counter can never go negative;
// a decrement that matches nothing on an existing review is a clamped
// no-op.
func (r *ReviewRepository) AdjustLikeCount(ctx context.Context, id int64, delta int) error {
	query := bson.M{"_id": id}
	if delta < 0 {
		query["like_count"] = bson.M{"$gt": 0}
	}
	result, err := r.collection.UpdateOne(ctx, query, bson.M{"$inc": bson.M{"like_count": delta}})
	if err != nil {
		return fmt.Errorf("db inc failed: %w", err)
	}
	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("db count failed: %w", err)
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		r.logger.Warn("Like counter already at floor, decrement skipped", zap.Int64("review_id", id))
	}
	return nil
}

// AverageRating computes the mean rating over a product's reviews.
func (r *ReviewRepository) AverageRating(ctx context.Context, productID int64) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "product_id", Value: productID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$product_id"},
			{Key: "average_rating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("db aggregate failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		AverageRating float64 `bson:"average_rating"`
		Count         int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, fmt.Errorf("db cursor all for aggregate failed: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].AverageRating, results[0].Count, nil
}

// Search executes the admin filter, newest first, returning one page and
// the total match count.
func (r *ReviewRepository) Search(ctx context.Context, filter domain.ReviewSearchFilter) ([]*domain.Review, int64, error) {
	query, err := buildReviewSearchQuery(filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.Page) * int64(filter.Size)).
		SetLimit(int64(filter.Size))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*reviewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("db cursor all failed: %w", err)
	}
	reviews := make([]*domain.Review, len(docs))
	for i, doc := range docs {
		reviews[i] = doc.toDomain()
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("db count failed: %w", err)
	}
	return reviews, total, nil
}
