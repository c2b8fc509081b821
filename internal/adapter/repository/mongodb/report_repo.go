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
	reportCollectionName = "review_reports"
	reportSequenceName   = "review_report_id"
)

// ReportRepository implements domain.ReportRepository using MongoDB. The
// unique (review_id, reporter_email) index deduplicates reports. The
// review_id field is a weak reference: reports survive the review's
// deletion.
type ReportRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewReportRepository creates the repository and ensures its indexes.
func NewReportRepository(db *mongo.Database, log *logger.Logger) (*ReportRepository, error) {
	collection := db.Collection(reportCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "review_id", Value: 1}, {Key: "reporter_email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "reported_at", Value: -1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for review_reports collection", zap.Error(err))
	}

	return &ReportRepository{
		db:         db,
		collection: collection,
		logger:     log.Named("ReportRepository"),
	}, nil
}

// Create inserts a new report, assigning a sequence id and the report
// timestamp.
func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	id, err := nextSequence(ctx, r.db, reportSequenceName)
	if err != nil {
		return fmt.Errorf("db sequence failed: %w", err)
	}
	report.ID = id
	report.ReportedAt = time.Now()

	doc := &reportDocument{
		ID:            report.ID,
		ReviewID:      report.ReviewID,
		ReporterEmail: report.ReporterEmail,
		Type:          string(report.Type),
		Reason:        report.Reason,
		ReportedAt:    report.ReportedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate report",
				zap.Int64("review_id", report.ReviewID),
				zap.String("reporter", report.ReporterEmail))
			return domain.ErrAlreadyReported
		}
		return fmt.Errorf("db insert failed: %w", err)
	}
	return nil
}

// Delete removes a report by id.
func (r *ReportRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindAllByReview lists all reports filed against one review, most recent
// first.
func (r *ReportRepository) FindAllByReview(ctx context.Context, reviewID int64) ([]*domain.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "reported_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"review_id": reviewID}, opts)
	if err != nil {
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	reports := make([]*domain.Report, len(docs))
	for i, doc := range docs {
		reports[i] = doc.toDomain()
	}
	return reports, nil
}

// Search executes the admin filter, most recent first, returning one page
// and the total match count.
func (r *ReportRepository) Search(ctx context.Context, filter domain.ReportSearchFilter) ([]*domain.Report, int64, error) {
	query, err := buildReportSearchQuery(filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "reported_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.Page) * int64(filter.Size)).
		SetLimit(int64(filter.Size))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("db cursor all failed: %w", err)
	}
	reports := make([]*domain.Report, len(docs))
	for i, doc := range docs {
		reports[i] = doc.toDomain()
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("db count failed: %w", err)
	}
	return reports, total, nil
}
