package mongodb

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/inkcloud/review-service/internal/domain"
	platformLogger "github.com/inkcloud/review-service/internal/platform/logger"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	testDB     *mongo.Database
	testLogger *platformLogger.Logger
)

// TestMain spins up a disposable MongoDB container. When Docker is not
// available testDB stays nil and the integration tests skip themselves;
// the pure query-builder tests in this package still run.
func TestMain(m *testing.M) {
	testLogger = &platformLogger.Logger{Logger: zap.NewNop()}

	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("Docker not available, skipping MongoDB integration tests: %s", err)
		os.Exit(m.Run())
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "5.0",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start MongoDB resource: %s", err)
	}

	mongoURI := fmt.Sprintf("mongodb://%s", resource.GetHostPort("27017/tcp"))

	var client *mongo.Client
	if err := pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		var connErr error
		client, connErr = mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
		if connErr != nil {
			return connErr
		}
		return client.Ping(ctx, nil)
	}); err != nil {
		log.Fatalf("Could not connect to MongoDB container: %s", err)
	}

	testDB = client.Database("review_service_test")

	code := m.Run()

	_ = client.Disconnect(context.Background())
	_ = pool.Purge(resource)
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("Docker not available")
	}
}

func freshReviewRepo(t *testing.T) *ReviewRepository {
	t.Helper()
	requireDB(t)
	require.NoError(t, testDB.Collection("reviews").Drop(context.Background()))
	require.NoError(t, testDB.Collection("counters").Drop(context.Background()))
	repo, err := NewReviewRepository(testDB, testLogger)
	require.NoError(t, err)
	return repo
}

func freshLikeRepo(t *testing.T) *LikeRepository {
	t.Helper()
	requireDB(t)
	require.NoError(t, testDB.Collection("review_likes").Drop(context.Background()))
	repo, err := NewLikeRepository(testDB, testLogger)
	require.NoError(t, err)
	return repo
}

func freshReportRepo(t *testing.T) *ReportRepository {
	t.Helper()
	requireDB(t)
	require.NoError(t, testDB.Collection("review_reports").Drop(context.Background()))
	repo, err := NewReportRepository(testDB, testLogger)
	require.NoError(t, err)
	return repo
}

func mustInsertReview(t *testing.T, repo *ReviewRepository, email string, productID int64, rating int) *domain.Review {
	t.Helper()
	review, err := domain.NewReview(email, productID, "Integration Widget", "solid", rating)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), review))
	require.NotZero(t, review.ID)
	return review
}

func TestReviewRepository_CreateAssignsSequentialIDs(t *testing.T) {
	repo := freshReviewRepo(t)

	first := mustInsertReview(t, repo, "a@b.c", 1, 5)
	second := mustInsertReview(t, repo, "d@e.f", 1, 3)
	assert.Greater(t, second.ID, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestReviewRepository_DuplicatePairRejected(t *testing.T) {
	repo := freshReviewRepo(t)
	mustInsertReview(t, repo, "a@b.c", 1, 5)

	dup, err := domain.NewReview("a@b.c", 1, "Integration Widget", "again", 2)
	require.NoError(t, err)
	err = repo.Create(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)

	// Same member, different product is fine.
	mustInsertReview(t, repo, "a@b.c", 2, 4)
}

func TestReviewRepository_GetAndFind(t *testing.T) {
	repo := freshReviewRepo(t)
	ctx := context.Background()
	created := mustInsertReview(t, repo, "a@b.c", 1, 5)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)
	assert.Equal(t, created.Rating, got.Rating)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	byPair, err := repo.FindByProductAndEmail(ctx, 1, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byPair.ID)

	_, err = repo.FindByProductAndEmail(ctx, 1, "nobody@b.c")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewRepository_FindAllByProduct_NewestFirst(t *testing.T) {
	repo := freshReviewRepo(t)
	ctx := context.Background()

	first := mustInsertReview(t, repo, "a@b.c", 7, 5)
	second := mustInsertReview(t, repo, "d@e.f", 7, 3)
	mustInsertReview(t, repo, "a@b.c", 8, 1)

	reviews, err := repo.FindAllByProduct(ctx, 7)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	// Insertion timestamps may collide; the id tiebreak keeps newest first.
	assert.Equal(t, second.ID, reviews[0].ID)
	assert.Equal(t, first.ID, reviews[1].ID)
}

func TestReviewRepository_UpdateAndDelete(t *testing.T) {
	repo := freshReviewRepo(t)
	ctx := context.Background()
	review := mustInsertReview(t, repo, "a@b.c", 1, 5)

	review.Rating = 2
	review.Comment = "changed my mind"
	now := time.Now()
	review.UpdatedAt = &now
	require.NoError(t, repo.Update(ctx, review))

	got, err := repo.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rating)
	assert.Equal(t, "changed my mind", got.Comment)
	require.NotNil(t, got.UpdatedAt)

	require.NoError(t, repo.Delete(ctx, review.ID))
	_, err = repo.GetByID(ctx, review.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, review.ID), domain.ErrNotFound)
}

func TestReviewRepository_AdjustLikeCountClampsAtZero(t *testing.T) {
	repo := freshReviewRepo(t)
	ctx := context.Background()
	review := mustInsertReview(t, repo, "a@b.c", 1, 5)

	require.NoError(t, repo.AdjustLikeCount(ctx, review.ID, +1))
	require.NoError(t, repo.AdjustLikeCount(ctx, review.ID, +1))
	require.NoError(t, repo.AdjustLikeCount(ctx, review.ID, -1))

	got, err := repo.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikeCount)

	require.NoError(t, repo.AdjustLikeCount(ctx, review.ID, -1))
	require.NoError(t, repo.AdjustLikeCount(ctx, review.ID, -1), "decrement at zero is a no-op")

	got, err = repo.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikeCount)

	assert.ErrorIs(t, repo.AdjustLikeCount(ctx, 9999, +1), domain.ErrNotFound)
}

func TestReviewRepository_AverageRating(t *testing.T) {
	repo := freshReviewRepo(t)
	ctx := context.Background()

	average, count, err := repo.AverageRating(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, average)
	assert.Zero(t, count)

	mustInsertReview(t, repo, "a@b.c", 7, 5)
	mustInsertReview(t, repo, "d@e.f", 7, 2)

	average, count, err = repo.AverageRating(ctx, 7)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, average, 1e-9)
	assert.Equal(t, int64(2), count)
}

func TestReviewRepository_Search(t *testing.T) {
	repo := freshReviewRepo(t)
	ctx := context.Background()

	mustInsertReview(t, repo, "alice@b.c", 1, 5)
	mustInsertReview(t, repo, "bob@b.c", 2, 2)
	mustInsertReview(t, repo, "carol@b.c", 3, 4)

	three := 3
	items, total, err := repo.Search(ctx, domain.ReviewSearchFilter{MinRating: &three, Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	items, total, err = repo.Search(ctx, domain.ReviewSearchFilter{Keyword: "ALICE", Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "alice@b.c", items[0].Email)

	items, total, err = repo.Search(ctx, domain.ReviewSearchFilter{Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 1)
}

func TestLikeRepository_UniquePair(t *testing.T) {
	likes := freshLikeRepo(t)
	ctx := context.Background()

	like, err := domain.NewLike(1, "fan@b.c")
	require.NoError(t, err)
	require.NoError(t, likes.Create(ctx, like))
	assert.NotZero(t, like.ID)

	dup, err := domain.NewLike(1, "fan@b.c")
	require.NoError(t, err)
	assert.ErrorIs(t, likes.Create(ctx, dup), domain.ErrAlreadyLiked)

	other, err := domain.NewLike(1, "other@b.c")
	require.NoError(t, err)
	require.NoError(t, likes.Create(ctx, other))

	ids, err := likes.FindReviewIDsByEmail(ctx, "fan@b.c")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	require.NoError(t, likes.DeleteByReviewAndEmail(ctx, 1, "fan@b.c"))
	assert.ErrorIs(t, likes.DeleteByReviewAndEmail(ctx, 1, "fan@b.c"), domain.ErrNeverLiked)
}

func TestReportRepository_UniquePairAndSearch(t *testing.T) {
	reports := freshReportRepo(t)
	ctx := context.Background()

	report, err := domain.NewReport(1, "r1@b.c", domain.ReportTypeSpam, "casino links")
	require.NoError(t, err)
	require.NoError(t, reports.Create(ctx, report))
	assert.NotZero(t, report.ID)
	assert.False(t, report.ReportedAt.IsZero())

	dup, err := domain.NewReport(1, "r1@b.c", domain.ReportTypeAbuse, "")
	require.NoError(t, err)
	assert.ErrorIs(t, reports.Create(ctx, dup), domain.ErrAlreadyReported)

	second, err := domain.NewReport(1, "r2@b.c", domain.ReportTypeAbuse, "insults")
	require.NoError(t, err)
	require.NoError(t, reports.Create(ctx, second))

	all, err := reports.FindAllByReview(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	spam := domain.ReportTypeSpam
	items, total, err := reports.Search(ctx, domain.ReportSearchFilter{Type: &spam, Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "r1@b.c", items[0].ReporterEmail)

	items, total, err = reports.Search(ctx, domain.ReportSearchFilter{Keyword: "casino", Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)

	require.NoError(t, reports.Delete(ctx, report.ID))
	assert.ErrorIs(t, reports.Delete(ctx, report.ID), domain.ErrNotFound)
}
