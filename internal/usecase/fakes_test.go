package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/inkcloud/review-service/internal/domain"
)

// fakeReviewRepo is an in-memory ReviewRepository with the same uniqueness
// and counter semantics as the MongoDB implementation.
type fakeReviewRepo struct {
	mu      sync.Mutex
	nextID  int64
	reviews map[int64]*domain.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[int64]*domain.Review{}}
}

func (f *fakeReviewRepo) Create(_ context.Context, review *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reviews {
		if existing.ProductID == review.ProductID && existing.Email == review.Email {
			return domain.ErrAlreadyReviewed
		}
	}
	f.nextID++
	review.ID = f.nextID
	review.CreatedAt = time.Now()
	clone := *review
	f.reviews[review.ID] = &clone
	return nil
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id int64) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	review, ok := f.reviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *review
	return &clone, nil
}

func (f *fakeReviewRepo) FindByProductAndEmail(_ context.Context, productID int64, email string) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, review := range f.reviews {
		if review.ProductID == productID && review.Email == email {
			clone := *review
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReviewRepo) FindAllByProduct(_ context.Context, productID int64) ([]*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Review
	for _, review := range f.reviews {
		if review.ProductID == productID {
			clone := *review
			out = append(out, &clone)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeReviewRepo) FindByEmailBetween(_ context.Context, email string, start, end time.Time) ([]*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Review
	for _, review := range f.reviews {
		if review.Email == email && !review.CreatedAt.Before(start) && review.CreatedAt.Before(end) {
			clone := *review
			out = append(out, &clone)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeReviewRepo) Update(_ context.Context, review *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.reviews[review.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Comment = review.Comment
	stored.Rating = review.Rating
	stored.UpdatedAt = review.UpdatedAt
	return nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepo) AdjustLikeCount(_ context.Context, id int64, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	review, ok := f.reviews[id]
	if !ok {
		return domain.ErrNotFound
	}
	if delta < 0 && review.LikeCount == 0 {
		return nil
	}
	review.LikeCount += delta
	return nil
}

func (f *fakeReviewRepo) AverageRating(_ context.Context, productID int64) (float64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum, count int64
	for _, review := range f.reviews {
		if review.ProductID == productID {
			sum += int64(review.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (f *fakeReviewRepo) Search(_ context.Context, filter domain.ReviewSearchFilter) ([]*domain.Review, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start, end, err := filter.DateRange()
	if err != nil {
		return nil, 0, err
	}
	var matched []*domain.Review
	for _, review := range f.reviews {
		if filter.Keyword != "" &&
			!containsFold(review.ProductName, filter.Keyword) &&
			!containsFold(review.Comment, filter.Keyword) &&
			!containsFold(review.Email, filter.Keyword) {
			continue
		}
		if start != nil && (review.CreatedAt.Before(*start) || review.CreatedAt.After(*end)) {
			continue
		}
		if filter.MinRating != nil && review.Rating < *filter.MinRating {
			continue
		}
		if filter.MaxRating != nil && review.Rating > *filter.MaxRating {
			continue
		}
		clone := *review
		matched = append(matched, &clone)
	}
	sortNewestFirst(matched)
	total := int64(len(matched))
	lo := filter.Page * filter.Size
	if lo > len(matched) {
		lo = len(matched)
	}
	hi := lo + filter.Size
	if hi > len(matched) {
		hi = len(matched)
	}
	return matched[lo:hi], total, nil
}

func sortNewestFirst(reviews []*domain.Review) {
	sort.Slice(reviews, func(i, j int) bool {
		if reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].ID > reviews[j].ID
		}
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// fakeLikeRepo is an in-memory LikeRepository keyed on (review, email).
type fakeLikeRepo struct {
	mu     sync.Mutex
	nextID int64
	likes  map[int64]*domain.Like
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: map[int64]*domain.Like{}}
}

func (f *fakeLikeRepo) Create(_ context.Context, like *domain.Like) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.likes {
		if existing.ReviewID == like.ReviewID && existing.Email == like.Email {
			return domain.ErrAlreadyLiked
		}
	}
	f.nextID++
	like.ID = f.nextID
	like.CreatedAt = time.Now()
	clone := *like
	f.likes[like.ID] = &clone
	return nil
}

func (f *fakeLikeRepo) DeleteByReviewAndEmail(_ context.Context, reviewID int64, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, like := range f.likes {
		if like.ReviewID == reviewID && like.Email == email {
			delete(f.likes, id)
			return nil
		}
	}
	return domain.ErrNeverLiked
}

func (f *fakeLikeRepo) FindReviewIDsByEmail(_ context.Context, email string) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for _, like := range f.likes {
		if like.Email == email {
			ids = append(ids, like.ReviewID)
		}
	}
	return ids, nil
}

// fakeReportRepo is an in-memory ReportRepository keyed on
// (review, reporter).
type fakeReportRepo struct {
	mu      sync.Mutex
	nextID  int64
	reports map[int64]*domain.Report
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[int64]*domain.Report{}}
}

func (f *fakeReportRepo) Create(_ context.Context, report *domain.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reports {
		if existing.ReviewID == report.ReviewID && existing.ReporterEmail == report.ReporterEmail {
			return domain.ErrAlreadyReported
		}
	}
	f.nextID++
	report.ID = f.nextID
	report.ReportedAt = time.Now()
	clone := *report
	f.reports[report.ID] = &clone
	return nil
}

func (f *fakeReportRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reports[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.reports, id)
	return nil
}

func (f *fakeReportRepo) FindAllByReview(_ context.Context, reviewID int64) ([]*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Report
	for _, report := range f.reports {
		if report.ReviewID == reviewID {
			clone := *report
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeReportRepo) Search(_ context.Context, filter domain.ReportSearchFilter) ([]*domain.Report, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start, end, err := filter.DateRange()
	if err != nil {
		return nil, 0, err
	}
	var matched []*domain.Report
	for _, report := range f.reports {
		if filter.Type != nil && report.Type != *filter.Type {
			continue
		}
		if filter.Keyword != "" &&
			!containsFold(report.Reason, filter.Keyword) &&
			!containsFold(report.ReporterEmail, filter.Keyword) {
			continue
		}
		if start != nil && (report.ReportedAt.Before(*start) || report.ReportedAt.After(*end)) {
			continue
		}
		clone := *report
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := int64(len(matched))
	lo := filter.Page * filter.Size
	if lo > len(matched) {
		lo = len(matched)
	}
	hi := lo + filter.Size
	if hi > len(matched) {
		hi = len(matched)
	}
	return matched[lo:hi], total, nil
}

// capturingPublisher records every published rating event; Fail makes the
// next publishes error out.
type capturingPublisher struct {
	mu     sync.Mutex
	events []domain.RatingEvent
	err    error
}

func (p *capturingPublisher) PublishRatingChange(_ context.Context, event domain.RatingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *capturingPublisher) Events() []domain.RatingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.RatingEvent, len(p.events))
	copy(out, p.events)
	return out
}
