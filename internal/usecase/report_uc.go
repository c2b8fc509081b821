package usecase

import (
	"context"
	"errors"

	"github.com/inkcloud/review-service/internal/domain"
	"github.com/inkcloud/review-service/internal/platform/logger"
	"go.uber.org/zap"
)

// ReportUsecase files and moderates abuse reports. Report views resolve
// the reported review's product fields best-effort: a report whose review
// has since been deleted simply carries absent product fields.
type ReportUsecase struct {
	reports domain.ReportRepository
	reviews domain.ReviewRepository
	logger  *logger.Logger
}

// NewReportUsecase creates a new ReportUsecase.
func NewReportUsecase(reports domain.ReportRepository, reviews domain.ReviewRepository, log *logger.Logger) *ReportUsecase {
	return &ReportUsecase{
		reports: reports,
		reviews: reviews,
		logger:  log.Named("ReportUsecase"),
	}
}

// Report files an abuse report against a review. ErrNotFound when the
// review is missing, ErrAlreadyReported when this reporter has already
// flagged it.
func (uc *ReportUsecase) Report(ctx context.Context, reviewID int64, reporterEmail string, reportType domain.ReportType, reason string) error {
	report, err := domain.NewReport(reviewID, reporterEmail, reportType, reason)
	if err != nil {
		return err
	}
	if _, err := uc.reviews.GetByID(ctx, reviewID); err != nil {
		return err
	}
	if err := uc.reports.Create(ctx, report); err != nil {
		return err
	}
	uc.logger.Info("Review reported",
		zap.Int64("review_id", reviewID),
		zap.String("reporter", reporterEmail),
		zap.String("type", string(reportType)))
	return nil
}

// Search runs the dynamic filtered report search, most recent first, and
// denormalizes each hit with the reported review's product fields.
func (uc *ReportUsecase) Search(ctx context.Context, filter domain.ReportSearchFilter) (*domain.ReportPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.Page, filter.Size = domain.NormalizePage(filter.Page, filter.Size)

	reports, total, err := uc.reports.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	views, err := uc.resolveViews(ctx, reports)
	if err != nil {
		return nil, err
	}
	return &domain.ReportPage{Items: views, Total: total, Page: filter.Page, Size: filter.Size}, nil
}

// ByReview lists all reports filed against one review, denormalized the
// same way as Search, without pagination.
func (uc *ReportUsecase) ByReview(ctx context.Context, reviewID int64) ([]*domain.ReportView, error) {
	reports, err := uc.reports.FindAllByReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return uc.resolveViews(ctx, reports)
}

// DeleteMany removes reports by id. Ids are processed in order and the
// batch fails fast: the first missing id aborts it, and deletions already
// performed stay committed.
func (uc *ReportUsecase) DeleteMany(ctx context.Context, reportIDs []int64) error {
	for _, id := range reportIDs {
		if err := uc.reports.Delete(ctx, id); err != nil {
			return err
		}
		uc.logger.Info("Report deleted", zap.Int64("report_id", id))
	}
	return nil
}

func (uc *ReportUsecase) resolveViews(ctx context.Context, reports []*domain.Report) ([]*domain.ReportView, error) {
	views := make([]*domain.ReportView, len(reports))
	for i, report := range reports {
		view := &domain.ReportView{Report: report}
		review, err := uc.reviews.GetByID(ctx, report.ReviewID)
		switch {
		case err == nil:
			view.ProductID = &review.ProductID
			view.ProductName = &review.ProductName
		case errors.Is(err, domain.ErrNotFound):
			// Reported review is gone; leave the product fields absent.
		default:
			return nil, err
		}
		views[i] = view
	}
	return views, nil
}
