package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReportType categorizes the reported abuse.
type ReportType string

const (
	ReportTypeSpam          ReportType = "SPAM"
	ReportTypeAbuse         ReportType = "ABUSE"
	ReportTypeAdvertisement ReportType = "ADVERTISEMENT"
	ReportTypeCopyright     ReportType = "COPYRIGHT"
	ReportTypeEtc           ReportType = "ETC"
)

// IsValid checks if the ReportType is one of the defined constants.
func (t ReportType) IsValid() bool {
	switch t {
	case ReportTypeSpam, ReportTypeAbuse, ReportTypeAdvertisement, ReportTypeCopyright, ReportTypeEtc:
		return true
	}
	return false
}

// Report is an abuse flag filed against a review. The review reference is
// weak: deleting the review leaves the report behind, and presentation
// resolves the review best-effort. At most one report exists per
// (review, reporter email) pair.
type Report struct {
	ID            int64
	ReviewID      int64
	ReporterEmail string
	Type          ReportType
	Reason        string
	ReportedAt    time.Time
}

// NewReport validates the input and builds an unsaved report.
func NewReport(reviewID int64, reporterEmail string, reportType ReportType, reason string) (*Report, error) {
	if reviewID <= 0 {
		return nil, fmt.Errorf("%w: reviewID must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(reporterEmail) == "" {
		return nil, fmt.Errorf("%w: reporter email cannot be empty", ErrInvalidInput)
	}
	if !reportType.IsValid() {
		return nil, fmt.Errorf("%w: unknown report type %q", ErrInvalidInput, reportType)
	}
	if len(reason) > MaxCommentLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, MaxCommentLength)
	}
	return &Report{
		ReviewID:      reviewID,
		ReporterEmail: reporterEmail,
		Type:          reportType,
		Reason:        reason,
	}, nil
}

// ReportView is a report denormalized with the reported review's product
// fields. ProductID and ProductName are nil when the review no longer
// exists; a dangling reference is not an error.
type ReportView struct {
	Report      *Report
	ProductID   *int64
	ProductName *string
}
