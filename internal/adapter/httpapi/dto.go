package httpapi

import (
	"time"

	"github.com/inkcloud/review-service/internal/domain"
)

type createReviewRequest struct {
	ProductID   int64  `json:"productId" binding:"required"`
	ProductName string `json:"productName"`
	Rating      int    `json:"rating" binding:"required"`
	Comment     string `json:"comment"`
}

type createReviewResponse struct {
	Created  bool  `json:"created"`
	ReviewID int64 `json:"reviewId"`
}

type reviewResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	ProductID   int64      `json:"productId"`
	ProductName string     `json:"productName"`
	Rating      int        `json:"rating"`
	Comment     string     `json:"comment"`
	LikeCount   int        `json:"likeCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	LikedByMe   *bool      `json:"likedByMe,omitempty"`
}

func toReviewResponse(r *domain.Review) reviewResponse {
	return reviewResponse{
		ID:          r.ID,
		Email:       r.Email,
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		Rating:      r.Rating,
		Comment:     r.Comment,
		LikeCount:   r.LikeCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toReviewResponses(reviews []*domain.Review) []reviewResponse {
	out := make([]reviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = toReviewResponse(r)
	}
	return out
}

type productReviewsResponse struct {
	Reviews       []reviewResponse `json:"reviews"`
	AverageRating float64          `json:"averageRating"`
}

type updateReviewRequest struct {
	Comment *string `json:"comment"`
	Rating  *int    `json:"rating"`
}

type deleteReviewsRequest struct {
	ReviewIDs []int64 `json:"reviewIds" binding:"required"`
}

type adminSearchRequest struct {
	Keyword   string `json:"keyword"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	MinRating *int   `json:"minRating"`
	MaxRating *int   `json:"maxRating"`
	Page      int    `json:"page"`
	Size      int    `json:"size"`
}

type reviewPageResponse struct {
	Items []reviewResponse `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

type reportRequest struct {
	ReviewID int64  `json:"reviewId" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Reason   string `json:"reason"`
}

type deleteReportsRequest struct {
	ReportIDs []int64 `json:"reportIds" binding:"required"`
}

type reportViewResponse struct {
	ID            int64     `json:"id"`
	ReviewID      int64     `json:"reviewId"`
	ReporterEmail string    `json:"reporterEmail"`
	Type          string    `json:"type"`
	Reason        string    `json:"reason"`
	ReportedAt    time.Time `json:"reportedAt"`
	ProductID     *int64    `json:"productId,omitempty"`
	ProductName   *string   `json:"productName,omitempty"`
}

func toReportViewResponse(v *domain.ReportView) reportViewResponse {
	return reportViewResponse{
		ID:            v.Report.ID,
		ReviewID:      v.Report.ReviewID,
		ReporterEmail: v.Report.ReporterEmail,
		Type:          string(v.Report.Type),
		Reason:        v.Report.Reason,
		ReportedAt:    v.Report.ReportedAt,
		ProductID:     v.ProductID,
		ProductName:   v.ProductName,
	}
}

func toReportViewResponses(views []*domain.ReportView) []reportViewResponse {
	out := make([]reportViewResponse, len(views))
	for i, v := range views {
		out[i] = toReportViewResponse(v)
	}
	return out
}

type reportPageResponse struct {
	Items []reportViewResponse `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
}
