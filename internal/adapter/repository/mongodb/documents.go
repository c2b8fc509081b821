package mongodb

import (
	"time"

	"github.com/inkcloud/review-service/internal/domain"
)

// Database document shapes. The bson mapping lives here so the domain
// entities stay free of storage tags.

type reviewDocument struct {
	ID          int64      `bson:"_id"`
	Email       string     `bson:"email"`
	ProductID   int64      `bson:"product_id"`
	ProductName string     `bson:"product_name"`
	Rating      int        `bson:"rating"`
	Comment     string     `bson:"comment"`
	LikeCount   int        `bson:"like_count"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   *time.Time `bson:"updated_at,omitempty"`
}

func fromDomainReview(r *domain.Review) *reviewDocument {
	return &reviewDocument{
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

func (d *reviewDocument) toDomain() *domain.Review {
	review := &domain.Review{
		ID:          d.ID,
		Email:       d.Email,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		Rating:      d.Rating,
		Comment:     d.Comment,
		LikeCount:   d.LikeCount,
		CreatedAt:   d.CreatedAt.Local(),
	}
	if d.UpdatedAt != nil {
		t := d.UpdatedAt.Local()
		review.UpdatedAt = &t
	}
	return review
}

type likeDocument struct {
	ID        int64     `bson:"_id"`
	ReviewID  int64     `bson:"review_id"`
	Email     string    `bson:"email"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d *likeDocument) toDomain() *domain.Like {
	return &domain.Like{
		ID:        d.ID,
		ReviewID:  d.ReviewID,
		Email:     d.Email,
		CreatedAt: d.CreatedAt.Local(),
	}
}

type reportDocument struct {
	ID            int64     `bson:"_id"`
	ReviewID      int64     `bson:"review_id"`
	ReporterEmail string    `bson:"reporter_email"`
	Type          string    `bson:"type"`
	Reason        string    `bson:"reason"`
	ReportedAt    time.Time `bson:"reported_at"`
}

func (d *reportDocument) toDomain() *domain.Report {
	return &domain.Report{
		ID:            d.ID,
		ReviewID:      d.ReviewID,
		ReporterEmail: d.ReporterEmail,
		Type:          domain.ReportType(d.Type),
		Reason:        d.Reason,
		ReportedAt:    d.ReportedAt.Local(),
	}
}
