package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inkcloud/review-service/internal/domain"
	"github.com/inkcloud/review-service/internal/middleware"
	"github.com/inkcloud/review-service/internal/platform/logger"
	"github.com/inkcloud/review-service/internal/platform/metrics"
	"github.com/inkcloud/review-service/internal/usecase"
	"go.uber.org/zap"
)

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &pathIDError{name: name}
	}
	return id, nil
}

type pathIDError struct{ name string }

func (e *pathIDError) Error() string { return "invalid " + e.name + " path parameter" }

// ReviewHandler exposes the review lifecycle and like toggling over HTTP.
type ReviewHandler struct {
	reviews *usecase.ReviewUsecase
	likes   *usecase.LikeUsecase
	metrics *metrics.Manager
	logger  *logger.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews *usecase.ReviewUsecase, likes *usecase.LikeUsecase, m *metrics.Manager, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		likes:   likes,
		metrics: m,
		logger:  log.Named("ReviewHandler"),
	}
}

// Create handles POST /. Both a fresh insert and an "already reviewed"
// outcome answer 200; the body tells them apart.
func (h *ReviewHandler) Create(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.reviews.Create(c.Request.Context(), usecase.CreateReviewInput{
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Rating:      req.Rating,
		Comment:     req.Comment,
	}, middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Created {
		h.metrics.ReviewsCreatedTotal.Inc()
	}
	c.JSON(http.StatusOK, createReviewResponse{Created: result.Created, ReviewID: result.ReviewID})
}

// ListByProduct handles GET /products/:productId. Public route.
func (h *ReviewHandler) ListByProduct(c *gin.Context) {
	productID, err := pathID(c, "productId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reviews, average, err := h.reviews.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productReviewsResponse{
		Reviews:       toReviewResponses(reviews),
		AverageRating: average,
	})
}

// ListByProductForMember handles GET /products/:productId/me, annotating
// each review with whether the caller has liked it.
func (h *ReviewHandler) ListByProductForMember(c *gin.Context) {
	productID, err := pathID(c, "productId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	annotated, err := h.reviews.ListByProductForMember(c.Request.Context(), productID, middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]reviewResponse, len(annotated))
	for i, a := range annotated {
		resp := toReviewResponse(a.Review)
		liked := a.LikedBy
		resp.LikedByMe = &liked
		out[i] = resp
	}
	c.JSON(http.StatusOK, out)
}

// ListMine handles GET /members/me?period=. An absent or unrecognized
// period behaves as the widest window.
func (h *ReviewHandler) ListMine(c *gin.Context) {
	period := domain.Period(c.Query("period"))
	reviews, err := h.reviews.ListByAuthor(c.Request.Context(), middleware.Identity(c), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponses(reviews))
}

// Detail handles GET /detail/:reviewId. Admins may inspect any review;
// everyone else only their own.
func (h *ReviewHandler) Detail(c *gin.Context) {
	reviewID, err := pathID(c, "reviewId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requester := middleware.Identity(c)
	for _, role := range middleware.Roles(c) {
		if role == domain.AdminRole {
			requester = ""
			break
		}
	}

	review, err := h.reviews.Detail(c.Request.Context(), reviewID, requester)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponse(review))
}

// Update handles PATCH /:reviewId with a partial patch.
func (h *ReviewHandler) Update(c *gin.Context) {
	reviewID, err := pathID(c, "reviewId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	review, err := h.reviews.Update(c.Request.Context(), reviewID,
		domain.ReviewPatch{Comment: req.Comment, Rating: req.Rating},
		middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.metrics.ReviewUpdatesTotal.Inc()
	c.JSON(http.StatusOK, toReviewResponse(review))
}

// Delete handles DELETE / with a body of review ids.
func (h *ReviewHandler) Delete(c *gin.Context) {
	var req deleteReviewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	h.logger.Info("Batch review delete requested",
		zap.Int("count", len(req.ReviewIDs)),
		zap.String("requester", middleware.Identity(c)))

	err := h.reviews.Delete(c.Request.Context(), req.ReviewIDs, middleware.Identity(c), middleware.Roles(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.metrics.ReviewDeletesTotal.Add(float64(len(req.ReviewIDs)))
	c.Status(http.StatusNoContent)
}

// AdminSearch handles POST /admin with the dynamic review filter.
func (h *ReviewHandler) AdminSearch(c *gin.Context) {
	var req adminSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	page, err := h.reviews.AdminSearch(c.Request.Context(), domain.ReviewSearchFilter{
		Keyword:   req.Keyword,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		MinRating: req.MinRating,
		MaxRating: req.MaxRating,
		Page:      req.Page,
		Size:      req.Size,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviewPageResponse{
		Items: toReviewResponses(page.Items),
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
	})
}

// Like handles POST /:reviewId/like.
func (h *ReviewHandler) Like(c *gin.Context) {
	reviewID, err := pathID(c, "reviewId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.likes.Like(c.Request.Context(), reviewID, middleware.Identity(c)); err != nil {
		respondError(c, err)
		return
	}
	h.metrics.LikesTotal.Inc()
	c.Status(http.StatusNoContent)
}

// CancelLike handles DELETE /:reviewId/like.
func (h *ReviewHandler) CancelLike(c *gin.Context) {
	reviewID, err := pathID(c, "reviewId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.likes.Cancel(c.Request.Context(), reviewID, middleware.Identity(c)); err != nil {
		respondError(c, err)
		return
	}
	h.metrics.LikeCancelsTotal.Inc()
	c.Status(http.StatusNoContent)
}
