package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rentflow/internal/app/commands"
	"rentflow/internal/app/dto"
	reviewapp "rentflow/internal/app/handlers/review"
)

type ReviewHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type createReviewRequest struct {
	RentalID   string `json:"rental_id" binding:"required"`
	ProductID  string `json:"product_id" binding:"required"`
	ReviewerID string `json:"reviewer_id" binding:"required"`
	RevieweeID string `json:"reviewee_id" binding:"required"`
	Rating     int    `json:"rating" binding:"required"`
	Comment    string `json:"comment"`
}

func (h ReviewHandler) Create(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := reviewapp.CreateReviewCommand{
		CommandID:  uuid.NewString(),
		RentalID:   req.RentalID,
		ProductID:  req.ProductID,
		ReviewerID: req.ReviewerID,
		RevieweeID: req.RevieweeID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	created, err := commands.Dispatch[reviewapp.CreateReviewCommand, *dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

var _ ReviewHTTP = ReviewHandler{}
