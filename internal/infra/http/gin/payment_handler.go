package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rentflow/internal/app/commands"
	"rentflow/internal/app/dto"
	paymentapp "rentflow/internal/app/handlers/payment"
)

type PaymentHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type createPaymentRequest struct {
	RentalID      string `json:"rental_id" binding:"required"`
	UserID        string `json:"user_id" binding:"required"`
	AmountCents   int64  `json:"amount_cents" binding:"required"`
	Method        string `json:"method" binding:"required"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

func (h PaymentHandler) Create(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := paymentapp.CreatePaymentCommand{
		CommandID:     uuid.NewString(),
		RentalID:      req.RentalID,
		UserID:        req.UserID,
		AmountCents:   req.AmountCents,
		Method:        req.Method,
		Status:        req.Status,
		TransactionID: req.TransactionID,
	}
	created, err := commands.Dispatch[paymentapp.CreatePaymentCommand, *dto.Payment](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

var _ PaymentHTTP = PaymentHandler{}
