package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rentflow/internal/app/commands"
	"rentflow/internal/app/dto"
	rentalapp "rentflow/internal/app/handlers/rental"
	"rentflow/internal/app/queries"
)

type RentalHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createRentalRequest struct {
	ProductID       string    `json:"product_id" binding:"required"`
	OwnerID         string    `json:"owner_id" binding:"required"`
	RenterID        string    `json:"renter_id" binding:"required"`
	StartDate       time.Time `json:"start_date" binding:"required"`
	EndDate         time.Time `json:"end_date" binding:"required"`
	TotalPriceCents int64     `json:"total_price_cents"`
}

func (h RentalHandler) Create(c *gin.Context) {
	var req createRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := rentalapp.CreateRentalCommand{
		CommandID:       uuid.NewString(),
		ProductID:       req.ProductID,
		OwnerID:         req.OwnerID,
		RenterID:        req.RenterID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		TotalPriceCents: req.TotalPriceCents,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	snap, err := commands.Dispatch[rentalapp.CreateRentalCommand, *dto.RentalSnapshot](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (h RentalHandler) Get(c *gin.Context) {
	q := rentalapp.GetRentalQuery{RentalID: c.Param("id")}
	snap, err := queries.Ask[rentalapp.GetRentalQuery, *dto.RentalSnapshot](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h RentalHandler) List(c *gin.Context) {
	q := rentalapp.ListRentalsQuery{
		OwnerID:   c.Query("owner_id"),
		RenterID:  c.Query("renter_id"),
		ProductID: c.Query("product_id"),
		Status:    c.Query("status"),
	}
	snaps, err := queries.Ask[rentalapp.ListRentalsQuery, []*dto.RentalSnapshot](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, snaps)
}

func (h RentalHandler) Complete(c *gin.Context) {
	cmd := rentalapp.CompleteRentalCommand{RentalID: c.Param("id")}
	snap, err := commands.Dispatch[rentalapp.CompleteRentalCommand, *dto.RentalSnapshot](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h RentalHandler) Remove(c *gin.Context) {
	cmd := rentalapp.RemoveRentalCommand{RentalID: c.Param("id")}
	snap, err := commands.Dispatch[rentalapp.RemoveRentalCommand, *dto.RentalSnapshot](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

var _ RentalHTTP = RentalHandler{}
