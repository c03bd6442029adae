package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rentflow/internal/app/commands"
	"rentflow/internal/app/dto"
	productapp "rentflow/internal/app/handlers/product"
	"rentflow/internal/app/queries"
)

type ProductHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createProductRequest struct {
	OwnerID          string   `json:"owner_id" binding:"required"`
	Title            string   `json:"title" binding:"required"`
	Description      string   `json:"description"`
	PricePerDayCents int64    `json:"price_per_day_cents"`
	DepositCents     int64    `json:"deposit_cents"`
	Condition        string   `json:"condition"`
	Location         string   `json:"location"`
	Images           []string `json:"images"`
}

func (h ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := productapp.CreateProductCommand{
		CommandID:        uuid.NewString(),
		OwnerID:          req.OwnerID,
		Title:            req.Title,
		Description:      req.Description,
		PricePerDayCents: req.PricePerDayCents,
		DepositCents:     req.DepositCents,
		Condition:        req.Condition,
		Location:         req.Location,
		Images:           req.Images,
	}
	created, err := commands.Dispatch[productapp.CreateProductCommand, *dto.Product](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h ProductHandler) Get(c *gin.Context) {
	q := productapp.GetProductQuery{ProductID: c.Param("id")}
	snap, err := queries.Ask[productapp.GetProductQuery, *dto.ProductSnapshot](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h ProductHandler) Remove(c *gin.Context) {
	cmd := productapp.RemoveProductCommand{ProductID: c.Param("id")}
	result, err := commands.Dispatch[productapp.RemoveProductCommand, *dto.CascadeResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ProductHTTP = ProductHandler{}
