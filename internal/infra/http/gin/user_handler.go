package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rentflow/internal/app/commands"
	"rentflow/internal/app/dto"
	userapp "rentflow/internal/app/handlers/user"
)

type UserHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type createUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

func (h UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := userapp.CreateUserCommand{
		CommandID: uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
	}
	created, err := commands.Dispatch[userapp.CreateUserCommand, *dto.User](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

var _ UserHTTP = UserHandler{}
