package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/devhire/project-marketplace-api/internal/dto"
	apierrors "github.com/devhire/project-marketplace-api/internal/errors"
	"github.com/devhire/project-marketplace-api/internal/middleware"
	"github.com/devhire/project-marketplace-api/internal/services"
)

// PaymentHandler exposes the single pay operation. All lifecycle rules live
// in the task service; this handler only resolves the caller and maps
// errors.
type PaymentHandler struct {
	taskService *services.TaskService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(taskService *services.TaskService) *PaymentHandler {
	return &PaymentHandler{
		taskService: taskService,
	}
}

// PayTask settles a submitted task, creating its immutable ledger entry.
func (h *PaymentHandler) PayTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("task_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	payment, err := h.taskService.PayTask(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment successful",
		"payment": dto.ToPaymentDTO(*payment),
	})
}
