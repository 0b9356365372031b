package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/services"
)

type JobHandler struct {
	reconciliationService *services.ReconciliationService
}

func NewJobHandler(reconciliationService *services.ReconciliationService) *JobHandler {
	return &JobHandler{reconciliationService: reconciliationService}
}

// @Summary Run Reconciliation
// @Description Trigger a reconciliation pass immediately instead of waiting for the scheduler
// @Tags Jobs
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /jobs/reconciliation/run [post]
func (h *JobHandler) RunReconciliation(c *gin.Context) {
	if err := h.reconciliationService.Run(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reconciliation completed"})
}
