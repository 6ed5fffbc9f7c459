package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/dietrec/backend/internal/types"
)

// HealthMessage is the fixed health check message.
const HealthMessage = "Diet Recommendation API is running"

// DatasetStatus reports whether the dataset is resident. *dataset.Store
// satisfies it.
type DatasetStatus interface {
	Loaded() bool
	Rows() int
}

// HealthHandler serves the health check
type HealthHandler struct {
	dataset DatasetStatus
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(dataset DatasetStatus) *HealthHandler {
	return &HealthHandler{dataset: dataset}
}

// RegisterRoutes registers the health routes on router.
func (h *HealthHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", h.HealthCheck)
}

// HealthCheck returns the health status of the API. It never triggers a
// dataset load.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := types.HealthResponse{
		HealthCheck: "OK",
		Message:     HealthMessage,
	}
	if h.dataset != nil {
		resp.Dataset = types.DatasetStatus{
			Loaded: h.dataset.Loaded(),
			Rows:   h.dataset.Rows(),
		}
	}
	c.JSON(http.StatusOK, resp)
}
