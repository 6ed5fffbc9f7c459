package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/pageza/dietrec/backend/internal/errors"
	"github.com/pageza/dietrec/backend/internal/metrics"
	"github.com/pageza/dietrec/backend/internal/service"
	"github.com/pageza/dietrec/backend/internal/types"
)

// PredictHandler serves nutrition based recipe recommendations
type PredictHandler struct {
	recommender      service.IRecommendationService
	defaultNeighbors int
}

// NewPredictHandler creates a new PredictHandler instance. defaultNeighbors
// applies when a request omits params.n_neighbors.
func NewPredictHandler(recommender service.IRecommendationService, defaultNeighbors int) *PredictHandler {
	if defaultNeighbors < 1 {
		defaultNeighbors = service.DefaultNeighbors
	}
	return &PredictHandler{
		recommender:      recommender,
		defaultNeighbors: defaultNeighbors,
	}
}

// RegisterRoutes registers the predict route on router.
func (h *PredictHandler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/predict", h.Predict)
}

// Predict returns the recipes nearest to the requested nutrition vector.
func (h *PredictHandler) Predict(c *gin.Context) {
	var req types.PredictionIn
	if !bindJSON(c, &req) {
		return
	}

	q := service.Query{
		Nutrition:     req.NutritionInput,
		Ingredients:   req.Ingredients,
		Neighbors:     req.Params.Neighbors(h.defaultNeighbors),
		WithDistances: req.Params.WithDistances(),
	}

	start := time.Now()
	res, err := h.recommender.Recommend(c.Request.Context(), q)
	if err != nil {
		metrics.RecordRecommendation(outcomeFor(err), -1, time.Since(start))
		respondError(c, err, MsgRecommendFailed)
		return
	}
	metrics.RecordRecommendation(outcomeForResult(res), res.Candidates, time.Since(start))

	c.JSON(http.StatusOK, types.Success(types.FormatResult(res), res.Message))
}

func outcomeFor(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidQuery:
		return "invalid_query"
	case apperrors.CodeDatasetUnavailable:
		return "dataset_unavailable"
	case apperrors.CodeInsufficientData:
		return "insufficient_data"
	default:
		return "error"
	}
}

func outcomeForResult(res *service.Result) string {
	if len(res.Matches) == 0 {
		return "no_matches"
	}
	return "ok"
}
