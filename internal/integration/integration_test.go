package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/dietrec/backend/config"
	"github.com/pageza/dietrec/backend/internal/database"
	"github.com/pageza/dietrec/backend/internal/dataset"
	"github.com/pageza/dietrec/backend/internal/middleware"
	"github.com/pageza/dietrec/backend/internal/router"
	"github.com/pageza/dietrec/backend/internal/server"
	"github.com/pageza/dietrec/backend/internal/service"
	"github.com/pageza/dietrec/backend/internal/testhelpers"
	"github.com/pageza/dietrec/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const predictBody = `{"nutrition_input":[500,20,5,50,300,60,8,15,25],"ingredients":["chicken"],"params":{"n_neighbors":3}}`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ShutdownTimeout: time.Second,
			RequestTimeout:  10 * time.Second,
		},
		Dataset:   config.DatasetConfig{LoadTimeout: 30 * time.Second},
		Recommend: config.RecommendConfig{DefaultNeighbors: 5, MaxNeighbors: 100},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{Enabled: true, Requests: 3, Window: time.Minute},
	}
}

func newHandler(cfg *config.Config, store *dataset.Store, limiter middleware.Limiter) http.Handler {
	rec := service.NewRecommendationService(store, service.RecommendationOptions{MaxNeighbors: cfg.Recommend.MaxNeighbors})
	r := router.SetupRouter(cfg, router.Dependencies{
		Dataset:     store,
		Recommender: rec,
		Planner:     service.NewDietPlanService(rec, nil),
		Limiter:     limiter,
	})
	return server.New(cfg.Server, r).Handler()
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "198.51.100.10:5555"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSharedRateLimitWithRedis(t *testing.T) {
	redisCfg := testhelpers.SetupRedis(t)
	ctx := context.Background()

	client, err := database.NewRedisClient(ctx, redisCfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	rlCfg := middleware.RateLimitConfig{Window: cfg.RateLimit.Window, Limit: cfg.RateLimit.Requests}
	store := dataset.NewStaticStore(dataset.SampleTable())

	// Two replicas sharing one Redis see one budget per client.
	replicaA := newHandler(cfg, store, middleware.NewRateLimiter(client, rlCfg))
	replicaB := newHandler(cfg, store, middleware.NewRateLimiter(client, rlCfg))

	assert.Equal(t, http.StatusOK, post(replicaA, "/predict/", predictBody).Code)
	assert.Equal(t, http.StatusOK, post(replicaB, "/predict/", predictBody).Code)
	w := post(replicaA, "/api/v1/predict", predictBody)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = post(replicaB, "/api/v1/predict", predictBody)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var env types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Nil(t, env.Output)
	require.NotNil(t, env.Error)

	// Every replica counted into the same per-client keys.
	keys, err := client.Keys(ctx, "rate_limit:api:198.51.100.10:*").Result()
	require.NoError(t, err)
	require.NotEmpty(t, keys)
	total := 0
	for _, key := range keys {
		n, err := client.Get(ctx, key).Int()
		require.NoError(t, err)
		total += n
	}
	assert.Equal(t, 4, total)
}

func TestDatasetFromS3WithLocalFallback(t *testing.T) {
	awsCfg := testhelpers.SetupMinIO(t)
	ctx := context.Background()

	client, err := config.NewS3Client(ctx, awsCfg)
	require.NoError(t, err)

	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String("recipes")})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dataset_optimized.csv.gz")
	require.NoError(t, dataset.WriteFile(path, dataset.SampleTable()))
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String("recipes"),
		Key:    aws.String("dataset_optimized.csv.gz"),
		Body:   bytes.NewReader(body),
	})
	require.NoError(t, err)

	// The missing object is skipped and the uploaded one is used.
	sources, err := dataset.ParseSources([]string{
		"s3://recipes/missing.csv",
		"s3://recipes/dataset_optimized.csv.gz",
	}, client)
	require.NoError(t, err)

	cfg := testConfig()
	store := dataset.NewStore(dataset.NewLoader(sources...), cfg.Dataset.LoadTimeout)
	require.NoError(t, store.Preload(ctx))
	assert.Equal(t, 5, store.Rows())

	h := newHandler(cfg, store, nil)
	w := post(h, "/api/v1/predict", predictBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env types.Envelope[[]types.RecipeOut]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Output, 1)
	assert.Equal(t, "Chicken Salad", env.Output[0].Name)
}
