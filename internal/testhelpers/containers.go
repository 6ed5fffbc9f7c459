// Package testhelpers starts the backing services integration tests run
// against. Every helper skips the test when no container runtime is available.
package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pageza/dietrec/backend/config"
)

// MinIO credentials used by SetupMinIO.
const (
	MinIOAccessKey = "dietrec"
	MinIOSecretKey = "dietrec-secret"
)

func startContainer(t *testing.T, req testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	t.Cleanup(func() {
		if container != nil {
			_ = container.Terminate(context.Background())
		}
	})
	require.NoError(t, err, "failed to start %s", req.Image)
	return container
}

// SetupRedis starts a Redis container and returns its configuration.
func SetupRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	container := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("6379/tcp"),
			wait.ForLog("Ready to accept connections"),
		).WithDeadline(60 * time.Second),
	})

	ctx := context.Background()
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return config.RedisConfig{Host: host, Port: port.Int()}
}

// SetupMinIO starts an S3-compatible MinIO container, exports its
// credentials for the default AWS chain, and returns the client configuration.
func SetupMinIO(t *testing.T) config.AWSConfig {
	t.Helper()
	container := startContainer(t, testcontainers.ContainerRequest{
		Image:        "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		ExposedPorts: []string{"9000/tcp"},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     MinIOAccessKey,
			"MINIO_ROOT_PASSWORD": MinIOSecretKey,
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	})

	endpoint, err := container.PortEndpoint(context.Background(), "9000/tcp", "http")
	require.NoError(t, err)

	t.Setenv("AWS_ACCESS_KEY_ID", MinIOAccessKey)
	t.Setenv("AWS_SECRET_ACCESS_KEY", MinIOSecretKey)
	t.Setenv("AWS_SESSION_TOKEN", "")
	t.Setenv("AWS_PROFILE", "")

	return config.AWSConfig{Region: "us-east-1", Endpoint: endpoint}
}
