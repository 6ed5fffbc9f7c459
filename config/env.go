package config

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// Environment is the deployment the service runs in.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads DIETREC_ENV, falling back to ENV. CI=true wins over both.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	env := os.Getenv(EnvPrefix + "ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	switch Environment(strings.ToLower(strings.TrimSpace(env))) {
	case Production, "prod":
		return Production
	case Test:
		return Test
	default:
		return Development
	}
}

// GinMode maps the environment onto the router's mode.
func (e Environment) GinMode() string {
	switch e {
	case Production:
		return gin.ReleaseMode
	case Test, CI:
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func IsProduction() bool {
	return GetEnvironment() == Production
}

func IsCI() bool {
	return GetEnvironment() == CI
}
