package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/pageza/dietrec/backend/internal/errors"
	"github.com/pageza/dietrec/backend/internal/logging"
	"github.com/pageza/dietrec/backend/internal/middleware"
)

// Envelope messages for failed operations.
const (
	MsgInvalidRequest     = "Invalid request"
	MsgDatasetUnavailable = "Failed to load dataset"
	MsgRecommendFailed    = "Failed to generate recommendations"
	MsgDietPlanFailed     = "Failed to generate diet plan"
)

func init() {
	// Report validation failures with the JSON field names clients send.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindJSON decodes the body into dst, writing the error envelope and
// returning false on failure. Malformed JSON is a 400; well-formed JSON that
// fails validation is a 422.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		middleware.AbortWithEnvelope(c, http.StatusUnprocessableEntity, describeValidation(ve), MsgInvalidRequest)
		return false
	}
	middleware.AbortWithEnvelope(c, http.StatusBadRequest, "invalid JSON body: "+err.Error(), MsgInvalidRequest)
	return false
}

func describeValidation(ve validator.ValidationErrors) string {
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "len":
			msgs = append(msgs, fmt.Sprintf("%s must have exactly %s values", field, fe.Param()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// statusFor maps an error code to its HTTP status.
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidQuery:
		return http.StatusUnprocessableEntity
	case apperrors.CodeDatasetUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorText is the envelope error string. Uncoded errors are not echoed to
// the client.
func errorText(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	var e *apperrors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return middleware.MsgInternalError
}

// respondError logs err and writes its envelope. message is used unless the
// dataset could not be loaded.
func respondError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if apperrors.CodeOf(err) == apperrors.CodeDatasetUnavailable {
		message = MsgDatasetUnavailable
	}

	log := logging.Ctx(c.Request.Context())
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("code", string(apperrors.CodeOf(err))).
		Int("status", status).
		Msg(message)

	middleware.AbortWithEnvelope(c, status, errorText(err), message)
}
