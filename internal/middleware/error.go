package middleware

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/dietrec/backend/internal/logging"
	"github.com/pageza/dietrec/backend/internal/types"
)

// MsgInternalError is the envelope message for unexpected failures.
const MsgInternalError = "Internal server error"

// AbortWithEnvelope stops the chain and writes an error envelope.
func AbortWithEnvelope(c *gin.Context, status int, errMsg, message string) {
	c.AbortWithStatusJSON(status, types.Failure(errMsg, message))
}

// Recovery turns panics in handlers into a 500 envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				logging.Ctx(c.Request.Context()).Error().
					Interface("panic", err).
					Str("path", c.Request.URL.Path).
					Msg("Recovered from panic")
				if c.Writer.Written() {
					c.Abort()
					return
				}
				AbortWithEnvelope(c, http.StatusInternalServerError, MsgInternalError, MsgInternalError)
			}
		}()
		c.Next()
	}
}

// NoRoute answers unknown paths with a 404 envelope.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		AbortWithEnvelope(c, http.StatusNotFound, "route not found: "+c.Request.URL.Path, http.StatusText(http.StatusNotFound))
	}
}

// NoMethod answers a known path with the wrong method with a 405 envelope.
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		AbortWithEnvelope(c, http.StatusMethodNotAllowed,
			"method "+c.Request.Method+" not allowed on "+c.Request.URL.Path,
			http.StatusText(http.StatusMethodNotAllowed))
	}
}

// envelopeWriter buffers error responses that are not JSON so they can be
// replaced with an envelope.
type envelopeWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	rewrite     bool
	body        strings.Builder
}

func (w *envelopeWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = status
	if status >= 400 && !isJSON(w.Header().Get("Content-Type")) {
		w.rewrite = true
		return
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *envelopeWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.rewrite {
		w.body.Write(b)
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

func (w *envelopeWriter) Flush() {
	if w.rewrite {
		return
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *envelopeWriter) finish() {
	if !w.rewrite {
		return
	}
	errMsg := strings.TrimSpace(w.body.String())
	if errMsg == "" {
		errMsg = http.StatusText(w.status)
	}
	writeEnvelope(w.ResponseWriter, w.status, types.Failure(errMsg, http.StatusText(w.status)))
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

func writeEnvelope(w http.ResponseWriter, status int, env types.ErrorEnvelope) {
	h := w.Header()
	h.Del("Content-Length")
	h.Del("X-Content-Type-Options")
	h.Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// ErrorHandler wraps the whole HTTP handler so that any plain-text error
// response or panic that escapes the router still reaches the client as a
// JSON envelope.
func ErrorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &envelopeWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				logging.Error().Interface("panic", err).Str("path", r.URL.Path).Msg("Recovered from panic")
				if !rec.wroteHeader || rec.rewrite {
					writeEnvelope(w, http.StatusInternalServerError, types.Failure(MsgInternalError, MsgInternalError))
				}
				return
			}
			rec.finish()
		}()

		next.ServeHTTP(rec, r)
	})
}
