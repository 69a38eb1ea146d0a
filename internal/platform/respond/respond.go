// Package respond renders RFC 9457 problem details for responses produced
// outside huma operations: unmatched routes, disallowed methods and panics.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/hello-api/internal/platform/logging"
)

const (
	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"

	msgNotFound          = "resource not found"
	msgInternalServerErr = "internal server error"
)

// candidateMethods are probed against the route tree to build the Allow header.
var candidateMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// WriteProblem writes a problem details body for status, encoded as CBOR when
// the request prefers it and as JSON otherwise.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) error {
	problem := &huma.ErrorModel{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
	if traceID := applog.TraceIDFromContext(r.Context()); traceID != nil {
		problem.Instance = *traceID
	}

	if selectFormat(r.Header.Get("Accept")) {
		body, err := cbor.Marshal(problem)
		if err != nil {
			return fmt.Errorf("encode problem as cbor: %w", err)
		}
		w.Header().Set("Content-Type", contentTypeProblemCBOR)
		w.WriteHeader(status)
		_, err = w.Write(body)
		return err
	}

	w.Header().Set("Content-Type", contentTypeProblemJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(problem)
}

// NotFoundHandler emits a 404 problem response.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logWithStatus(r, http.StatusNotFound, msgNotFound, nil)
		if err := WriteProblem(w, r, http.StatusNotFound, msgNotFound); err != nil {
			applog.LogError(r.Context(), "failed to render not found", err)
		}
	}
}

// MethodNotAllowedHandler emits a 405 problem response with an Allow header
// listing the methods the matched path does support.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		detail := fmt.Sprintf("method %s not allowed", r.Method)
		logWithStatus(r, http.StatusMethodNotAllowed, detail, nil)
		if err := WriteProblem(w, r, http.StatusMethodNotAllowed, detail); err != nil {
			applog.LogError(r.Context(), "failed to render method not allowed", err)
		}
	}
}

// Recoverer converts panics into 500 problem responses. http.ErrAbortHandler
// is re-panicked so net/http can abort the connection. If the handler already
// started the response, nothing more is written.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				var err error
				switch v := rec.(type) {
				case error:
					err = v
				default:
					err = fmt.Errorf("%v", v)
				}
				if errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				logWithStatus(r, http.StatusInternalServerError, "panic recovered", err, zap.ByteString("stack", debug.Stack()))
				if rw.wroteHeader {
					return
				}
				if writeErr := WriteProblem(rw, r, http.StatusInternalServerError, msgInternalServerErr); writeErr != nil {
					applog.LogError(r.Context(), "failed to render internal error", writeErr)
				}
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// logWithStatus logs a problem at a severity matching its status: error for
// 5xx, warning for 4xx.
func logWithStatus(r *http.Request, status int, detail string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.Int("status", status),
		zap.String("detail", detail),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	if status >= http.StatusInternalServerError {
		applog.LogError(r.Context(), "request failed", err, fields...)
		return
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	applog.LogWarn(r.Context(), "request rejected", fields...)
}

// responseWriter records whether the response has been started.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// allowedMethods inspects chi's routing context to discover allowed methods.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}

	routePath := rctx.RoutePath
	if routePath == "" {
		if r.URL.RawPath != "" {
			routePath = r.URL.RawPath
		} else {
			routePath = r.URL.Path
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	allowed := make([]string, 0, len(candidateMethods))
	for _, method := range candidateMethods {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}
