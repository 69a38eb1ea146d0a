package logging

import (
	"fmt"
	"regexp"
	"sync/atomic"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// W3C Trace Context format: {version}-{trace-id}-{parent-id}-{trace-flags}
// Example: 00-ab42124a3c573678d4d8b21ba52df3bf-d21f7bc17caa5aba-01
var traceHeaderRe = regexp.MustCompile(`^([0-9a-fA-F]{2})-([0-9a-fA-F]{32})-([0-9a-fA-F]{16})-([0-9a-fA-F]{2})$`)

var projectID atomic.Pointer[string]

// SetProjectID configures the Google Cloud project used to format trace
// resources in log entries. An empty value disables Cloud Logging fields.
func SetProjectID(id string) {
	projectID.Store(&id)
}

func currentProjectID() string {
	if p := projectID.Load(); p != nil {
		return *p
	}
	return ""
}

// traceContext holds the parts of a valid traceparent header.
type traceContext struct {
	traceID string
	spanID  string
	sampled bool
}

func parseTraceparent(header string) (traceContext, bool) {
	matches := traceHeaderRe.FindStringSubmatch(header)
	if len(matches) != 5 {
		return traceContext{}, false
	}
	return traceContext{
		traceID: matches[2],
		spanID:  matches[3],
		sampled: matches[4] == "01",
	}, true
}

func loggerWithTrace(base *zap.Logger, header, projectID, requestID string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	fields := traceFields(header, projectID)
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// traceFields uses the Cloud Logging special keys when a project is known and
// plain trace keys otherwise.
func traceFields(header, projectID string) []zap.Field {
	tc, ok := parseTraceparent(header)
	if !ok {
		return nil
	}
	if projectID == "" {
		return []zap.Field{
			zap.String("traceId", tc.traceID),
			zap.String("spanId", tc.spanID),
			zap.Bool("traceSampled", tc.sampled),
		}
	}
	return []zap.Field{
		zap.String("logging.googleapis.com/trace", fmt.Sprintf("projects/%s/traces/%s", projectID, tc.traceID)),
		zap.String("logging.googleapis.com/spanId", tc.spanID),
		zap.Bool("logging.googleapis.com/trace_sampled", tc.sampled),
	}
}

// traceResource returns the correlation value stored in the request context.
func traceResource(header, projectID string) string {
	tc, ok := parseTraceparent(header)
	if !ok {
		return ""
	}
	if projectID == "" {
		return tc.traceID
	}
	return fmt.Sprintf("projects/%s/traces/%s", projectID, tc.traceID)
}
