package logging

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/janisto/hello-api/internal/platform/timeutil"
)

// captureLogOutput captures the log entries emitted by logFn, one map per line.
func captureLogOutput(t *testing.T, logFn func(*zap.Logger)) []map[string]any {
	t.Helper()

	resetLoggerForTest()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	defer func() { _ = r.Close() }()

	origStdout := os.Stdout
	origStderr := os.Stderr
	os.Stdout = w
	os.Stderr = w
	defer func() {
		os.Stdout = origStdout
		os.Stderr = origStderr
	}()

	logger := Logger()
	logFn(logger)
	_ = logger.Sync()

	if closeErr := w.Close(); closeErr != nil {
		t.Fatalf("failed to close writer: %v", closeErr)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read log output: %v", err)
	}

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			t.Fatalf("failed to unmarshal log JSON %q: %v", line, err)
		}
		entries = append(entries, payload)
	}
	return entries
}

func captureOne(t *testing.T, logFn func(*zap.Logger)) map[string]any {
	t.Helper()
	entries := captureLogOutput(t, logFn)
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	return entries[0]
}

// resetLoggerForTest clears the singleton state so tests can capture fresh log output.
func resetLoggerForTest() {
	loggerOnce = sync.Once{}
	baseLogger = nil
	loggerErr = nil
	level.SetLevel(zapcore.InfoLevel)
}

func TestLoggerStructuredOutput(t *testing.T) {
	payload := captureOne(t, func(l *zap.Logger) {
		l.Info("GET /hello")
	})

	if got := payload["severity"]; got != "INFO" {
		t.Fatalf("expected severity INFO, got %v", got)
	}
	if _, exists := payload["level"]; exists {
		t.Fatalf("did not expect level field")
	}
	if msg, ok := payload["message"].(string); !ok || msg != "GET /hello" {
		t.Fatalf("expected message 'GET /hello', got %v", payload["message"])
	}
	ts, ok := payload["timestamp"].(string)
	if !ok {
		t.Fatalf("expected timestamp field to be a string, got %T", payload["timestamp"])
	}
	if _, err := time.Parse(timeutil.RFC3339Micros, ts); err != nil {
		t.Fatalf("timestamp is not RFC3339Micros: %v", err)
	}
	caller, ok := payload["caller"].(string)
	if !ok || !strings.Contains(caller, "logger_test.go") {
		t.Fatalf("expected caller to reference logger_test.go, got %v", payload["caller"])
	}
}

func TestLogHelperReportsCallerSite(t *testing.T) {
	payload := captureOne(t, func(*zap.Logger) {
		LogWarn(context.Background(), "slow response", zap.Int("latency_ms", 120))
	})

	if got := payload["severity"]; got != "WARNING" {
		t.Fatalf("expected severity WARNING, got %v", got)
	}
	if latency, ok := payload["latency_ms"].(float64); !ok || latency != 120 {
		t.Fatalf("expected latency_ms 120, got %v", payload["latency_ms"])
	}
	caller, ok := payload["caller"].(string)
	if !ok || !strings.Contains(caller, "logger_test.go") {
		t.Fatalf("expected caller to reference logger_test.go, got %v", payload["caller"])
	}
}

func TestEncodeSeverityMapping(t *testing.T) {
	tests := []struct {
		level    zapcore.Level
		expected string
	}{
		{zapcore.DebugLevel, "DEBUG"},
		{zapcore.InfoLevel, "INFO"},
		{zapcore.WarnLevel, "WARNING"},
		{zapcore.ErrorLevel, "ERROR"},
		{zapcore.DPanicLevel, "CRITICAL"},
		{zapcore.PanicLevel, "ALERT"},
		{zapcore.FatalLevel, "EMERGENCY"},
		{zapcore.Level(99), "DEFAULT"},
	}

	for _, tt := range tests {
		enc := &captureArrayEncoder{}
		encodeSeverity(tt.level, enc)
		if len(enc.values) != 1 || enc.values[0] != tt.expected {
			t.Fatalf("encodeSeverity(%v) = %v, want %s", tt.level, enc.values, tt.expected)
		}
	}
}

func TestEncodeTimeMicrosConvertsToUTC(t *testing.T) {
	enc := &captureArrayEncoder{}
	encodeTimeMicros(time.Date(2024, 6, 15, 12, 0, 0, 500000000, time.FixedZone("EST", -5*60*60)), enc)
	if len(enc.values) != 1 || enc.values[0] != "2024-06-15T17:00:00.500000Z" {
		t.Fatalf("unexpected encoded time: %v", enc.values)
	}
}

func TestDebugLevelNotLoggedByDefault(t *testing.T) {
	entries := captureLogOutput(t, func(l *zap.Logger) {
		l.Debug("hidden")
		l.Info("visible")
	})
	if len(entries) != 1 || entries[0]["message"] != "visible" {
		t.Fatalf("expected only the info entry, got %v", entries)
	}
}

func TestSetLevelEnablesDebug(t *testing.T) {
	entries := captureLogOutput(t, func(l *zap.Logger) {
		if err := SetLevel("DEBUG"); err != nil {
			t.Errorf("SetLevel: %v", err)
		}
		l.Debug("now visible")
	})
	t.Cleanup(func() { level.SetLevel(zapcore.InfoLevel) })

	if len(entries) != 1 || entries[0]["severity"] != "DEBUG" {
		t.Fatalf("expected one DEBUG entry, got %v", entries)
	}
}

func TestSetLevelAcceptsWarningAlias(t *testing.T) {
	t.Cleanup(func() { level.SetLevel(zapcore.InfoLevel) })

	if err := SetLevel(" warning "); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if Level() != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %s", Level())
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if Level() != zapcore.InfoLevel {
		t.Fatalf("expected level to stay info, got %s", Level())
	}
}

func TestErrReturnsNilOnSuccess(t *testing.T) {
	resetLoggerForTest()
	if err := Err(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if baseLogger == nil {
		t.Fatal("expected baseLogger to be initialized after Err()")
	}
}

func TestLoggerIsSingleton(t *testing.T) {
	resetLoggerForTest()

	logger := Logger()
	if logger != Logger() {
		t.Fatal("expected Logger() to return the same instance")
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	resetLoggerForTest()

	var wg sync.WaitGroup
	results := make(chan *zap.Logger, 50)
	for range 50 {
		wg.Go(func() {
			results <- Logger()
		})
	}
	wg.Wait()
	close(results)

	var first *zap.Logger
	for logger := range results {
		if first == nil {
			first = logger
		} else if logger != first {
			t.Fatal("concurrent Logger() calls returned different instances")
		}
	}
}

// captureArrayEncoder collects strings appended via the PrimitiveArrayEncoder interface.
type captureArrayEncoder struct {
	values []string
}

func (c *captureArrayEncoder) AppendBool(bool)             {}
func (c *captureArrayEncoder) AppendByteString([]byte)     {}
func (c *captureArrayEncoder) AppendComplex128(complex128) {}
func (c *captureArrayEncoder) AppendComplex64(complex64)   {}
func (c *captureArrayEncoder) AppendFloat64(float64)       {}
func (c *captureArrayEncoder) AppendFloat32(float32)       {}
func (c *captureArrayEncoder) AppendInt(int)               {}
func (c *captureArrayEncoder) AppendInt64(int64)           {}
func (c *captureArrayEncoder) AppendInt32(int32)           {}
func (c *captureArrayEncoder) AppendInt16(int16)           {}
func (c *captureArrayEncoder) AppendInt8(int8)             {}
func (c *captureArrayEncoder) AppendString(s string)       { c.values = append(c.values, s) }
func (c *captureArrayEncoder) AppendUint(uint)             {}
func (c *captureArrayEncoder) AppendUint64(uint64)         {}
func (c *captureArrayEncoder) AppendUint32(uint32)         {}
func (c *captureArrayEncoder) AppendUint16(uint16)         {}
func (c *captureArrayEncoder) AppendUint8(uint8)           {}
func (c *captureArrayEncoder) AppendUintptr(uintptr)       {}
