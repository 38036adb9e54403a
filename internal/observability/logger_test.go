package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLoggerFromContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer SetLogger(prev)

	ctx := WithRequestID(context.Background(), "req-42")
	LoggerFromContext(ctx).Info("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line: %v", err)
	}
	if line["request_id"] != "req-42" {
		t.Fatalf("expected request_id in log line, got %v", line)
	}
	if RequestID(context.Background()) != "" {
		t.Fatal("expected empty request id on bare context")
	}
}
