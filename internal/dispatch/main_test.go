package dispatch

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"habitcoach/internal/observability"
)

func TestMain(m *testing.M) {
	observability.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}
