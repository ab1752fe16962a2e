package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fold-labs/fahlink/internal/ports"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewZerologAdapterWithLogger(zerolog.New(&buf))

	adapter.Info("connected",
		ports.String("host", "127.0.0.1"),
		ports.Int("port", 7396),
		ports.Bool("tls", false),
		ports.Duration("delay", 10*time.Second),
		ports.Err(errors.New("boom")),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output not JSON: %v: %s", err, buf.Bytes())
	}

	if entry["message"] != "connected" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["host"] != "127.0.0.1" {
		t.Errorf("host = %v", entry["host"])
	}
	if entry["port"] != float64(7396) {
		t.Errorf("port = %v", entry["port"])
	}
	if entry["tls"] != false {
		t.Errorf("tls = %v", entry["tls"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v", entry["error"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestZerologAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	adapter.Debug("hidden")
	adapter.Info("hidden")
	adapter.Warn("shown")
	adapter.Error("shown")

	if got := bytes.Count(buf.Bytes(), []byte("\n")); got != 2 {
		t.Errorf("lines logged = %d, want 2", got)
	}
}
