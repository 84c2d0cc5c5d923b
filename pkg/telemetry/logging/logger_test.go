package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: "info", Format: FormatJSON}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("verification complete", "claims", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if record["msg"] != "verification complete" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["claims"] != float64(3) {
		t.Errorf("claims attr = %v", record["claims"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: "warn", Format: FormatText}, &buf)
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn record missing")
	}
}

func TestNewDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(nil, &buf)
	if err != nil {
		t.Fatalf("New with nil config failed: %v", err)
	}
	logger.Debug("below default level")
	if buf.Len() != 0 {
		t.Errorf("debug should be filtered by default, got %q", buf.String())
	}
}

func TestNewRejectsUnknown(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}, nil); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New(&Config{Level: "info", Format: "xml"}, nil); err == nil {
		t.Error("expected error for unknown format")
	}
}
