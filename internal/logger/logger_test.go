package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text")

	Info("cleanup started", "share", "/mnt/media", "max_age", "168h")

	out := buf.String()
	if !strings.Contains(out, "[INFO] cleanup started") {
		t.Errorf("missing level and message: %q", out)
	}
	if !strings.Contains(out, "share=/mnt/media") {
		t.Errorf("missing attribute: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "text")

	Debug("too quiet")
	Info("still too quiet")
	Warn("audible")
	Error("loud")

	out := buf.String()
	if strings.Contains(out, "too quiet") {
		t.Errorf("filtered levels leaked: %q", out)
	}
	if !strings.Contains(out, "audible") || !strings.Contains(out, "loud") {
		t.Errorf("expected WARN and ERROR output: %q", out)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json")

	Info("locked", "path", "a/b.txt")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "locked" {
		t.Errorf("msg = %v, want locked", record["msg"])
	}
	if record["path"] != "a/b.txt" {
		t.Errorf("path = %v, want a/b.txt", record["path"])
	}
}

func TestInitRejectsBadLevel(t *testing.T) {
	if err := Init(Config{Level: "SHOUTING"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := Init(Config{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}
