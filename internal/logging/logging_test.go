package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelWarn)

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	logger.Warn("warn %d", 3)
	logger.Error("error %d", 4)

	out := buf.String()
	for _, unwanted := range []string{"debug 1", "info 2"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("output contains %q below the configured level", unwanted)
		}
	}
	for _, wanted := range []string{"[WARN]", "warn 3", "[ERROR]", "error 4"} {
		if !strings.Contains(out, wanted) {
			t.Errorf("output missing %q: %s", wanted, out)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"stdout only", Config{Level: "info"}, false},
		{"file with size", Config{Level: "debug", File: "x.log", MaxSize: 10}, false},
		{"bad level", Config{Level: "verbose"}, true},
		{"file without size", Config{Level: "info", File: "x.log"}, true},
		{"negative backups", Config{Level: "info", MaxBackups: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogHTTPRequestGated(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelDebug)

	logger.LogHTTPRequest("POST", "/api/contact", "1.2.3.4", "req-1", 200, 10, "1ms")
	if buf.Len() != 0 {
		t.Fatalf("request logged while request logging disabled: %s", buf.String())
	}

	logger.requests = true
	logger.LogHTTPRequest("POST", "/api/contact", "1.2.3.4", "req-1", 200, 10, "1ms")
	if !strings.Contains(buf.String(), "/api/contact") {
		t.Errorf("expected request line, got %q", buf.String())
	}
}
