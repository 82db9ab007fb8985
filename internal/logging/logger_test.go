package logging

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}

func TestInitializeSilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected nop logger when no level is configured")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"loud", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogFlashOp(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	LogFlashOp("erase", 0x1ff000, 4096, nil)
	LogFlashOp("program", 0x1ff000, 2304, errors.New("stuck bit"))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel {
		t.Errorf("successful op level = %v, want debug", entries[0].Level)
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Errorf("failed op level = %v, want error", entries[1].Level)
	}
	if got := entries[0].ContextMap()["offset"]; got != "0x1ff000" {
		t.Errorf("offset field = %v, want 0x1ff000", got)
	}
}

func TestLogCodes(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	LogEvent(WiFiCredentialsSet)
	LogErrorCode(TCPBindErr)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Message != "WiFi credentials set." {
		t.Errorf("event message = %q", entries[0].Message)
	}
	if entries[1].Message != "Unable to bind to HTTP port." {
		t.Errorf("error message = %q", entries[1].Message)
	}
}

func TestCodeTextUnknown(t *testing.T) {
	if got := ErrorCode(200).Text(); got != "Undefined error." {
		t.Errorf("ErrorCode(200).Text() = %q", got)
	}
	if got := LogCode(200).Text(); got != "Undefined message code." {
		t.Errorf("LogCode(200).Text() = %q", got)
	}
}

func TestDumps(t *testing.T) {
	data := []byte("GET /\r\n")
	if got := hexDump(data); got != "474554202f0d0a" {
		t.Errorf("hexDump() = %q", got)
	}
	if got := asciiDump(data); got != "GET /.." {
		t.Errorf("asciiDump() = %q", got)
	}

	long := make([]byte, maxDumpBytes+10)
	if got := hexDump(long); !strings.HasSuffix(got, "...") {
		t.Error("hexDump() of long buffer should be truncated")
	}
	if got := asciiDump(long); len(got) != maxDumpBytes {
		t.Errorf("asciiDump() length = %d, want %d", len(got), maxDumpBytes)
	}
}
