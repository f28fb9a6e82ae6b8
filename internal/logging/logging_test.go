package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		verbose bool
		debugOn bool
	}{
		{verbose: false, debugOn: false},
		{verbose: true, debugOn: true},
	}
	for _, tt := range tests {
		l, err := New(tt.verbose)
		if err != nil {
			t.Fatalf("New(%v): %v", tt.verbose, err)
		}
		if got := l.Core().Enabled(zapcore.DebugLevel); got != tt.debugOn {
			t.Errorf("New(%v) debug enabled = %v, want %v", tt.verbose, got, tt.debugOn)
		}
		if !l.Core().Enabled(zapcore.InfoLevel) {
			t.Errorf("New(%v) should log at info", tt.verbose)
		}
	}
}

func TestMustNeverNil(t *testing.T) {
	if Must(false) == nil {
		t.Fatal("Must returned nil")
	}
}
