package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

// TestDetectOutputMode verifies output mode selection.
func TestDetectOutputMode(t *testing.T) {
	tests := []struct {
		name          string
		forceColor    bool
		plain         bool
		noInteractive bool
		tty           bool
		env           map[string]string
		want          OutputMode
	}{
		{name: "tty is interactive", tty: true, want: OutputModeInteractive},
		{name: "pipe is plain", tty: false, want: OutputModePlain},
		{name: "plain flag wins", tty: true, plain: true, forceColor: true, want: OutputModePlain},
		{name: "NO_COLOR", tty: true, env: map[string]string{"NO_COLOR": ""}, want: OutputModePlain},
		{
			name: "force color beats NO_COLOR", tty: true, forceColor: true,
			env: map[string]string{"NO_COLOR": "1"}, want: OutputModeInteractive,
		},
		{name: "dumb terminal", tty: true, env: map[string]string{"TERM": "dumb"}, want: OutputModePlain},
		{name: "no-interactive on tty", tty: true, noInteractive: true, want: OutputModeStyled},
		{name: "force color on pipe", tty: false, forceColor: true, want: OutputModeStyled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectOutputMode(tt.forceColor, tt.plain, tt.noInteractive, tt.tty, envOf(tt.env))
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestOutputMode_String verifies mode names.
func TestOutputMode_String(t *testing.T) {
	assert.Equal(t, "plain", OutputModePlain.String())
	assert.Equal(t, "styled", OutputModeStyled.String())
	assert.Equal(t, "interactive", OutputModeInteractive.String())
	assert.Equal(t, "unknown", OutputMode(9).String())
}
