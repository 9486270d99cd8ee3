package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/marketdash/internal/cli"
	"github.com/rshade/marketdash/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		assert.NotNil(t, root)
		assert.Equal(t, "marketdash", root.Use)
	})
}

// TestExtractExitCode verifies FetchExitError is found through wrapping and
// everything else exits 1.
func TestExtractExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error returns 0", err: nil, want: 0},
		{
			name: "fetch failure",
			err:  &cli.FetchExitError{ExitCode: cli.FetchExitCode, Err: errors.New("stocks: 500")},
			want: 2,
		},
		{
			name: "wrapped fetch failure",
			err:  fmt.Errorf("snapshot: %w", &cli.FetchExitError{ExitCode: 3, Err: errors.New("x")}),
			want: 3,
		},
		{name: "generic error", err: errors.New("generic error"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractExitCode(tt.err))
		})
	}
}
