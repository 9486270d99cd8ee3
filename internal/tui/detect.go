package tui

import (
	"os"

	"golang.org/x/term"
)

// OutputMode selects how dashboard output is produced.
type OutputMode int

const (
	// OutputModePlain writes unstyled text (pipes, NO_COLOR, --plain).
	OutputModePlain OutputMode = iota
	// OutputModeStyled writes a single Lip Gloss rendering and exits.
	OutputModeStyled
	// OutputModeInteractive runs the Bubble Tea dashboard.
	OutputModeInteractive
)

// String returns the mode name.
func (m OutputMode) String() string {
	switch m {
	case OutputModePlain:
		return "plain"
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// DetectOutputMode picks an output mode for stdout. forceColor wins over
// NO_COLOR; plain wins over everything; noInteractive stops at styled.
func DetectOutputMode(forceColor, plain, noInteractive bool) OutputMode {
	return DetectOutputModeForTTY(isTerminal(os.Stdout), forceColor, plain, noInteractive)
}

// DetectOutputModeForTTY is DetectOutputMode for a writer whose terminal
// status the caller already knows.
func DetectOutputModeForTTY(tty, forceColor, plain, noInteractive bool) OutputMode {
	return detectOutputMode(forceColor, plain, noInteractive, tty, os.LookupEnv)
}

func detectOutputMode(
	forceColor, plain, noInteractive, tty bool,
	lookupEnv func(string) (string, bool),
) OutputMode {
	if plain {
		return OutputModePlain
	}
	if _, noColor := lookupEnv("NO_COLOR"); noColor && !forceColor {
		return OutputModePlain
	}
	if v, _ := lookupEnv("TERM"); v == "dumb" && !forceColor {
		return OutputModePlain
	}
	if !tty {
		if forceColor {
			return OutputModeStyled
		}
		return OutputModePlain
	}
	if noInteractive {
		return OutputModeStyled
	}
	return OutputModeInteractive
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of stdout, or the default when unknown.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
