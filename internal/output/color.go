package output

import (
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

const (
	ansiBold   = "\033[1m"
	ansiRed    = "\033[91m"
	ansiGreen  = "\033[92m"
	ansiYellow = "\033[93m"
	ansiReset  = "\033[0m"
)

// UseColor reports whether w is a terminal that should get ANSI colours.
// Setting NO_COLOR turns colours off.
func UseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func paint(s string, enabled bool, styles ...string) string {
	if !enabled || len(styles) == 0 {
		return s
	}
	return strings.Join(styles, "") + s + ansiReset
}

// comparisonStyles colours a gap: bold red from a day, yellow from a
// minute, green below that.
func comparisonStyles(diff time.Duration) []string {
	diff = diff.Abs()
	switch {
	case diff >= day:
		return []string{ansiBold, ansiRed}
	case diff >= time.Minute:
		return []string{ansiYellow}
	default:
		return []string{ansiGreen}
	}
}
