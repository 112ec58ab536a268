package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ulikoehler/slinktree/pkg/pipeline"
)

// stdout receives all user-facing output. Logs and the spinner go to stderr.
var stdout io.Writer = os.Stdout

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Styles shared by the commands.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleTreeBranch  = lipgloss.NewStyle().Foreground(colorDim)
	styleBlockType   = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// status is a one-character marker printed before a message.
type status struct {
	icon  string
	style lipgloss.Style
}

var (
	statusSuccess = status{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	statusError   = status{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	statusWarning = status{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	statusInfo    = status{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

func (s status) print(format string, args ...any) {
	fmt.Fprintln(stdout, s.style.Render(s.icon)+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { statusSuccess.print(format, args...) }
func printError(format string, args ...any)   { statusError.print(format, args...) }
func printWarning(format string, args ...any) { statusWarning.print(format, args...) }
func printInfo(format string, args ...any)    { statusInfo.print(format, args...) }

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a written output file.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints the size of a loaded model and where it came from, e.g.
// "3 systems · 12 blocks · 9 lines · 3 files · resolved in 4ms".
func printStats(stats pipeline.Stats, cached bool) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(statsLine(stats, cached)))
}

func statsLine(stats pipeline.Stats, cached bool) string {
	parts := []string{
		plural(stats.Systems, "system"),
		plural(stats.Blocks, "block"),
		plural(stats.Lines, "line"),
	}
	if stats.Files > 0 {
		parts = append(parts, plural(stats.Files, "file"))
	}
	switch {
	case cached:
		parts = append(parts, "cached")
	case stats.ResolveTime > 0:
		parts = append(parts, "resolved in "+stats.ResolveTime.Round(time.Millisecond).String())
	}
	return strings.Join(parts, " · ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
