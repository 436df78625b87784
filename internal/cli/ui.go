package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/netgrid/pkg/graph"
	"github.com/matzehuels/netgrid/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - routed
	colorYellow = lipgloss.Color("220") // Amber - escalations, warnings
	colorRed    = lipgloss.Color("167") // Soft red - failures
	colorBlue   = lipgloss.Color("75")  // Light blue - links, commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for cell paths.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleRouted    = lipgloss.NewStyle().Foreground(colorGreen)
	styleEscalated = lipgloss.NewStyle().Foreground(colorYellow)
	styleFailed    = lipgloss.NewStyle().Foreground(colorRed)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}

// =============================================================================
// Layout Output
// =============================================================================

// stateStyle colours a frame state: green when routed, amber when it took
// escalations, red when it failed.
func stateStyle(r graph.Report) lipgloss.Style {
	switch {
	case r.Error != "":
		return styleFailed
	case r.Escalations > 0:
		return styleEscalated
	}
	return styleRouted
}

// printStats prints layout statistics on a single line.
func printStats(stats pipeline.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d cells", stats.CellCount),
		fmt.Sprintf("%d nets", stats.NetCount),
		fmt.Sprintf("%d frames", stats.FrameCount),
	}
	if stats.Escalations > 0 {
		parts = append(parts, fmt.Sprintf("%d escalations", stats.Escalations))
	}
	if stats.Retries > 0 {
		parts = append(parts, fmt.Sprintf("%d retries", stats.Retries))
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	sep := StyleDim.Render(" · ")
	for i := range parts {
		parts[i] = StyleDim.Render(parts[i])
	}
	fmt.Println("  " + strings.Join(parts, sep) + sep + statusStyle.Render(status))
}

func escalatedFrames(l graph.Layout) int {
	n := 0
	for _, f := range l.Frames {
		if f.Report.Escalations > 0 {
			n++
		}
	}
	return n
}

// printFailedFrames lists the frames of a partial layout that did not route.
func printFailedFrames(l graph.Layout) {
	for _, f := range l.Frames {
		if f.Report.Error == "" {
			continue
		}
		fmt.Println(styleIconError.Render(iconError) + " " + StyleHighlight.Render(f.Cell) + " " +
			stateStyle(f.Report).Render(f.Report.State))
		printDetail("%s", f.Report.Error)
		printDetail("escalations %d · retries %d · %s", f.Report.Escalations, f.Report.Retries,
			f.Report.History)
	}
}
