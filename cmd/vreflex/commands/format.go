package commands

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// every command prints through these helpers
// ═══════════════════════════════════════════════════════════

const lineWidth = 59

// JobMetadata holds job execution metadata
type JobMetadata struct {
	RunID     string // generated when empty
	JobType   string
	Tag       string
	Timestamp string
	Period    *Period // Optional
}

// Period represents a date range
type Period struct {
	StartDate string
	EndDate   string
}

// PrintJobHeader prints a formatted job header
func PrintJobHeader(meta JobMetadata) {
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}

	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", meta.JobType)
	PrintSeparator()
	fmt.Printf("  Run ID    : %s\n", meta.RunID)

	if meta.Period != nil {
		fmt.Printf("  Period    : %s ~ %s\n", meta.Period.StartDate, meta.Period.EndDate)
	}

	PrintSeparator()
	fmt.Printf("[%s] Started at %s\n", meta.Tag, meta.Timestamp)
}

// PrintProgress prints a progress step with counter
// Example: [Load] 2024-01-01 ~ 2024-01-07: 168 fetched [1/53]
func PrintProgress(tag string, message string, current int, total int) {
	fmt.Printf("[%s] %s [%d/%d]\n", tag, message, current, total)
}

// PrintJobCompletion prints job completion message
func PrintJobCompletion(tag string, seconds float64) {
	fmt.Println()
	fmt.Printf("✅ %s completed in %.2fs\n", tag, seconds)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println(strings.Repeat("─", lineWidth))
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println(strings.Repeat("═", lineWidth))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	fmt.Println(formatRow(values, widths))
}

// formatRow pads each value to its column width, counting runes
func formatRow(values []string, widths []int) string {
	var b strings.Builder
	for i, val := range values {
		b.WriteString(val)
		if pad := widths[i] - utf8.RuneCountInString(val); pad > 0 && i < len(values)-1 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		if i < len(values)-1 {
			b.WriteString("  ")
		}
	}
	return b.String()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}
