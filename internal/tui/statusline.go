package tui

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// Status carries what the status line displays each frame.
type Status struct {
	FileName        string
	Top             int
	Total           int
	Chunked         bool
	Chunks          int
	CompressedBytes int
	Pending         bool
	Follow          bool
}

// RenderStatus formats the status line, padded or truncated to width
// display cells.
func RenderStatus(st Status, width int) string {
	if width <= 0 {
		return ""
	}

	name := st.FileName
	if name == "" {
		name = "[no file]"
	}

	pos := fmt.Sprintf("%d/%d", st.Top+1, st.Total)
	if st.Total == 0 {
		pos = "empty"
	} else if pct := percent(st.Top, st.Total); pct >= 0 {
		pos += fmt.Sprintf(" %d%%", pct)
	}

	line := fmt.Sprintf(" %s | %s", name, pos)
	if st.Chunked {
		line += fmt.Sprintf(" | chunked %d chunks %s", st.Chunks, humanBytes(st.CompressedBytes))
	}
	if st.Pending {
		line += " | loading"
	}
	if st.Follow {
		line += " | follow"
	}

	line = runewidth.Truncate(line, width, "…")
	return runewidth.FillRight(line, width)
}

// percent returns the scroll position as 0-100.
func percent(top, total int) int {
	if total <= 0 {
		return -1
	}
	p := (top + 1) * 100 / total
	if p > 100 {
		p = 100
	}
	return p
}

// humanBytes formats a byte count for the status line.
func humanBytes(n int) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1fGB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
