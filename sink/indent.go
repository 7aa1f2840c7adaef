package sink

import "strings"

// DefaultTabWidth is the number of spaces a single indentation level uses.
const DefaultTabWidth = 4

// Indent returns level indentation steps of width spaces each.
func Indent(width, level int) string {
	if width <= 0 || level <= 0 {
		return ""
	}
	return strings.Repeat(" ", width*level)
}
