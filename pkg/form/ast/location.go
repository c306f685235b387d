package ast

import "fmt"

// Location is the source position of a node in the form document.
type Location struct {
	File   string // Path to the form file
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// String formats the location as "file:line:column".
func (l Location) String() string {
	if l.File == "" {
		if l.Line > 0 {
			return fmt.Sprintf("%d:%d", l.Line, l.Column)
		}
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// IsValid returns true if the location carries line information.
func (l Location) IsValid() bool {
	return l.Line > 0
}
