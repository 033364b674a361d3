// Package filter compiles status filter sets into inclusion predicates and
// recognizes checkbox task lines.
package filter

import (
	"regexp"
	"strings"

	"github.com/notedeck/taskscan/internal/model"
)

// checkboxPattern matches a task line: optional leading whitespace, a list
// marker dash, a single-character bracket token, then whitespace and text.
// Group 1 captures the status symbol.
var checkboxPattern = regexp.MustCompile(`^\s*- \[(.)\]\s+\S`)

// Predicate reports whether a status symbol is included by a compiled filter.
type Predicate func(symbol rune) bool

// Compile turns a StatusFilterSet into an inclusion predicate.
// Absent symbols are excluded. Enabling the dot symbol also enables the open
// symbol; the reverse is not propagated. An empty effective inclusion set
// compiles to a predicate that matches nothing.
func Compile(set model.StatusFilterSet) Predicate {
	included := make(map[rune]bool, len(set))
	for sym, on := range set {
		if on {
			included[sym] = true
		}
	}
	if included[model.StatusDot] {
		included[model.StatusOpen] = true
	}
	if len(included) == 0 {
		return func(rune) bool { return false }
	}
	return func(sym rune) bool { return included[sym] }
}

// ParseTaskLine checks line against the checkbox pattern and, on a match,
// returns the TaskLine it encodes. lineNumber is 1-based.
func ParseTaskLine(docID model.DocumentID, lineNumber int, line string) (model.TaskLine, bool) {
	m := checkboxPattern.FindStringSubmatch(line)
	if m == nil {
		return model.TaskLine{}, false
	}
	return model.TaskLine{
		DocumentID: docID,
		LineNumber: lineNumber,
		RawLine:    strings.TrimSpace(line),
		Status:     []rune(m[1])[0],
	}, true
}
