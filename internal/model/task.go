// Package model defines the data structures for taskscan's configuration,
// documents, task lines, and ranking.
package model

// DocumentID uniquely identifies a document by its path-like identifier.
type DocumentID string

// TaskLine is a single line within a document recognized as a status-tagged
// task. Immutable once produced.
type TaskLine struct {
	DocumentID DocumentID `json:"document_id"`
	LineNumber int        `json:"line_number"` // 1-based
	RawLine    string     `json:"raw_line"`    // trimmed text
	Status     rune       `json:"-"`           // character inside the bracket token
}

// StatusString returns the status symbol as a string for display and
// serialization.
func (t TaskLine) StatusString() string {
	return string(t.Status)
}

// RankedTask is a TaskLine annotated by the ranker. Rank is nil for tasks
// whose status matched no tier.
type RankedTask struct {
	TaskLine
	Rank  *int `json:"rank,omitempty"`
	IsTop bool `json:"is_top,omitempty"`
}

// Cursor is the exact resume position for paginated scanning: the index of
// the document being read and the index of the next unconsumed match within
// that document's match list. The zero value points at the start of the
// document list.
type Cursor struct {
	DocumentIndex int
	MatchIndex    int
}

// RankTier associates one status symbol with a precedence rank.
// Lower priority values take precedence.
type RankTier struct {
	Symbol   rune
	Priority int
}

// StatusFilterSet maps a status symbol to an "included" flag. Symbols absent
// from the map are excluded (closed world).
type StatusFilterSet map[rune]bool

// Well-known status symbols. The open symbol and the dot symbol are synonyms
// on the filter side: enabling the dot also enables open.
const (
	StatusOpen   = ' '
	StatusDot    = '.'
	StatusDone   = 'x'
	StatusActive = '/'
	StatusUrgent = '!'
	StatusNext   = '+'
)
