// Package vault implements document storage over a directory tree of
// markdown notes. Documents are identified by their path relative to the
// vault root and read lazily, one at a time.
package vault

import (
	"errors"
	"time"

	"github.com/notedeck/taskscan/internal/model"
)

// ErrNotFound is returned when a document identifier resolves to nothing.
var ErrNotFound = errors.New("document not found")

// Scope restricts which candidate documents the origins contribute.
type Scope struct {
	// CurrentPeriodOnly keeps only documents whose identifier or recency
	// falls inside the current day.
	CurrentPeriodOnly bool
}

// Origin is one independent source of candidate document identifiers.
// A failing origin contributes nothing; it must not abort aggregation.
type Origin interface {
	Name() string
	List() ([]model.DocumentID, error)
}

// Store is the document store consumed by the scan engine.
type Store interface {
	// Origins returns the configured candidate sources in configuration order.
	Origins() []Origin
	// ReadDocument returns the full text of a document. Returns an error
	// wrapping ErrNotFound when the identifier no longer resolves.
	ReadDocument(id model.DocumentID) (string, error)
	// Recency returns the document's last-modified time.
	Recency(id model.DocumentID) (time.Time, error)
}
