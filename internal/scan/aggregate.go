// Package scan implements the incremental task discovery engine: the
// document source aggregator and the cursor-based scanner/paginator.
package scan

import (
	"log"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/notedeck/taskscan/internal/model"
	"github.com/notedeck/taskscan/internal/vault"
)

// periodLayout is the identifier date pattern used by the current-period
// restriction.
const periodLayout = "2006-01-02"

// Aggregator assembles the ordered candidate document list for one scan
// session.
type Aggregator struct {
	store    vault.Store
	logger   *log.Logger
	logLevel LogLevel

	// now is replaceable for current-period tests.
	now func() time.Time
}

// NewAggregator creates an Aggregator over the given store.
func NewAggregator(store vault.Store, logger *log.Logger, logLevel LogLevel) *Aggregator {
	return &Aggregator{
		store:    store,
		logger:   logger,
		logLevel: logLevel,
		now:      time.Now,
	}
}

// SetNow overrides the clock for testing.
func (a *Aggregator) SetNow(now func() time.Time) {
	a.now = now
}

// ListDocuments unions the identifiers contributed by every origin,
// deduplicates them, applies the scope restriction, and returns them sorted
// by trailing filename component in descending lexicographic order. The sort
// is stable: ties keep their original union order. A failing origin
// contributes nothing.
func (a *Aggregator) ListDocuments(scope vault.Scope) []model.DocumentID {
	var union []model.DocumentID
	seen := make(map[model.DocumentID]bool)

	for _, origin := range a.store.Origins() {
		ids, err := origin.List()
		if err != nil {
			a.log(LogLevelWarn, "origin %s unavailable: %v", origin.Name(), err)
			continue
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			union = append(union, id)
		}
	}

	if scope.CurrentPeriodOnly {
		union = a.filterCurrentPeriod(union)
	}

	sort.SliceStable(union, func(i, j int) bool {
		return path.Base(string(union[i])) > path.Base(string(union[j]))
	})
	return union
}

// filterCurrentPeriod keeps documents whose identifier names the current day
// or whose last-modified time falls inside it.
func (a *Aggregator) filterCurrentPeriod(ids []model.DocumentID) []model.DocumentID {
	now := a.now()
	today := now.Format(periodLayout)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var kept []model.DocumentID
	for _, id := range ids {
		if strings.Contains(path.Base(string(id)), today) {
			kept = append(kept, id)
			continue
		}
		modified, err := a.store.Recency(id)
		if err == nil && !modified.Before(dayStart) {
			kept = append(kept, id)
		}
	}
	return kept
}

func (a *Aggregator) log(level LogLevel, format string, args ...any) {
	if level < a.logLevel || a.logger == nil {
		return
	}
	a.logger.Printf("["+level.String()+"] "+format, args...)
}
