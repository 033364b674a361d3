// Package rank selects the single highest-priority "top" task from a loaded
// task set using configurable status tiers and a recency tie-break.
package rank

import (
	"log"
	"sort"
	"time"

	"github.com/notedeck/taskscan/internal/events"
	"github.com/notedeck/taskscan/internal/model"
	"github.com/notedeck/taskscan/internal/scan"
	"github.com/notedeck/taskscan/internal/vault"
)

// Result is the outcome of one ranking pass. Tasks is a fresh annotated
// snapshot; the input slice is never mutated. Top is nil when no tier
// produced a match.
type Result struct {
	Tasks []model.RankedTask
	Top   *model.RankedTask
}

// Ranker ranks loaded tasks. It never triggers additional scanning; it only
// considers the tasks handed to it.
type Ranker struct {
	store    vault.Store
	bus      *events.Bus
	logger   *log.Logger
	logLevel scan.LogLevel
}

// NewRanker creates a Ranker. bus may be nil when no observers are wired.
func NewRanker(store vault.Store, bus *events.Bus, logger *log.Logger, logLevel scan.LogLevel) *Ranker {
	return &Ranker{store: store, bus: bus, logger: logger, logLevel: logLevel}
}

// Rank annotates tasks against tiers and selects the top task.
//
// Tiers are visited in ascending priority order. Every task whose status
// matches a tier carries that tier's rank, for every tier with at least one
// match. The first tier with a match chooses the winner: its most recently
// modified task. Later tiers still annotate but never displace the winner.
//
// The outcome is additionally published on the bus as top_task_changed or
// top_task_cleared so observers need not re-run the ranking.
func (r *Ranker) Rank(tasks []model.TaskLine, tiers []model.RankTier) Result {
	ranked := make([]model.RankedTask, len(tasks))
	for i, t := range tasks {
		ranked[i] = model.RankedTask{TaskLine: t}
	}

	ordered := make([]model.RankTier, len(tiers))
	copy(ordered, tiers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	var top *model.RankedTask
	for _, tier := range ordered {
		var matched []int
		for i := range ranked {
			if ranked[i].Status != tier.Symbol {
				continue
			}
			priority := tier.Priority
			ranked[i].Rank = &priority
			matched = append(matched, i)
		}

		if top != nil || len(matched) == 0 {
			continue
		}

		// Most recently modified document wins; equal timestamps keep
		// their input order. One recency lookup per document, not per
		// comparison.
		modified := make(map[model.DocumentID]time.Time, len(matched))
		for _, i := range matched {
			id := ranked[i].DocumentID
			if _, ok := modified[id]; !ok {
				modified[id] = r.recency(id)
			}
		}
		sort.SliceStable(matched, func(a, b int) bool {
			return modified[ranked[matched[a]].DocumentID].After(modified[ranked[matched[b]].DocumentID])
		})
		winner := matched[0]
		ranked[winner].IsTop = true
		top = &ranked[winner]
	}

	r.notify(top)
	return Result{Tasks: ranked, Top: top}
}

func (r *Ranker) recency(id model.DocumentID) time.Time {
	modified, err := r.store.Recency(id)
	if err != nil {
		r.log(scan.LogLevelDebug, "recency unavailable id=%s err=%v", id, err)
		return time.Time{}
	}
	return modified
}

func (r *Ranker) notify(top *model.RankedTask) {
	if r.bus == nil {
		return
	}
	if top == nil {
		r.bus.Publish(events.EventTopTaskCleared, nil)
		return
	}
	r.bus.Publish(events.EventTopTaskChanged, map[string]interface{}{
		"document_id": string(top.DocumentID),
		"line_number": top.LineNumber,
		"status":      top.StatusString(),
		"text":        top.RawLine,
	})
}

func (r *Ranker) log(level scan.LogLevel, format string, args ...any) {
	if level < r.logLevel || r.logger == nil {
		return
	}
	r.logger.Printf("["+level.String()+"] "+format, args...)
}
