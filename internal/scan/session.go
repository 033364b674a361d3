package scan

import (
	"errors"
	"log"
	"strings"

	"github.com/notedeck/taskscan/internal/filter"
	"github.com/notedeck/taskscan/internal/model"
	"github.com/notedeck/taskscan/internal/vault"
)

// ErrSessionNotInitialized is returned by FetchNextBatch when the session has
// not been initialized, or has been reset without re-initialization. This is
// a caller contract violation, not a data error.
var ErrSessionNotInitialized = errors.New("scan session not initialized")

// Batch is one bounded result set returned by a single FetchNextBatch call.
type Batch struct {
	Tasks []model.TaskLine
	// HasMore is conservative: it stays true while the cursor has not
	// reached the end of the document list, even when the remaining
	// documents turn out to hold no further matches.
	HasMore bool
}

// Session is one scan session: the ordered document list fixed at
// initialization plus the resume cursor. The document list is only rebuilt
// by Initialize; the cursor advances monotonically and never revisits a
// position already returned.
//
// A Session is owned by a single logical caller. Calls must be serialized by
// the caller; the watch package implements the coalescing pattern for
// concurrent refresh triggers.
type Session struct {
	store      vault.Store
	aggregator *Aggregator
	logger     *log.Logger
	logLevel   LogLevel

	docs        []model.DocumentID
	cursor      model.Cursor
	initialized bool
}

// NewSession creates an uninitialized session over the given store.
// Initialize must be called before the first FetchNextBatch.
func NewSession(store vault.Store, logger *log.Logger, logLevel LogLevel) *Session {
	return &Session{
		store:      store,
		aggregator: NewAggregator(store, logger, logLevel),
		logger:     logger,
		logLevel:   logLevel,
	}
}

// Aggregator returns the session's aggregator (for clock override in tests).
func (s *Session) Aggregator() *Aggregator {
	return s.aggregator
}

// Initialize rebuilds the ordered document list and resets the cursor to the
// start. It begins a fresh session: any previous resume position is lost.
func (s *Session) Initialize(scope vault.Scope) {
	s.docs = s.aggregator.ListDocuments(scope)
	s.cursor = model.Cursor{}
	s.initialized = true
	s.log(LogLevelDebug, "session initialized documents=%d", len(s.docs))
}

// Reset clears the cursor and document list. The session is unusable until
// the next Initialize.
func (s *Session) Reset() {
	s.docs = nil
	s.cursor = model.Cursor{}
	s.initialized = false
}

// Cursor returns the current resume position.
func (s *Session) Cursor() model.Cursor {
	return s.cursor
}

// DocumentCount returns the size of the ordered document list.
func (s *Session) DocumentCount() int {
	return len(s.docs)
}

// FetchNextBatch reads documents in list order from the cursor position and
// returns up to target matching task lines. Documents that fail to read are
// logged and skipped without failing the batch. Repeated calls without an
// intervening Initialize concatenate to exactly the full ordered match
// sequence: no line skipped, none duplicated.
func (s *Session) FetchNextBatch(target int, pred filter.Predicate) (Batch, error) {
	if !s.initialized {
		return Batch{}, ErrSessionNotInitialized
	}

	var tasks []model.TaskLine
	di := s.cursor.DocumentIndex

	for di < len(s.docs) && len(tasks) < target {
		id := s.docs[di]
		content, err := s.store.ReadDocument(id)
		if err != nil {
			// The document contributes nothing; resume past it.
			s.log(LogLevelInfo, "skip unreadable document id=%s err=%v", id, err)
			di++
			s.cursor = model.Cursor{DocumentIndex: di}
			continue
		}

		matches := matchLines(id, content, pred)

		start := 0
		if di == s.cursor.DocumentIndex {
			start = s.cursor.MatchIndex
		}

		for start < len(matches) && len(tasks) < target {
			tasks = append(tasks, matches[start])
			start++
		}

		if len(tasks) == target && start < len(matches) {
			// Mid-document stop: remember the exact resume position.
			s.cursor = model.Cursor{DocumentIndex: di, MatchIndex: start}
			return Batch{Tasks: tasks, HasMore: true}, nil
		}

		di++
		s.cursor = model.Cursor{DocumentIndex: di}
	}

	return Batch{Tasks: tasks, HasMore: di < len(s.docs)}, nil
}

// CollectAll drains the session from the current cursor position in batches
// of batchSize and returns the concatenated matches.
func (s *Session) CollectAll(batchSize int, pred filter.Predicate) ([]model.TaskLine, error) {
	if batchSize <= 0 {
		batchSize = 50
	}
	var all []model.TaskLine
	for {
		batch, err := s.FetchNextBatch(batchSize, pred)
		if err != nil {
			return nil, err
		}
		all = append(all, batch.Tasks...)
		if !batch.HasMore {
			return all, nil
		}
	}
}

// matchLines extracts, in line order, every line of content that matches the
// checkbox pattern and whose status symbol satisfies pred.
func matchLines(id model.DocumentID, content string, pred filter.Predicate) []model.TaskLine {
	lines := strings.Split(content, "\n")
	var matches []model.TaskLine
	for i, line := range lines {
		task, ok := filter.ParseTaskLine(id, i+1, line)
		if !ok || !pred(task.Status) {
			continue
		}
		matches = append(matches, task)
	}
	return matches
}

func (s *Session) log(level LogLevel, format string, args ...any) {
	if level < s.logLevel || s.logger == nil {
		return
	}
	s.logger.Printf("["+level.String()+"] "+format, args...)
}
