package events

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// DefaultMaxLogSize is the rotation threshold (10MB).
	DefaultMaxLogSize = 10 * 1024 * 1024
	logFileExtension  = ".jsonl"
	archiveDirName    = "archive"
)

// LogEntry is one line of the JSONL event log.
type LogEntry struct {
	Timestamp  time.Time              `json:"timestamp"`
	EventType  string                 `json:"event_type"`
	DocumentID string                 `json:"document_id,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// EventLog appends bus events to a JSONL file, rotating into an archive/
// subdirectory when the file exceeds maxSize.
type EventLog struct {
	mu        sync.Mutex
	file      *os.File
	size      int64
	maxSize   int64
	path      string
	rotations int
}

// NewEventLog opens (or creates) the log file at path.
func NewEventLog(path string, maxSize int64) (*EventLog, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxLogSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	l := &EventLog{path: path, maxSize: maxSize}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *EventLog) open() error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("stat event log: %w", err)
	}
	l.file = file
	l.size = stat.Size()
	return nil
}

// Record writes a bus event as one JSONL entry.
func (l *EventLog) Record(event Event) error {
	entry := LogEntry{
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		Details:   event.Data,
	}
	if id, ok := event.Data["document_id"].(string); ok {
		entry.DocumentID = id
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}
	data = append(data, '\n')

	if l.size+int64(len(data)) > l.maxSize {
		if err := l.rotate(); err != nil {
			return fmt.Errorf("rotate event log: %w", err)
		}
	}

	n, err := l.file.Write(data)
	if err != nil {
		return fmt.Errorf("write log entry: %w", err)
	}
	l.size += int64(n)
	return nil
}

// Attach subscribes the log to every event type on bus. The returned function
// unsubscribes all of them.
func (l *EventLog) Attach(bus *Bus) func() {
	types := []EventType{EventTopTaskChanged, EventTopTaskCleared, EventScanCompleted, EventVaultChanged}
	unsubs := make([]func(), 0, len(types))
	for _, t := range types {
		unsubs = append(unsubs, bus.Subscribe(t, func(e Event) {
			_ = l.Record(e)
		}))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (l *EventLog) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}

	archiveDir := filepath.Join(filepath.Dir(l.path), archiveDirName)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return err
	}

	base := filepath.Base(l.path)
	stem := base[:len(base)-len(filepath.Ext(base))]
	l.rotations++
	archiveName := fmt.Sprintf("%s.%s.%d%s", stem, time.Now().Format("20060102_150405"), l.rotations, logFileExtension)
	if err := os.Rename(l.path, filepath.Join(archiveDir, archiveName)); err != nil {
		return err
	}

	return l.open()
}

// Close flushes and closes the log file.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		return err
	}
	return l.file.Close()
}
