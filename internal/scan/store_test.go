package scan

import (
	"fmt"
	"time"

	"github.com/notedeck/taskscan/internal/model"
	"github.com/notedeck/taskscan/internal/vault"
)

// memOrigin is an in-memory origin with optional injected failure.
type memOrigin struct {
	name string
	ids  []model.DocumentID
	err  error
}

func (o *memOrigin) Name() string { return o.name }

func (o *memOrigin) List() ([]model.DocumentID, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.ids, nil
}

// memStore is an in-memory vault.Store for deterministic engine tests.
type memStore struct {
	origins   []vault.Origin
	docs      map[model.DocumentID]string
	mtimes    map[model.DocumentID]time.Time
	failReads map[model.DocumentID]bool
}

func newMemStore() *memStore {
	return &memStore{
		docs:      make(map[model.DocumentID]string),
		mtimes:    make(map[model.DocumentID]time.Time),
		failReads: make(map[model.DocumentID]bool),
	}
}

func (s *memStore) addOrigin(name string, ids ...model.DocumentID) {
	s.origins = append(s.origins, &memOrigin{name: name, ids: ids})
}

func (s *memStore) addDoc(id model.DocumentID, content string) {
	s.docs[id] = content
}

func (s *memStore) Origins() []vault.Origin { return s.origins }

func (s *memStore) ReadDocument(id model.DocumentID) (string, error) {
	if s.failReads[id] {
		return "", fmt.Errorf("read %s: injected failure", id)
	}
	content, ok := s.docs[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", vault.ErrNotFound, id)
	}
	return content, nil
}

func (s *memStore) Recency(id model.DocumentID) (time.Time, error) {
	mtime, ok := s.mtimes[id]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", vault.ErrNotFound, id)
	}
	return mtime, nil
}

// singleOriginStore builds a memStore whose one origin lists the documents
// in the given order.
func singleOriginStore(docs ...[2]string) *memStore {
	s := newMemStore()
	var ids []model.DocumentID
	for _, d := range docs {
		id := model.DocumentID(d[0])
		ids = append(ids, id)
		s.addDoc(id, d[1])
	}
	s.origins = append(s.origins, &memOrigin{name: "test", ids: ids})
	return s
}
