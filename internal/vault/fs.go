package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/notedeck/taskscan/internal/model"
)

// FSStore is a Store backed by a directory tree on the local filesystem.
type FSStore struct {
	root    string
	origins []Origin
}

// NewFSStore builds a store rooted at root with origins constructed from the
// configuration. Unknown origin kinds are skipped.
func NewFSStore(root string, cfgs []model.OriginConfig) *FSStore {
	s := &FSStore{root: root}
	for _, cfg := range cfgs {
		switch cfg.Kind {
		case "subtree":
			s.origins = append(s.origins, &SubtreeOrigin{root: root, dir: cfg.Path})
		case "daily":
			s.origins = append(s.origins, &DailyOrigin{root: root, dir: cfg.Path, layout: cfg.Pattern})
		case "tagged":
			s.origins = append(s.origins, &TaggedOrigin{root: root, dir: cfg.Path, tags: cfg.Tags})
		}
	}
	return s
}

// Root returns the vault root directory.
func (s *FSStore) Root() string {
	return s.root
}

func (s *FSStore) Origins() []Origin {
	return s.origins
}

func (s *FSStore) ReadDocument(id model.DocumentID) (string, error) {
	content, err := os.ReadFile(s.abs(id))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return "", fmt.Errorf("read %s: %w", id, err)
	}
	return string(content), nil
}

func (s *FSStore) Recency(id model.DocumentID) (time.Time, error) {
	info, err := os.Stat(s.abs(id))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return time.Time{}, fmt.Errorf("stat %s: %w", id, err)
	}
	return info.ModTime(), nil
}

func (s *FSStore) abs(id model.DocumentID) string {
	return filepath.Join(s.root, filepath.FromSlash(string(id)))
}
