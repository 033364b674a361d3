package lock

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestFileLock_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.lock")

	fl := NewFileLock(path)
	if err := fl.TryLock(); err != nil {
		t.Fatalf("lock: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid != os.Getpid() {
		t.Errorf("lock file pid: got %q", data)
	}

	if err := fl.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("lock file should be removed on unlock")
	}
}

func TestFileLock_SecondHolderRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.lock")

	first := NewFileLock(path)
	if err := first.TryLock(); err != nil {
		t.Fatalf("first lock: %v", err)
	}
	defer first.Unlock()

	second := NewFileLock(path)
	if err := second.TryLock(); err == nil {
		second.Unlock()
		t.Error("second lock should fail while first is held")
	}
}

func TestFileLock_UnlockIdempotent(t *testing.T) {
	fl := NewFileLock(filepath.Join(t.TempDir(), "watch.lock"))
	if err := fl.TryLock(); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := fl.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := fl.Unlock(); err != nil {
		t.Errorf("second unlock: %v", err)
	}
}
