// Package savestore keeps machine snapshots in memory, keyed by slot name,
// and mirrors them to a host directory.
package savestore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"gochip8/pkg/chip8"
)

// MaxStoreBytes caps the total size of all slots.
const MaxStoreBytes = 1 << 20

const slotExt = ".c8s"

var validSlotName = regexp.MustCompile(`^[a-zA-Z0-9_]{1,32}\.c8s$`)

var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrInvalidSlotName = errors.New("invalid slot name")
	ErrQuotaExceeded   = errors.New("save quota exceeded")
)

type Slot struct {
	Data     []byte
	Created  time.Time
	Modified time.Time
}

type Store struct {
	mu        sync.RWMutex
	slots     map[string]*Slot
	dirty     map[string]bool
	usedBytes int
}

func New() *Store {
	return &Store{
		slots: make(map[string]*Slot),
		dirty: make(map[string]bool),
	}
}

// SlotName builds the slot name for a numbered save of a ROM. Characters
// that are not letters, digits or underscores are replaced.
func SlotName(rom string, n int) string {
	var sb strings.Builder
	for _, r := range rom {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	base := sb.String()
	if base == "" {
		base = "rom"
	}
	suffix := fmt.Sprintf("_%d", n)
	if len(base)+len(suffix) > 32 {
		base = base[:32-len(suffix)]
	}
	return base + suffix + slotExt
}

// Write stores a copy of data under name, replacing any previous slot.
func (s *Store) Write(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validSlotName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidSlotName, name)
	}

	oldSize := 0
	slot, exists := s.slots[name]
	if exists {
		oldSize = len(slot.Data)
	}
	if s.usedBytes-oldSize+len(data) > MaxStoreBytes {
		return ErrQuotaExceeded
	}

	if !exists {
		slot = &Slot{Created: time.Now()}
		s.slots[name] = slot
	}
	slot.Data = append([]byte(nil), data...)
	slot.Modified = time.Now()

	s.dirty[name] = true
	s.usedBytes += len(data) - oldSize
	return nil
}

func (s *Store) Read(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !validSlotName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlotName, name)
	}
	slot, ok := s.slots[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, name)
	}
	return append([]byte(nil), slot.Data...), nil
}

func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validSlotName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidSlotName, name)
	}
	slot, ok := s.slots[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSlotNotFound, name)
	}

	s.usedBytes -= len(slot.Data)
	delete(s.slots, name)
	// Marked dirty so the next PersistTo removes the host file.
	s.dirty[name] = true
	return nil
}

// Save snapshots m into the named slot.
func (s *Store) Save(name string, m *chip8.Machine) error {
	data, err := m.SnapshotToBytes()
	if err != nil {
		return err
	}
	return s.Write(name, data)
}

// Load restores m from the named slot.
func (s *Store) Load(name string, m *chip8.Machine) error {
	data, err := s.Read(name)
	if err != nil {
		return err
	}
	return m.RestoreFromBytes(data)
}

func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.slots))
	for k := range s.slots {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (s *Store) FreeSpace() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return MaxStoreBytes - s.usedBytes
}

func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dirty) > 0
}

// LoadFrom reads every valid slot file in dir. A missing directory is not an
// error.
func (s *Store) LoadFrom(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !validSlotName.MatchString(name) {
			continue
		}
		fullPath := filepath.Join(dir, name)
		raw, err := os.ReadFile(fullPath)
		if err != nil {
			continue
		}
		if s.usedBytes+len(raw) > MaxStoreBytes {
			return fmt.Errorf("%w: loading %s", ErrQuotaExceeded, name)
		}

		slot := &Slot{Data: raw, Created: time.Now(), Modified: time.Now()}
		if info, err := entry.Info(); err == nil {
			slot.Created = info.ModTime()
			slot.Modified = info.ModTime()
		}
		if old, ok := s.slots[name]; ok {
			s.usedBytes -= len(old.Data)
		}
		s.slots[name] = slot
		s.usedBytes += len(raw)
	}
	return nil
}

// PersistTo writes dirty slots to dir and removes deleted ones. The dirty
// set is captured under the lock and the I/O runs without it. Slots that
// fail to write stay dirty. The first error is returned.
func (s *Store) PersistTo(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	s.mu.Lock()
	pending := make(map[string]*Slot)
	var deleted []string
	for name := range s.dirty {
		if slot, ok := s.slots[name]; ok {
			pending[name] = &Slot{
				Data:     append([]byte(nil), slot.Data...),
				Created:  slot.Created,
				Modified: slot.Modified,
			}
		} else {
			deleted = append(deleted, name)
		}
		delete(s.dirty, name)
	}
	s.mu.Unlock()

	var firstErr error
	for _, name := range deleted {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	for name, slot := range pending {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, slot.Data, 0644); err != nil {
			s.mu.Lock()
			s.dirty[name] = true
			s.mu.Unlock()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		_ = os.Chtimes(path, time.Now(), slot.Modified)
	}
	return firstErr
}

// RunSyncer flushes the store to dir every interval until stop is closed,
// then does a final flush.
func (s *Store) RunSyncer(dir string, interval time.Duration, stop <-chan struct{}, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if s.Dirty() {
				if err := s.PersistTo(dir); err != nil {
					logger.Warn("save sync failed", "dir", dir, "err", err)
				}
			}
		case <-stop:
			if s.Dirty() {
				if err := s.PersistTo(dir); err != nil {
					logger.Warn("final save sync failed", "dir", dir, "err", err)
				}
			}
			return
		}
	}
}
