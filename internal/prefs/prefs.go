package prefs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"worldshelf/internal/fileutil"
	"worldshelf/internal/logging"
)

// DefaultScanPeriodDays is how far back scans look when unset.
const DefaultScanPeriodDays = 14

// MaxScanPeriodDays caps how far back scans may look.
const MaxScanPeriodDays = 36500

// Preferences is the persisted preferences document.
type Preferences struct {
	PhotoDirectoryPath string   `json:"photoDirectoryPath,omitempty"`
	ScanPeriodDays     int      `json:"scanPeriodDays"`
	DismissedWorldIDs  []string `json:"dismissedWorldIds"`
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() Preferences {
	return Preferences{
		ScanPeriodDays:    DefaultScanPeriodDays,
		DismissedWorldIDs: []string{},
	}
}

// IsDismissed reports whether worldID was dismissed.
func (p Preferences) IsDismissed(worldID string) bool {
	return slices.Contains(p.DismissedWorldIDs, worldID)
}

// Patch describes a partial preferences update. Nil fields are left alone.
type Patch struct {
	PhotoDirectoryPath *string
	ScanPeriodDays     *int
}

// Store reads and writes the preferences document.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
	mu     sync.Mutex
}

// New creates a Store for the document at path. The lock file sits beside it.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(filepath.Dir(path), "preferences.lock")
	return &Store{
		path:   path,
		lock:   flock.New(lockPath),
		logger: logging.NewComponentLogger(logger, "prefs"),
	}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the preferences. Missing, empty, and unparseable documents yield
// defaults; other read failures are returned.
func (s *Store) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save replaces the stored preferences.
func (s *Store) Save(prefs Preferences) error {
	return s.modify(func(current *Preferences) bool {
		*current = prefs
		return true
	})
}

// Update applies a patch and returns the resulting preferences.
func (s *Store) Update(patch Patch) (Preferences, error) {
	if patch.ScanPeriodDays != nil && *patch.ScanPeriodDays < 1 {
		return Preferences{}, fmt.Errorf("scan period must be at least 1 day, got %d", *patch.ScanPeriodDays)
	}
	if patch.ScanPeriodDays != nil && *patch.ScanPeriodDays > MaxScanPeriodDays {
		return Preferences{}, fmt.Errorf("scan period must be at most %d days, got %d", MaxScanPeriodDays, *patch.ScanPeriodDays)
	}
	var result Preferences
	err := s.modify(func(current *Preferences) bool {
		if patch.PhotoDirectoryPath != nil {
			current.PhotoDirectoryPath = strings.TrimSpace(*patch.PhotoDirectoryPath)
		}
		if patch.ScanPeriodDays != nil {
			current.ScanPeriodDays = *patch.ScanPeriodDays
		}
		result = *current
		return true
	})
	return result, err
}

// Dismiss adds worldID to the dismissed list. Dismissing an ID that is already
// present writes nothing and reports false.
func (s *Store) Dismiss(worldID string) (bool, error) {
	worldID = strings.TrimSpace(worldID)
	if worldID == "" {
		return false, errors.New("world id must not be empty")
	}
	added := false
	err := s.modify(func(current *Preferences) bool {
		if current.IsDismissed(worldID) {
			return false
		}
		current.DismissedWorldIDs = append(current.DismissedWorldIDs, worldID)
		added = true
		return true
	})
	if err != nil {
		return false, err
	}
	if added {
		s.logger.Debug("dismissed world", logging.String(logging.FieldWorldID, worldID))
	}
	return added, nil
}

// ClearDismissed empties the dismissed list and reports how many IDs it held.
func (s *Store) ClearDismissed() (int, error) {
	cleared := 0
	err := s.modify(func(current *Preferences) bool {
		cleared = len(current.DismissedWorldIDs)
		if cleared == 0 {
			return false
		}
		current.DismissedWorldIDs = []string{}
		return true
	})
	return cleared, err
}

// modify runs a locked read-modify-write. fn reports whether a write is needed.
func (s *Store) modify(fn func(*Preferences) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock preferences: %w", err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release preferences lock", logging.Error(err))
		}
	}()

	current, err := s.load()
	if err != nil {
		return err
	}
	if !fn(&current) {
		return nil
	}
	return s.save(current)
}

func (s *Store) load() (Preferences, error) {
	prefs := Defaults()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return prefs, nil
		}
		return Preferences{}, fmt.Errorf("read preferences: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return prefs, nil
	}

	if err := json.Unmarshal(data, &prefs); err != nil {
		logging.WarnWithContext(s.logger, "preferences file is corrupted; using defaults", "prefs_parse_failed",
			logging.String(logging.FieldPath, s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix or delete the file; the next change overwrites it"),
			logging.String(logging.FieldImpact, "photo directory and dismissed worlds are reset for this run"),
		)
		return Defaults(), nil
	}
	return normalize(prefs), nil
}

func normalize(prefs Preferences) Preferences {
	if prefs.ScanPeriodDays <= 0 {
		prefs.ScanPeriodDays = DefaultScanPeriodDays
	}
	if prefs.ScanPeriodDays > MaxScanPeriodDays {
		prefs.ScanPeriodDays = MaxScanPeriodDays
	}
	seen := make(map[string]struct{}, len(prefs.DismissedWorldIDs))
	ids := make([]string, 0, len(prefs.DismissedWorldIDs))
	for _, id := range prefs.DismissedWorldIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	prefs.DismissedWorldIDs = ids
	return prefs
}

// save writes the document atomically via a temp file.
func (s *Store) save(prefs Preferences) error {
	prefs = normalize(prefs)
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
