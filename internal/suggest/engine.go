package suggest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"worldshelf/internal/logging"
	"worldshelf/internal/pngmeta"
	"worldshelf/internal/vrchat"
)

const day = 24 * time.Hour

// Engine runs suggestion scans.
type Engine struct {
	lookup         Lookup
	enricher       Enricher
	logger         *slog.Logger
	intN           func(n int) int
	now            func() time.Time
	extract        func(path string) (pngmeta.Result, error)
	collectTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRand sets the shuffle source. The Engine then must not be shared
// between concurrent scans.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.intN = r.IntN
		}
	}
}

// WithClock overrides the time source used for age filtering and DetectedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithExtractor overrides the metadata extractor.
func WithExtractor(extract func(path string) (pngmeta.Result, error)) Option {
	return func(e *Engine) {
		if extract != nil {
			e.extract = extract
		}
	}
}

// WithCollectTimeout bounds candidate collection. When it expires, the scan
// continues with the candidates found so far. Zero disables the deadline.
func WithCollectTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.collectTimeout = d
		}
	}
}

// New creates an Engine. enricher may be nil, in which case every suggestion
// is left unenriched.
func New(lookup Lookup, enricher Enricher, opts ...Option) *Engine {
	e := &Engine{
		lookup:   lookup,
		enricher: enricher,
		logger:   logging.NewNop(),
		intN:     rand.IntN,
		now:      time.Now,
		extract:  pngmeta.Extract,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "suggest")
	return e
}

// Scan returns at most MaxSuggestions suggestions for screenshots under dir
// modified within the last scanPeriodDays days. It never returns nil.
func (e *Engine) Scan(ctx context.Context, dir string, scanPeriodDays int, dismissed []string) (suggestions []Suggestion) {
	logger := e.logger.With(logging.String(logging.FieldScanID, uuid.NewString()))
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logger, "photo scan failed", "scan_failed",
				logging.Any("panic", r),
				logging.String(logging.FieldPath, dir),
			)
			suggestions = []Suggestion{}
		}
	}()

	start := time.Now()
	candidates := e.collect(ctx, logger, dir, scanPeriodDays, dismissed)
	if ctx.Err() != nil {
		logger.Info("photo scan cancelled", logging.Error(ctx.Err()))
		return []Suggestion{}
	}
	selected := e.Select(candidates)
	suggestions = e.enrich(ctx, logger, selected)

	logger.Info("photo scan complete",
		logging.String(logging.FieldPath, dir),
		logging.Int("candidates", len(candidates)),
		logging.Int("suggestions", len(suggestions)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return suggestions
}

// Collect gathers candidates: recent PNG files whose world is not cataloged,
// not dismissed, and not already collected in this pass. Files are processed
// one at a time in lexical walk order. It never returns nil.
func (e *Engine) Collect(ctx context.Context, dir string, scanPeriodDays int, dismissed []string) []Candidate {
	return e.collect(ctx, e.logger, dir, scanPeriodDays, dismissed)
}

func (e *Engine) collect(ctx context.Context, logger *slog.Logger, dir string, scanPeriodDays int, dismissed []string) []Candidate {
	candidates := []Candidate{}
	if strings.TrimSpace(dir) == "" {
		logger.Debug("photo directory not set")
		return candidates
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		logger.Info("photo directory not found", logging.String(logging.FieldPath, dir))
		return candidates
	}

	if e.collectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.collectTimeout)
		defer cancel()
	}

	files, err := listPNGFiles(logger, dir)
	if err != nil {
		logging.ErrorWithContext(logger, "failed to list photo directory", "scan_list_failed",
			logging.String(logging.FieldPath, dir),
			logging.Error(err),
		)
		return candidates
	}

	dismissedSet := make(map[string]struct{}, len(dismissed))
	for _, id := range dismissed {
		dismissedSet[id] = struct{}{}
	}
	processed := make(map[string]struct{})
	window := scanWindow(scanPeriodDays)
	now := e.now()

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			logger.Info("stopping candidate collection early",
				logging.Error(err),
				logging.Int("candidates", len(candidates)),
			)
			break
		}
		path := filepath.Join(dir, filepath.FromSlash(rel))
		worldID, ok := e.inspectFile(ctx, logger, path, now, window)
		if !ok {
			continue
		}
		if _, seen := processed[worldID]; seen {
			continue
		}
		existing, err := e.lookup.FindByExternalID(ctx, worldID)
		if err != nil {
			logging.WarnWithContext(logger, "catalog lookup failed; skipping photo", "scan_lookup_failed",
				logging.String(logging.FieldPath, path),
				logging.String(logging.FieldWorldID, worldID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "photo not considered for suggestions"),
			)
			continue
		}
		if existing != nil {
			processed[worldID] = struct{}{}
			continue
		}
		if _, skip := dismissedSet[worldID]; skip {
			continue
		}
		processed[worldID] = struct{}{}
		candidates = append(candidates, Candidate{WorldID: worldID, FilePath: path, FileName: rel})
	}
	return candidates
}

// scanWindow converts a day count to a duration, saturating at the largest
// representable duration.
func scanWindow(days int) time.Duration {
	if int64(days) > math.MaxInt64/int64(day) {
		return math.MaxInt64
	}
	return time.Duration(days) * day
}

// inspectFile applies the age window and extracts the world ID.
func (e *Engine) inspectFile(ctx context.Context, logger *slog.Logger, path string, now time.Time, window time.Duration) (worldID string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.WarnWithContext(logger, "photo inspection panicked; skipping photo", "scan_file_failed",
				logging.String(logging.FieldPath, path),
				logging.Any("panic", r),
			)
			worldID, ok = "", false
		}
	}()

	info, err := os.Stat(path)
	if err != nil {
		logging.WarnWithContext(logger, "failed to stat photo; skipping", "scan_file_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "photo not considered for suggestions"),
		)
		return "", false
	}
	if now.Sub(info.ModTime()) > window {
		return "", false
	}

	result, err := e.extract(path)
	if err != nil {
		logging.WarnWithContext(logger, "failed to read photo metadata; skipping", "scan_file_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "photo not considered for suggestions"),
		)
		return "", false
	}
	if result.WorldID == "" {
		return "", false
	}
	return result.WorldID, true
}

// listPNGFiles returns paths relative to root, slash separated, for every
// non-directory entry with a .png extension in any letter case. Unreadable
// subdirectories are logged and skipped.
func listPNGFiles(logger *slog.Logger, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logging.WarnWithContext(logger, "failed to read photo subdirectory; skipping", "scan_walk_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(walkErr),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsPNG(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// IsPNG reports whether path has a .png extension, ignoring case.
func IsPNG(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".png")
}

// Select shuffles a copy of candidates with Fisher–Yates and keeps at most
// MaxSuggestions of them.
func (e *Engine) Select(candidates []Candidate) []Candidate {
	shuffled := make([]Candidate, len(candidates))
	copy(shuffled, candidates)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := e.intN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if len(shuffled) > MaxSuggestions {
		shuffled = shuffled[:MaxSuggestions]
	}
	return shuffled
}

// Enrich builds a suggestion for each candidate in order, looking worlds up
// one at a time. Lookup failures produce a suggestion without details.
func (e *Engine) Enrich(ctx context.Context, selected []Candidate) []Suggestion {
	return e.enrich(ctx, e.logger, selected)
}

func (e *Engine) enrich(ctx context.Context, logger *slog.Logger, selected []Candidate) []Suggestion {
	suggestions := make([]Suggestion, 0, len(selected))
	for _, candidate := range selected {
		suggestion := Suggestion{
			ID:            suggestionID(candidate.WorldID, candidate.FileName),
			PhotoFilePath: candidate.FilePath,
			PhotoFileName: candidate.FileName,
			WorldID:       candidate.WorldID,
			WorldName:     UnknownWorldName,
		}

		world, err := e.fetch(ctx, candidate.WorldID)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "failed to fetch world details", "scan_enrich_failed",
				logging.String(logging.FieldWorldID, candidate.WorldID),
				logging.String(logging.FieldPath, candidate.FilePath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "suggestion shown as Unknown World"),
			)
		case world != nil:
			if world.Name != "" {
				suggestion.WorldName = world.Name
			}
			if author, ok := world.Author(); ok {
				suggestion.WorldAuthor = &author
			}
			if thumb, ok := world.Thumbnail(); ok {
				suggestion.WorldThumbnail = &thumb
			}
		}

		suggestion.DetectedAt = e.now()
		suggestions = append(suggestions, suggestion)
	}
	return suggestions
}

var errNoEnricher = errors.New("world lookup not configured")

func (e *Engine) fetch(ctx context.Context, worldID string) (world *vrchat.World, err error) {
	if e.enricher == nil {
		return nil, errNoEnricher
	}
	defer func() {
		if r := recover(); r != nil {
			world, err = nil, fmt.Errorf("world lookup panicked: %v", r)
		}
	}()
	return e.enricher.GetWorld(ctx, worldID)
}
