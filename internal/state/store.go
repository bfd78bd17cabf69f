// Package state persists tracker state as JSON files with backup
// support, so ratings and rolling history survive process restarts.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/rating"
	"github.com/yourusername/courtside/internal/rolling"
)

// Version identifies the on-disk state format.
const Version = "1.0"

// DefaultDir is the state directory used when none is configured.
const DefaultDir = "state"

// Metadata records pipeline progress alongside the tracker files.
type Metadata struct {
	LastProcessedDate   *string `json:"last_processed_date"`
	LastUpdated         *string `json:"last_updated"`
	GamesProcessedTotal int     `json:"games_processed_total"`
	Version             string  `json:"version"`
}

// Store reads and writes tracker state under a single directory:
// elo.json, stats.json and metadata.json, each with an optional
// .json.bak sibling.
type Store struct {
	dir          string
	eloPath      string
	statsPath    string
	metadataPath string
}

// NewStore creates a Store rooted at dir. An empty dir uses DefaultDir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{
		dir:          dir,
		eloPath:      filepath.Join(dir, "elo.json"),
		statsPath:    filepath.Join(dir, "stats.json"),
		metadataPath: filepath.Join(dir, "metadata.json"),
	}
}

// Dir returns the state directory.
func (s *Store) Dir() string {
	return s.dir
}

// Exists checks whether both tracker files are present.
func (s *Store) Exists() bool {
	return fileExists(s.eloPath) && fileExists(s.statsPath)
}

// Load reads both trackers from disk. Missing files yield fresh empty
// trackers; malformed files are an error since silently dropping state
// would corrupt every rating downstream.
func (s *Store) Load(ratingCfg rating.Config) (*rating.Tracker, *rolling.Tracker, error) {
	ratings := rating.NewTracker(ratingCfg)
	if data, err := os.ReadFile(s.eloPath); err == nil {
		var raw map[string]float64
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, nil, fmt.Errorf("malformed rating state %s: %w", s.eloPath, err)
		}
		snapshot := make(map[int]float64, len(raw))
		for key, v := range raw {
			id, err := strconv.Atoi(key)
			if err != nil {
				return nil, nil, fmt.Errorf("malformed rating state %s: bad team id %q", s.eloPath, key)
			}
			snapshot[id] = v
		}
		ratings.Restore(snapshot)
	} else if !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("read rating state: %w", err)
	}

	form := rolling.NewTracker()
	if data, err := os.ReadFile(s.statsPath); err == nil {
		var raw map[string][]rolling.GameRecord
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, nil, fmt.Errorf("malformed rolling state %s: %w", s.statsPath, err)
		}
		snapshot := make(map[int][]rolling.GameRecord, len(raw))
		for key, games := range raw {
			id, err := strconv.Atoi(key)
			if err != nil {
				return nil, nil, fmt.Errorf("malformed rolling state %s: bad team id %q", s.statsPath, key)
			}
			snapshot[id] = games
		}
		form.Restore(snapshot)
	} else if !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("read rolling state: %w", err)
	}

	return ratings, form, nil
}

// Save writes both trackers and stamps metadata.last_updated. With
// createBackup set, existing files are copied to .json.bak siblings
// first.
func (s *Store) Save(ratings *rating.Tracker, form *rolling.Tracker, createBackup bool) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	if createBackup {
		if err := backupFile(s.eloPath); err != nil {
			return err
		}
		if err := backupFile(s.statsPath); err != nil {
			return err
		}
	}

	eloOut := make(map[string]float64, ratings.Len())
	for id, r := range ratings.Snapshot() {
		eloOut[strconv.Itoa(id)] = r
	}
	if err := writeJSON(s.eloPath, eloOut); err != nil {
		return fmt.Errorf("write rating state: %w", err)
	}

	statsOut := make(map[string][]rolling.GameRecord, form.Len())
	for id, games := range form.Snapshot() {
		statsOut[strconv.Itoa(id)] = games
	}
	if err := writeJSON(s.statsPath, statsOut); err != nil {
		return fmt.Errorf("write rolling state: %w", err)
	}

	meta := s.readMetadata()
	now := time.Now().Format(time.RFC3339)
	meta.LastUpdated = &now
	return s.writeMetadata(meta)
}

// RestoreBackup replaces both tracker files from their .json.bak
// siblings. It returns false when either backup is missing.
func (s *Store) RestoreBackup() (bool, error) {
	eloBak := s.eloPath + ".bak"
	statsBak := s.statsPath + ".bak"

	if !fileExists(eloBak) || !fileExists(statsBak) {
		return false, nil
	}

	if err := copyFile(eloBak, s.eloPath); err != nil {
		return false, fmt.Errorf("restore rating state: %w", err)
	}
	if err := copyFile(statsBak, s.statsPath); err != nil {
		return false, fmt.Errorf("restore rolling state: %w", err)
	}
	return true, nil
}

// LastProcessedDate returns the newest game date already folded into
// state, when one is recorded.
func (s *Store) LastProcessedDate() (time.Time, bool) {
	meta := s.readMetadata()
	if meta.LastProcessedDate == nil {
		return time.Time{}, false
	}
	d, err := time.Parse(models.GameDateLayout, *meta.LastProcessedDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// SetLastProcessedDate records the newest processed game date.
func (s *Store) SetLastProcessedDate(d time.Time) error {
	meta := s.readMetadata()
	dateStr := d.Format(models.GameDateLayout)
	now := time.Now().Format(time.RFC3339)
	meta.LastProcessedDate = &dateStr
	meta.LastUpdated = &now
	return s.writeMetadata(meta)
}

// IncrementGamesProcessed adds count to the lifetime processed-game
// counter and returns the new total.
func (s *Store) IncrementGamesProcessed(count int) (int, error) {
	meta := s.readMetadata()
	meta.GamesProcessedTotal += count
	if err := s.writeMetadata(meta); err != nil {
		return 0, err
	}
	return meta.GamesProcessedTotal, nil
}

// GamesProcessedTotal returns the lifetime processed-game counter.
func (s *Store) GamesProcessedTotal() int {
	return s.readMetadata().GamesProcessedTotal
}

// Metadata returns the current metadata record.
func (s *Store) Metadata() Metadata {
	return s.readMetadata()
}

// readMetadata is forgiving: a missing or corrupt metadata file yields
// a fresh default record, unlike the tracker files.
func (s *Store) readMetadata() Metadata {
	meta := Metadata{GamesProcessedTotal: 0, Version: Version}

	data, err := os.ReadFile(s.metadataPath)
	if err != nil {
		return meta
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{GamesProcessedTotal: 0, Version: Version}
	}
	return meta
}

func (s *Store) writeMetadata(meta Metadata) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	meta.Version = Version
	if err := writeJSON(s.metadataPath, meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// backupFile copies path to path.bak when path exists.
func backupFile(path string) error {
	if !fileExists(path) {
		return nil
	}
	if err := copyFile(path, path+".bak"); err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
