package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/models"
)

// DefaultPath is the ledger file used when none is configured
const DefaultPath = "photo_info.json"

// Ledger is the local JSON record of every photo seen by previous runs
type Ledger struct {
	path   string
	logger logger.Logger

	// set when Load found a file it could not parse
	corrupt bool
}

// New creates a ledger bound to path
func New(path string, log logger.Logger) *Ledger {
	if path == "" {
		path = DefaultPath
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Ledger{
		path:   path,
		logger: log.WithField("ledger", path),
	}
}

// Path returns the ledger file location
func (l *Ledger) Path() string {
	return l.path
}

// Load returns the records stored in the ledger file. A missing file or one
// that does not hold a JSON array of records yields an empty ledger; the
// problem is logged and never returned.
func (l *Ledger) Load() []models.PhotoRecord {
	l.corrupt = false

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("Ledger file not found, starting empty")
		} else {
			l.logger.WithError(errs.Wrap(errs.ErrorTypeLedgerRead, "load ledger", err)).
				Warn("Ledger unreadable, starting empty")
		}
		return []models.PhotoRecord{}
	}

	var records []models.PhotoRecord
	if err := json.Unmarshal(data, &records); err != nil {
		l.corrupt = true
		l.logger.WithError(errs.Wrap(errs.ErrorTypeLedgerRead, "load ledger", err)).
			Warn("Ledger is not valid JSON, starting empty")
		return []models.PhotoRecord{}
	}
	if records == nil {
		records = []models.PhotoRecord{}
	}

	l.logger.InfoWithFields("Ledger loaded", map[string]interface{}{
		"records": len(records),
	})
	return records
}

// Merge appends the fetched records whose URL is not yet known, in fetch
// order. Duplicates inside fetched are dropped too. The existing slice is
// not modified; added holds only the appended records.
func Merge(existing, fetched []models.PhotoRecord) (merged, added []models.PhotoRecord) {
	seen := make(map[string]struct{}, len(existing)+len(fetched))
	merged = make([]models.PhotoRecord, 0, len(existing)+len(fetched))

	for _, r := range existing {
		seen[r.URL] = struct{}{}
		merged = append(merged, r)
	}

	added = []models.PhotoRecord{}
	for _, r := range fetched {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		merged = append(merged, r)
		added = append(added, r)
	}

	return merged, added
}

// Persist rewrites the ledger file with records as a 2-space indented JSON
// array. The file is replaced atomically. If Load had found the previous file
// corrupt, that file is kept as a timestamped .corrupt copy first.
func (l *Ledger) Persist(records []models.PhotoRecord) error {
	if records == nil {
		records = []models.PhotoRecord{}
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	if l.corrupt {
		if err := l.backupCorrupt(); err != nil {
			l.logger.WithError(err).Warn("Could not keep a copy of the corrupt ledger")
		}
		l.corrupt = false
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary ledger file: %w", err)
	}
	tempPath := tmp.Name()

	encoder := json.NewEncoder(tmp)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close ledger file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to set ledger permissions: %w", err)
	}

	if err := os.Rename(tempPath, l.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}

	l.logger.DebugWithFields("Ledger saved", map[string]interface{}{
		"records": len(records),
	})
	return nil
}

func (l *Ledger) backupCorrupt() error {
	src, err := os.Open(l.path)
	if err != nil {
		return err
	}
	defer src.Close()

	backupPath := fmt.Sprintf("%s.corrupt-%s", l.path, time.Now().Format("20060102-150405"))
	dst, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	l.logger.InfoWithFields("Corrupt ledger kept", map[string]interface{}{
		"backup": backupPath,
	})
	return nil
}
