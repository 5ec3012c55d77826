package ledger

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	// backupRetention is how many timestamped backups are kept; older ones
	// are evicted by modification time.
	backupRetention = 10

	backupTimeFormat = "20060102_150405"
)

// FileStore reads and writes the account snapshot file and maintains its
// rotating backups in a sibling directory.
type FileStore struct {
	Path      string // snapshot file
	BackupDir string // defaults to <dir>/backups
	Retain    int    // defaults to backupRetention
	Currency  string // currency tagged onto decoded amounts
}

// NewFileStore returns a store over the given snapshot path with the
// default backup directory and retention.
func NewFileStore(path, currency string) *FileStore {
	return &FileStore{
		Path:      path,
		BackupDir: filepath.Join(filepath.Dir(path), "backups"),
		Retain:    backupRetention,
		Currency:  currency,
	}
}

// Load reads the snapshot file. An absent file yields an empty store; a
// present but unparseable file yields an error wrapping ErrCorruptData so
// the caller can decide the fallback.
func (f *FileStore) Load() (*Store, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewStore(), nil
		}
		return nil, fmt.Errorf("could not open snapshot %q: %w", f.Path, err)
	}
	defer file.Close()

	store, err := DecodeStore(file, f.Currency)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", f.Path, err)
	}
	return store, nil
}

// Save persists the full store. The current on-disk file is copied into the
// backup directory before being overwritten, so a failed write can at worst
// leave the primary stale, never lost. After a successful write, backups
// beyond the retention count are evicted, oldest first.
func (f *FileStore) Save(s *Store) error {
	if err := f.backup(); err != nil {
		return fmt.Errorf("could not back up snapshot before writing: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return fmt.Errorf("could not create data directory: %w", err)
	}
	var buf bytes.Buffer
	if err := EncodeStore(&buf, s); err != nil {
		return err
	}
	if err := os.WriteFile(f.Path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("could not write snapshot %q: %w", f.Path, err)
	}

	f.cleanupBackups()
	return nil
}

// backup copies the current snapshot, if any, into the backup directory
// under a timestamp-derived name. Colliding names within the same second
// get a numeric suffix.
func (f *FileStore) backup() error {
	src, err := os.Open(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // nothing to back up yet
		}
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(f.backupDir(), 0755); err != nil {
		return err
	}

	stamp := time.Now().Format(backupTimeFormat)
	name := filepath.Join(f.backupDir(), fmt.Sprintf("backup_%s.json", stamp))
	for n := 1; ; n++ {
		if _, err := os.Stat(name); os.IsNotExist(err) {
			break
		}
		name = filepath.Join(f.backupDir(), fmt.Sprintf("backup_%s_%d.json", stamp, n))
	}

	dst, err := os.Create(name)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Sync()
}

// cleanupBackups evicts backups beyond the retention count, oldest by
// modification time first. Eviction failures are deliberately ignored: a
// leftover backup is harmless.
func (f *FileStore) cleanupBackups() {
	entries, err := os.ReadDir(f.backupDir())
	if err != nil {
		return
	}

	type backup struct {
		path string
		mod  time.Time
	}
	var backups []backup
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		matched, _ := filepath.Match("backup_*.json", e.Name())
		if !matched {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{filepath.Join(f.backupDir(), e.Name()), info.ModTime()})
	}

	retain := f.Retain
	if retain <= 0 {
		retain = backupRetention
	}
	if len(backups) <= retain {
		return
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].mod.After(backups[j].mod) })
	for _, b := range backups[retain:] {
		os.Remove(b.path)
	}
}

// Backups lists the current backup files, newest first.
func (f *FileStore) Backups() ([]string, error) {
	var names []string
	err := filepath.WalkDir(f.backupDir(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if matched, _ := filepath.Match("backup_*.json", d.Name()); matched {
			names = append(names, p)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, err
}

func (f *FileStore) backupDir() string {
	if f.BackupDir != "" {
		return f.BackupDir
	}
	return filepath.Join(filepath.Dir(f.Path), "backups")
}
