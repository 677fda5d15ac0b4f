// Package recordings manages stored practice recordings on the local
// filesystem. Uploaded files are renamed to a sanitised, timestamped pattern
// ({word_id}_{timestamp}_{name}) under a single uploads directory.
package recordings

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"
)

// unsafeChars matches every filename character that is not kept verbatim.
var unsafeChars = regexp.MustCompile(`[^\w.-]`)

// Recording describes one stored file.
type Recording struct {
	// Path is the absolute location of the stored file.
	Path string `json:"recording_path"`

	// WordID is the catalog word the recording belongs to.
	WordID string `json:"word_id"`

	// Size is the stored file size in bytes.
	Size int64 `json:"file_size"`

	// UploadedAt is when the file was stored.
	UploadedAt time.Time `json:"uploaded_at"`
}

// Info summarises the storage directory for diagnostics.
type Info struct {
	UploadsDir string `json:"uploads_dir"`
	FileCount  int    `json:"file_count"`
	TotalSize  int64  `json:"total_size"`
}

// Store saves and lists recordings under a base directory. Safe for
// concurrent use; all state lives on the filesystem.
type Store struct {
	uploadsDir string
	now        func() time.Time
}

// Option is a functional option for configuring a [Store].
type Option func(*Store)

// WithClock replaces the time source used for timestamped filenames.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates the uploads directory if needed and returns a Store over
// it.
func NewStore(uploadsDir string, opts ...Option) (*Store, error) {
	if uploadsDir == "" {
		return nil, fmt.Errorf("recordings: uploads directory must not be empty")
	}
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("recordings: create uploads dir %q: %w", uploadsDir, err)
	}
	s := &Store{uploadsDir: uploadsDir, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Save stores the content of r for wordID under a sanitised, timestamped
// filename and returns the stored recording's metadata.
func (s *Store) Save(wordID, filename string, r io.Reader) (Recording, error) {
	if wordID == "" {
		return Recording{}, fmt.Errorf("recordings: word ID must not be empty")
	}

	now := s.now()
	name := fmt.Sprintf("%s_%s_%s", wordID, now.Format("20060102_150405"), Sanitize(filename))
	dest := filepath.Join(s.uploadsDir, name)

	f, err := os.Create(dest)
	if err != nil {
		return Recording{}, fmt.Errorf("recordings: create %q: %w", dest, err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return Recording{}, fmt.Errorf("recordings: write %q: %w", dest, err)
	}

	return Recording{Path: dest, WordID: wordID, Size: n, UploadedAt: now}, nil
}

// List returns the stored recordings, newest first. A non-empty wordID
// narrows the listing to that word's files.
func (s *Store) List(wordID string) ([]Recording, error) {
	pattern := "*"
	if wordID != "" {
		pattern = wordID + "_*"
	}
	matches, err := filepath.Glob(filepath.Join(s.uploadsDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("recordings: list: %w", err)
	}

	var out []Recording
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		id := wordID
		if id == "" {
			id, _, _ = strings.Cut(filepath.Base(path), "_")
		}
		out = append(out, Recording{
			Path:       path,
			WordID:     id,
			Size:       info.Size(),
			UploadedAt: info.ModTime(),
		})
	}
	slices.SortFunc(out, func(a, b Recording) int {
		return b.UploadedAt.Compare(a.UploadedAt)
	})
	return out, nil
}

// CleanupOlderThan removes recordings whose modification time is older than
// maxAge and returns how many were deleted. Files that cannot be removed are
// skipped.
func (s *Store) CleanupOlderThan(maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge)

	entries, err := os.ReadDir(s.uploadsDir)
	if err != nil {
		return 0, fmt.Errorf("recordings: cleanup: %w", err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if os.Remove(filepath.Join(s.uploadsDir, entry.Name())) == nil {
				deleted++
			}
		}
	}
	return deleted, nil
}

// Info returns storage diagnostics for the uploads directory.
func (s *Store) Info() (Info, error) {
	info := Info{UploadsDir: s.uploadsDir}
	err := filepath.WalkDir(s.uploadsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		info.FileCount++
		info.TotalSize += fi.Size()
		return nil
	})
	if err != nil {
		return Info{}, fmt.Errorf("recordings: info: %w", err)
	}
	return info, nil
}

// Sanitize replaces every character outside [A-Za-z0-9_.-] with an
// underscore so uploaded names cannot escape the uploads directory or carry
// shell-hostile characters.
func Sanitize(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "upload"
	}
	return unsafeChars.ReplaceAllString(base, "_")
}
