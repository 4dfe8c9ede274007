package journal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Journal is the append-only mutation log backing the graph store.
// It holds no open file handle between calls and does no locking of its own:
// the store serializes every call under its write lock.
type Journal struct {
	path string
	log  *zap.Logger
}

// Open returns a journal for path, creating the parent directory if needed.
// A failure to create the directory is logged; later writes will fail and be
// reported through their own errors.
func Open(path string, log *zap.Logger) *Journal {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warn("create journal directory failed", zap.String("dir", dir), zap.Error(err))
		}
	}
	return &Journal{path: path, log: log}
}

// Path returns the log file location.
func (j *Journal) Path() string {
	return j.path
}

// Append writes one record at the end of the log.
func (j *Journal) Append(rec Record) error {
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal for append: %w", err)
	}

	if _, err := f.WriteString(rec.String() + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append record: %w", err)
	}
	return f.Close()
}

// Rewrite replaces the log with exactly records. The new content is written to
// a sibling temp file and renamed over the log, so a failed rewrite leaves the
// previous log in place.
func (j *Journal) Rewrite(records []Record) error {
	tmp := j.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal for rewrite: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, rec := range records {
		if _, err := w.WriteString(rec.String() + "\n"); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("write record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush journal: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync journal: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close journal: %w", err)
	}

	if err := os.Rename(tmp, j.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace journal: %w", err)
	}
	return nil
}

// Replay feeds every well-formed record to apply, top to bottom. A missing log
// is not an error. Malformed lines are logged and skipped. Lines have no length
// cap. The returned count is the number of records applied; a non-nil error
// means the log could not be read to the end.
func (j *Journal) Replay(apply func(Record)) (int, error) {
	f, err := os.Open(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open journal for replay: %w", err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 64*1024)

	applied, lineNo := 0, 0
	for {
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return applied, fmt.Errorf("read journal line %d: %w", lineNo+1, err)
		}
		if line == "" && err != nil {
			break
		}

		lineNo++
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			rec, perr := Parse(line)
			if perr != nil {
				j.log.Warn("skipping journal line", zap.Int("line", lineNo), zap.Error(perr))
			} else {
				apply(rec)
				applied++
			}
		}

		if err != nil {
			break
		}
	}

	return applied, nil
}
