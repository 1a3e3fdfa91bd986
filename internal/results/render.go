package results

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// NotFound is written for a query that matched no document.
const NotFound = "Not Found!"

// Render writes one block per result: the matched titles one per line, or
// NotFound when there are none.
func Render(w io.Writer, rs []QueryResult) error {
	bw := bufio.NewWriter(w)
	for _, r := range rs {
		if len(r.Titles) == 0 {
			if _, err := fmt.Fprintln(bw, NotFound); err != nil {
				return err
			}
			continue
		}
		for _, title := range r.Titles {
			if _, err := fmt.Fprintln(bw, title); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Report is a finished run as handed to sinks.
type Report struct {
	RunID     string
	DataDir   string
	StartedAt time.Time
	Elapsed   time.Duration
	Documents int
	Results   []QueryResult
}

// Sink receives finished reports.
type Sink interface {
	Name() string
	Write(ctx context.Context, r *Report) error
}

// FileSink renders reports to a file. The file is written to a temporary
// name in the same directory and renamed into place, so readers never see
// a partial result.
type FileSink struct {
	Path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Write(_ context.Context, r *Report) error {
	dir := filepath.Dir(s.Path)
	f, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp output file: %w", err)
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath)

	if err := Render(f, r.Results); err != nil {
		f.Close()
		return fmt.Errorf("writing results: %w", err)
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return fmt.Errorf("setting output file mode: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("renaming output file: %w", err)
	}
	return nil
}
