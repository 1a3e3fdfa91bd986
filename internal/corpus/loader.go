package corpus

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/metrics"
)

// Window is the result of one LoadWindow call. Docs holds the documents
// [Start, Start+len(Docs)) in id order and aliases the loader's buffer, so
// it is only valid until the next call.
type Window struct {
	Start     int
	Requested int
	Docs      []Document
}

// Short reports whether a document in the requested range was unavailable.
func (w Window) Short() bool {
	return len(w.Docs) < w.Requested
}

// Loader reads windows of documents in parallel into a buffer that is
// reused across windows.
type Loader struct {
	source  Source
	workers int
	buf     []Document
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewLoader creates a Loader with room for windowSize documents. workers
// of zero means GOMAXPROCS; m may be nil.
func NewLoader(source Source, windowSize, workers int, m *metrics.Metrics) *Loader {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Loader{
		source:  source,
		workers: workers,
		buf:     make([]Document, windowSize),
		metrics: m,
		logger:  slog.Default().With("component", "corpus-loader"),
	}
}

// LoadWindow loads ids [start, end). Every id is attempted concurrently; if
// any fail, the window ends just before the lowest failing id and the
// documents after it are dropped. Unavailable documents are never an
// error; only context cancellation is.
func (l *Loader) LoadWindow(ctx context.Context, start, end int) (Window, error) {
	n := end - start
	if n <= 0 {
		return Window{Start: start}, nil
	}
	if n > len(l.buf) {
		l.buf = append(l.buf, make([]Document, n-len(l.buf))...)
	}
	slots := l.buf[:n]

	var minFail atomic.Int64
	minFail.Store(int64(end))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for id := start; id < end; id++ {
		if gctx.Err() != nil || int64(id) >= minFail.Load() {
			break
		}
		g.Go(func() error {
			// A lower id already failed; this one would be dropped anyway.
			if int64(id) >= minFail.Load() {
				return nil
			}
			if err := l.read(id, &slots[id-start]); err != nil {
				lowerTo(&minFail, int64(id))
				if l.metrics != nil {
					l.metrics.DocumentsUnavailableTotal.Inc()
				}
				l.logger.Debug("document unavailable", "id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Window{}, fmt.Errorf("loading window at %d: %w", start, err)
	}

	count := int(minFail.Load()) - start
	if l.metrics != nil {
		l.metrics.WindowsLoadedTotal.Inc()
	}
	l.logger.Debug("window loaded", "start", start, "requested", n, "loaded", count)
	return Window{Start: start, Requested: n, Docs: slots[:count]}, nil
}

// read fills doc from document id, reusing its line slice.
func (l *Loader) read(id int, doc *Document) error {
	rc, err := l.source.Open(id)
	if err != nil {
		return apperrors.Newf(apperrors.ErrDocumentUnavailable, "%v", err)
	}
	defer rc.Close()

	doc.ID = id
	doc.Title = ""
	doc.Lines = doc.Lines[:0]
	lines, err := ReadLines(rc, doc.Lines)
	doc.Lines = lines
	if err != nil {
		return apperrors.Newf(apperrors.ErrDocumentUnavailable, "reading document %d: %v", id, err)
	}
	if len(doc.Lines) > 0 {
		doc.Title = doc.Lines[0]
	}
	return nil
}

// ReadLines appends every line of r to dst, with the line terminator and a
// trailing carriage return removed. A final line without a newline is
// kept; an empty input yields no lines.
func ReadLines(r io.Reader, dst []string) ([]string, error) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err == nil || line != "" {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			dst = append(dst, line)
		}
		if err == io.EOF {
			return dst, nil
		}
		if err != nil {
			return dst, err
		}
	}
}

// lowerTo stores v in m if v is smaller than the current value.
func lowerTo(m *atomic.Int64, v int64) {
	for {
		cur := m.Load()
		if v >= cur || m.CompareAndSwap(cur, v) {
			return
		}
	}
}
