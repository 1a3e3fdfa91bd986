// Package corpus loads numbered text documents into reusable window buffers.
// Document ids are consecutive integers starting at 0; the first missing id
// marks the end of the corpus.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Document is one loaded input file. Title is its first line; Lines holds
// every line, the title included.
type Document struct {
	ID    int
	Title string
	Lines []string
}

// Source opens documents by id.
type Source interface {
	Open(id int) (io.ReadCloser, error)
}

// DirSource reads documents named <id><Extension> from Dir.
type DirSource struct {
	Dir       string
	Extension string
}

// NewDirSource returns a DirSource. An empty extension defaults to ".txt".
func NewDirSource(dir, ext string) *DirSource {
	if ext == "" {
		ext = ".txt"
	}
	return &DirSource{Dir: dir, Extension: ext}
}

// Path returns the file path of document id.
func (s *DirSource) Path(id int) string {
	return filepath.Join(s.Dir, strconv.Itoa(id)+s.Extension)
}

func (s *DirSource) Open(id int) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(id))
	if err != nil {
		return nil, fmt.Errorf("opening document %d: %w", id, err)
	}
	return f, nil
}

// Fingerprint identifies the current content of the corpus without reading
// it: it hashes the id, size and modification time of every document up to
// the first missing id or maxDocs, and also returns how many documents
// that covers. Two runs over an unchanged directory produce the same
// fingerprint.
func (s *DirSource) Fingerprint(maxDocs int) (string, int, error) {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|", s.Dir, s.Extension)
	count := 0
	for ; count < maxDocs; count++ {
		fi, err := os.Stat(s.Path(count))
		if err != nil {
			if os.IsNotExist(err) {
				break
			}
			return "", 0, fmt.Errorf("stat document %d: %w", count, err)
		}
		fmt.Fprintf(h, "%d:%d:%d;", count, fi.Size(), fi.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), count, nil
}
