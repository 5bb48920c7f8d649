// Package archive packs a folder's files into a zip at maximum compression.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

var ErrEmptyPath = errors.New("archive entry has empty path")

// Entry is one file, or an empty directory when Dir is set. Path is slash
// separated and relative to the archive root.
type Entry struct {
	Path    string
	Content string
	Dir     bool
}

// Zipper writes deflate archives at flate.BestCompression.
type Zipper struct {
	// Modified stamps every entry; the zero value uses the time of the call.
	Modified time.Time
}

func NewZipper() *Zipper { return &Zipper{} }

// Archive builds a zip holding entries in the given order.
func (z *Zipper) Archive(ctx context.Context, entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	w.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	mod := z.Modified
	if mod.IsZero() {
		mod = time.Now()
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := strings.Trim(e.Path, "/")
		if name == "" {
			return nil, ErrEmptyPath
		}
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: mod}
		if e.Dir {
			hdr.Name += "/"
			hdr.Method = zip.Store
		}
		fw, err := w.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("zip %s: %w", name, err)
		}
		if e.Dir {
			continue
		}
		if _, err := io.WriteString(fw, e.Content); err != nil {
			return nil, fmt.Errorf("zip %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
