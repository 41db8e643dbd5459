// Package archive reads uploaded ZIP bundles. Entries are iterated in the
// order they appear in the archive and their payloads stay unread until a
// caller asks for them, so a large bundle costs memory one entry at a time.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ErrInvalidArchive is returned when the uploaded bytes are not a readable
// ZIP archive. It is a whole-batch failure; per-entry read errors are not.
var ErrInvalidArchive = errors.New("invalid archive")

// zipMethodZstd is the ZIP compression method ID for Zstandard (APPNOTE 6.3.7).
const zipMethodZstd uint16 = 93

func init() {
	// Accept Zstandard-compressed members alongside the stock deflate ones.
	zip.RegisterDecompressor(zipMethodZstd, func(r io.Reader) io.ReadCloser {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return io.NopCloser(&errReader{err: err})
		}
		return zr.IOReadCloser()
	})
}

type errReader struct{ err error }

func (e *errReader) Read([]byte) (int, error) { return 0, e.err }

// Entry is a single file inside an archive. Bytes reads and returns the
// entry's payload; until then nothing past the central directory is touched.
type Entry struct {
	Name string

	zf *zip.File
}

// Bytes materializes the entry payload. A failure here (truncated member,
// checksum mismatch) is scoped to this entry only.
func (e Entry) Bytes() ([]byte, error) {
	rc, err := e.zf.Open()
	if err != nil {
		return nil, fmt.Errorf("open archive entry %q: %w", e.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read archive entry %q: %w", e.Name, err)
	}
	return data, nil
}

// Reader iterates the file entries of one archive exactly once, front to
// back. Directory entries are skipped.
type Reader struct {
	files []*zip.File
	pos   int
}

// Open parses the archive's central directory. It fails with
// ErrInvalidArchive when the bytes do not form a readable ZIP.
func Open(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	return &Reader{files: zr.File}, nil
}

// Next returns the next file entry, or ok=false once the archive is
// exhausted.
func (r *Reader) Next() (Entry, bool) {
	for r.pos < len(r.files) {
		zf := r.files[r.pos]
		r.pos++
		if isDir(zf) {
			continue
		}
		return Entry{Name: zf.Name, zf: zf}, true
	}
	return Entry{}, false
}

func isDir(zf *zip.File) bool {
	return zf.FileInfo().IsDir() || strings.HasSuffix(zf.Name, "/")
}
