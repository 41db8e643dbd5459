// Package mediatype maps file names and declared content types to a canonical
// media kind and a concrete content-type string. Resolution is table-driven
// and pure; callers turn ErrUnsupportedType into a per-item failure so one
// unknown file never aborts its siblings.
package mediatype

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/ashok9315-cmyk/profolia.art/internal/types/media"
)

// ErrUnsupportedType is returned when neither the declared content type nor
// the file extension resolves to a canonical media kind.
var ErrUnsupportedType = errors.New("unsupported media type")

type entry struct {
	kind media.Kind
	mime string
}

// byExt is the fixed extension table. Extensions are matched case-insensitively.
var byExt = map[string]entry{
	// images
	".jpg":  {media.KindImage, "image/jpeg"},
	".jpeg": {media.KindImage, "image/jpeg"},
	".png":  {media.KindImage, "image/png"},
	".gif":  {media.KindImage, "image/gif"},
	".webp": {media.KindImage, "image/webp"},
	".bmp":  {media.KindImage, "image/bmp"},
	".svg":  {media.KindImage, "image/svg+xml"},

	// videos
	".mp4":  {media.KindVideo, "video/mp4"},
	".mov":  {media.KindVideo, "video/quicktime"},
	".webm": {media.KindVideo, "video/webm"},
	".mkv":  {media.KindVideo, "video/x-matroska"},
	".avi":  {media.KindVideo, "video/x-msvideo"},
	".mpeg": {media.KindVideo, "video/mpeg"},
	".mpg":  {media.KindVideo, "video/mpeg"},

	// audio
	".mp3":  {media.KindAudio, "audio/mpeg"},
	".wav":  {media.KindAudio, "audio/wav"},
	".flac": {media.KindAudio, "audio/flac"},
	".aac":  {media.KindAudio, "audio/aac"},
	".ogg":  {media.KindAudio, "audio/ogg"},
	".m4a":  {media.KindAudio, "audio/mp4"},

	// documents
	".pdf": {media.KindDocument, "application/pdf"},
}

// allowedMIME is the declared-content-type allow-list, derived from the
// extension table so the two can never drift apart.
var allowedMIME = map[string]media.Kind{}

func init() {
	for _, e := range byExt {
		allowedMIME[e.mime] = e.kind
	}
}

// Resolve returns the canonical kind and concrete content type for a file.
// A declared content type, when present and allow-listed, wins over the file
// extension; otherwise the extension decides. Files with no extension and no
// trusted declared type are unsupported.
func Resolve(fileName, declared string) (media.Kind, string, error) {
	if declared != "" {
		if kind, ok := allowedMIME[declared]; ok {
			return kind, declared, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		return "", "", ErrUnsupportedType
	}
	e, ok := byExt[ext]
	if !ok {
		return "", "", ErrUnsupportedType
	}
	return e.kind, e.mime, nil
}

// Allowed reports whether a declared content type is on the allow-list.
// Used by the presigned-upload path, where no file bytes pass through the
// server and the declared type is all there is to validate.
func Allowed(contentType string) bool {
	_, ok := allowedMIME[contentType]
	return ok
}
