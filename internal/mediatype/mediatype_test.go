package mediatype

import (
	"errors"
	"testing"

	"github.com/ashok9315-cmyk/profolia.art/internal/types/media"
)

func TestResolveByExtension(t *testing.T) {
	tests := []struct {
		fileName string
		wantKind media.Kind
		wantMIME string
	}{
		{"photo.jpg", media.KindImage, "image/jpeg"},
		{"photo.JPG", media.KindImage, "image/jpeg"},
		{"clip.mp4", media.KindVideo, "video/mp4"},
		{"track.m4a", media.KindAudio, "audio/mp4"},
		{"resume.pdf", media.KindDocument, "application/pdf"},
		{"archive/deep/shot.PNG", media.KindImage, "image/png"},
	}

	for _, tt := range tests {
		kind, mime, err := Resolve(tt.fileName, "")
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", tt.fileName, err)
		}
		if kind != tt.wantKind {
			t.Errorf("Resolve(%q) kind = %q, want %q", tt.fileName, kind, tt.wantKind)
		}
		if mime != tt.wantMIME {
			t.Errorf("Resolve(%q) mime = %q, want %q", tt.fileName, mime, tt.wantMIME)
		}
	}
}

func TestResolveDeclaredTypeWins(t *testing.T) {
	// Declared type is allow-listed, so it should win over the extension.
	kind, mime, err := Resolve("clip.bin", "video/mp4")
	if err != nil {
		t.Fatalf("Resolve with declared type returned error: %v", err)
	}
	if kind != media.KindVideo {
		t.Errorf("kind = %q, want %q", kind, media.KindVideo)
	}
	if mime != "video/mp4" {
		t.Errorf("mime = %q, want video/mp4", mime)
	}
}

func TestResolveIgnoresUnknownDeclaredType(t *testing.T) {
	// An unrecognized declared type falls back to the extension.
	kind, mime, err := Resolve("photo.png", "application/octet-stream")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if kind != media.KindImage || mime != "image/png" {
		t.Errorf("got (%q, %q), want (image, image/png)", kind, mime)
	}
}

func TestResolveUnsupported(t *testing.T) {
	cases := []string{"notes.xyz", "binary.exe", "noextension", "trailingdot."}
	for _, name := range cases {
		if _, _, err := Resolve(name, ""); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Resolve(%q) error = %v, want ErrUnsupportedType", name, err)
		}
	}
}

func TestAllowed(t *testing.T) {
	if !Allowed("image/jpeg") {
		t.Error("Allowed(image/jpeg) = false, want true")
	}
	if Allowed("application/x-dosexec") {
		t.Error("Allowed(application/x-dosexec) = true, want false")
	}
}
