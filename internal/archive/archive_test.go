package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func buildZip(t *testing.T, files map[string]string, dirs ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, dir := range dirs {
		if _, err := w.Create(dir); err != nil {
			t.Fatalf("create dir entry %q: %v", dir, err)
		}
	}
	for name, body := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry %q: %v", name, err)
		}
		if _, err := f.Write([]byte(body)); err != nil {
			t.Fatalf("write entry %q: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestOpenInvalidArchive(t *testing.T) {
	_, err := Open([]byte("definitely not a zip file"))
	if !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("Open garbage: error = %v, want ErrInvalidArchive", err)
	}

	_, err = Open(nil)
	if !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("Open(nil): error = %v, want ErrInvalidArchive", err)
	}
}

func TestIterationSkipsDirectories(t *testing.T) {
	data := buildZip(t, map[string]string{
		"photos/a.jpg": "aaa",
		"photos/b.png": "bbbb",
	}, "photos/")

	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	seen := map[string]int{}
	for {
		e, ok := r.Next()
		if !ok {
			break
		}
		body, err := e.Bytes()
		if err != nil {
			t.Fatalf("Bytes(%q): %v", e.Name, err)
		}
		seen[e.Name] = len(body)
	}

	if len(seen) != 2 {
		t.Fatalf("iterated %d entries, want 2: %v", len(seen), seen)
	}
	if seen["photos/a.jpg"] != 3 || seen["photos/b.png"] != 4 {
		t.Errorf("unexpected entry sizes: %v", seen)
	}
}

func TestIterationIsOneShot(t *testing.T) {
	data := buildZip(t, map[string]string{"one.txt": "x"})

	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := r.Next(); !ok {
		t.Fatal("first Next() = false, want true")
	}
	if _, ok := r.Next(); ok {
		t.Fatal("second Next() = true, want false after exhaustion")
	}
	if _, ok := r.Next(); ok {
		t.Fatal("Next() after exhaustion = true, want false")
	}
}

func TestEmptyArchive(t *testing.T) {
	data := buildZip(t, nil)

	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open on empty archive: %v", err)
	}
	if _, ok := r.Next(); ok {
		t.Fatal("Next() on empty archive = true, want false")
	}
}

func TestEntryOrderPreserved(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	names := []string{"c.jpg", "a.jpg", "b.jpg"}
	for _, name := range names {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
		if _, err := f.Write([]byte(name)); err != nil {
			t.Fatalf("write %q: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	r, err := Open(buf.Bytes())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var got []string
	for {
		e, ok := r.Next()
		if !ok {
			break
		}
		got = append(got, e.Name)
	}
	for i, want := range names {
		if got[i] != want {
			t.Fatalf("entry order = %v, want %v", got, names)
		}
	}
}
