package props

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		def  int
		want int
	}{
		{"", 7, 7},
		{"0", 1, 0},
		{"n", 1, 0},
		{"1", 0, 1},
		{"y", 0, 1},
		{"2", 0, 2},
		{"o", 0, 2},
		{"x", 0, 1}, // unknown single char falls back to 1, not def
		{"no", 1, 0},
		{"false", 1, 0},
		{"off", 1, 0},
		{"disable", 1, 0},
		{"yes", 0, 1},
		{"true", 0, 1},
		{"on", 0, 1},
		{"enable", 0, 1},
		{"only", 0, 2},
		{"banana", 0, 1}, // unknown word falls back to 1, not def
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseValue(tt.raw, tt.def); got != tt.want {
				t.Errorf("ParseValue(%q, %d) = %d, want %d", tt.raw, tt.def, got, tt.want)
			}
		})
	}
}

func TestStaticStore(t *testing.T) {
	s := NewStatic(map[string]string{
		"sys.lights.barled": "2",
		"sys.lights.debug":  "no",
	})

	if got := s.GetInt("sys.lights.barled", 1); got != 2 {
		t.Errorf("GetInt(barled) = %d, want 2", got)
	}
	if got := s.GetInt("sys.lights.missing", 1); got != 1 {
		t.Errorf("GetInt(missing) = %d, want default 1", got)
	}
	if s.GetBool("sys.lights.debug", true) {
		t.Error("GetBool(debug) = true, want false")
	}
	if !s.GetBool("sys.lights.missing", true) {
		t.Error("GetBool(missing) = false, want default true")
	}

	s.Set("sys.lights.barled", "only")
	if got := s.GetInt("sys.lights.barled", 1); got != 2 {
		t.Errorf("GetInt(barled) after Set = %d, want 2", got)
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lights.yaml")
	content := "sys.lights.barled: \"2\"\nsys.lights.blink: on\nsys.lights.count: 1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error: %v", err)
	}
	defer f.Close()

	if got := f.GetInt("sys.lights.barled", 1); got != 2 {
		t.Errorf("GetInt(barled) = %d, want 2", got)
	}
	if !f.GetBool("sys.lights.blink", false) {
		t.Error("GetBool(blink) = false, want true")
	}
	if got := f.GetInt("sys.lights.count", 0); got != 1 {
		t.Errorf("GetInt(count) = %d, want 1", got)
	}
	if got := f.GetInt("sys.lights.missing", 0); got != 0 {
		t.Errorf("GetInt(missing) = %d, want default 0", got)
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	if _, err := OpenFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("OpenFile() on missing file should return error")
	}
}
