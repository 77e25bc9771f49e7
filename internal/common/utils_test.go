package common

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "https://example.com/a", "https://example.com/a"},
		{"whitespace", "  https://example.com/a \n", "https://example.com/a"},
		{"trailing comma", "https://example.com/a,", "https://example.com/a"},
		{"trailing period", "https://example.com/a.", "https://example.com/a"},
		{"markdown link", "[read this](https://example.com/a)", "https://example.com/a"},
		{"angle brackets", "<https://example.com/a>", "https://example.com/a"},
		{"quoted", `"https://example.com/a"`, "https://example.com/a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeURL(tt.in); got != tt.want {
				t.Errorf("SanitizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeAndValidateURLs(t *testing.T) {
	input := []string{
		"https://example.com/good",
		" https://example.com/trimmed ",
		"ftp://example.com/wrong-scheme",
		"not a url at all",
		"https://example.com/has space",
		"",
	}
	valid, invalid := SanitizeAndValidateURLs(input)

	wantValid := []string{"https://example.com/good", "https://example.com/trimmed"}
	if !reflect.DeepEqual(valid, wantValid) {
		t.Errorf("valid = %v, want %v", valid, wantValid)
	}
	if len(invalid) != 4 {
		t.Errorf("len(invalid) = %d, want 4: %v", len(invalid), invalid)
	}
}

func TestReadURLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := `# reading list
https://example.com/one

https://example.com/two
  https://example.com/three
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write url file: %v", err)
	}

	urls, err := ReadURLFile(path)
	if err != nil {
		t.Fatalf("ReadURLFile() error = %v", err)
	}
	want := []string{"https://example.com/one", "https://example.com/two", "https://example.com/three"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("urls = %v, want %v", urls, want)
	}
}

func TestReadURLFile_Missing(t *testing.T) {
	if _, err := ReadURLFile(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("ReadURLFile() error = nil, want error")
	}
}
