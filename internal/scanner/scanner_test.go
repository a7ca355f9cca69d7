package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l3aro/cxxflow/pkg/cparse"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
}

func paths(results []FileInfo) []string {
	out := make([]string, len(results))
	for i, f := range results {
		out[i] = f.Path
	}
	return out
}

func TestScannerScan(t *testing.T) {
	tmpDir := t.TempDir()

	writeTree(t, tmpDir, map[string]string{
		"main.c":                   "int main(void) { return 0; }",
		"include/util.h":           "int util(void);",
		"src/engine.cpp":           "void run() {}",
		"src/engine.hpp":           "void run();",
		"README.md":                "# Test",
		"CMakeLists.txt":           "project(x)",
		".hidden/secret.c":         "int x;",
		"build/generated.c":        "int y;",
		"node_modules/pkg/addon.c": "int z;",
		".git/config":              "[core]",
	})

	results, err := New(DefaultOptions()).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	expected := map[string]cparse.Language{
		"include/util.h": cparse.LangC,
		"main.c":         cparse.LangC,
		"src/engine.cpp": cparse.LangCPP,
		"src/engine.hpp": cparse.LangCPP,
	}

	if len(results) != len(expected) {
		t.Fatalf("Expected %d files, got %v", len(expected), paths(results))
	}
	for _, f := range results {
		lang, ok := expected[f.Path]
		if !ok {
			t.Errorf("Unexpected file %s", f.Path)
			continue
		}
		if f.Language != lang {
			t.Errorf("Expected %s to have language %s, got %s", f.Path, lang, f.Language)
		}
		if !filepath.IsAbs(f.FullPath) {
			t.Errorf("Expected absolute path for %s, got %s", f.Path, f.FullPath)
		}
		if f.Size == 0 {
			t.Errorf("Expected non-zero size for %s", f.Path)
		}
	}

	// Results are sorted by path
	got := strings.Join(paths(results), ",")
	if got != "include/util.h,main.c,src/engine.cpp,src/engine.hpp" {
		t.Errorf("Unexpected order: %s", got)
	}
}

func TestScannerWithIgnoreFile(t *testing.T) {
	tmpDir := t.TempDir()

	writeTree(t, tmpDir, map[string]string{
		".cxxflowignore":          "# generated code\n*_gen.c\nthird_party/\n!third_party/keep.c\n",
		"main.c":                  "int main(void) { return 0; }",
		"parser_gen.c":            "int parse(void);",
		"third_party/lib.c":       "int lib;",
		"third_party/keep.c":      "int keep;",
		"src/.cxxflowignore":      "legacy.c\n",
		"src/legacy.c":            "int legacy;",
		"src/current.c":           "int current;",
		"tests/fixtures/sample.c": "int sample;",
	})

	opts := DefaultOptions()
	opts.ExtraPatterns = []string{"tests/fixtures/"}

	results, err := New(opts).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	// third_party/keep.c survives only through the later negation
	got := strings.Join(paths(results), ",")
	want := "main.c,src/current.c,third_party/keep.c"
	if got != want {
		t.Errorf("Scan returned %s, want %s", got, want)
	}
}

func TestScannerSkipHidden(t *testing.T) {
	tmpDir := t.TempDir()

	writeTree(t, tmpDir, map[string]string{
		"visible.c":        "int v;",
		".hidden.c":        "int h;",
		".config/extra.cc": "int e;",
	})

	opts := DefaultOptions()
	opts.SkipHidden = true
	results, err := New(opts).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if got := strings.Join(paths(results), ","); got != "visible.c" {
		t.Errorf("With SkipHidden, got %s", got)
	}

	opts.SkipHidden = false
	results, err = New(opts).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("Without SkipHidden, expected 3 files, got %v", paths(results))
	}
}

func TestScannerMaxFileSize(t *testing.T) {
	tmpDir := t.TempDir()

	writeTree(t, tmpDir, map[string]string{
		"small.c": "int s;",
		"large.c": strings.Repeat("int x;\n", 100),
	})

	opts := DefaultOptions()
	opts.MaxFileSize = 64
	results, err := New(opts).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if got := strings.Join(paths(results), ","); got != "small.c" {
		t.Errorf("Expected only small.c, got %s", got)
	}
}

func TestScanMissingRoot(t *testing.T) {
	results, err := Scan(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no files, got %v", paths(results))
	}
}

func TestIgnorePattern(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		match   bool
	}{
		// Simple patterns
		{"*.c", "file.c", true},
		{"*.c", "dir/file.c", true},
		{"*.c", "file.cpp", false},
		{"build/", "build/file.c", true},
		{"build/", "other/build/file.c", true},
		{"build/", "builder.c", false},
		{"build/", "build", false},

		// Absolute patterns
		{"/build/", "build/file.c", true},
		{"/build/", "src/build/file.c", false},
		{"/main.c", "main.c", true},
		{"/main.c", "src/main.c", false},

		// Directory patterns
		{"third_party/", "third_party/zlib/inflate.c", true},
		{"third_party/", "src/third_party/zlib/inflate.c", true},

		// Glob patterns
		{"*_test.cc", "parser_test.cc", true},
		{"*_test.cc", "deep/parser_test.cc", true},
		{"src/*.c", "src/app.c", true},
		{"src/*.c", "src/deep/app.c", false},
		{"*.{h,hpp}", "include/api.hpp", true},

		// Double asterisk
		{"**/test/**", "test/file.c", true},
		{"**/test/**", "src/test/file.c", true},
		{"**/test/**", "src/deep/test/file.c", true},
		{"**/test/**", "testing/file.c", false},

		// Question mark
		{"file?.c", "file1.c", true},
		{"file?.c", "file12.c", false},

		// Negation - pattern matches but is negation
		{"!*.c", "file.c", true},
	}

	for _, tt := range tests {
		pattern := ParseIgnorePattern(tt.pattern)
		result := pattern.Match(tt.path)
		if result != tt.match {
			t.Errorf("Pattern %q matching %q: got %v, want %v", tt.pattern, tt.path, result, tt.match)
		}
	}
}

func TestIgnorePatternValid(t *testing.T) {
	tests := []struct {
		pattern string
		valid   bool
	}{
		{"*.c", true},
		{"src/**/gen/", true},
		{"!keep.c", true},
		{"[abc", false},
		{"/", false},
	}

	for _, tt := range tests {
		p := ParseIgnorePattern(tt.pattern)
		if p.Valid() != tt.valid {
			t.Errorf("Pattern %q: Valid() = %v, want %v", tt.pattern, p.Valid(), tt.valid)
		}
		if p.String() != tt.pattern {
			t.Errorf("Pattern %q: String() = %q", tt.pattern, p.String())
		}
	}
	if !ParseIgnorePattern("!keep.c").IsNegation() {
		t.Error("Expected !keep.c to be a negation")
	}
}
