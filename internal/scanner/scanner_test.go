package scanner

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// makeTree creates files (relative paths) under a temp dir.
func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("# "+f+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func relPaths(scan *NoteScan) []string {
	var out []string
	for _, n := range scan.Notes {
		out = append(out, filepath.ToSlash(n.RelPath))
	}
	return out
}

func TestScanNotes_FindsMarkdownRecursively(t *testing.T) {
	root := makeTree(t,
		"2024-03-01-standup.md",
		"daily/2024-03-02.md",
		"ideas/garden.MD",
		"todo.txt",
		"README.md",
	)

	scan, err := ScanNotes(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"2024-03-01-standup.md", "daily/2024-03-02.md", "ideas/garden.MD"}
	if got := relPaths(scan); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	for _, n := range scan.Notes {
		if n.Job != "" {
			t.Errorf("%s: expected no job, got %q", n.RelPath, n.Job)
		}
		if !filepath.IsAbs(n.Path) {
			t.Errorf("%s: expected absolute path, got %q", n.RelPath, n.Path)
		}
	}
}

func TestScanNotes_SkipsHiddenAndJunkDirs(t *testing.T) {
	root := makeTree(t,
		".git/notes.md",
		".obsidian/workspace.md",
		"node_modules/pkg/readme.md",
		"kept.md",
	)

	scan, err := ScanNotes(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := relPaths(scan); !reflect.DeepEqual(got, []string{"kept.md"}) {
		t.Errorf("expected only kept.md, got %v", got)
	}
}

func TestScanNotes_JobContext(t *testing.T) {
	root := makeTree(t,
		"jobs/acme/kickoff.md",
		"jobs/acme/meetings/2024-03-05.md",
		"jobs/globex/notes.md",
		"jobs/loose.md",
		"personal.md",
	)

	scan, err := ScanNotes(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	jobs := map[string]string{}
	for _, n := range scan.Notes {
		jobs[filepath.ToSlash(n.RelPath)] = n.Job
	}
	want := map[string]string{
		"jobs/acme/kickoff.md":             "acme",
		"jobs/acme/meetings/2024-03-05.md": "acme",
		"jobs/globex/notes.md":             "globex",
		"jobs/loose.md":                    "",
		"personal.md":                      "",
	}
	if !reflect.DeepEqual(jobs, want) {
		t.Errorf("expected %v, got %v", want, jobs)
	}

	if got := scan.Jobs(); !reflect.DeepEqual(got, []string{"acme", "globex"}) {
		t.Errorf("expected jobs [acme globex], got %v", got)
	}
}

func TestScanNotes_MissingDir(t *testing.T) {
	scan, err := ScanNotes(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("a missing directory should scan empty, got %v", err)
	}
	if len(scan.Notes) != 0 {
		t.Errorf("expected no notes, got %d", len(scan.Notes))
	}
}
