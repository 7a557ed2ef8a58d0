package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// NoteScan holds every markdown note found under one directory
type NoteScan struct {
	RootDir string
	Notes   []NoteFile
}

// NoteFile describes a discovered markdown note
type NoteFile struct {
	Path    string // absolute path to the file
	RelPath string // path relative to the scanned root (for display)
	Job     string // job name if under a jobs/ subtree, "" otherwise
}

// Jobs returns the distinct job names seen, sorted.
func (s *NoteScan) Jobs() []string {
	seen := map[string]bool{}
	var jobs []string
	for _, n := range s.Notes {
		if n.Job != "" && !seen[n.Job] {
			seen[n.Job] = true
			jobs = append(jobs, n.Job)
		}
	}
	sort.Strings(jobs)
	return jobs
}

// ScanNotes recursively scans rootDir for markdown notes. Files under
// jobs/<name>/ carry that job; nested jobs take the innermost name.
func ScanNotes(rootDir string) (*NoteScan, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}

	scan := &NoteScan{RootDir: absRoot}
	if err := walkNotes(absRoot, absRoot, "", scan); err != nil {
		return nil, err
	}
	sort.Slice(scan.Notes, func(i, j int) bool { return scan.Notes[i].RelPath < scan.Notes[j].RelPath })
	return scan, nil
}

// walkNotes recursively walks a directory, tracking job context
func walkNotes(dir, rootDir, job string, scan *NoteScan) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		absPath := filepath.Join(dir, name)

		if entry.IsDir() {
			if shouldSkipDir(name) {
				continue
			}
			if name == "jobs" {
				if err := scanJobsDir(absPath, rootDir, scan); err != nil {
					return err
				}
				continue
			}
			if err := walkNotes(absPath, rootDir, job, scan); err != nil {
				return err
			}
			continue
		}

		if isNoteFile(name) {
			rel, err := filepath.Rel(rootDir, absPath)
			if err != nil {
				rel = name
			}
			scan.Notes = append(scan.Notes, NoteFile{Path: absPath, RelPath: rel, Job: job})
		}
	}

	return nil
}

// scanJobsDir scans a jobs/ directory, where each subdirectory is a job
func scanJobsDir(jobsDir, rootDir string, scan *NoteScan) error {
	entries, err := os.ReadDir(jobsDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			if isNoteFile(entry.Name()) {
				absPath := filepath.Join(jobsDir, entry.Name())
				rel, _ := filepath.Rel(rootDir, absPath)
				scan.Notes = append(scan.Notes, NoteFile{Path: absPath, RelPath: rel})
			}
			continue
		}
		if shouldSkipDir(entry.Name()) {
			continue
		}
		if err := walkNotes(filepath.Join(jobsDir, entry.Name()), rootDir, entry.Name(), scan); err != nil {
			return err
		}
	}

	return nil
}

// isNoteFile returns true for markdown files other than README.md
func isNoteFile(name string) bool {
	if !strings.HasSuffix(strings.ToLower(name), ".md") {
		return false
	}
	return !strings.EqualFold(name, "README.md")
}

// shouldSkipDir returns true for directories that should be skipped during scanning
func shouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "node_modules", "vendor", "__pycache__", "target", "build", "dist":
		return true
	}
	return false
}
