package ppt

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CleanPath normalizes a user-supplied path. Paths pasted from a shell or a
// file manager often arrive wrapped in quotes or with escaped spaces.
func CleanPath(path string) string {
	path = strings.TrimSpace(path)
	if len(path) >= 2 {
		if (path[0] == '"' && path[len(path)-1] == '"') ||
			(path[0] == '\'' && path[len(path)-1] == '\'') {
			path = path[1 : len(path)-1]
		}
	}
	path = strings.ReplaceAll(path, `\ `, " ")
	return path
}

// IsPresentationFile reports whether path names a PowerPoint file by
// extension.
func IsPresentationFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ppt", ".pptx":
		return true
	}
	return false
}

// IterPresentationFiles resolves a path to the presentation files it covers:
// the file itself, or every presentation found under a directory,
// recursively. Results are sorted for stable processing order.
func IterPresentationFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !IsPresentationFile(path) {
			return nil, nil
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsPresentationFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
