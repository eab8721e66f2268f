package attach

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver looks attachment names up in one media directory.
// It keeps no state between calls; every lookup lists the directory again.
type Resolver struct {
	Dir string
}

// Resolve looks name up in r.Dir; see the package-level Resolve.
func (r Resolver) Resolve(name string) (string, bool) {
	return Resolve(name, r.Dir)
}

// Resolve maps an attachment name to a file in dir. It tries, in order: the
// exact name, the name without its numeric counter prefix, and a
// case-insensitive substring match in either direction. Entries are visited
// in directory listing order. A missing or unreadable dir resolves nothing.
func Resolve(name, dir string) (string, bool) {
	if name == "" || dir == "" {
		return "", false
	}

	files := listFiles(dir)
	if len(files) == 0 {
		return "", false
	}

	for _, f := range files {
		if f == name {
			return filepath.Join(dir, f), true
		}
	}

	stripped := StripPrefix(name)
	if stripped != name {
		for _, f := range files {
			if f == stripped {
				return filepath.Join(dir, f), true
			}
		}
	}

	base := strings.ToLower(stripped)
	if base == "" {
		return "", false
	}
	for _, f := range files {
		lf := strings.ToLower(f)
		if strings.Contains(lf, base) || strings.Contains(base, lf) {
			return filepath.Join(dir, f), true
		}
	}
	return "", false
}

// listFiles returns the names of regular files (or links to them) in dir,
// sorted by name. Errors yield an empty list.
func listFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		switch {
		case e.Type().IsRegular():
			files = append(files, e.Name())
		case e.Type()&os.ModeSymlink != 0:
			if info, err := os.Stat(filepath.Join(dir, e.Name())); err == nil && info.Mode().IsRegular() {
				files = append(files, e.Name())
			}
		}
	}
	return files
}
