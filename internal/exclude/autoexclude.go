// Package exclude detects build trees and dependency directories that a
// C/C++ workspace scan should skip.
package exclude

import (
	"os"
	"path/filepath"
	"strings"
)

// AutoExcludeResult contains the directories to exclude and why.
type AutoExcludeResult struct {
	// Directories to exclude (relative to project root)
	Directories []string
	// Reasons maps each directory to why it was excluded
	Reasons map[string]string
}

// Excludes reports whether rel, a slash or OS separated path relative to
// the project root, lies in an excluded directory.
func (r *AutoExcludeResult) Excludes(rel string) bool {
	rel = filepath.Clean(filepath.FromSlash(rel))
	for _, dir := range r.Directories {
		if rel == dir || strings.HasPrefix(rel, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// DetectAutoExcludes scans the project root for build trees and dependency
// directories. Only marker files that build tools always write are used:
//   - CMakeCache.txt: its directory is a CMake build tree
//   - build.ninja below the root: its directory is a Ninja or Meson build tree
//   - vcpkg.json: a vcpkg_installed/ sibling holds installed packages
//   - package.json: a node_modules/ sibling holds JavaScript tooling
func DetectAutoExcludes(projectRoot string) *AutoExcludeResult {
	result := &AutoExcludeResult{
		Directories: []string{},
		Reasons:     make(map[string]string),
	}

	add := func(dir, reason string) {
		if !contains(result.Directories, dir) {
			result.Directories = append(result.Directories, dir)
			result.Reasons[dir] = reason
		}
	}

	_ = filepath.WalkDir(projectRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip directories we can't read
		}
		if path == projectRoot {
			return nil
		}

		relPath, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if result.Excludes(relPath) {
				return filepath.SkipDir
			}
			switch d.Name() {
			case ".git", "node_modules", "vcpkg_installed":
				return filepath.SkipDir
			}
			return nil
		}

		relDirPath := filepath.Dir(relPath)
		sibling := func(name string) string {
			if relDirPath == "." {
				return name
			}
			return filepath.Join(relDirPath, name)
		}

		switch d.Name() {
		case "CMakeCache.txt":
			if relDirPath != "." {
				add(relDirPath, "CMake build tree (CMakeCache.txt detected)")
			}

		case "build.ninja":
			if relDirPath != "." {
				add(relDirPath, "Ninja build tree (build.ninja detected)")
			}

		case "vcpkg.json":
			dir := sibling("vcpkg_installed")
			if dirExists(filepath.Join(projectRoot, dir)) {
				add(dir, "vcpkg packages (vcpkg.json detected)")
			}

		case "package.json":
			dir := sibling("node_modules")
			if dirExists(filepath.Join(projectRoot, dir)) {
				add(dir, "Node.js dependencies (package.json detected)")
			}
		}

		return nil
	})

	return result
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// contains checks if a string is in a slice.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
