// Package project provides project root and docs directory detection.
package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// rootMarkers identify a project root, checked in order at each level
// while walking up from the starting directory.
var rootMarkers = []string{".git", ".venv", "pyproject.toml", "package.json", "go.mod"}

// docsCandidates are tried in order when no docs directory is configured.
var docsCandidates = []string{"docs", "notebooks", "notes"}

// PackagesDirEnv points at a directory of sibling mrmd packages
// (mrmd-sync and friends) for development setups.
const PackagesDirEnv = "MRMD_PACKAGES_DIR"

// FindRoot locates the project root by walking up from startDir,
// looking for a marker (.git, .venv, pyproject.toml, package.json,
// go.mod). Without a marker the starting directory itself is the root:
// mrmd always opens the current project.
func FindRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	current := absDir
	for {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
				return current, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return absDir, nil
		}
		current = parent
	}
}

// FindFromCwd locates the project root from the current working directory.
func FindFromCwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return FindRoot(cwd)
}

// FindDocsDir picks the documents directory for a project: the first
// existing of docs/, notebooks/, notes/, defaulting to docs/ (which
// the caller is expected to create).
func FindDocsDir(root string) string {
	for _, name := range docsCandidates {
		dir := filepath.Join(root, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return filepath.Join(root, docsCandidates[0])
}

// FindPackage locates a sibling mrmd package by name, for development
// checkouts where mrmd-sync lives next to the project. It checks the
// project root's parent directory first, then MRMD_PACKAGES_DIR.
// Returns "" when the package cannot be found.
func FindPackage(root, name string) string {
	sibling := filepath.Join(filepath.Dir(root), name)
	if info, err := os.Stat(sibling); err == nil && info.IsDir() {
		return sibling
	}

	if packagesDir := os.Getenv(PackagesDirEnv); packagesDir != "" {
		candidate := filepath.Join(packagesDir, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}

	return ""
}

// VenvDir returns the project's virtual environment directory, or ""
// when the project has none.
func VenvDir(root string) string {
	venv := filepath.Join(root, ".venv")
	if info, err := os.Stat(venv); err == nil && info.IsDir() {
		return venv
	}
	return ""
}
