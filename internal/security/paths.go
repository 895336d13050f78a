// Package security guards the file paths that reach the web surface:
// uploaded file names and requests for generated artefacts.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathTraversal is returned for a path that resolves outside its base
// directory.
var ErrPathTraversal = errors.New("path escapes base directory")

// ErrEmptyFilename is returned when nothing usable remains of a file name.
var ErrEmptyFilename = errors.New("empty file name")

// maxFilenameLen bounds sanitised upload names.
const maxFilenameLen = 128

// canonical resolves symlinks in p. A path that does not exist yet is
// resolved through its nearest existing ancestor, so a dangling name under
// a symlinked directory still lands where the link points.
func canonical(p string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			rel, _ := filepath.Rel(dir, abs)
			return filepath.Join(resolved, rel), nil
		}
		if dir == filepath.Dir(dir) {
			return abs, nil
		}
	}
}

// ValidatePathWithinDirectory returns ErrPathTraversal unless filePath,
// after cleaning and symlink resolution, lies inside baseDir.
func ValidatePathWithinDirectory(filePath, baseDir string) error {
	path, err := canonical(filePath)
	if err != nil {
		return err
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}
	base, err = filepath.EvalSymlinks(base)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}

	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s", ErrPathTraversal, filePath)
	}
	return nil
}

// ResolveWithin joins the slash-separated name onto baseDir and validates
// the result.
func ResolveWithin(baseDir, name string) (string, error) {
	if name == "" {
		return "", ErrEmptyFilename
	}
	path := filepath.Join(baseDir, filepath.FromSlash(name))
	if err := ValidatePathWithinDirectory(path, baseDir); err != nil {
		return "", err
	}
	return path, nil
}

// SanitizeFilename reduces an uploaded file name to a flat, portable name:
// any directory part is dropped, whitespace becomes an underscore, and
// characters other than ASCII letters, digits, dot, underscore and dash are
// removed. Leading dots and underscores are trimmed so the result is never
// hidden or relative.
func SanitizeFilename(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range strings.Join(strings.Fields(name), "_") {
		if b.Len() >= maxFilenameLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}

	out := strings.TrimLeft(b.String(), "._")
	if out == "" {
		return "", ErrEmptyFilename
	}
	return out, nil
}

// HasAllowedExtension reports whether name ends in one of the extensions,
// compared case-insensitively and given without the dot.
func HasAllowedExtension(name string, allowed ...string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}
