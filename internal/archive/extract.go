// Package archive converts between bundle archives and directory trees.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rowjay/insights-synth/internal/compress"
	"github.com/rowjay/insights-synth/internal/errs"
)

// Extract unpacks archivePath into destDir and returns the first top-level
// directory it contains. Compressed input that fails to unpack is retried as
// a plain tar stream before giving up.
func Extract(archivePath, destDir string) (string, error) {
	kind, err := detect(archivePath)
	if err != nil {
		return "", err
	}

	attempts := []string{compress.TypeNone}
	if kind != compress.TypeNone {
		attempts = []string{kind, compress.TypeNone}
	}
	var failures []string
	for _, attempt := range attempts {
		err = extractAs(archivePath, destDir, attempt)
		if err == nil {
			break
		}
		failures = append(failures, fmt.Sprintf("%s: %v", attempt, err))
		if cerr := clearDir(destDir); cerr != nil {
			return "", cerr
		}
	}
	if err != nil {
		return "", errs.Format("extract "+filepath.Base(archivePath), "not a readable tar archive (%s)", strings.Join(failures, "; "))
	}
	return findRoot(destDir)
}

func detect(archivePath string) (string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()
	kind, _, err := compress.Detect(file)
	if err != nil {
		return "", errs.Format("read "+filepath.Base(archivePath), "%w", err)
	}
	return kind, nil
}

func extractAs(archivePath, destDir, kind string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer file.Close()
	reader, err := compress.WrapReader(kind, file)
	if err != nil {
		return err
	}
	defer reader.Close()
	return untar(reader, destDir)
}

func untar(r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	entries := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		entries++
		// "./" heads archives made with tar -C dir .
		if filepath.Clean(strings.TrimSpace(hdr.Name)) == "." {
			continue
		}
		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}
		if err := checkParents(dest, target); err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, hdr.FileInfo().Mode().Perm()|0o700); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(tr, target, hdr); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		case tar.TypeLink:
			source, err := safeJoin(dest, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Link(source, target); err != nil {
				return err
			}
		}
	}
	if entries == 0 {
		return errors.New("archive has no entries")
	}
	return nil
}

func writeFile(r io.Reader, target string, hdr *tar.Header) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if info, err := os.Lstat(target); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return err
		}
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, hdr.FileInfo().Mode().Perm()|0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if !hdr.ModTime.IsZero() {
		_ = os.Chtimes(target, hdr.ModTime, hdr.ModTime)
	}
	return nil
}

func safeJoin(base, name string) (string, error) {
	clean := filepath.Clean(strings.TrimSpace(name))
	if clean == "." || clean == "" {
		return "", fmt.Errorf("invalid archive path: %s", name)
	}
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("absolute archive path: %s", name)
	}
	target := filepath.Join(base, clean)
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid archive path: %s", name)
	}
	return target, nil
}

// checkParents rejects entries that would be written through a symlink
// extracted earlier from the same archive.
func checkParents(base, target string) error {
	rel, err := filepath.Rel(base, filepath.Dir(target))
	if err != nil || rel == "." {
		return nil
	}
	current := base
	for _, part := range strings.Split(rel, string(os.PathSeparator)) {
		current = filepath.Join(current, part)
		info, err := os.Lstat(current)
		if err != nil {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("archive path traverses symlink: %s", current)
		}
	}
	return nil
}

func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func findRoot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", errs.Structure("find bundle root", "archive has no top-level directory")
}
