package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/rowjay/insights-synth/internal/compress"
	"github.com/rowjay/insights-synth/internal/storage"
)

// Write streams rootDir as a tar archive compressed with kind. Entry names
// start with the base name of rootDir, so the scratch location never leaks
// into the archive.
func Write(rootDir, kind string, w io.Writer) error {
	parent := filepath.Dir(rootDir)
	cw, err := compress.WrapWriter(kind, w)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)

	walkErr := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}
		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return fmt.Errorf("header for %s: %w", rel, err)
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("write header for %s: %w", rel, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		if _, err := io.Copy(tw, file); err != nil {
			return fmt.Errorf("write content for %s: %w", rel, err)
		}
		return nil
	})
	if walkErr != nil {
		return walkErr
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return cw.Close()
}

// Pack streams rootDir into store under key and returns the stored object.
func Pack(ctx context.Context, rootDir, kind string, store storage.Storage, key string) (storage.ObjectInfo, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("stat bundle root: %w", err)
	}
	if !info.IsDir() {
		return storage.ObjectInfo{}, fmt.Errorf("bundle root is not a directory: %s", rootDir)
	}

	pipeReader, pipeWriter := io.Pipe()
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer pipeReader.Close()
		return store.Put(egCtx, key, pipeReader, -1, map[string]string{"synthgen-bundle": filepath.Base(rootDir)})
	})

	eg.Go(func() error {
		if err := Write(rootDir, kind, pipeWriter); err != nil {
			_ = pipeWriter.CloseWithError(err)
			return err
		}
		return pipeWriter.Close()
	})

	if err := eg.Wait(); err != nil {
		return storage.ObjectInfo{}, err
	}
	return store.Stat(ctx, key)
}
