// Package hostfs connects the workspace to the host filesystem through afero:
// directories are read for upload and exports are written to a download
// directory.
package hostfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/jask/codepad/internal/workspace"
)

// Downloader writes files into one directory without overwriting.
type Downloader struct {
	fs  afero.Afero
	dir string
}

func NewDownloader(fs afero.Fs, dir string) *Downloader {
	return &Downloader{fs: afero.Afero{Fs: fs}, dir: dir}
}

// Download writes data as name, or "name (n).ext" when name is taken, and
// returns the written path.
func (d *Downloader) Download(name string, data []byte) (string, error) {
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid download name %q", name)
	}
	if err := d.fs.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("download dir: %w", err)
	}

	tmp, err := d.fs.TempFile(d.dir, ".codepad-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = d.fs.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = d.fs.Remove(tmpName)
		return "", err
	}

	dest, err := d.reserve(name)
	if err != nil {
		_ = d.fs.Remove(tmpName)
		return "", err
	}
	// dest is an empty placeholder we created, so replacing it is safe.
	if err := d.fs.Rename(tmpName, dest); err != nil {
		_ = d.fs.Remove(tmpName)
		_ = d.fs.Remove(dest)
		return "", err
	}
	return dest, nil
}

// reserve creates an empty file at the first free name. O_EXCL makes the
// check and the create one step, so a file appearing meanwhile is skipped.
func (d *Downloader) reserve(name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = name, ""
	}
	candidate := filepath.Join(d.dir, name)
	for i := 1; ; i++ {
		f, err := d.fs.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return candidate, f.Close()
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
		candidate = filepath.Join(d.dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
	}
}

// CollectOptions controls CollectDir.
type CollectOptions struct {
	ShowHidden bool
	// MaxFileSize skips larger files with a read error; zero means no limit.
	MaxFileSize int64
}

// CollectDir lists dir as upload entries whose paths start with dir's base
// name. Contents are read lazily by the returned Read funcs.
func CollectDir(fs afero.Fs, dir string, opts CollectOptions) ([]workspace.UploadFile, error) {
	dir = filepath.Clean(dir)
	info, err := fs.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	base := filepath.Base(dir)
	if base == "." || base == string(filepath.Separator) {
		return nil, fmt.Errorf("cannot upload %q: pick a named directory", dir)
	}

	var out []workspace.UploadFile
	err = afero.Walk(fs, dir, func(path string, info os.FileInfo, walkErr error) error {
		if path == dir {
			return walkErr
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := base + "/" + filepath.ToSlash(rel)
		if !opts.ShowHidden && strings.HasPrefix(filepath.Base(path), ".") {
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if walkErr != nil {
			out = append(out, workspace.UploadFile{Path: name, Read: func() (string, error) { return "", walkErr }})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			out = append(out, workspace.UploadFile{Path: name, Dir: true})
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		size := info.Size()
		out = append(out, workspace.UploadFile{Path: name, Read: func() (string, error) {
			if opts.MaxFileSize > 0 && size > opts.MaxFileSize {
				return "", fmt.Errorf("file is %d bytes, limit is %d", size, opts.MaxFileSize)
			}
			data, err := afero.ReadFile(fs, path)
			return string(data), err
		}})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
