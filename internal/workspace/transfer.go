package workspace

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jask/codepad/internal/archive"
	"github.com/jask/codepad/internal/tree"
)

// UploadFile is one entry of an uploaded directory. Path is slash separated
// and its first segment names the top-level folder the entry lands in.
type UploadFile struct {
	Path string
	Dir  bool
	Read func() (string, error)
}

// UploadResult reports a partially successful upload.
type UploadResult struct {
	Folders []string
	Files   int
	Errors  []error
}

// Upload mirrors files into new top-level folders, one per distinct leading
// segment. Every read happens before the tree is touched and the folders are
// added in one store write. A top-level folder with the same name is
// replaced. Unreadable files are skipped and reported in Errors.
func (w *Workspace) Upload(ctx context.Context, files []UploadFile) (UploadResult, error) {
	var res UploadResult
	built := map[string]*tree.Folder{}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p := tree.ParsePath(f.Path)
		if len(p) == 0 || (len(p) == 1 && !f.Dir) {
			res.Errors = append(res.Errors, fmt.Errorf("%w: %q: not inside a folder", ErrUploadRead, f.Path))
			continue
		}
		if err := validatePath(p); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("%w: %q: %v", ErrUploadRead, f.Path, err))
			continue
		}

		top, ok := built[p[0]]
		if !ok {
			top = tree.NewFolder(p[0])
			built[p[0]] = top
			res.Folders = append(res.Folders, p[0])
		}

		if f.Dir {
			ensureFolder(top, p[1:])
			continue
		}
		content, err := readUpload(f)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("%w: %s: %v", ErrUploadRead, f.Path, err))
			continue
		}
		dir, name := p[1:].Split()
		ensureFolder(top, dir).AddChild(name, tree.NewFile(name, content))
		res.Files++
	}

	for _, err := range res.Errors {
		w.console.Error("Upload: %v", err)
	}
	if len(res.Folders) == 0 {
		return res, nil
	}

	err := w.store.Update(func(root *tree.Folder) error {
		for _, name := range res.Folders {
			root.AddChild(name, built[name])
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	w.log.Info("upload", zap.Strings("folders", res.Folders), zap.Int("files", res.Files), zap.Int("errors", len(res.Errors)))
	w.console.Success("Uploaded %d file(s) into %s", res.Files, strings.Join(res.Folders, ", "))
	return res, w.commit(ctx)
}

func readUpload(f UploadFile) (content string, err error) {
	if f.Read == nil {
		return "", fmt.Errorf("no content source")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read panicked: %v", r)
		}
	}()
	return f.Read()
}

func validatePath(p tree.Path) error {
	for _, seg := range p {
		if err := tree.ValidateName(seg); err != nil {
			return err
		}
	}
	return nil
}

// ensureFolder walks p below f, creating folders as needed. A file in the
// way is replaced by a folder.
func ensureFolder(f *tree.Folder, p tree.Path) *tree.Folder {
	cur := f
	for _, seg := range p {
		child, ok := cur.Child(seg)
		next, isFolder := child.(*tree.Folder)
		if !ok || !isFolder {
			next = tree.NewFolder(seg)
			cur.AddChild(seg, next)
		}
		cur = next
	}
	return cur
}

// ExportFile downloads a single file under its own name.
func (w *Workspace) ExportFile(dir tree.Path, name string) (string, error) {
	content, err := w.store.ReadFile(dir, name)
	if err != nil {
		return "", err
	}
	if w.downloader == nil {
		return "", fmt.Errorf("no download target configured")
	}
	dest, err := w.downloader.Download(name, []byte(content))
	if err != nil {
		w.console.Error("Error saving file: %v", err)
		return "", err
	}
	w.console.Success("File '%s' saved successfully", name)
	return dest, nil
}

// FolderEntries lists every file below dir with paths relative to it, depth
// first. Empty folders are listed as directory entries.
func (w *Workspace) FolderEntries(dir tree.Path) ([]archive.Entry, error) {
	var entries []archive.Entry
	err := w.store.View(func(root *tree.Folder) error {
		folder, err := tree.Resolve(root, dir)
		if err != nil {
			return err
		}
		return tree.Walk(folder, func(rel tree.Path, n tree.Node) error {
			path := rel.Join(n.Name())
			switch n := n.(type) {
			case *tree.File:
				entries = append(entries, archive.Entry{Path: path.String(), Content: n.Content()})
			case *tree.Folder:
				if n.Len() == 0 {
					entries = append(entries, archive.Entry{Path: path.String(), Dir: true})
				}
			}
			return nil
		})
	})
	return entries, err
}

// ExportFolder archives the folder at dir and downloads it as <name>.zip.
// Archive failures are reported to the console and not retried.
func (w *Workspace) ExportFolder(ctx context.Context, dir tree.Path) (string, error) {
	entries, err := w.FolderEntries(dir)
	if err != nil {
		return "", err
	}
	name := dir.Base()
	if name == "" {
		_ = w.store.View(func(root *tree.Folder) error {
			name = root.Name()
			return nil
		})
	}
	if w.archiver == nil || w.downloader == nil {
		return "", fmt.Errorf("no archive target configured")
	}

	data, err := w.archiver.Archive(ctx, entries)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrArchiveGeneration, err)
		w.log.Error("export folder", zap.String("folder", dir.String()), zap.Error(err))
		w.console.Error("Error saving folder: %v", err)
		return "", err
	}
	dest, err := w.downloader.Download(name+".zip", data)
	if err != nil {
		w.console.Error("Error saving folder: %v", err)
		return "", err
	}
	w.console.Success("Folder '%s' saved successfully as zip", name)
	return dest, nil
}

// FileRef names one file of the tree.
type FileRef struct {
	Path  tree.Path
	Score int
}

// QuickOpen ranks files by how well their name matches query. Names that
// contain the query come first, the rest follow by edit distance.
func (w *Workspace) QuickOpen(query string, limit int) []FileRef {
	q := strings.ToLower(strings.TrimSpace(query))
	var refs []FileRef
	_ = w.store.View(func(root *tree.Folder) error {
		return tree.Walk(root, func(dir tree.Path, n tree.Node) error {
			if n.Kind() == tree.KindFile {
				refs = append(refs, FileRef{Path: dir.Join(n.Name()), Score: matchScore(q, strings.ToLower(n.Name()))})
			}
			return nil
		})
	})
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Score != refs[j].Score {
			return refs[i].Score < refs[j].Score
		}
		return refs[i].Path.String() < refs[j].Path.String()
	})
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs
}
