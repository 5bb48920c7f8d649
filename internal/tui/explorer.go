package tui

import (
	"strings"

	"github.com/jask/codepad/internal/tree"
)

// row is one visible line of the explorer.
type row struct {
	Dir   tree.Path
	Name  string
	Kind  tree.Kind
	Depth int
	Empty bool
	Root  bool
}

func (r row) Path() tree.Path {
	if r.Root {
		return nil
	}
	return r.Dir.Join(r.Name)
}

func (r row) Key() string { return r.Path().String() }

// buildRows flattens the visible part of the tree below a row for the root
// itself. Children of collapsed folders are skipped.
func buildRows(root *tree.Folder, expanded map[string]bool) []row {
	rows := []row{{Name: root.Name(), Kind: tree.KindFolder, Root: true, Empty: root.Len() == 0}}
	_ = tree.Walk(root, func(dir tree.Path, n tree.Node) error {
		r := row{Dir: dir, Name: n.Name(), Kind: n.Kind(), Depth: len(dir) + 1}
		if f, ok := n.(*tree.Folder); ok {
			r.Empty = f.Len() == 0
		}
		rows = append(rows, r)
		if r.Kind == tree.KindFolder && !expanded[r.Key()] {
			return tree.SkipFolder
		}
		return nil
	})
	return rows
}

// targetDir is the folder new entries go into when row r is selected: the
// folder itself, or the parent of a file.
func targetDir(r *row) tree.Path {
	if r == nil {
		return nil
	}
	if r.Kind == tree.KindFolder {
		return r.Path()
	}
	return r.Dir.Clone()
}

// renameExpanded moves expansion state from one path prefix to another.
func renameExpanded(expanded map[string]bool, from, to tree.Path) {
	old, repl := from.String(), to.String()
	moved := map[string]bool{}
	for k := range expanded {
		switch {
		case k == old:
			moved[repl] = true
		case strings.HasPrefix(k, old+"/"):
			moved[repl+k[len(old):]] = true
		default:
			continue
		}
		delete(expanded, k)
	}
	for k := range moved {
		expanded[k] = true
	}
}
