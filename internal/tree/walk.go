package tree

import "errors"

// SkipFolder returned from a WalkFunc on a folder skips its children.
var SkipFolder = errors.New("skip folder")

// WalkFunc receives the folder path that contains node.
type WalkFunc func(dir Path, node Node) error

// Walk visits every node below root depth first, in iteration order, using an
// explicit stack so deep trees do not grow the goroutine stack.
func Walk(root *Folder, fn WalkFunc) error {
	type frame struct {
		dir  Path
		node Node
	}
	var stack []frame
	push := func(dir Path, f *Folder) {
		children := f.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{dir: dir, node: children[i]})
		}
	}
	push(nil, root)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		err := fn(top.dir, top.node)
		if errors.Is(err, SkipFolder) {
			continue
		}
		if err != nil {
			return err
		}
		if folder, ok := top.node.(*Folder); ok {
			push(top.dir.Join(folder.Name()), folder)
		}
	}
	return nil
}

// Count returns the number of files and folders below root.
func Count(root *Folder) (files, folders int) {
	_ = Walk(root, func(_ Path, n Node) error {
		if n.Kind() == KindFile {
			files++
		} else {
			folders++
		}
		return nil
	})
	return files, folders
}
