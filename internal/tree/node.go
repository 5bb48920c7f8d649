// Package tree holds the in-memory file tree edited by the workspace.
package tree

import (
	"errors"
	"strings"
)

var (
	ErrPathNotFound  = errors.New("path not found")
	ErrNameCollision = errors.New("name already exists")
	ErrInvalidName   = errors.New("invalid name")
	ErrInvalidMove   = errors.New("cannot move a folder into itself")
)

// Kind tags a node as file or folder.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Node is a File or a Folder.
type Node interface {
	Name() string
	Kind() Kind
	setName(name string)
}

// File is a leaf holding text content.
type File struct {
	name    string
	content string
}

func NewFile(name, content string) *File {
	return &File{name: name, content: content}
}

func (f *File) Name() string        { return f.name }
func (f *File) Kind() Kind          { return KindFile }
func (f *File) Content() string     { return f.content }
func (f *File) SetContent(s string) { f.content = s }
func (f *File) setName(name string) { f.name = name }

// Folder keeps its children keyed by name. Iteration follows insertion order;
// overwriting an existing name keeps the original slot.
type Folder struct {
	name     string
	order    []string
	children map[string]Node
}

func NewFolder(name string) *Folder {
	return &Folder{name: name, children: map[string]Node{}}
}

func (f *Folder) Name() string        { return f.name }
func (f *Folder) Kind() Kind          { return KindFolder }
func (f *Folder) setName(name string) { f.name = name }

// AddChild inserts node under name, replacing any existing child of that name.
func (f *Folder) AddChild(name string, node Node) {
	node.setName(name)
	if _, ok := f.children[name]; !ok {
		f.order = append(f.order, name)
	}
	f.children[name] = node
}

// RemoveChild deletes name if present.
func (f *Folder) RemoveChild(name string) {
	if _, ok := f.children[name]; !ok {
		return
	}
	delete(f.children, name)
	for i, n := range f.order {
		if n == name {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// Child returns the child stored under name.
func (f *Folder) Child(name string) (Node, bool) {
	n, ok := f.children[name]
	return n, ok
}

// Names returns child names in iteration order.
func (f *Folder) Names() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Children returns child nodes in iteration order.
func (f *Folder) Children() []Node {
	out := make([]Node, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.children[name])
	}
	return out
}

func (f *Folder) Len() int { return len(f.order) }

// Rename moves the child oldName to newName in place, keeping its slot.
func (f *Folder) Rename(oldName, newName string) error {
	node, ok := f.children[oldName]
	if !ok {
		return ErrPathNotFound
	}
	if oldName == newName {
		return nil
	}
	if _, exists := f.children[newName]; exists {
		return ErrNameCollision
	}
	delete(f.children, oldName)
	node.setName(newName)
	f.children[newName] = node
	for i, n := range f.order {
		if n == oldName {
			f.order[i] = newName
			break
		}
	}
	return nil
}

// ValidateName rejects names that cannot be stored as a single path segment.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return ErrInvalidName
	}
	return nil
}

// DefaultFileName appends ext to names that carry no file-type suffix.
func DefaultFileName(name, ext string) string {
	if ext == "" || strings.Contains(name, ".") {
		return name
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return name + ext
}

// Equal reports whether a and b have the same names, kinds, contents and nesting.
func Equal(a, b Node) bool {
	type pair struct{ a, b Node }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a == nil || p.b == nil {
			if p.a != p.b {
				return false
			}
			continue
		}
		if p.a.Name() != p.b.Name() || p.a.Kind() != p.b.Kind() {
			return false
		}
		switch an := p.a.(type) {
		case *File:
			if an.content != p.b.(*File).content {
				return false
			}
		case *Folder:
			bn := p.b.(*Folder)
			if len(an.children) != len(bn.children) {
				return false
			}
			for name, child := range an.children {
				other, ok := bn.children[name]
				if !ok {
					return false
				}
				stack = append(stack, pair{child, other})
			}
		}
	}
	return true
}
