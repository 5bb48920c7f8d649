// Package codec converts the file tree to and from its persisted JSON form.
//
// The format mirrors the tree:
//
//	{"version":1,"name":"root","type":"folder","children":{"a.lua":{"type":"file","name":"a.lua","content":"..."}},"order":["a.lua"]}
//
// Snapshots written before versioning carry neither "version" nor "order"
// and are still accepted; their children are ordered by name.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jask/codepad/internal/tree"
)

// StorageKey is the key under which the snapshot lives in the key/value store.
const StorageKey = "fileStructure"

// Version is the snapshot format written by Encode.
const Version = 1

var (
	ErrInvalidSnapshot    = errors.New("invalid snapshot")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

const (
	typeFile   = "file"
	typeFolder = "folder"
)

// Record is the plain nested form of one node.
type Record struct {
	Version  int                `json:"version,omitempty"`
	Type     string             `json:"type"`
	Name     string             `json:"name"`
	Content  string             `json:"content,omitempty"`
	Children map[string]*Record `json:"children,omitempty"`
	Order    []string           `json:"order,omitempty"`
}

type fileRecord struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

type folderRecord struct {
	Version  int                `json:"version,omitempty"`
	Name     string             `json:"name"`
	Type     string             `json:"type"`
	Children map[string]*Record `json:"children"`
	Order    []string           `json:"order,omitempty"`
}

// MarshalJSON writes files with an explicit content field and folders with an
// explicit children object, even when empty.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.Type == typeFile {
		return json.Marshal(fileRecord{Type: r.Type, Name: r.Name, Content: r.Content})
	}
	children := r.Children
	if children == nil {
		children = map[string]*Record{}
	}
	return json.Marshal(folderRecord{Version: r.Version, Name: r.Name, Type: r.Type, Children: children, Order: r.Order})
}

// Serialize walks root and returns its snapshot. It has no side effects.
func Serialize(root *tree.Folder) *Record {
	out := newFolderRecord(root.Name())
	out.Version = Version

	type frame struct {
		folder *tree.Folder
		rec    *Record
	}
	stack := []frame{{root, out}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range top.folder.Children() {
			name := child.Name()
			top.rec.Order = append(top.rec.Order, name)
			switch n := child.(type) {
			case *tree.File:
				top.rec.Children[name] = &Record{Type: typeFile, Name: name, Content: n.Content()}
			case *tree.Folder:
				rec := newFolderRecord(name)
				top.rec.Children[name] = rec
				stack = append(stack, frame{n, rec})
			}
		}
	}
	return out
}

func newFolderRecord(name string) *Record {
	return &Record{Type: typeFolder, Name: name, Children: map[string]*Record{}}
}

// Deserialize rebuilds a tree from rec. The map key is authoritative for a
// child's name.
func Deserialize(rec *Record) (*tree.Folder, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSnapshot)
	}
	if rec.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.Version)
	}
	if rec.Type != typeFolder {
		return nil, fmt.Errorf("%w: root is %q, want folder", ErrInvalidSnapshot, rec.Type)
	}

	root := tree.NewFolder(rec.Name)
	type frame struct {
		folder *tree.Folder
		rec    *Record
	}
	stack := []frame{{root, rec}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, name := range childOrder(top.rec) {
			child := top.rec.Children[name]
			if child == nil {
				return nil, fmt.Errorf("%w: %q is null", ErrInvalidSnapshot, name)
			}
			switch child.Type {
			case typeFile:
				top.folder.AddChild(name, tree.NewFile(name, child.Content))
			case typeFolder:
				f := tree.NewFolder(name)
				top.folder.AddChild(name, f)
				stack = append(stack, frame{f, child})
			default:
				return nil, fmt.Errorf("%w: %q has type %q", ErrInvalidSnapshot, name, child.Type)
			}
		}
	}
	return root, nil
}

// childOrder follows rec.Order for the names it lists and appends the rest
// sorted, so stale or missing order data never drops a child.
func childOrder(rec *Record) []string {
	out := make([]string, 0, len(rec.Children))
	seen := make(map[string]bool, len(rec.Children))
	for _, name := range rec.Order {
		if _, ok := rec.Children[name]; ok && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	var rest []string
	for name := range rec.Children {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Encode serializes root to its JSON string.
func Encode(root *tree.Folder) (string, error) {
	data, err := json.Marshal(Serialize(root))
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(data), nil
}

// Decode parses a JSON snapshot into a tree.
func Decode(s string) (*tree.Folder, error) {
	var rec Record
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return Deserialize(&rec)
}
