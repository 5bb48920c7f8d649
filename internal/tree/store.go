package tree

import (
	"fmt"
	"sync"
)

// Resolve walks p from root. Every segment must name a Folder.
func Resolve(root *Folder, p Path) (*Folder, error) {
	cur := root
	for i, seg := range p {
		child, ok := cur.children[seg]
		if !ok {
			return nil, fmt.Errorf("%s: %w", Path(p[:i+1]), ErrPathNotFound)
		}
		folder, ok := child.(*Folder)
		if !ok {
			return nil, fmt.Errorf("%s is a file: %w", Path(p[:i+1]), ErrPathNotFound)
		}
		cur = folder
	}
	return cur, nil
}

// Store guards a tree with a single-writer lock. All mutations go through
// Update so folder uniqueness and path resolution hold under concurrent
// commands.
type Store struct {
	mu   sync.RWMutex
	root *Folder
}

func NewStore(root *Folder) *Store {
	if root == nil {
		root = NewFolder("root")
	}
	return &Store{root: root}
}

// Replace swaps in a whole new tree, e.g. after reloading a snapshot.
func (s *Store) Replace(root *Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
}

// View runs fn with the read lock held. fn must not retain root.
func (s *Store) View(fn func(root *Folder) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.root)
}

// Update runs fn with the write lock held.
func (s *Store) Update(fn func(root *Folder) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.root)
}

// Resolve checks that p names a folder.
func (s *Store) Resolve(p Path) error {
	return s.View(func(root *Folder) error {
		_, err := Resolve(root, p)
		return err
	})
}

// Lookup returns the kind of the node at dir/name.
func (s *Store) Lookup(dir Path, name string) (Kind, error) {
	var kind Kind
	err := s.View(func(root *Folder) error {
		folder, err := Resolve(root, dir)
		if err != nil {
			return err
		}
		node, ok := folder.Child(name)
		if !ok {
			return fmt.Errorf("%s: %w", dir.Join(name), ErrPathNotFound)
		}
		kind = node.Kind()
		return nil
	})
	return kind, err
}

// Add stores node under dir, overwriting any child of the same name.
func (s *Store) Add(dir Path, node Node) error {
	return s.Update(func(root *Folder) error {
		folder, err := Resolve(root, dir)
		if err != nil {
			return err
		}
		folder.AddChild(node.Name(), node)
		return nil
	})
}

// Create stores node under dir and fails if the name is taken.
func (s *Store) Create(dir Path, node Node) error {
	return s.Update(func(root *Folder) error {
		folder, err := Resolve(root, dir)
		if err != nil {
			return err
		}
		if _, exists := folder.Child(node.Name()); exists {
			return fmt.Errorf("%s: %w", dir.Join(node.Name()), ErrNameCollision)
		}
		folder.AddChild(node.Name(), node)
		return nil
	})
}

// Remove deletes dir/name. A missing name is not an error; a missing dir is.
func (s *Store) Remove(dir Path, name string) error {
	return s.Update(func(root *Folder) error {
		folder, err := Resolve(root, dir)
		if err != nil {
			return err
		}
		folder.RemoveChild(name)
		return nil
	})
}

func (s *Store) Rename(dir Path, oldName, newName string) error {
	return s.Update(func(root *Folder) error {
		folder, err := Resolve(root, dir)
		if err != nil {
			return err
		}
		if err := folder.Rename(oldName, newName); err != nil {
			return fmt.Errorf("rename %s to %s: %w", dir.Join(oldName), newName, err)
		}
		return nil
	})
}

// Move relocates from/name into the folder to, keeping its name.
func (s *Store) Move(from Path, name string, to Path) error {
	if from.Equal(to) {
		return nil
	}
	if to.HasPrefix(from.Join(name)) {
		return fmt.Errorf("%s into %s: %w", from.Join(name), to, ErrInvalidMove)
	}
	return s.Update(func(root *Folder) error {
		src, err := Resolve(root, from)
		if err != nil {
			return err
		}
		dst, err := Resolve(root, to)
		if err != nil {
			return err
		}
		node, ok := src.Child(name)
		if !ok {
			return fmt.Errorf("%s: %w", from.Join(name), ErrPathNotFound)
		}
		if _, exists := dst.Child(name); exists {
			return fmt.Errorf("%s: %w", to.Join(name), ErrNameCollision)
		}
		src.RemoveChild(name)
		dst.AddChild(name, node)
		return nil
	})
}

// ReadFile returns the content of the file dir/name.
func (s *Store) ReadFile(dir Path, name string) (string, error) {
	var content string
	err := s.View(func(root *Folder) error {
		f, err := fileAt(root, dir, name)
		if err != nil {
			return err
		}
		content = f.content
		return nil
	})
	return content, err
}

// WriteFile replaces the content of an existing file.
func (s *Store) WriteFile(dir Path, name, content string) error {
	return s.Update(func(root *Folder) error {
		f, err := fileAt(root, dir, name)
		if err != nil {
			return err
		}
		f.content = content
		return nil
	})
}

func fileAt(root *Folder, dir Path, name string) (*File, error) {
	folder, err := Resolve(root, dir)
	if err != nil {
		return nil, err
	}
	node, ok := folder.Child(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir.Join(name), ErrPathNotFound)
	}
	f, ok := node.(*File)
	if !ok {
		return nil, fmt.Errorf("%s is a folder: %w", dir.Join(name), ErrPathNotFound)
	}
	return f, nil
}
