package tree

import "strings"

// Path is an ordered list of folder names starting below the root.
// The empty path addresses the root itself.
type Path []string

// ParsePath splits a slash separated path. Leading, trailing and repeated
// slashes are ignored, so "/", "" and "." all name the root.
func ParsePath(s string) Path {
	var p Path
	for _, seg := range strings.Split(s, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" || seg == "." {
			continue
		}
		p = append(p, seg)
	}
	return p
}

func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	return strings.Join(p, "/")
}

// Join returns a new path with name appended. p is never modified.
func (p Path) Join(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// Clone returns a copy of p that shares no storage with it.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Split returns the parent path and the last segment. The root splits into
// (nil, "").
func (p Path) Split() (Path, string) {
	if len(p) == 0 {
		return nil, ""
	}
	parent := make(Path, len(p)-1)
	copy(parent, p[:len(p)-1])
	return parent, p[len(p)-1]
}

func (p Path) Base() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether q is p or an ancestor of p.
func (p Path) HasPrefix(q Path) bool {
	if len(q) > len(p) {
		return false
	}
	return p[:len(q)].Equal(q)
}

// Rebase replaces the prefix from with to. ok is false when from is not a
// prefix of p.
func (p Path) Rebase(from, to Path) (Path, bool) {
	if !p.HasPrefix(from) {
		return p, false
	}
	out := make(Path, 0, len(to)+len(p)-len(from))
	out = append(out, to...)
	return append(out, p[len(from):]...), true
}
