// Package console is the in-app log panel: timestamped, typed lines kept in a
// bounded buffer and mirrored to the diagnostic logger.
package console

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind classifies a console line.
type Kind string

const (
	KindNormal  Kind = "normal"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// DefaultCapacity is the number of lines kept before the oldest are dropped.
const DefaultCapacity = 500

// Entry is one console line.
type Entry struct {
	Time    time.Time
	Kind    Kind
	Message string
}

// Timestamp formats the entry time the way the panel shows it.
func (e Entry) Timestamp() string { return e.Time.Format("15:04:05") }

func (e Entry) String() string { return fmt.Sprintf("[%s] %s", e.Timestamp(), e.Message) }

// Console is safe for concurrent use.
type Console struct {
	mu      sync.Mutex
	entries []Entry
	start   int
	size    int
	now     func() time.Time
	log     *zap.Logger
}

type Option func(*Console)

// WithLogger mirrors every line to l.
func WithLogger(l *zap.Logger) Option { return func(c *Console) { c.log = l } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(c *Console) { c.now = now } }

// WithCapacity bounds the buffer to n lines.
func WithCapacity(n int) Option {
	return func(c *Console) {
		if n > 0 {
			c.entries = make([]Entry, n)
		}
	}
}

func New(opts ...Option) *Console {
	c := &Console{
		entries: make([]Entry, DefaultCapacity),
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Log appends msg with the given kind.
func (c *Console) Log(msg string, kind Kind) {
	e := Entry{Time: c.now(), Kind: kind, Message: msg}

	c.mu.Lock()
	idx := (c.start + c.size) % len(c.entries)
	c.entries[idx] = e
	if c.size < len(c.entries) {
		c.size++
	} else {
		c.start = (c.start + 1) % len(c.entries)
	}
	c.mu.Unlock()

	switch kind {
	case KindError:
		c.log.Error(msg, zap.String("source", "console"))
	case KindNormal:
		c.log.Debug(msg, zap.String("source", "console"))
	default:
		c.log.Info(msg, zap.String("source", "console"), zap.String("kind", string(kind)))
	}
}

func (c *Console) Info(format string, args ...any) {
	c.Log(fmt.Sprintf(format, args...), KindInfo)
}

func (c *Console) Success(format string, args ...any) {
	c.Log(fmt.Sprintf(format, args...), KindSuccess)
}

func (c *Console) Error(format string, args ...any) {
	c.Log(fmt.Sprintf(format, args...), KindError)
}

// Entries returns the retained lines, oldest first.
func (c *Console) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, c.size)
	for i := 0; i < c.size; i++ {
		out[i] = c.entries[(c.start+i)%len(c.entries)]
	}
	return out
}

// Tail returns at most n of the newest lines, oldest first.
func (c *Console) Tail(n int) []Entry {
	all := c.Entries()
	if n >= 0 && len(all) > n {
		return all[len(all)-n:]
	}
	return all
}

func (c *Console) Clear() {
	c.mu.Lock()
	c.start, c.size = 0, 0
	c.mu.Unlock()
}
