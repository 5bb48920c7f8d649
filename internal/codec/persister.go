package codec

import (
	"context"
	"fmt"

	"github.com/jask/codepad/internal/tree"
)

// KV is a string keyed, string valued store with synchronous writes.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Recorder is a KV that can also keep a write as a restorable history entry.
type Recorder interface {
	Record(ctx context.Context, key, value string) error
}

// Persister snapshots a whole tree into a KV under one key.
type Persister struct {
	kv  KV
	key string
}

func NewPersister(kv KV) *Persister {
	return &Persister{kv: kv, key: StorageKey}
}

// Save encodes the current tree and stores it before returning.
func (p *Persister) Save(ctx context.Context, store *tree.Store) error {
	encoded, err := encodeStore(store)
	if err != nil {
		return err
	}
	if err := p.kv.Set(ctx, p.key, encoded); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Checkpoint is Save plus a history entry when the KV keeps history.
func (p *Persister) Checkpoint(ctx context.Context, store *tree.Store) error {
	rec, ok := p.kv.(Recorder)
	if !ok {
		return p.Save(ctx, store)
	}
	encoded, err := encodeStore(store)
	if err != nil {
		return err
	}
	if err := rec.Record(ctx, p.key, encoded); err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	return nil
}

func encodeStore(store *tree.Store) (string, error) {
	var encoded string
	err := store.View(func(root *tree.Folder) error {
		var err error
		encoded, err = Encode(root)
		return err
	})
	return encoded, err
}

// Load returns the stored tree. ok is false when nothing was saved yet.
func (p *Persister) Load(ctx context.Context) (root *tree.Folder, ok bool, err error) {
	raw, ok, err := p.kv.Get(ctx, p.key)
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}
	if !ok || raw == "" {
		return nil, false, nil
	}
	root, err = Decode(raw)
	if err != nil {
		return nil, false, err
	}
	return root, true, nil
}
