package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"majin/internal/common/fsutil"
	"majin/pkg/types"
)

var (
	bucketName = []byte("settings")
	docKey     = []byte("current")
)

var _ Store = (*Bolt)(nil)

// Bolt keeps settings as one JSON document in a bbolt file.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the settings database at path. A
// leading ~ is expanded.
func OpenBolt(path string) (*Bolt, error) {
	p, err := fsutil.PrepareFile(path)
	if err != nil {
		return nil, err
	}
	db, err := bolt.Open(p, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create settings bucket: %w", err)
	}
	return &Bolt{db: db}, nil
}

// Close releases the database file lock.
func (b *Bolt) Close() error { return b.db.Close() }

func (b *Bolt) Get(context.Context) (types.Settings, error) {
	var s types.Settings
	err := b.db.View(func(tx *bolt.Tx) error {
		var err error
		s, err = load(tx)
		return err
	})
	return s, err
}

func (b *Bolt) Update(_ context.Context, in types.Settings) (types.Settings, error) {
	var out types.Settings
	err := b.db.Update(func(tx *bolt.Tx) error {
		cur, err := load(tx)
		if err != nil {
			return err
		}
		out, err = merge(cur, in)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		return tx.Bucket(bucketName).Put(docKey, raw)
	})
	return out, err
}

func load(tx *bolt.Tx) (types.Settings, error) {
	s := Defaults()
	raw := tx.Bucket(bucketName).Get(docKey)
	if raw == nil {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}
