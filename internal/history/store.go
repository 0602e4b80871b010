// SPDX-License-Identifier: MIT

// Package history persists one record per successful configuration
// load, so operators can answer "what did the tools see yesterday".
package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confkit/confkit/internal/config"
	"github.com/confkit/confkit/internal/log"
	"github.com/confkit/confkit/internal/metrics"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Record is one persisted revision. Content is the canonical INI
// rendering at load time, which diffs cleanly against any other
// revision.
type Record struct {
	Revision string           `json:"revision"`
	Source   string           `json:"source"`
	LoadedAt time.Time        `json:"loaded_at"`
	ModTime  time.Time        `json:"mod_time"`
	Sections int              `json:"sections"`
	Warnings []config.Warning `json:"warnings,omitempty"`
	Content  string           `json:"content"`
}

// FromSnapshot converts a snapshot into a storable record.
func FromSnapshot(snap config.Snapshot) Record {
	return Record{
		Revision: snap.Revision,
		Source:   snap.Source,
		LoadedAt: snap.LoadedAt,
		ModTime:  snap.ModTime,
		Sections: len(snap.Project.Store.Sections()),
		Warnings: snap.Warnings,
		Content:  snap.Project.Store.Render(),
	}
}

// Store keeps records in badger under seq-ordered keys:
//   - rev:<seq>  -> record JSON (seq is big-endian, so keys sort by age)
//   - id:<uuid>  -> seq (lookup by revision id)
type Store struct {
	db     *badger.DB
	seq    *badger.Sequence
	logger zerolog.Logger
}

const (
	revPrefix = "rev:"
	idPrefix  = "id:"
)

// Open opens (or creates) the history store in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	seq, err := db.GetSequence([]byte("history-seq"), 64)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open history sequence: %w", err)
	}
	return &Store{db: db, seq: seq, logger: log.WithComponent("history")}, nil
}

// Close releases the sequence and the database.
func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		s.logger.Warn().Err(err).Msg("release history sequence")
	}
	return s.db.Close()
}

func revKey(seq uint64) []byte {
	key := make([]byte, len(revPrefix)+8)
	copy(key, revPrefix)
	binary.BigEndian.PutUint64(key[len(revPrefix):], seq)
	return key
}

// Append stores a record under the next sequence number.
func (s *Store) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	seq, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("next history seq: %w", err)
	}
	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal history record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(revKey(seq), buf); err != nil {
			return err
		}
		seqBuf := make([]byte, 8)
		binary.BigEndian.PutUint64(seqBuf, seq)
		return txn.Set([]byte(idPrefix+rec.Revision), seqBuf)
	})
	if err != nil {
		return fmt.Errorf("append history record: %w", err)
	}

	if n, err := s.count(); err == nil {
		metrics.RevisionsStored.Set(float64(n))
	}
	s.logger.Debug().
		Str("revision", rec.Revision).
		Uint64("seq", seq).
		Msg("revision recorded")
	return nil
}

// List returns up to limit records, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(revPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts just past the prefix range.
		seek := append([]byte(revPrefix), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		for it.Seek(seek); it.ValidForPrefix([]byte(revPrefix)); it.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return out, nil
}

// Get looks a record up by its revision id.
func (s *Store) Get(ctx context.Context, revision string) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}

	var rec Record
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(idPrefix + revision))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var seq uint64
		if err := item.Value(func(val []byte) error {
			seq = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return err
		}
		item, err = txn.Get(revKey(seq))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("get history record: %w", err)
	}
	return rec, found, nil
}

// Prune drops the oldest records beyond keep. Returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}

	total, err := s.count()
	if err != nil {
		return 0, err
	}
	excess := total - keep
	if excess <= 0 {
		return 0, nil
	}

	removed := 0
	err = s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(revPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(revPrefix)); it.ValidForPrefix([]byte(revPrefix)) && removed < excess; it.Next() {
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			key := it.Item().KeyCopy(nil)
			if err := txn.Delete(key); err != nil {
				return err
			}
			if err := txn.Delete([]byte(idPrefix + rec.Revision)); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("prune history: %w", err)
	}

	if n, err := s.count(); err == nil {
		metrics.RevisionsStored.Set(float64(n))
	}
	return removed, nil
}

func (s *Store) count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(revPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte(revPrefix)); it.ValidForPrefix([]byte(revPrefix)); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
