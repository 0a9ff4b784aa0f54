// Package history persists evaluated expressions in a LevelDB database so
// that the REPL, the TUI and the HTTP API can list recent evaluations.
package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// keyPrefix namespaces history entries; the sequence number follows in
// big-endian so that key order is insertion order.
var keyPrefix = []byte("h/")

// seqKey holds the last assigned sequence number, so that it survives Clear.
var seqKey = []byte("m/seq")

// Record is one stored evaluation.
type Record struct {
	Seq        uint64        `json:"seq"`
	Expression string        `json:"expression"`
	Result     string        `json:"result,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	At         time.Time     `json:"at"`
}

// Failed reports whether the evaluation ended in an error.
func (r Record) Failed() bool { return r.Error != "" }

// Store is safe for concurrent use.
type Store struct {
	db  *leveldb.DB
	mu  sync.Mutex
	seq uint64
	now func() time.Time
}

// Open opens or creates the database at path and resumes its sequence.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}
	return newStore(db)
}

// OpenMemory returns a store backed by memory only.
func OpenMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory history: %w", err)
	}
	return newStore(db)
}

func newStore(db *leveldb.DB) (*Store, error) {
	s := &Store{db: db, now: time.Now}

	data, err := db.Get(seqKey, nil)
	switch {
	case err == nil && len(data) == 8:
		s.seq = binary.BigEndian.Uint64(data)
	case err != nil && err != leveldb.ErrNotFound:
		db.Close()
		return nil, fmt.Errorf("reading history sequence: %w", err)
	}
	return s, nil
}

func key(seq uint64) []byte {
	k := make([]byte, len(keyPrefix)+8)
	copy(k, keyPrefix)
	binary.BigEndian.PutUint64(k[len(keyPrefix):], seq)
	return k
}

func seqFromKey(k []byte) uint64 {
	if len(k) != len(keyPrefix)+8 {
		return 0
	}
	return binary.BigEndian.Uint64(k[len(keyPrefix):])
}

// Append stores rec under the next sequence number and returns it with Seq
// and, when unset, At filled in.
func (s *Store) Append(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Seq = s.seq + 1
	if rec.At.IsZero() {
		rec.At = s.now().UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("encoding history record: %w", err)
	}
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], rec.Seq)
	batch := new(leveldb.Batch)
	batch.Put(key(rec.Seq), data)
	batch.Put(seqKey, seq[:])
	if err := s.db.Write(batch, nil); err != nil {
		return Record{}, fmt.Errorf("writing history record %d: %w", rec.Seq, err)
	}
	s.seq = rec.Seq
	return rec, nil
}

// Get returns the record with the given sequence number.
func (s *Store) Get(seq uint64) (Record, bool, error) {
	data, err := s.db.Get(key(seq), nil)
	if err == leveldb.ErrNotFound {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("reading history record %d: %w", seq, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decoding history record %d: %w", seq, err)
	}
	return rec, true, nil
}

// Recent returns up to n records, newest first. n <= 0 returns all of them.
func (s *Store) Recent(n int) ([]Record, error) {
	it := s.db.NewIterator(util.BytesPrefix(keyPrefix), nil)
	defer it.Release()

	var out []Record
	for ok := it.Last(); ok && (n <= 0 || len(out) < n); ok = it.Prev() {
		var rec Record
		if err := json.Unmarshal(it.Value(), &rec); err != nil {
			return nil, fmt.Errorf("decoding history record %d: %w", seqFromKey(it.Key()), err)
		}
		out = append(out, rec)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	it := s.db.NewIterator(util.BytesPrefix(keyPrefix), nil)
	defer it.Release()

	n := 0
	for it.Next() {
		n++
	}
	return n, it.Error()
}

// Clear deletes every record. Sequence numbers keep increasing afterwards.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.db.NewIterator(util.BytesPrefix(keyPrefix), nil)
	batch := new(leveldb.Batch)
	for it.Next() {
		batch.Delete(append([]byte(nil), it.Key()...))
	}
	it.Release()
	if err := it.Error(); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return s.db.Write(batch, nil)
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
