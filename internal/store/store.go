package store

import (
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Store is the document store for users, conversations and messages.
//
// Key layout:
//
//	user:{id}      user profile
//	conv:{a}:{b}   conversation for the pair, ids in lexicographic order
//	msg:{uuid}     single message
//
// The canonical pair ordering in conversation keys is what makes the
// "at most one conversation per unordered pair" invariant hold: both
// directions of a pair resolve to the same key.
type Store struct {
	db  *badger.DB
	log *slog.Logger

	pairLocks keyedMutex
}

func Open(path string, log *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, log: log, pairLocks: newKeyedMutex()}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// keyedMutex serializes writers per conversation key. Badger transactions
// detect conflicts but do not retry them, so find-or-create needs a real
// critical section per pair.
type keyedMutex struct {
	mu    *sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() keyedMutex {
	return keyedMutex{mu: &sync.Mutex{}, locks: make(map[string]*sync.Mutex)}
}

func (k keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
