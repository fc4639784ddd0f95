// Package store holds the authoritative in-memory state and mirrors it to the
// durable slot after every mutation.
package store

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/fairyhunter13/stockkeeper/internal/backup"
	"github.com/fairyhunter13/stockkeeper/internal/model"
	"github.com/fairyhunter13/stockkeeper/internal/obs"
	"github.com/fairyhunter13/stockkeeper/internal/persist"
)

// Store owns the live state. All reads and writes are serialized by mu.
type Store struct {
	mu    sync.Mutex
	slot  persist.Slot
	state model.State

	saves        atomic.Uint64
	saveFailures atomic.Uint64
}

// New returns a store with an empty state bound to slot.
func New(slot persist.Slot) *Store {
	return &Store{slot: slot, state: model.EmptyState()}
}

// Load reads the durable blob and adopts it when it has the expected shape.
// A missing, unreadable or malformed blob leaves the current state in place.
func (s *Store) Load() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.slot.Read()
	switch {
	case errors.Is(err, persist.ErrNoData):
		return s.state.Clone()
	case err != nil:
		obs.Logger.Error("state_load_failed", "error", err)
		return s.state.Clone()
	}
	st, err := backup.Decode(b)
	if err != nil {
		obs.Logger.Error("state_load_invalid", "error", err)
		return s.state.Clone()
	}
	s.state = st
	obs.Logger.Info("state_loaded", "products", len(st.Products), "sales", len(st.Sales))
	return s.state.Clone()
}

// Save writes the whole state to the slot.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	b, err := backup.Encode(s.state)
	if err == nil {
		err = s.slot.Write(b)
	}
	if err != nil {
		s.saveFailures.Add(1)
		obs.Logger.Error("state_save_failed", "error", err)
		return err
	}
	s.saves.Add(1)
	return nil
}

// Replace substitutes the whole state and saves it. The caller validates st.
func (s *Store) Replace(st model.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st.Clone()
	_ = s.saveLocked()
	obs.Logger.Info("state_replaced", "products", len(st.Products), "sales", len(st.Sales))
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Update runs fn against a working copy of the state. When fn succeeds the
// copy becomes the live state and is saved; otherwise nothing changes. A
// failed save is logged and does not fail the update.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.Clone()
	if err := fn(newTx(&work)); err != nil {
		return err
	}
	s.state = work
	_ = s.saveLocked()
	return nil
}

// View runs fn against the live state. fn must not modify it.
func (s *Store) View(fn func(tx *Tx)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(newTx(&s.state))
}

// Stats reports persistence counters.
func (s *Store) Stats() (saves, failures uint64) {
	return s.saves.Load(), s.saveFailures.Load()
}
