package persist

import "sync"

// Memory is an in-process slot, used for tests and ephemeral runs.
type Memory struct {
	mu   sync.Mutex
	data []byte
	set  bool

	// WriteErr, when non-nil, is returned by every Write and the blob is left untouched.
	WriteErr error
	writes   int
}

// NewMemory returns an empty Memory slot.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, ErrNoData
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *Memory) Write(b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.data = append(m.data[:0], b...)
	m.set = true
	m.writes++
	return nil
}

// Writes reports how many successful writes happened.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *Memory) Close() error { return nil }
