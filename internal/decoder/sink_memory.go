package decoder

import "sync"

// MemorySink is an in-memory Sink used in tests (the cmd wiring uses
// NullSink in every mode). It records every packet it's given so tests
// can assert on preemption and ordering.
type MemorySink struct {
	mu         sync.Mutex
	Channels   int
	SampleRate int
	Frames     [][]byte
	opened     bool
	closed     bool
}

// NewMemorySink returns an empty recorder.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Open(channels, sampleRate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Channels, s.SampleRate = channels, sampleRate
	s.opened = true
	s.closed = false
	return nil
}

func (s *MemorySink) Write(samples []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := append([]byte(nil), samples...)
	s.Frames = append(s.Frames, cp)
	return nil
}

// Flush clears any recorded-but-unconsumed frames, matching the real
// sink's "discard buffered audio on preemption" contract.
func (s *MemorySink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Frames = nil
	return nil
}

func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Snapshot returns the frames written so far and whether the sink has
// been opened and closed, without racing the decode goroutine.
func (s *MemorySink) Snapshot() (frames [][]byte, opened, closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.Frames...), s.opened, s.closed
}
