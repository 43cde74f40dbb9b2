package keyhole_test

import (
	"sync"

	"github.com/keyhole-io/keyhole/pkg/keyhole"
)

// recordingSender captures every send attempt for later inspection.
type recordingSender struct {
	mu   sync.Mutex
	sent []*keyhole.EventData
	bufs [][]byte
}

func newRecordingSender() *recordingSender {
	return &recordingSender{}
}

func (s *recordingSender) Send(buf []byte, ev *keyhole.EventData, handler keyhole.ErrorHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, ev)
	s.bufs = append(s.bufs, buf)
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *recordingSender) events() []*keyhole.EventData {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*keyhole.EventData, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *recordingSender) buffers() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.bufs))
	copy(out, s.bufs)
	return out
}
