// Package spool implements a minimal listener for snapshot entries: it
// accepts one TCP connection per message, reads the whole buffer, decodes the
// condensed entry JSON and hands it to a handler. It exists so developers can
// watch a program's snapshots without any tooling, and so tests have a real
// peer to send to.
package spool

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/keyhole-io/keyhole/pkg/entry"
)

// Handler receives each decoded entry together with its raw (un-transformed)
// buffer. Entries that fail to decode are delivered with a nil Entry so the
// raw bytes are not lost.
type Handler func(e *entry.Entry, raw []byte)

// Server is one spool listener.
type Server struct {
	ln      net.Listener
	handler Handler

	mu     sync.Mutex
	closed bool
}

// Listen starts listening on addr ("host:port"). A nil handler prints a
// one-line summary of each entry to stdout.
func Listen(addr string, handler Handler) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %v", addr)
	}
	if handler == nil {
		handler = func(e *entry.Entry, raw []byte) {
			fmt.Println(Summary(e, raw))
		}
	}
	return &Server{ln: ln, handler: handler}, nil
}

// Addr returns the bound listener address, useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until Close is called. Each connection carries
// exactly one message: read until EOF, decode, hand off.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return errors.Wrap(err, "accepting spool connection")
		}
		go s.receive(conn)
	}
}

// Close stops the accept loop.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.ln.Close()
}

func (s *Server) receive(conn net.Conn) {
	defer conn.Close()
	raw, err := ioutil.ReadAll(conn)
	if err != nil || len(raw) == 0 {
		return
	}
	var e entry.Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// Could be a transformed (compressed/encrypted) payload; keep the
		// bytes and let the handler decide.
		s.handler(nil, raw)
		return
	}
	s.handler(&e, raw)
}

// Summary renders a one-line human-readable form of an entry.
func Summary(e *entry.Entry, raw []byte) string {
	if e == nil {
		return fmt.Sprintf("[spool] %d opaque bytes", len(raw))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%v]", e.App)
	if len(e.Stack) > 0 {
		fmt.Fprintf(&b, " %v:%v %v", e.Stack[0].File, e.Stack[0].Line, e.Stack[0].Function)
	}
	for _, v := range e.Variables {
		if v.Value != nil {
			fmt.Fprintf(&b, " %v=%v", v.Name, v.Value)
		} else {
			fmt.Fprintf(&b, " %v<%v>", v.Name, v.Type)
		}
	}
	return b.String()
}
