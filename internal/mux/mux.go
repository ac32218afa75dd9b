// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package mux

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
)

const (
	chunkBufferSize = 64        // chunks queued before producers block
	pipeReadSize    = 32 * 1024 // maximum payload of a chunk read from a pipe
)

var (
	// ErrClosed is returned by Read once every producer has finished and no chunks are left,
	// and by writes to a Mux that has been closed.
	ErrClosed = errors.New("multiplexer closed")
	// ErrSenderClosed is returned when writing to a Sender after Close.
	ErrSenderClosed = errors.New("sender closed")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
)

// Tag identifies the logical stream a chunk belongs to.
type Tag string

// Untagged is the tag of the primary stream.
const Untagged Tag = ""

// String returns the tag, or "untagged" for the primary stream.
func (t Tag) String() string {
	if t == Untagged {
		return "untagged"
	}

	return string(t)
}

// Chunk is one unit of data delivered by the Mux.
type Chunk struct {
	Tag  Tag
	Data []byte
	// EOF marks the end of a pipe producer. Data is empty.
	EOF bool
}

// Mux is a tagged multiplexer. The zero value is not usable, use New.
type Mux struct {
	chunks chan Chunk
	done   chan struct{} // closed by Close
	idle   chan struct{} // closed when the last producer finishes

	pumps     sync.WaitGroup
	closeOnce sync.Once

	mu      sync.Mutex
	open    int
	sealed  bool
	readers []*os.File
	errs    []error
}

// New creates an empty Mux.
func New() *Mux {
	return &Mux{
		chunks: make(chan Chunk, chunkBufferSize),
		done:   make(chan struct{}),
		idle:   make(chan struct{}),
	}
}

// Sender returns a producer bound to tag. If every earlier producer has already
// finished, the Mux is sealed and writes to the returned Sender fail.
func (m *Mux) Sender(tag Tag) *Sender {
	s := &Sender{m: m, tag: tag}
	if err := m.acquire(); err != nil {
		s.closed = true
	}

	return s
}

// Pipe creates an operating system pipe whose reads are delivered as chunks
// tagged with tag. It returns the write end, which the caller owns and must close
// once it has been handed on (e.g. after starting a child process).
func (m *Mux) Pipe(tag Tag) (*os.File, error) {
	if err := m.acquire(); err != nil {
		return nil, err
	}

	r, w, err := os.Pipe()
	if err != nil {
		m.release()
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	m.mu.Lock()
	m.readers = append(m.readers, r)
	m.mu.Unlock()

	m.pumps.Add(1)

	go m.pump(tag, r)

	return w, nil
}

// Read blocks until the next chunk is available and returns it.
// It returns ErrClosed, joined with any pipe read error, when all producers have
// finished and every chunk has been read, and ctx.Err() if ctx ends first.
func (m *Mux) Read(ctx context.Context) (Chunk, error) {
	select {
	case <-m.done:
		return Chunk{}, ErrClosed
	default:
	}

	select {
	case c := <-m.chunks:
		return c, nil
	default:
	}

	select {
	case c := <-m.chunks:
		return c, nil
	case <-m.idle:
		// Producers hand over their last chunk before they finish, so anything
		// still queued is already in the channel.
		select {
		case c := <-m.chunks:
			return c, nil
		default:
			return Chunk{}, m.closedErr()
		}
	case <-m.done:
		return Chunk{}, ErrClosed
	case <-ctx.Done():
		return Chunk{}, ctx.Err()
	}
}

// Close stops delivery, closes the read ends of all pipes and waits for their
// pumps to exit. Chunks not yet read are discarded. Close is idempotent.
func (m *Mux) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)

		m.mu.Lock()
		readers := m.readers
		m.mu.Unlock()

		for _, r := range readers {
			_ = r.Close()
		}

		m.pumps.Wait()
	})

	return nil
}

func (m *Mux) pump(tag Tag, r *os.File) {
	defer m.pumps.Done()
	defer m.release()
	defer r.Close() //nolint:errcheck

	buf := make([]byte, pipeReadSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			if !m.deliver(Chunk{Tag: tag, Data: bytes.Clone(buf[:n])}) {
				return
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				m.recordErr(err)
			}

			m.deliver(Chunk{Tag: tag, EOF: true})

			return
		}
	}
}

func (m *Mux) deliver(c Chunk) bool {
	select {
	case <-m.done:
		return false
	default:
	}

	select {
	case m.chunks <- c:
		return true
	case <-m.done:
		return false
	}
}

func (m *Mux) acquire() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sealed {
		return ErrClosed
	}

	m.open++

	return nil
}

func (m *Mux) release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.open--
	if m.open == 0 && !m.sealed {
		m.sealed = true
		close(m.idle)
	}
}

func (m *Mux) recordErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errs = append(m.errs, err)
}

func (m *Mux) closedErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return errors.Join(append([]error{ErrClosed}, m.errs...)...)
}

// Sender is a producer that turns each Write into one chunk.
// It is safe for concurrent use; concurrent writes are delivered one after another.
type Sender struct {
	m      *Mux
	tag    Tag
	mu     sync.Mutex
	closed bool
}

var _ io.WriteCloser = (*Sender)(nil)

// Tag returns the tag the Sender writes with.
func (s *Sender) Tag() Tag {
	return s.tag
}

// Write delivers a copy of p as one chunk. It blocks while the Mux queue is full.
func (s *Sender) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrSenderClosed
	}

	if len(p) == 0 {
		return 0, nil
	}

	if !s.m.deliver(Chunk{Tag: s.tag, Data: bytes.Clone(p)}) {
		return 0, ErrClosed
	}

	return len(p), nil
}

// Close finishes the producer. Further writes fail with ErrSenderClosed.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	s.m.release()

	return nil
}
