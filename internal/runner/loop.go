// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/matt-FFFFFF/runparts/internal/ctxlog"
	"github.com/matt-FFFFFF/runparts/internal/mux"
)

// chunkReader is the consuming side of a mux.Mux.
type chunkReader interface {
	Read(ctx context.Context) (mux.Chunk, error)
}

// loop is the read loop of one execution. It is owned by a single goroutine.
type loop struct {
	path         string
	report       *Report
	stdout       io.Writer
	stderr       io.Writer
	policy       DrainPolicy
	drainTimeout time.Duration
	pipes        int // pipe producers, each ends with an EOF chunk
	eofs         int
}

// run forwards output until the done chunk arrives and returns its decoded payload.
// The loop is not cancelled by ctx while the script runs; only the drain honours it.
func (l *loop) run(ctx context.Context, r chunkReader) (Done, error) {
	readCtx := context.WithoutCancel(ctx)

	for {
		c, err := r.Read(readCtx)
		if err != nil {
			return nil, errors.Join(ErrTransport, err)
		}

		if c.Tag != TagDone {
			l.forward(ctx, c)
			continue
		}

		d, err := DecodeDone(c.Data)
		if err != nil {
			return nil, errors.Join(ErrTransport, err)
		}

		if text, ok := d.(DoneError); ok {
			l.write(ctx, l.stderr, []byte(text))
		}

		if l.policy == DrainPolicyDrain {
			l.drain(ctx, r)
		}

		return d, nil
	}
}

func (l *loop) drain(ctx context.Context, r chunkReader) {
	if l.eofs >= l.pipes {
		return
	}

	timeout := l.drainTimeout
	if timeout == 0 {
		timeout = DefaultDrainTimeout
	}

	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	for l.eofs < l.pipes {
		c, err := r.Read(ctx)
		if err != nil {
			if !errors.Is(err, mux.ErrClosed) {
				ctxlog.Warn(ctx, "output still open after script exited, discarding the rest",
					"path", l.path, "error", err)
			}

			return
		}

		if c.Tag == TagDone {
			continue
		}

		l.forward(ctx, c)
	}
}

func (l *loop) forward(ctx context.Context, c mux.Chunk) {
	if c.EOF {
		l.eofs++
		return
	}

	w := l.stderr
	take := l.report.Stderr

	if c.Tag == TagStdout {
		w = l.stdout
		take = l.report.Stdout
	}

	if prefix, ok := take(); ok {
		l.write(ctx, w, []byte(prefix))
	}

	l.write(ctx, w, c.Data)
}

func (l *loop) write(ctx context.Context, w io.Writer, p []byte) {
	if _, err := w.Write(p); err != nil {
		ctxlog.Error(ctx, "failed to forward script output", "path", l.path, "error", err)
	}
}
