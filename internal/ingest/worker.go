package ingest

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/deptstats/internal/csvtext"
	"github.com/gyeh/deptstats/internal/header"
	"github.com/gyeh/deptstats/internal/model"
)

// ErrBusy is returned when an ingestion is submitted while another one is
// still running. Callers should wait for the running one to finish.
var ErrBusy = errors.New("an ingestion is already in progress")

// ExecutionError reports that the worker itself failed, as opposed to the
// input being messy. Messy input never produces an error.
type ExecutionError struct {
	Cause any
	Stack []byte
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("ingestion worker failed: %v", e.Cause)
}

// Unwrap exposes the cause when the worker panicked with an error value.
func (e *ExecutionError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// Request is the single input message to the worker.
type Request struct {
	Text             string
	Synonyms         model.SynonymTable
	Defaults         model.Defaults
	FlushTrailingRow bool
}

// Response is the single output message from the worker. Exactly one of
// Records and Err is meaningful; an empty Records slice is a success.
type Response struct {
	Records  []model.Record
	Coverage []header.Binding
	Unused   []string // header columns no alias refers to
	RowsRead int
	Duration time.Duration
	Err      error
}

// Dispatcher runs the parse pipeline (tokenize, resolve, coerce, assemble) on
// a background goroutine, one request at a time.
type Dispatcher struct {
	log     zerolog.Logger
	timeout time.Duration
	now     func() time.Time
	busy    atomic.Bool

	// run is the pipeline body; tests swap it to simulate faults.
	run func(ctx context.Context, req Request, now func() time.Time) Response
}

// NewDispatcher creates a Dispatcher. A zero timeout disables the deadline.
func NewDispatcher(log zerolog.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		log:     log,
		timeout: timeout,
		now:     time.Now,
		run:     parse,
	}
}

// Busy reports whether a request is in flight.
func (d *Dispatcher) Busy() bool {
	return d.busy.Load()
}

// Submit starts a request and returns the channel that will receive its one
// Response. It returns ErrBusy without starting anything if a request is
// already in flight. The worker gets its own copy of the synonym table.
func (d *Dispatcher) Submit(ctx context.Context, req Request) (<-chan Response, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	req.Synonyms = req.Synonyms.Clone()
	out := make(chan Response, 1)

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if d.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, d.timeout)
	}

	go func() {
		defer close(out)
		defer d.busy.Store(false)
		defer cancel()

		var resp Response
		func() {
			defer func() {
				if r := recover(); r != nil {
					resp = Response{Err: &ExecutionError{Cause: r, Stack: debug.Stack()}}
				}
			}()
			resp = d.run(runCtx, req, d.now)
		}()

		if resp.Err != nil {
			d.log.Warn().Err(resp.Err).Msg("ingestion worker finished with error")
		} else {
			d.log.Debug().
				Int("rows_read", resp.RowsRead).
				Int("records", len(resp.Records)).
				Dur("duration", resp.Duration).
				Msg("ingestion worker finished")
		}
		out <- resp
	}()

	return out, nil
}

// Do submits req and waits for its Response. If ctx ends first, Do returns
// ctx.Err(); the worker observes the same context and stops at its next check.
func (d *Dispatcher) Do(ctx context.Context, req Request) (Response, error) {
	ch, err := d.Submit(ctx, req)
	if err != nil {
		return Response{}, err
	}
	select {
	case resp := <-ch:
		return resp, resp.Err
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

func parse(ctx context.Context, req Request, now func() time.Time) Response {
	start := time.Now()

	tok := csvtext.Tokenizer{FlushTrailingRow: req.FlushTrailingRow}
	rows, err := tok.Tokenize(ctx, req.Text)
	if err != nil {
		return Response{Err: fmt.Errorf("tokenize: %w", err)}
	}

	asm := &Assembler{Synonyms: req.Synonyms, Defaults: req.Defaults, Now: now}
	records, err := asm.Assemble(ctx, rows)
	if err != nil {
		return Response{Err: fmt.Errorf("assemble: %w", err)}
	}

	var (
		coverage []header.Binding
		unused   []string
	)
	if len(rows) > 0 {
		hm := header.Resolve(rows[0], req.Synonyms)
		coverage = hm.Coverage()
		unused = hm.Unused()
	}

	return Response{
		Records:  records,
		Coverage: coverage,
		Unused:   unused,
		RowsRead: len(rows),
		Duration: time.Since(start),
	}
}
