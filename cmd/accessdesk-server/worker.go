// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/accessdesk/accessdesk/lib/automation"
	"github.com/accessdesk/accessdesk/lib/eventbus"
	"github.com/accessdesk/accessdesk/lib/schema/request"
	"github.com/accessdesk/accessdesk/lib/store"
)

// Queue accepts record ids for processing.
type Queue interface {
	Enqueue(ctx context.Context, id int64) error
}

// PoolConfig configures a Pool.
type PoolConfig struct {
	Store      *store.Store
	Bus        eventbus.Bus
	Processors map[request.Type]automation.Processor

	// Workers bounds concurrent automation runs. Defaults to 1.
	Workers int

	// QueueSize bounds ids waiting for a worker. Enqueue blocks while
	// the queue is full.
	QueueSize int

	Logger *slog.Logger
}

// Pool runs the automation for queued records on a fixed number of
// goroutines.
type Pool struct {
	store      *store.Store
	bus        eventbus.Bus
	processors map[request.Type]automation.Processor
	workers    int
	logger     *slog.Logger

	jobs    chan int64
	started chan struct{}
	ctx     context.Context
	wg      sync.WaitGroup

	// active holds ids that are queued or being processed. An id is
	// never queued twice at once.
	mu     sync.Mutex
	active map[int64]struct{}
}

// NewPool creates a stopped pool. Call Start before Enqueue.
func NewPool(config PoolConfig) *Pool {
	return &Pool{
		store:      config.Store,
		bus:        config.Bus,
		processors: config.Processors,
		workers:    max(config.Workers, 1),
		logger:     config.Logger,
		jobs:       make(chan int64, max(config.QueueSize, 0)),
		started:    make(chan struct{}),
		active:     make(map[int64]struct{}),
	}
}

// Start launches the workers. They stop when ctx is cancelled; a run
// interrupted that way leaves its record in processing, and Requeue
// picks it up on the next start.
func (p *Pool) Start(ctx context.Context) {
	p.ctx = ctx
	close(p.started)
	for range p.workers {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-p.jobs:
					p.process(ctx, id)
					p.release(id)
				}
			}
		}()
	}
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Enqueue hands id to the workers, blocking while the queue is full.
// An id that is already queued or running is not queued again. A
// record that cannot be queued stays pending until the next start.
func (p *Pool) Enqueue(ctx context.Context, id int64) error {
	_, err := p.enqueue(ctx, id)
	return err
}

func (p *Pool) enqueue(ctx context.Context, id int64) (bool, error) {
	<-p.started
	if !p.claim(id) {
		return false, nil
	}
	select {
	case p.jobs <- id:
		return true, nil
	case <-ctx.Done():
		p.release(id)
		return false, ctx.Err()
	case <-p.ctx.Done():
		p.release(id)
		return false, p.ctx.Err()
	}
}

func (p *Pool) claim(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.active[id]; ok {
		return false
	}
	p.active[id] = struct{}{}
	return true
}

func (p *Pool) release(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, id)
}

// Requeue queues every pending or processing record left by a
// previous run, in creation order, and returns how many were queued.
// Call it after Start and before the API accepts submissions; ids the
// API already queued are skipped.
func (p *Pool) Requeue(ctx context.Context) int {
	queued := 0
	for _, id := range p.store.Unfinished() {
		added, err := p.enqueue(ctx, id)
		if err != nil {
			break
		}
		if added {
			queued++
		}
	}
	return queued
}

// process runs one record through its processor and records the
// outcome. Each transition is published as request_updated.
func (p *Pool) process(ctx context.Context, id int64) {
	logger := p.logger.With("request_id", id)

	record, err := p.transition(ctx, id, func(record *request.Request) error {
		record.Status = request.StatusProcessing
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Info("request deleted before processing")
		} else {
			logger.Error("marking request processing", "error", err)
		}
		return
	}

	processor, ok := p.processors[record.Kind()]
	if !ok {
		p.finish(ctx, logger, id, request.Result{}, fmt.Errorf("no processor for request type %q", record.Kind()))
		return
	}

	logger.Info("processing request", "type", record.Kind())
	result, err := processor.Process(ctx, record.Data)
	if err != nil && ctx.Err() != nil {
		logger.Info("processing interrupted by shutdown; request will be requeued")
		return
	}
	p.finish(ctx, logger, id, result, err)
}

func (p *Pool) finish(ctx context.Context, logger *slog.Logger, id int64, result request.Result, processErr error) {
	record, err := p.transition(ctx, id, func(record *request.Request) error {
		if processErr != nil {
			record.Status = request.StatusFailed
			record.Error = processErr.Error()
			record.Result = nil
			return nil
		}
		record.Status = result.RecordStatus()
		record.Result = &result
		record.Comments = result.Comments
		record.Error = ""
		if record.Status == request.StatusFailed {
			record.Error = result.Message
			if record.Error == "" {
				record.Error = "Failed"
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Info("request deleted while processing")
		} else {
			logger.Error("recording request outcome", "error", err)
		}
		return
	}
	logger.Info("request finished", "status", record.Status)
}

// transition updates a record and publishes the new state.
func (p *Pool) transition(ctx context.Context, id int64, mutate func(*request.Request) error) (request.Request, error) {
	record, err := p.store.Update(id, mutate)
	if err != nil {
		return request.Request{}, err
	}
	if err := p.bus.Publish(context.WithoutCancel(ctx), request.Event{Type: request.EventUpdated, ID: id, Request: &record}); err != nil {
		p.logger.Warn("publishing request update", "request_id", id, "error", err)
	}
	return record, nil
}
