// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package forwarder implements the client's store-and-forward loop: a
// producer task polling sensor providers on a fixed cadence, and a consumer
// task that coalesces, stashes and transmits batches to the server with
// at-least-once delivery.
package forwarder

import "github.com/ClusterCockpit/rtherm/pkg/model"

// Queue is a FIFO of measurement batches connecting the producer and
// consumer tasks, backed by a buffered channel holding up to 1024 batches:
// Send blocks while the buffer is full, it is not unbounded. Drain blocks
// for at least one item unless the queue is closed.
type Queue struct {
	ch     chan model.Measurements
	closed chan struct{}
}

// NewQueue returns an open, empty Queue.
func NewQueue() *Queue {
	return &Queue{
		ch:     make(chan model.Measurements, 1024),
		closed: make(chan struct{}),
	}
}

// Send enqueues batch. It panics if the queue has been closed: Close marks
// the producer side as finished, so a later Send is a programming error,
// and losing measurements silently would violate the at-least-once
// contract.
func (q *Queue) Send(batch model.Measurements) {
	select {
	case <-q.closed:
		panic("forwarder: send on closed queue")
	default:
	}
	q.ch <- batch
}

// Close marks the queue as closed; a pending or future Drain returns
// immediately with ok=false.
func (q *Queue) Close() {
	close(q.closed)
}

// Drain blocks until at least one batch is available, then greedily takes
// everything currently queued without blocking further. ok is false only
// when the queue was closed with nothing left to deliver, signaling that
// the producer side is gone.
func (q *Queue) Drain() (batches []model.Measurements, ok bool) {
	select {
	case b := <-q.ch:
		batches = append(batches, b)
	case <-q.closed:
		select {
		case b := <-q.ch:
			batches = append(batches, b)
		default:
			return nil, false
		}
	}

	for {
		select {
		case b := <-q.ch:
			batches = append(batches, b)
		default:
			return batches, true
		}
	}
}
