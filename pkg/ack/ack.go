/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package ack makes asynchronous parameter changes look like bounded
// operations: one asynchronous set followed by synchronous polls until the
// controller reports the requested value.
package ack

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"

	"jinr.ru/greenlab/go-spm/pkg/log"
	"jinr.ru/greenlab/go-spm/pkg/param"
)

const (
	DefaultPollInterval = 50 * time.Millisecond
	DefaultMaxAttempts  = 20
)

// Request describes one confirmed set
type Request struct {
	Addr  param.Address
	Index int32
	Value int32
	// Readback is polled instead of Addr when it is not zero
	Readback     param.Address
	PollInterval time.Duration
	MaxAttempts  int
}

// Result of a confirmed set. Matched is false when attempts ran out, which
// is not an error by itself.
type Result struct {
	Value    int32
	Attempts int
	Matched  bool
}

// Observer is notified about every finished confirmation
type Observer interface {
	Confirmed(addr param.Address, res Result, err error)
}

type Option func(*Waiter)

// WithObserver attaches an observer to the waiter
func WithObserver(obs Observer) Option {
	return func(w *Waiter) {
		w.obs = obs
	}
}

// Waiter issues confirmed sets over a parameter channel
type Waiter struct {
	ch  param.Channel
	obs Observer
}

func NewWaiter(ch param.Channel, opts ...Option) *Waiter {
	w := &Waiter{ch: ch}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ConfirmSet sets value at (addr, index) and polls the same parameter until
// it reads back value or maxAttempts polls are done. It returns the last
// observed value and the status of the last poll.
func (w *Waiter) ConfirmSet(ctx context.Context, addr param.Address, index, value int32,
	pollInterval time.Duration, maxAttempts int) (int32, error) {
	res, err := w.Confirm(ctx, Request{
		Addr:         addr,
		Index:        index,
		Value:        value,
		PollInterval: pollInterval,
		MaxAttempts:  maxAttempts,
	})
	return res.Value, err
}

// Confirm runs the request. A cancelled or expired context stops polling
// early and its error is returned together with the partial result.
func (w *Waiter) Confirm(ctx context.Context, req Request) (Result, error) {
	res, err := w.confirm(ctx, req)
	if w.obs != nil {
		w.obs.Confirmed(req.Addr, res, err)
	}
	return res, err
}

func (w *Waiter) confirm(ctx context.Context, req Request) (Result, error) {
	res := Result{}
	if req.MaxAttempts < 1 || req.PollInterval < 0 {
		return res, param.OutOfRange
	}
	readback := req.Addr
	if req.Readback != 0 {
		readback = req.Readback
	}

	if err := w.ch.SetParameterAsync(req.Addr, req.Index, req.Value); err != nil {
		log.Debug("Confirm %s[%d]: async set failed: %s", req.Addr, req.Index, err)
		return res, err
	}

	schedule := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(req.PollInterval), uint64(req.MaxAttempts)),
		ctx,
	)
	for {
		next := schedule.NextBackOff()
		if next == backoff.Stop {
			if res.Attempts >= req.MaxAttempts {
				log.Debug("Confirm %s[%d]: gave up after %d polls, last value %d",
					readback, req.Index, res.Attempts, res.Value)
				return res, nil
			}
			// the context is done or its deadline comes before the next poll
			if err := ctx.Err(); err != nil {
				return res, err
			}
			return res, context.DeadlineExceeded
		}

		timer := time.NewTimer(next)
		select {
		case <-ctx.Done():
			timer.Stop()
			return res, ctx.Err()
		case <-timer.C:
		}

		value, err := w.ch.GetParameterSync(readback, req.Index)
		res.Attempts++
		if err != nil {
			log.Debug("Confirm %s[%d]: poll %d failed: %s", readback, req.Index, res.Attempts, err)
			return res, err
		}
		res.Value = value
		if value == req.Value {
			res.Matched = true
			return res, nil
		}
	}
}
