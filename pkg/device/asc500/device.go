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

// Package asc500 holds the configuration helpers of the ASC500 controller.
// Every helper is a short sequence of parameter channel calls with a unit
// conversion. Nothing is cached, each read is a round trip.
//
// Helpers block on synchronous replies and must not be called from data or
// event callbacks.
package asc500

import (
	"context"
	"time"

	"jinr.ru/greenlab/go-spm/pkg/ack"
	"jinr.ru/greenlab/go-spm/pkg/log"
	"jinr.ru/greenlab/go-spm/pkg/param"
)

// EchoPolicy tells how the echo of a synchronous set is treated
type EchoPolicy int

const (
	// Strict reports an echo different from the request as param.Error
	Strict EchoPolicy = iota
	// Authoritative accepts the echo as the value actually applied
	Authoritative
)

func (p EchoPolicy) String() string {
	if p == Strict {
		return "strict"
	}
	return "authoritative"
}

type Option func(*Device)

// WithWaiter sets the ack waiter used for confirmed state changes
func WithWaiter(w *ack.Waiter) Option {
	return func(d *Device) {
		d.waiter = w
	}
}

// WithAckSchedule overrides the poll interval and attempts of confirmed sets
func WithAckSchedule(interval time.Duration, maxAttempts int) Option {
	return func(d *Device) {
		d.pollInterval = interval
		d.maxAttempts = maxAttempts
	}
}

// Device programs an ASC500 through a parameter channel
type Device struct {
	ch           param.Channel
	waiter       *ack.Waiter
	pollInterval time.Duration
	maxAttempts  int
}

func NewDevice(ch param.Channel, opts ...Option) *Device {
	d := &Device{
		ch:           ch,
		pollInterval: ack.DefaultPollInterval,
		maxAttempts:  ack.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.waiter == nil {
		d.waiter = ack.NewWaiter(ch)
	}
	return d
}

// Link returns the parameter channel of the device
func (d *Device) Link() param.Channel {
	return d.ch
}

// Apply sets a parameter synchronously and returns its echo. Under the
// Strict policy an echo different from value is reported as param.Error,
// the echo is returned anyway.
func (d *Device) Apply(addr param.Address, index, value int32, policy EchoPolicy) (int32, error) {
	echo, err := d.ch.SetParameterSync(addr, index, value)
	if err != nil {
		return echo, err
	}
	if policy == Strict && echo != value {
		log.Debug("Set %s[%d] = %d rejected: echo %d", addr, index, value, echo)
		return echo, param.Error
	}
	return echo, nil
}

// Get reads a parameter synchronously
func (d *Device) Get(addr param.Address, index int32) (int32, error) {
	return d.ch.GetParameterSync(addr, index)
}

// Confirm sets a parameter asynchronously and polls readback (addr if zero)
// until it shows value, using the device's ack schedule
func (d *Device) Confirm(ctx context.Context, addr, readback param.Address, index, value int32) (ack.Result, error) {
	return d.waiter.Confirm(ctx, ack.Request{
		Addr:         addr,
		Readback:     readback,
		Index:        index,
		Value:        value,
		PollInterval: d.pollInterval,
		MaxAttempts:  d.maxAttempts,
	})
}

func boolValue(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
