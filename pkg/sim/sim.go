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

// Package sim is an in-process controller implementing param.Channel.
//
// All data and event callbacks run on one delivery goroutine, like the
// receive thread of a real link. Locks are never held while a callback
// runs, so callbacks may register and unregister callbacks.
package sim

import (
	"sync"
	"time"

	"jinr.ru/greenlab/go-spm/pkg/log"
	"jinr.ru/greenlab/go-spm/pkg/param"
)

const (
	DeliveryQueueSize = 1024
)

// Rule maps a requested value to the value the controller applies
type Rule func(current, requested int32) int32

// Quantize rounds requests to the nearest multiple of step
func Quantize(step int32) Rule {
	return func(_, requested int32) int32 {
		if step <= 0 {
			return requested
		}
		half := step / 2
		if requested < 0 {
			return -((-requested + half) / step * step)
		}
		return (requested + half) / step * step
	}
}

// Clamp limits requests to [min, max]
func Clamp(min, max int32) Rule {
	return func(_, requested int32) int32 {
		if requested < min {
			return min
		}
		if requested > max {
			return max
		}
		return requested
	}
}

// Allow accepts only the listed values and keeps the current one otherwise
func Allow(values ...int32) Rule {
	return func(current, requested int32) int32 {
		for _, v := range values {
			if v == requested {
				return requested
			}
		}
		return current
	}
}

// ReadOnly ignores all requests
func ReadOnly() Rule {
	return func(current, _ int32) int32 {
		return current
	}
}

// Calls counts the parameter requests served
type Calls struct {
	SetSync  int
	GetSync  int
	SetAsync int
	GetAsync int
}

type key struct {
	addr  param.Address
	index int32
}

type link struct {
	status param.Address
	delay  time.Duration
}

// Controller is the simulated controller
type Controller struct {
	mu     sync.Mutex
	values map[key]int32
	rules  map[param.Address]Rule
	links  map[param.Address]link
	fails  map[param.Address]param.Rc
	data   map[int32]param.DataCallback
	events map[param.Address]param.EventCallback
	calls  Calls

	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ param.Channel = &Controller{}

type Option func(*Controller)

// WithRule applies rule to every set of addr
func WithRule(addr param.Address, rule Rule) Option {
	return func(c *Controller) {
		c.rules[addr] = rule
	}
}

// WithValue presets a parameter
func WithValue(addr param.Address, index, value int32) Option {
	return func(c *Controller) {
		c.values[key{addr, index}] = value
	}
}

// WithLink makes asynchronous sets of addr show up at status after delay
func WithLink(addr, status param.Address, delay time.Duration) Option {
	return func(c *Controller) {
		c.links[addr] = link{status: status, delay: delay}
	}
}

// New starts a simulated controller
func New(opts ...Option) *Controller {
	c := &Controller{
		values: map[key]int32{},
		rules:  map[param.Address]Rule{},
		links:  map[param.Address]link{},
		fails:  map[param.Address]param.Rc{},
		data:   map[int32]param.DataCallback{},
		events: map[param.Address]param.EventCallback{},
		queue:  make(chan func(), DeliveryQueueSize),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.wg.Add(1)
	go c.run()
	return c
}

func (c *Controller) run() {
	defer c.wg.Done()
	for {
		select {
		case fn := <-c.queue:
			fn()
		case <-c.done:
			return
		}
	}
}

// post queues fn on the delivery goroutine, it is dropped after Close
func (c *Controller) post(fn func()) {
	select {
	case c.queue <- fn:
	case <-c.done:
	}
}

// Close stops the delivery goroutine. Pending deliveries are dropped.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
}

// Drain waits until everything queued so far has been delivered
func (c *Controller) Drain() {
	flushed := make(chan struct{})
	c.post(func() { close(flushed) })
	select {
	case <-flushed:
	case <-c.done:
	}
}

// SetRule replaces the rule of addr, nil removes it
func (c *Controller) SetRule(addr param.Address, rule Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rule == nil {
		delete(c.rules, addr)
		return
	}
	c.rules[addr] = rule
}

// LinkTo makes asynchronous sets of addr show up at status after delay
func (c *Controller) LinkTo(addr, status param.Address, delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links[addr] = link{status: status, delay: delay}
}

// Fail makes every request to addr fail with rc, param.Ok clears it
func (c *Controller) Fail(addr param.Address, rc param.Rc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rc == param.Ok {
		delete(c.fails, addr)
		return
	}
	c.fails[addr] = rc
}

// Value returns a parameter without counting a request
func (c *Controller) Value(addr param.Address, index int32) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key{addr, index}]
}

// Store sets a parameter as the controller itself would, bypassing rules,
// and reports the change to event callbacks
func (c *Controller) Store(addr param.Address, index, value int32) {
	c.mu.Lock()
	c.values[key{addr, index}] = value
	c.mu.Unlock()
	c.notify(addr, index, value)
}

// Calls returns the request counters
func (c *Controller) Calls() Calls {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// failure must be called with the lock held
func (c *Controller) failure(addr param.Address) error {
	if rc, ok := c.fails[addr]; ok {
		return rc
	}
	return nil
}

// apply must be called with the lock held
func (c *Controller) apply(addr param.Address, index, value int32) int32 {
	k := key{addr, index}
	if rule, ok := c.rules[addr]; ok {
		value = rule(c.values[k], value)
	}
	c.values[k] = value
	return value
}

func (c *Controller) notify(addr param.Address, index, value int32) {
	c.post(func() {
		c.mu.Lock()
		cb := c.events[addr]
		all := c.events[param.AllAddresses]
		c.mu.Unlock()
		if cb != nil {
			cb(addr, index, value)
		}
		if all != nil {
			all(addr, index, value)
		}
	})
}

func (c *Controller) SetParameterSync(addr param.Address, index, value int32) (int32, error) {
	c.mu.Lock()
	if err := c.failure(addr); err != nil {
		c.mu.Unlock()
		return 0, err
	}
	c.calls.SetSync++
	echo := c.apply(addr, index, value)
	c.mu.Unlock()
	c.notify(addr, index, echo)
	return echo, nil
}

func (c *Controller) GetParameterSync(addr param.Address, index int32) (int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure(addr); err != nil {
		return 0, err
	}
	c.calls.GetSync++
	return c.values[key{addr, index}], nil
}

func (c *Controller) SetParameterAsync(addr param.Address, index, value int32) error {
	c.mu.Lock()
	if err := c.failure(addr); err != nil {
		c.mu.Unlock()
		return err
	}
	c.calls.SetAsync++
	l, linked := c.links[addr]
	if linked {
		value = c.apply(addr, index, value)
	}
	c.mu.Unlock()

	if !linked {
		c.post(func() {
			c.mu.Lock()
			echo := c.apply(addr, index, value)
			c.mu.Unlock()
			c.notify(addr, index, echo)
		})
		return nil
	}

	log.Debug("Async set %s[%d] = %d, status %s follows in %s", addr, index, value, l.status, l.delay)
	c.notify(addr, index, value)
	time.AfterFunc(l.delay, func() {
		c.Store(l.status, index, value)
	})
	return nil
}

// GetParameterAsync answers with an event for addr
func (c *Controller) GetParameterAsync(addr param.Address, index int32) error {
	c.mu.Lock()
	if err := c.failure(addr); err != nil {
		c.mu.Unlock()
		return err
	}
	c.calls.GetAsync++
	value := c.values[key{addr, index}]
	c.mu.Unlock()
	c.notify(addr, index, value)
	return nil
}

func (c *Controller) SetDataCallback(channel int32, cb param.DataCallback) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cb == nil {
		delete(c.data, channel)
		return nil
	}
	c.data[channel] = cb
	return nil
}

func (c *Controller) SetEventCallback(addr param.Address, cb param.EventCallback) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cb == nil {
		delete(c.events, addr)
		return nil
	}
	c.events[addr] = cb
	return nil
}

// Deliver queues a sample block for the data callback of its channel.
// The block must not be modified afterwards.
func (c *Controller) Deliver(block *param.SampleBlock) {
	c.post(func() {
		c.mu.Lock()
		cb := c.data[block.Channel]
		c.mu.Unlock()
		if cb != nil {
			cb(block)
		}
	})
}
