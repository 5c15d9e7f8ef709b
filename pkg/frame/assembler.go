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

// Package frame reassembles the per channel stream of sample blocks into
// bounded frame buffers owned by the caller.
//
// Every channel is a small state machine. It is unarmed until a destination
// is bound and a callback is armed. An armed channel waits for a block with
// index 0, accumulates the following blocks and completes either when the
// buffer is full or when the next block with index 0 arrives. Completion
// disarms the channel and calls the callback exactly once.
package frame

import (
	"fmt"
	"sync"

	"jinr.ru/greenlab/go-spm/pkg/log"
	"jinr.ru/greenlab/go-spm/pkg/param"
)

// Reason tells why a frame was completed
type Reason int

const (
	// ReasonLength means the buffer was filled up to its capacity
	ReasonLength Reason = iota
	// ReasonIndex means a new frame started before the buffer was full
	ReasonIndex
)

func (r Reason) String() string {
	switch r {
	case ReasonLength:
		return "length"
	case ReasonIndex:
		return "index"
	}
	return "unknown"
}

func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Reason) UnmarshalText(text []byte) error {
	switch string(text) {
	case "length":
		*r = ReasonLength
	case "index":
		*r = ReasonIndex
	default:
		return fmt.Errorf("unknown frame completion reason: %s", text)
	}
	return nil
}

// DropCause tells why a block was discarded
type DropCause int

const (
	// DropUnarmed means no destination or no callback was set
	DropUnarmed DropCause = iota
	// DropMissedStart means the block belongs to a frame whose start was not seen
	DropMissedStart
	// DropBoundary means the block started a new frame and closed the current one
	DropBoundary
)

func (c DropCause) String() string {
	switch c {
	case DropUnarmed:
		return "unarmed"
	case DropMissedStart:
		return "missed_start"
	case DropBoundary:
		return "boundary"
	}
	return "unknown"
}

// Callback is called once per arming when the frame is complete. It runs in
// the delivery context of the parameter channel and must not block on it.
type Callback func(channel int32, reason Reason)

// Observer receives assembler statistics. Methods are called from the
// delivery context and must be cheap.
type Observer interface {
	BlockDropped(channel int32, cause DropCause)
	SamplesStored(channel int32, stored, clipped int)
	FrameCompleted(channel int32, reason Reason)
}

type Option func(*Assembler)

// WithObserver attaches an observer to the assembler
func WithObserver(obs Observer) Option {
	return func(a *Assembler) {
		a.obs = obs
	}
}

// slot is the frame buffer binding of one channel
type slot struct {
	mu       sync.Mutex
	samples  []int32
	meta     *param.Meta
	capacity int
	fill     int
	started  bool
	cb       Callback
}

func (s *slot) reset() {
	s.fill = 0
	s.started = false
}

func (s *slot) armed() bool {
	return s.samples != nil && s.cb != nil
}

// store appends the block at the current fill offset clipped to the room left
func (s *slot) store(block *param.SampleBlock) (stored, clipped int) {
	room := s.capacity - s.fill
	if room <= 0 {
		return 0, len(block.Data)
	}
	n := len(block.Data)
	if n > room {
		n = room
	}
	copy(s.samples[s.fill:s.fill+n], block.Data[:n])
	s.fill += n
	if s.meta != nil && block.Meta != nil {
		*s.meta = *block.Meta
	}
	return n, len(block.Data) - n
}

// Assembler owns the frame buffer bindings of all channels of a link
type Assembler struct {
	ch    param.Channel
	slots []*slot
	obs   Observer
}

// NewAssembler creates an assembler for channels [0, channels) of ch
func NewAssembler(ch param.Channel, channels int, opts ...Option) *Assembler {
	if channels < 0 {
		channels = 0
	}
	a := &Assembler{
		ch:    ch,
		slots: make([]*slot, channels),
	}
	for i := range a.slots {
		a.slots[i] = &slot{}
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Channels returns the number of channels served by the assembler
func (a *Assembler) Channels() int {
	return len(a.slots)
}

func (a *Assembler) lookup(channel int32) (*slot, error) {
	if channel < 0 || int(channel) >= len(a.slots) {
		return nil, param.OutOfRange
	}
	return a.slots[channel], nil
}

// BindFrameBuffer binds the destination of the next frame of the channel.
// samples and meta are owned by the caller and must stay valid while the
// channel is armed. Binding resets the fill length and the started flag.
func (a *Assembler) BindFrameBuffer(channel int32, samples []int32, meta *param.Meta, capacity int) error {
	s, err := a.lookup(channel)
	if err != nil {
		return err
	}
	if samples == nil || capacity < 0 || capacity > len(samples) {
		return param.OutOfRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = samples
	s.meta = meta
	s.capacity = capacity
	s.reset()
	log.Debug("Bound frame buffer: channel: %d capacity: %d", channel, capacity)
	return nil
}

// ArmFrameCallback sets the completion callback of the channel and registers
// the assembler for its data. A nil callback disarms the channel.
func (a *Assembler) ArmFrameCallback(channel int32, cb Callback) error {
	s, err := a.lookup(channel)
	if err != nil {
		return err
	}
	if cb == nil {
		s.mu.Lock()
		s.cb = nil
		s.mu.Unlock()
		return a.ch.SetDataCallback(channel, nil)
	}

	s.mu.Lock()
	s.cb = cb
	s.reset()
	s.mu.Unlock()

	if err := a.ch.SetDataCallback(channel, a.handler(channel)); err != nil {
		s.mu.Lock()
		s.cb = nil
		s.mu.Unlock()
		return err
	}
	log.Debug("Armed frame callback: channel: %d", channel)
	return nil
}

// Fill returns the number of samples stored for the current frame
func (a *Assembler) Fill(channel int32) (int, error) {
	s, err := a.lookup(channel)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fill, nil
}

func (a *Assembler) handler(channel int32) param.DataCallback {
	return func(block *param.SampleBlock) {
		a.deliver(channel, block)
	}
}

func (a *Assembler) dropped(channel int32, cause DropCause, block *param.SampleBlock) {
	log.Debug("Drop block: channel: %d index: %d length: %d cause: %s",
		channel, block.Index, len(block.Data), cause)
	if a.obs != nil {
		a.obs.BlockDropped(channel, cause)
	}
}

func (a *Assembler) deliver(channel int32, block *param.SampleBlock) {
	s := a.slots[channel]
	s.mu.Lock()

	if !s.armed() {
		s.mu.Unlock()
		a.dropped(channel, DropUnarmed, block)
		return
	}

	if block.Index == 0 {
		if s.started {
			// a new frame began, the current one is closed without this block
			cb := a.complete(channel, s)
			s.mu.Unlock()
			a.dropped(channel, DropBoundary, block)
			a.notify(channel, cb, ReasonIndex)
			return
		}
		s.started = true
	} else if !s.started {
		s.mu.Unlock()
		a.dropped(channel, DropMissedStart, block)
		return
	}

	stored, clipped := s.store(block)
	if a.obs != nil {
		a.obs.SamplesStored(channel, stored, clipped)
	}
	if s.fill < s.capacity {
		s.mu.Unlock()
		return
	}
	cb := a.complete(channel, s)
	s.mu.Unlock()
	a.notify(channel, cb, ReasonLength)
}

// complete disarms the channel and returns the callback to call. It must be
// called with the slot locked so that a concurrent arming is not undone.
func (a *Assembler) complete(channel int32, s *slot) Callback {
	cb := s.cb
	s.cb = nil
	if err := a.ch.SetDataCallback(channel, nil); err != nil {
		log.Warning("Can not unregister data callback: channel: %d error: %s", channel, err)
	}
	return cb
}

func (a *Assembler) notify(channel int32, cb Callback, reason Reason) {
	log.Debug("Frame completed: channel: %d reason: %s", channel, reason)
	if a.obs != nil {
		a.obs.FrameCompleted(channel, reason)
	}
	cb(channel, reason)
}
