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

package sim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jinr.ru/greenlab/go-spm/pkg/param"
)

func TestRules(t *testing.T) {
	cases := []struct {
		name      string
		rule      Rule
		current   int32
		requested int32
		want      int32
	}{
		{"quantize up", Quantize(10), 0, 15, 20},
		{"quantize down", Quantize(10), 0, 14, 10},
		{"quantize negative", Quantize(10), 0, -16, -20},
		{"clamp low", Clamp(0, 5), 3, -1, 0},
		{"clamp high", Clamp(0, 5), 3, 9, 5},
		{"allow listed", Allow(1, 2), 0, 2, 2},
		{"allow other", Allow(1, 2), 1, 7, 1},
		{"read only", ReadOnly(), 4, 7, 4},
	}
	for _, c := range cases {
		if got := c.rule(c.current, c.requested); got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestSyncSetGet(t *testing.T) {
	c := New(WithRule(0x0018, Quantize(4)), WithValue(0x0100, 0, 2))
	defer c.Close()

	echo, err := c.SetParameterSync(0x0018, 0, 7)
	if err != nil || echo != 8 {
		t.Fatalf("expected echo 8, got %d %v", echo, err)
	}
	v, err := c.GetParameterSync(0x0018, 0)
	if err != nil || v != 8 {
		t.Errorf("expected stored 8, got %d %v", v, err)
	}
	if v, _ := c.GetParameterSync(0x0100, 0); v != 2 {
		t.Errorf("preset value lost: %d", v)
	}
	calls := c.Calls()
	if calls.SetSync != 1 || calls.GetSync != 2 {
		t.Errorf("unexpected calls %+v", calls)
	}
}

func TestFail(t *testing.T) {
	c := New()
	defer c.Close()

	c.Fail(0x0030, param.ServerLost)
	if _, err := c.SetParameterSync(0x0030, 0, 1); !errors.Is(err, param.ServerLost) {
		t.Errorf("expected ServerLost, got %v", err)
	}
	if err := c.SetParameterAsync(0x0030, 0, 1); !errors.Is(err, param.ServerLost) {
		t.Errorf("expected ServerLost, got %v", err)
	}
	c.Fail(0x0030, param.Ok)
	if _, err := c.GetParameterSync(0x0030, 0); err != nil {
		t.Errorf("failure not cleared: %v", err)
	}
}

func TestAsyncSetAndEvents(t *testing.T) {
	c := New()
	defer c.Close()

	type event struct {
		addr         param.Address
		index, value int32
	}
	var mu sync.Mutex
	var events []event
	if err := c.SetEventCallback(param.AllAddresses, func(addr param.Address, index, value int32) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, event{addr, index, value})
	}); err != nil {
		t.Fatalf("register failed: %s", err)
	}

	if err := c.SetParameterAsync(0x0090, 0, 1); err != nil {
		t.Fatalf("async set failed: %s", err)
	}
	c.Drain()
	if err := c.GetParameterAsync(0x0090, 0); err != nil {
		t.Fatalf("async get failed: %s", err)
	}
	c.Drain()

	if v := c.Value(0x0090, 0); v != 1 {
		t.Errorf("async set not applied: %d", v)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 || events[0] != (event{0x0090, 0, 1}) || events[1] != (event{0x0090, 0, 1}) {
		t.Errorf("unexpected events %+v", events)
	}
}

func TestLinkedStatus(t *testing.T) {
	c := New(WithLink(0x0141, 0x0140, 30*time.Millisecond))
	defer c.Close()

	if err := c.SetParameterAsync(0x0141, 0, 1); err != nil {
		t.Fatalf("async set failed: %s", err)
	}
	if v, _ := c.GetParameterSync(0x0140, 0); v != 0 {
		t.Errorf("status must follow with a delay, got %d", v)
	}
	deadline := time.Now().Add(2 * time.Second)
	for c.Value(0x0140, 0) != 1 {
		if time.Now().After(deadline) {
			t.Fatal("status never followed the request")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDeliverFromCallback(t *testing.T) {
	c := New()
	defer c.Close()

	got := make(chan int32, 4)
	// the callback unregisters itself, as the frame assembler does
	if err := c.SetDataCallback(3, func(block *param.SampleBlock) {
		got <- block.Index
		c.SetDataCallback(3, nil)
	}); err != nil {
		t.Fatalf("register failed: %s", err)
	}
	c.Deliver(&param.SampleBlock{Channel: 3, Index: 0, Data: []int32{1}})
	c.Deliver(&param.SampleBlock{Channel: 3, Index: 1, Data: []int32{2}})
	c.Drain()

	if len(got) != 1 || <-got != 0 {
		t.Error("expected exactly the first block to be delivered")
	}
}

func TestStream(t *testing.T) {
	c := New()
	defer c.Close()

	var mu sync.Mutex
	var blocks []*param.SampleBlock
	c.SetDataCallback(0, func(block *param.SampleBlock) {
		mu.Lock()
		defer mu.Unlock()
		blocks = append(blocks, block)
	})

	err := c.Stream(context.Background(), Stream{
		Channel:     0,
		FrameLength: 10,
		BlockSize:   4,
		Frames:      2,
		Meta:        &param.Meta{PointsX: 10},
	})
	if err != nil {
		t.Fatalf("stream failed: %s", err)
	}
	c.Drain()

	mu.Lock()
	defer mu.Unlock()
	if len(blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(blocks))
	}
	wantIndex := []int32{0, 4, 8, 0, 4, 8}
	for i, b := range blocks {
		if b.Index != wantIndex[i] {
			t.Errorf("block %d index %d, want %d", i, b.Index, wantIndex[i])
		}
	}
	if len(blocks[2].Data) != 2 || blocks[3].Data[0] != Ramp(1, 0) {
		t.Errorf("unexpected block data %v %v", blocks[2].Data, blocks[3].Data)
	}
	if blocks[0].Meta == nil || blocks[0].Meta.PointsX != 10 {
		t.Error("meta not attached to the blocks")
	}
}

func TestStreamCancelled(t *testing.T) {
	c := New()
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.Stream(ctx, Stream{FrameLength: 100, BlockSize: 10, BlocksPerSecond: 20})
	if err == nil {
		t.Error("expected the stream to stop with the context")
	}
	if err := c.Stream(ctx, Stream{FrameLength: 0, BlockSize: 10}); !errors.Is(err, param.OutOfRange) {
		t.Errorf("expected OutOfRange, got %v", err)
	}
}
