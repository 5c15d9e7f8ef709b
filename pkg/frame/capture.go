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

package frame

import (
	"context"

	"jinr.ru/greenlab/go-spm/pkg/log"
	"jinr.ru/greenlab/go-spm/pkg/param"
)

// Frame is a completed frame of one channel
type Frame struct {
	Channel int32      `json:"channel"`
	Reason  Reason     `json:"reason"`
	Samples []int32    `json:"samples"`
	Meta    param.Meta `json:"meta"`
}

// Capture binds a fresh buffer of the given capacity to the channel, arms it
// and waits for the frame. When ctx ends first the channel is disarmed and
// the context error is returned. A negative capacity gives param.OutOfRange.
func (a *Assembler) Capture(ctx context.Context, channel int32, capacity int) (*Frame, error) {
	if capacity < 0 {
		return nil, param.OutOfRange
	}
	f := &Frame{Channel: channel}
	samples := make([]int32, capacity)
	if err := a.BindFrameBuffer(channel, samples, &f.Meta, capacity); err != nil {
		return nil, err
	}

	done := make(chan Reason, 1)
	if err := a.ArmFrameCallback(channel, func(_ int32, reason Reason) {
		done <- reason
	}); err != nil {
		return nil, err
	}

	select {
	case reason := <-done:
		fill, err := a.Fill(channel)
		if err != nil {
			return nil, err
		}
		f.Reason = reason
		f.Samples = samples[:fill]
		return f, nil
	case <-ctx.Done():
		if err := a.ArmFrameCallback(channel, nil); err != nil {
			log.Warning("Can not disarm channel %d: %s", channel, err)
		}
		return nil, ctx.Err()
	}
}
