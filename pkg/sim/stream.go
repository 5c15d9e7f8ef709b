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

	"golang.org/x/time/rate"

	"jinr.ru/greenlab/go-spm/pkg/log"
	"jinr.ru/greenlab/go-spm/pkg/param"
)

// Generator returns the sample at index of frame number frame
type Generator func(frame, index int32) int32

// Ramp counts up within a frame, offset by the frame number
func Ramp(frame, index int32) int32 {
	return frame*0x10000 + index
}

// Stream describes the telegrams of one data channel
type Stream struct {
	Channel     int32
	FrameLength int32
	BlockSize   int32
	// BlocksPerSecond paces delivery, zero means unpaced
	BlocksPerSecond float64
	// Frames stops the stream after that many frames, zero streams until
	// the context ends
	Frames int
	Meta   *param.Meta
	Gen    Generator
}

// Stream delivers frames of s split into blocks until ctx ends or s.Frames
// frames were sent. The last block of a frame may be short.
func (c *Controller) Stream(ctx context.Context, s Stream) error {
	if s.FrameLength <= 0 || s.BlockSize <= 0 {
		return param.OutOfRange
	}
	gen := s.Gen
	if gen == nil {
		gen = Ramp
	}
	limit := rate.Inf
	if s.BlocksPerSecond > 0 {
		limit = rate.Limit(s.BlocksPerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	log.Info("Start stream: channel: %d frame: %d block: %d rate: %.1f/s",
		s.Channel, s.FrameLength, s.BlockSize, s.BlocksPerSecond)
	for frame := 0; s.Frames == 0 || frame < s.Frames; frame++ {
		for index := int32(0); index < s.FrameLength; index += s.BlockSize {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			n := s.BlockSize
			if index+n > s.FrameLength {
				n = s.FrameLength - index
			}
			data := make([]int32, n)
			for i := range data {
				data[i] = gen(int32(frame), index+int32(i))
			}
			block := &param.SampleBlock{
				Channel: s.Channel,
				Index:   index,
				Data:    data,
			}
			if s.Meta != nil {
				meta := *s.Meta
				block.Meta = &meta
			}
			c.Deliver(block)
		}
	}
	return nil
}
