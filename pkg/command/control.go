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

package command

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"jinr.ru/greenlab/go-spm/pkg/config"
	"jinr.ru/greenlab/go-spm/pkg/device/asc500"
	"jinr.ru/greenlab/go-spm/pkg/log"
	"jinr.ru/greenlab/go-spm/pkg/param"
	"jinr.ru/greenlab/go-spm/pkg/sim"
	"jinr.ru/greenlab/go-spm/pkg/srv/control"
)

// SimStreams returns one stream per data channel as configured
func SimStreams(cfg *config.Config) []sim.Stream {
	simCfg := cfg.Sim
	if simCfg == nil {
		simCfg = config.NewDefaultConfig().Sim
	}
	var streams []sim.Stream
	for n := 0; n < cfg.Channels; n++ {
		streams = append(streams, sim.Stream{
			Channel:         int32(n),
			FrameLength:     simCfg.FrameLength,
			BlockSize:       simCfg.BlockSize,
			BlocksPerSecond: simCfg.BlocksPerSecond,
			Meta: &param.Meta{
				PointsX:    simCfg.FrameLength,
				PointsY:    1,
				UnitVal:    param.UnitV,
				ValueScale: 1. / 32768,
			},
		})
	}
	return streams
}

// StartControlServer serves the API over a simulated controller until
// interrupted
func StartControlServer(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	link := sim.New(sim.WithLink(asc500.OutActivate, asc500.OutStatus, cfg.OutputDelay()))
	defer link.Close()

	s, err := control.NewControlServer(ctx, cfg, link)
	if err != nil {
		return err
	}

	for _, stream := range SimStreams(cfg) {
		go func(stream sim.Stream) {
			if err := link.Stream(ctx, stream); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Stream of channel %d stopped: %s", stream.Channel, err)
			}
		}(stream)
	}

	err = s.Run()
	if errors.Is(err, context.Canceled) {
		log.Info("Control server stopped")
		return nil
	}
	return err
}
