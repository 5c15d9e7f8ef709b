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

package control

import (
	"context"
	"net/http"

	"jinr.ru/greenlab/go-spm/pkg/ack"
	"jinr.ru/greenlab/go-spm/pkg/config"
	"jinr.ru/greenlab/go-spm/pkg/device/asc500"
	deviceifc "jinr.ru/greenlab/go-spm/pkg/device/ifc"
	"jinr.ru/greenlab/go-spm/pkg/frame"
	"jinr.ru/greenlab/go-spm/pkg/log"
	"jinr.ru/greenlab/go-spm/pkg/metrics"
	"jinr.ru/greenlab/go-spm/pkg/param"
	"jinr.ru/greenlab/go-spm/pkg/srv"
	"jinr.ru/greenlab/go-spm/pkg/srv/control/ifc"
	"jinr.ru/greenlab/go-spm/pkg/state"
)

type ControlServer struct {
	srv.Server
	link    param.Channel
	device  *asc500.Device
	frames  *frame.Assembler
	state   *state.ParamState
	metrics *metrics.Metrics
	api     ifc.ApiServer
}

var _ ifc.ControlServer = &ControlServer{}

// NewControlServer wires the helpers, the frame assembler, the parameter
// cache and the metrics to the controller link
func NewControlServer(ctx context.Context, cfg *config.Config, link param.Channel) (ifc.ControlServer, error) {
	log.Debug("Initializing control server: channels: %d db: %s", cfg.Channels, cfg.DBPath)

	paramState, err := state.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	interval, maxAttempts := cfg.AckSchedule()
	waiter := ack.NewWaiter(link, ack.WithObserver(m))
	device := asc500.NewDevice(link, asc500.WithWaiter(waiter), asc500.WithAckSchedule(interval, maxAttempts))

	s := &ControlServer{
		Server: srv.Server{
			Context: ctx,
			Config:  cfg,
		},
		link:    link,
		device:  device,
		frames:  frame.NewAssembler(link, cfg.Channels, frame.WithObserver(m)),
		state:   paramState,
		metrics: m,
	}

	// every change the controller reports ends up in the cache
	if err := link.SetEventCallback(param.AllAddresses, s.record); err != nil {
		paramState.Close()
		return nil, err
	}

	apiServer, err := NewApiServer(ctx, cfg, s)
	if err != nil {
		paramState.Close()
		return nil, err
	}
	s.api = apiServer

	return s, nil
}

// Run serves the API until the context ends. The parameter cache is closed
// only after the API server has drained its handlers.
func (s *ControlServer) Run() error {
	defer s.state.Close()
	defer s.link.SetEventCallback(param.AllAddresses, nil)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.api.Run()
	}()

	select {
	case <-s.Context.Done():
		if err := <-errChan; err != nil {
			log.Warning("API server stopped with error: %s", err)
		}
		return s.Context.Err()
	case err := <-errChan:
		return err
	}
}

func (s *ControlServer) record(addr param.Address, index, value int32) {
	if err := s.state.Put(addr, index, value); err != nil {
		log.Error("Error while recording parameter %s[%d]: %s", addr, index, err)
	}
}

func (s *ControlServer) ParamRead(addr param.Address, index int32) (int32, error) {
	value, err := s.link.GetParameterSync(addr, index)
	if err != nil {
		return 0, err
	}
	s.record(addr, index, value)
	return value, nil
}

func (s *ControlServer) ParamWrite(addr param.Address, index, value int32) (int32, error) {
	echo, err := s.link.SetParameterSync(addr, index, value)
	if err != nil {
		return 0, err
	}
	s.record(addr, index, echo)
	return echo, nil
}

func (s *ControlServer) ParamConfirm(ctx context.Context, addr, readback param.Address, index, value int32) (ack.Result, error) {
	res, err := s.device.Confirm(ctx, addr, readback, index, value)
	if err != nil {
		return res, err
	}
	if readback == 0 {
		readback = addr
	}
	if res.Attempts > 0 {
		s.record(readback, index, res.Value)
	}
	return res, nil
}

func (s *ControlServer) ParamReadAll() ([]*state.Record, error) {
	return s.state.All()
}

func (s *ControlServer) Device() deviceifc.Device {
	return s.device
}

func (s *ControlServer) Capture(ctx context.Context, channel int32, capacity int) (*frame.Frame, error) {
	return s.frames.Capture(ctx, channel, capacity)
}

func (s *ControlServer) Metrics() http.Handler {
	return s.metrics.Handler()
}
