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
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"jinr.ru/greenlab/go-spm/pkg/config"
	"jinr.ru/greenlab/go-spm/pkg/sim"
)

// slowApi keeps recording for a while after the context ends, as a
// handler still in flight during shutdown would
type slowApi struct {
	http.Handler
	ctx     context.Context
	ctrl    *ControlServer
	drained chan error
}

func (s *slowApi) Run() error {
	<-s.ctx.Done()
	time.Sleep(20 * time.Millisecond)
	s.drained <- s.ctrl.state.Put(0x0090, 0, 7)
	return nil
}

func TestRunWaitsForApiShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.NewDefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "params.db")
	c := sim.New()
	defer c.Close()

	ctrl, err := NewControlServer(ctx, cfg, c)
	if err != nil {
		t.Fatalf("control server: %s", err)
	}
	s := ctrl.(*ControlServer)
	api := &slowApi{ctx: ctx, ctrl: s, drained: make(chan error, 1)}
	s.api = api

	done := make(chan error, 1)
	go func() {
		done <- s.Run()
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return")
	}
	if err := <-api.drained; err != nil {
		t.Errorf("cache closed before the API server drained: %s", err)
	}
	// closed once Run is done
	if err := s.state.Put(0x0090, 0, 8); err == nil {
		t.Error("expected the cache to be closed after run")
	}
}
