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
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"jinr.ru/greenlab/go-spm/pkg/config"
	"jinr.ru/greenlab/go-spm/pkg/device/asc500"
	"jinr.ru/greenlab/go-spm/pkg/frame"
	"jinr.ru/greenlab/go-spm/pkg/sim"
	"jinr.ru/greenlab/go-spm/pkg/srv/control"
)

func newClient(t *testing.T, link *sim.Controller) *ApiClient {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := config.NewDefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "params.db")
	cfg.Channels = 2
	cfg.Ack.PollIntervalMs = 2

	ctrl, err := control.NewControlServer(ctx, cfg, link)
	if err != nil {
		t.Fatalf("control server: %s", err)
	}
	api, err := control.NewApiServer(ctx, cfg, ctrl)
	if err != nil {
		t.Fatalf("api server: %s", err)
	}
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	c := NewApiClient(cfg)
	c.ApiPrefix = ts.URL + control.ApiPrefix
	return c
}

func TestNewApiClient(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.ApiAddress = "10.0.0.7"
	cfg.ApiPort = 8123
	if c := NewApiClient(cfg); c.ApiPrefix != "http://10.0.0.7:8123/api" {
		t.Errorf("unexpected prefix %s", c.ApiPrefix)
	}
}

func TestClientParams(t *testing.T) {
	link := sim.New(sim.WithRule(asc500.ScanColumns, sim.Clamp(1, 1024)))
	t.Cleanup(link.Close)
	c := newClient(t, link)

	v, err := c.ParamSet("scan_columns", 0, 5000)
	if err != nil || v.Value != 1024 {
		t.Fatalf("set: %+v %v", v, err)
	}
	v, err = c.ParamGet("0x1003", 0)
	if err != nil || v.Value != 1024 {
		t.Errorf("get: %+v %v", v, err)
	}
	res, err := c.ParamConfirm("aap_ctrl", 0, 1, "")
	if err != nil || !res.Matched {
		t.Errorf("confirm: %+v %v", res, err)
	}
	values, err := c.ParamList()
	if err != nil || len(values) < 2 {
		t.Errorf("list: %+v %v", values, err)
	}

	_, err = c.ParamGet("bogus", 0)
	var apiErr ErrApi
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Errorf("expected a 400 ErrApi, got %v", err)
	}
}

func TestClientScan(t *testing.T) {
	link := sim.New()
	t.Cleanup(link.Close)
	c := newClient(t, link)

	if state, err := c.ScanAction("Start"); err != nil || state != "on" {
		t.Errorf("start: %s %v", state, err)
	}
	if state, err := c.ScanState(); err != nil || state != "on" {
		t.Errorf("state: %s %v", state, err)
	}
	if _, err := c.ScanAction("rewind"); err == nil {
		t.Error("unknown action must fail")
	}
	if deg, err := c.SetScanRotation(45); err != nil || deg != 45 {
		t.Errorf("rotation: %f %v", deg, err)
	}
	if d, err := c.SetSampleTime(5 * time.Microsecond); err != nil || d != 5*time.Microsecond {
		t.Errorf("sample time: %s %v", d, err)
	}
	if p, err := c.SetScanPixels(asc500.Pixels{Columns: 10, Lines: 20, Size: 1e-9}); err != nil || p.Lines != 20 {
		t.Errorf("pixels: %+v %v", p, err)
	}
	if _, err := c.SetScanOffset(1e-6, 0); err != nil {
		t.Errorf("offset: %v", err)
	}
	if o, err := c.ScanOffset(); err != nil || o.Y != 0 {
		t.Errorf("offset read: %+v %v", o, err)
	}
}

func TestClientChannelAndCapture(t *testing.T) {
	link := sim.New()
	t.Cleanup(link.Close)
	c := newClient(t, link)

	cfg := &asc500.ChannelConfig{Trigger: asc500.TriggerScanner, Source: asc500.SourceZOut}
	applied, err := c.ConfigureChannel(1, cfg)
	if err != nil || applied.Trigger != asc500.TriggerScanner || applied.Source != asc500.SourceZOut {
		t.Fatalf("configure: %+v %v", applied, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go link.Stream(ctx, sim.Stream{Channel: 1, FrameLength: 8, BlockSize: 8, BlocksPerSecond: 200})

	f, err := c.Capture(1, 8, 2*time.Second)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if f.Reason != frame.ReasonLength || len(f.Samples) != 8 {
		t.Errorf("unexpected frame %+v", f)
	}
}

func TestSimStreams(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Channels = 3
	streams := SimStreams(cfg)
	if len(streams) != 3 || streams[2].Channel != 2 || streams[0].FrameLength != config.DefaultSimFrameLength {
		t.Errorf("unexpected streams %+v", streams)
	}
}
