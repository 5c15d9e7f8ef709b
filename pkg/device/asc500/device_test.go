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

package asc500

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"jinr.ru/greenlab/go-spm/pkg/param"
	"jinr.ru/greenlab/go-spm/pkg/sim"
	"jinr.ru/greenlab/go-spm/pkg/units"
)

func newDevice(t *testing.T, opts ...sim.Option) (*Device, *sim.Controller) {
	t.Helper()
	c := sim.New(opts...)
	t.Cleanup(c.Close)
	return NewDevice(c, WithAckSchedule(time.Millisecond, 20)), c
}

func TestApplyPolicies(t *testing.T) {
	d, _ := newDevice(t, sim.WithRule(0x0030, sim.Allow(0, 1, 2)))

	echo, err := d.Apply(0x0030, 0, 5, Strict)
	if !errors.Is(err, param.Error) {
		t.Errorf("strict mismatch: expected param.Error, got %v", err)
	}
	if echo != 0 {
		t.Errorf("strict mismatch: expected echo 0, got %d", echo)
	}
	echo, err = d.Apply(0x0030, 0, 5, Authoritative)
	if err != nil || echo != 0 {
		t.Errorf("authoritative: expected echo 0 without error, got %d %v", echo, err)
	}
}

func TestConfigureChannel(t *testing.T) {
	d, c := newDevice(t)

	err := d.ConfigureChannel(3, ChannelConfig{
		Trigger:    TriggerTimer,
		Source:     SourceZOut,
		Average:    true,
		SampleTime: 80 * time.Microsecond,
	})
	if err != nil {
		t.Fatalf("configure failed: %s", err)
	}
	if c.Value(ChanConnect, 3) != int32(TriggerTimer) || c.Value(ChanADC, 3) != int32(SourceZOut) {
		t.Error("trigger or source not set")
	}
	if c.Value(ChanAvgMax, 3) != 1 || c.Value(ChanPoints, 3) != 32 {
		t.Errorf("unexpected avg %d points %d", c.Value(ChanAvgMax, 3), c.Value(ChanPoints, 3))
	}

	cfg, err := d.Channel(3)
	if err != nil {
		t.Fatalf("read back failed: %s", err)
	}
	if cfg.Trigger != TriggerTimer || cfg.Source != SourceZOut || !cfg.Average || cfg.SampleTime != 80*time.Microsecond {
		t.Errorf("unexpected channel config %+v", cfg)
	}
}

func TestConfigureChannelPointsOnlyForTimer(t *testing.T) {
	d, c := newDevice(t)

	if err := d.ConfigureChannel(0, ChannelConfig{Trigger: TriggerScanner, SampleTime: time.Millisecond}); err != nil {
		t.Fatalf("configure failed: %s", err)
	}
	if c.Calls().SetSync != 3 {
		t.Errorf("expected 3 sets without the timer trigger, got %d", c.Calls().SetSync)
	}
}

func TestConfigureChannelStrict(t *testing.T) {
	d, c := newDevice(t, sim.WithRule(ChanADC, sim.Allow(int32(SourceADCMin))))

	err := d.ConfigureChannel(1, ChannelConfig{Trigger: TriggerTimer, Source: SourceAFMPhase})
	if !errors.Is(err, param.Error) {
		t.Errorf("expected param.Error for a rejected source, got %v", err)
	}
	// the chain stops at the rejected source
	if c.Calls().SetSync != 2 {
		t.Errorf("expected 2 sets, got %d", c.Calls().SetSync)
	}
}

func TestConfigureChannelRange(t *testing.T) {
	d, c := newDevice(t)
	for _, n := range []int32{-1, DataChannels} {
		if err := d.ConfigureChannel(n, ChannelConfig{}); !errors.Is(err, param.OutOfRange) {
			t.Errorf("channel %d: expected OutOfRange, got %v", n, err)
		}
		if _, err := d.Channel(n); !errors.Is(err, param.OutOfRange) {
			t.Errorf("channel %d: expected OutOfRange, got %v", n, err)
		}
	}
	if c.Calls().SetSync != 0 {
		t.Error("nothing must be sent for an invalid channel")
	}
}

func TestScanRotationQuantized(t *testing.T) {
	// the controller only takes multiples of 16 ticks
	d, _ := newDevice(t, sim.WithRule(ScanRotation, sim.Quantize(16)))

	got, err := d.SetScanRotation(10)
	if err != nil {
		t.Fatalf("authoritative set must succeed, got %s", err)
	}
	ticks, err := units.DegreesToTicks(10)
	if err != nil {
		t.Fatal(err)
	}
	want := units.TicksToDegrees(16 * int32(math.Round(float64(ticks)/16)))
	if got != want {
		t.Errorf("expected quantized angle %f, got %f", want, got)
	}
	if rot, _ := d.ScanRotation(); rot != got {
		t.Errorf("read back %f, set returned %f", rot, got)
	}
}

func TestScanOffsetSiblings(t *testing.T) {
	d, c := newDevice(t)

	c.Fail(ScanOffsetX, param.Timeout)
	_, y, err := d.SetScanOffset(1e-6, 2e-6)
	if !errors.Is(err, param.Timeout) {
		t.Errorf("expected Timeout, got %v", err)
	}
	// Y is set even though X failed
	if c.Value(ScanOffsetY, 0) != 2000000 || math.Abs(y-2e-6) > 1e-15 {
		t.Errorf("sibling not set: %d %g", c.Value(ScanOffsetY, 0), y)
	}

	c.Fail(ScanOffsetX, param.Ok)
	c.Fail(ScanOffsetY, param.ServerLost)
	if _, _, err := d.ScanOffset(); !errors.Is(err, param.ServerLost) {
		t.Errorf("expected ServerLost, got %v", err)
	}
}

func TestConversionOutOfRange(t *testing.T) {
	d, c := newDevice(t)

	cases := []struct {
		name string
		set  func() error
	}{
		{"offset x", func() error {
			_, _, err := d.SetScanOffset(0.003, 0)
			return err
		}},
		{"offset y", func() error {
			_, _, err := d.SetScanOffset(0, -0.01)
			return err
		}},
		{"pixel size", func() error {
			_, err := d.SetScanPixels(Pixels{Columns: 10, Lines: 10, Size: 0.01})
			return err
		}},
		{"rotation", func() error {
			_, err := d.SetScanRotation(1e9)
			return err
		}},
		{"sample time", func() error {
			_, err := d.SetSampleTime(2 * time.Hour)
			return err
		}},
		{"channel sample time", func() error {
			return d.ConfigureChannel(0, ChannelConfig{Trigger: TriggerTimer, SampleTime: 2 * time.Hour})
		}},
		{"feedback gain", func() error {
			return d.SetFeedbackPI(0.25, 3e6)
		}},
	}
	for _, tc := range cases {
		if err := tc.set(); !errors.Is(err, param.OutOfRange) {
			t.Errorf("%s: expected OutOfRange, got %v", tc.name, err)
		}
	}
	calls := c.Calls()
	if calls.SetSync != 0 || calls.SetAsync != 0 {
		t.Errorf("nothing must be sent for a value that does not fit, got %+v", calls)
	}
	if v := c.Value(ScanOffsetX, 0); v != 0 {
		t.Errorf("offset x changed to %d", v)
	}
}

func TestScanPixelsFirstFailure(t *testing.T) {
	d, c := newDevice(t, sim.WithRule(ScanColumns, sim.Clamp(1, 512)))

	c.Fail(ScanLines, param.Timeout)
	c.Fail(ScanPixel, param.NotConnected)
	p, err := d.SetScanPixels(Pixels{Columns: 1000, Lines: 100, Size: 10e-9})
	if !errors.Is(err, param.Timeout) {
		t.Errorf("expected the earliest failure Timeout, got %v", err)
	}
	if p.Columns != 512 {
		t.Errorf("expected clamped columns 512, got %d", p.Columns)
	}

	c.Fail(ScanLines, param.Ok)
	c.Fail(ScanPixel, param.Ok)
	p, err = d.SetScanPixels(Pixels{Columns: 256, Lines: 128, Size: 10e-9})
	if err != nil {
		t.Fatalf("set failed: %s", err)
	}
	read, err := d.ScanPixels()
	if err != nil || read != p {
		t.Errorf("read back %+v %v, set returned %+v", read, err, p)
	}
}

func TestSampleTime(t *testing.T) {
	d, _ := newDevice(t)
	got, err := d.SetSampleTime(81 * time.Microsecond)
	if err != nil {
		t.Fatalf("set failed: %s", err)
	}
	if got != 80*time.Microsecond {
		t.Errorf("expected 80us after quantization, got %s", got)
	}
}

func TestScannerState(t *testing.T) {
	d, c := newDevice(t, sim.WithLink(ScanRunning, ScanRunning, 0))

	state, err := d.SetScannerState(ScanOn)
	if err != nil || state != ScanOn {
		t.Fatalf("unexpected %s %v", state, err)
	}
	state, err = d.ConfirmScannerState(context.Background(), ScanPause)
	if err != nil || state != ScanPause {
		t.Errorf("expected confirmed pause, got %s %v", state, err)
	}
	if c.Calls().SetAsync != 1 {
		t.Errorf("expected one async set, got %d", c.Calls().SetAsync)
	}
}

func TestOutputActivation(t *testing.T) {
	d, c := newDevice(t, sim.WithLink(OutActivate, OutStatus, 5*time.Millisecond))

	on, err := d.SetOutputActivation(context.Background(), true)
	if err != nil || !on {
		t.Fatalf("expected outputs on, got %t %v", on, err)
	}
	calls := c.Calls()
	if calls.SetAsync != 1 || calls.GetSync < 1 || calls.GetSync > 20 {
		t.Errorf("unexpected calls %+v", calls)
	}
	if active, _ := d.OutputActivation(); !active {
		t.Error("read back must report active outputs")
	}
}

func TestOutputActivationNotAcknowledged(t *testing.T) {
	// status follows far too late
	d, c := newDevice(t, sim.WithLink(OutActivate, OutStatus, time.Hour))

	on, err := d.SetOutputActivation(context.Background(), true)
	if err != nil {
		t.Fatalf("exhaustion is not an error, got %s", err)
	}
	if on {
		t.Error("outputs must be reported inactive")
	}
	if calls := c.Calls(); calls.GetSync != 20 {
		t.Errorf("expected 20 polls, got %d", calls.GetSync)
	}
}

func TestXYPos(t *testing.T) {
	d, _ := newDevice(t,
		sim.WithValue(ActVoltLim, 0, 32767),
		sim.WithValue(ActGaugeX, 0, 10000000),
		sim.WithValue(ActGaugeY, 0, 20000000),
		sim.WithValue(ScanOffsetX, 0, 500),
		sim.WithValue(ScanOffsetY, 0, -500),
		sim.WithValue(ScanCurrX, 0, 65536),
		sim.WithValue(ScanCurrY, 0, 131072),
	)
	x, y, err := d.XYPos()
	if err != nil {
		t.Fatalf("XYPos failed: %s", err)
	}
	if x != 5500 || y != 19500 {
		t.Errorf("expected 5500 19500, got %d %d", x, y)
	}
}

func TestXYPosStopsAtFirstFailure(t *testing.T) {
	d, c := newDevice(t, sim.WithValue(ActVoltLim, 0, 1))
	c.Fail(ActGaugeY, param.Timeout)
	if _, _, err := d.XYPos(); !errors.Is(err, param.Timeout) {
		t.Errorf("expected Timeout, got %v", err)
	}
	if c.Calls().GetSync != 2 {
		t.Errorf("expected 2 reads before the failure, got %d", c.Calls().GetSync)
	}

	c.Fail(ActGaugeY, param.Ok)
	c.Store(ActVoltLim, 0, 0)
	if _, _, err := d.XYPos(); !errors.Is(err, param.Error) {
		t.Errorf("zero voltage limit: expected param.Error, got %v", err)
	}
}

func TestZPos(t *testing.T) {
	d, _ := newDevice(t, sim.WithValue(RegGetZM, 0, 123456))
	if z, err := d.ZPos(); err != nil || z != 123456 {
		t.Errorf("unexpected %d %v", z, err)
	}
}

func TestCoarse(t *testing.T) {
	d, c := newDevice(t)

	if err := d.CoarseCont(2, Up, true); err != nil {
		t.Fatalf("coarse cont failed: %s", err)
	}
	if c.Value(CrsAxisCUp, 2) != 1 {
		t.Error("continuous up not set for axis 2")
	}
	if err := d.CoarseCont(3, Up, true); !errors.Is(err, param.OutOfRange) {
		t.Errorf("axis 3: expected OutOfRange, got %v", err)
	}
	if err := d.CoarseSingle(0, Direction(2)); !errors.Is(err, param.OutOfRange) {
		t.Errorf("direction 2: expected OutOfRange, got %v", err)
	}

	// the step counter echoes whatever it likes
	c.SetRule(CrsAxisDown, sim.ReadOnly())
	if err := d.CoarseSingle(1, Down); err != nil {
		t.Errorf("single step must ignore the echo, got %v", err)
	}
	c.SetRule(CrsAxisCDn, sim.ReadOnly())
	if err := d.CoarseCont(1, Down, true); !errors.Is(err, param.Error) {
		t.Errorf("continuous motion must check the echo, got %v", err)
	}
}

func TestAutoApproach(t *testing.T) {
	d, c := newDevice(t)
	if err := d.SetAutoApproach(true); err != nil {
		t.Fatalf("set failed: %s", err)
	}
	if on, err := d.AutoApproach(); err != nil || !on {
		t.Errorf("unexpected %t %v", on, err)
	}
	c.SetRule(AapCtrl, sim.ReadOnly())
	if err := d.SetAutoApproach(false); !errors.Is(err, param.Error) {
		t.Errorf("expected param.Error, got %v", err)
	}
}

func TestFeedback(t *testing.T) {
	d, c := newDevice(t)

	if err := d.SetFeedback(FeedbackOn); err != nil {
		t.Fatalf("set failed: %s", err)
	}
	if state, _ := d.Feedback(); state != FeedbackOn {
		t.Errorf("unexpected state %d", state)
	}

	if err := d.SetFeedbackPI(0.25, 12.5); err != nil {
		t.Fatalf("set PI failed: %s", err)
	}
	if c.Value(RegKiDisp, 0) != 12500 || c.Value(RegKpDisp, 0) != 250000 {
		t.Errorf("unexpected ticks %d %d", c.Value(RegKiDisp, 0), c.Value(RegKpDisp, 0))
	}
	p, i, err := d.FeedbackPI()
	if err != nil || p != 0.25 || i != 12.5 {
		t.Errorf("unexpected PI %f %f %v", p, i, err)
	}
}

func TestFeedbackPIStopsAfterIntegral(t *testing.T) {
	d, c := newDevice(t, sim.WithRule(RegKiDisp, sim.Clamp(0, 1000)))

	err := d.SetFeedbackPI(0.5, 12.5)
	if !errors.Is(err, param.Error) {
		t.Errorf("expected param.Error for a clamped integral part, got %v", err)
	}
	if c.Calls().SetSync != 1 {
		t.Errorf("the proportional part must not be sent, got %d sets", c.Calls().SetSync)
	}
}

func TestParseAddress(t *testing.T) {
	cases := []struct {
		in   string
		want param.Address
		ok   bool
	}{
		{"scan_running", ScanRunning, true},
		{"OUTPUT_STATUS", OutStatus, true},
		{"0x1023", ScanOffsetX, true},
		{"48", ChanConnect, true},
		{"bogus", 0, false},
		{"-1", 0, false},
	}
	for _, c := range cases {
		got, err := ParseAddress(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("%s: got %s %v, want %s", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected an error", c.in)
		}
	}
	if len(ParamNames()) != len(ParamMap) {
		t.Error("ParamNames must list every parameter")
	}
}
