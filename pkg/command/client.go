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
	"strings"
	"time"

	"jinr.ru/greenlab/go-spm/pkg/device/asc500"
	"jinr.ru/greenlab/go-spm/pkg/frame"
	"jinr.ru/greenlab/go-spm/pkg/srv/control"
)

// ParamGet reads a parameter given by name or number
func (c *ApiClient) ParamGet(addr string, index int32) (*control.ParamValue, error) {
	v := &control.ParamValue{}
	if err := c.getJSON(c.url("/param/%s/%d", addr, index), v); err != nil {
		return nil, err
	}
	return v, nil
}

// ParamSet writes a parameter and returns the echo of the controller
func (c *ApiClient) ParamSet(addr string, index, value int32) (*control.ParamValue, error) {
	v := &control.ParamValue{}
	if err := c.postJSON(c.url("/param/%s/%d", addr, index), &control.ParamValue{Value: value}, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ParamConfirm sets a parameter and waits until readback (the parameter
// itself if empty) shows the value
func (c *ApiClient) ParamConfirm(addr string, index, value int32, readback string) (*control.ConfirmResult, error) {
	res := &control.ConfirmResult{}
	body := &control.ConfirmRequest{Value: value, Readback: readback}
	if err := c.postJSON(c.url("/param/%s/%d/confirm", addr, index), body, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ParamList returns the values recorded by the server
func (c *ApiClient) ParamList() ([]*control.ParamValue, error) {
	var values []*control.ParamValue
	if err := c.getJSON(c.url("/param"), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (c *ApiClient) Channel(n int32) (*asc500.ChannelConfig, error) {
	cfg := &asc500.ChannelConfig{}
	if err := c.getJSON(c.url("/channel/%d", n), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigureChannel returns the routing read back after configuration
func (c *ApiClient) ConfigureChannel(n int32, cfg *asc500.ChannelConfig) (*asc500.ChannelConfig, error) {
	applied := &asc500.ChannelConfig{}
	if err := c.postJSON(c.url("/channel/%d", n), cfg, applied); err != nil {
		return nil, err
	}
	return applied, nil
}

func (c *ApiClient) ScanState() (string, error) {
	status := &control.ScanStatus{}
	if err := c.getJSON(c.url("/scan"), status); err != nil {
		return "", err
	}
	return status.State, nil
}

// ScanAction is one of start, stop and pause
func (c *ApiClient) ScanAction(action string) (string, error) {
	status := &control.ScanStatus{}
	if err := c.getJSON(c.url("/scan/%s", strings.ToLower(action)), status); err != nil {
		return "", err
	}
	return status.State, nil
}

func (c *ApiClient) ScanOffset() (*control.Offset, error) {
	offset := &control.Offset{}
	if err := c.getJSON(c.url("/scan/offset"), offset); err != nil {
		return nil, err
	}
	return offset, nil
}

func (c *ApiClient) SetScanOffset(x, y float64) (*control.Offset, error) {
	offset := &control.Offset{}
	if err := c.postJSON(c.url("/scan/offset"), &control.Offset{X: x, Y: y}, offset); err != nil {
		return nil, err
	}
	return offset, nil
}

func (c *ApiClient) ScanPixels() (*asc500.Pixels, error) {
	pixels := &asc500.Pixels{}
	if err := c.getJSON(c.url("/scan/pixels"), pixels); err != nil {
		return nil, err
	}
	return pixels, nil
}

func (c *ApiClient) SetScanPixels(p asc500.Pixels) (*asc500.Pixels, error) {
	pixels := &asc500.Pixels{}
	if err := c.postJSON(c.url("/scan/pixels"), &p, pixels); err != nil {
		return nil, err
	}
	return pixels, nil
}

func (c *ApiClient) ScanRotation() (float64, error) {
	rot := &control.Rotation{}
	if err := c.getJSON(c.url("/scan/rotation"), rot); err != nil {
		return 0, err
	}
	return rot.Degrees, nil
}

func (c *ApiClient) SetScanRotation(deg float64) (float64, error) {
	rot := &control.Rotation{}
	if err := c.postJSON(c.url("/scan/rotation"), &control.Rotation{Degrees: deg}, rot); err != nil {
		return 0, err
	}
	return rot.Degrees, nil
}

func (c *ApiClient) SampleTime() (time.Duration, error) {
	st := &control.SampleTime{}
	if err := c.getJSON(c.url("/scan/sampletime"), st); err != nil {
		return 0, err
	}
	return st.SampleTime, nil
}

func (c *ApiClient) SetSampleTime(d time.Duration) (time.Duration, error) {
	st := &control.SampleTime{}
	if err := c.postJSON(c.url("/scan/sampletime"), &control.SampleTime{SampleTime: d}, st); err != nil {
		return 0, err
	}
	return st.SampleTime, nil
}

func (c *ApiClient) Output() (bool, error) {
	out := &control.Output{}
	if err := c.getJSON(c.url("/output"), out); err != nil {
		return false, err
	}
	return out.On, nil
}

// SetOutput requests the outputs on or off, the result tells whether the
// status followed
func (c *ApiClient) SetOutput(on bool) (*control.Output, error) {
	out := &control.Output{}
	if err := c.postJSON(c.url("/output"), &control.Output{On: on}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ApiClient) Position() (*control.Position, error) {
	pos := &control.Position{}
	if err := c.getJSON(c.url("/position"), pos); err != nil {
		return nil, err
	}
	return pos, nil
}

// Capture waits for the next frame of a channel, a zero timeout uses the
// server default
func (c *ApiClient) Capture(channel int32, capacity int, timeout time.Duration) (*frame.Frame, error) {
	f := &frame.Frame{}
	body := &control.CaptureRequest{Capacity: capacity, TimeoutMs: int(timeout / time.Millisecond)}
	if err := c.postJSON(c.url("/frame/%d", channel), body, f); err != nil {
		return nil, err
	}
	return f, nil
}
