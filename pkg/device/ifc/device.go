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

package ifc

import (
	"context"
	"time"

	"jinr.ru/greenlab/go-spm/pkg/device/asc500"
)

// Device is the helper surface of a controller
type Device interface {
	ConfigureChannel(n int32, cfg asc500.ChannelConfig) error
	Channel(n int32) (*asc500.ChannelConfig, error)
	EnableData(on bool) error

	SetScanOffset(x, y float64) (float64, float64, error)
	ScanOffset() (float64, float64, error)
	SetScanPixels(p asc500.Pixels) (asc500.Pixels, error)
	ScanPixels() (asc500.Pixels, error)
	SetScanRotation(deg float64) (float64, error)
	ScanRotation() (float64, error)
	SetSampleTime(t time.Duration) (time.Duration, error)
	SampleTime() (time.Duration, error)
	SetScannerState(state asc500.ScanState) (asc500.ScanState, error)
	ScannerState() (asc500.ScanState, error)

	SetOutputActivation(ctx context.Context, on bool) (bool, error)
	OutputActivation() (bool, error)

	ZPos() (int32, error)
	XYPos() (int32, int32, error)

	SetAutoApproach(on bool) error
	CoarseCont(axis int32, dir asc500.Direction, on bool) error
	CoarseSingle(axis int32, dir asc500.Direction) error

	SetFeedback(state asc500.FeedbackState) error
	Feedback() (asc500.FeedbackState, error)
	SetFeedbackPI(p, i float64) error
	FeedbackPI() (float64, float64, error)
}

var _ Device = &asc500.Device{}
