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
	"time"

	"jinr.ru/greenlab/go-spm/pkg/param"
	"jinr.ru/greenlab/go-spm/pkg/units"
)

// Pixels is the scan field geometry
type Pixels struct {
	Columns int32 `json:"columns"`
	Lines   int32 `json:"lines"`
	// Size of a column or line in metres
	Size float64 `json:"size"`
}

// SetScanOffset sets the scan offset in metres and returns the offset the
// controller applied. Both axes are always set, the first failure is
// returned. Nothing is set if either axis does not fit.
func (d *Device) SetScanOffset(x, y float64) (float64, float64, error) {
	px, errX := units.MetresToPM(x)
	py, errY := units.MetresToPM(y)
	if err := param.First(errX, errY); err != nil {
		return 0, 0, err
	}
	ix, errX := d.Apply(ScanOffsetX, 0, px, Authoritative)
	iy, errY := d.Apply(ScanOffsetY, 0, py, Authoritative)
	return units.PMToMetres(ix), units.PMToMetres(iy), param.First(errX, errY)
}

// ScanOffset reads the scan offset in metres
func (d *Device) ScanOffset() (float64, float64, error) {
	ix, errX := d.Get(ScanOffsetX, 0)
	iy, errY := d.Get(ScanOffsetY, 0)
	return units.PMToMetres(ix), units.PMToMetres(iy), param.First(errX, errY)
}

// SetScanPixels sets the scan geometry and returns the applied one
func (d *Device) SetScanPixels(p Pixels) (Pixels, error) {
	pm, err := units.MetresToPM(p.Size)
	if err != nil {
		return Pixels{}, err
	}
	columns, errC := d.Apply(ScanColumns, 0, p.Columns, Authoritative)
	lines, errL := d.Apply(ScanLines, 0, p.Lines, Authoritative)
	size, errS := d.Apply(ScanPixel, 0, pm, Authoritative)
	return Pixels{
		Columns: columns,
		Lines:   lines,
		Size:    units.PMToMetres(size),
	}, param.First(errC, errL, errS)
}

// ScanPixels reads the scan geometry
func (d *Device) ScanPixels() (Pixels, error) {
	columns, errC := d.Get(ScanColumns, 0)
	lines, errL := d.Get(ScanLines, 0)
	size, errS := d.Get(ScanPixel, 0)
	return Pixels{
		Columns: columns,
		Lines:   lines,
		Size:    units.PMToMetres(size),
	}, param.First(errC, errL, errS)
}

// SetScanRotation sets the scan field rotation in degrees and returns the
// quantized angle
func (d *Device) SetScanRotation(deg float64) (float64, error) {
	ticks, err := units.DegreesToTicks(deg)
	if err != nil {
		return 0, err
	}
	rot, err := d.Apply(ScanRotation, 0, ticks, Authoritative)
	return units.TicksToDegrees(rot), err
}

// ScanRotation reads the scan field rotation in degrees
func (d *Device) ScanRotation() (float64, error) {
	rot, err := d.Get(ScanRotation, 0)
	return units.TicksToDegrees(rot), err
}

// SetSampleTime sets the scanner sample time per pixel
func (d *Device) SetSampleTime(t time.Duration) (time.Duration, error) {
	ticks, err := units.SampleTimeToTicks(t)
	if err != nil {
		return 0, err
	}
	echo, err := d.Apply(ScanMsPerPx, 0, ticks, Authoritative)
	return units.TicksToSampleTime(echo), err
}

// SampleTime reads the scanner sample time per pixel
func (d *Device) SampleTime() (time.Duration, error) {
	ticks, err := d.Get(ScanMsPerPx, 0)
	return units.TicksToSampleTime(ticks), err
}

// SetScannerState requests the scanner state and returns the echo
func (d *Device) SetScannerState(state ScanState) (ScanState, error) {
	echo, err := d.Apply(ScanRunning, 0, int32(state), Authoritative)
	return ScanState(echo), err
}

// ScannerState reads the scanner state
func (d *Device) ScannerState() (ScanState, error) {
	state, err := d.Get(ScanRunning, 0)
	return ScanState(state), err
}

// ConfirmScannerState requests the scanner state and polls until the
// scanner reports it. It returns the last state seen.
func (d *Device) ConfirmScannerState(ctx context.Context, state ScanState) (ScanState, error) {
	res, err := d.Confirm(ctx, ScanRunning, 0, 0, int32(state))
	return ScanState(res.Value), err
}
