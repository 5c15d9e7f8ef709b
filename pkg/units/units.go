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

// Package units converts between the controller's fixed point parameter
// values and physical units.
package units

import (
	"math"
	"time"

	"jinr.ru/greenlab/go-spm/pkg/param"
)

const (
	// SampleTimeBase is one tick of sample time parameters
	SampleTimeBase = 2500 * time.Nanosecond
	// LengthUnit is one tick of length parameters in metres (1 pm)
	LengthUnit = 1e-12
	// RotationUnit is one tick of the scan rotation in degrees
	RotationUnit = 360. / 0x10000
	// IntegralGainScale maps the feedback integral part in Hz to mHz ticks
	IntegralGainScale = 1000.
	// ProportionalGainScale maps the feedback proportional part to 1e-6 ticks
	ProportionalGainScale = 1000000.
	// PositionNorm normalizes raw scanner positions (17 bit)
	PositionNorm = 131072.
	// VoltLimitNorm normalizes the actuator voltage limit (15 bit)
	VoltLimitNorm = 32767.
)

// round rejects values that do not fit a parameter instead of wrapping
func round(v float64) (int32, error) {
	r := math.Round(v)
	if math.IsNaN(r) || r < math.MinInt32 || r > math.MaxInt32 {
		return 0, param.OutOfRange
	}
	return int32(r), nil
}

// SampleTimeToTicks converts a sample time to 2.5 us ticks
func SampleTimeToTicks(d time.Duration) (int32, error) {
	return round(float64(d) / float64(SampleTimeBase))
}

// TicksToSampleTime converts 2.5 us ticks to a sample time
func TicksToSampleTime(ticks int32) time.Duration {
	return time.Duration(ticks) * SampleTimeBase
}

// MetresToPM converts metres to picometre ticks. Lengths beyond about
// 2.1 mm do not fit and give param.OutOfRange.
func MetresToPM(m float64) (int32, error) {
	return round(m / LengthUnit)
}

// PMToMetres converts picometre ticks to metres
func PMToMetres(pm int32) float64 {
	return float64(pm) * LengthUnit
}

// DegreesToTicks converts a rotation angle to 360/65536 degree ticks
func DegreesToTicks(deg float64) (int32, error) {
	return round(deg / RotationUnit)
}

// TicksToDegrees converts rotation ticks to degrees
func TicksToDegrees(ticks int32) float64 {
	return float64(ticks) * RotationUnit
}

// IntegralGainToTicks converts the integral part in Hz to mHz ticks
func IntegralGainToTicks(hz float64) (int32, error) {
	return round(hz * IntegralGainScale)
}

// TicksToIntegralGain converts mHz ticks to Hz
func TicksToIntegralGain(ticks int32) float64 {
	return float64(ticks) / IntegralGainScale
}

// ProportionalGainToTicks converts the proportional part to 1e-6 ticks
func ProportionalGainToTicks(p float64) (int32, error) {
	return round(p * ProportionalGainScale)
}

// TicksToProportionalGain converts 1e-6 ticks to the proportional part
func TicksToProportionalGain(ticks int32) float64 {
	return float64(ticks) / ProportionalGainScale
}

// ScanDeflection converts a raw scanner position to picometres relative to
// the scan offset. gauge is the maximum actuator deflection in pm, voltLimit
// the maximum scanner output voltage. ok is false if voltLimit is zero.
func ScanDeflection(raw, gauge, voltLimit int32) (pm int32, ok bool) {
	if voltLimit == 0 {
		return 0, false
	}
	d := (float64(raw) / PositionNorm) * (float64(gauge) / (1000. * float64(voltLimit) / VoltLimitNorm))
	return int32(d), true
}
