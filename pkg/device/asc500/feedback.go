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
	"jinr.ru/greenlab/go-spm/pkg/param"
	"jinr.ru/greenlab/go-spm/pkg/units"
)

// SetFeedback switches the Z feedback loop
func (d *Device) SetFeedback(state FeedbackState) error {
	_, err := d.Apply(RegLoopOn, 0, int32(state), Strict)
	return err
}

// Feedback reads the Z feedback loop state
func (d *Device) Feedback() (FeedbackState, error) {
	v, err := d.Get(RegLoopOn, 0)
	return FeedbackState(v), err
}

// SetFeedbackPI sets the proportional part and the integral part in Hz of
// the Z feedback. Both must be echoed exactly, the integral part goes first.
func (d *Device) SetFeedbackPI(p, i float64) error {
	ki, errI := units.IntegralGainToTicks(i)
	kp, errP := units.ProportionalGainToTicks(p)
	if err := param.First(errI, errP); err != nil {
		return err
	}
	if _, err := d.Apply(RegKiDisp, 0, ki, Strict); err != nil {
		return err
	}
	_, err := d.Apply(RegKpDisp, 0, kp, Strict)
	return err
}

// FeedbackPI reads the proportional and the integral part of the Z feedback
func (d *Device) FeedbackPI() (float64, float64, error) {
	ki, err := d.Get(RegKiDisp, 0)
	if err != nil {
		return 0, 0, err
	}
	kp, err := d.Get(RegKpDisp, 0)
	if err != nil {
		return 0, 0, err
	}
	return units.TicksToProportionalGain(kp), units.TicksToIntegralGain(ki), nil
}
