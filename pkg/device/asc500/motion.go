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
)

// SetAutoApproach switches the auto approach
func (d *Device) SetAutoApproach(on bool) error {
	_, err := d.Apply(AapCtrl, 0, boolValue(on), Strict)
	return err
}

// AutoApproach reads whether the auto approach is on
func (d *Device) AutoApproach() (bool, error) {
	v, err := d.Get(AapCtrl, 0)
	return v != 0, err
}

func checkAxis(axis int32, dir Direction) error {
	if axis < 0 || axis > MaxAxis || (dir != Down && dir != Up) {
		return param.OutOfRange
	}
	return nil
}

// CoarseCont starts or stops continuous coarse motion of an axis
func (d *Device) CoarseCont(axis int32, dir Direction, on bool) error {
	if err := checkAxis(axis, dir); err != nil {
		return err
	}
	addr := CrsAxisCDn
	if dir == Up {
		addr = CrsAxisCUp
	}
	_, err := d.Apply(addr, axis, boolValue(on), Strict)
	return err
}

// CoarseSingle moves an axis by one coarse step
func (d *Device) CoarseSingle(axis int32, dir Direction) error {
	if err := checkAxis(axis, dir); err != nil {
		return err
	}
	addr := CrsAxisDown
	if dir == Up {
		addr = CrsAxisUp
	}
	// the step counter does not echo the request
	_, err := d.Apply(addr, axis, 1, Authoritative)
	return err
}
