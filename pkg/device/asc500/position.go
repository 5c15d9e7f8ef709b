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

// ZPos reads the Z position in pm
func (d *Device) ZPos() (int32, error) {
	return d.Get(RegGetZM, 0)
}

// XYPos reads the current scanner position in pm. The raw position is
// scaled with the actuator gauge and voltage limit and added to the scan
// offset.
func (d *Device) XYPos() (int32, int32, error) {
	addrs := []param.Address{ActVoltLim, ActGaugeX, ActGaugeY, ScanOffsetX, ScanOffsetY, ScanCurrX, ScanCurrY}
	values := make([]int32, len(addrs))
	for i, addr := range addrs {
		v, err := d.Get(addr, 0)
		if err != nil {
			return 0, 0, err
		}
		values[i] = v
	}
	volt, gaugeX, gaugeY, offX, offY, rawX, rawY :=
		values[0], values[1], values[2], values[3], values[4], values[5], values[6]

	dx, ok := units.ScanDeflection(rawX, gaugeX, volt)
	if !ok {
		return 0, 0, param.Error
	}
	dy, _ := units.ScanDeflection(rawY, gaugeY, volt)
	return offX + dx, offY + dy, nil
}
