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

package param

// Unit is the physical unit code used in data telegrams
type Unit int32

const (
	UnitMm  Unit = 0x00
	UnitUm  Unit = 0x01
	UnitNm  Unit = 0x02
	UnitPm  Unit = 0x03
	UnitV   Unit = 0x04
	UnitMv  Unit = 0x05
	UnitUv  Unit = 0x06
	UnitNv  Unit = 0x07
	UnitMhz Unit = 0x08
	UnitKhz Unit = 0x09
	UnitHz  Unit = 0x0A
	UnitIhz Unit = 0x0B // mHz
	UnitS   Unit = 0x0C
	UnitMs  Unit = 0x0D
	UnitUs  Unit = 0x0E
	UnitNs  Unit = 0x0F
	UnitA   Unit = 0x10
	UnitMa  Unit = 0x11
	UnitUa  Unit = 0x12
	UnitNa  Unit = 0x13
	UnitDeg Unit = 0x14
	UnitCos Unit = 0x18
	UnitDB  Unit = 0x1C
	UnitW   Unit = 0x20
	UnitMw  Unit = 0x21
	UnitUw  Unit = 0x22
	UnitNw  Unit = 0x23
)

var unitNames = map[Unit]string{
	UnitMm: "mm", UnitUm: "um", UnitNm: "nm", UnitPm: "pm",
	UnitV: "V", UnitMv: "mV", UnitUv: "uV", UnitNv: "nV",
	UnitMhz: "MHz", UnitKhz: "kHz", UnitHz: "Hz", UnitIhz: "mHz",
	UnitS: "s", UnitMs: "ms", UnitUs: "us", UnitNs: "ns",
	UnitA: "A", UnitMa: "mA", UnitUa: "uA", UnitNa: "nA",
	UnitDeg: "deg", UnitCos: "[cos]", UnitDB: "dB",
	UnitW: "W", UnitMw: "mW", UnitUw: "uW", UnitNw: "nW",
}

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return "?"
}

// Meta describes how to interpret the samples of a block: geometry, units
// and scan order at the time of delivery.
type Meta struct {
	// Order is the controller's scan order code
	Order   int32 `json:"order"`
	PointsX int32 `json:"pointsX"`
	PointsY int32 `json:"pointsY"`
	// physical extent and origin of the scan range in UnitXY
	RangeX  float64 `json:"rangeX"`
	RangeY  float64 `json:"rangeY"`
	OriginX float64 `json:"originX"`
	OriginY float64 `json:"originY"`
	UnitXY  Unit    `json:"unitXY"`
	UnitVal Unit    `json:"unitVal"`
	// ValueScale and ValueOffset map raw samples to UnitVal
	ValueScale  float64 `json:"valueScale"`
	ValueOffset float64 `json:"valueOffset"`
}

// ValueToPhys converts a raw sample to UnitVal
func (m *Meta) ValueToPhys(raw int32) float64 {
	return float64(raw)*m.ValueScale + m.ValueOffset
}
