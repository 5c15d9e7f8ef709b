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
	"sort"
	"strconv"
	"strings"

	"jinr.ru/greenlab/go-spm/pkg/param"
)

// DataChannels is the number of data channels of the controller
const DataChannels = 14

// Parameter addresses used by the helpers
const (
	DataEnable param.Address = 0x0146

	ChanConnect param.Address = 0x0030
	ChanADC     param.Address = 0x0031
	ChanPoints  param.Address = 0x0032
	ChanAvgMax  param.Address = 0x0035

	ScanXEqY     param.Address = 0x1006
	ScanGeoMode  param.Address = 0x1004
	ScanOffsetX  param.Address = 0x1023
	ScanOffsetY  param.Address = 0x1024
	ScanColumns  param.Address = 0x1003
	ScanLines    param.Address = 0x001D
	ScanPixel    param.Address = 0x1025
	ScanRotation param.Address = 0x0018
	ScanMsPerPx  param.Address = 0x1020
	ScanRunning  param.Address = 0x0100
	ScanCurrX    param.Address = 0x002A
	ScanCurrY    param.Address = 0x002B

	ActGaugeX   param.Address = 0x1032
	ActGaugeY   param.Address = 0x1033
	ActVoltLim  param.Address = 0x1034
	OutActivate param.Address = 0x0141
	OutStatus   param.Address = 0x0140

	AapCtrl     param.Address = 0x0090
	CrsAxisUp   param.Address = 0x0285
	CrsAxisDown param.Address = 0x0286
	CrsAxisCUp  param.Address = 0x0287
	CrsAxisCDn  param.Address = 0x0288

	RegLoopOn param.Address = 0x0060
	RegKiDisp param.Address = 0x10A3
	RegKpDisp param.Address = 0x10A4
	RegGetZM  param.Address = 0x1038
)

// ParamMap names the addresses for the API and the command line
var ParamMap = map[string]param.Address{
	"data_en":         DataEnable,
	"chan_connect":    ChanConnect,
	"chan_adc":        ChanADC,
	"chan_points":     ChanPoints,
	"chan_avg_max":    ChanAvgMax,
	"scan_x_eq_y":     ScanXEqY,
	"scan_geomode":    ScanGeoMode,
	"scan_of_in_x":    ScanOffsetX,
	"scan_of_in_y":    ScanOffsetY,
	"scan_columns":    ScanColumns,
	"scan_lines":      ScanLines,
	"scan_pixel":      ScanPixel,
	"scan_rotation":   ScanRotation,
	"scan_msppx":      ScanMsPerPx,
	"scan_running":    ScanRunning,
	"scan_curr_x":     ScanCurrX,
	"scan_curr_y":     ScanCurrY,
	"act_gauge_x":     ActGaugeX,
	"act_gauge_y":     ActGaugeY,
	"act_volt_lim":    ActVoltLim,
	"output_activate": OutActivate,
	"output_status":   OutStatus,
	"aap_ctrl":        AapCtrl,
	"crs_axis_up":     CrsAxisUp,
	"crs_axis_dn":     CrsAxisDown,
	"crs_axis_cup":    CrsAxisCUp,
	"crs_axis_cdn":    CrsAxisCDn,
	"reg_loop_on":     RegLoopOn,
	"reg_ki_disp":     RegKiDisp,
	"reg_kp_disp":     RegKpDisp,
	"reg_get_z_m":     RegGetZM,
}

// ParamNames returns the known parameter names in order
func ParamNames() []string {
	names := make([]string, 0, len(ParamMap))
	for name := range ParamMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseAddress accepts a parameter name or a number (0x prefix for hex)
func ParseAddress(s string) (param.Address, error) {
	if addr, ok := ParamMap[strings.ToLower(s)]; ok {
		return addr, nil
	}
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil || v < 0 {
		return 0, ErrUnknownParam{Name: s}
	}
	return param.Address(v), nil
}

// Trigger is the data trigger of a channel (CHAN_CONNECT)
type Trigger int32

const (
	TriggerDisabled Trigger = 0x00
	TriggerScanner  Trigger = 0x01
	// TriggerTimer samples permanently with the channel's sample time
	TriggerTimer   Trigger = 0x02
	TriggerSpec0   Trigger = 0x03 // Z spectroscopy
	TriggerSpec1   Trigger = 0x04 // DAC1 spectroscopy
	TriggerSpec2   Trigger = 0x05 // low frequency spectroscopy
	TriggerSpec3   Trigger = 0x06 // calibration
	TriggerCommand Trigger = 0x09
)

// Source is the data source of a channel (CHAN_ADC)
type Source int32

const (
	SourceADCMin    Source = 0
	SourceADCMax    Source = 5
	SourceAFMAExc   Source = 7
	SourceAFMFExc   Source = 8
	SourceZOut      Source = 9
	SourceAFMSignal Source = 12
	SourceAFMAmpl   Source = 13
	SourceAFMPhase  Source = 14
	SourceAFMMAmpl  Source = 16
	SourceAFMMPhase Source = 17
	SourceZOutInv   Source = 18
	SourceADCExtMin Source = 20
	SourceADCExtMax Source = 21
)

// ScanState is the scanner state (SCAN_RUNNING)
type ScanState int32

const (
	ScanOff ScanState = iota
	ScanOn
	ScanPause
)

func (s ScanState) String() string {
	switch s {
	case ScanOff:
		return "off"
	case ScanOn:
		return "on"
	case ScanPause:
		return "pause"
	}
	return "unknown"
}

// FeedbackState is the Z feedback loop state (REG_LOOP_ON)
type FeedbackState int32

const (
	FeedbackOff FeedbackState = iota
	FeedbackOn
	FeedbackRetracted
)

// Direction of coarse motion
type Direction int32

const (
	Down Direction = iota
	Up
)

// MaxAxis is the highest coarse positioner axis
const MaxAxis = 2
