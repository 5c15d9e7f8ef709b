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
	"time"

	"jinr.ru/greenlab/go-spm/pkg/param"
	"jinr.ru/greenlab/go-spm/pkg/units"
)

// ChannelConfig is the routing of one data channel
type ChannelConfig struct {
	Trigger Trigger `json:"trigger"`
	Source  Source  `json:"source"`
	Average bool    `json:"average"`
	// SampleTime is only applied with TriggerTimer
	SampleTime time.Duration `json:"sampleTime"`
}

func checkChannel(n int32) error {
	if n < 0 || n >= DataChannels {
		return param.OutOfRange
	}
	return nil
}

// ConfigureChannel sets trigger, source, averaging and, for the timer
// trigger, the sample time of data channel n. Trigger and source must be
// echoed exactly. The first failure stops the sequence.
func (d *Device) ConfigureChannel(n int32, cfg ChannelConfig) error {
	if err := checkChannel(n); err != nil {
		return err
	}
	var ticks int32
	if cfg.Trigger == TriggerTimer {
		var err error
		if ticks, err = units.SampleTimeToTicks(cfg.SampleTime); err != nil {
			return err
		}
	}
	if _, err := d.Apply(ChanConnect, n, int32(cfg.Trigger), Strict); err != nil {
		return err
	}
	if _, err := d.Apply(ChanADC, n, int32(cfg.Source), Strict); err != nil {
		return err
	}
	if _, err := d.Apply(ChanAvgMax, n, boolValue(cfg.Average), Authoritative); err != nil {
		return err
	}
	if cfg.Trigger != TriggerTimer {
		return nil
	}
	_, err := d.Apply(ChanPoints, n, ticks, Authoritative)
	return err
}

// Channel reads back the routing of data channel n
func (d *Device) Channel(n int32) (*ChannelConfig, error) {
	if err := checkChannel(n); err != nil {
		return nil, err
	}
	trigger, err := d.Get(ChanConnect, n)
	if err != nil {
		return nil, err
	}
	source, err := d.Get(ChanADC, n)
	if err != nil {
		return nil, err
	}
	avg, err := d.Get(ChanAvgMax, n)
	if err != nil {
		return nil, err
	}
	points, err := d.Get(ChanPoints, n)
	if err != nil {
		return nil, err
	}
	return &ChannelConfig{
		Trigger:    Trigger(trigger),
		Source:     Source(source),
		Average:    avg != 0,
		SampleTime: units.TicksToSampleTime(points),
	}, nil
}

// EnableData switches the data stream of all channels
func (d *Device) EnableData(on bool) error {
	_, err := d.Apply(DataEnable, 0, boolValue(on), Strict)
	return err
}
