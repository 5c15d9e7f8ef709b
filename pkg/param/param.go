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

// Package param defines the parameter channel of the controller link: the
// flat address/index parameter space, the data and event callbacks and the
// sample blocks they deliver.
package param

import "fmt"

// Address identifies a control parameter
type Address int32

// AllAddresses registers an event callback for every address
const AllAddresses Address = -1

func (a Address) String() string {
	return fmt.Sprintf("0x%04x", int32(a))
}

// SampleBlock is one data telegram of a channel. Data and Meta are only
// valid during the callback that delivers them.
type SampleBlock struct {
	Channel int32
	// Index is the position of Data[0] within the frame, not a byte offset
	Index int32
	Data  []int32
	Meta  *Meta
}

// DataCallback receives sample blocks of one channel
type DataCallback func(block *SampleBlock)

// EventCallback receives parameter change events
type EventCallback func(addr Address, index, value int32)

// Channel is the parameter registry of the controller link.
//
// Data and event callbacks run in the link's own delivery context. They must
// not call the blocking Sync methods, which are serialized behind the same
// context.
type Channel interface {
	SetParameterSync(addr Address, index, value int32) (int32, error)
	GetParameterSync(addr Address, index int32) (int32, error)
	SetParameterAsync(addr Address, index, value int32) error
	GetParameterAsync(addr Address, index int32) error
	// SetDataCallback registers cb for the channel, nil unregisters
	SetDataCallback(channel int32, cb DataCallback) error
	// SetEventCallback registers cb for addr or AllAddresses, nil unregisters
	SetEventCallback(addr Address, cb EventCallback) error
}
