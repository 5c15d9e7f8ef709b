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

	"jinr.ru/greenlab/go-spm/pkg/log"
)

// SetOutputActivation requests the scanner outputs on or off. The request
// takes effect only when OUTPUT_STATUS acknowledges it, which is polled
// with the ack schedule (50 ms x 20 by default). It returns the last status
// read.
func (d *Device) SetOutputActivation(ctx context.Context, on bool) (bool, error) {
	res, err := d.Confirm(ctx, OutActivate, OutStatus, 0, boolValue(on))
	if err == nil && !res.Matched {
		log.Warning("Output activation %t not acknowledged after %d polls", on, res.Attempts)
	}
	return res.Value != 0, err
}

// OutputActivation reads whether the outputs are active
func (d *Device) OutputActivation() (bool, error) {
	status, err := d.Get(OutStatus, 0)
	return status != 0, err
}
