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

package ifc

import (
	"context"
	"net/http"

	"jinr.ru/greenlab/go-spm/pkg/ack"
	deviceifc "jinr.ru/greenlab/go-spm/pkg/device/ifc"
	"jinr.ru/greenlab/go-spm/pkg/frame"
	"jinr.ru/greenlab/go-spm/pkg/param"
	"jinr.ru/greenlab/go-spm/pkg/state"
)

type ControlServer interface {
	Run() error

	// ParamRead and ParamWrite go to the controller and record the result
	ParamRead(addr param.Address, index int32) (int32, error)
	ParamWrite(addr param.Address, index, value int32) (int32, error)
	// readback 0 polls addr itself
	ParamConfirm(ctx context.Context, addr, readback param.Address, index, value int32) (ack.Result, error)
	// ParamReadAll returns the recorded values without asking the controller
	ParamReadAll() ([]*state.Record, error)

	Device() deviceifc.Device
	Capture(ctx context.Context, channel int32, capacity int) (*frame.Frame, error)
	Metrics() http.Handler
}

type ApiServer interface {
	http.Handler
	Run() error
}
