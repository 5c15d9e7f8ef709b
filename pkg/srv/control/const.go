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

package control

import (
	"time"
)

const (
	ApiPrefix = "/api"

	// MaxFrameCapacity bounds the buffer a capture request may allocate
	MaxFrameCapacity = 1 << 22

	DefaultCaptureTimeout = 10 * time.Second
	ShutdownTimeout       = 5 * time.Second
)
