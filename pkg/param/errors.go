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

import (
	"errors"
	"fmt"
)

// Rc is a return code of the controller link. Every value except Ok
// is an error.
type Rc int

const (
	Ok Rc = iota
	Error
	Timeout
	NotConnected
	DriverError
	FileNotFound
	SrvNotFound
	ServerLost
	OutOfRange
	WrongContext
	XmlError
	OpenError
)

var rcText = map[Rc]string{
	Ok:           "Ok",
	Error:        "Unknown / other error",
	Timeout:      "Communication timeout",
	NotConnected: "No contact to controller via USB",
	DriverError:  "Error when calling USB driver",
	FileNotFound: "Controller boot image not found",
	SrvNotFound:  "Server executable not found",
	ServerLost:   "No contact to the server",
	OutOfRange:   "Invalid parameter in fct. call",
	WrongContext: "Call in invalid thread context",
	XmlError:     "Invalid format of profile file",
	OpenError:    "Can't open specified file",
}

func (rc Rc) Error() string {
	text, ok := rcText[rc]
	if !ok {
		return fmt.Sprintf("???? (%d)", int(rc))
	}
	return text
}

func (rc Rc) String() string {
	return rc.Error()
}

// Err returns nil for Ok and rc otherwise
func (rc Rc) Err() error {
	if rc == Ok {
		return nil
	}
	return rc
}

// Code maps an error back to a return code. nil is Ok, errors that do not
// wrap an Rc are reported as Error.
func Code(err error) Rc {
	if err == nil {
		return Ok
	}
	var rc Rc
	if errors.As(err, &rc) {
		return rc
	}
	return Error
}

// First returns the first non-nil error in call order
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
