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

package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := NewRootCommand(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"completion"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("completion failed: %s", err)
	}
	if !strings.Contains(out.String(), "go-spm") {
		t.Error("completion script does not mention the command")
	}

	for _, name := range []string{"config", "control", "param", "scan", "frame"} {
		if c, _, err := cmd.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %s missing: %v", name, err)
		}
	}
}

func TestRootCommandLogLevel(t *testing.T) {
	cmd := NewRootCommand(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "loud", "completion"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for a wrong log level")
	}
}
