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

package scan

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-spm/pkg/command"
	"jinr.ru/greenlab/go-spm/pkg/config"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "scan start|stop|pause|state",
		Short:     "Start, stop or pause the scanner, or print its state",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"start", "stop", "pause", "state"},
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			var state string
			var err error
			if args[0] == "state" {
				state, err = apiClient.ScanState()
			} else {
				state, err = apiClient.ScanAction(args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), state)
			return nil
		},
	}
	return cmd
}
