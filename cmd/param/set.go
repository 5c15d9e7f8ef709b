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
	"github.com/spf13/cobra"

	spmcmd "jinr.ru/greenlab/go-spm/pkg/cmd"
	"jinr.ru/greenlab/go-spm/pkg/command"
	"jinr.ru/greenlab/go-spm/pkg/config"
)

func NewSetCommand(cfg *config.Config, output *string) *cobra.Command {
	var index int32
	cmd := &cobra.Command{
		Use:   "set <param> <value>",
		Short: "Set parameter value and print the echo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseValue(args[1])
			if err != nil {
				return err
			}
			v, err := command.NewApiClient(cfg).ParamSet(args[0], index, value)
			if err != nil {
				return err
			}
			return spmcmd.Print(cmd.OutOrStdout(), v, *output)
		},
	}
	cmd.Flags().Int32Var(&index, IndexOptionName, 0, "Parameter index")
	return cmd
}

func NewConfirmCommand(cfg *config.Config, output *string) *cobra.Command {
	var index int32
	var readback string
	cmd := &cobra.Command{
		Use:   "confirm <param> <value>",
		Short: "Set parameter value and wait until the controller shows it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseValue(args[1])
			if err != nil {
				return err
			}
			res, err := command.NewApiClient(cfg).ParamConfirm(args[0], index, value, readback)
			if err != nil {
				return err
			}
			return spmcmd.Print(cmd.OutOrStdout(), res, *output)
		},
	}
	cmd.Flags().Int32Var(&index, IndexOptionName, 0, "Parameter index")
	cmd.Flags().StringVar(&readback, ReadbackOptionName, "", "Parameter to poll instead of the one set")
	return cmd
}
