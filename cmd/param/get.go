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

func NewGetCommand(cfg *config.Config, output *string) *cobra.Command {
	var index int32
	cmd := &cobra.Command{
		Use:   "get <param>",
		Short: "Get parameter value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := command.NewApiClient(cfg).ParamGet(args[0], index)
			if err != nil {
				return err
			}
			return spmcmd.Print(cmd.OutOrStdout(), v, *output)
		},
	}
	cmd.Flags().Int32Var(&index, IndexOptionName, 0, "Parameter index")
	return cmd
}

func NewListCommand(cfg *config.Config, output *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List parameter values recorded by the control server",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := command.NewApiClient(cfg).ParamList()
			if err != nil {
				return err
			}
			return spmcmd.Print(cmd.OutOrStdout(), values, *output)
		},
	}
	return cmd
}
