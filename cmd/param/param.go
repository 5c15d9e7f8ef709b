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
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	spmcmd "jinr.ru/greenlab/go-spm/pkg/cmd"
	"jinr.ru/greenlab/go-spm/pkg/config"
	"jinr.ru/greenlab/go-spm/pkg/device/asc500"
)

const (
	IndexOptionName    = "index"
	ReadbackOptionName = "readback"
)

var paramHelp = fmt.Sprintf("Parameters are given by number (0x prefix for hex) or by name: %s",
	strings.Join(asc500.ParamNames(), ", "))

func NewCommand(cfg *config.Config) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "param",
		Short: "Read and write controller parameters",
		Long:  paramHelp,
	}
	cmd.AddCommand(NewGetCommand(cfg, &output))
	cmd.AddCommand(NewSetCommand(cfg, &output))
	cmd.AddCommand(NewConfirmCommand(cfg, &output))
	cmd.AddCommand(NewListCommand(cfg, &output))
	cmd.PersistentFlags().StringVar(&output, spmcmd.OutputOptionName, spmcmd.OutputYAML, "Output format: yaml or json")
	return cmd
}

func parseValue(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("wrong parameter value %s: %w", s, err)
	}
	return int32(v), nil
}
