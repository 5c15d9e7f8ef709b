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
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-spm/pkg/command"
	"jinr.ru/greenlab/go-spm/pkg/config"
)

const (
	AddressOptionName = "address"
	PortOptionName    = "port"
	DBOptionName      = "db"
)

func NewStartCommand(cfg *config.Config) *cobra.Command {
	var address, db string
	var port int
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start control server over a simulated controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				cfg.ApiAddress = address
			}
			if port != 0 {
				cfg.ApiPort = port
			}
			if db != "" {
				cfg.DBPath = db
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return command.StartControlServer(cfg)
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("API address to bind. E.g. %s", config.DefaultApiAddress))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("API port. E.g. %d", config.DefaultApiPort))
	cmd.Flags().StringVar(&db, DBOptionName, "", "Parameter database path")
	return cmd
}
