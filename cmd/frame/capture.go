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

package frame

import (
	"time"

	"github.com/spf13/cobra"

	spmcmd "jinr.ru/greenlab/go-spm/pkg/cmd"
	"jinr.ru/greenlab/go-spm/pkg/command"
	"jinr.ru/greenlab/go-spm/pkg/config"
)

const (
	ChannelOptionName  = "channel"
	CapacityOptionName = "capacity"
	TimeoutOptionName  = "timeout"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Frames of the data channels",
	}
	cmd.AddCommand(NewCaptureCommand(cfg))
	return cmd
}

func NewCaptureCommand(cfg *config.Config) *cobra.Command {
	var channel int32
	var capacity int
	var timeout time.Duration
	var output string
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Wait for the next frame of a channel and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := command.NewApiClient(cfg).Capture(channel, capacity, timeout)
			if err != nil {
				return err
			}
			return spmcmd.Print(cmd.OutOrStdout(), f, output)
		},
	}
	cmd.Flags().Int32Var(&channel, ChannelOptionName, 0, "Data channel")
	cmd.Flags().IntVar(&capacity, CapacityOptionName, config.DefaultSimFrameLength, "Frame buffer size in samples")
	cmd.Flags().DurationVar(&timeout, TimeoutOptionName, 0, "Capture timeout, server default if zero")
	cmd.Flags().StringVar(&output, spmcmd.OutputOptionName, spmcmd.OutputJSON, "Output format: yaml or json")
	return cmd
}
