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

package completion

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const (
	completionExample = `
Load bash completion of the controller client into the current shell
# source <(go-spm completion)

Install zsh completion
# go-spm completion zsh > "${fpath[1]}/_go-spm"

Install fish completion without descriptions
# go-spm completion fish --no-descriptions > ~/.config/fish/completions/go-spm.fish
`
	noDescriptionsFlag = "no-descriptions"
)

// ErrUnknownShell is returned for a shell without completion support
type ErrUnknownShell struct {
	Shell string
}

func (e ErrUnknownShell) Error() string {
	return fmt.Sprintf("no completion for shell %q, use one of: %s", e.Shell, strings.Join(shells, ", "))
}

var shells = []string{"bash", "zsh", "fish", "powershell"}

func generate(root *cobra.Command, shell string, descriptions bool, out io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletion(out)
	case "zsh":
		return root.GenZshCompletion(out)
	case "fish":
		return root.GenFishCompletion(out, descriptions)
	case "powershell":
		return root.GenPowerShellCompletion(out)
	}
	return ErrUnknownShell{Shell: shell}
}

// NewCommand creates the completion command. The shell defaults to bash.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate a shell completion script",
		Example:   completionExample,
		ValidArgs: shells,
		Args:      cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := "bash"
			if len(args) > 0 {
				shell = args[0]
			}
			noDescriptions, err := cmd.Flags().GetBool(noDescriptionsFlag)
			if err != nil {
				return err
			}
			return generate(cmd.Root(), shell, !noDescriptions, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Bool(noDescriptionsFlag, false, "Leave command descriptions out of the fish script")
	return cmd
}
