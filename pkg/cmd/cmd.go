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

// Package cmd holds helpers shared by the command line tools
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-spm/pkg/config"
	"jinr.ru/greenlab/go-spm/pkg/log"
)

const (
	OutputOptionName = "output"
	OutputJSON       = "json"
	OutputYAML       = "yaml"
)

// ErrWrongOutput returned for an unsupported output format
type ErrWrongOutput struct {
	Format string
}

func (e ErrWrongOutput) Error() string {
	return fmt.Sprintf("Wrong output format: %s. Must be one of: %s, %s", e.Format, OutputYAML, OutputJSON)
}

// LoadConfig returns the default config overlaid with the config file if
// there is one
func LoadConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warning("Error while loading config %s: %s", cfg.FilePath(), err)
	}
	return cfg
}

// Print writes v to out in the given format
func Print(out io.Writer, v interface{}, format string) error {
	var data []byte
	var err error
	switch format {
	case OutputYAML, "":
		data, err = yaml.Marshal(v)
	case OutputJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	default:
		return ErrWrongOutput{Format: format}
	}
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
