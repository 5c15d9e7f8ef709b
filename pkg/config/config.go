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

package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

type AckConfig struct {
	PollIntervalMs int `yaml:"pollIntervalMs"`
	MaxAttempts    int `yaml:"maxAttempts"`
}

// SimConfig describes the frames streamed by the simulated controller
type SimConfig struct {
	FrameLength     int32   `yaml:"frameLength"`
	BlockSize       int32   `yaml:"blockSize"`
	BlocksPerSecond float64 `yaml:"blocksPerSecond"`
	// OutputDelayMs is the time the output status takes to follow a request
	OutputDelayMs int `yaml:"outputDelayMs"`
}

type Config struct {
	LogLevel   string     `yaml:"logLevel"`
	ApiAddress string     `yaml:"apiAddress"`
	ApiPort    int        `yaml:"apiPort"`
	DBPath     string     `yaml:"dbPath"`
	Channels   int        `yaml:"channels"`
	Ack        *AckConfig `yaml:"ack,omitempty"`
	Sim        *SimConfig `yaml:"sim,omitempty"`
	filepath   string
}

// FilePath returns the file the config is loaded from and persisted to
func (c *Config) FilePath() string {
	return c.filepath
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(c.filepath, data, 0644)
}

// LoadConfig reads the file over the current values, missing keys keep them
func (c *Config) LoadConfig() error {
	data, err := ioutil.ReadFile(c.filepath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	return c.Validate()
}

// Validate ...
func (c *Config) Validate() error {
	if c.ApiPort <= 0 || c.ApiPort > 65535 {
		return ErrInvalid{What: "apiPort must be in 1..65535"}
	}
	if c.Channels <= 0 {
		return ErrInvalid{What: "channels must be positive"}
	}
	if c.Ack != nil && (c.Ack.MaxAttempts < 1 || c.Ack.PollIntervalMs < 0) {
		return ErrInvalid{What: "ack needs maxAttempts >= 1 and pollIntervalMs >= 0"}
	}
	return nil
}

// AckSchedule returns the poll interval and the poll limit of confirmations
func (c *Config) AckSchedule() (time.Duration, int) {
	if c.Ack == nil {
		return DefaultAckPollInterval * time.Millisecond, DefaultAckMaxAttempts
	}
	return time.Duration(c.Ack.PollIntervalMs) * time.Millisecond, c.Ack.MaxAttempts
}

// OutputDelay ...
func (c *Config) OutputDelay() time.Duration {
	if c.Sim == nil {
		return DefaultSimOutputDelay * time.Millisecond
	}
	return time.Duration(c.Sim.OutputDelayMs) * time.Millisecond
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, DBFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:   DefaultLogLevel,
		ApiAddress: DefaultApiAddress,
		ApiPort:    DefaultApiPort,
		DBPath:     DefaultDBPath(),
		Channels:   DefaultChannels,
		Ack: &AckConfig{
			PollIntervalMs: DefaultAckPollInterval,
			MaxAttempts:    DefaultAckMaxAttempts,
		},
		Sim: &SimConfig{
			FrameLength:     DefaultSimFrameLength,
			BlockSize:       DefaultSimBlockSize,
			BlocksPerSecond: DefaultSimBlocksPerSecond,
			OutputDelayMs:   DefaultSimOutputDelay,
		},
		filepath: DefaultConfigPath(),
	}
}
