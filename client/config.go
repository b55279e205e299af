// Copyright 2019 The xyrange Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package client

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/mohae/deepcopy"
	"github.com/xyrange/xyrange/pkg/scanner"
	"github.com/xyrange/xyrange/pkg/scanner/parser"
	"github.com/xyrange/xyrange/pkg/sink"
	"github.com/xyrange/xyrange/pkg/storage"
	"github.com/xyrange/xyrange/pkg/utils"
	"gopkg.in/yaml.v3"
)

// Config struct just aggregate different types of configs in one place
type Config struct {
	// Grammar is the grammar preset used by parse, query and shell
	Grammar       string                 `json:"grammar" yaml:"grammar"`
	GrammarParams map[string]interface{} `json:"grammarParams,omitempty" yaml:"grammarParams,omitempty"`

	Scanner *scanner.Config `json:"scanner" yaml:"scanner"`
	Storage *storage.Config `json:"storage" yaml:"storage"`
	Sink    *sink.Config    `json:"sink" yaml:"sink"`
}

//===================== config =====================

func NewDefaultConfig() *Config {
	return &Config{
		Grammar: parser.PresetDefault,
		Scanner: scanner.NewDefaultConfig(),
		Storage: storage.NewDefaultConfig(),
		Sink:    sink.NewDefaultConfig(),
	}
}

// LoadCfgFromFile reads the config from the file. Files with .yaml or .yml
// extension are read as YAML, others as JSON.
func LoadCfgFromFile(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config from %s: %v", path, err)
	}
	return cfg, nil
}

func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}

	if other.Grammar != "" {
		c.Grammar = other.Grammar
	}
	if len(other.GrammarParams) != 0 {
		c.GrammarParams = deepcopy.Copy(other.GrammarParams).(map[string]interface{})
	}
	c.Scanner.Apply(other.Scanner)
	c.Storage.Apply(other.Storage)
	c.Sink.Apply(other.Sink)
}

func (c *Config) Check() error {
	if c.Scanner == nil {
		return fmt.Errorf("invalid config; scanner=%v, must be non-nil", c.Scanner)
	}
	if c.Storage == nil {
		return fmt.Errorf("invalid config; storage=%v, must be non-nil", c.Storage)
	}
	if c.Sink == nil {
		return fmt.Errorf("invalid config; sink=%v, must be non-nil", c.Sink)
	}
	if _, err := c.ParserConfig(); err != nil {
		return err
	}
	if err := c.Scanner.Check(); err != nil {
		return err
	}
	if err := c.Storage.Check(); err != nil {
		return err
	}
	return c.Sink.Check()
}

// ParserConfig returns the grammar built from Grammar and GrammarParams
func (c *Config) ParserConfig() (*parser.Config, error) {
	return parser.NewConfigFromParams(c.Grammar, c.GrammarParams)
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}

//===================== helpers =====================

func NewStorage(cfg *storage.Config) (storage.Storage, error) {
	strg, err := storage.NewStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage, err=%v", err)
	}
	return strg, err
}

func NewSink(cfg *sink.Config) (sink.Sink, error) {
	snk, err := sink.NewSink(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sink, err=%v", err)
	}
	return snk, err
}
