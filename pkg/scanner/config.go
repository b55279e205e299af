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

package scanner

import (
	"fmt"
	"regexp/syntax"

	"github.com/mohae/deepcopy"
	"github.com/xyrange/xyrange/pkg/scanner/parser"
	"github.com/xyrange/xyrange/pkg/utils"
)

type (
	// Config defines which files are scanned, how often and with which
	// grammar they are parsed.
	Config struct {
		IncludePaths          []string        `json:"includePaths" yaml:"includePaths"`
		ExcludeMatchers       []string        `json:"excludeMatchers" yaml:"excludeMatchers"`
		ScanPathsIntervalSec  int             `json:"scanPathsIntervalSec" yaml:"scanPathsIntervalSec"`
		StateStoreIntervalSec int             `json:"stateStoreIntervalSec" yaml:"stateStoreIntervalSec"`
		Workers               int             `json:"workers" yaml:"workers"`
		Schemas               []*SchemaConfig `json:"schemas" yaml:"schemas"`
	}
)

const (
	cMaxWorkers = 64
)

//===================== config =====================

func NewDefaultConfig() *Config {
	return &Config{
		IncludePaths:          []string{"./*.uxd", "./*.xy"},
		ScanPathsIntervalSec:  5,
		StateStoreIntervalSec: 5,
		Workers:               4,
		Schemas: []*SchemaConfig{
			{
				PathMatcher: "/*(?:.+/)*(?P<file>.+\\.uxd)$",
				Grammar:     parser.PresetUxd,
				Meta: map[string]string{
					"file": "{file}",
				},
			},
			{
				PathMatcher: "/*(?:.+/)*(?P<file>.+\\..+)",
				Grammar:     parser.PresetDefault,
				Meta: map[string]string{
					"file": "{file}",
				},
			},
		},
	}
}

func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}
	if len(other.IncludePaths) != 0 {
		c.IncludePaths = deepcopy.Copy(other.IncludePaths).([]string)
	}
	if len(other.ExcludeMatchers) != 0 {
		c.ExcludeMatchers = deepcopy.Copy(other.ExcludeMatchers).([]string)
	}
	if other.ScanPathsIntervalSec != 0 {
		c.ScanPathsIntervalSec = other.ScanPathsIntervalSec
	}
	if other.StateStoreIntervalSec != 0 {
		c.StateStoreIntervalSec = other.StateStoreIntervalSec
	}
	if other.Workers != 0 {
		c.Workers = other.Workers
	}
	if len(other.Schemas) != 0 {
		c.Schemas = deepcopy.Copy(other.Schemas).([]*SchemaConfig)
	}
}

func (c *Config) Check() error {
	if len(c.IncludePaths) == 0 {
		return fmt.Errorf("invalid IncludePaths=%v, must be non-empty", c.IncludePaths)
	}
	if c.ScanPathsIntervalSec <= 0 {
		return fmt.Errorf("invalid ScanPathsIntervalSec=%v, must be > 0sec", c.ScanPathsIntervalSec)
	}
	if c.StateStoreIntervalSec <= 0 {
		return fmt.Errorf("invalid StateStoreIntervalSec=%v, must be > 0sec", c.StateStoreIntervalSec)
	}
	if c.Workers <= 0 || c.Workers > cMaxWorkers {
		return fmt.Errorf("invalid Workers=%v, must be in range [1..%v]", c.Workers, cMaxWorkers)
	}
	if len(c.Schemas) == 0 {
		return fmt.Errorf("invalid Schemas=%v, must be non-empty", c.Schemas)
	}
	for _, s := range c.Schemas {
		if err := s.Check(); err != nil {
			return fmt.Errorf("invalid Schema=%v: %v", s, err)
		}
	}
	for _, ex := range c.ExcludeMatchers {
		if _, err := syntax.Parse(ex, syntax.Perl); err != nil {
			return fmt.Errorf("invalid ExcludeMatchers=%s: %v", ex, err)
		}
	}
	return nil
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}
