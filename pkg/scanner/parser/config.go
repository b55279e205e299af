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

package parser

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kr/logfmt"
	"github.com/mitchellh/mapstructure"
	"github.com/xyrange/xyrange/pkg/utils"
)

type (
	// Config describes the grammar of an instrument file: how a range start is
	// recognized, how metadata and data lines look and which metadata keys
	// define the x axis of a range.
	Config struct {
		// Name is the grammar preset name, informational only
		Name string

		// RangeStartTag is the literal (case-sensitive) prefix of a line which
		// opens a new range
		RangeStartTag string

		// MetaSeparator is the character which separates key and value in
		// metadata lines
		MetaSeparator string

		// DataSeparators contains characters, which are treated like white
		// spaces in data rows
		DataSeparators string

		// CommentPrefixes contains characters which mark a line as a comment
		// when the line starts with one of them
		CommentPrefixes string

		// XStartKey and XStepKey are the metadata keys (with the marker, if
		// any) which set the x start and x step of a range
		XStartKey string
		XStepKey  string

		// MarkerPrefix is a character which is removed from the beginning of
		// metadata keys before they are stored. Empty value keeps keys as is.
		MarkerPrefix string

		// Window is the number of recently read lines the cursor can be reset to
		Window int
	}

	paramsHandler map[string]interface{}
)

const (
	PresetDefault = "default"
	PresetUxd     = "uxd"

	cDefaultWindow = 16
)

var presets = map[string]func() *Config{
	PresetDefault: NewDefaultConfig,
	PresetUxd:     NewUxdConfig,
}

//===================== Config =====================

// NewDefaultConfig returns the generic grammar: ranges start with "_RANGE",
// metadata lines look like KEY=VALUE and the x axis is defined by _XSTART
// and _XSTEP keys.
func NewDefaultConfig() *Config {
	return &Config{
		Name:            PresetDefault,
		RangeStartTag:   "_RANGE",
		MetaSeparator:   "=",
		DataSeparators:  ",\t",
		CommentPrefixes: ";#",
		XStartKey:       "_XSTART",
		XStepKey:        "_XSTEP",
		MarkerPrefix:    "_",
		Window:          cDefaultWindow,
	}
}

// NewUxdConfig returns the grammar of Siemens/Bruker UXD files
func NewUxdConfig() *Config {
	return &Config{
		Name:            PresetUxd,
		RangeStartTag:   "_DRIVE",
		MetaSeparator:   "=",
		DataSeparators:  ",\t",
		CommentPrefixes: ";",
		XStartKey:       "_START",
		XStepKey:        "_STEPSIZE",
		MarkerPrefix:    "_",
		Window:          cDefaultWindow,
	}
}

// GetPreset returns a new copy of the grammar with the name provided
func GetPreset(name string) (*Config, error) {
	f, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown grammar preset %q, expected one of %v", name, Presets())
	}
	return f(), nil
}

// Presets returns sorted names of known grammar presets
func Presets() []string {
	res := make([]string, 0, len(presets))
	for n := range presets {
		res = append(res, n)
	}
	sort.Strings(res)
	return res
}

// NewConfigFromParams returns the preset with the name provided, overridden
// by params. Params keys are the Config field names, values could be strings,
// so the params read from command line or from a config file are both fine.
func NewConfigFromParams(preset string, params map[string]interface{}) (*Config, error) {
	cfg, err := GetPreset(preset)
	if err != nil {
		return nil, err
	}

	if len(params) > 0 {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           cfg,
		})
		if err != nil {
			return nil, err
		}
		if err = dec.Decode(params); err != nil {
			return nil, fmt.Errorf("could not apply grammar params %v: %v", params, err)
		}
	}

	return cfg, cfg.Check()
}

// ParseParamsString parses grammar params in logfmt form, like
// `RangeStartTag=_DRIVE XStepKey=_STEPSIZE`
func ParseParamsString(s string) (map[string]interface{}, error) {
	ph := make(paramsHandler)
	if err := logfmt.Unmarshal([]byte(s), ph); err != nil {
		return nil, fmt.Errorf("could not parse grammar params %q: %v", s, err)
	}
	return ph, nil
}

func (ph paramsHandler) HandleLogfmt(key, val []byte) error {
	ph[string(key)] = string(val)
	return nil
}

// Apply overrides fields of c by non-empty fields of other
func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}
	if other.Name != "" {
		c.Name = other.Name
	}
	if other.RangeStartTag != "" {
		c.RangeStartTag = other.RangeStartTag
	}
	if other.MetaSeparator != "" {
		c.MetaSeparator = other.MetaSeparator
	}
	if other.DataSeparators != "" {
		c.DataSeparators = other.DataSeparators
	}
	if other.CommentPrefixes != "" {
		c.CommentPrefixes = other.CommentPrefixes
	}
	if other.XStartKey != "" {
		c.XStartKey = other.XStartKey
	}
	if other.XStepKey != "" {
		c.XStepKey = other.XStepKey
	}
	if other.MarkerPrefix != "" {
		c.MarkerPrefix = other.MarkerPrefix
	}
	if other.Window > 0 {
		c.Window = other.Window
	}
}

func (c *Config) Check() error {
	if c.RangeStartTag == "" {
		return fmt.Errorf("invalid RangeStartTag=%q, must be non-empty", c.RangeStartTag)
	}
	if utf8.RuneCountInString(c.MetaSeparator) != 1 {
		return fmt.Errorf("invalid MetaSeparator=%q, must be exactly one character", c.MetaSeparator)
	}
	if strings.TrimSpace(c.MetaSeparator) == "" {
		return fmt.Errorf("invalid MetaSeparator=%q, must not be a white space", c.MetaSeparator)
	}
	if strings.Contains(c.DataSeparators, c.MetaSeparator) {
		return fmt.Errorf("invalid DataSeparators=%q, must not contain MetaSeparator=%q", c.DataSeparators, c.MetaSeparator)
	}
	if utf8.RuneCountInString(c.MarkerPrefix) > 1 {
		return fmt.Errorf("invalid MarkerPrefix=%q, must be one character or empty", c.MarkerPrefix)
	}
	if c.XStartKey == "" || c.XStepKey == "" {
		return fmt.Errorf("invalid XStartKey=%q or XStepKey=%q, both must be non-empty", c.XStartKey, c.XStepKey)
	}
	if c.XStartKey == c.XStepKey {
		return fmt.Errorf("invalid XStepKey=%q, must differ from XStartKey", c.XStepKey)
	}
	if c.Window < 1 {
		return fmt.Errorf("invalid Window=%d, must be positive", c.Window)
	}
	return nil
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}
