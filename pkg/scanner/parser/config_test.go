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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{PresetDefault, PresetUxd}, Presets())

	cfg, err := GetPreset(" UXD ")
	assert.NoError(t, err)
	assert.Equal(t, NewUxdConfig(), cfg)
	assert.NoError(t, cfg.Check())
	assert.NoError(t, NewDefaultConfig().Check())

	_, err = GetPreset("jcamp")
	assert.Error(t, err)
}

func TestConfigCheck(t *testing.T) {
	testConfigCheckErr(t, func(c *Config) { c.RangeStartTag = "" })
	testConfigCheckErr(t, func(c *Config) { c.MetaSeparator = "" })
	testConfigCheckErr(t, func(c *Config) { c.MetaSeparator = ":=" })
	testConfigCheckErr(t, func(c *Config) { c.MetaSeparator = " " })
	testConfigCheckErr(t, func(c *Config) { c.DataSeparators = ",=" })
	testConfigCheckErr(t, func(c *Config) { c.MarkerPrefix = "__" })
	testConfigCheckErr(t, func(c *Config) { c.XStartKey = "" })
	testConfigCheckErr(t, func(c *Config) { c.XStepKey = c.XStartKey })
	testConfigCheckErr(t, func(c *Config) { c.Window = 0 })

	cfg := NewDefaultConfig()
	cfg.MarkerPrefix = ""
	cfg.DataSeparators = ""
	cfg.CommentPrefixes = ""
	assert.NoError(t, cfg.Check())
}

func TestConfigApply(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Apply(nil)
	assert.Equal(t, NewDefaultConfig(), cfg)

	cfg.Apply(&Config{RangeStartTag: "_DRIVE", XStepKey: "_STEPSIZE", Window: 3})
	assert.Equal(t, "_DRIVE", cfg.RangeStartTag)
	assert.Equal(t, "_STEPSIZE", cfg.XStepKey)
	assert.Equal(t, "_XSTART", cfg.XStartKey)
	assert.Equal(t, 3, cfg.Window)
	assert.Equal(t, "=", cfg.MetaSeparator)
}

func TestNewConfigFromParams(t *testing.T) {
	cfg, err := NewConfigFromParams("default", nil)
	assert.NoError(t, err)
	assert.Equal(t, NewDefaultConfig(), cfg)

	cfg, err = NewConfigFromParams("default", map[string]interface{}{
		"RangeStartTag": "RANGE_TAG",
		"MetaSeparator": ":",
		"Window":        "4",
	})
	assert.NoError(t, err)
	assert.Equal(t, "RANGE_TAG", cfg.RangeStartTag)
	assert.Equal(t, ":", cfg.MetaSeparator)
	assert.Equal(t, 4, cfg.Window)
	assert.Equal(t, "_XSTART", cfg.XStartKey)

	_, err = NewConfigFromParams("default", map[string]interface{}{"NoSuchField": "1"})
	assert.Error(t, err)
	_, err = NewConfigFromParams("default", map[string]interface{}{"Window": "abc"})
	assert.Error(t, err)
	_, err = NewConfigFromParams("default", map[string]interface{}{"RangeStartTag": ""})
	assert.Error(t, err)
	_, err = NewConfigFromParams("unknown", nil)
	assert.Error(t, err)
}

func TestParseParamsString(t *testing.T) {
	m, err := ParseParamsString(`RangeStartTag=_DRIVE XStepKey=_STEPSIZE CommentPrefixes=";#"`)
	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"RangeStartTag":   "_DRIVE",
		"XStepKey":        "_STEPSIZE",
		"CommentPrefixes": ";#",
	}, m)

	m, err = ParseParamsString("")
	assert.NoError(t, err)
	assert.Len(t, m, 0)

	cfg, err := NewConfigFromParams(PresetDefault, m)
	assert.NoError(t, err)
	assert.Equal(t, NewDefaultConfig(), cfg)
}

func TestConfigString(t *testing.T) {
	s := NewUxdConfig().String()
	assert.Contains(t, s, `"RangeStartTag":"_DRIVE"`)
	assert.Contains(t, s, `"Window":16`)
}

func testConfigCheckErr(t *testing.T, f func(c *Config)) {
	cfg := NewDefaultConfig()
	f(cfg)
	assert.Error(t, cfg.Check(), "cfg=%s", cfg)
}
