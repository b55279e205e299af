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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xyrange/xyrange/pkg/sink"
	"github.com/xyrange/xyrange/pkg/storage"
)

const testYamlCfg = `
grammar: uxd
grammarParams:
  XStepKey: _STEPWIDTH
scanner:
  includePaths:
    - /data/xrd/*.uxd
  workers: 8
storage:
  type: file
  location: /var/lib/xyr
sink:
  type: sqlite
  params:
    Path: /var/lib/xyr/xyr.db
`

const testJsonCfg = `{
  "grammar": "default",
  "grammarParams": {"RangeStartTag": "_SCAN"},
  "sink": {"type": "file", "params": {"Dir": "/tmp/out"}}
}`

func TestLoadCfgFromFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "clientConfigTest")
	if err != nil {
		t.Fatal("could not create temp dir, err=", err)
	}
	defer os.RemoveAll(dir)

	cfg := NewDefaultConfig()
	cfg.Apply(testLoadCfg(t, dir, "xyr.yaml", testYamlCfg))
	assert.NoError(t, cfg.Check())
	assert.Equal(t, "uxd", cfg.Grammar)
	assert.Equal(t, []string{"/data/xrd/*.uxd"}, cfg.Scanner.IncludePaths)
	assert.Equal(t, 8, cfg.Scanner.Workers)
	assert.Equal(t, 5, cfg.Scanner.ScanPathsIntervalSec)
	assert.Equal(t, storage.TypeFile, cfg.Storage.Type)
	assert.Equal(t, sink.SnkTypeSqlite, cfg.Sink.Type)

	pcfg, err := cfg.ParserConfig()
	assert.NoError(t, err)
	assert.Equal(t, "_DRIVE", pcfg.RangeStartTag)
	assert.Equal(t, "_STEPWIDTH", pcfg.XStepKey)

	cfg = NewDefaultConfig()
	cfg.Apply(testLoadCfg(t, dir, "xyr.json", testJsonCfg))
	assert.NoError(t, cfg.Check())
	pcfg, err = cfg.ParserConfig()
	assert.NoError(t, err)
	assert.Equal(t, "_SCAN", pcfg.RangeStartTag)
	assert.Equal(t, sink.SnkTypeFile, cfg.Sink.Type)

	fn := filepath.Join(dir, "broken.json")
	assert.NoError(t, ioutil.WriteFile(fn, []byte(testYamlCfg), 0640))
	_, err = LoadCfgFromFile(fn)
	assert.Error(t, err)

	_, err = LoadCfgFromFile(filepath.Join(dir, "absent.yml"))
	assert.Error(t, err)
}

func TestConfigCheck(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.NoError(t, cfg.Check())

	cfg.Grammar = "jcamp"
	assert.Error(t, cfg.Check())

	cfg = NewDefaultConfig()
	cfg.GrammarParams = map[string]interface{}{"MetaSeparator": "=="}
	assert.Error(t, cfg.Check())

	cfg = NewDefaultConfig()
	cfg.Sink = &sink.Config{Type: sink.SnkTypeFile}
	assert.Error(t, cfg.Check())

	cfg = NewDefaultConfig()
	cfg.Storage = nil
	assert.Error(t, cfg.Check())
}

func testLoadCfg(t *testing.T, dir, name, data string) *Config {
	fn := filepath.Join(dir, name)
	if err := ioutil.WriteFile(fn, []byte(data), 0640); err != nil {
		t.Fatal("could not write config, err=", err)
	}
	cfg, err := LoadCfgFromFile(fn)
	if err != nil {
		t.Fatal("could not load config, err=", err)
	}
	return cfg
}
