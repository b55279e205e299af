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

package shell

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xyrange/xyrange/pkg/scanner/parser"
)

const testUxdFile = "../../pkg/scanner/parser/testdata/quartz.uxd"

func TestExecCmdUnknown(t *testing.T) {
	cfg, _ := testConfig(t)
	assert.Error(t, execCmd("drop table", cfg))
	assert.Error(t, execCmd("load", cfg))
	assert.Error(t, execCmd("information", cfg))
	assert.Equal(t, errQuit, execCmd("quit", cfg))
	assert.Equal(t, errQuit, execCmd("EXIT", cfg))
}

func TestExecCmdQuery(t *testing.T) {
	cfg, out := testConfig(t)
	assert.Error(t, execCmd("select", cfg))
	assert.Error(t, execCmd("info", cfg))

	assert.NoError(t, execCmd("load "+testUxdFile, cfg))
	assert.Contains(t, out.String(), "2 range(s), 10 point(s)")
	assert.Equal(t, testUxdFile, cfg.file)

	out.Reset()
	assert.NoError(t, execCmd("show ranges where points > 5", cfg))
	assert.Equal(t, "", out.String())

	assert.NoError(t, execCmd("SHOW RANGES limit 1", cfg))
	assert.Contains(t, out.String(), "#0: points=5, x=[10..10.08], step=0.02")

	out.Reset()
	assert.NoError(t, execCmd("select format '{y} ' where index = 1", cfg))
	assert.Equal(t, "10 11 12 13 14 ", out.String())

	out.Reset()
	assert.NoError(t, execCmd("show meta", cfg))
	assert.Contains(t, out.String(), "SAMPLE: 'quartz'\n")

	out.Reset()
	assert.NoError(t, execCmd("info", cfg))
	assert.Contains(t, out.String(), "uxd")
	assert.Contains(t, out.String(), "data-row:")
	assert.Contains(t, out.String(), "  FILEVERSION: 1\n")
	assert.Contains(t, out.String(), "  SAMPLE:    'quartz'\n")

	assert.Error(t, execCmd("select where nope = 1", cfg))
	assert.Error(t, execCmd("load /not/existing/file.uxd", cfg))
	assert.Equal(t, testUxdFile, cfg.file)
}

func TestExecCmdGrammar(t *testing.T) {
	cfg, out := testConfig(t)
	assert.NoError(t, execCmd("grammar", cfg))
	assert.Contains(t, out.String(), "_DRIVE")

	assert.NoError(t, execCmd("grammar default", cfg))
	assert.Equal(t, parser.PresetDefault, cfg.pcfg.Name)
	assert.Equal(t, "_RANGE", cfg.pcfg.RangeStartTag)

	assert.NoError(t, execCmd("grammar default RangeStartTag=_DRIVE XStartKey=_START", cfg))
	assert.Equal(t, "_DRIVE", cfg.pcfg.RangeStartTag)
	assert.Equal(t, "_START", cfg.pcfg.XStartKey)

	assert.Error(t, execCmd("grammar jcamp", cfg))
	assert.Error(t, execCmd("grammar uxd Color=red", cfg))
	assert.Equal(t, "_DRIVE", cfg.pcfg.RangeStartTag)
}

func TestExecCmdHelp(t *testing.T) {
	cfg, out := testConfig(t)
	assert.NoError(t, execCmd("help", cfg))
	for _, c := range commands {
		assert.Contains(t, out.String(), c.name)
	}
}

func testConfig(t *testing.T) (*config, *bytes.Buffer) {
	pcfg, err := parser.NewConfigFromParams(parser.PresetUxd, nil)
	if err != nil {
		t.Fatal("could not create grammar, err=", err)
	}
	out := &bytes.Buffer{}
	return &config{pcfg: pcfg, out: out}, out
}
