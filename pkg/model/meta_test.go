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

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xyrange/xyrange/pkg/utils"
)

func TestMetaOrder(t *testing.T) {
	var m Meta
	assert.Equal(t, 0, m.Len())
	m.Add("WL1", "1.54056")
	m.Add("SAMPLE", "quartz")
	m.Add("ANODE", "Cu")

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []MetaEntry{{"WL1", "1.54056"}, {"SAMPLE", "quartz"}, {"ANODE", "Cu"}}, m.Entries())
	assert.Equal(t, []string{"WL1", "SAMPLE", "ANODE"}, m.Keys())
}

func TestMetaDuplicates(t *testing.T) {
	var m Meta
	m.Add("COMMENT", "first")
	m.Add("SAMPLE", "quartz")
	m.Add("COMMENT", "second")

	assert.Equal(t, 3, m.Len())
	v, ok := m.Get("COMMENT")
	assert.True(t, ok)
	assert.Equal(t, "second", v)
	assert.Equal(t, []string{"first", "second"}, m.Values("COMMENT"))
	assert.Equal(t, []string{"COMMENT", "SAMPLE"}, m.Keys())

	_, ok = m.Get("NONE")
	assert.False(t, ok)
	assert.Equal(t, "", m.Value("NONE"))
	assert.Nil(t, m.Values("NONE"))
}

func TestMetaEntriesIsCopy(t *testing.T) {
	var m Meta
	m.Add("a", "1")
	ee := m.Entries()
	ee[0].Value = "2"
	assert.Equal(t, "1", m.Value("a"))
}

func TestMetaJson(t *testing.T) {
	var m Meta
	assert.Equal(t, "{}", toJson(t, m))

	m.Add("z", "1")
	m.Add("a", "say \"hi\"")
	m.Add("z", "<2>")
	assert.Equal(t, `{"z":"1","a":"say \"hi\"","z":"<2>"}`, toJson(t, m))
	assert.Equal(t, `{z=1, a=say "hi", z=<2>}`, m.String())

	// json.Marshal escapes html symbols in MarshalJSON output
	bb, err := json.Marshal(m)
	assert.NoError(t, err)
	assert.Equal(t, `{"z":"1","a":"say \"hi\"","z":"\u003c2\u003e"}`, string(bb))
}

func toJson(t *testing.T, v interface{}) string {
	bb, err := v.(json.Marshaler).MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, string(bb), utils.ToJsonStr(v))
	return string(bb)
}
