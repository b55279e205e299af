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

package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteJsonStr(t *testing.T) {
	testWriteJsonStr(t, "")
	testWriteJsonStr(t, "\"")
	testWriteJsonStr(t, "_2THETA=10.000")
	testWriteJsonStr(t, "ha\\\r\"haЛwПР\""+string(byte(0x19)))
	testWriteJsonStr(t, string(byte(0x20))+"\"\nЫqЛ\"\\ЫЗvz\t")
}

func TestWriteJsonStrNoHtml(t *testing.T) {
	var buf bytes.Buffer
	WriteJsonStr(&buf, "<a&b>")
	assert.Equal(t, `"<a&b>"`, buf.String())
}

func TestWriteJsonStrInvalidUtf8(t *testing.T) {
	var buf bytes.Buffer
	WriteJsonStr(&buf, "a\xffb")
	assert.Equal(t, `"a\ufffdb"`, buf.String())
}

func TestToJsonStr(t *testing.T) {
	assert.Equal(t, `{"A":"<b>"}`, ToJsonStr(struct{ A string }{A: "<b>"}))
	assert.Equal(t, "", ToJsonStr(make(chan int)))
}

func testWriteJsonStr(t *testing.T, s string) {
	bb, err := json.Marshal(s)
	assert.NoError(t, err)
	var buf bytes.Buffer
	WriteJsonStr(&buf, s)
	assert.Equal(t, string(bb), buf.String())
}
