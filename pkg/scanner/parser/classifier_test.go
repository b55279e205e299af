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

func TestClassify(t *testing.T) {
	cls := NewClassifier(NewDefaultConfig())
	testClassify(t, cls, "_RANGE", LineRangeStart)
	testClassify(t, cls, "_RANGE=1", LineRangeStart)
	testClassify(t, cls, "_RANGE_NEXT", LineRangeStart)
	testClassify(t, cls, " _RANGE", LineUnknown)
	testClassify(t, cls, "_range", LineUnknown)
	testClassify(t, cls, "", LineIgnorable)
	testClassify(t, cls, "  \t ", LineIgnorable)
	testClassify(t, cls, "; comment", LineIgnorable)
	testClassify(t, cls, "#A=1", LineIgnorable)
	testClassify(t, cls, "_XSTART=10", LineKeyValue)
	testClassify(t, cls, "  KEY = some value ", LineKeyValue)
	testClassify(t, cls, "A=B=C", LineKeyValue)
	testClassify(t, cls, "=value", LineUnknown)
	testClassify(t, cls, "1.0 2.0 3.0", LineDataRow)
	testClassify(t, cls, "  -1e3,+2\t.5", LineDataRow)
	testClassify(t, cls, "1.0 abc", LineDataRow)
	testClassify(t, cls, "1=2", LineKeyValue)
	testClassify(t, cls, "abc 1.0", LineUnknown)
	testClassify(t, cls, "NaN 1.0", LineUnknown)
	testClassify(t, cls, "Inf", LineUnknown)
	testClassify(t, cls, "_COUNTS", LineUnknown)
	testClassify(t, cls, ",,,", LineUnknown)
}

func TestClassifyUxd(t *testing.T) {
	cls := NewClassifier(NewUxdConfig())
	testClassify(t, cls, "_DRIVE=COUPLED", LineRangeStart)
	testClassify(t, cls, "_RANGE", LineUnknown)
	testClassify(t, cls, "# not a comment here", LineUnknown)
	testClassify(t, cls, "; comment", LineIgnorable)
}

func TestClassifyCustomTag(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.RangeStartTag = ";RANGE"
	cls := NewClassifier(cfg)
	// the range start wins over the comment
	testClassify(t, cls, ";RANGE", LineRangeStart)
	testClassify(t, cls, ";RANGE_", LineRangeStart)
	testClassify(t, cls, "; RANGE", LineIgnorable)
}

func TestClassifyIsPure(t *testing.T) {
	cls := NewClassifier(NewDefaultConfig())
	lines := []string{"_RANGE", "", "_A=1", "1 2", "xx"}
	exp := make([]LineType, len(lines))
	for i, l := range lines {
		exp[i] = cls.Classify(l)
	}
	for n := 0; n < 3; n++ {
		for i, l := range lines {
			assert.Equal(t, exp[i], cls.Classify(l))
		}
	}
}

func TestKeyValue(t *testing.T) {
	cls := NewClassifier(NewDefaultConfig())
	k, v, ok := cls.KeyValue("  _SAMPLE =  'quartz' ")
	assert.True(t, ok)
	assert.Equal(t, "_SAMPLE", k)
	assert.Equal(t, "'quartz'", v)

	k, v, ok = cls.KeyValue("A=B=C")
	assert.True(t, ok)
	assert.Equal(t, "A", k)
	assert.Equal(t, "B=C", v)

	k, v, ok = cls.KeyValue("EMPTY=")
	assert.True(t, ok)
	assert.Equal(t, "EMPTY", k)
	assert.Equal(t, "", v)

	_, _, ok = cls.KeyValue(" = 1")
	assert.False(t, ok)
	_, _, ok = cls.KeyValue("no separator")
	assert.False(t, ok)
}

func TestStripMarker(t *testing.T) {
	cls := NewClassifier(NewDefaultConfig())
	assert.Equal(t, "XSTART", cls.StripMarker("_XSTART"))
	assert.Equal(t, "_XSTART", cls.StripMarker("__XSTART"))
	assert.Equal(t, "SAMPLE", cls.StripMarker("SAMPLE"))

	cfg := NewDefaultConfig()
	cfg.MarkerPrefix = ""
	cls = NewClassifier(cfg)
	assert.Equal(t, "_XSTART", cls.StripMarker("_XSTART"))
}

func TestNumbers(t *testing.T) {
	cls := NewClassifier(NewDefaultConfig())
	assert.Equal(t, []float64{1, 2}, cls.Numbers("1.0 2.0 abc 3.0", nil))
	assert.Equal(t, []float64{1, 2, 3}, cls.Numbers("1,2\t3", nil))
	assert.Equal(t, []float64{9, -1000, 0.5}, cls.Numbers("-1e3 .5", []float64{9}))
	assert.Nil(t, cls.Numbers("abc 3.0", nil))
	assert.Equal(t, []float64{1}, cls.Numbers("1 NaN 2", nil))
	assert.Equal(t, []float64{1}, cls.Numbers("1 1e999", nil))
}

func TestLineTypeString(t *testing.T) {
	assert.Equal(t, "unknown", LineUnknown.String())
	assert.Equal(t, "ignorable", LineIgnorable.String())
	assert.Equal(t, "key-value", LineKeyValue.String())
	assert.Equal(t, "range-start", LineRangeStart.String())
	assert.Equal(t, "data-row", LineDataRow.String())
}

func testClassify(t *testing.T, cls *Classifier, line string, exp LineType) {
	assert.Equal(t, exp, cls.Classify(line), "line=%q", line)
}
