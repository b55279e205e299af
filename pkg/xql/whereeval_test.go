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

package xql

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xyrange/xyrange/pkg/model"
)

func TestWhereExpGeneral(t *testing.T) {
	r := model.NewRange()
	r.XStart = 10
	r.XStep = 0.5
	r.Meta.Add("DRIVE", "COUPLED")
	r.Meta.Add("SAMPLE", "quartz")
	r.AddY(1, 2, 3)

	testWhereExp(t, "", 0, &r, true)
	testWhereExp(t, "points = 3", 0, &r, true)
	testWhereExp(t, "points > 3", 0, &r, false)
	testWhereExp(t, "POINTS >= 3 and xstart < 10.5", 0, &r, true)
	testWhereExp(t, "xstep != 0.5", 0, &r, false)
	testWhereExp(t, "xend = 11", 0, &r, true)
	testWhereExp(t, "index = 2", 2, &r, true)
	testWhereExp(t, "index <= 1", 2, &r, false)
	testWhereExp(t, "meta:DRIVE = COUPLED", 0, &r, true)
	testWhereExp(t, "meta:drive = COUPLED", 0, &r, false)
	testWhereExp(t, "meta:DRIVE = coupled", 0, &r, false)
	testWhereExp(t, "meta:SAMPLE like 'qu*'", 0, &r, true)
	testWhereExp(t, "meta:SAMPLE contains art", 0, &r, true)
	testWhereExp(t, "meta:SAMPLE prefix art", 0, &r, false)
	testWhereExp(t, "meta:SAMPLE suffix rtz", 0, &r, true)
	testWhereExp(t, "meta:SAMPLE > p and meta:SAMPLE < r", 0, &r, true)
	testWhereExp(t, "meta:NONE = ''", 0, &r, true)
	testWhereExp(t, "meta:NONE != ''", 0, &r, false)
	testWhereExp(t, "not points = 3 or meta:DRIVE = COUPLED", 0, &r, true)
	testWhereExp(t, "not (points = 3 or meta:DRIVE = COUPLED)", 0, &r, false)
	testWhereExp(t, "points = 0 or points = 1 or points = 3", 0, &r, true)
}

func TestWhereExpErrors(t *testing.T) {
	testWhereExpErr(t, "points = abc")
	testWhereExpErr(t, "points like 1")
	testWhereExpErr(t, "xstart contains 1")
	testWhereExpErr(t, "temperature = 1")
	testWhereExpErr(t, "meta:A like '['")
	testWhereExpErr(t, "points =")
}

func TestRunShowMeta(t *testing.T) {
	testRun(t, "show meta", "SOURCE: instrumentA\nWL1: 1.54056\n")
}

func TestRunShowRanges(t *testing.T) {
	testRun(t, "show ranges", "#0: points=3, x=[10..11], step=0.5, meta={DRIVE=COUPLED}\n"+
		"#1: points=0, x=[0..0], step=1\n"+
		"#2: points=2, x=[1..3], step=2, meta={DRIVE=DETECTOR}\n")
	testRun(t, "show ranges where points > 0 offset 1", "#2: points=2, x=[1..3], step=2, meta={DRIVE=DETECTOR}\n")
	testRun(t, "show ranges limit 1", "#0: points=3, x=[10..11], step=0.5, meta={DRIVE=COUPLED}\n")
	testRun(t, "show ranges limit 0", "")
}

func TestRunSelect(t *testing.T) {
	testRun(t, "select", "10\t1\n10.5\t2\n11\t3\n1\t5\n3\t6\n")
	testRun(t, "select format '{range}:{i} ' where meta:DRIVE = DETECTOR", "2:0 2:1 ")
	testRun(t, "select format '{y},' offset 2 limit 2", "3,5,")
	testRun(t, "select format '{y},' offset 10", "")
	testRun(t, "select format '{y} {filemeta:SOURCE}\\n' where index = 0 limit 1", "1 instrumentA\n")
}

func TestRunErrors(t *testing.T) {
	var buf bytes.Buffer
	ds := testDataset()
	assert.Error(t, Run("select format '{nope}'", ds, &buf))
	assert.Error(t, Run("select where nope = 1", ds, &buf))
	assert.Error(t, Run("drop ranges", ds, &buf))
	assert.Error(t, Execute(&Statement{}, ds, &buf))
	assert.Equal(t, 0, buf.Len())
}

func testRun(t *testing.T, xql, exp string) {
	var buf bytes.Buffer
	assert.NoError(t, Run(xql, testDataset(), &buf))
	assert.Equal(t, exp, buf.String(), "xql=%s", xql)
}

func testDataset() *model.Dataset {
	ds := &model.Dataset{}
	ds.Meta.Add("SOURCE", "instrumentA")
	ds.Meta.Add("WL1", "1.54056")

	r := model.NewRange()
	r.XStart = 10
	r.XStep = 0.5
	r.Meta.Add("DRIVE", "COUPLED")
	r.AddY(1, 2, 3)
	ds.Ranges = append(ds.Ranges, r, model.NewRange())

	r = model.NewRange()
	r.XStart = 1
	r.XStep = 2
	r.Meta.Add("DRIVE", "DETECTOR")
	r.AddY(5, 6)
	ds.Ranges = append(ds.Ranges, r)
	return ds
}

func testWhereExp(t *testing.T, exp string, idx int, r *model.Range, expRes bool) {
	wef, err := BuildWhereExpFunc(exp)
	if err != nil {
		t.Fatal("the expression '", exp, "' must be compiled, but err=", err)
	}
	if wef(idx, r) != expRes {
		t.Fatal("Expected ", expRes, " for '", exp, "' expression, but got ", !expRes)
	}
}

func testWhereExpErr(t *testing.T, exp string) {
	_, err := BuildWhereExpFunc(exp)
	assert.Error(t, err, "exp=%s", exp)
}
