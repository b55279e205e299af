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
)

func TestRangeDefaults(t *testing.T) {
	r := NewRange()
	assert.Equal(t, 0.0, r.XStart)
	assert.Equal(t, 1.0, r.XStep)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0.0, r.XEnd())
	assert.Equal(t, 0, r.Meta.Len())
}

func TestRangeX(t *testing.T) {
	r := NewRange()
	r.XStart = 10
	r.XStep = 0.5
	r.AddY(3, 1, 2)
	r.AddY(1)

	assert.Equal(t, []float64{3, 1, 2, 1}, r.Y)
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, 10.0, r.X(0))
	assert.Equal(t, 11.0, r.X(2))
	assert.Equal(t, 11.5, r.XEnd())
}

func TestDataset(t *testing.T) {
	var ds Dataset
	assert.True(t, ds.Empty())
	assert.Equal(t, 0, ds.PointsCount())
	assert.Nil(t, ds.Range(0))

	r := NewRange()
	r.AddY(1, 2)
	ds.Ranges = append(ds.Ranges, r, NewRange())
	ds.Ranges[1].AddY(5)

	assert.False(t, ds.Empty())
	assert.Equal(t, 3, ds.PointsCount())
	assert.Equal(t, []float64{5}, ds.Range(1).Y)
	assert.Nil(t, ds.Range(-1))
	assert.Nil(t, ds.Range(2))

	ds.Range(0).Meta.Add("a", "b")
	assert.Equal(t, "b", ds.Ranges[0].Meta.Value("a"))
}

func TestDatasetJson(t *testing.T) {
	var ds Dataset
	ds.Meta.Add("SOURCE", "instrumentA")
	r := NewRange()
	r.XStart = 10
	r.XStep = 0.5
	r.AddY(1, 2)
	ds.Ranges = append(ds.Ranges, r)

	bb, err := json.Marshal(&ds)
	assert.NoError(t, err)
	assert.Equal(t, `{"meta":{"SOURCE":"instrumentA"},"ranges":[{"meta":{},"xStart":10,"xStep":0.5,"y":[1,2]}]}`, string(bb))
}
