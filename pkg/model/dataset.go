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

// Dataset is the result of parsing one instrument file: the file metadata
// and the ranges in file order. The dataset owns its ranges, callers should
// address them by index.
type Dataset struct {
	Meta   Meta    `json:"meta"`
	Ranges []Range `json:"ranges"`
}

// Range returns pointer to the i-th range, or nil if i is out of bounds. The
// pointer must not be kept after the Ranges slice is modified.
func (ds *Dataset) Range(i int) *Range {
	if i < 0 || i >= len(ds.Ranges) {
		return nil
	}
	return &ds.Ranges[i]
}

// Empty returns true if the dataset has no ranges. Such a dataset is valid,
// it is up to the caller to decide whether it is acceptable.
func (ds *Dataset) Empty() bool {
	return len(ds.Ranges) == 0
}

// PointsCount returns the total number of points in all ranges
func (ds *Dataset) PointsCount() int {
	res := 0
	for i := range ds.Ranges {
		res += len(ds.Ranges[i].Y)
	}
	return res
}
