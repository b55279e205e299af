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

const (
	// DefaultXStart is the x of the first point if the range doesn't say otherwise
	DefaultXStart = 0.0
	// DefaultXStep is the distance between two neighbour points by default
	DefaultXStep = 1.0
)

// Range is a series of measured values with a fixed x step. The i-th value
// of Y has x = XStart + i*XStep. Values are kept in the order they were
// read and are never sorted or deduplicated.
type Range struct {
	Meta   Meta      `json:"meta"`
	XStart float64   `json:"xStart"`
	XStep  float64   `json:"xStep"`
	Y      []float64 `json:"y"`
}

// NewRange returns an empty range with the default x start and x step
func NewRange() Range {
	return Range{XStart: DefaultXStart, XStep: DefaultXStep}
}

// Len returns number of points in the range
func (r *Range) Len() int {
	return len(r.Y)
}

// X returns the x coordinate of the i-th point
func (r *Range) X(i int) float64 {
	return r.XStart + float64(i)*r.XStep
}

// XEnd returns x of the last point, or XStart for an empty range
func (r *Range) XEnd() float64 {
	if len(r.Y) == 0 {
		return r.XStart
	}
	return r.X(len(r.Y) - 1)
}

// AddY appends values to the end of the range
func (r *Range) AddY(y ...float64) {
	r.Y = append(r.Y, y...)
}
