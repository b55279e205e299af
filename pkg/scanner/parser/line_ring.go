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

type (
	// lineRing keeps last lines read by the cursor. When the ring is full,
	// pushing a new line drops the oldest one.
	lineRing struct {
		v []string
		h int
		n int
	}
)

func newLineRing(size int) *lineRing {
	if size < 1 {
		panic("size must be positive")
	}
	return &lineRing{v: make([]string, size)}
}

// push places s at the tail, dropping the head element if the ring is full
func (lr *lineRing) push(s string) {
	if lr.n == len(lr.v) {
		lr.h = lr.idx(lr.h + 1)
	} else {
		lr.n++
	}
	lr.v[lr.idx(lr.h+lr.n-1)] = s
}

// at returns the element i counting from the head. Will panic if the index
// is out of bounds
func (lr *lineRing) at(i int) string {
	if i < 0 || i >= lr.n {
		panic("Index out of bounds")
	}
	return lr.v[lr.idx(lr.h+i)]
}

func (lr *lineRing) len() int {
	return lr.n
}

func (lr *lineRing) capacity() int {
	return len(lr.v)
}

func (lr *lineRing) idx(i int) int {
	if i >= len(lr.v) {
		return i - len(lr.v)
	}
	return i
}
