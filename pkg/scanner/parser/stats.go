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
	"github.com/xyrange/xyrange/pkg/utils"
)

type (
	// Stats struct contains information about the last parsed stream
	Stats struct {
		Lines       int64
		Ranges      int64
		Points      int64
		MetaEntries int64
		LineTypes   map[string]int64
	}

	// lineCounter counts consumed lines by their type. Every line is consumed
	// exactly once, either by the parser or by the cursor while skipping, so
	// ignorable lines are what remains from the total.
	lineCounter [cLineTypes]int64
)

func (lc *lineCounter) consumed(lt LineType) {
	lc[lt]++
}

func (lc *lineCounter) stats(lines int) map[string]int64 {
	res := make(map[string]int64, cLineTypes)
	total := int64(0)
	for lt := LineType(0); lt < cLineTypes; lt++ {
		if lt == LineIgnorable {
			continue
		}
		res[lt.String()] = lc[lt]
		total += lc[lt]
	}
	res[LineIgnorable.String()] = int64(lines) - total
	return res
}

// Count returns number of lines of the type lt
func (s *Stats) Count(lt LineType) int64 {
	return s.LineTypes[lt.String()]
}

// Copy returns a deep copy of s
func (s *Stats) Copy() *Stats {
	res := *s
	res.LineTypes = make(map[string]int64, len(s.LineTypes))
	for k, v := range s.LineTypes {
		res.LineTypes[k] = v
	}
	return &res
}

func (s *Stats) String() string {
	return utils.ToJsonStr(s)
}
