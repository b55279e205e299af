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
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/xyrange/xyrange/pkg/model"
)

type (
	// window implements OFFSET and LIMIT
	window struct {
		skip int64
		left int64
	}
)

// Run parses the xql statement and executes it over the dataset. The result
// is written to w.
func Run(xql string, ds *model.Dataset, w io.Writer) error {
	st, err := Parse(xql)
	if err != nil {
		return err
	}
	return Execute(st, ds, w)
}

// Execute runs the statement over the dataset, the result is written to w
func Execute(st *Statement, ds *model.Dataset, w io.Writer) error {
	bw := bufio.NewWriter(w)
	var err error
	switch {
	case st.Select != nil:
		err = execSelect(st.Select, ds, bw)
	case st.Show != nil && st.Show.Meta:
		for _, e := range ds.Meta.Entries() {
			fmt.Fprintf(bw, "%s: %s\n", e.Key, e.Value)
		}
	case st.Show != nil:
		err = execShowRanges(st.Show.Ranges, ds, bw)
	default:
		err = fmt.Errorf("empty statement")
	}

	if err != nil {
		return err
	}
	return bw.Flush()
}

func execSelect(s *Select, ds *model.Dataset, w *bufio.Writer) error {
	fstr := model.DefaultPointFormat
	if s.Format != nil {
		fstr = *s.Format
	}
	pf, err := model.NewPointFormatter(fstr)
	if err != nil {
		return err
	}
	wef, err := BuildWhereExpFuncByExpression(s.Where)
	if err != nil {
		return err
	}

	win := newWindow(s.Offset, s.Limit)
	for ri := range ds.Ranges {
		r := &ds.Ranges[ri]
		if !wef(ri, r) {
			continue
		}
		for i := range r.Y {
			ok, done := win.next()
			if done {
				return nil
			}
			if ok {
				w.WriteString(pf.Format(ds, ri, i))
			}
		}
	}
	return nil
}

func execShowRanges(sr *ShowRanges, ds *model.Dataset, w *bufio.Writer) error {
	if sr == nil {
		sr = &ShowRanges{}
	}
	wef, err := BuildWhereExpFuncByExpression(sr.Where)
	if err != nil {
		return err
	}

	win := newWindow(sr.Offset, sr.Limit)
	for ri := range ds.Ranges {
		r := &ds.Ranges[ri]
		if !wef(ri, r) {
			continue
		}
		ok, done := win.next()
		if done {
			break
		}
		if ok {
			w.WriteString(RangeSummary(ri, r))
			w.WriteByte('\n')
		}
	}
	return nil
}

// RangeSummary returns one line description of the range
func RangeSummary(idx int, r *model.Range) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d: points=%d, x=[%g..%g], step=%g", idx, r.Len(), r.XStart, r.XEnd(), r.XStep)
	if r.Meta.Len() > 0 {
		sb.WriteString(", meta=")
		sb.WriteString(r.Meta.String())
	}
	return sb.String()
}

func newWindow(offset, limit *Int) *window {
	w := &window{left: math.MaxInt64}
	if offset != nil {
		w.skip = int64(*offset)
	}
	if limit != nil {
		w.left = int64(*limit)
	}
	return w
}

// next returns whether the current element is in the window and whether
// the window is over
func (w *window) next() (bool, bool) {
	if w.left <= 0 {
		return false, true
	}
	if w.skip > 0 {
		w.skip--
		return false, false
	}
	w.left--
	return true, false
}
