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
	"strings"

	"github.com/xyrange/xyrange/pkg/model"
)

type (
	// rangeParser builds one range at a time. It starts in rangeMeta state
	// reading the range metadata, goes to rangeData when the first data row
	// is met, and finishes in rangeDone when the next range start or end of
	// the stream is reached. No state is visited twice for one range.
	rangeParser struct {
		c   *Cursor
		cls *Classifier
		cfg *Config
		lc  *lineCounter
		row []float64 // numbers of the current data row
	}

	rangeState int
)

const (
	rangeMeta rangeState = iota
	rangeData
	rangeDone
)

// parse reads the next range into r. It returns false, if the stream is
// exhausted before the range start, r is not touched then.
func (rp *rangeParser) parse(r *model.Range) bool {
	if !rp.c.SkipIgnorable() {
		return false
	}

	// the range start line is a part of the range. Some formats (UXD) have
	// it in KEY=VALUE form, it goes to the range metadata then.
	m := rp.c.Mark()
	line, _ := rp.c.NextLine()
	if rp.cls.IsRangeStart(line) {
		rp.lc.consumed(LineRangeStart)
		if key, val, ok := rp.cls.KeyValue(line); ok {
			rp.addMeta(r, key, val)
		}
	} else {
		// a one line step back is always in the window, so Reset can't fail
		_ = rp.c.Reset(m)
	}

	state := rangeMeta
	for state != rangeDone {
		switch state {
		case rangeMeta:
			state = rp.onMeta(r)
		case rangeData:
			state = rp.onData(r)
		}
	}
	return true
}

func (rp *rangeParser) onMeta(r *model.Range) rangeState {
	if !rp.c.SkipIgnorable() {
		return rangeDone
	}

	m := rp.c.Mark()
	line, _ := rp.c.NextLine()
	lt := rp.cls.Classify(line)
	switch lt {
	case LineDataRow:
		_ = rp.c.Reset(m)
		return rangeData
	case LineRangeStart:
		// a range without data
		_ = rp.c.Reset(m)
		return rangeDone
	case LineKeyValue:
		key, val, _ := rp.cls.KeyValue(line)
		rp.addMeta(r, key, val)
	}
	rp.lc.consumed(lt)
	return rangeMeta
}

func (rp *rangeParser) onData(r *model.Range) rangeState {
	if !rp.c.SkipIgnorable() {
		return rangeDone
	}

	m := rp.c.Mark()
	line, _ := rp.c.NextLine()
	lt := rp.cls.Classify(line)
	switch lt {
	case LineRangeStart:
		_ = rp.c.Reset(m)
		return rangeDone
	case LineDataRow:
		rp.row = rp.cls.Numbers(line, rp.row[:0])
		r.AddY(rp.row...)
	}
	rp.lc.consumed(lt)
	return rangeData
}

// addMeta stores the key-value into the range metadata. Structural keys are
// compared before the marker is stripped and are stored as well. A structural
// value which is not a number leaves the field unchanged, unlike strtod based
// loaders which set it to 0.
func (rp *rangeParser) addMeta(r *model.Range, key, val string) {
	switch key {
	case rp.cfg.XStartKey:
		if f, ok := parseLeadingNumber(val); ok {
			r.XStart = f
		}
	case rp.cfg.XStepKey:
		if f, ok := parseLeadingNumber(val); ok {
			r.XStep = f
		}
	}
	r.Meta.Add(rp.cls.StripMarker(key), val)
}

// parseLeadingNumber parses the first word of s, so values with units
// like "10 deg" give 10
func parseLeadingNumber(s string) (float64, bool) {
	ff := strings.Fields(s)
	if len(ff) == 0 {
		return 0, false
	}
	return parseNumber(ff[0])
}
