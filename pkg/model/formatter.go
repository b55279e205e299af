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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type (
	pointField struct {
		typ   int
		value string
	}

	// PointFormatter formats points of a dataset using a template. It is used
	// for printing ranges in text form and in xql SELECT statements.
	PointFormatter struct {
		fields []pointField
	}
)

const (
	pntFldX = iota
	pntFldY
	pntFldIdx
	pntFldRange
	pntFldMeta
	pntFldFileMeta
	pntFldConst
)

// DefaultPointFormat is the template used when no other one is provided
const DefaultPointFormat = "{x}\t{y}\n"

// NewPointFormatter returns PointFormatter for the format string provided or
// returns an error if any.
//
// Special constructions must be placed into curly braces:
// {x}	- x coordinate of the point
// {x:<printf verb>}	- x coordinate formatted with the verb, like {x:%.3f}
// {y}	- the measured value
// {y:<printf verb>}	- the measured value formatted with the verb
// {i}	- index of the point within its range
// {range}	- index of the range within the dataset
// {meta:<key>}	- value of the range metadata key
// {filemeta:<key>}	- value of the file metadata key
//
// Example:
//	"{range};{x:%.2f};{y}\n" prints semicolon separated values, one point per line
func NewPointFormatter(fstr string) (*PointFormatter, error) {
	fields := make([]pointField, 0, 10)
	state := 0
	startIdx := 0
	for i, r := range fstr {
		switch state {
		case 0:
			if r == '{' {
				if i-startIdx > 0 {
					fields = append(fields, pointField{pntFldConst, fstr[startIdx:i]})
				}
				state = 1
				startIdx = i + 1
			}
		case 1:
			if r == '}' {
				val := strings.TrimSpace(fstr[startIdx:i])
				cv := strings.ToLower(val)
				switch {
				case cv == "x":
					fields = append(fields, pointField{pntFldX, ""})
				case strings.HasPrefix(cv, "x:"):
					fields = append(fields, pointField{pntFldX, val[2:]})
				case cv == "y":
					fields = append(fields, pointField{pntFldY, ""})
				case strings.HasPrefix(cv, "y:"):
					fields = append(fields, pointField{pntFldY, val[2:]})
				case cv == "i":
					fields = append(fields, pointField{pntFldIdx, ""})
				case cv == "range":
					fields = append(fields, pointField{pntFldRange, ""})
				case strings.HasPrefix(cv, "meta:"):
					fields = append(fields, pointField{pntFldMeta, val[5:]})
				case strings.HasPrefix(cv, "filemeta:"):
					fields = append(fields, pointField{pntFldFileMeta, val[9:]})
				default:
					return nil, fmt.Errorf("unknown field {%s}. Expected values are: {x}, {x:<format>}, {y}, {y:<format>}, {i}, {range}, {meta:<key>}, {filemeta:<key>}", val)
				}
				startIdx = i + 1
				state = 0
			}
		}
	}

	if state != 0 {
		return nil, fmt.Errorf("unexpected end of string, '}' is not found.")
	}

	if startIdx < len(fstr) {
		fields = append(fields, pointField{pntFldConst, fstr[startIdx:]})
	}

	return &PointFormatter{fields: fields}, nil
}

// Format returns the i-th point of the range ri formatted. Indexes out of
// bounds give empty values for the point related fields.
func (pf *PointFormatter) Format(ds *Dataset, ri, i int) string {
	var buf strings.Builder
	pf.format(&buf, ds, ri, i)
	return buf.String()
}

func (pf *PointFormatter) format(buf *strings.Builder, ds *Dataset, ri, i int) {
	r := ds.Range(ri)
	for _, ff := range pf.fields {
		switch ff.typ {
		case pntFldX:
			if r != nil {
				writeFloat(buf, r.X(i), ff.value)
			}
		case pntFldY:
			if r != nil && i >= 0 && i < len(r.Y) {
				writeFloat(buf, r.Y[i], ff.value)
			}
		case pntFldIdx:
			buf.WriteString(strconv.Itoa(i))
		case pntFldRange:
			buf.WriteString(strconv.Itoa(ri))
		case pntFldMeta:
			if r != nil {
				buf.WriteString(r.Meta.Value(ff.value))
			}
		case pntFldFileMeta:
			buf.WriteString(ds.Meta.Value(ff.value))
		case pntFldConst:
			buf.WriteString(ff.value)
		}
	}
}

func writeFloat(buf *strings.Builder, v float64, format string) {
	if format == "" {
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		return
	}
	fmt.Fprintf(buf, format, v)
}

// WriteText writes the dataset to w in text form. Metadata goes first as
// "# key: value" lines, then every range is written as a "# range <n>"
// header, its metadata and its points formatted by pf. If pf is nil the
// DefaultPointFormat is used.
func WriteText(w io.Writer, ds *Dataset, pf *PointFormatter) error {
	if pf == nil {
		pf, _ = NewPointFormatter(DefaultPointFormat)
	}
	bw := bufio.NewWriter(w)
	writeMetaText(bw, "", &ds.Meta)
	var sb strings.Builder
	for ri := range ds.Ranges {
		r := &ds.Ranges[ri]
		fmt.Fprintf(bw, "# range %d\n", ri)
		writeMetaText(bw, "  ", &r.Meta)
		for i := range r.Y {
			sb.Reset()
			pf.format(&sb, ds, ri, i)
			bw.WriteString(sb.String())
		}
	}
	return bw.Flush()
}

func writeMetaText(w *bufio.Writer, indent string, m *Meta) {
	for _, e := range m.entries {
		fmt.Fprintf(w, "# %s%s: %s\n", indent, e.Key, e.Value)
	}
}
