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
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

type (
	// LineType is the kind of a line of an instrument file
	LineType int

	// Classifier detects types of lines and extracts keys, values and numbers
	// from them according to the grammar. Classifier has no state except the
	// grammar, so it can be shared between parsers.
	Classifier struct {
		tag      string
		metaSep  string
		dataSeps string
		comments string
		marker   string
	}
)

const (
	LineUnknown LineType = iota
	LineIgnorable
	LineKeyValue
	LineRangeStart
	LineDataRow

	cLineTypes = 5
)

func (lt LineType) String() string {
	switch lt {
	case LineIgnorable:
		return "ignorable"
	case LineKeyValue:
		return "key-value"
	case LineRangeStart:
		return "range-start"
	case LineDataRow:
		return "data-row"
	}
	return "unknown"
}

// NewClassifier returns the Classifier for the grammar. The grammar is
// expected to be checked already.
func NewClassifier(cfg *Config) *Classifier {
	return &Classifier{
		tag:      cfg.RangeStartTag,
		metaSep:  cfg.MetaSeparator,
		dataSeps: cfg.DataSeparators,
		comments: cfg.CommentPrefixes,
		marker:   cfg.MarkerPrefix,
	}
}

// Classify returns the type of the line. Rules are applied in the order:
// range start, ignorable, key-value, data row. A line which matches none of
// them is LineUnknown.
func (c *Classifier) Classify(line string) LineType {
	if c.IsRangeStart(line) {
		return LineRangeStart
	}
	if c.IsIgnorable(line) {
		return LineIgnorable
	}
	if _, _, ok := c.KeyValue(line); ok {
		return LineKeyValue
	}
	if _, ok := parseNumber(c.firstToken(line)); ok {
		return LineDataRow
	}
	return LineUnknown
}

// IsRangeStart returns whether the line starts with the range start tag
func (c *Classifier) IsRangeStart(line string) bool {
	return strings.HasPrefix(line, c.tag)
}

// IsIgnorable returns whether the line is blank or a comment
func (c *Classifier) IsIgnorable(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(line)
	return c.comments != "" && strings.ContainsRune(c.comments, r)
}

// KeyValue splits the line by the first meta separator. Key and value are
// trimmed, the key must not be empty.
func (c *Classifier) KeyValue(line string) (key, value string, ok bool) {
	idx := strings.Index(line, c.metaSep)
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+len(c.metaSep):]), true
}

// StripMarker removes the marker prefix from the key, if it is there
func (c *Classifier) StripMarker(key string) string {
	if c.marker != "" {
		return strings.TrimPrefix(key, c.marker)
	}
	return key
}

// Numbers appends to ys the leading numbers of a data row. Data separators
// are treated as white spaces. Parsing stops at the first token which is
// not a number, the rest of the line is ignored.
func (c *Classifier) Numbers(line string, ys []float64) []float64 {
	for _, tkn := range strings.Fields(c.normalize(line)) {
		f, ok := parseNumber(tkn)
		if !ok {
			break
		}
		ys = append(ys, f)
	}
	return ys
}

func (c *Classifier) firstToken(line string) string {
	ff := strings.Fields(c.normalize(line))
	if len(ff) == 0 {
		return ""
	}
	return ff[0]
}

func (c *Classifier) normalize(line string) string {
	if c.dataSeps == "" || !strings.ContainsAny(line, c.dataSeps) {
		return line
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(c.dataSeps, r) {
			return ' '
		}
		return r
	}, line)
}

// parseNumber accepts decimal floating point numbers only, so words like
// "NaN" or "Inf" are not numbers.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	switch b := s[0]; {
	case b >= '0' && b <= '9', b == '+', b == '-', b == '.':
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
