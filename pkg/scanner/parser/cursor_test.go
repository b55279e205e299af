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
	"testing"
	"testing/iotest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestLineRing(t *testing.T) {
	lr := newLineRing(3)
	assert.Equal(t, 0, lr.len())
	assert.Equal(t, 3, lr.capacity())

	lr.push("a")
	lr.push("b")
	assert.Equal(t, 2, lr.len())
	assert.Equal(t, "a", lr.at(0))
	assert.Equal(t, "b", lr.at(1))

	lr.push("c")
	lr.push("d")
	lr.push("e")
	assert.Equal(t, 3, lr.len())
	assert.Equal(t, "c", lr.at(0))
	assert.Equal(t, "e", lr.at(2))

	assert.Panics(t, func() { lr.at(3) })
	assert.Panics(t, func() { newLineRing(0) })
}

func TestCursorNextLine(t *testing.T) {
	c := testCursor("a\r\nb\n\nc", 2)
	testNextLines(t, c, "a", "b", "", "c")
	_, ok := c.NextLine()
	assert.False(t, ok)
	_, ok = c.NextLine()
	assert.False(t, ok)
	assert.NoError(t, c.Err())
	assert.Equal(t, 4, c.LinesRead())
}

func TestCursorEmpty(t *testing.T) {
	c := testCursor("", 2)
	_, ok := c.NextLine()
	assert.False(t, ok)
	assert.False(t, c.SkipIgnorable())
	assert.NoError(t, c.Err())
	assert.Equal(t, 0, c.LinesRead())
}

func TestCursorMarkReset(t *testing.T) {
	c := testCursor("a\nb\nc\nd\n", 2)
	m0 := c.Mark()
	testNextLines(t, c, "a")
	assert.NoError(t, c.Reset(m0))
	testNextLines(t, c, "a", "b")

	m2 := c.Mark()
	testNextLines(t, c, "c")
	assert.NoError(t, c.Reset(m2))
	testNextLines(t, c, "c")

	// "a" is out of the window already
	assert.Error(t, c.Reset(m0))
	assert.Equal(t, Position(3), c.Mark())
	testNextLines(t, c, "d")

	// position in the future
	assert.Error(t, c.Reset(Position(10)))
}

func TestCursorPeek(t *testing.T) {
	c := testCursor("a\nb", 1)
	l, ok := c.Peek()
	assert.True(t, ok)
	assert.Equal(t, "a", l)
	l, ok = c.Peek()
	assert.True(t, ok)
	assert.Equal(t, "a", l)
	testNextLines(t, c, "a", "b")
	_, ok = c.Peek()
	assert.False(t, ok)
}

func TestCursorSkipIgnorable(t *testing.T) {
	c := testCursor("\n; comment\n  \nKEY=1\n\n;\n", 1)
	assert.True(t, c.SkipIgnorable())
	assert.True(t, c.SkipIgnorable())
	testNextLines(t, c, "KEY=1")
	assert.False(t, c.SkipIgnorable())
	assert.Equal(t, 6, c.LinesRead())
}

func TestCursorReadError(t *testing.T) {
	c := NewCursor(iotest.TimeoutReader(strings.NewReader("a\nb")), NewClassifier(NewDefaultConfig()), 2)
	testNextLines(t, c, "a")
	_, ok := c.NextLine()
	assert.False(t, ok)
	assert.Error(t, c.Err())
	assert.Equal(t, iotest.ErrTimeout, errors.Cause(c.Err()))

	// the error is sticky, but lines in the window are still available
	assert.NoError(t, c.Reset(Position(0)))
	testNextLines(t, c, "a")
	_, ok = c.NextLine()
	assert.False(t, ok)
}

func testCursor(s string, window int) *Cursor {
	return NewCursor(strings.NewReader(s), NewClassifier(NewDefaultConfig()), window)
}

func testNextLines(t *testing.T, c *Cursor, exp ...string) {
	for _, e := range exp {
		l, ok := c.NextLine()
		assert.True(t, ok)
		assert.Equal(t, e, l)
	}
}
