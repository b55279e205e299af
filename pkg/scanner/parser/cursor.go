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
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

type (
	// Cursor reads lines from a stream one by one and allows to step back.
	// A position captured by Mark can be passed to Reset while the line at
	// the position is still in the window of recently read lines, so a caller
	// can look at a line and give it back if the line belongs to somebody
	// else.
	//
	// Like bufio.Scanner, the Cursor reports end of the stream and read
	// errors by returning false, the error is available via Err().
	Cursor struct {
		r    *bufio.Reader
		cls  *Classifier
		ring *lineRing
		read int // lines read from r so far
		pos  int // index of the line NextLine returns
		eof  bool
		err  error
	}

	// Position is an index of a line in the stream, counting from 0
	Position int
)

// NewCursor returns Cursor over r. The window is the number of last read
// lines which the cursor can be reset to. The cls is used for skipping
// ignorable lines.
func NewCursor(r io.Reader, cls *Classifier, window int) *Cursor {
	if window < 1 {
		window = 1
	}
	return &Cursor{
		r:    bufio.NewReader(r),
		cls:  cls,
		ring: newLineRing(window),
	}
}

// NextLine returns the next line without the line terminator. It returns
// false when no more lines are available, due to end of the stream or to
// a read error.
func (c *Cursor) NextLine() (string, bool) {
	if c.pos < c.read {
		line := c.ring.at(c.pos - (c.read - c.ring.len()))
		c.pos++
		return line, true
	}

	if c.eof || c.err != nil {
		return "", false
	}

	line, err := c.r.ReadString('\n')
	switch err {
	case nil:
	case io.EOF:
		c.eof = true
		if len(line) == 0 {
			return "", false
		}
	default:
		c.err = errors.Wrapf(err, "could not read line %d", c.read+1)
		return "", false
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	c.ring.push(line)
	c.read++
	c.pos++
	return line, true
}

// Peek returns the next line, but doesn't move the cursor
func (c *Cursor) Peek() (string, bool) {
	m := c.Mark()
	line, ok := c.NextLine()
	if ok {
		// the line has just been read, so it is in the window
		_ = c.Reset(m)
	}
	return line, ok
}

// Mark returns the current position of the cursor
func (c *Cursor) Mark() Position {
	return Position(c.pos)
}

// Reset moves the cursor to the position p, so NextLine returns the line at p
// again. The position must be in the window of recently read lines, or
// an error is returned and the cursor is not moved.
func (c *Cursor) Reset(p Position) error {
	oldest := c.read - c.ring.len()
	if int(p) < oldest || int(p) > c.read {
		return errors.Errorf("could not reset to line %d, the available lines are [%d..%d]", p, oldest, c.read)
	}
	c.pos = int(p)
	return nil
}

// SkipIgnorable skips blank and comment lines. It returns true if the cursor
// stays in front of a not ignorable line, or false if the stream was
// exhausted.
func (c *Cursor) SkipIgnorable() bool {
	for {
		m := c.Mark()
		line, ok := c.NextLine()
		if !ok {
			return false
		}
		if !c.cls.IsIgnorable(line) || c.cls.IsRangeStart(line) {
			_ = c.Reset(m)
			return true
		}
	}
}

// LinesRead returns the number of lines read from the underlying stream
func (c *Cursor) LinesRead() int {
	return c.read
}

// Err returns the first read error, end of the stream is not an error
func (c *Cursor) Err() error {
	return c.err
}
