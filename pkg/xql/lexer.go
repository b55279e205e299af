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
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"regexp"
	"unicode/utf8"

	"github.com/alecthomas/participle/lexer"
)

type (
	// reDefinition is a lexer.Definition where every named group of the
	// regular expression is a token type. The longest match wins, so an
	// identifier like "metadata" is not split into the keyword "META" and
	// the rest.
	reDefinition struct {
		re      *regexp.Regexp
		symbols map[string]rune
	}

	reLexer struct {
		def *reDefinition
		pos lexer.Position
		b   []byte
	}
)

func newReDefinition(pattern string) (*reDefinition, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	re.Longest()

	symbols := map[string]rune{"EOF": lexer.EOF}
	for i, name := range re.SubexpNames() {
		if i > 0 && name != "" {
			symbols[name] = lexer.EOF - rune(i)
		}
	}
	return &reDefinition{re: re, symbols: symbols}, nil
}

func (d *reDefinition) Lex(r io.Reader) (lexer.Lexer, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &reLexer{
		def: d,
		pos: lexer.Position{Filename: lexer.NameOfReader(r), Line: 1, Column: 1},
		b:   b,
	}, nil
}

func (d *reDefinition) Symbols() map[string]rune {
	return d.symbols
}

func (l *reLexer) Next() (lexer.Token, error) {
	names := l.def.re.SubexpNames()
	for len(l.b) > 0 {
		m := l.def.re.FindSubmatchIndex(l.b)
		if m == nil || m[0] != 0 {
			rn, _ := utf8.DecodeRune(l.b)
			return lexer.Token{}, fmt.Errorf("invalid token %q at %s", rn, l.pos)
		}

		tkn := lexer.Token{Pos: l.pos, Value: string(l.b[:m[1]])}
		l.advance(l.b[:m[1]])
		l.b = l.b[m[1]:]

		for i := 1; i < len(names); i++ {
			if m[2*i] != -1 && names[i] != "" {
				tkn.Type = lexer.EOF - rune(i)
				return tkn, nil
			}
		}
		// unnamed group, white spaces
	}
	return lexer.EOFToken(l.pos), nil
}

func (l *reLexer) advance(match []byte) {
	l.pos.Offset += len(match)
	lines := bytes.Count(match, []byte("\n"))
	if lines == 0 {
		l.pos.Column += utf8.RuneCount(match)
		return
	}
	l.pos.Line += lines
	l.pos.Column = utf8.RuneCount(match[bytes.LastIndexByte(match, '\n'):])
}
