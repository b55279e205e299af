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
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"
)

var (
	xqlLexer = lexer.Must(newReDefinition(`(\s+)` +
		`|(?P<Keyword>(?i)SELECT|SHOW|RANGES|META|FORMAT|WHERE|OFFSET|LIMIT|AND|OR|NOT|LIKE|CONTAINS|PREFIX|SUFFIX)` +
		`|(?P<Ident>[a-zA-Z_][a-zA-Z0-9_]*(:[a-zA-Z0-9_\-.]+)?)` +
		`|(?P<String>"([^\\"]|\\.)*"|'([^\\']|\\.)*')` +
		`|(?P<Number>[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?)` +
		`|(?P<Operator>!=|<=|>=|[=<>()])`,
	))

	parserStatement = participle.MustBuild(
		&Statement{},
		participle.Lexer(xqlLexer),
		participle.Unquote("String"),
		participle.CaseInsensitive("Keyword"),
	)

	parserExpr = participle.MustBuild(
		&Expression{},
		participle.Lexer(xqlLexer),
		participle.Unquote("String"),
		participle.CaseInsensitive("Keyword"),
	)
)

const (
	CMP_CONTAINS   = "CONTAINS"
	CMP_HAS_PREFIX = "PREFIX"
	CMP_HAS_SUFFIX = "SUFFIX"
	CMP_LIKE       = "LIKE"
)

// operands names
const (
	OPND_POINTS = "points"
	OPND_INDEX  = "index"
	OPND_XSTART = "xstart"
	OPND_XSTEP  = "xstep"
	OPND_XEND   = "xend"
	OPND_META   = "meta:"
)

type (
	Int int64

	Statement struct {
		Select *Select `( @@`
		Show   *Show   `| @@ )`
	}

	Select struct {
		Format *string     `"SELECT" ("FORMAT" @String)?`
		Where  *Expression `("WHERE" @@)?`
		Offset *Int        `("OFFSET" @Number)?`
		Limit  *Int        `("LIMIT" @Number)?`
	}

	Show struct {
		Ranges *ShowRanges `"SHOW" ( @@`
		Meta   bool        `| @"META" )`
	}

	ShowRanges struct {
		Where  *Expression `"RANGES" ("WHERE" @@)?`
		Offset *Int        `("OFFSET" @Number)?`
		Limit  *Int        `("LIMIT" @Number)?`
	}

	Expression struct {
		Or []*OrCondition `@@ { "OR" @@ }`
	}

	OrCondition struct {
		And []*XCondition `@@ { "AND" @@ }`
	}

	XCondition struct {
		Not  bool        ` [@"NOT"] `
		Cond *Condition  `( @@`
		Expr *Expression `| "(" @@ ")")`
	}

	Condition struct {
		Operand string `@Ident`
		Op      string `@("<"|">"|">="|"<="|"!="|"="|"CONTAINS"|"PREFIX"|"SUFFIX"|"LIKE")`
		Value   string `(@String|@Number|@Ident)`
	}
)

func (i *Int) Capture(values []string) error {
	v, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("expecting positive integer, but %d", v)
	}
	*i = Int(v)
	return nil
}

// Parse parses the xql statement
func Parse(xql string) (*Statement, error) {
	st := &Statement{}
	err := parserStatement.ParseString(xql, st)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// ParseExpr parses the range expression. It returns nil, if the where is
// empty.
func ParseExpr(where string) (*Expression, error) {
	if len(strings.TrimSpace(where)) == 0 {
		return nil, nil
	}

	exp := &Expression{}
	err := parserExpr.ParseString(where, exp)
	if err != nil {
		return nil, err
	}
	return exp, nil
}

//===================== String() =====================

func (st *Statement) String() string {
	if st.Select != nil {
		return st.Select.String()
	}
	if st.Show != nil {
		return st.Show.String()
	}
	return ""
}

func (s *Select) String() string {
	var sb strings.Builder
	sb.WriteString("SELECT")
	if s.Format != nil {
		sb.WriteString(" FORMAT ")
		sb.WriteString(strconv.Quote(*s.Format))
	}
	writeTail(&sb, s.Where, s.Offset, s.Limit)
	return sb.String()
}

func (s *Show) String() string {
	if s.Meta {
		return "SHOW META"
	}
	var sb strings.Builder
	sb.WriteString("SHOW RANGES")
	if s.Ranges != nil {
		writeTail(&sb, s.Ranges.Where, s.Ranges.Offset, s.Ranges.Limit)
	}
	return sb.String()
}

func writeTail(sb *strings.Builder, where *Expression, offset, limit *Int) {
	if where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(where.String())
	}
	if offset != nil {
		fmt.Fprintf(sb, " OFFSET %d", *offset)
	}
	if limit != nil {
		fmt.Fprintf(sb, " LIMIT %d", *limit)
	}
}

func (e *Expression) String() string {
	ors := make([]string, len(e.Or))
	for i, oc := range e.Or {
		ors[i] = oc.String()
	}
	return strings.Join(ors, " OR ")
}

func (oc *OrCondition) String() string {
	ands := make([]string, len(oc.And))
	for i, xc := range oc.And {
		ands[i] = xc.String()
	}
	return strings.Join(ands, " AND ")
}

func (xc *XCondition) String() string {
	var res string
	if xc.Expr != nil {
		res = "(" + xc.Expr.String() + ")"
	} else {
		res = xc.Cond.String()
	}
	if xc.Not {
		res = "NOT " + res
	}
	return res
}

func (c *Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Operand, strings.ToUpper(c.Op), strconv.Quote(c.Value))
}
