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
	"path"
	"strconv"
	"strings"

	"github.com/xyrange/xyrange/pkg/model"
)

type (
	// WhereExpFunc returns true if the range with index idx matches the where
	// condition
	WhereExpFunc func(idx int, r *model.Range) bool

	whereExpFuncBuilder struct {
		wef WhereExpFunc
	}

	numOperandF func(idx int, r *model.Range) float64
)

var positiveWhereExpFunc = func(int, *model.Range) bool { return true }

// BuildWhereExpFunc builds WHERE condition by its human readable form like
// `points > 0 AND meta:DRIVE = COUPLED`
func BuildWhereExpFunc(wCond string) (WhereExpFunc, error) {
	exp, err := ParseExpr(wCond)
	if err != nil {
		return nil, err
	}
	return BuildWhereExpFuncByExpression(exp)
}

// BuildWhereExpFuncByExpression builds where function by the Expression provided
func BuildWhereExpFuncByExpression(exp *Expression) (WhereExpFunc, error) {
	if exp == nil {
		return positiveWhereExpFunc, nil
	}

	var web whereExpFuncBuilder
	if err := web.buildOrConds(exp.Or); err != nil {
		return nil, err
	}
	return web.wef, nil
}

func (web *whereExpFuncBuilder) buildOrConds(ocn []*OrCondition) error {
	if len(ocn) == 0 {
		web.wef = positiveWhereExpFunc
		return nil
	}

	if err := web.buildXConds(ocn[0].And); err != nil {
		return err
	}
	if len(ocn) == 1 {
		return nil
	}

	efd0 := web.wef
	if err := web.buildOrConds(ocn[1:]); err != nil {
		return err
	}
	efd1 := web.wef

	web.wef = func(idx int, r *model.Range) bool { return efd0(idx, r) || efd1(idx, r) }
	return nil
}

func (web *whereExpFuncBuilder) buildXConds(cn []*XCondition) error {
	if len(cn) == 0 {
		web.wef = positiveWhereExpFunc
		return nil
	}

	if err := web.buildXCond(cn[0]); err != nil {
		return err
	}
	if len(cn) == 1 {
		return nil
	}

	efd0 := web.wef
	if err := web.buildXConds(cn[1:]); err != nil {
		return err
	}
	efd1 := web.wef

	web.wef = func(idx int, r *model.Range) bool { return efd0(idx, r) && efd1(idx, r) }
	return nil
}

func (web *whereExpFuncBuilder) buildXCond(xc *XCondition) (err error) {
	if xc.Expr != nil {
		err = web.buildOrConds(xc.Expr.Or)
	} else {
		err = web.buildCond(xc.Cond)
	}
	if err != nil {
		return err
	}

	if xc.Not {
		efd1 := web.wef
		web.wef = func(idx int, r *model.Range) bool { return !efd1(idx, r) }
	}
	return nil
}

func (web *whereExpFuncBuilder) buildCond(cn *Condition) error {
	op := strings.ToLower(cn.Operand)
	switch op {
	case OPND_POINTS:
		return web.buildNumCond(cn, func(_ int, r *model.Range) float64 { return float64(r.Len()) })
	case OPND_INDEX:
		return web.buildNumCond(cn, func(idx int, _ *model.Range) float64 { return float64(idx) })
	case OPND_XSTART:
		return web.buildNumCond(cn, func(_ int, r *model.Range) float64 { return r.XStart })
	case OPND_XSTEP:
		return web.buildNumCond(cn, func(_ int, r *model.Range) float64 { return r.XStep })
	case OPND_XEND:
		return web.buildNumCond(cn, func(_ int, r *model.Range) float64 { return r.XEnd() })
	}

	if !strings.HasPrefix(op, OPND_META) || len(op) == len(OPND_META) {
		return fmt.Errorf("operand must be points, index, xstart, xstep, xend or meta:<key> with non-empty key, but %q", cn.Operand)
	}
	return web.buildMetaCond(cn, cn.Operand[len(OPND_META):])
}

func (web *whereExpFuncBuilder) buildNumCond(cn *Condition, opnd numOperandF) error {
	val, err := strconv.ParseFloat(cn.Value, 64)
	if err != nil {
		return fmt.Errorf("%s must be compared with a number, but %q", cn.Operand, cn.Value)
	}

	switch cn.Op {
	case "=":
		web.wef = func(idx int, r *model.Range) bool { return opnd(idx, r) == val }
	case "!=":
		web.wef = func(idx int, r *model.Range) bool { return opnd(idx, r) != val }
	case "<":
		web.wef = func(idx int, r *model.Range) bool { return opnd(idx, r) < val }
	case ">":
		web.wef = func(idx int, r *model.Range) bool { return opnd(idx, r) > val }
	case "<=":
		web.wef = func(idx int, r *model.Range) bool { return opnd(idx, r) <= val }
	case ">=":
		web.wef = func(idx int, r *model.Range) bool { return opnd(idx, r) >= val }
	default:
		return fmt.Errorf("unsupported operation %q for numeric operand %s", cn.Op, cn.Operand)
	}
	return nil
}

func (web *whereExpFuncBuilder) buildMetaCond(cn *Condition, key string) error {
	val := cn.Value
	switch strings.ToUpper(cn.Op) {
	case CMP_CONTAINS:
		web.wef = func(_ int, r *model.Range) bool { return strings.Contains(r.Meta.Value(key), val) }
	case CMP_HAS_PREFIX:
		web.wef = func(_ int, r *model.Range) bool { return strings.HasPrefix(r.Meta.Value(key), val) }
	case CMP_HAS_SUFFIX:
		web.wef = func(_ int, r *model.Range) bool { return strings.HasSuffix(r.Meta.Value(key), val) }
	case CMP_LIKE:
		// test it first
		if _, err := path.Match(val, "abc"); err != nil {
			return fmt.Errorf("uncompilable 'like' expression for %q, expected a shell pattern (not regexp) err=%v", val, err)
		}
		web.wef = func(_ int, r *model.Range) bool {
			res, _ := path.Match(val, r.Meta.Value(key))
			return res
		}
	case "=":
		web.wef = func(_ int, r *model.Range) bool { return r.Meta.Value(key) == val }
	case "!=":
		web.wef = func(_ int, r *model.Range) bool { return r.Meta.Value(key) != val }
	case "<":
		web.wef = func(_ int, r *model.Range) bool { return r.Meta.Value(key) < val }
	case ">":
		web.wef = func(_ int, r *model.Range) bool { return r.Meta.Value(key) > val }
	case "<=":
		web.wef = func(_ int, r *model.Range) bool { return r.Meta.Value(key) <= val }
	case ">=":
		web.wef = func(_ int, r *model.Range) bool { return r.Meta.Value(key) >= val }
	default:
		return fmt.Errorf("unsupported operation %q for %s", cn.Op, cn.Operand)
	}
	return nil
}
