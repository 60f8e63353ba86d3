// Package expr compiles and evaluates the small arithmetic expressions used
// by csv2ts column definitions. An expression references input column names
// (case-insensitive) combined with +, -, *, /, parentheses and numeric
// literals, e.g. "gate1_flow + gate2_flow" or "stage_ft * 0.3048".
//
// Compilation catches syntax errors up front; evaluation never fails. A
// missing column, an unparseable cell, or an arithmetic fault such as
// division by zero yields a nil result, which downstream becomes a missing
// value. One bad tick must never abort a run.
package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Expression is a compiled column expression.
type Expression struct {
	src  string
	root node
}

// Source returns the original expression text.
func (e *Expression) Source() string {
	return e.src
}

// Compile parses src into an evaluable expression.
func Compile(src string) (*Expression, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("expression is empty")
	}
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, fmt.Errorf("unexpected token %q in expression %q", p.peek().text, src)
	}
	return &Expression{src: src, root: root}, nil
}

// Evaluate computes the expression against one raw row. headerIndex maps
// lower-cased, trimmed column names to positional indices in row. A nil
// return means the value could not be computed for this row.
func (e *Expression) Evaluate(row []string, headerIndex map[string]int) *float64 {
	if row == nil {
		return nil
	}
	v, ok := e.root.eval(row, headerIndex)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ColumnNames returns the distinct lower-cased column names the expression
// references, in first-use order.
func (e *Expression) ColumnNames() []string {
	seen := map[string]bool{}
	var names []string
	collectColumns(e.root, seen, &names)
	return names
}

func collectColumns(n node, seen map[string]bool, names *[]string) {
	switch t := n.(type) {
	case columnNode:
		if !seen[t.name] {
			seen[t.name] = true
			*names = append(*names, t.name)
		}
	case binaryNode:
		collectColumns(t.left, seen, names)
		collectColumns(t.right, seen, names)
	case negateNode:
		collectColumns(t.operand, seen, names)
	}
}

// RoundHalfEven rounds v to the given number of decimal places using
// round-half-to-even (banker's) semantics.
func RoundHalfEven(v float64, places int) float64 {
	if places < 0 {
		places = 0
	}
	scale := math.Pow10(places)
	return math.RoundToEven(v*scale) / scale
}

// --- AST ---

type node interface {
	eval(row []string, headerIndex map[string]int) (float64, bool)
}

type numberNode struct {
	value float64
}

func (n numberNode) eval([]string, map[string]int) (float64, bool) {
	return n.value, true
}

type columnNode struct {
	// name is stored lower-cased; headerIndex keys are lower-cased too.
	name string
}

func (n columnNode) eval(row []string, headerIndex map[string]int) (float64, bool) {
	idx, ok := headerIndex[n.name]
	if !ok || idx < 0 || idx >= len(row) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type negateNode struct {
	operand node
}

func (n negateNode) eval(row []string, headerIndex map[string]int) (float64, bool) {
	v, ok := n.operand.eval(row, headerIndex)
	if !ok {
		return 0, false
	}
	return -v, true
}

type binaryNode struct {
	op          byte
	left, right node
}

func (n binaryNode) eval(row []string, headerIndex map[string]int) (float64, bool) {
	l, ok := n.left.eval(row, headerIndex)
	if !ok {
		return 0, false
	}
	r, ok := n.right.eval(row, headerIndex)
	if !ok {
		return 0, false
	}
	switch n.op {
	case '+':
		return l + r, true
	case '-':
		return l - r, true
	case '*':
		return l * r, true
	case '/':
		if r == 0 {
			return 0, false
		}
		return l / r, true
	}
	return 0, false
}
