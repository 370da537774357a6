/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"strings"

	"github.com/suparena/kvmodels/errors"
)

// Op is a filter operator.
type Op string

const (
	OpExact       Op = "exact"
	OpIExact      Op = "iexact"
	OpContains    Op = "contains"
	OpIn          Op = "in"
	OpGt          Op = "gt"
	OpGte         Op = "gte"
	OpLt          Op = "lt"
	OpLte         Op = "lte"
	OpStartswith  Op = "startswith"
	OpEndswith    Op = "endswith"
	OpIStartswith Op = "istartswith"
	OpIEndswith   Op = "iendswith"
	OpRange       Op = "range"
	OpIsNull      Op = "isnull"
)

var knownOps = map[Op]bool{
	OpExact: true, OpIExact: true, OpContains: true, OpIn: true,
	OpGt: true, OpGte: true, OpLt: true, OpLte: true,
	OpStartswith: true, OpEndswith: true, OpIStartswith: true, OpIEndswith: true,
	OpRange: true, OpIsNull: true,
}

// ParseOp validates an operator name.
func ParseOp(s string) (Op, error) {
	op := Op(s)
	if !knownOps[op] {
		return "", errors.Validationf("filter %s not supported", s)
	}
	return op, nil
}

// Predicate is one filter condition: a field path into the record (nested
// segments traverse reference fields), an operator and an operand.
type Predicate struct {
	Path    []string
	Op      Op
	Operand any
}

// Filter builds a predicate from a path expression of the form
// "field" or "field__nested__leaf". The operator is not part of the path;
// unknown operators surface as a validation error at evaluation time.
func Filter(path string, op Op, operand any) Predicate {
	return Predicate{Path: strings.Split(path, "__"), Op: op, Operand: operand}
}

// Eq is shorthand for an exact-match predicate.
func Eq(path string, operand any) Predicate {
	return Filter(path, OpExact, operand)
}

// Field returns the top-level field the predicate applies to.
func (p Predicate) Field() string {
	if len(p.Path) == 0 {
		return ""
	}
	return p.Path[0]
}

// Rest returns the nested path below the top-level field.
func (p Predicate) Rest() []string {
	if len(p.Path) == 0 {
		return nil
	}
	return p.Path[1:]
}
