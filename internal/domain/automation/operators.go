package automation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorNotEquals   Operator = "not_equals"
	OperatorContains    Operator = "contains"
	OperatorNotContains Operator = "not_contains"
	OperatorGT          Operator = "gt"
	OperatorGTE         Operator = "gte"
	OperatorLT          Operator = "lt"
	OperatorLTE         Operator = "lte"
	OperatorIn          Operator = "in"
	OperatorNotIn       Operator = "not_in"
	OperatorIsEmpty     Operator = "is_empty"
	OperatorIsNotEmpty  Operator = "is_not_empty"
	OperatorChangedTo   Operator = "changed_to"
)

// operatorFn evaluates one leaf operator. Every entry is a pure function;
// adding an operator means adding exactly one table entry.
type operatorFn func(actual, expected any) (bool, error)

var operatorTable = map[Operator]operatorFn{
	OperatorEquals:      opEquals,
	OperatorNotEquals:   opNotEquals,
	OperatorContains:    opContains,
	OperatorNotContains: opNotContains,
	OperatorGT:          ordinal(func(cmp int) bool { return cmp > 0 }),
	OperatorGTE:         ordinal(func(cmp int) bool { return cmp >= 0 }),
	OperatorLT:          ordinal(func(cmp int) bool { return cmp < 0 }),
	OperatorLTE:         ordinal(func(cmp int) bool { return cmp <= 0 }),
	OperatorIn:          opIn,
	OperatorNotIn:       opNotIn,
	// is_empty / is_not_empty / changed_to are presence-sensitive and are
	// dispatched in evaluateLeaf before the table lookup; entries exist so
	// operator validity checks stay table-driven.
	OperatorIsEmpty:    func(actual, _ any) (bool, error) { return isEmpty(actual), nil },
	OperatorIsNotEmpty: func(actual, _ any) (bool, error) { return !isEmpty(actual), nil },
	OperatorChangedTo:  func(_, _ any) (bool, error) { return false, nil },
}

func (o Operator) IsValid() bool {
	_, ok := operatorTable[o]
	return ok
}

func opEquals(actual, expected any) (bool, error) {
	return equalValues(actual, expected), nil
}

func opNotEquals(actual, expected any) (bool, error) {
	return !equalValues(actual, expected), nil
}

func opContains(actual, expected any) (bool, error) {
	switch v := actual.(type) {
	case string:
		s, ok := asString(expected)
		if !ok {
			return false, nil
		}
		return strings.Contains(v, s), nil
	case []string:
		for _, item := range v {
			if equalValues(item, expected) {
				return true, nil
			}
		}
		return false, nil
	case []any:
		for _, item := range v {
			if equalValues(item, expected) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

func opNotContains(actual, expected any) (bool, error) {
	ok, err := opContains(actual, expected)
	return !ok, err
}

func opIn(actual, expected any) (bool, error) {
	items, ok := asSlice(expected)
	if !ok {
		return false, &ConditionEvaluationError{Operator: OperatorIn, Reason: "expected value is not a list"}
	}
	for _, item := range items {
		if equalValues(actual, item) {
			return true, nil
		}
	}
	return false, nil
}

func opNotIn(actual, expected any) (bool, error) {
	items, ok := asSlice(expected)
	if !ok {
		return false, &ConditionEvaluationError{Operator: OperatorNotIn, Reason: "expected value is not a list"}
	}
	for _, item := range items {
		if equalValues(actual, item) {
			return false, nil
		}
	}
	return true, nil
}

// ordinal builds gt/gte/lt/lte from a comparison predicate. Non-numeric,
// non-date operands fail closed: the leaf evaluates to false without error.
func ordinal(pred func(cmp int) bool) operatorFn {
	return func(actual, expected any) (bool, error) {
		if at, aok := asTime(actual); aok {
			et, eok := asTime(expected)
			if !eok {
				return false, nil
			}
			return pred(at.Compare(et)), nil
		}
		af, aok := asNumber(actual)
		ef, eok := asNumber(expected)
		if !aok || !eok {
			return false, nil
		}
		switch {
		case af < ef:
			return pred(-1), nil
		case af > ef:
			return pred(1), nil
		default:
			return pred(0), nil
		}
	}
}

// equalValues compares with light coercion: numbers compare numerically
// regardless of Go type, everything else by string form. String comparison
// stays case-sensitive.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, aok := asNumber(a); aok {
		if bf, bok := asNumber(b); bok {
			return af == bf
		}
		return false
	}
	if at, aok := asTime(a); aok {
		if bt, bok := asTime(b); bok {
			return at.Equal(bt)
		}
		return false
	}
	if ab, aok := a.(bool); aok {
		bb, bok := b.(bool)
		return bok && ab == bb
	}
	as, aok := asString(a)
	bs, bok := asString(b)
	if aok && bok {
		return as == bs
	}
	return reflect.DeepEqual(a, b)
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch val := v.(type) {
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	case time.Time:
		return val.IsZero()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		// Numeric strings are numbers, not dates.
		if _, err := strconv.ParseFloat(t, 64); err == nil {
			return time.Time{}, false
		}
		parsed, err := time.Parse(time.RFC3339, t)
		return parsed, err == nil
	}
	return time.Time{}, false
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	}
	return "", false
}

func asSlice(v any) ([]any, bool) {
	switch items := v.(type) {
	case []any:
		return items, true
	case []string:
		out := make([]any, len(items))
		for i, s := range items {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
