// Package visibility evaluates the small rule language attached to
// conditional fields (model.Field.VisibleWhen).
//
// Supported forms:
//   - truthiness: `multiDay`
//   - comparisons: `houseType == "Other"`, `petType2 != "Dog"`, `multiDay == true`
//   - composition: `a == "x" && b`, `a || b` (&& binds tighter than ||)
//
// Values are form values as submitted, so every comparison is textual; the
// boolean literals match "true"/"on"/"1" and their negations.
package visibility

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Values is the lookup the evaluator reads from.
type Values interface {
	Get(name string) string
}

// Map adapts a plain map into Values.
type Map map[string]string

// Get returns the value stored under name.
func (m Map) Get(name string) string { return m[name] }

// Eval evaluates rule against values. An empty rule is always visible. The
// whole rule is parsed before anything is evaluated, so a malformed term is
// reported even when an earlier term already decides the result.
func Eval(rule string, values Values) (bool, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return true, nil
	}
	if values == nil {
		values = Map(nil)
	}

	disjuncts, err := parse(rule)
	if err != nil {
		return false, err
	}
	for _, terms := range disjuncts {
		if holdsAll(terms, values) {
			return true, nil
		}
	}
	return false, nil
}

// Equals builds the rule `name == "value"`.
func Equals(name, value string) string {
	return name + " == " + strconv.Quote(value)
}

// IsSet builds the rule `name == true`.
func IsSet(name string) string {
	return name + " == true"
}

// term is one comparison, or a bare identifier when op is empty.
type term struct {
	name    string
	op      string
	literal string
	boolean bool
	quoted  bool
}

func parse(rule string) ([][]term, error) {
	var disjuncts [][]term
	for _, disjunct := range splitOperator(rule, "||") {
		var terms []term
		for _, raw := range splitOperator(disjunct, "&&") {
			t, err := parseTerm(raw)
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		}
		disjuncts = append(disjuncts, terms)
	}
	return disjuncts, nil
}

func parseTerm(raw string) (term, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return term{}, errors.New("visibility: empty expression")
	}

	op, idx := findComparison(raw)
	if idx < 0 {
		if !isIdentifier(raw) {
			return term{}, fmt.Errorf("visibility: expected identifier, got %q", raw)
		}
		return term{name: raw}, nil
	}

	t := term{name: strings.TrimSpace(raw[:idx]), op: op}
	if !isIdentifier(t.name) {
		return term{}, fmt.Errorf("visibility: expected identifier, got %q", t.name)
	}
	literal := strings.TrimSpace(raw[idx+len(op):])
	switch {
	case literal == "":
		return term{}, fmt.Errorf("visibility: missing literal after %q", op)
	case literal == "true" || literal == "false":
		t.literal, t.boolean = literal, true
	case literal[0] == '"' || literal[0] == '\'':
		value, err := unquote(literal)
		if err != nil {
			return term{}, err
		}
		t.literal, t.quoted = value, true
	default:
		t.literal = literal
	}
	return t, nil
}

func holdsAll(terms []term, values Values) bool {
	for _, t := range terms {
		if !t.holds(values) {
			return false
		}
	}
	return true
}

func (t term) holds(values Values) bool {
	got := values.Get(t.name)
	if t.op == "" {
		return truthy(got)
	}

	var equal bool
	switch {
	case t.boolean:
		equal = truthy(got) == (t.literal == "true")
	case t.quoted:
		equal = got == t.literal
	default:
		equal = strings.TrimSpace(got) == t.literal
	}
	if t.op == "!=" {
		return !equal
	}
	return equal
}

// splitOperator splits expr on op outside of quoted strings.
func splitOperator(expr, op string) []string {
	var (
		parts []string
		quote byte
		start int
	)
	for i := 0; i < len(expr); i++ {
		ch := expr[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
				continue
			}
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case strings.HasPrefix(expr[i:], op):
			parts = append(parts, expr[start:i])
			i += len(op) - 1
			start = i + 1
		}
	}
	return append(parts, expr[start:])
}

func findComparison(term string) (string, int) {
	var quote byte
	for i := 0; i < len(term)-1; i++ {
		ch := term[i]
		if quote != 0 {
			if ch == '\\' {
				i++
				continue
			}
			if ch == quote {
				quote = 0
			}
			continue
		}
		if ch == '"' || ch == '\'' {
			quote = ch
			continue
		}
		switch term[i : i+2] {
		case "==":
			return "==", i
		case "!=":
			return "!=", i
		}
	}
	return "", -1
}

func unquote(raw string) (string, error) {
	if len(raw) < 2 || raw[len(raw)-1] != raw[0] {
		return "", errors.New("visibility: unterminated string literal")
	}
	if raw[0] == '\'' {
		raw = `"` + strings.ReplaceAll(raw[1:len(raw)-1], `"`, `\"`) + `"`
	}
	value, err := strconv.Unquote(raw)
	if err != nil {
		return "", fmt.Errorf("visibility: invalid string literal: %w", err)
	}
	return value, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '.' || r == '-':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "off", "no":
		return false
	default:
		return true
	}
}
