package validation

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/google/cel-go/cel"
)

var schemaVersionPattern = regexp.MustCompile(`^v\d+\.\d+$`)

// Rule is a cross-field constraint written as a CEL expression that must
// evaluate to true. Field names the location reported when it does not.
type Rule struct {
	Field   string
	Expr    string
	Message string
}

type compiledRule struct {
	Rule
	prg cel.Program
}

// RuleSet is a compiled list of rules evaluated against a single variable.
// Compile once at package init; Check is safe for concurrent use.
type RuleSet struct {
	variable string
	rules    []compiledRule
}

// NewRuleSet compiles rules against a dynamically typed variable.
func NewRuleSet(variable string, rules ...Rule) (*RuleSet, error) {
	env, err := cel.NewEnv(cel.Variable(variable, cel.DynType))
	if err != nil {
		return nil, fmt.Errorf("validation: create CEL environment: %w", err)
	}
	set := &RuleSet{variable: variable, rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		ast, iss := env.Compile(r.Expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("validation: compile rule %q: %w", r.Expr, iss.Err())
		}
		if ast.OutputType() != cel.BoolType && ast.OutputType() != cel.DynType {
			return nil, fmt.Errorf("validation: rule %q does not evaluate to bool", r.Expr)
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("validation: program for rule %q: %w", r.Expr, err)
		}
		set.rules = append(set.rules, compiledRule{Rule: r, prg: prg})
	}
	return set, nil
}

// MustRuleSet is NewRuleSet for package-level rule tables.
func MustRuleSet(variable string, rules ...Rule) *RuleSet {
	s, err := NewRuleSet(variable, rules...)
	if err != nil {
		panic(err)
	}
	return s
}

// Check evaluates every rule against v, which is first projected onto its
// JSON form so that expressions address wire field names. The first failing
// rule is reported.
func (s *RuleSet) Check(v any) error {
	input, err := toJSONValue(v)
	if err != nil {
		return err
	}
	activation := map[string]any{s.variable: input}
	for _, r := range s.rules {
		out, _, err := r.prg.Eval(activation)
		if err != nil {
			return fmt.Errorf("validation: evaluate rule %q: %w", r.Expr, err)
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return fmt.Errorf("validation: rule %q returned %T", r.Expr, out.Value())
		}
		if !ok {
			return &FieldError{Field: r.Field, Kind: ErrInvalidField, Message: r.Message}
		}
	}
	return nil
}

func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("validation: project to JSON: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("validation: project to JSON: %w", err)
	}
	return out, nil
}
