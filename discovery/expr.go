package discovery

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/rex/collections"
)

// Condition is a compiled `if` expression evaluated against the run env.
type Condition struct {
	source string
	eval   func(env *collections.StringMap) bool
}

// String returns the source expression.
func (c *Condition) String() string { return c.source }

// Eval evaluates the condition. A nil env has no variables set.
func (c *Condition) Eval(env *collections.StringMap) bool {
	if env == nil {
		env = collections.NewStringMap()
	}
	return c.eval(env)
}

// CompileCondition compiles an `if` expression. Supported forms:
//
//	true | false
//	env.NAME            NAME is set and not empty, "0" or "false"
//	!env.NAME
//	env.NAME == value
//	env.NAME != value
//
// Terms combine with && and ||; && binds tighter. Values may be quoted with
// single or double quotes, and operators inside quotes are part of the value.
func CompileCondition(expr string) (*Condition, error) {
	src := strings.TrimSpace(expr)
	if src == "" {
		return nil, fmt.Errorf("empty condition")
	}
	eval, err := compileOr(src)
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", src, err)
	}
	return &Condition{source: src, eval: eval}, nil
}

type evalFunc = func(env *collections.StringMap) bool

func compileOr(src string) (evalFunc, error) {
	parts, err := splitOutsideQuotes(src, "||")
	if err != nil {
		return nil, err
	}
	var terms []evalFunc
	for _, part := range parts {
		t, err := compileAnd(part)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return func(env *collections.StringMap) bool {
		for _, t := range terms {
			if t(env) {
				return true
			}
		}
		return false
	}, nil
}

func compileAnd(src string) (evalFunc, error) {
	parts, err := splitOutsideQuotes(src, "&&")
	if err != nil {
		return nil, err
	}
	var terms []evalFunc
	for _, part := range parts {
		t, err := compileTerm(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return func(env *collections.StringMap) bool {
		for _, t := range terms {
			if !t(env) {
				return false
			}
		}
		return true
	}, nil
}

func compileTerm(term string) (evalFunc, error) {
	switch term {
	case "":
		return nil, fmt.Errorf("missing operand")
	case "true":
		return func(*collections.StringMap) bool { return true }, nil
	case "false":
		return func(*collections.StringMap) bool { return false }, nil
	}

	if i, op := indexComparison(term); i >= 0 {
		name, err := envName(strings.TrimSpace(term[:i]))
		if err != nil {
			return nil, err
		}
		want := unquote(strings.TrimSpace(term[i+len(op):]))
		equal := op == "=="
		return func(env *collections.StringMap) bool {
			return (env.Value(name) == want) == equal
		}, nil
	}

	negate := false
	if rest, ok := strings.CutPrefix(term, "!"); ok {
		negate = true
		term = strings.TrimSpace(rest)
	}
	name, err := envName(term)
	if err != nil {
		return nil, err
	}
	return func(env *collections.StringMap) bool {
		return truthy(env.Value(name)) != negate
	}, nil
}

// splitOutsideQuotes splits src around sep, ignoring sep inside quoted
// values.
func splitOutsideQuotes(src, sep string) ([]string, error) {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(src); i++ {
		switch c := src[i]; {
		case quote != 0:
			if c == '\\' && quote == '"' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case strings.HasPrefix(src[i:], sep):
			parts = append(parts, src[start:i])
			i += len(sep) - 1
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	return append(parts, src[start:]), nil
}

// indexComparison returns the position of the first == or != outside
// quotes, or -1.
func indexComparison(term string) (int, string) {
	var quote byte
	for i := 0; i+1 < len(term); i++ {
		c := term[i]
		switch {
		case quote != 0:
			if c == '\\' && quote == '"' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case term[i+1] == '=' && (c == '=' || c == '!'):
			return i, term[i : i+2]
		}
	}
	return -1, ""
}

func envName(ref string) (string, error) {
	name, ok := strings.CutPrefix(ref, "env.")
	if !ok || name == "" || strings.ContainsAny(name, " \t") {
		return "", fmt.Errorf("expected env.NAME, got %q", ref)
	}
	return name, nil
}

func unquote(s string) string {
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false":
		return false
	}
	return true
}
