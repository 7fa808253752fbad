package specialist

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	plannerx "github.com/tanpawarit/goal-pipeline/agent/planner"
)

var (
	errNoExpression     = errors.New("no arithmetic expression found in goal")
	errUnbalancedParens = errors.New("expression has unbalanced parentheses")
	errDivisionByZero   = errors.New("division by zero")
)

// Runs of digits, operators and parentheses inside free text.
var expressionPattern = regexp.MustCompile(`-?[\d\.\(][\d\s\+\-\*/%\^\(\)\.]*`)

var wordOperators = [][2]string{
	{"divided by", "/"},
	{"multiplied by", "*"},
	{"to the power of", "^"},
	{"plus", "+"},
	{"minus", "-"},
	{"times", "*"},
	{"over", "/"},
	{"mod", "%"},
	{"x", "*"},
}

// Calculator evaluates the arithmetic expression found in the goal and writes
// it under contract.KeyCalculation.
type Calculator struct{}

var _ contractx.Agent = Calculator{}

func (Calculator) Name() string { return plannerx.AgentCalculator }

func (Calculator) Description() string {
	return "Evaluates an arithmetic expression from the goal, supporting + - * / % ^ and parentheses."
}

func (Calculator) Run(_ context.Context, in contractx.Context) (contractx.Context, error) {
	out := in.Clone()
	goal := in.Goal()

	expr, err := ExtractExpression(goal)
	if err == nil {
		var value float64
		value, err = Evaluate(expr)
		if err == nil {
			out[contractx.KeyCalculation] = map[string]any{
				"success":    true,
				"expression": expr,
				"result":     value,
			}
			return out, nil
		}
	}

	result := failure(err, goal)
	if expr != "" {
		result["expression"] = expr
	}
	out[contractx.KeyCalculation] = result
	return out, nil
}

// ExtractExpression picks the longest operator-bearing expression in goal
// after spelling out word operators.
func ExtractExpression(goal string) (string, error) {
	normalized := normalizeOperators(strings.ToLower(goal))

	best := ""
	for _, m := range expressionPattern.FindAllString(normalized, -1) {
		m = strings.TrimSpace(m)
		if !strings.ContainsAny(m, "0123456789") {
			continue
		}
		if strings.ContainsAny(m, "+-*/%^") && len(m) > len(best) {
			best = m
		}
	}
	if best == "" {
		return "", errNoExpression
	}
	return best, nil
}

// normalizeOperators replaces word operators only between word boundaries so
// words like "next" keep their letters.
func normalizeOperators(s string) string {
	fields := strings.Fields(s)
	joined := " " + strings.Join(fields, " ") + " "
	for _, op := range wordOperators {
		joined = strings.ReplaceAll(joined, " "+op[0]+" ", " "+op[1]+" ")
	}
	return strings.TrimSpace(joined)
}

// Evaluate computes expr with the usual precedence: unary sign, then right
// associative ^, then * / %, then + -.
func Evaluate(expr string) (float64, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, errNoExpression
	}
	if err := checkParens(expr); err != nil {
		return 0, err
	}

	p := &exprParser{src: expr}
	v, err := p.sum()
	if err != nil {
		return 0, err
	}
	p.skip()
	if !p.done() {
		return 0, fmt.Errorf("unexpected %q at position %d", p.src[p.pos], p.pos)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("result is not a finite number")
	}
	return v, nil
}

func checkParens(expr string) error {
	depth := 0
	for _, ch := range expr {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth < 0 {
			return errUnbalancedParens
		}
	}
	if depth != 0 {
		return errUnbalancedParens
	}
	return nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) sum() (float64, error) {
	acc, err := p.product()
	if err != nil {
		return 0, err
	}
	for {
		p.skip()
		op, ok := p.take("+-")
		if !ok {
			return acc, nil
		}
		rhs, err := p.product()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			acc += rhs
		} else {
			acc -= rhs
		}
	}
}

func (p *exprParser) product() (float64, error) {
	acc, err := p.power()
	if err != nil {
		return 0, err
	}
	for {
		p.skip()
		op, ok := p.take("*/%")
		if !ok {
			return acc, nil
		}
		rhs, err := p.power()
		if err != nil {
			return 0, err
		}
		switch op {
		case '*':
			acc *= rhs
		case '/':
			if rhs == 0 {
				return 0, errDivisionByZero
			}
			acc /= rhs
		case '%':
			if rhs == 0 {
				return 0, errDivisionByZero
			}
			acc = math.Mod(acc, rhs)
		}
	}
}

func (p *exprParser) power() (float64, error) {
	base, err := p.unary()
	if err != nil {
		return 0, err
	}
	p.skip()
	if _, ok := p.take("^"); !ok {
		return base, nil
	}
	exp, err := p.power()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *exprParser) unary() (float64, error) {
	p.skip()
	if op, ok := p.take("+-"); ok {
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == '-' {
			return -v, nil
		}
		return v, nil
	}
	return p.operand()
}

func (p *exprParser) operand() (float64, error) {
	p.skip()
	if _, ok := p.take("("); ok {
		v, err := p.sum()
		if err != nil {
			return 0, err
		}
		p.skip()
		if _, ok := p.take(")"); !ok {
			return 0, fmt.Errorf("missing closing parenthesis at position %d", p.pos)
		}
		return v, nil
	}

	start := p.pos
	for !p.done() && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	raw := p.src[start:p.pos]
	if raw == "" {
		return 0, fmt.Errorf("expected number at position %d", start)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

func (p *exprParser) take(ops string) (byte, bool) {
	if p.done() || !strings.ContainsRune(ops, rune(p.src[p.pos])) {
		return 0, false
	}
	ch := p.src[p.pos]
	p.pos++
	return ch, true
}

func (p *exprParser) skip() {
	for !p.done() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) done() bool { return p.pos >= len(p.src) }

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }
