package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qwas982/svm/value"
)

// DebugContext is the sandboxed evaluation context exposed to watch/print/
// breakpoint-condition expressions (spec.md §4.D): the operand stack, its
// depth, the call-stack depth, pc, the total instruction count, and the
// named variables read from the heap through the symbol table.
type DebugContext struct {
	Stack      []value.Value
	StackDepth int
	CallDepth  int
	PC         int
	InstrCount uint64
	Vars       map[string]value.Value
}

// ExprParser parses and evaluates debugger expressions via precedence
// climbing, grounded on the teacher's register/memory expression evaluator
// but retargeted to DebugContext and tagged values.
type ExprParser struct {
	tokens []ExprToken
	pos    int
	ctx    DebugContext
	eval   *ExpressionEvaluator
}

func NewExprParser(tokens []ExprToken, ctx DebugContext, eval *ExpressionEvaluator) *ExprParser {
	return &ExprParser{tokens: tokens, ctx: ctx, eval: eval}
}

func (p *ExprParser) currentToken() ExprToken {
	if p.pos >= len(p.tokens) {
		return ExprToken{Type: ExprTokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *ExprParser) advance() { p.pos++ }

func comparisonOp(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	default:
		return false
	}
}

// Parse parses the full expression, requiring EOF at the end.
func (p *ExprParser) Parse() (value.Value, error) {
	result, err := p.parseComparison()
	if err != nil {
		return value.Value{}, err
	}
	if p.currentToken().Type != ExprTokenEOF {
		return value.Value{}, fmt.Errorf("unexpected token: %s", p.currentToken().Value)
	}
	return result, nil
}

func (p *ExprParser) parseComparison() (value.Value, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return value.Value{}, err
	}
	for p.currentToken().Type == ExprTokenOperator && comparisonOp(p.currentToken().Value) {
		op := p.currentToken().Value
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return value.Value{}, err
		}
		left, err = value.Compare(compareOpName(op), left, right)
		if err != nil {
			return value.Value{}, err
		}
	}
	return left, nil
}

func compareOpName(op string) string {
	switch op {
	case "==":
		return "Eq"
	case "!=":
		return "Ne"
	case "<":
		return "Lt"
	case "<=":
		return "Le"
	case ">":
		return "Gt"
	case ">=":
		return "Ge"
	default:
		return op
	}
}

func (p *ExprParser) parseAdditive() (value.Value, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return value.Value{}, err
	}
	for p.currentToken().Type == ExprTokenOperator && (p.currentToken().Value == "+" || p.currentToken().Value == "-") {
		op := p.currentToken().Value
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return value.Value{}, err
		}
		if op == "+" {
			left, err = value.Add(left, right)
		} else {
			left, err = value.Sub(left, right)
		}
		if err != nil {
			return value.Value{}, err
		}
	}
	return left, nil
}

func (p *ExprParser) parseMultiplicative() (value.Value, error) {
	left, err := p.parseUnary()
	if err != nil {
		return value.Value{}, err
	}
	for p.currentToken().Type == ExprTokenOperator && (p.currentToken().Value == "*" || p.currentToken().Value == "/" || p.currentToken().Value == "%") {
		op := p.currentToken().Value
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return value.Value{}, err
		}
		switch op {
		case "*":
			left, err = value.Mul(left, right)
		case "/":
			left, err = value.Div(left, right)
		case "%":
			left, err = value.Mod(left, right)
		}
		if err != nil {
			return value.Value{}, err
		}
	}
	return left, nil
}

func (p *ExprParser) parseUnary() (value.Value, error) {
	if p.currentToken().Type == ExprTokenOperator && p.currentToken().Value == "-" {
		p.advance()
		v, err := p.parseUnary()
		if err != nil {
			return value.Value{}, err
		}
		return value.Sub(value.NewInt(0), v)
	}
	return p.parsePrimary()
}

func (p *ExprParser) parsePrimary() (value.Value, error) {
	tok := p.currentToken()
	switch tok.Type {
	case ExprTokenNumber:
		p.advance()
		if strings.Contains(tok.Value, ".") {
			f, err := strconv.ParseFloat(tok.Value, 64)
			if err != nil {
				return value.Value{}, err
			}
			return value.NewFloat(f), nil
		}
		i, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewInt(i), nil

	case ExprTokenString:
		p.advance()
		return value.NewString(tok.Value), nil

	case ExprTokenValueRef:
		p.advance()
		num, err := strconv.Atoi(strings.TrimPrefix(tok.Value, "$"))
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid value reference: %s", tok.Value)
		}
		return p.eval.GetValue(num)

	case ExprTokenIdent:
		return p.parseIdentifier(tok.Value)

	case ExprTokenLParen:
		p.advance()
		result, err := p.parseComparison()
		if err != nil {
			return value.Value{}, err
		}
		if p.currentToken().Type != ExprTokenRParen {
			return value.Value{}, fmt.Errorf("expected ')', got %s", p.currentToken().Value)
		}
		p.advance()
		return result, nil

	default:
		return value.Value{}, fmt.Errorf("unexpected token: %s (%s)", tok.Value, tok.Type)
	}
}

// parseIdentifier resolves pc/stack_depth/call_depth/instr_count, stack[i]
// indexing, and vars.name / vars["name"] lookups against the debug context.
func (p *ExprParser) parseIdentifier(name string) (value.Value, error) {
	p.advance()

	switch name {
	case "pc":
		return value.NewInt(int64(p.ctx.PC)), nil
	case "stack_depth":
		return value.NewInt(int64(p.ctx.StackDepth)), nil
	case "call_depth":
		return value.NewInt(int64(p.ctx.CallDepth)), nil
	case "instr_count":
		return value.NewInt(int64(p.ctx.InstrCount)), nil
	case "stack":
		if p.currentToken().Type != ExprTokenLBracket {
			return value.Value{}, fmt.Errorf("stack must be indexed: stack[i]")
		}
		p.advance()
		idxVal, err := p.parseComparison()
		if err != nil {
			return value.Value{}, err
		}
		if p.currentToken().Type != ExprTokenRBracket {
			return value.Value{}, fmt.Errorf("expected ']', got %s", p.currentToken().Value)
		}
		p.advance()
		idx := int(idxVal.AsInt32())
		if idx < 0 || idx >= len(p.ctx.Stack) {
			return value.Value{}, fmt.Errorf("stack index %d out of range (depth %d)", idx, len(p.ctx.Stack))
		}
		return p.ctx.Stack[idx], nil
	case "vars":
		switch p.currentToken().Type {
		case ExprTokenDot:
			p.advance()
			ident := p.currentToken()
			if ident.Type != ExprTokenIdent {
				return value.Value{}, fmt.Errorf("expected variable name after 'vars.'")
			}
			p.advance()
			return p.lookupVar(ident.Value)
		case ExprTokenLBracket:
			p.advance()
			keyTok := p.currentToken()
			if keyTok.Type != ExprTokenString {
				return value.Value{}, fmt.Errorf("vars[...] requires a string key")
			}
			p.advance()
			if p.currentToken().Type != ExprTokenRBracket {
				return value.Value{}, fmt.Errorf("expected ']', got %s", p.currentToken().Value)
			}
			p.advance()
			return p.lookupVar(keyTok.Value)
		default:
			return value.Value{}, fmt.Errorf("vars must be accessed as vars.name or vars[\"name\"]")
		}
	default:
		return value.Value{}, fmt.Errorf("unknown identifier: %s", name)
	}
}

func (p *ExprParser) lookupVar(name string) (value.Value, error) {
	v, ok := p.ctx.Vars[name]
	if !ok {
		return value.Value{}, fmt.Errorf("undefined local %q", name)
	}
	return v, nil
}
