package debugger

import (
	"fmt"

	"github.com/qwas982/svm/value"
	"github.com/qwas982/svm/vm"
)

// ExpressionEvaluator evaluates watch/print/breakpoint-condition expressions
// against a VM's current state, and keeps a $1, $2, ... history of printed
// results (grounded on the teacher's register-based evaluator). Symbols maps
// debug-visible variable names to heap addresses (spec.md §4.D), loaded by
// Debugger.LoadSymbols alongside the program.
type ExpressionEvaluator struct {
	history []value.Value
	Symbols SymbolTable
}

func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{Symbols: SymbolTable{}}
}

// ContextFrom builds a DebugContext snapshot from the running machine. vars
// is materialized from symbols: each named variable is the signed 4-byte
// heap cell at its symbol address (spec.md §4.D), mirroring the original's
// _获取所有变量. A symbol whose address is out of range is silently omitted,
// matching the original's bounds check.
func ContextFrom(machine *vm.VM, symbols SymbolTable) DebugContext {
	vars := make(map[string]value.Value, len(symbols))
	for name, addr := range symbols {
		cell, err := machine.Heap.Load(addr)
		if err != nil {
			continue
		}
		vars[name] = value.NewInt(int64(cell))
	}
	return DebugContext{
		Stack:      machine.Operands.Snapshot(),
		StackDepth: machine.Operands.Depth(),
		CallDepth:  machine.Calls.Depth(),
		PC:         machine.PC,
		InstrCount: machine.InstructionsExecuted,
		Vars:       vars,
	}
}

// EvaluateExpression evaluates expr and records the result in the $N history.
func (e *ExpressionEvaluator) EvaluateExpression(expr string, machine *vm.VM) (value.Value, error) {
	result, err := e.Evaluate(expr, machine)
	if err != nil {
		return value.Value{}, err
	}
	e.history = append(e.history, result)
	return result, nil
}

// Evaluate evaluates expr against the machine's current state without
// touching the $N history (used for breakpoint conditions and watchpoints).
func (e *ExpressionEvaluator) Evaluate(expr string, machine *vm.VM) (value.Value, error) {
	return e.EvaluateIn(expr, ContextFrom(machine, e.Symbols))
}

// EvaluateIn evaluates expr against an already-built context.
func (e *ExpressionEvaluator) EvaluateIn(expr string, ctx DebugContext) (value.Value, error) {
	tokens, err := NewExprLexer(expr).TokenizeAll()
	if err != nil {
		return value.Value{}, fmt.Errorf("lex error: %w", err)
	}
	return NewExprParser(tokens, ctx, e).Parse()
}

// EvaluateBool evaluates expr and reports its truthiness, for conditional
// breakpoints.
func (e *ExpressionEvaluator) EvaluateBool(expr string, machine *vm.VM) (bool, error) {
	v, err := e.Evaluate(expr, machine)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

// GetValue returns a $N history entry (1-indexed).
func (e *ExpressionEvaluator) GetValue(number int) (value.Value, error) {
	if number < 1 || number > len(e.history) {
		return value.Value{}, fmt.Errorf("value $%d not in history", number)
	}
	return e.history[number-1], nil
}

// Reset clears the $N history.
func (e *ExpressionEvaluator) Reset() {
	e.history = e.history[:0]
}
