package vm

import (
	"fmt"

	"github.com/qwas982/svm/fault"
	"github.com/qwas982/svm/value"
)

func (v *VM) push(operand Value) {
	if err := v.Operands.Push(operand); err != nil {
		v.raiseFault(fault.Generic, err)
	}
}

func (v *VM) pop() {
	if _, err := v.Operands.Pop(); err != nil {
		v.raiseFault(fault.StackUnderflow, err)
	}
}

func (v *VM) dup() {
	top, err := v.Operands.Peek()
	if err != nil {
		v.raiseFault(fault.StackUnderflow, err)
		return
	}
	v.push(top)
}

func (v *VM) swap() {
	b, err := v.Operands.Pop()
	if err != nil {
		v.raiseFault(fault.StackUnderflow, err)
		return
	}
	a, err := v.Operands.Pop()
	if err != nil {
		v.raiseFault(fault.StackUnderflow, err)
		return
	}
	_ = v.Operands.Push(b)
	_ = v.Operands.Push(a)
}

// popTwo pops right then left (spec.md §4.A ordering rule: left pushed
// first, right popped first).
func (v *VM) popTwo() (left, right Value, ok bool) {
	r, err := v.Operands.Pop()
	if err != nil {
		v.raiseFault(fault.StackUnderflow, err)
		return Value{}, Value{}, false
	}
	l, err := v.Operands.Pop()
	if err != nil {
		v.raiseFault(fault.StackUnderflow, err)
		return Value{}, Value{}, false
	}
	return l, r, true
}

// binaryArith handles Add/Sub/Mul: pop right, pop left, compute, push
// result. On a type mismatch it attempts the Coerce recovery inline (best
// effort conversion to Float) before escalating to a TypeError fault.
func (v *VM) binaryArith(op func(a, b value.Value) (value.Value, error)) {
	left, right, ok := v.popTwo()
	if !ok {
		return
	}
	result, err := op(left, right)
	if err == nil {
		v.push(result)
		return
	}
	if coerced, cok := coerceBothToFloat(left, right); cok {
		if result, err = op(coerced[0], coerced[1]); err == nil {
			v.push(result)
			return
		}
	}
	v.raiseFault(fault.TypeError, err)
}

func coerceBothToFloat(a, b value.Value) ([2]value.Value, bool) {
	ca, err1 := value.Coerce(a, value.Float)
	cb, err2 := value.Coerce(b, value.Float)
	if err1 != nil || err2 != nil {
		return [2]value.Value{}, false
	}
	return [2]value.Value{ca, cb}, true
}

func (v *VM) binaryDiv() {
	left, right, ok := v.popTwo()
	if !ok {
		return
	}
	result, err := value.Div(left, right)
	if err == nil {
		v.push(result)
		return
	}
	if value.IsDivideByZero(err) {
		v.raiseFault(fault.DivideByZero, err)
		return
	}
	if coerced, cok := coerceBothToFloat(left, right); cok {
		if result, err = value.Div(coerced[0], coerced[1]); err == nil {
			v.push(result)
			return
		}
		if value.IsDivideByZero(err) {
			v.raiseFault(fault.DivideByZero, err)
			return
		}
	}
	v.raiseFault(fault.TypeError, err)
}

func (v *VM) binaryMod() {
	left, right, ok := v.popTwo()
	if !ok {
		return
	}
	result, err := value.Mod(left, right)
	if err == nil {
		v.push(result)
		return
	}
	if value.IsDivideByZero(err) {
		v.raiseFault(fault.DivideByZero, err)
		return
	}
	v.raiseFault(fault.TypeError, err)
}

func (v *VM) binaryCompare(op string) {
	left, right, ok := v.popTwo()
	if !ok {
		return
	}
	result, err := value.Compare(op, left, right)
	if err == nil {
		v.push(result)
		return
	}
	if coerced, cok := coerceBothToFloat(left, right); cok {
		if result, err = value.Compare(op, coerced[0], coerced[1]); err == nil {
			v.push(result)
			return
		}
	}
	v.raiseFault(fault.TypeError, err)
}

// jump resolves L and sets pc to its target; a missing label is an
// UnknownOpcode fault per the boundary behavior in spec.md §8.
func (v *VM) jump(label string) bool {
	idx, ok := v.Program.Resolve(label)
	if !ok {
		v.raiseFault(fault.UnknownOpcode, fmt.Errorf("jump to undefined label %q", label))
		return true
	}
	v.PC = idx
	return true
}

func (v *VM) jumpIf(label string) bool {
	cond, err := v.Operands.Pop()
	if err != nil {
		v.raiseFault(fault.StackUnderflow, err)
		return true
	}
	if !cond.Truthy() {
		return false // fall through, pc++ applied by caller
	}
	return v.jump(label)
}

func (v *VM) call(label string) bool {
	idx, ok := v.Program.Resolve(label)
	if !ok {
		v.raiseFault(fault.UnknownOpcode, fmt.Errorf("call to undefined label %q", label))
		return true
	}
	v.Calls.Push(v.PC+1, v.FP)
	v.FP = v.Calls.Depth() - 1
	v.PC = idx
	return true
}

func (v *VM) ret() bool {
	frame, err := v.Calls.Pop()
	if err != nil {
		v.raiseFault(fault.StackUnderflow, err)
		return true
	}
	v.FP = frame.PriorFP
	v.PC = frame.ReturnAddress
	return true
}

func (v *VM) loadCell(operand Value) {
	addr := operand.AsInt32()
	cell, err := v.Heap.Load(addr)
	if err != nil {
		v.raiseFault(fault.MemoryError, err)
		return
	}
	v.push(value.NewInt(int64(cell)))
}

func (v *VM) storeCell(operand Value) {
	addr := operand.AsInt32()
	top, err := v.Operands.Pop()
	if err != nil {
		v.raiseFault(fault.StackUnderflow, err)
		return
	}
	if err := v.Heap.Store(addr, top.AsInt32()); err != nil {
		v.raiseFault(fault.MemoryError, err)
	}
}

func (v *VM) externCall(name string) {
	primitive, ok := v.Externs.Lookup(name)
	if !ok {
		v.raiseFault(fault.UnknownOpcode, fmt.Errorf("extern call to unregistered primitive %q", name))
		return
	}
	err := primitive.Invoke(v.Operands.Pop, v.Operands.Push)
	if err != nil {
		v.raiseFault(fault.ExternCallError, err)
	}
}

func (v *VM) print() {
	val, err := v.Operands.Pop()
	if err != nil {
		v.raiseFault(fault.StackUnderflow, err)
		return
	}
	fmt.Fprintln(v.OutputWriter, val.String())
}

func (v *VM) debugInfo() {
	snap := v.Snapshot()
	fmt.Fprintf(v.DebugWriter, "pc=%d operand_depth=%d call_depth=%d instr_count=%d\n",
		snap.PC, snap.OperandDepth, snap.CallDepth, snap.InstructionCount)
}

// raiseFault implements the fault-handling procedure of spec.md §4.C
// "Faults": build and push an exception context, log the error, and apply
// the recovery policy for the class.
func (v *VM) raiseFault(class fault.Class, err error) {
	ctx := ExceptionContext{
		Message:          err.Error(),
		PCAtFault:        v.PC,
		OperandSnapshot:  v.Operands.Snapshot(),
		CallDepthAtFault: v.Calls.Depth(),
		Class:            class,
	}
	v.Exceptions.Push(ctx)

	line := 0
	detail := fmt.Sprintf("pc=%d", v.PC)
	if v.PC >= 0 && v.PC < v.Program.Len() {
		instr := v.Program.Instructions[v.PC]
		line = instr.Line
		detail = fmt.Sprintf("pc=%d opcode=%v", v.PC, instr.Opcode)
		if instr.HasOperand {
			detail += " operand=" + instr.Operand.String()
		}
	}
	v.ErrorLog.Append(fault.Record{
		Message:  err.Error(),
		Line:     line,
		Class:    class,
		Severity: fault.SeverityError,
		Detail:   detail,
	})

	policy := v.Faults.PolicyFor(class)

	// ExternCallError's Continue recovery additionally pushes 0, per the
	// external-call registry contract in spec.md §6.
	if class == fault.ExternCallError && policy == fault.Continue {
		_ = v.Operands.Push(value.NewInt(0))
		v.PC++
		v.faultRecovered = true
		return
	}

	switch policy {
	case fault.DefaultValue:
		_ = v.Operands.Push(value.NewInt(0))
		v.PC++
		v.faultRecovered = true
	case fault.Continue:
		v.PC++
		v.faultRecovered = true
	case fault.Coerce:
		// Coercion is attempted inline by the caller before raiseFault is
		// invoked; reaching here means it already failed, so treat as Abort.
		fallthrough
	case fault.Abort, fault.PanicMode, fault.SkipChar:
		v.Running = false
		v.FaultFlag = true
		v.FaultMessage = err.Error()
	}
}
