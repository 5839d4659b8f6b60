package loader

import (
	"strings"
	"testing"

	"github.com/qwas982/svm/vm"
)

func exampleProgramJSON() string {
	return `{
  "instructions": [
    {"op": "Push", "operand": {"kind": "int", "int": 10}, "line": 1, "source": "push 10"},
    {"op": "Push", "operand": {"kind": "int", "int": 20}, "line": 2, "source": "push 20"},
    {"op": "Add", "line": 3, "source": "add"},
    {"op": "Halt", "line": 4, "source": "halt"}
  ],
  "symbols": {"total": 0}
}`
}

func TestLoadReader_BuildsProgramAndSourceMap(t *testing.T) {
	program, sourceMap, symbols, err := LoadReader(strings.NewReader(exampleProgramJSON()))
	if err != nil {
		t.Fatalf("LoadReader failed: %v", err)
	}
	if program.Len() != 4 {
		t.Fatalf("expected 4 instructions, got %d", program.Len())
	}
	if program.Instructions[2].Opcode != vm.Add {
		t.Errorf("expected instruction 2 to be Add, got %v", program.Instructions[2].Opcode)
	}
	if sourceMap[3] != "add" {
		t.Errorf("expected source map line 3 to be %q, got %q", "add", sourceMap[3])
	}
	if addr, ok := symbols["total"]; !ok || addr != 0 {
		t.Errorf("expected symbol %q at address 0, got %v (ok=%v)", "total", addr, ok)
	}
}

func TestLoadReader_NoSymbolsYieldsEmptyTable(t *testing.T) {
	doc := `{"instructions": [{"op": "Halt", "line": 1}]}`
	_, _, symbols, err := LoadReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(symbols) != 0 {
		t.Errorf("expected no symbols, got %v", symbols)
	}
}

func TestLoadReader_UnknownOpcode(t *testing.T) {
	doc := `{"instructions": [{"op": "Nonsense", "line": 1}]}`
	if _, _, _, err := LoadReader(strings.NewReader(doc)); err == nil {
		t.Error("expected error for unknown opcode")
	}
}

func TestLoadReader_UnknownOperandKind(t *testing.T) {
	doc := `{"instructions": [{"op": "Push", "operand": {"kind": "complex"}, "line": 1}]}`
	if _, _, _, err := LoadReader(strings.NewReader(doc)); err == nil {
		t.Error("expected error for unknown operand kind")
	}
}

func TestLoadReader_DuplicateLabelRejected(t *testing.T) {
	doc := `{
  "instructions": [
    {"op": "Label", "operand": {"kind": "string", "string": "loop"}, "line": 1},
    {"op": "Label", "operand": {"kind": "string", "string": "loop"}, "line": 2},
    {"op": "Halt", "line": 3}
  ]
}`
	if _, _, _, err := LoadReader(strings.NewReader(doc)); err == nil {
		t.Error("expected error for duplicate label")
	}
}

func TestLoadReader_MalformedJSON(t *testing.T) {
	if _, _, _, err := LoadReader(strings.NewReader("{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
