package debugger

// SymbolTable maps a debug-visible variable name to its heap cell address
// (spec.md §4.D: "vars -> a flat map of named variables materialised from
// the symbol table"). It is supplied alongside the program by the loader,
// grounded on the original's 调试符号表 (a name -> address table handed to
// the debugger separately from the instruction stream).
type SymbolTable map[string]int32
