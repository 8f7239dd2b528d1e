// Package scripting declares the scripting ABI the core consumes. Script
// parsing, bytecode compilation, and interpretation are external
// collaborators per spec.md §1 — this package only names the contracts so
// the core can hold and execute a CompiledProgram/CompiledExpr without
// knowing how either was produced.
package scripting

// Value is a dynamically-typed scripting value: a float64 (GML has no
// separate int type at the value layer), a string, or an instance/array
// reference opaque to the core.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Ref  any
}

// ValueKind discriminates the union stored in Value.
type ValueKind uint8

const (
	KindReal ValueKind = iota
	KindString
	KindRef
)

// Program is a compiled action tree for an event handler, timeline moment,
// or room creation code block. The core treats it as opaque and immutable;
// it may be shared across every instance of an object.
type Program interface {
	// ProgramID is a stable identifier used only for diagnostics (e.g.
	// surfaced in ScriptError messages); it carries no semantic meaning
	// to the core.
	ProgramID() int32
}

// Expr is a compiled boolean/numeric expression, used for trigger
// conditions and for constant evaluation during room load.
type Expr interface {
	ExprID() int32
}

// Context is the interpreter-facing execution context: the handles the
// program runs against, event metadata, the argument array passed by a
// script call, and a return slot. The core constructs a fresh Context for
// every dispatch; the interpreter mutates it freely during Execute/Eval.
type Context struct {
	Self, Other int64 // instance/tile handles, core-defined encoding
	Category    int32
	Sub         int32
	Args        [16]Value
	ArgCount    int32
	Return      Value
	Locals      map[string]Value
}

// NewContext returns a zero-value Context ready for Execute/Eval.
func NewContext(self, other int64, category, sub int32) *Context {
	return &Context{Self: self, Other: other, Category: category, Sub: sub, Locals: map[string]Value{}}
}

// Interpreter executes compiled programs and expressions against a Context.
// The core invokes it once per dispatched handler; a script error during
// Execute/Eval is surfaced back to the core as an error return rather than
// a panic so the frame pipeline can apply its recoverable-error policy.
type Interpreter interface {
	Execute(p Program, ctx *Context) error
	Eval(e Expr, ctx *Context) (Value, error)
}

// Compiler exposes the compile-time ABI: turning source text into a
// Program/Expr, and populating the constant/script/user-constant tables
// the core's asset loader relies on for name→ID resolution.
type Compiler interface {
	Compile(source string) (Program, error)
	CompileExpression(source string) (Expr, error)
	ReserveConstants(n int)
	ReserveScripts(n int)
	ReserveUserConstants(n int)
	RegisterConstant(name string, value float64)
	RegisterScript(name string, id int32)
	RegisterUserConstant(name string, id int32)
}
