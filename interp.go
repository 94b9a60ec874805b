// interp.go — the tree-walking evaluator.
//
// Evaluation is a straight recursive walk over the AST with explicit
// (Value, error) returns; there is no bytecode stage. Every runtime failure
// is a *RuntimeError carrying a kind from the taxonomy below plus the span
// of the node that failed, so the CLI can render a caret snippet without
// any extra bookkeeping here.
package tl

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrKind classifies runtime errors.
type ErrKind int

const (
	ErrUnboundName ErrKind = iota
	ErrTypeMismatch
	ErrArithmetic
	ErrIndexOutOfRange
	ErrUnknownField
	ErrArityMismatch
	ErrDuplicateBinding
	ErrImport
	ErrCircularImport
)

var errKindNames = map[ErrKind]string{
	ErrUnboundName:      "UnboundNameError",
	ErrTypeMismatch:     "TypeMismatchError",
	ErrArithmetic:       "ArithmeticError",
	ErrIndexOutOfRange:  "IndexOutOfRangeError",
	ErrUnknownField:     "UnknownFieldError",
	ErrArityMismatch:    "ArityMismatchError",
	ErrDuplicateBinding: "DuplicateBindingError",
	ErrImport:           "ImportError",
	ErrCircularImport:   "CircularImportError",
}

func (k ErrKind) String() string { return errKindNames[k] }

// RuntimeError is an evaluation failure located at the node that raised it.
// Line is 1-based; Col/EndCol are 0-based columns. Cause holds the inner
// error for import failures.
type RuntimeError struct {
	Kind   ErrKind
	Msg    string
	Line   int
	Col    int
	EndCol int
	Cause  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("RUNTIME ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

func errAt(sp Span, kind ErrKind, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{
		Kind:   kind,
		Msg:    fmt.Sprintf(format, args...),
		Line:   sp.Line,
		Col:    sp.StartCol,
		EndCol: sp.EndCol,
	}
}

// Interp owns the scope roots, the import cache and the output sink.
//
// Core is the sealed prelude frame; Global is the user's top-level scope,
// a child of Core. Imported modules evaluate in fresh children of Core, so
// they see the prelude but never the importer's bindings.
type Interp struct {
	Core   *Env
	Global *Env
	Stdout io.Writer

	modules   map[string]*moduleRec
	loadStack []string // canonical paths of imports in flight
	fileStack []string // files currently evaluating; top resolves imports
}

// NewInterp builds an interpreter with the prelude installed and sealed.
func NewInterp() *Interp {
	ip := &Interp{
		Stdout:  os.Stdout,
		modules: make(map[string]*moduleRec),
	}
	ip.Core = NewEnv(nil)
	registerPrelude(ip)
	ip.Core.Seal()
	ip.Global = NewEnv(ip.Core)
	return ip
}

// EvalSource parses and evaluates src in a fresh child of the global scope,
// returning the program's value (the last expression statement's value).
func (ip *Interp) EvalSource(src string) (Value, error) {
	prog, err := Parse(src)
	if err != nil {
		return NullV, err
	}
	return ip.EvalProgram(prog, NewEnv(ip.Global))
}

// EvalPersistentSource evaluates src directly in the global scope, so
// bindings persist across calls. The REPL feeds lines through this.
func (ip *Interp) EvalPersistentSource(src string) (Value, error) {
	prog, err := Parse(src)
	if err != nil {
		return NullV, err
	}
	return ip.EvalProgram(prog, ip.Global)
}

// RunFile reads and evaluates a program file. Errors come back already
// rendered as caret snippets against the file's source.
func (ip *Interp) RunFile(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NullV, err
	}
	src := string(data)
	ip.fileStack = append(ip.fileStack, path)
	defer func() { ip.fileStack = ip.fileStack[:len(ip.fileStack)-1] }()
	v, err := ip.EvalSource(src)
	if err != nil {
		return NullV, WrapErrorWithName(err, path, src)
	}
	return v, nil
}

// currentFile returns the path of the file being evaluated, or "" at the
// REPL / for raw strings. Import resolution starts from its directory.
func (ip *Interp) currentFile() string {
	if len(ip.fileStack) == 0 {
		return ""
	}
	return ip.fileStack[len(ip.fileStack)-1]
}

// EvalProgram evaluates a parsed program in the given scope.
func (ip *Interp) EvalProgram(prog *Program, env *Env) (Value, error) {
	last := NullV
	for _, stmt := range prog.Stmts {
		v, err := ip.evalStmt(stmt, env)
		if err != nil {
			return NullV, err
		}
		last = v
	}
	return last, nil
}

// ----- statements -----

func (ip *Interp) evalStmt(stmt Stmt, env *Env) (Value, error) {
	switch s := stmt.(type) {
	case *LetStmt:
		v, err := ip.evalExpr(s.Value, env)
		if err != nil {
			return NullV, err
		}
		if f, ok := v.Data.(*Fun); ok && v.Tag == VTFun && f.Name == "" {
			f.Name = s.Name
		}
		env.Define(s.Name, v)
		return NullV, nil

	case *StructDecl:
		st, err := ip.evalStructDecl(s, env)
		if err != nil {
			return NullV, err
		}
		env.Define(s.Name, Value{Tag: VTStructType, Data: st})
		return NullV, nil

	case *ExprStmt:
		return ip.evalExpr(s.X, env)

	default:
		return NullV, errAt(stmt.Span(), ErrTypeMismatch, "unsupported statement")
	}
}

func (ip *Interp) evalStructDecl(s *StructDecl, env *Env) (*StructType, error) {
	seen := make(map[string]bool)
	st := &StructType{
		Name:    s.Name,
		Fields:  s.Fields,
		Methods: make(map[string]*Fun),
	}
	for _, f := range s.Fields {
		if seen[f.Name] {
			return nil, errAt(f.NameSpan, ErrDuplicateBinding,
				"duplicate struct member %q in %s", f.Name, s.Name)
		}
		seen[f.Name] = true
	}
	for _, m := range s.Methods {
		if seen[m.Name] {
			return nil, errAt(m.NameSpan, ErrDuplicateBinding,
				"duplicate struct member %q in %s", m.Name, s.Name)
		}
		seen[m.Name] = true
		if err := checkParams(m.Fn); err != nil {
			return nil, err
		}
		st.Methods[m.Name] = &Fun{
			Name:   s.Name + "." + m.Name,
			Params: m.Fn.Params,
			Body:   m.Fn.Body,
			Env:    env,
		}
		st.Order = append(st.Order, m.Name)
	}
	return st, nil
}

func checkParams(fn *FnLit) error {
	seen := make(map[string]bool)
	for _, p := range fn.Params {
		if seen[p.Name] {
			return errAt(p.Span, ErrDuplicateBinding, "duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// ----- expressions -----

func (ip *Interp) evalExpr(x Expr, env *Env) (Value, error) {
	switch e := x.(type) {
	case *NumLit:
		return NumV(e.Value), nil
	case *FloatLit:
		return FloatV(e.Value), nil
	case *BoolLit:
		return BoolV(e.Value), nil
	case *NullLit:
		return NullV, nil
	case *StrLit:
		return StrV(e.Value), nil

	case *InterpLit:
		var b strings.Builder
		for _, part := range e.Parts {
			if part.X == nil {
				b.WriteString(part.Text)
				continue
			}
			v, err := ip.evalExpr(part.X, env)
			if err != nil {
				return NullV, err
			}
			b.WriteString(FormatValue(v))
		}
		return StrV(b.String()), nil

	case *ArrayLit:
		elems := make([]Value, 0, len(e.Elems))
		for _, el := range e.Elems {
			v, err := ip.evalExpr(el, env)
			if err != nil {
				return NullV, err
			}
			elems = append(elems, v)
		}
		return ArrV(elems), nil

	case *ObjectLit:
		m := NewObjectMap()
		for _, entry := range e.Entries {
			if _, dup := m.Get(entry.Key); dup {
				return NullV, errAt(entry.KeySpan, ErrDuplicateBinding,
					"duplicate key %q in object literal", entry.Key)
			}
			v, err := ip.evalExpr(entry.Value, env)
			if err != nil {
				return NullV, err
			}
			m.Set(entry.Key, v)
		}
		return ObjV(m), nil

	case *Ident:
		if v, ok := env.Lookup(e.Name); ok {
			return v, nil
		}
		return NullV, errAt(e.Span(), ErrUnboundName, "undefined variable: %s", e.Name)

	case *BinaryExpr:
		l, err := ip.evalExpr(e.Left, env)
		if err != nil {
			return NullV, err
		}
		r, err := ip.evalExpr(e.Right, env)
		if err != nil {
			return NullV, err
		}
		return applyBinary(e, l, r)

	case *LogicalExpr:
		return ip.evalLogical(e, env)

	case *UnaryExpr:
		v, err := ip.evalExpr(e.Operand, env)
		if err != nil {
			return NullV, err
		}
		return applyUnary(e, v)

	case *IndexExpr:
		return ip.evalIndex(e, env)

	case *FieldExpr:
		return ip.evalField(e, env)

	case *CallExpr:
		return ip.evalCall(e, env)

	case *FnLit:
		if err := checkParams(e); err != nil {
			return NullV, err
		}
		return FunV(&Fun{Params: e.Params, Body: e.Body, Env: env}), nil

	case *StructLit:
		return ip.evalStructLit(e, env)

	default:
		return NullV, errAt(x.Span(), ErrTypeMismatch, "unsupported expression")
	}
}

func (ip *Interp) evalLogical(e *LogicalExpr, env *Env) (Value, error) {
	l, err := ip.evalExpr(e.Left, env)
	if err != nil {
		return NullV, err
	}
	if l.Tag != VTBool {
		return NullV, errAt(e.Left.Span(), ErrTypeMismatch,
			"operator %q requires boolean operands, got %s", e.Op, l.TypeName())
	}
	lb := l.Data.(bool)
	// Short circuit.
	if e.Op == "&&" && !lb {
		return BoolV(false), nil
	}
	if e.Op == "||" && lb {
		return BoolV(true), nil
	}
	r, err := ip.evalExpr(e.Right, env)
	if err != nil {
		return NullV, err
	}
	if r.Tag != VTBool {
		return NullV, errAt(e.Right.Span(), ErrTypeMismatch,
			"operator %q requires boolean operands, got %s", e.Op, r.TypeName())
	}
	return BoolV(r.Data.(bool)), nil
}

func (ip *Interp) evalIndex(e *IndexExpr, env *Env) (Value, error) {
	target, err := ip.evalExpr(e.Target, env)
	if err != nil {
		return NullV, err
	}
	if target.Tag != VTArray {
		return NullV, errAt(e.Target.Span(), ErrTypeMismatch,
			"cannot index %s, expected array", target.TypeName())
	}
	idx, err := ip.evalExpr(e.Index, env)
	if err != nil {
		return NullV, err
	}
	if idx.Tag != VTNum {
		return NullV, errAt(e.Index.Span(), ErrTypeMismatch,
			"array index must be a number, got %s", idx.TypeName())
	}
	xs := target.Data.([]Value)
	i := idx.Data.(int64)
	if i < 0 || i >= int64(len(xs)) {
		return NullV, errAt(e.Index.Span(), ErrIndexOutOfRange,
			"index %d out of range for array of length %d", i, len(xs))
	}
	return xs[i], nil
}

func (ip *Interp) evalField(e *FieldExpr, env *Env) (Value, error) {
	target, err := ip.evalExpr(e.Target, env)
	if err != nil {
		return NullV, err
	}
	switch target.Tag {
	case VTObject:
		m := target.Data.(*ObjectMap)
		if v, ok := m.Get(e.Field); ok {
			return v, nil
		}
		return NullV, errAt(e.FieldSpan, ErrUnknownField,
			"object has no field %q", e.Field)

	case VTInstance:
		inst := target.Data.(*Instance)
		if v, ok := inst.Fields.Get(e.Field); ok {
			return v, nil
		}
		if m, ok := inst.Type.Methods[e.Field]; ok {
			return FunV(bindReceiver(m, target)), nil
		}
		return NullV, errAt(e.FieldSpan, ErrUnknownField,
			"%s has no field or method %q", inst.Type.Name, e.Field)

	case VTStructType:
		st := target.Data.(*StructType)
		if m, ok := st.Methods[e.Field]; ok {
			return FunV(m), nil
		}
		return NullV, errAt(e.FieldSpan, ErrUnknownField,
			"struct %s has no method %q", st.Name, e.Field)

	default:
		return NullV, errAt(e.Target.Span(), ErrTypeMismatch,
			"cannot access field %q on %s", e.Field, target.TypeName())
	}
}

// bindReceiver derives a method closure whose scope pre-binds self to the
// receiver. Taking instance.method as a value therefore remembers the
// instance it came from. A method may also declare self as its first
// parameter; instance.method(args) then supplies the receiver for it, so
// only the remaining parameters match the call arguments.
func bindReceiver(m *Fun, receiver Value) *Fun {
	frame := NewEnv(m.Env)
	frame.Define("self", receiver)
	params := m.Params
	if len(params) > 0 && params[0].Name == "self" {
		params = params[1:]
	}
	return &Fun{
		Name:   m.Name,
		Params: params,
		Body:   m.Body,
		Env:    frame,
	}
}

func (ip *Interp) evalCall(e *CallExpr, env *Env) (Value, error) {
	callee, err := ip.evalExpr(e.Callee, env)
	if err != nil {
		return NullV, err
	}
	switch callee.Tag {
	case VTBuiltin:
		return callee.Data.(*Builtin).Impl(ip, e, env)

	case VTFun:
		f := callee.Data.(*Fun)
		if len(e.Args) != len(f.Params) {
			return NullV, errAt(e.Span(), ErrArityMismatch,
				"%s expects %d argument(s), got %d", funDesc(f), len(f.Params), len(e.Args))
		}
		callEnv := NewEnv(f.Env)
		for i, arg := range e.Args {
			v, err := ip.evalExpr(arg, env)
			if err != nil {
				return NullV, err
			}
			callEnv.Define(f.Params[i].Name, v)
		}
		return ip.evalBlock(f.Body, callEnv)

	default:
		return NullV, errAt(e.Callee.Span(), ErrTypeMismatch,
			"cannot call %s", callee.TypeName())
	}
}

func funDesc(f *Fun) string {
	if f.Name == "" {
		return "function"
	}
	return fmt.Sprintf("function %s", f.Name)
}

func (ip *Interp) evalStructLit(e *StructLit, env *Env) (Value, error) {
	tv, ok := env.Lookup(e.TypeName)
	if !ok {
		return NullV, errAt(e.NameSpan, ErrUnboundName, "undefined variable: %s", e.TypeName)
	}
	if tv.Tag != VTStructType {
		return NullV, errAt(e.NameSpan, ErrTypeMismatch,
			"%s is not a struct type, it is %s", e.TypeName, tv.TypeName())
	}
	st := tv.Data.(*StructType)

	fields := NewObjectMap()
	for _, init := range e.Inits {
		if !st.HasField(init.Key) {
			return NullV, errAt(init.KeySpan, ErrUnknownField,
				"struct %s has no field %q", st.Name, init.Key)
		}
		if _, dup := fields.Get(init.Key); dup {
			return NullV, errAt(init.KeySpan, ErrDuplicateBinding,
				"duplicate field %q in %s literal", init.Key, st.Name)
		}
		v, err := ip.evalExpr(init.Value, env)
		if err != nil {
			return NullV, err
		}
		fields.Set(init.Key, v)
	}
	// Unset fields start out null, in declaration order.
	ordered := NewObjectMap()
	for _, f := range st.Fields {
		if v, ok := fields.Get(f.Name); ok {
			ordered.Set(f.Name, v)
		} else {
			ordered.Set(f.Name, NullV)
		}
	}
	return Value{Tag: VTInstance, Data: &Instance{Type: st, Fields: ordered}}, nil
}

// evalBlock runs a block in a fresh child scope. Its value is the value of
// the last expression statement, or null if the block is empty or ends in
// a declaration.
func (ip *Interp) evalBlock(blk *Block, env *Env) (Value, error) {
	inner := NewEnv(env)
	last := NullV
	for _, stmt := range blk.Stmts {
		v, err := ip.evalStmt(stmt, inner)
		if err != nil {
			return NullV, err
		}
		last = v
	}
	return last, nil
}
