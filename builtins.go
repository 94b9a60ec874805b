// builtins.go — the prelude.
//
// Builtins receive the call node with unevaluated arguments. Most evaluate
// them eagerly through evalArgs; "if" and "import" are the reason for the
// lazy calling convention: "if" evaluates exactly one branch, "import"
// needs the call site's location for error chaining.
package tl

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

func registerPrelude(ip *Interp) {
	reg := func(name string, impl func(ip *Interp, call *CallExpr, env *Env) (Value, error)) {
		ip.Core.Define(name, BuiltinV(&Builtin{Name: name, Impl: impl}))
	}
	reg("if", builtinIf)
	reg("import", builtinImport)
	reg("println", builtinPrintln)
	reg("print", builtinPrint)
	reg("len", builtinLen)
	reg("all", builtinAll)
	reg("any", builtinAny)
	reg("typeOf", builtinTypeOf)
}

func evalArgs(ip *Interp, call *CallExpr, env *Env) ([]Value, error) {
	args := make([]Value, 0, len(call.Args))
	for _, a := range call.Args {
		v, err := ip.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func needArity(call *CallExpr, name string, n int) error {
	if len(call.Args) != n {
		return errAt(call.Span(), ErrArityMismatch,
			"%s expects %d argument(s), got %d", name, n, len(call.Args))
	}
	return nil
}

// builtinIf is the conditional: if(cond, then, else). The condition must be
// a boolean; only the selected branch is evaluated.
func builtinIf(ip *Interp, call *CallExpr, env *Env) (Value, error) {
	if err := needArity(call, "if", 3); err != nil {
		return NullV, err
	}
	cond, err := ip.evalExpr(call.Args[0], env)
	if err != nil {
		return NullV, err
	}
	if cond.Tag != VTBool {
		return NullV, errAt(call.Args[0].Span(), ErrTypeMismatch,
			"if condition must be a boolean, got %s", cond.TypeName())
	}
	if cond.Data.(bool) {
		return ip.evalExpr(call.Args[1], env)
	}
	return ip.evalExpr(call.Args[2], env)
}

// builtinImport loads a module file and returns its value. See modules.go
// for resolution, caching and cycle detection.
func builtinImport(ip *Interp, call *CallExpr, env *Env) (Value, error) {
	if err := needArity(call, "import", 1); err != nil {
		return NullV, err
	}
	pathV, err := ip.evalExpr(call.Args[0], env)
	if err != nil {
		return NullV, err
	}
	if pathV.Tag != VTStr {
		return NullV, errAt(call.Args[0].Span(), ErrTypeMismatch,
			"import path must be a string, got %s", pathV.TypeName())
	}
	return ip.importModule(pathV.Data.(string), call.Span())
}

func builtinPrintln(ip *Interp, call *CallExpr, env *Env) (Value, error) {
	args, err := evalArgs(ip, call, env)
	if err != nil {
		return NullV, err
	}
	line := joinDisplay(args)
	if strings.HasSuffix(line, "\n") {
		fmt.Fprintln(os.Stderr, "hint: println already appends a newline")
	}
	fmt.Fprintln(ip.Stdout, line)
	return NullV, nil
}

func builtinPrint(ip *Interp, call *CallExpr, env *Env) (Value, error) {
	args, err := evalArgs(ip, call, env)
	if err != nil {
		return NullV, err
	}
	fmt.Fprint(ip.Stdout, joinDisplay(args))
	return NullV, nil
}

func joinDisplay(args []Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = FormatValue(a)
	}
	return strings.Join(parts, " ")
}

// builtinLen returns the length of a string (in runes), array or object.
func builtinLen(ip *Interp, call *CallExpr, env *Env) (Value, error) {
	if err := needArity(call, "len", 1); err != nil {
		return NullV, err
	}
	v, err := ip.evalExpr(call.Args[0], env)
	if err != nil {
		return NullV, err
	}
	switch v.Tag {
	case VTStr:
		return NumV(int64(utf8.RuneCountInString(v.Data.(string)))), nil
	case VTArray:
		return NumV(int64(len(v.Data.([]Value)))), nil
	case VTObject:
		return NumV(int64(v.Data.(*ObjectMap).Len())), nil
	default:
		return NullV, errAt(call.Args[0].Span(), ErrTypeMismatch,
			"len expects a string, array or object, got %s", v.TypeName())
	}
}

func builtinAll(ip *Interp, call *CallExpr, env *Env) (Value, error) {
	xs, err := boolArrayArg(ip, call, env, "all")
	if err != nil {
		return NullV, err
	}
	for _, b := range xs {
		if !b {
			return BoolV(false), nil
		}
	}
	return BoolV(true), nil
}

func builtinAny(ip *Interp, call *CallExpr, env *Env) (Value, error) {
	xs, err := boolArrayArg(ip, call, env, "any")
	if err != nil {
		return NullV, err
	}
	for _, b := range xs {
		if b {
			return BoolV(true), nil
		}
	}
	return BoolV(false), nil
}

func boolArrayArg(ip *Interp, call *CallExpr, env *Env, name string) ([]bool, error) {
	if err := needArity(call, name, 1); err != nil {
		return nil, err
	}
	v, err := ip.evalExpr(call.Args[0], env)
	if err != nil {
		return nil, err
	}
	if v.Tag != VTArray {
		return nil, errAt(call.Args[0].Span(), ErrTypeMismatch,
			"%s expects an array of booleans, got %s", name, v.TypeName())
	}
	xs := v.Data.([]Value)
	out := make([]bool, len(xs))
	for i, x := range xs {
		if x.Tag != VTBool {
			return nil, errAt(call.Args[0].Span(), ErrTypeMismatch,
				"%s expects an array of booleans, element %d is %s", name, i, x.TypeName())
		}
		out[i] = x.Data.(bool)
	}
	return out, nil
}

func builtinTypeOf(ip *Interp, call *CallExpr, env *Env) (Value, error) {
	if err := needArity(call, "typeOf", 1); err != nil {
		return NullV, err
	}
	v, err := ip.evalExpr(call.Args[0], env)
	if err != nil {
		return NullV, err
	}
	return StrV(v.TypeName()), nil
}
