// interp_test.go
package tl

import (
	"bytes"
	"errors"
	"testing"
)

func evalWith(t *testing.T, src string) Value {
	t.Helper()
	ip := NewInterp()
	v, err := ip.EvalSource(src)
	if err != nil {
		t.Fatalf("eval error: %v\nsource:\n%s", err, src)
	}
	return v
}

func evalErr(t *testing.T, src string) *RuntimeError {
	t.Helper()
	ip := NewInterp()
	_, err := ip.EvalSource(src)
	if err == nil {
		t.Fatalf("want error, got none\nsource:\n%s", src)
	}
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v (%T), want *RuntimeError", err, err)
	}
	return re
}

func wantErrKind(t *testing.T, src string, kind ErrKind) *RuntimeError {
	t.Helper()
	re := evalErr(t, src)
	if re.Kind != kind {
		t.Fatalf("kind = %v, want %v (err: %v)", re.Kind, kind, re)
	}
	return re
}

func wantNum(t *testing.T, v Value, n int64) {
	t.Helper()
	if v.Tag != VTNum || v.Data.(int64) != n {
		t.Fatalf("value = %s (%s), want %d", FormatValue(v), v.TypeName(), n)
	}
}

func wantFloat(t *testing.T, v Value, f float64) {
	t.Helper()
	if v.Tag != VTFloat || v.Data.(float64) != f {
		t.Fatalf("value = %s (%s), want %g", FormatValue(v), v.TypeName(), f)
	}
}

func wantStr(t *testing.T, v Value, s string) {
	t.Helper()
	if v.Tag != VTStr || v.Data.(string) != s {
		t.Fatalf("value = %s (%s), want %q", FormatValue(v), v.TypeName(), s)
	}
}

func wantBool(t *testing.T, v Value, b bool) {
	t.Helper()
	if v.Tag != VTBool || v.Data.(bool) != b {
		t.Fatalf("value = %s (%s), want %v", FormatValue(v), v.TypeName(), b)
	}
}

// ----- arithmetic -----

func Test_Eval_Arithmetic_Num(t *testing.T) {
	wantNum(t, evalWith(t, `1 + 2 * 3`), 7)
	wantNum(t, evalWith(t, `7 / 2`), 3)
	wantNum(t, evalWith(t, `7 % 3`), 1)
	wantNum(t, evalWith(t, `-(1 + 2)`), -3)
}

func Test_Eval_Arithmetic_FloatPromotion(t *testing.T) {
	wantFloat(t, evalWith(t, `1 + 2.5`), 3.5)
	wantFloat(t, evalWith(t, `1.0 * 4`), 4.0)
	wantFloat(t, evalWith(t, `7.0 / 2`), 3.5)
}

func Test_Eval_DivisionByZero(t *testing.T) {
	wantErrKind(t, `1 / 0`, ErrArithmetic)
	wantErrKind(t, `1 % 0`, ErrArithmetic)
	wantErrKind(t, `1.5 / 0.0`, ErrArithmetic)
	wantErrKind(t, `1.5 % 0.0`, ErrArithmetic)
}

func Test_Eval_Arithmetic_TypeMismatch(t *testing.T) {
	wantErrKind(t, `1 + "a"`, ErrTypeMismatch)
	wantErrKind(t, `true * 2`, ErrTypeMismatch)
}

func Test_Eval_StringConcat(t *testing.T) {
	wantStr(t, evalWith(t, `"foo" + "bar"`), "foobar")
}

// ----- equality and ordering -----

func Test_Eval_Equality(t *testing.T) {
	wantBool(t, evalWith(t, `1 == 1.0`), true)
	wantBool(t, evalWith(t, `1 == "1"`), false)
	wantBool(t, evalWith(t, `null == null`), true)
	wantBool(t, evalWith(t, `[ 1 2 ] == [ 1 2 ]`), true)
	wantBool(t, evalWith(t, `[ 1 2 ] != [ 2 1 ]`), true)
	wantBool(t, evalWith(t, `{ a = 1 } == { a = 1 }`), true)
	wantBool(t, evalWith(t, `{ a = 1 } == { a = 2 }`), false)
}

func Test_Eval_Ordering(t *testing.T) {
	wantBool(t, evalWith(t, `2 < 2.5`), true)
	wantBool(t, evalWith(t, `"abc" < "abd"`), true)
	wantErrKind(t, `"a" < 1`, ErrTypeMismatch)
}

// ----- booleans -----

func Test_Eval_Logical_ShortCircuit(t *testing.T) {
	// The right side would raise UnboundName if evaluated.
	wantBool(t, evalWith(t, `false && boom`), false)
	wantBool(t, evalWith(t, `true || boom`), true)
	wantBool(t, evalWith(t, `true && false`), false)
}

func Test_Eval_Logical_RequiresBool(t *testing.T) {
	wantErrKind(t, `1 && true`, ErrTypeMismatch)
	wantErrKind(t, `false || 0`, ErrTypeMismatch)
	wantErrKind(t, `!0`, ErrTypeMismatch)
}

// ----- conditionals -----

func Test_Eval_If_BasicAndLazy(t *testing.T) {
	wantStr(t, evalWith(t, `if(10 > 5, "big", "small")`), "big")
	// Only the selected branch evaluates; the other names are unbound.
	wantNum(t, evalWith(t, `if(true, 1, boom)`), 1)
	wantNum(t, evalWith(t, `if(false, boom, 2)`), 2)
}

func Test_Eval_If_ConditionMustBeBool(t *testing.T) {
	wantErrKind(t, `if(1, 2, 3)`, ErrTypeMismatch)
}

func Test_Eval_If_Arity(t *testing.T) {
	wantErrKind(t, `if(true, 1)`, ErrArityMismatch)
}

// ----- bindings and scope -----

func Test_Eval_Let_AndShadowing(t *testing.T) {
	wantNum(t, evalWith(t, `
let x = 1
let f = () { let x = 2 x }
f() + x`), 3)
}

func Test_Eval_UnboundName(t *testing.T) {
	re := wantErrKind(t, `nope`, ErrUnboundName)
	if re.Line != 1 || re.Col != 0 {
		t.Fatalf("location = %d:%d, want 1:0", re.Line, re.Col)
	}
}

func Test_Eval_Closure_CapturesDefiningScope(t *testing.T) {
	wantNum(t, evalWith(t, `
let make = (n) { (m) { n + m } }
let add2 = make(2)
add2(40)`), 42)
}

func Test_Eval_PreludeShadowing_IsLocal(t *testing.T) {
	// Shadowing a builtin works in the user scope...
	wantNum(t, evalWith(t, `
let len = 7
len`), 7)
	// ...and the prelude binding itself is untouched.
	wantNum(t, evalWith(t, `len([ 1 2 3 ])`), 3)
}

func Test_Eval_ReplPersistence(t *testing.T) {
	ip := NewInterp()
	if _, err := ip.EvalPersistentSource(`let x = 40`); err != nil {
		t.Fatalf("eval error: %v", err)
	}
	v, err := ip.EvalPersistentSource(`x + 2`)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	wantNum(t, v, 42)
}

// ----- functions -----

func Test_Eval_Function_E2E_Interpolation(t *testing.T) {
	wantStr(t, evalWith(t, `
let greet = (name) { "Hello, ${name}!" }
greet("John Doe")`), "Hello, John Doe!")
}

func Test_Eval_Function_Arity(t *testing.T) {
	wantErrKind(t, `((a) { a })(1, 2)`, ErrArityMismatch)
	wantErrKind(t, `((a, b) { a })(1)`, ErrArityMismatch)
}

func Test_Eval_Function_DuplicateParam(t *testing.T) {
	wantErrKind(t, `(a, a) { a }`, ErrDuplicateBinding)
}

func Test_Eval_Function_BodyValue_IsLastExpression(t *testing.T) {
	wantNum(t, evalWith(t, `(() { let a = 1 a + 1 })()`), 2)
	v := evalWith(t, `(() { let a = 1 })()`)
	if !v.IsAbsent() {
		t.Fatalf("value = %s, want null", FormatValue(v))
	}
}

func Test_Eval_CallNonFunction(t *testing.T) {
	wantErrKind(t, `let x = 3 x(1)`, ErrTypeMismatch)
}

// ----- arrays and objects -----

func Test_Eval_Array_IndexAndBounds(t *testing.T) {
	wantNum(t, evalWith(t, `[ 10 20 30 ][1]`), 20)
	wantErrKind(t, `[ 10 ][1]`, ErrIndexOutOfRange)
	wantErrKind(t, `[ 10 ][-1]`, ErrIndexOutOfRange)
	wantErrKind(t, `[ 10 ]["0"]`, ErrTypeMismatch)
	wantErrKind(t, `"abc"[0]`, ErrTypeMismatch)
}

func Test_Eval_Object_FieldAccess(t *testing.T) {
	wantNum(t, evalWith(t, `{ a = 1 b = 2 }.b`), 2)
	wantErrKind(t, `{ a = 1 }.c`, ErrUnknownField)
}

func Test_Eval_Object_MethodLikeField(t *testing.T) {
	wantNum(t, evalWith(t, `{ add = (a, b) { a + b } }.add(3, 5)`), 8)
}

func Test_Eval_Object_DuplicateKey(t *testing.T) {
	wantErrKind(t, `{ a = 1 a = 2 }`, ErrDuplicateBinding)
}

func Test_Eval_Object_InsertionOrder(t *testing.T) {
	v := evalWith(t, `{ b = 1 a = 2 }`)
	m := v.Data.(*ObjectMap)
	if len(m.Keys) != 2 || m.Keys[0] != "b" || m.Keys[1] != "a" {
		t.Fatalf("keys = %v, want [b a]", m.Keys)
	}
}

// ----- structs -----

const pointDecl = `
struct Point {
  x = Num
  y = Num
  sum = () { self.x + self.y }
  scaled = (k) { self.x * k + self.y * k }
}
`

func Test_Eval_Struct_InstantiateAndAccess(t *testing.T) {
	wantNum(t, evalWith(t, pointDecl+`Point{ x = 1 y = 2 }.x`), 1)
}

func Test_Eval_Struct_MethodCall(t *testing.T) {
	wantNum(t, evalWith(t, pointDecl+`Point{ x = 1 y = 2 }.sum()`), 3)
	wantNum(t, evalWith(t, pointDecl+`Point{ x = 1 y = 2 }.scaled(10)`), 30)
}

func Test_Eval_Struct_BoundMethod_RemembersReceiver(t *testing.T) {
	wantNum(t, evalWith(t, pointDecl+`
let p = Point{ x = 40 y = 2 }
let f = p.sum
f()`), 42)
}

const namedSelfDecl = `
struct Box {
  v = Num
  get = (self) { self.v }
  plus = (self, k) { self.v + k }
}
`

func Test_Eval_Struct_MethodWithDeclaredSelf(t *testing.T) {
	wantNum(t, evalWith(t, namedSelfDecl+`Box{ v = 7 }.get()`), 7)
	wantNum(t, evalWith(t, namedSelfDecl+`Box{ v = 40 }.plus(2)`), 42)
}

func Test_Eval_Struct_MethodWithDeclaredSelf_Arity(t *testing.T) {
	// The receiver covers self; only the remaining parameters count.
	wantErrKind(t, namedSelfDecl+`Box{ v = 1 }.get(9)`, ErrArityMismatch)
	wantErrKind(t, namedSelfDecl+`Box{ v = 1 }.plus()`, ErrArityMismatch)
}

func Test_Eval_Struct_BoundMethodWithDeclaredSelf(t *testing.T) {
	wantNum(t, evalWith(t, namedSelfDecl+`
let b = Box{ v = 5 }
let g = b.get
g()`), 5)
}

func Test_Eval_Struct_UnknownInitField(t *testing.T) {
	wantErrKind(t, pointDecl+`Point{ z = 1 }`, ErrUnknownField)
}

func Test_Eval_Struct_UnsetFieldsAreNull(t *testing.T) {
	v := evalWith(t, pointDecl+`Point{ x = 1 }.y`)
	if !v.IsAbsent() {
		t.Fatalf("value = %s, want null", FormatValue(v))
	}
}

func Test_Eval_Struct_DuplicateMember(t *testing.T) {
	wantErrKind(t, `struct S { a = Num a = Str }`, ErrDuplicateBinding)
}

func Test_Eval_Struct_UnknownFieldAccess(t *testing.T) {
	wantErrKind(t, pointDecl+`Point{ x = 1 }.z`, ErrUnknownField)
}

// ----- interpolation -----

func Test_Eval_Interpolation_DisplayForms(t *testing.T) {
	wantStr(t, evalWith(t, `"xs=${[ 1 2 3 ]}"`), "xs=[ 1 2 3 ]")
	wantStr(t, evalWith(t, `"o=${{ a = 1 }}"`), "o={ a = 1 }")
	wantStr(t, evalWith(t, `"n=${null}"`), "n=null")
}

// ----- prelude -----

func Test_Eval_Builtin_Len(t *testing.T) {
	wantNum(t, evalWith(t, `len("héllo")`), 5)
	wantNum(t, evalWith(t, `len([ 1 2 ])`), 2)
	wantNum(t, evalWith(t, `len({ a = 1 })`), 1)
	wantErrKind(t, `len(1)`, ErrTypeMismatch)
}

func Test_Eval_Builtin_AllAny(t *testing.T) {
	wantBool(t, evalWith(t, `all([ true true ])`), true)
	wantBool(t, evalWith(t, `all([ true false ])`), false)
	wantBool(t, evalWith(t, `all([ ])`), true)
	wantBool(t, evalWith(t, `any([ false true ])`), true)
	wantBool(t, evalWith(t, `any([ ])`), false)
	wantErrKind(t, `all([ 1 ])`, ErrTypeMismatch)
}

func Test_Eval_Builtin_TypeOf(t *testing.T) {
	wantStr(t, evalWith(t, `typeOf(1)`), "number")
	wantStr(t, evalWith(t, `typeOf(1.5)`), "float")
	wantStr(t, evalWith(t, `typeOf("s")`), "string")
	wantStr(t, evalWith(t, `typeOf(null)`), "null")
	wantStr(t, evalWith(t, `typeOf([ ])`), "array")
	wantStr(t, evalWith(t, `typeOf(() { 1 })`), "function")
	wantStr(t, evalWith(t, pointDecl+`typeOf(Point{ x = 1 })`), "Point")
}

func Test_Eval_Builtin_Println_Output(t *testing.T) {
	ip := NewInterp()
	var buf bytes.Buffer
	ip.Stdout = &buf
	if _, err := ip.EvalSource(`println("a", 1 + 1)  print("x")`); err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got := buf.String(); got != "a 2\nx" {
		t.Fatalf("output = %q, want %q", got, "a 2\nx")
	}
}
