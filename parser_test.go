// parser_test.go
package tl

import (
	"errors"
	"testing"
)

func parse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return prog
}

func parseExpr(t *testing.T, src string) Expr {
	t.Helper()
	prog := parse(t, src)
	if len(prog.Stmts) != 1 {
		t.Fatalf("want 1 statement, got %d", len(prog.Stmts))
	}
	es, ok := prog.Stmts[0].(*ExprStmt)
	if !ok {
		t.Fatalf("want expression statement, got %T", prog.Stmts[0])
	}
	return es.X
}

func Test_Parser_Precedence_MulBeforeAdd(t *testing.T) {
	x := parseExpr(t, `1 + 2 * 3`)
	add, ok := x.(*BinaryExpr)
	if !ok || add.Op != "+" {
		t.Fatalf("root = %#v, want +", x)
	}
	mul, ok := add.Right.(*BinaryExpr)
	if !ok || mul.Op != "*" {
		t.Fatalf("right = %#v, want *", add.Right)
	}
}

func Test_Parser_Associativity_Left(t *testing.T) {
	x := parseExpr(t, `1 - 2 - 3`)
	outer, ok := x.(*BinaryExpr)
	if !ok || outer.Op != "-" {
		t.Fatalf("root = %#v", x)
	}
	inner, ok := outer.Left.(*BinaryExpr)
	if !ok || inner.Op != "-" {
		t.Fatalf("left = %#v, want (1 - 2)", outer.Left)
	}
	if outer.Right.(*NumLit).Value != 3 {
		t.Fatalf("right = %#v, want 3", outer.Right)
	}
}

func Test_Parser_Precedence_ComparisonAndLogic(t *testing.T) {
	// a + 1 < b && c || d  =>  ((((a + 1) < b) && c) || d)
	x := parseExpr(t, `a + 1 < b && c || d`)
	or, ok := x.(*LogicalExpr)
	if !ok || or.Op != "||" {
		t.Fatalf("root = %#v, want ||", x)
	}
	and, ok := or.Left.(*LogicalExpr)
	if !ok || and.Op != "&&" {
		t.Fatalf("left = %#v, want &&", or.Left)
	}
	cmp, ok := and.Left.(*BinaryExpr)
	if !ok || cmp.Op != "<" {
		t.Fatalf("left.left = %#v, want <", and.Left)
	}
	if add, ok := cmp.Left.(*BinaryExpr); !ok || add.Op != "+" {
		t.Fatalf("comparison left = %#v, want +", cmp.Left)
	}
}

func Test_Parser_Grouping(t *testing.T) {
	x := parseExpr(t, `(1 + 2) * 3`)
	mul, ok := x.(*BinaryExpr)
	if !ok || mul.Op != "*" {
		t.Fatalf("root = %#v, want *", x)
	}
	if add, ok := mul.Left.(*BinaryExpr); !ok || add.Op != "+" {
		t.Fatalf("left = %#v, want grouped +", mul.Left)
	}
}

func Test_Parser_Array_WhitespaceSeparated(t *testing.T) {
	x := parseExpr(t, `[ 1 (2 + 3) x "s" ]`)
	arr, ok := x.(*ArrayLit)
	if !ok {
		t.Fatalf("root = %#v, want array", x)
	}
	if len(arr.Elems) != 4 {
		t.Fatalf("len(elems) = %d, want 4", len(arr.Elems))
	}
	if _, ok := arr.Elems[1].(*BinaryExpr); !ok {
		t.Fatalf("elems[1] = %#v, want grouped +", arr.Elems[1])
	}
}

func Test_Parser_Array_Empty(t *testing.T) {
	arr := parseExpr(t, `[ ]`).(*ArrayLit)
	if len(arr.Elems) != 0 {
		t.Fatalf("len(elems) = %d, want 0", len(arr.Elems))
	}
}

func Test_Parser_Object_Literal(t *testing.T) {
	x := parseExpr(t, `{ a = 1 b = "two" }`)
	obj, ok := x.(*ObjectLit)
	if !ok {
		t.Fatalf("root = %#v, want object", x)
	}
	if len(obj.Entries) != 2 || obj.Entries[0].Key != "a" || obj.Entries[1].Key != "b" {
		t.Fatalf("entries = %#v", obj.Entries)
	}
}

func Test_Parser_Call_OptionalCommas(t *testing.T) {
	x := parseExpr(t, `f(1 2, 3)`)
	call, ok := x.(*CallExpr)
	if !ok {
		t.Fatalf("root = %#v, want call", x)
	}
	if len(call.Args) != 3 {
		t.Fatalf("len(args) = %d, want 3", len(call.Args))
	}
}

func Test_Parser_PostfixChain(t *testing.T) {
	// a.b[0](1) => call(index(field(a, b), 0), 1)
	x := parseExpr(t, `a.b[0](1)`)
	call, ok := x.(*CallExpr)
	if !ok {
		t.Fatalf("root = %#v, want call", x)
	}
	idx, ok := call.Callee.(*IndexExpr)
	if !ok {
		t.Fatalf("callee = %#v, want index", call.Callee)
	}
	fld, ok := idx.Target.(*FieldExpr)
	if !ok || fld.Field != "b" {
		t.Fatalf("target = %#v, want field b", idx.Target)
	}
}

func Test_Parser_FnLit_ParamsAndAnnotations(t *testing.T) {
	x := parseExpr(t, `(a: Num, b): Str { a }`)
	fn, ok := x.(*FnLit)
	if !ok {
		t.Fatalf("root = %#v, want function literal", x)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("len(params) = %d, want 2", len(fn.Params))
	}
	if fn.Params[0].Type == nil || fn.Params[0].Type.Name != "Num" {
		t.Fatalf("params[0].Type = %#v, want Num", fn.Params[0].Type)
	}
	if fn.Params[1].Type != nil {
		t.Fatalf("params[1].Type = %#v, want nil", fn.Params[1].Type)
	}
	if fn.Return == nil || fn.Return.Name != "Str" {
		t.Fatalf("return = %#v, want Str", fn.Return)
	}
}

func Test_Parser_FnLit_NoParams_VsGrouping(t *testing.T) {
	if _, ok := parseExpr(t, `() { 1 }`).(*FnLit); !ok {
		t.Fatalf("() { 1 } should parse as a function literal")
	}
	if _, ok := parseExpr(t, `(1)`).(*NumLit); !ok {
		t.Fatalf("(1) should parse as grouping")
	}
}

func Test_Parser_If_IsOrdinaryCall(t *testing.T) {
	x := parseExpr(t, `if(10 > 5, "big", "small")`)
	call, ok := x.(*CallExpr)
	if !ok {
		t.Fatalf("root = %#v, want call", x)
	}
	id, ok := call.Callee.(*Ident)
	if !ok || id.Name != "if" {
		t.Fatalf("callee = %#v, want identifier if", call.Callee)
	}
	if len(call.Args) != 3 {
		t.Fatalf("len(args) = %d, want 3", len(call.Args))
	}
}

func Test_Parser_StructDecl_FieldsAndMethods(t *testing.T) {
	prog := parse(t, `
struct Point {
  x = Num
  y = Num
  sum = () { self.x + self.y }
}`)
	decl, ok := prog.Stmts[0].(*StructDecl)
	if !ok {
		t.Fatalf("stmt = %#v, want struct declaration", prog.Stmts[0])
	}
	if decl.Name != "Point" || len(decl.Fields) != 2 || len(decl.Methods) != 1 {
		t.Fatalf("decl = %#v", decl)
	}
	if decl.Fields[0].Type.Name != "Num" {
		t.Fatalf("field type = %#v", decl.Fields[0].Type)
	}
	if decl.Methods[0].Name != "sum" {
		t.Fatalf("method = %#v", decl.Methods[0])
	}
}

func Test_Parser_StructLit_GluedBrace(t *testing.T) {
	x := parseExpr(t, `Point{ x = 1 y = 2 }`)
	lit, ok := x.(*StructLit)
	if !ok {
		t.Fatalf("root = %#v, want struct literal", x)
	}
	if lit.TypeName != "Point" || len(lit.Inits) != 2 {
		t.Fatalf("lit = %#v", lit)
	}
}

func Test_Parser_Interpolation_Expression(t *testing.T) {
	x := parseExpr(t, `"a${1 + 2}b"`)
	lit, ok := x.(*InterpLit)
	if !ok {
		t.Fatalf("root = %#v, want interpolated string", x)
	}
	if len(lit.Parts) != 3 {
		t.Fatalf("len(parts) = %d, want 3", len(lit.Parts))
	}
	if bin, ok := lit.Parts[1].X.(*BinaryExpr); !ok || bin.Op != "+" {
		t.Fatalf("parts[1] = %#v, want +", lit.Parts[1].X)
	}
}

func Test_Parser_Error_ExpectedAndFound(t *testing.T) {
	_, err := Parse(`let = 3`)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if pe.Expected != "binding name" {
		t.Fatalf("expected = %q", pe.Expected)
	}
	if pe.Line != 1 || pe.Col != 4 {
		t.Fatalf("location = %d:%d, want 1:4", pe.Line, pe.Col)
	}
}

func Test_Parser_Error_ColonInObjectEntry(t *testing.T) {
	_, err := Parse(`{ a : 1 }.a`)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if pe.Expected != "'=' between key and value (':' is not the separator here)" {
		t.Fatalf("expected = %q", pe.Expected)
	}
	if pe.Found != `":"` {
		t.Fatalf("found = %q", pe.Found)
	}
	if pe.Line != 1 || pe.Col != 4 {
		t.Fatalf("location = %d:%d, want 1:4", pe.Line, pe.Col)
	}
}

func Test_Parser_Error_ColonInStructLiteral(t *testing.T) {
	src := "struct Pt {\n  x = Num\n}\nPt{ x : 1 }"
	_, err := Parse(src)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if pe.Expected != "'=' between key and value (':' is not the separator here)" {
		t.Fatalf("expected = %q", pe.Expected)
	}
	if pe.Line != 4 {
		t.Fatalf("line = %d, want 4", pe.Line)
	}
}

func Test_Parser_Error_AtEOF_IsIncomplete(t *testing.T) {
	_, err := Parse(`let greet = (name) {`)
	if err == nil {
		t.Fatalf("want error")
	}
	if !IsIncomplete(err) {
		t.Fatalf("err = %v, want incomplete", err)
	}
	_, err = Parse(`let = 3`)
	if IsIncomplete(err) {
		t.Fatalf("mid-input error should not be incomplete: %v", err)
	}
}

func Test_Parser_Spans(t *testing.T) {
	x := parseExpr(t, `1 + 23`)
	sp := x.Span()
	if sp.Line != 1 || sp.StartCol != 0 || sp.EndCol != 6 {
		t.Fatalf("span = %#v", sp)
	}
}
