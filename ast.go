// ast.go — located syntax tree for tl.
//
// Every node carries a Span (1-based line, 0-based [StartCol, EndCol)
// column range) so the evaluator and the diagnostics renderer never have to
// re-derive positions. Type annotations (parameter, return, struct field)
// are parsed and kept on the nodes but are not interpreted at runtime.
package tl

// Span locates a node in its source file.
type Span struct {
	Line     int // 1-based
	StartCol int // 0-based
	EndCol   int // 0-based, exclusive
}

func spanOf(t Token) Span {
	return Span{Line: t.Line, StartCol: t.Col, EndCol: t.EndCol}
}

func spanBetween(a, b Span) Span {
	return Span{Line: a.Line, StartCol: a.StartCol, EndCol: b.EndCol}
}

// Node is any located syntax-tree node.
type Node interface {
	Span() Span
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

type node struct {
	pos Span
}

func (n node) Span() Span { return n.pos }

// Program is a parsed source file: a statement sequence whose value is the
// value of the last expression statement.
type Program struct {
	Stmts []Stmt
}

// ----- statements -----

// LetStmt binds the value of an expression to a name in the current scope.
type LetStmt struct {
	node
	Name     string
	NameSpan Span
	Value    Expr
}

// StructDecl declares a named struct type with typed fields and methods.
type StructDecl struct {
	node
	Name     string
	NameSpan Span
	Fields   []StructFieldDecl
	Methods  []StructMethodDecl
}

// StructFieldDecl is a "name = Type" member of a struct declaration.
type StructFieldDecl struct {
	Name     string
	NameSpan Span
	Type     *TypeRef
}

// StructMethodDecl is a "name = (params) { ... }" member of a struct
// declaration.
type StructMethodDecl struct {
	Name     string
	NameSpan Span
	Fn       *FnLit
}

// ExprStmt is an expression evaluated for its value and effects.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) Span() Span { return s.X.Span() }

func (*LetStmt) stmtNode()    {}
func (*StructDecl) stmtNode() {}
func (*ExprStmt) stmtNode()   {}

// ----- expressions -----

// NumLit is an integer literal.
type NumLit struct {
	node
	Value int64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	node
	Value float64
}

// BoolLit is "true" or "false".
type BoolLit struct {
	node
	Value bool
}

// NullLit is the "null" literal.
type NullLit struct {
	node
}

// StrLit is a string literal without interpolation.
type StrLit struct {
	node
	Value string
}

// InterpLit is a string literal with "${...}" interpolation segments.
type InterpLit struct {
	node
	Parts []InterpPart
}

// InterpPart is either literal text (X == nil) or an embedded expression.
type InterpPart struct {
	Text string
	X    Expr
}

// ArrayLit is "[ e1 e2 ... ]" (whitespace separated).
type ArrayLit struct {
	node
	Elems []Expr
}

// ObjectLit is "{ key = value ... }" with insertion order preserved.
type ObjectLit struct {
	node
	Entries []ObjectEntry
}

// ObjectEntry is one "key = value" pair of an object or struct literal.
type ObjectEntry struct {
	Key     string
	KeySpan Span
	Value   Expr
}

// Ident is a name reference.
type Ident struct {
	node
	Name string
}

// BinaryExpr is an arithmetic or comparison operation.
type BinaryExpr struct {
	node
	Op    string // "+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">="
	Left  Expr
	Right Expr
}

// LogicalExpr is "&&" or "||" with short-circuit evaluation.
type LogicalExpr struct {
	node
	Op    string // "&&", "||"
	Left  Expr
	Right Expr
}

// UnaryExpr is "!" or unary "-".
type UnaryExpr struct {
	node
	Op      string
	Operand Expr
}

// IndexExpr is "target[index]" (bracket glued to target).
type IndexExpr struct {
	node
	Target Expr
	Index  Expr
}

// FieldExpr is "target.field".
type FieldExpr struct {
	node
	Target    Expr
	Field     string
	FieldSpan Span
}

// CallExpr is "callee(args...)" (paren glued to callee); commas between
// arguments are optional.
type CallExpr struct {
	node
	Callee Expr
	Args   []Expr
}

// FnLit is an anonymous function literal "(params) { body }" with optional
// type annotations.
type FnLit struct {
	node
	Params []Param
	Return *TypeRef
	Body   *Block
}

// Param is one function parameter with optional type annotation.
type Param struct {
	Name string
	Span Span
	Type *TypeRef
}

// TypeRef is a type annotation by name. Annotations are stored, not checked.
type TypeRef struct {
	node
	Name string
}

// Block is "{ stmts }", the body of a function literal; its value is the
// value of the last expression statement, or null when it ends with a
// non-expression. Blocks are not expressions themselves: a brace in
// expression position always opens an object or struct literal.
type Block struct {
	node
	Stmts []Stmt
}

// StructLit is "Name{ field = value ... }" (brace glued to the type name).
type StructLit struct {
	node
	TypeName string
	NameSpan Span
	Inits    []ObjectEntry
}

func (*NumLit) exprNode()      {}
func (*FloatLit) exprNode()    {}
func (*BoolLit) exprNode()     {}
func (*NullLit) exprNode()     {}
func (*StrLit) exprNode()      {}
func (*InterpLit) exprNode()   {}
func (*ArrayLit) exprNode()    {}
func (*ObjectLit) exprNode()   {}
func (*Ident) exprNode()       {}
func (*BinaryExpr) exprNode()  {}
func (*LogicalExpr) exprNode() {}
func (*UnaryExpr) exprNode()   {}
func (*IndexExpr) exprNode()   {}
func (*FieldExpr) exprNode()   {}
func (*CallExpr) exprNode()    {}
func (*FnLit) exprNode()       {}
func (*StructLit) exprNode()   {}
