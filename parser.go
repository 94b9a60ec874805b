// parser.go — recursive-descent + Pratt parser for tl.
//
// The grammar leans on the lexer's whitespace-sensitive brackets: CLROUND
// always means "call", CLSQUARE "index", CLCURLY "struct literal", so the
// comma-less array and argument syntax parses without backtracking. The one
// place that needs lookahead is "(": it opens either a grouping or a
// function-literal parameter list, decided by scanning ahead for a
// parameter-shaped sequence.
package tl

import "fmt"

// ParseError is a syntax diagnostic: what the parser expected and what it
// found instead. Line is 1-based, Col/EndCol are 0-based columns.
type ParseError struct {
	Line     int
	Col      int
	EndCol   int
	Expected string
	Found    string
	AtEOF    bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: expected %s, found %s",
		e.Line, e.Col+1, e.Expected, e.Found)
}

// IsIncomplete reports whether err indicates that the input stopped in the
// middle of a construct, so that more lines could still complete it. The
// REPL uses this to decide between evaluating and prompting for more.
func IsIncomplete(err error) bool {
	if pe, ok := err.(*ParseError); ok {
		return pe.AtEOF
	}
	if le, ok := err.(*LexError); ok {
		return le.Msg == "string was not terminated" ||
			le.Msg == "interpolation was not terminated with '}'"
	}
	return false
}

// Parse lexes and parses a source string into a Program.
func Parse(src string) (*Program, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.program()
}

type parser struct {
	toks []Token
	i    int
}

func (p *parser) peek() Token { return p.toks[p.i] }

func (p *parser) peekN(n int) Token {
	idx := p.i + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[idx]
}

func (p *parser) next() Token {
	t := p.toks[p.i]
	if t.Type != EOF {
		p.i++
	}
	return t
}

func (p *parser) match(tt TokenType) bool {
	if p.peek().Type == tt {
		p.next()
		return true
	}
	return false
}

func (p *parser) need(tt TokenType, expected string) (Token, error) {
	if p.peek().Type != tt {
		return Token{}, p.errExpected(expected)
	}
	return p.next(), nil
}

func (p *parser) errExpected(expected string) error {
	t := p.peek()
	found := describeToken(t)
	return &ParseError{
		Line:     t.Line,
		Col:      t.Col,
		EndCol:   t.EndCol,
		Expected: expected,
		Found:    found,
		AtEOF:    t.Type == EOF,
	}
}

func describeToken(t Token) string {
	switch t.Type {
	case EOF:
		return "end of input"
	case STRING:
		return "string literal"
	case NUM, FLOAT:
		return fmt.Sprintf("number %q", t.Lexeme)
	case ID:
		return fmt.Sprintf("identifier %q", t.Lexeme)
	default:
		return fmt.Sprintf("%q", t.Lexeme)
	}
}

// ----- precedence -----

func lbp(tt TokenType) int {
	switch tt {
	case OR:
		return 10
	case AND:
		return 20
	case EQ, NEQ:
		return 30
	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		return 40
	case PLUS, MINUS:
		return 50
	case MULT, DIV, MOD:
		return 60
	default:
		return 0
	}
}

// ----- grammar -----

func (p *parser) program() (*Program, error) {
	prog := &Program{}
	for p.peek().Type != EOF {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	return prog, nil
}

func (p *parser) statement() (Stmt, error) {
	switch p.peek().Type {
	case LET:
		return p.letStmt()
	case STRUCT:
		return p.structDecl()
	default:
		x, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{X: x}, nil
	}
}

func (p *parser) letStmt() (Stmt, error) {
	kw := p.next() // let
	name, err := p.need(ID, "binding name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ASSIGN, "'='"); err != nil {
		return nil, err
	}
	val, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	return &LetStmt{
		node:     node{pos: spanBetween(spanOf(kw), val.Span())},
		Name:     name.Lexeme,
		NameSpan: spanOf(name),
		Value:    val,
	}, nil
}

// structDecl parses "struct Name { field = Type ... method = (params) { ... } ... }".
// Members whose right-hand side opens a parameter list are methods; all
// others are typed fields.
func (p *parser) structDecl() (Stmt, error) {
	kw := p.next() // struct
	name, err := p.need(ID, "struct name")
	if err != nil {
		return nil, err
	}
	if p.peek().Type != LCURLY && p.peek().Type != CLCURLY {
		return nil, p.errExpected("'{'")
	}
	p.next()

	decl := &StructDecl{
		Name:     name.Lexeme,
		NameSpan: spanOf(name),
	}
	for p.peek().Type != RCURLY {
		member, err := p.need(ID, "struct member name")
		if err != nil {
			return nil, err
		}
		if _, err := p.need(ASSIGN, "'='"); err != nil {
			return nil, err
		}
		if p.peek().Type == LROUND || p.peek().Type == CLROUND {
			fn, err := p.fnLit()
			if err != nil {
				return nil, err
			}
			decl.Methods = append(decl.Methods, StructMethodDecl{
				Name:     member.Lexeme,
				NameSpan: spanOf(member),
				Fn:       fn,
			})
			continue
		}
		tr, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		decl.Fields = append(decl.Fields, StructFieldDecl{
			Name:     member.Lexeme,
			NameSpan: spanOf(member),
			Type:     tr,
		})
	}
	close := p.next() // }
	decl.node = node{pos: spanBetween(spanOf(kw), spanOf(close))}
	return decl, nil
}

func (p *parser) typeRef() (*TypeRef, error) {
	t := p.peek()
	if t.Type != TYPE && t.Type != ID {
		return nil, p.errExpected("type name")
	}
	p.next()
	return &TypeRef{node: node{pos: spanOf(t)}, Name: t.Lexeme}, nil
}

// expr is the Pratt precedence climb. rbp is the binding power to the left;
// operators bind left-associatively.
func (p *parser) expr(rbp int) (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		bp := lbp(op.Type)
		if bp <= rbp {
			return left, nil
		}
		p.next()
		right, err := p.expr(bp)
		if err != nil {
			return nil, err
		}
		pos := spanBetween(left.Span(), right.Span())
		switch op.Type {
		case AND, OR:
			left = &LogicalExpr{node: node{pos: pos}, Op: op.Lexeme, Left: left, Right: right}
		default:
			left = &BinaryExpr{node: node{pos: pos}, Op: op.Lexeme, Left: left, Right: right}
		}
	}
}

func (p *parser) unary() (Expr, error) {
	t := p.peek()
	if t.Type == BANG || t.Type == MINUS {
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{
			node:    node{pos: spanBetween(spanOf(t), operand.Span())},
			Op:      t.Lexeme,
			Operand: operand,
		}, nil
	}
	return p.postfix()
}

// postfix parses a primary expression followed by any chain of calls,
// indexing, field access and struct instantiation.
func (p *parser) postfix() (Expr, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case CLROUND:
			p.next()
			var args []Expr
			for p.peek().Type != RROUND {
				if p.match(COMMA) {
					continue
				}
				arg, err := p.expr(0)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
			close := p.next() // )
			x = &CallExpr{
				node:   node{pos: spanBetween(x.Span(), spanOf(close))},
				Callee: x,
				Args:   args,
			}
		case CLSQUARE:
			p.next()
			idx, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			close, err := p.need(RSQUARE, "']'")
			if err != nil {
				return nil, err
			}
			x = &IndexExpr{
				node:   node{pos: spanBetween(x.Span(), spanOf(close))},
				Target: x,
				Index:  idx,
			}
		case PERIOD:
			p.next()
			field, err := p.need(ID, "field name")
			if err != nil {
				return nil, err
			}
			x = &FieldExpr{
				node:      node{pos: spanBetween(x.Span(), spanOf(field))},
				Target:    x,
				Field:     field.Lexeme,
				FieldSpan: spanOf(field),
			}
		case CLCURLY:
			id, ok := x.(*Ident)
			if !ok {
				return x, nil
			}
			p.next()
			inits, close, err := p.entryList()
			if err != nil {
				return nil, err
			}
			x = &StructLit{
				node:     node{pos: spanBetween(id.Span(), spanOf(close))},
				TypeName: id.Name,
				NameSpan: id.Span(),
				Inits:    inits,
			}
		default:
			return x, nil
		}
	}
}

// entryList parses "key = value" pairs up to and including the closing "}".
// The separator is "=" only; a ":" after the key gets its own diagnostic
// because it reads so much like one.
func (p *parser) entryList() ([]ObjectEntry, Token, error) {
	var entries []ObjectEntry
	for p.peek().Type != RCURLY {
		key, err := p.need(ID, "key name")
		if err != nil {
			return nil, Token{}, err
		}
		if p.peek().Type == COLON {
			return nil, Token{}, p.errExpected("'=' between key and value (':' is not the separator here)")
		}
		if _, err := p.need(ASSIGN, "'='"); err != nil {
			return nil, Token{}, err
		}
		val, err := p.expr(0)
		if err != nil {
			return nil, Token{}, err
		}
		entries = append(entries, ObjectEntry{
			Key:     key.Lexeme,
			KeySpan: spanOf(key),
			Value:   val,
		})
	}
	return entries, p.next(), nil
}

func (p *parser) primary() (Expr, error) {
	t := p.peek()
	switch t.Type {
	case NUM:
		p.next()
		return &NumLit{node: node{pos: spanOf(t)}, Value: t.Literal.(int64)}, nil
	case FLOAT:
		p.next()
		return &FloatLit{node: node{pos: spanOf(t)}, Value: t.Literal.(float64)}, nil
	case BOOLEAN:
		p.next()
		return &BoolLit{node: node{pos: spanOf(t)}, Value: t.Literal.(bool)}, nil
	case NULL:
		p.next()
		return &NullLit{node: node{pos: spanOf(t)}}, nil
	case STRING:
		p.next()
		return p.stringLit(t)
	case ID, TYPE, IF:
		// "if" is a reserved name bound in the prelude; in expression
		// position it behaves like any other identifier.
		p.next()
		return &Ident{node: node{pos: spanOf(t)}, Name: t.Lexeme}, nil
	case LSQUARE, CLSQUARE:
		return p.arrayLit()
	case LCURLY:
		return p.objectLit()
	case LROUND, CLROUND:
		if p.looksLikeFnLit() {
			return p.fnLit()
		}
		p.next()
		inner, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RROUND, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, p.errExpected("expression")
	}
}

// stringLit turns a STRING token's parts into a StrLit or InterpLit,
// parsing each interpolation sub-stream as a full expression.
func (p *parser) stringLit(t Token) (Expr, error) {
	parts := t.Literal.([]StrPart)
	if len(parts) == 1 && parts[0].Toks == nil {
		return &StrLit{node: node{pos: spanOf(t)}, Value: parts[0].Text}, nil
	}
	lit := &InterpLit{node: node{pos: spanOf(t)}}
	for _, part := range parts {
		if part.Toks == nil {
			lit.Parts = append(lit.Parts, InterpPart{Text: part.Text})
			continue
		}
		sub := &parser{toks: part.Toks}
		x, err := sub.expr(0)
		if err != nil {
			return nil, err
		}
		if sub.peek().Type != EOF {
			return nil, sub.errExpected("end of interpolation")
		}
		lit.Parts = append(lit.Parts, InterpPart{X: x})
	}
	return lit, nil
}

// arrayLit parses "[ e1 e2 ... ]"; elements are whitespace separated.
func (p *parser) arrayLit() (Expr, error) {
	open := p.next()
	var elems []Expr
	for p.peek().Type != RSQUARE {
		elem, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
	close := p.next()
	return &ArrayLit{
		node:  node{pos: spanBetween(spanOf(open), spanOf(close))},
		Elems: elems,
	}, nil
}

func (p *parser) objectLit() (Expr, error) {
	open := p.next()
	entries, close, err := p.entryList()
	if err != nil {
		return nil, err
	}
	return &ObjectLit{
		node:    node{pos: spanBetween(spanOf(open), spanOf(close))},
		Entries: entries,
	}, nil
}

// looksLikeFnLit scans ahead from an opening "(" for a parameter-shaped
// sequence: zero or more "name[: Type]" separated by optional commas, a
// closing ")" and then a block "{" or a ":" return annotation.
func (p *parser) looksLikeFnLit() bool {
	j := 1 // past the "("
	for {
		switch p.peekN(j).Type {
		case RROUND:
			after := p.peekN(j + 1).Type
			return after == LCURLY || after == CLCURLY || after == COLON
		case ID:
			j++
			if p.peekN(j).Type == COLON {
				j++
				if tt := p.peekN(j).Type; tt != TYPE && tt != ID {
					return false
				}
				j++
			}
			if p.peekN(j).Type == COMMA {
				j++
			}
		default:
			return false
		}
	}
}

// fnLit parses "(params) [: Type] { body }".
func (p *parser) fnLit() (*FnLit, error) {
	open := p.next() // ( or glued (
	fn := &FnLit{}
	for p.peek().Type != RROUND {
		if p.match(COMMA) {
			continue
		}
		name, err := p.need(ID, "parameter name")
		if err != nil {
			return nil, err
		}
		param := Param{Name: name.Lexeme, Span: spanOf(name)}
		if p.match(COLON) {
			tr, err := p.typeRef()
			if err != nil {
				return nil, err
			}
			param.Type = tr
		}
		fn.Params = append(fn.Params, param)
	}
	p.next() // )
	if p.match(COLON) {
		tr, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		fn.Return = tr
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	fn.node = node{pos: spanBetween(spanOf(open), body.Span())}
	return fn, nil
}

func (p *parser) block() (*Block, error) {
	if p.peek().Type != LCURLY && p.peek().Type != CLCURLY {
		return nil, p.errExpected("'{'")
	}
	open := p.next()
	blk := &Block{}
	for p.peek().Type != RCURLY {
		if p.peek().Type == EOF {
			return nil, p.errExpected("'}'")
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, stmt)
	}
	close := p.next()
	blk.node = node{pos: spanBetween(spanOf(open), spanOf(close))}
	return blk, nil
}
