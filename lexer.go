// lexer.go — whitespace-sensitive tokenizer for tl.
//
// The lexer turns UTF-8 source into located tokens. Two properties of the
// grammar are decided here rather than in the parser:
//
//   - Open brackets remember whether they were glued to the previous token.
//     "f(x)" emits CLROUND (a call), "f (x)" emits LROUND (grouping); the
//     same split exists for "[" (CLSQUARE = indexing) and "{" (CLCURLY =
//     struct instantiation). This is what keeps the comma-less array syntax
//     "[a (b) c]" unambiguous.
//   - A "-" directly in front of a digit is folded into a negative numeric
//     literal when the previous meaningful token cannot end an expression
//     (operator, "(", ",", start of input). Otherwise it is binary minus.
//
// String literals carry their interpolation structure: "${" opens a nested
// sub-token-stream (lexed here, with real line/column info) that the parser
// later parses as an ordinary expression. The payload of a STRING token is a
// []StrPart, never re-lexed source text.
package tl

import (
	"fmt"
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota

	// Punctuation
	LROUND   // "(" preceded by whitespace
	CLROUND  // "(" glued to the previous token (call)
	RROUND   // ")"
	LSQUARE  // "[" preceded by whitespace
	CLSQUARE // "[" glued to the previous token (index)
	RSQUARE  // "]"
	LCURLY   // "{" preceded by whitespace
	CLCURLY  // "{" glued to the previous token (struct literal)
	RCURLY   // "}"
	COLON    // ":"
	COMMA    // ","
	PERIOD   // "."

	// Operators
	PLUS
	MINUS
	MULT
	DIV
	MOD
	ASSIGN // "="
	EQ     // "=="
	NEQ    // "!="
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ
	AND  // "&&"
	OR   // "||"
	BANG // "!"

	// Literals & identifiers
	ID
	STRING
	NUM
	FLOAT
	BOOLEAN
	NULL

	// Keywords
	LET
	STRUCT
	ENUM
	FN
	IF
	TYPE
)

// Token is a lexical token with optional literal value. Line is 1-based;
// Col and EndCol are 0-based columns, EndCol exclusive.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{} // int64, float64, bool, string or []StrPart
	Line    int
	Col     int
	EndCol  int
}

// StrPart is one segment of a STRING token payload: either literal text or
// the sub-token-stream of a "${...}" interpolation (EOF-terminated).
type StrPart struct {
	Text string
	Toks []Token
}

var keywords = map[string]TokenType{
	"null":   NULL,
	"true":   BOOLEAN,
	"false":  BOOLEAN,
	"let":    LET,
	"struct": STRUCT,
	"enum":   ENUM,
	"fn":     FN,
	"if":     IF,
	"Num":    TYPE,
	"Float":  TYPE,
	"Str":    TYPE,
	"Bool":   TYPE,
}

// Lexer scans a tl source string into tokens.
type Lexer struct {
	src              string
	start            int // start index of current token
	cur              int // current index
	line             int // 1-based
	col              int // 0-based column within line
	tokens           []Token
	whitespaceBefore bool

	// precise token start position
	tokStartLine int
	tokStartCol  int

	// frameBase[len-1] marks where the current interpolation sub-stream
	// begins in tokens; the glue/minus lookback never crosses it.
	frameBase []int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:  src,
		line: 1,
		col:  0,
	}
}

// Scan tokenizes the entire source and returns the tokens, EOF included.
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) rewindToStart() {
	l.cur = l.start
	l.col = l.tokStartCol
	l.line = l.tokStartLine
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	lex := l.src[l.start:l.cur]
	tok := Token{
		Type:    tt,
		Lexeme:  lex,
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
		EndCol:  l.col,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	l.whitespaceBefore = false
	return tok
}

func (l *Lexer) previousToken() *Token {
	base := 0
	if n := len(l.frameBase); n > 0 {
		base = l.frameBase[n-1]
	}
	if len(l.tokens) <= base {
		return nil
	}
	return &l.tokens[len(l.tokens)-1]
}

func (l *Lexer) skipWhitespaceAndComments() {
	l.whitespaceBefore = false
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\n', '\t':
			l.whitespaceBefore = true
			l.advance()
			l.start = l.cur
		case '/':
			if b, ok := l.peekN(1); ok && b == '/' {
				l.whitespaceBefore = true
				for {
					b, ok := l.peek()
					if !ok || b == '\n' {
						break
					}
					l.advance()
				}
				l.start = l.cur
				continue
			}
			return
		default:
			return
		}
	}
}

// canBeLeftOperand reports whether a token type may end an expression. It is
// the lookback used to tell a negative literal from binary minus and a glued
// bracket from a fresh one.
func canBeLeftOperand(t TokenType) bool {
	switch t {
	case ID, STRING, NUM, FLOAT, BOOLEAN, NULL, TYPE, IF,
		RROUND, RSQUARE, RCURLY:
		return true
	default:
		return false
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

// ----- errors -----

// LexError is a malformed-token diagnostic. Line is 1-based, Col/EndCol are
// 0-based columns.
type LexError struct {
	Line   int
	Col    int
	EndCol int
	Msg    string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

func (l *Lexer) err(msg string) error {
	return &LexError{Line: l.line, Col: l.col, EndCol: l.col + 1, Msg: msg}
}

// ----- scanners -----

// scanString parses a double-quoted string literal into []StrPart,
// recursively lexing "${...}" interpolation segments.
func (l *Lexer) scanString() ([]StrPart, error) {
	l.advance() // opening quote

	var parts []StrPart
	var text []byte
	flush := func() {
		if len(text) > 0 {
			parts = append(parts, StrPart{Text: string(text)})
			text = nil
		}
	}

	for !l.isAtEnd() {
		ch, _ := l.advance()
		switch ch {
		case '"':
			flush()
			if len(parts) == 0 {
				parts = append(parts, StrPart{Text: ""})
			}
			return parts, nil
		case '\\':
			esc, ok := l.advance()
			if !ok {
				return nil, l.err("unfinished escape sequence")
			}
			switch esc {
			case '"':
				text = append(text, '"')
			case '\\':
				text = append(text, '\\')
			case '$':
				text = append(text, '$')
			case 'n':
				text = append(text, '\n')
			case 'r':
				text = append(text, '\r')
			case 't':
				text = append(text, '\t')
			case '0':
				text = append(text, 0)
			default:
				return nil, l.err(fmt.Sprintf("invalid escape sequence: \\%c", esc))
			}
		case '$':
			if b, ok := l.peek(); ok && b == '{' {
				l.advance() // consume '{'
				flush()
				sub, err := l.lexInterp()
				if err != nil {
					return nil, err
				}
				parts = append(parts, StrPart{Toks: sub})
				continue
			}
			text = append(text, '$')
		default:
			text = append(text, ch)
		}
	}
	return nil, l.err("string was not terminated")
}

// lexInterp scans tokens until the "}" matching the "${" just consumed,
// honoring nested braces. The closing "}" is consumed but not included.
func (l *Lexer) lexInterp() ([]Token, error) {
	base := len(l.tokens)
	l.frameBase = append(l.frameBase, base)
	defer func() { l.frameBase = l.frameBase[:len(l.frameBase)-1] }()

	depth := 0
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case EOF:
			return nil, &LexError{Line: tok.Line, Col: tok.Col, EndCol: tok.EndCol,
				Msg: "interpolation was not terminated with '}'"}
		case LCURLY, CLCURLY:
			depth++
		case RCURLY:
			if depth == 0 {
				sub := append([]Token(nil), l.tokens[base:len(l.tokens)-1]...)
				eof := tok
				eof.Type = EOF
				eof.Lexeme = ""
				sub = append(sub, eof)
				l.tokens = l.tokens[:base]
				return sub, nil
			}
			depth--
		}
	}
}

// scanIdentifier parses [A-Za-z_][A-Za-z0-9_]*
func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// scanNumber parses an integer or float literal, with an optional leading
// minus sign already validated by the caller.
func (l *Lexer) scanNumber() (tok TokenType, lit interface{}, err error) {
	if b, ok := l.peek(); ok && b == '-' {
		l.advance()
	}
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}

	isFloat := false
	if b, ok := l.peek(); ok && b == '.' {
		if b2, ok2 := l.peekN(1); ok2 && isDigit(b2) {
			isFloat = true
			l.advance() // consume '.'
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}

	lex := l.src[l.start:l.cur]
	if isFloat {
		vf, convErr := strconv.ParseFloat(lex, 64)
		if convErr != nil {
			return EOF, nil, l.err("invalid float literal")
		}
		return FLOAT, vf, nil
	}
	v, convErr := strconv.ParseInt(lex, 10, 64)
	if convErr != nil {
		return EOF, nil, l.err("invalid numeric literal")
	}
	return NUM, v, nil
}

// ----- main scanner -----

func (l *Lexer) scanToken() (Token, error) {
	l.skipWhitespaceAndComments()
	l.tokStartLine = l.line
	l.tokStartCol = l.col
	l.start = l.cur

	if l.isAtEnd() {
		return l.addToken(EOF, nil), nil
	}

	glued := !l.whitespaceBefore && l.previousToken() != nil &&
		canBeLeftOperand(l.previousToken().Type)

	ch, _ := l.advance()

	switch ch {
	case '(':
		if glued {
			return l.addToken(CLROUND, nil), nil
		}
		return l.addToken(LROUND, nil), nil
	case ')':
		return l.addToken(RROUND, nil), nil
	case '[':
		if glued {
			return l.addToken(CLSQUARE, nil), nil
		}
		return l.addToken(LSQUARE, nil), nil
	case ']':
		return l.addToken(RSQUARE, nil), nil
	case '{':
		if glued {
			return l.addToken(CLCURLY, nil), nil
		}
		return l.addToken(LCURLY, nil), nil
	case '}':
		return l.addToken(RCURLY, nil), nil
	case '+':
		return l.addToken(PLUS, nil), nil
	case '*':
		return l.addToken(MULT, nil), nil
	case '/':
		return l.addToken(DIV, nil), nil
	case '%':
		return l.addToken(MOD, nil), nil
	case ':':
		return l.addToken(COLON, nil), nil
	case ',':
		return l.addToken(COMMA, nil), nil
	case '.':
		return l.addToken(PERIOD, nil), nil
	case '-':
		prev := l.previousToken()
		if b, ok := l.peek(); ok && isDigit(b) && (prev == nil || !canBeLeftOperand(prev.Type)) {
			l.rewindToStart()
			tt, lit, err := l.scanNumber()
			if err != nil {
				return Token{}, err
			}
			return l.addToken(tt, lit), nil
		}
		return l.addToken(MINUS, nil), nil
	case '=':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(EQ, nil), nil
		}
		return l.addToken(ASSIGN, nil), nil
	case '!':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(NEQ, nil), nil
		}
		return l.addToken(BANG, nil), nil
	case '<':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(LESS_EQ, nil), nil
		}
		return l.addToken(LESS, nil), nil
	case '>':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(GREATER_EQ, nil), nil
		}
		return l.addToken(GREATER, nil), nil
	case '&':
		if b, ok := l.peek(); ok && b == '&' {
			l.advance()
			return l.addToken(AND, nil), nil
		}
		return Token{}, l.err("unexpected character: '&'")
	case '|':
		if b, ok := l.peek(); ok && b == '|' {
			l.advance()
			return l.addToken(OR, nil), nil
		}
		return Token{}, l.err("unexpected character: '|'")
	}

	// Strings
	if ch == '"' {
		l.rewindToStart()
		// Interpolation sub-lexing moves the token-start bookkeeping;
		// restore it so the STRING token spans the whole literal.
		startIdx := l.cur
		startLine, startCol := l.tokStartLine, l.tokStartCol
		parts, err := l.scanString()
		if err != nil {
			return Token{}, err
		}
		l.start = startIdx
		l.tokStartLine, l.tokStartCol = startLine, startCol
		return l.addToken(STRING, parts), nil
	}

	// Numbers
	if isDigit(ch) {
		l.rewindToStart()
		tt, lit, err := l.scanNumber()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(tt, lit), nil
	}

	// Identifiers / keywords
	if isAlpha(ch) {
		l.rewindToStart()
		lex := l.scanIdentifier()
		if tt, ok := keywords[lex]; ok {
			switch tt {
			case NULL:
				return l.addToken(NULL, nil), nil
			case BOOLEAN:
				return l.addToken(BOOLEAN, lex == "true"), nil
			default:
				return l.addToken(tt, lex), nil
			}
		}
		return l.addToken(ID, lex), nil
	}

	return Token{}, &LexError{
		Line:   l.tokStartLine,
		Col:    l.tokStartCol,
		EndCol: l.tokStartCol + 1,
		Msg:    fmt.Sprintf("unexpected character: %q", ch),
	}
}
