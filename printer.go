// printer.go — value display and normalized source printing.
//
// FormatValue renders runtime values the way println, string interpolation
// and the REPL show them. FormatProgram renders an AST back to canonical
// source; parsing its output yields the same tree (comments and original
// whitespace are gone, precedence is made explicit with parentheses), which
// is what "tl fmt" prints.
package tl

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatValue returns the display form of a value. Strings render raw
// (unquoted); arrays are space-joined, objects semicolon-joined in
// insertion order.
func FormatValue(v Value) string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTNum:
		return strconv.FormatInt(v.Data.(int64), 10)
	case VTFloat:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTStr:
		return v.Data.(string)
	case VTArray:
		xs := v.Data.([]Value)
		if len(xs) == 0 {
			return "[ ]"
		}
		parts := make([]string, len(xs))
		for i, x := range xs {
			parts[i] = FormatValue(x)
		}
		return "[ " + strings.Join(parts, " ") + " ]"
	case VTObject:
		return formatEntries(v.Data.(*ObjectMap))
	case VTFun:
		return "function"
	case VTBuiltin:
		return "builtin"
	case VTStructType:
		return "struct " + v.Data.(*StructType).Name
	case VTInstance:
		inst := v.Data.(*Instance)
		return inst.Type.Name + " " + formatEntries(inst.Fields)
	default:
		return fmt.Sprintf("<unknown value tag %d>", v.Tag)
	}
}

func formatEntries(m *ObjectMap) string {
	if m.Len() == 0 {
		return "{ }"
	}
	parts := make([]string, 0, m.Len())
	for _, k := range m.Keys {
		parts = append(parts, fmt.Sprintf("%s = %s", k, FormatValue(m.Entries[k])))
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// FormatProgram renders a program as normalized source, one statement per
// line.
func FormatProgram(prog *Program) string {
	parts := make([]string, len(prog.Stmts))
	for i, s := range prog.Stmts {
		parts[i] = formatStmt(s)
	}
	return strings.Join(parts, "\n")
}

func formatStmt(s Stmt) string {
	switch st := s.(type) {
	case *LetStmt:
		return fmt.Sprintf("let %s = %s", st.Name, formatExpr(st.Value))
	case *StructDecl:
		var b strings.Builder
		fmt.Fprintf(&b, "struct %s {\n", st.Name)
		for _, f := range st.Fields {
			fmt.Fprintf(&b, "  %s = %s\n", f.Name, f.Type.Name)
		}
		for _, m := range st.Methods {
			fmt.Fprintf(&b, "  %s = %s\n", m.Name, formatExpr(m.Fn))
		}
		b.WriteString("}")
		return b.String()
	case *ExprStmt:
		return formatExpr(st.X)
	default:
		return ""
	}
}

func formatExpr(x Expr) string {
	switch e := x.(type) {
	case *NumLit:
		if e.Value < 0 {
			// Parenthesized so a preceding operand cannot absorb the
			// sign as binary minus.
			return fmt.Sprintf("(%d)", e.Value)
		}
		return strconv.FormatInt(e.Value, 10)
	case *FloatLit:
		s := formatFloatSource(e.Value)
		if e.Value < 0 {
			return "(" + s + ")"
		}
		return s
	case *BoolLit:
		return strconv.FormatBool(e.Value)
	case *NullLit:
		return "null"
	case *StrLit:
		return `"` + escapeString(e.Value) + `"`
	case *InterpLit:
		var b strings.Builder
		b.WriteString(`"`)
		for _, part := range e.Parts {
			if part.X == nil {
				b.WriteString(escapeString(part.Text))
			} else {
				b.WriteString("${" + formatExpr(part.X) + "}")
			}
		}
		b.WriteString(`"`)
		return b.String()
	case *ArrayLit:
		if len(e.Elems) == 0 {
			return "[ ]"
		}
		parts := make([]string, len(e.Elems))
		for i, el := range e.Elems {
			parts[i] = formatExpr(el)
		}
		return "[ " + strings.Join(parts, " ") + " ]"
	case *ObjectLit:
		return formatEntryList(e.Entries)
	case *Ident:
		return e.Name
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", formatExpr(e.Left), e.Op, formatExpr(e.Right))
	case *LogicalExpr:
		return fmt.Sprintf("(%s %s %s)", formatExpr(e.Left), e.Op, formatExpr(e.Right))
	case *UnaryExpr:
		return fmt.Sprintf("(%s%s)", e.Op, formatExpr(e.Operand))
	case *IndexExpr:
		return formatExpr(e.Target) + "[" + formatExpr(e.Index) + "]"
	case *FieldExpr:
		return formatExpr(e.Target) + "." + e.Field
	case *CallExpr:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = formatExpr(a)
		}
		return formatExpr(e.Callee) + "(" + strings.Join(parts, ", ") + ")"
	case *FnLit:
		var b strings.Builder
		b.WriteString("(")
		for i, p := range e.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name)
			if p.Type != nil {
				b.WriteString(": " + p.Type.Name)
			}
		}
		b.WriteString(")")
		if e.Return != nil {
			b.WriteString(": " + e.Return.Name)
		}
		b.WriteString(" " + formatBlock(e.Body))
		return b.String()
	case *StructLit:
		return e.TypeName + formatEntryList(e.Inits)
	default:
		return ""
	}
}

func formatEntryList(entries []ObjectEntry) string {
	if len(entries) == 0 {
		return "{ }"
	}
	parts := make([]string, len(entries))
	for i, entry := range entries {
		parts[i] = fmt.Sprintf("%s = %s", entry.Key, formatExpr(entry.Value))
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

func formatBlock(blk *Block) string {
	if len(blk.Stmts) == 0 {
		return "{ }"
	}
	parts := make([]string, len(blk.Stmts))
	for i, s := range blk.Stmts {
		parts[i] = formatStmt(s)
	}
	return "{ " + strings.Join(parts, "\n") + " }"
}

// formatFloatSource renders a float so it re-lexes as a FLOAT token: no
// exponent, always a decimal point.
func formatFloatSource(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '$':
			b.WriteString(`\$`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
