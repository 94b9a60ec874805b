// ops.go — binary and unary operator semantics.
//
// Arithmetic mixes Num and Float by promoting to Float when either side is
// one. Division and remainder by zero raise ArithmeticError for both
// integer and float operands, so the same program shape fails the same way
// regardless of literal spelling. "+" doubles as string concatenation.
package tl

func applyBinary(e *BinaryExpr, l, r Value) (Value, error) {
	switch e.Op {
	case "==":
		return BoolV(valueEquals(l, r)), nil
	case "!=":
		return BoolV(!valueEquals(l, r)), nil
	}

	if e.Op == "+" && l.Tag == VTStr && r.Tag == VTStr {
		return StrV(l.Data.(string) + r.Data.(string)), nil
	}

	switch e.Op {
	case "<", "<=", ">", ">=":
		return applyCompare(e, l, r)
	}

	// Remaining operators are numeric.
	if !isNumeric(l) || !isNumeric(r) {
		return NullV, errAt(e.Span(), ErrTypeMismatch,
			"operator %q is not defined for %s and %s", e.Op, l.TypeName(), r.TypeName())
	}

	if l.Tag == VTFloat || r.Tag == VTFloat {
		lf, _ := numericOf(l)
		rf, _ := numericOf(r)
		return applyFloat(e, lf, rf)
	}
	return applyInt(e, l.Data.(int64), r.Data.(int64))
}

func isNumeric(v Value) bool { return v.Tag == VTNum || v.Tag == VTFloat }

func applyInt(e *BinaryExpr, l, r int64) (Value, error) {
	switch e.Op {
	case "+":
		return NumV(l + r), nil
	case "-":
		return NumV(l - r), nil
	case "*":
		return NumV(l * r), nil
	case "/":
		if r == 0 {
			return NullV, errAt(e.Span(), ErrArithmetic, "division by zero")
		}
		return NumV(l / r), nil
	case "%":
		if r == 0 {
			return NullV, errAt(e.Span(), ErrArithmetic, "remainder by zero")
		}
		return NumV(l % r), nil
	default:
		return NullV, errAt(e.Span(), ErrTypeMismatch, "unknown operator %q", e.Op)
	}
}

func applyFloat(e *BinaryExpr, l, r float64) (Value, error) {
	switch e.Op {
	case "+":
		return FloatV(l + r), nil
	case "-":
		return FloatV(l - r), nil
	case "*":
		return FloatV(l * r), nil
	case "/":
		if r == 0 {
			return NullV, errAt(e.Span(), ErrArithmetic, "division by zero")
		}
		return FloatV(l / r), nil
	case "%":
		if r == 0 {
			return NullV, errAt(e.Span(), ErrArithmetic, "remainder by zero")
		}
		return FloatV(floatMod(l, r)), nil
	default:
		return NullV, errAt(e.Span(), ErrTypeMismatch, "unknown operator %q", e.Op)
	}
}

// floatMod matches the truncated remainder of the integer case.
func floatMod(l, r float64) float64 {
	q := l / r
	if q < 0 {
		q = -float64(int64(-q))
	} else {
		q = float64(int64(q))
	}
	return l - q*r
}

// applyCompare orders two numbers or two strings.
func applyCompare(e *BinaryExpr, l, r Value) (Value, error) {
	if lf, lok := numericOf(l); lok {
		if rf, rok := numericOf(r); rok {
			return BoolV(compareOrd(e.Op, lf, rf)), nil
		}
	}
	if l.Tag == VTStr && r.Tag == VTStr {
		ls, rs := l.Data.(string), r.Data.(string)
		switch e.Op {
		case "<":
			return BoolV(ls < rs), nil
		case "<=":
			return BoolV(ls <= rs), nil
		case ">":
			return BoolV(ls > rs), nil
		default:
			return BoolV(ls >= rs), nil
		}
	}
	return NullV, errAt(e.Span(), ErrTypeMismatch,
		"operator %q is not defined for %s and %s", e.Op, l.TypeName(), r.TypeName())
}

func compareOrd(op string, l, r float64) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	default:
		return l >= r
	}
}

func applyUnary(e *UnaryExpr, v Value) (Value, error) {
	switch e.Op {
	case "!":
		if v.Tag != VTBool {
			return NullV, errAt(e.Operand.Span(), ErrTypeMismatch,
				"operator \"!\" requires a boolean, got %s", v.TypeName())
		}
		return BoolV(!v.Data.(bool)), nil
	case "-":
		switch v.Tag {
		case VTNum:
			return NumV(-v.Data.(int64)), nil
		case VTFloat:
			return FloatV(-v.Data.(float64)), nil
		default:
			return NullV, errAt(e.Operand.Span(), ErrTypeMismatch,
				"operator \"-\" requires a number, got %s", v.TypeName())
		}
	default:
		return NullV, errAt(e.Span(), ErrTypeMismatch, "unknown operator %q", e.Op)
	}
}
