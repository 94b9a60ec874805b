// value.go — the runtime value model.
//
// Values are a small tagged union: a ValueTag plus an untyped payload. The
// zero Value is null, which doubles as the "absent" result of constructs
// that produce nothing (empty blocks, bare declarations). Only the tags in
// valueTagNames exist; the evaluator switches exhaustively on them.
package tl

// ValueTag discriminates the payload of a Value.
type ValueTag int

const (
	VTNull ValueTag = iota
	VTBool
	VTNum
	VTFloat
	VTStr
	VTArray
	VTObject
	VTFun
	VTBuiltin
	VTStructType
	VTInstance
)

var valueTagNames = map[ValueTag]string{
	VTNull:       "null",
	VTBool:       "boolean",
	VTNum:        "number",
	VTFloat:      "float",
	VTStr:        "string",
	VTArray:      "array",
	VTObject:     "object",
	VTFun:        "function",
	VTBuiltin:    "builtin",
	VTStructType: "struct",
	VTInstance:   "instance",
}

// Value is a tagged runtime value.
//
// Data holds: nil (null), bool, int64 (num), float64, string,
// []Value (array), *ObjectMap, *Fun, *Builtin, *StructType, *Instance.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// NullV is the null value.
var NullV = Value{Tag: VTNull}

// Constructors.
func BoolV(b bool) Value       { return Value{Tag: VTBool, Data: b} }
func NumV(n int64) Value       { return Value{Tag: VTNum, Data: n} }
func FloatV(f float64) Value   { return Value{Tag: VTFloat, Data: f} }
func StrV(s string) Value      { return Value{Tag: VTStr, Data: s} }
func ArrV(xs []Value) Value    { return Value{Tag: VTArray, Data: xs} }
func ObjV(m *ObjectMap) Value  { return Value{Tag: VTObject, Data: m} }
func FunV(f *Fun) Value        { return Value{Tag: VTFun, Data: f} }
func BuiltinV(b *Builtin) Value {
	return Value{Tag: VTBuiltin, Data: b}
}

// IsAbsent reports whether the value is null, the union's absent variant.
func (v Value) IsAbsent() bool { return v.Tag == VTNull }

// TypeName returns the display name of the value's type; instances report
// their struct type's name.
func (v Value) TypeName() string {
	if v.Tag == VTInstance {
		return v.Data.(*Instance).Type.Name
	}
	return valueTagNames[v.Tag]
}

// ObjectMap is an insertion-ordered string-to-value map, the payload of
// object values and instance field sets.
type ObjectMap struct {
	Entries map[string]Value
	Keys    []string
}

// NewObjectMap returns an empty ordered map.
func NewObjectMap() *ObjectMap {
	return &ObjectMap{Entries: make(map[string]Value)}
}

// Set inserts or replaces a key; first insertion fixes its position.
func (m *ObjectMap) Set(key string, v Value) {
	if _, ok := m.Entries[key]; !ok {
		m.Keys = append(m.Keys, key)
	}
	m.Entries[key] = v
}

// Get looks up a key.
func (m *ObjectMap) Get(key string) (Value, bool) {
	v, ok := m.Entries[key]
	return v, ok
}

// Len returns the number of entries.
func (m *ObjectMap) Len() int { return len(m.Keys) }

// Fun is a user function: a closure over its defining environment. Name is
// empty for anonymous literals and set when a let binds one directly.
type Fun struct {
	Name   string
	Params []Param
	Body   *Block
	Env    *Env
}

// Builtin is a native prelude function. Implementations receive the call
// node with unevaluated arguments, so "if" and "import" can control
// evaluation order; eager builtins evaluate their arguments up front.
type Builtin struct {
	Name string
	Impl func(ip *Interp, call *CallExpr, env *Env) (Value, error)
}

// StructType is a declared struct: field declarations plus a method table.
// Methods are closures over the scope the declaration was evaluated in.
type StructType struct {
	Name    string
	Fields  []StructFieldDecl
	Methods map[string]*Fun
	Order   []string // method names in declaration order
}

// HasField reports whether the declaration includes the named field.
func (st *StructType) HasField(name string) bool {
	for _, f := range st.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Instance is a value of a struct type.
type Instance struct {
	Type   *StructType
	Fields *ObjectMap
}

// valueEquals defines "==": same-tag structural equality, with numbers
// comparing across the Num/Float divide. Values of unrelated tags are
// simply unequal, never an error.
func valueEquals(a, b Value) bool {
	if an, aok := numericOf(a); aok {
		if bn, bok := numericOf(b); bok {
			return an == bn
		}
		return false
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTStr:
		return a.Data.(string) == b.Data.(string)
	case VTArray:
		xs, ys := a.Data.([]Value), b.Data.([]Value)
		if len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !valueEquals(xs[i], ys[i]) {
				return false
			}
		}
		return true
	case VTObject:
		xm, ym := a.Data.(*ObjectMap), b.Data.(*ObjectMap)
		if xm.Len() != ym.Len() {
			return false
		}
		for _, k := range xm.Keys {
			yv, ok := ym.Get(k)
			if !ok || !valueEquals(xm.Entries[k], yv) {
				return false
			}
		}
		return true
	case VTInstance:
		xi, yi := a.Data.(*Instance), b.Data.(*Instance)
		if xi.Type != yi.Type {
			return false
		}
		for _, k := range xi.Fields.Keys {
			yv, ok := yi.Fields.Get(k)
			if !ok || !valueEquals(xi.Fields.Entries[k], yv) {
				return false
			}
		}
		return true
	default:
		// Functions, builtins and struct types compare by identity.
		return a.Data == b.Data
	}
}

// numericOf extracts a float64 view of Num and Float values.
func numericOf(v Value) (float64, bool) {
	switch v.Tag {
	case VTNum:
		return float64(v.Data.(int64)), true
	case VTFloat:
		return v.Data.(float64), true
	default:
		return 0, false
	}
}
