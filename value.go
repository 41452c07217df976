// Package ogalib provides a mutable, dynamically-typed JSON document model.
//
// A Value holds exactly one of null, bool, int32, uint32, int64, uint64,
// float32, float64, string, array or object. Objects keep their members in
// insertion order and may hold repeated keys; lookups return the first match.
//
// Lookups never fail loudly. Find, Key, At and friends return an Iter, and a
// missing key or an out of range index yields a sentinel Iter whose Ok
// reports false and whose accessors return zero values:
//
//	if it := doc.Lookup("user"); it.Ok() {
//		fmt.Println(it.Find("name").Str())
//	}
//
// Find and Key are the mutable lookups: called on a Null value they turn it
// into an empty object first, which is what makes
//
//	var doc ogalib.Value
//	doc.Key("x").Assign(5)
//
// work on a blank document. Lookup is the read-only variant and never
// changes the receiver.
//
// A Value is not safe for concurrent mutation.
package ogalib

import (
	"math"

	"github.com/go-json-experiment/json"
)

// Kind identifies the active variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindInt64
	KindUint64
	KindFloat
	KindDouble
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindUint:   "uint",
	KindInt64:  "int64",
	KindUint64: "uint64",
	KindFloat:  "float",
	KindDouble: "double",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Member is a single key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is a JSON document node. The zero Value is null.
//
// Plain struct assignment of a Value shares its children; use Clone or Set
// to obtain an independent copy.
type Value struct {
	kind    Kind
	b       bool
	i       int64
	u       uint64
	f       float64
	s       string
	elems   []Value
	members []Member

	// last parse failure, not part of the document
	err *ParseError
}

// New builds a Value from x. See Assign for the accepted types.
func New(x any) *Value {
	v := &Value{}
	v.Assign(x)
	return v
}

// reset discards the current content and retags the value.
func (v *Value) reset(k Kind) {
	err := v.err
	*v = Value{kind: k, err: err}
}

// Kind reports the active variant.
func (v *Value) Kind() Kind { return v.kind }

func (v *Value) SetBool(b bool) *Value {
	v.reset(KindBool)
	v.b = b
	return v
}

func (v *Value) SetInt(i int32) *Value {
	v.reset(KindInt)
	v.i = int64(i)
	return v
}

func (v *Value) SetUint(u uint32) *Value {
	v.reset(KindUint)
	v.u = uint64(u)
	return v
}

func (v *Value) SetInt64(i int64) *Value {
	v.reset(KindInt64)
	v.i = i
	return v
}

func (v *Value) SetUint64(u uint64) *Value {
	v.reset(KindUint64)
	v.u = u
	return v
}

func (v *Value) SetFloat(f float32) *Value {
	v.reset(KindFloat)
	v.f = float64(f)
	return v
}

func (v *Value) SetDouble(f float64) *Value {
	v.reset(KindDouble)
	v.f = f
	return v
}

func (v *Value) SetString(s string) *Value {
	v.reset(KindString)
	v.s = s
	return v
}

// SetNull discards the content and makes v null.
func (v *Value) SetNull() *Value {
	v.reset(KindNull)
	return v
}

// SetArray discards the content and makes v an empty array.
func (v *Value) SetArray() *Value {
	v.reset(KindArray)
	return v
}

// SetObject discards the content and makes v an empty object.
func (v *Value) SetObject() *Value {
	v.reset(KindObject)
	return v
}

// Set replaces the content of v with a deep copy of src. A nil src makes v
// null. src may be a descendant of v.
func (v *Value) Set(src *Value) *Value {
	if src == nil {
		return v.SetNull()
	}
	c := src.Clone()
	err := v.err
	*v = *c
	v.err = err
	return v
}

// Assign stores x in v, retagging it to match. Accepted types:
//
//   - nil, bool, string, []byte (as a string)
//   - int8/int16/int32 -> Int, int -> Int when it fits 32 bits else Int64,
//     int64 -> Int64
//   - uint8/uint16/uint32 -> Uint, uint and uint64 -> Uint64
//   - float32 -> Float, float64 -> Double
//   - *Value, Value and Iter, deep copied
//   - Obj and Arr builder literals, evaluated recursively
//
// Any other value is marshalled with json v2 and parsed back; values that
// cannot be marshalled leave v unchanged.
func (v *Value) Assign(x any) *Value {
	switch t := x.(type) {
	case nil:
		v.SetNull()
	case bool:
		v.SetBool(t)
	case string:
		v.SetString(t)
	case []byte:
		v.SetString(string(t))
	case int:
		if t >= math.MinInt32 && t <= math.MaxInt32 {
			v.SetInt(int32(t))
		} else {
			v.SetInt64(int64(t))
		}
	case int8:
		v.SetInt(int32(t))
	case int16:
		v.SetInt(int32(t))
	case int32:
		v.SetInt(t)
	case int64:
		v.SetInt64(t)
	case uint:
		v.SetUint64(uint64(t))
	case uint8:
		v.SetUint(uint32(t))
	case uint16:
		v.SetUint(uint32(t))
	case uint32:
		v.SetUint(t)
	case uint64:
		v.SetUint64(t)
	case float32:
		v.SetFloat(t)
	case float64:
		v.SetDouble(t)
	case *Value:
		v.Set(t)
	case Value:
		v.Set(&t)
	case Iter:
		if p := t.value(); p != nil {
			v.Set(p)
		} else {
			v.SetNull()
		}
	case Obj:
		v.Set(t.build())
	case Arr:
		v.Set(t.build())
	default:
		raw, err := json.Marshal(x, json.Deterministic(true))
		if err != nil {
			return v
		}
		var tmp Value
		if tmp.Parse(raw) {
			v.Set(&tmp)
		}
	}
	return v
}

// Clone returns a deep copy of v. The parse error is not copied.
func (v *Value) Clone() *Value {
	c := &Value{}
	v.copyTo(c)
	return c
}

func (v *Value) copyTo(dst *Value) {
	*dst = Value{kind: v.kind, b: v.b, i: v.i, u: v.u, f: v.f, s: v.s}
	switch v.kind {
	case KindArray:
		if len(v.elems) > 0 {
			dst.elems = make([]Value, len(v.elems))
			for i := range v.elems {
				v.elems[i].copyTo(&dst.elems[i])
			}
		}
	case KindObject:
		if len(v.members) > 0 {
			dst.members = make([]Member, len(v.members))
			for i := range v.members {
				dst.members[i].Key = v.members[i].Key
				v.members[i].Value.copyTo(&dst.members[i].Value)
			}
		}
	}
}

// Append pushes a deep copy of x to the end of an array. A null v is
// promoted to an empty array first; any other kind is left untouched.
func (v *Value) Append(x any) *Value {
	if v.kind == KindNull {
		v.SetArray()
	}
	if v.kind == KindArray {
		item := New(x)
		item.err = nil
		v.elems = append(v.elems, *item)
	}
	return v
}

// Merge adds the content of other to v. A null v first becomes an array when
// other is an array and an object otherwise. Object members are appended
// as-is, so a key present in both ends up twice and lookups keep returning
// the first one.
func (v *Value) Merge(other *Value) *Value {
	if other == nil {
		return v
	}
	if v.kind == KindNull {
		if other.kind == KindArray {
			v.SetArray()
		} else {
			v.SetObject()
		}
	}
	src := other.Clone()
	switch {
	case src.kind == KindObject && v.kind == KindObject:
		v.members = append(v.members, src.members...)
	case src.kind == KindArray && v.kind == KindArray:
		v.elems = append(v.elems, src.elems...)
	}
	return v
}

// Merged returns a new Value holding v merged with other. Neither operand is
// modified.
func (v *Value) Merged(other *Value) *Value {
	return v.Clone().Merge(other)
}

// Erase removes the first member named key. It does nothing unless v is an
// object.
func (v *Value) Erase(key string) *Value {
	if v.kind != KindObject {
		return v
	}
	for i := range v.members {
		if v.members[i].Key == key {
			v.removeMember(i)
			break
		}
	}
	return v
}

// EraseIter removes the member it points at, provided it was obtained from v.
func (v *Value) EraseIter(it Iter) *Value {
	if it.owner != v || v.kind != KindObject {
		return v
	}
	if it.pos >= 0 && it.pos < len(v.members) {
		v.removeMember(it.pos)
	}
	return v
}

func (v *Value) removeMember(i int) {
	copy(v.members[i:], v.members[i+1:])
	v.members[len(v.members)-1] = Member{}
	v.members = v.members[:len(v.members)-1]
}

// Clear empties an object or array, keeping its kind. Other kinds are left
// untouched.
func (v *Value) Clear() *Value {
	switch v.kind {
	case KindObject:
		v.members = nil
	case KindArray:
		v.elems = nil
	}
	return v
}

// Len returns the number of members or elements, 0 for other kinds.
func (v *Value) Len() int {
	switch v.kind {
	case KindObject:
		return len(v.members)
	case KindArray:
		return len(v.elems)
	}
	return 0
}

// Empty reports whether v is an object or array without children. Null and
// scalars are never empty.
func (v *Value) Empty() bool {
	switch v.kind {
	case KindObject, KindArray:
		return v.Len() == 0
	}
	return false
}

func (v *Value) IsNull() bool   { return v.kind == KindNull }
func (v *Value) IsBool() bool   { return v.kind == KindBool }
func (v *Value) IsInt() bool    { return v.kind == KindInt }
func (v *Value) IsUint() bool   { return v.kind == KindUint }
func (v *Value) IsInt64() bool  { return v.kind == KindInt64 }
func (v *Value) IsUint64() bool { return v.kind == KindUint64 }
func (v *Value) IsFloat() bool  { return v.kind == KindFloat }
func (v *Value) IsDouble() bool { return v.kind == KindDouble }
func (v *Value) IsString() bool { return v.kind == KindString }
func (v *Value) IsArray() bool  { return v.kind == KindArray }
func (v *Value) IsObject() bool { return v.kind == KindObject }

// IsNumber reports whether v holds any of the numeric kinds.
func (v *Value) IsNumber() bool {
	return v.kind >= KindInt && v.kind <= KindDouble
}

func (v *Value) isInteger() bool {
	return v.kind >= KindInt && v.kind <= KindUint64
}

// The getters below return the stored value only when the active kind
// matches exactly. There is no conversion between numeric kinds.

func (v *Value) Bool() bool {
	if v.kind == KindBool {
		return v.b
	}
	return false
}

func (v *Value) Int() int32 {
	if v.kind == KindInt {
		return int32(v.i)
	}
	return 0
}

func (v *Value) Uint() uint32 {
	if v.kind == KindUint {
		return uint32(v.u)
	}
	return 0
}

func (v *Value) Int64() int64 {
	if v.kind == KindInt64 {
		return v.i
	}
	return 0
}

func (v *Value) Uint64() uint64 {
	if v.kind == KindUint64 {
		return v.u
	}
	return 0
}

func (v *Value) Float() float32 {
	if v.kind == KindFloat {
		return float32(v.f)
	}
	return 0
}

func (v *Value) Double() float64 {
	if v.kind == KindDouble {
		return v.f
	}
	return 0
}

// Str returns the string content, or "" when v is not a string.
func (v *Value) Str() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}

// Equal reports deep structural equality. Object members are compared
// pairwise in order, so {"a":1,"b":2} and {"b":2,"a":1} are not equal.
// Numbers compare by value regardless of their numeric kind, at float32
// precision when either side is a Float.
func (v *Value) Equal(other *Value) bool {
	if other == nil {
		return false
	}
	if v.IsNumber() && other.IsNumber() {
		return numberEqual(v, other)
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(&other.elems[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.members) != len(other.members) {
			return false
		}
		for i := range v.members {
			if v.members[i].Key != other.members[i].Key {
				return false
			}
			if !v.members[i].Value.Equal(&other.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func numberEqual(a, b *Value) bool {
	if a.isInteger() && b.isInteger() {
		an, am := a.signMagnitude()
		bn, bm := b.signMagnitude()
		return an == bn && am == bm
	}
	if a.kind == KindFloat || b.kind == KindFloat {
		return float32(a.asFloat()) == float32(b.asFloat())
	}
	return a.asFloat() == b.asFloat()
}

func (v *Value) signMagnitude() (neg bool, mag uint64) {
	switch v.kind {
	case KindInt, KindInt64:
		if v.i < 0 {
			return true, uint64(-(v.i + 1)) + 1
		}
		return false, uint64(v.i)
	case KindUint, KindUint64:
		return false, v.u
	}
	return false, 0
}

func (v *Value) asFloat() float64 {
	switch v.kind {
	case KindInt, KindInt64:
		return float64(v.i)
	case KindUint, KindUint64:
		return float64(v.u)
	case KindFloat, KindDouble:
		return v.f
	}
	return 0
}
