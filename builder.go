package ogalib

// Obj is an object literal, defined as an ordered list of fields. Field
// values may be anything Assign accepts, including nested Obj and Arr
// literals:
//
//	v := ogalib.New(ogalib.Obj{
//		{Key: "error", Value: "Invalid user."},
//		{Key: "codes", Value: ogalib.Arr{404, 500}},
//	})
type Obj []Field

// Arr is an array literal whose elements may be anything Assign accepts.
type Arr []any

// Field represents a single entry of an object literal.
type Field struct {
	Key   string
	Value any
}

func (o Obj) build() *Value {
	v := &Value{kind: KindObject}
	if len(o) > 0 {
		v.members = make([]Member, len(o))
		for i, f := range o {
			v.members[i].Key = f.Key
			New(f.Value).copyTo(&v.members[i].Value)
		}
	}
	return v
}

func (a Arr) build() *Value {
	v := &Value{kind: KindArray}
	if len(a) > 0 {
		v.elems = make([]Value, len(a))
		for i, x := range a {
			New(x).copyTo(&v.elems[i])
		}
	}
	return v
}

// literal converts v back into builder form: objects become Obj, arrays Arr
// and scalars the Go type Assign maps to the same kind, so New(v.literal())
// is equal to v and keeps every numeric kind.
func (v *Value) literal() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return int32(v.i)
	case KindUint:
		return uint32(v.u)
	case KindInt64:
		return v.i
	case KindUint64:
		return v.u
	case KindFloat:
		return float32(v.f)
	case KindDouble:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		out := make(Arr, len(v.elems))
		for i := range v.elems {
			out[i] = v.elems[i].literal()
		}
		return out
	case KindObject:
		out := make(Obj, len(v.members))
		for i := range v.members {
			out[i] = Field{Key: v.members[i].Key, Value: v.members[i].Value.literal()}
		}
		return out
	}
	return nil
}
