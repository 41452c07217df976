package ogalib

import "iter"

// Iter is a cursor into the children of a Value. It does not own anything;
// it refers back to the container it came from plus a position.
//
// The zero Iter is the not-found sentinel. A cursor made stale by inserting
// into or erasing from its container is re-checked on every access and
// degrades to the sentinel once its position falls out of range.
type Iter struct {
	owner *Value
	pos   int
}

// value returns the referenced child or nil.
func (it Iter) value() *Value {
	if it.owner == nil || it.pos < 0 {
		return nil
	}
	switch it.owner.kind {
	case KindObject:
		if it.pos < len(it.owner.members) {
			return &it.owner.members[it.pos].Value
		}
	case KindArray:
		if it.pos < len(it.owner.elems) {
			return &it.owner.elems[it.pos]
		}
	}
	return nil
}

// Ok reports whether the cursor refers to an existing child.
func (it Iter) Ok() bool { return it.value() != nil }

// Next advances to the following member or element.
func (it Iter) Next() Iter {
	if it.owner == nil {
		return it
	}
	return Iter{owner: it.owner, pos: it.pos + 1}
}

// Key returns the member name, or "" for array elements and the sentinel.
func (it Iter) Key() string {
	if it.value() == nil || it.owner.kind != KindObject {
		return ""
	}
	return it.owner.members[it.pos].Key
}

// Index returns the position of the cursor within its container, or -1 for
// the sentinel.
func (it Iter) Index() int {
	if it.value() == nil {
		return -1
	}
	return it.pos
}

// Value returns the referenced child. The sentinel yields a detached null
// Value, so writes through it are lost.
func (it Iter) Value() *Value {
	if p := it.value(); p != nil {
		return p
	}
	return &Value{}
}

// Assign stores x in the referenced child. It does nothing on the sentinel.
func (it Iter) Assign(x any) Iter {
	if p := it.value(); p != nil {
		p.Assign(x)
	}
	return it
}

// Find looks up key in the referenced child, see Value.Find.
func (it Iter) Find(key string) Iter {
	if p := it.value(); p != nil {
		return p.Find(key)
	}
	return Iter{}
}

// Lookup looks up key in the referenced child without coercing it.
func (it Iter) Lookup(key string) Iter {
	if p := it.value(); p != nil {
		return p.Lookup(key)
	}
	return Iter{}
}

// Member returns a cursor at key within the referenced child, inserting a
// null member when missing, see Value.Key.
func (it Iter) Member(key string) Iter {
	if p := it.value(); p != nil {
		return p.Key(key)
	}
	return Iter{}
}

// At returns the i-th element of the referenced child.
func (it Iter) At(i int) Iter {
	if p := it.value(); p != nil {
		return p.At(i)
	}
	return Iter{}
}

func (it Iter) Kind() Kind      { return it.Value().Kind() }
func (it Iter) IsNull() bool    { return it.Value().IsNull() }
func (it Iter) IsBool() bool    { return it.Value().IsBool() }
func (it Iter) IsNumber() bool  { return it.Value().IsNumber() }
func (it Iter) IsString() bool  { return it.Value().IsString() }
func (it Iter) IsArray() bool   { return it.Value().IsArray() }
func (it Iter) IsObject() bool  { return it.Value().IsObject() }
func (it Iter) Bool() bool      { return it.Value().Bool() }
func (it Iter) Int() int32      { return it.Value().Int() }
func (it Iter) Uint() uint32    { return it.Value().Uint() }
func (it Iter) Int64() int64    { return it.Value().Int64() }
func (it Iter) Uint64() uint64  { return it.Value().Uint64() }
func (it Iter) Float() float32  { return it.Value().Float() }
func (it Iter) Double() float64 { return it.Value().Double() }
func (it Iter) Str() string     { return it.Value().Str() }
func (it Iter) Len() int        { return it.Value().Len() }

// String serializes the referenced child, or returns "" for the sentinel.
func (it Iter) String() string {
	if p := it.value(); p != nil {
		return p.String()
	}
	return ""
}

// Begin returns a cursor at the first member or element. For empty
// containers and non-containers the cursor is not Ok.
func (v *Value) Begin() Iter {
	switch v.kind {
	case KindObject, KindArray:
		return Iter{owner: v}
	}
	return Iter{}
}

// Find returns a cursor at the first member named key.
//
// Find on a null value turns it into an empty object before searching. Use
// Lookup to inspect a value without changing it.
func (v *Value) Find(key string) Iter {
	if v.kind == KindNull {
		v.SetObject()
	}
	return v.Lookup(key)
}

// Lookup returns a cursor at the first member named key, or the sentinel
// when v is not an object or has no such member. It never modifies v.
func (v *Value) Lookup(key string) Iter {
	if v.kind != KindObject {
		return Iter{}
	}
	for i := range v.members {
		if v.members[i].Key == key {
			return Iter{owner: v, pos: i}
		}
	}
	return Iter{}
}

// Key returns a cursor at the first member named key. Like Find it coerces
// a null v into an object, and when the key is absent it appends a null
// member so the result can be assigned to directly:
//
//	doc.Key("retries").Assign(3)
//
// Non-object values yield the sentinel.
func (v *Value) Key(key string) Iter {
	if it := v.Find(key); it.Ok() {
		return it
	}
	if v.kind != KindObject {
		return Iter{}
	}
	v.members = append(v.members, Member{Key: key})
	return Iter{owner: v, pos: len(v.members) - 1}
}

// Index looks up a child using another Value as the subscript: integer
// numbers address array elements, strings behave like Key.
func (v *Value) Index(k *Value) Iter {
	if k == nil {
		return Iter{}
	}
	switch {
	case k.isInteger():
		neg, mag := k.signMagnitude()
		if neg || v.kind != KindArray || mag >= uint64(len(v.elems)) {
			return Iter{}
		}
		return Iter{owner: v, pos: int(mag)}
	case k.kind == KindString:
		return v.Key(k.s)
	}
	return Iter{}
}

// At returns a cursor at the i-th array element. It never changes the kind
// of v; non-arrays and out of range indexes yield the sentinel.
func (v *Value) At(i int) Iter {
	if v.kind != KindArray || i < 0 || i >= len(v.elems) {
		return Iter{}
	}
	return Iter{owner: v, pos: i}
}

// Members iterates over the members of an object in order. It yields
// nothing for other kinds.
func (v *Value) Members() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		if v.kind != KindObject {
			return
		}
		for i := 0; i < len(v.members); i++ {
			if !yield(v.members[i].Key, &v.members[i].Value) {
				return
			}
		}
	}
}

// Elements iterates over the elements of an array in order. It yields
// nothing for other kinds.
func (v *Value) Elements() iter.Seq2[int, *Value] {
	return func(yield func(int, *Value) bool) {
		if v.kind != KindArray {
			return
		}
		for i := 0; i < len(v.elems); i++ {
			if !yield(i, &v.elems[i]) {
				return
			}
		}
	}
}
