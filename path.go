package ogalib

import (
	"fmt"
	"math"
	"math/big"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Query evaluates a GJSON path such as "users.0.name" or "items.#.id"
// against v and returns a copy of the match. The second result is false
// when nothing matched, in which case the returned Value is null.
func (v *Value) Query(path string) (*Value, bool) {
	res := gjson.GetBytes(v.Compact(), path)
	if !res.Exists() {
		return &Value{}, false
	}
	out := &Value{}
	if !out.ParseString(res.Raw) {
		return &Value{}, false
	}
	return out, true
}

// SetPath stores x at an SJSON path, creating intermediate objects and
// arrays as needed. x may be anything Assign accepts. The document is
// re-read afterwards, so numbers elsewhere in v are re-typed the way Parse
// types them.
func (v *Value) SetPath(path string, x any) error {
	var src []byte
	if !v.IsNull() {
		src = v.Compact()
	}
	raw, err := sjson.SetRawBytes(src, path, New(x).Compact())
	if err != nil {
		return fmt.Errorf("set path %q: %w", path, err)
	}
	return v.replaceRaw(path, raw)
}

// DeletePath removes the value at an SJSON path. A path that does not
// exist is not an error.
func (v *Value) DeletePath(path string) error {
	if v.IsNull() {
		return nil
	}
	raw, err := sjson.DeleteBytes(v.Compact(), path)
	if err != nil {
		return fmt.Errorf("delete path %q: %w", path, err)
	}
	return v.replaceRaw(path, raw)
}

func (v *Value) replaceRaw(path string, raw []byte) error {
	var next Value
	if !next.Parse(raw) {
		return fmt.Errorf("path %q: %w", path, next.Err())
	}
	v.Set(&next)
	return nil
}

// Interface converts v into plain Go values: nil, bool, int, float64,
// string, []any and map[string]any. Uint64 values beyond the int range
// become *big.Int. When an object repeats a key the first member wins.
func (v *Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt, KindInt64:
		return int(v.i)
	case KindUint, KindUint64:
		if v.u > math.MaxInt {
			return new(big.Int).SetUint64(v.u)
		}
		return int(v.u)
	case KindFloat, KindDouble:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.elems))
		for i := range v.elems {
			out[i] = v.elems[i].Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.members))
		for i := range v.members {
			if _, dup := out[v.members[i].Key]; dup {
				continue
			}
			out[v.members[i].Key] = v.members[i].Value.Interface()
		}
		return out
	}
	return nil
}
