package ogalib

import (
	"bytes"
	"math"
	"strconv"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/tidwall/pretty"
)

var encodeOptions = []jsontext.Options{
	jsontext.AllowDuplicateNames(true),
	jsontext.AllowInvalidUTF8(true),
	jsontext.WithIndent("  "),
	jsontext.SpaceAfterColon(true),
}

// String returns the document pretty printed with a two space indent.
// Output is deterministic: members appear in insertion order. Non-finite
// floating point numbers are written as null.
//
// String has no error result. A document the encoder rejects, such as one
// nested deeper than jsontext allows, yields "". Use MarshalJSONTo to see
// the error.
func (v *Value) String() string {
	return string(v.Bytes())
}

// Bytes is String returning a byte slice. It returns nil where String
// returns "".
func (v *Value) Bytes() []byte {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, encodeOptions...)
	if err := encodeValue(enc, v); err != nil {
		return nil
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
}

// Compact returns the document on a single line without insignificant
// whitespace.
func (v *Value) Compact() []byte {
	return pretty.Ugly(v.Bytes())
}

// MarshalJSONTo lets a Value be encoded by json v2 as part of a larger
// structure.
func (v *Value) MarshalJSONTo(enc *jsontext.Encoder) error {
	return encodeValue(enc, v)
}

func encodeValue(enc *jsontext.Encoder, v *Value) error {
	switch v.kind {
	case KindBool:
		return enc.WriteToken(jsontext.Bool(v.b))
	case KindInt, KindInt64:
		return enc.WriteToken(jsontext.Int(v.i))
	case KindUint, KindUint64:
		return enc.WriteToken(jsontext.Uint(v.u))
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return enc.WriteToken(jsontext.Null)
		}
		return enc.WriteValue(jsontext.Value(strconv.AppendFloat(nil, v.f, 'g', -1, 32)))
	case KindDouble:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return enc.WriteToken(jsontext.Null)
		}
		return enc.WriteToken(jsontext.Float(v.f))
	case KindString:
		return enc.WriteToken(jsontext.String(v.s))
	case KindArray:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for i := range v.elems {
			if err := encodeValue(enc, &v.elems[i]); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	case KindObject:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for i := range v.members {
			if err := enc.WriteToken(jsontext.String(v.members[i].Key)); err != nil {
				return err
			}
			if err := encodeValue(enc, &v.members[i].Value); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	}
	return enc.WriteToken(jsontext.Null)
}
