package ogalib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// ParseErrorCode classifies a parse failure. Codes appear in error messages
// and keep their numeric values across releases.
type ParseErrorCode int

const (
	ParseErrorNone                    ParseErrorCode = 0
	ParseErrorDocumentEmpty           ParseErrorCode = 1
	ParseErrorDocumentRootNotSingular ParseErrorCode = 2
	ParseErrorValueInvalid            ParseErrorCode = 3
	ParseErrorNumberTooBig            ParseErrorCode = 13
	ParseErrorTermination             ParseErrorCode = 16
)

var parseErrorText = map[ParseErrorCode]string{
	ParseErrorNone:                    "No error.",
	ParseErrorDocumentEmpty:           "The document is empty.",
	ParseErrorDocumentRootNotSingular: "The document root must not be followed by other values.",
	ParseErrorValueInvalid:            "Invalid value.",
	ParseErrorNumberTooBig:            "Number too big to be stored in double.",
	ParseErrorTermination:             "Unexpected end of input.",
}

func (c ParseErrorCode) String() string {
	if s, ok := parseErrorText[c]; ok {
		return s
	}
	return "Unknown error."
}

// ParseError describes why Parse failed. Err holds the underlying decoder
// error when there is one.
type ParseError struct {
	Code ParseErrorCode
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ogalib json parse error, code %d: %s", int(e.Code), e.Code)
}

func (e *ParseError) Unwrap() error { return e.Err }

// errNumberRange marks a number literal that does not fit a float64.
var errNumberRange = errors.New("number out of range")

var decodeOptions = []jsontext.Options{
	jsontext.AllowDuplicateNames(true),
	jsontext.AllowInvalidUTF8(true),
}

// Parse replaces the content of v with the document in data. On failure it
// returns false, v is left null and Err describes the problem.
func (v *Value) Parse(data []byte) bool {
	return v.ParseReader(bytes.NewReader(data))
}

// ParseString is Parse for string input.
func (v *Value) ParseString(s string) bool {
	return v.ParseReader(strings.NewReader(s))
}

// ParseReader is Parse reading the document from r.
func (v *Value) ParseReader(r io.Reader) bool {
	out, err := decodeDocument(jsontext.NewDecoder(r, decodeOptions...))
	if err != nil {
		v.reset(KindNull)
		v.err = err
		return false
	}
	*v = out
	return true
}

// Err returns the error recorded by the last failed parse, or nil.
func (v *Value) Err() error {
	if v.err == nil {
		return nil
	}
	return v.err
}

func decodeDocument(dec *jsontext.Decoder) (Value, *ParseError) {
	if dec.PeekKind() == 0 {
		_, err := dec.ReadToken()
		if err == nil || err == io.EOF {
			return Value{}, &ParseError{Code: ParseErrorDocumentEmpty, Err: err}
		}
		return Value{}, classify(err)
	}
	val, err := decodeValue(dec)
	if err != nil {
		return Value{}, classify(err)
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		return Value{}, &ParseError{Code: ParseErrorDocumentRootNotSingular, Err: err}
	}
	return val, nil
}

func classify(err error) *ParseError {
	switch {
	case errors.Is(err, errNumberRange):
		return &ParseError{Code: ParseErrorNumberTooBig, Err: err}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &ParseError{Code: ParseErrorTermination, Err: err}
	}
	return &ParseError{Code: ParseErrorValueInvalid, Err: err}
}

// decodeValue reads the next complete JSON value from dec.
func decodeValue(dec *jsontext.Decoder) (Value, error) {
	switch dec.PeekKind() {
	case '{':
		return decodeObject(dec)
	case '[':
		return decodeArray(dec)
	case '0':
		raw, err := dec.ReadValue()
		if err != nil {
			return Value{}, fmt.Errorf("read number: %w", err)
		}
		return parseNumber(raw)
	}
	tok, err := dec.ReadToken()
	if err != nil {
		return Value{}, fmt.Errorf("read token: %w", err)
	}
	switch tok.Kind() {
	case 'n':
		return Value{}, nil
	case 't', 'f':
		return Value{kind: KindBool, b: tok.Bool()}, nil
	case '"':
		return Value{kind: KindString, s: tok.String()}, nil
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok.Kind())
}

func decodeObject(dec *jsontext.Decoder) (Value, error) {
	if _, err := dec.ReadToken(); err != nil { // '{'
		return Value{}, fmt.Errorf("read object open: %w", err)
	}
	res := Value{kind: KindObject}
	for dec.PeekKind() != '}' {
		tok, err := dec.ReadToken()
		if err != nil {
			return Value{}, fmt.Errorf("read object key: %w", err)
		}
		key := tok.String()
		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, fmt.Errorf("read object value for key %q: %w", key, err)
		}
		res.members = append(res.members, Member{Key: key, Value: val})
	}
	if _, err := dec.ReadToken(); err != nil { // '}'
		return Value{}, fmt.Errorf("read object close: %w", err)
	}
	return res, nil
}

func decodeArray(dec *jsontext.Decoder) (Value, error) {
	if _, err := dec.ReadToken(); err != nil { // '['
		return Value{}, fmt.Errorf("read array open: %w", err)
	}
	res := Value{kind: KindArray}
	for dec.PeekKind() != ']' {
		elem, err := decodeValue(dec)
		if err != nil {
			return Value{}, fmt.Errorf("read array element: %w", err)
		}
		res.elems = append(res.elems, elem)
	}
	if _, err := dec.ReadToken(); err != nil { // ']'
		return Value{}, fmt.Errorf("read array close: %w", err)
	}
	return res, nil
}

// parseNumber picks the narrowest kind for a number literal: Int, then
// Int64, then Uint64 for integers, Double for everything else.
func parseNumber(raw []byte) (Value, error) {
	s := string(raw)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			if i >= math.MinInt32 && i <= math.MaxInt32 {
				return Value{kind: KindInt, i: i}, nil
			}
			return Value{kind: KindInt64, i: i}, nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return Value{kind: KindUint64, u: u}, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("%w: %s", errNumberRange, s)
		}
		if !errors.Is(err, strconv.ErrRange) {
			return Value{}, fmt.Errorf("parse number %q: %w", s, err)
		}
	}
	return Value{kind: KindDouble, f: f}, nil
}

// UnmarshalJSONFrom lets a Value be decoded by json v2 as part of a larger
// structure.
func (v *Value) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	val, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// Unmarshalers returns json v2 unmarshalers for documents embedded in other
// Go values:
//
//   - JSON objects and arrays found in interface{} targets decode as *Value
//     instead of map[string]any and []any, preserving member order and
//     repeated keys. Primitive JSON values are left to the default logic.
//   - *Obj targets take a JSON object and *Arr targets a JSON array, with
//     nested containers as Obj and Arr and numbers typed the way Parse
//     types them.
func Unmarshalers() *json.Unmarshalers {
	return json.JoinUnmarshalers(
		unmarshalAny(),
		unmarshalObj(),
		unmarshalArr(),
	)
}

func unmarshalAny() *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *any) error {
		switch dec.PeekKind() {
		case '{', '[':
			val, err := decodeValue(dec)
			if err != nil {
				return err
			}
			*v = &val
			return nil
		default:
			return json.SkipFunc
		}
	})
}

func unmarshalObj() *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *Obj) error {
		if dec.PeekKind() != '{' {
			return json.SkipFunc
		}
		val, err := decodeObject(dec)
		if err != nil {
			return err
		}
		*v = val.literal().(Obj)
		return nil
	})
}

func unmarshalArr() *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *Arr) error {
		if dec.PeekKind() != '[' {
			return json.SkipFunc
		}
		val, err := decodeArray(dec)
		if err != nil {
			return err
		}
		*v = val.literal().(Arr)
		return nil
	})
}
