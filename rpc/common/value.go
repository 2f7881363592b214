package common

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// --------------------------------------------------------------------------
// Wire Value
// --------------------------------------------------------------------------

// Kind is the type tag of a wire Value
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is the generic value used on the wire for command names, arguments and results.
// It is one of null, string, number, bool or an ordered array of Values.
// Numbers keep their decimal text so that 64-bit integers survive a round trip.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string // string payload, or the text of a number
	b    bool
	arr  []Value
}

// Null returns the null (absent) Value
func Null() Value { return Value{} }

// Str returns a string Value
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Bool returns a boolean Value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a number Value for a signed integer
func Int(i int64) Value { return Value{kind: KindNumber, str: strconv.FormatInt(i, 10)} }

// Uint returns a number Value for an unsigned integer
func Uint(u uint64) Value { return Value{kind: KindNumber, str: strconv.FormatUint(u, 10)} }

// Float returns a number Value for a float. NaN and infinities have no wire representation.
func Float(f float64) (Value, error) {
	return encodeFloat(f, 64)
}

// Array returns an array Value holding a copy of elems
func Array(elems ...Value) Value {
	arr := make([]Value, len(elems))
	copy(arr, elems)
	return Value{kind: KindArray, arr: arr}
}

// Kind returns the type tag of the value
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the payload of a string or number value
func (v Value) Text() (string, bool) {
	if v.kind == KindString || v.kind == KindNumber {
		return v.str, true
	}
	return "", false
}

// Elems returns a copy of the elements of an array value (nil for other kinds)
func (v Value) Elems() []Value {
	if v.kind != KindArray {
		return nil
	}
	arr := make([]Value, len(v.arr))
	copy(arr, v.arr)
	return arr
}

// Equal reports whether two values are structurally identical
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	default:
		return v.str == o.str
	}
}

// --------------------------------------------------------------------------
// JSON
// --------------------------------------------------------------------------

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(v.str)
	case KindString:
		b, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("invalid value kind %d", v.kind)
	}
	return nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := fromJSON(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// fromJSON converts the output of a json.Decoder (with UseNumber) into a Value
func fromJSON(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return Str(x), nil
	case bool:
		return Bool(x), nil
	case json.Number:
		return Value{kind: KindNumber, str: x.String()}, nil
	case []any:
		arr := make([]Value, len(x))
		for i, e := range x {
			ev, err := fromJSON(e)
			if err != nil {
				return Value{}, err
			}
			arr[i] = ev
		}
		return Value{kind: KindArray, arr: arr}, nil
	default:
		return Value{}, fmt.Errorf("%T is not a wire value", raw)
	}
}

// --------------------------------------------------------------------------
// Encoder
// --------------------------------------------------------------------------

// Encode converts an arbitrary Go value into a wire Value.
// Supported are strings, byte slices, booleans, all integer and float types,
// pointers (nil encodes to null), slices and arrays (encoded element-wise),
// json.Number, Value itself and types implementing encoding.TextMarshaler.
// Everything else, as well as NaN and infinite floats, fails with an *EncodingError.
func Encode(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case *Value:
		if x == nil {
			return Null(), nil
		}
		return *x, nil
	case string:
		return Str(x), nil
	case []byte:
		return Str(string(x)), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Uint(uint64(x)), nil
	case uint8:
		return Uint(uint64(x)), nil
	case uint16:
		return Uint(uint64(x)), nil
	case uint32:
		return Uint(uint64(x)), nil
	case uint64:
		return Uint(x), nil
	case float32:
		return encodeFloat(float64(x), 32)
	case float64:
		return encodeFloat(x, 64)
	case json.Number:
		if !json.Valid([]byte(x)) {
			return Value{}, &EncodingError{Value: v, Reason: fmt.Sprintf("%q is not a valid number", string(x))}
		}
		if _, err := strconv.ParseFloat(string(x), 64); err != nil {
			return Value{}, &EncodingError{Value: v, Reason: fmt.Sprintf("%q is not a valid number", string(x))}
		}
		return Value{kind: KindNumber, str: string(x)}, nil
	case encoding.TextMarshaler:
		return encodeText(v, x)
	}
	return encodeReflect(reflect.ValueOf(v))
}

func encodeFloat(f float64, bitSize int) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, &EncodingError{Value: f, Reason: "non-finite number"}
	}
	// same format choice as encoding/json: plain decimals, exponent only for extreme magnitudes
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	return Value{kind: KindNumber, str: strconv.FormatFloat(f, format, -1, bitSize)}, nil
}

func encodeText(v any, tm encoding.TextMarshaler) (Value, error) {
	text, err := tm.MarshalText()
	if err != nil {
		return Value{}, &EncodingError{Value: v, Reason: err.Error()}
	}
	return Str(string(text)), nil
}

// encodeReflect handles named types and containers that the fast path does not cover
func encodeReflect(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Null(), nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return Encode(rv.Elem().Interface())
	case reflect.String:
		return Str(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint()), nil
	case reflect.Float32:
		return encodeFloat(rv.Float(), 32)
	case reflect.Float64:
		return encodeFloat(rv.Float(), 64)
	case reflect.Slice, reflect.Array:
		// named byte slices are sent as strings, like []byte
		if rv.Type().Elem().Kind() == reflect.Uint8 && rv.Kind() == reflect.Slice {
			return Str(string(rv.Bytes())), nil
		}
		arr := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := Encode(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			arr[i] = ev
		}
		return Value{kind: KindArray, arr: arr}, nil
	default:
		return Value{}, &EncodingError{Value: rv.Interface(), Reason: fmt.Sprintf("no wire mapping for kind %s", rv.Kind())}
	}
}

// --------------------------------------------------------------------------
// Decoder
// --------------------------------------------------------------------------

// Decode decodes a wire Value into out, which must be a non-nil pointer.
// A null value only decodes into pointer, interface or Value targets (a nil
// pointer means "absent"). Null for any other target, at any depth, is a shape
// mismatch like all others and fails with a *DecodeError.
func Decode(v Value, out any) error {
	if out == nil {
		return &DecodeError{Target: "nil", Err: fmt.Errorf("decode target must be a non-nil pointer")}
	}
	if target, ok := out.(*Value); ok {
		*target = v
		return nil
	}
	rt := reflect.TypeOf(out)
	if rt.Kind() != reflect.Pointer || reflect.ValueOf(out).IsNil() {
		return &DecodeError{Target: fmt.Sprintf("%T", out), Err: fmt.Errorf("decode target must be a non-nil pointer")}
	}
	if err := checkNull(v, rt.Elem()); err != nil {
		return &DecodeError{Target: fmt.Sprintf("%T", out), Err: err}
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return &DecodeError{Target: fmt.Sprintf("%T", out), Err: err}
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &DecodeError{Target: fmt.Sprintf("%T", out), Err: err}
	}
	return nil
}

var valueType = reflect.TypeOf(Value{})

// nullable reports whether t can hold a null without losing it
func nullable(t reflect.Type) bool {
	return t == valueType || t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface
}

// checkNull rejects nulls that would silently become zero values of t
func checkNull(v Value, t reflect.Type) error {
	if nullable(t) {
		if t.Kind() != reflect.Pointer || v.kind != KindArray {
			return nil
		}
		return checkNull(v, t.Elem())
	}
	switch v.kind {
	case KindNull:
		return fmt.Errorf("null can not be decoded into %s", t)
	case KindArray:
		if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
			return nil // the decoder reports the mismatch
		}
		for i, e := range v.arr {
			if err := checkNull(e, t.Elem()); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
	}
	return nil
}
