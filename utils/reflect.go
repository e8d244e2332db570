package utils

import (
	"fmt"
	"math"
	"reflect"
)

// MakeNew returns a usable zero value of T. Pointer types get a freshly
// allocated element instead of nil.
func MakeNew[T any]() T {
	var v T
	if typ := reflect.TypeOf(v); typ != nil && typ.Kind() == reflect.Ptr {
		return reflect.New(typ.Elem()).Interface().(T)
	}
	return v
}

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func IsStructPointer(typ reflect.Type) bool {
	return typ != nil && typ.Kind() == reflect.Ptr && typ.Elem().Kind() == reflect.Struct
}

// ConvertValue returns v as a reflect.Value assignable to typ. A nil v
// yields the zero value of typ; values of a convertible type are converted.
// Numbers are only converted when the target type holds them exactly, so
// 300 into a uint8 or 3.7 into an int is an error rather than a wrap.
func ConvertValue(v any, typ reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(typ), nil
	}

	vt := reflect.ValueOf(v)
	if vt.Type().AssignableTo(typ) {
		return vt, nil
	}

	if vt.CanConvert(typ) && isSafeConversion(vt.Type(), typ) {
		converted := vt.Convert(typ)
		if isNumber(typ.Kind()) && !isExactNumber(vt, converted) {
			return reflect.Value{}, fmt.Errorf("value %v does not fit %s", v, typ.String())
		}
		return converted, nil
	}

	return reflect.Value{}, fmt.Errorf("type mismatch %s != %s", vt.Type().String(), typ.String())
}

// isSafeConversion rejects conversions that reflect allows but that change
// the meaning of the value, e.g. int to string.
func isSafeConversion(from, to reflect.Type) bool {
	if to.Kind() == reflect.String {
		return from.Kind() == reflect.String ||
			(from.Kind() == reflect.Slice && from.Elem().Kind() == reflect.Uint8)
	}
	if isNumber(to.Kind()) {
		return isNumber(from.Kind())
	}
	return true
}

// isExactNumber reports whether converted still holds the value of from.
// Float to float conversions may round but must not overflow.
func isExactNumber(from, converted reflect.Value) bool {
	if isFloat(from.Kind()) && isFloat(converted.Kind()) {
		f := from.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
		return !converted.OverflowFloat(f)
	}
	return converted.Convert(from.Type()).Interface() == from.Interface()
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
