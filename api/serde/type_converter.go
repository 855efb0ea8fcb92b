package serde

import (
	"fmt"
	"reflect"
)

// TypeConverter turns loosely-typed decoded values (maps, float64 numbers,
// []any) into the concrete types an activity function declares.
type TypeConverter struct {
	serde BinarySerde
}

func NewTypeConverter(s BinarySerde) *TypeConverter {
	return &TypeConverter{serde: s}
}

// ConvertToType converts value to targetType. Values that cannot be converted
// directly are round-tripped through the configured serde.
func (tc *TypeConverter) ConvertToType(value any, targetType reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(targetType), nil
	}

	valueType := reflect.TypeOf(value)
	if valueType == targetType {
		return reflect.ValueOf(value), nil
	}

	if valueType.ConvertibleTo(targetType) {
		if isNumericKind(valueType.Kind()) && isNumericKind(targetType.Kind()) {
			return convertNumeric(value, valueType, targetType)
		}
		// string(int) style conversions compile but never mean what a caller wants
		if targetType.Kind() != reflect.String || valueType.Kind() == reflect.String {
			return reflect.ValueOf(value).Convert(targetType), nil
		}
	}

	return tc.convertViaSerializer(value, targetType)
}

// ConvertArgs converts decoded positional arguments into the parameter types of
// fnType starting at parameter index offset.
func (tc *TypeConverter) ConvertArgs(args []any, fnType reflect.Type, offset int) ([]reflect.Value, error) {
	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("%v is not a function type", fnType)
	}
	if want := fnType.NumIn() - offset; want != len(args) {
		return nil, fmt.Errorf("argument count mismatch: function expects %d, got %d", want, len(args))
	}

	out := make([]reflect.Value, len(args))
	for i, arg := range args {
		v, err := tc.ConvertToType(arg, fnType.In(i+offset))
		if err != nil {
			return nil, fmt.Errorf("failed to convert argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func convertNumeric(value any, valueType, targetType reflect.Type) (reflect.Value, error) {
	v := reflect.ValueOf(value)

	if isFloatKind(valueType.Kind()) && isIntegerKind(targetType.Kind()) {
		f := v.Float()
		i := int64(f)
		if float64(i) != f {
			return reflect.Value{}, fmt.Errorf("cannot convert %v to %v without losing precision", f, targetType)
		}
		return reflect.ValueOf(i).Convert(targetType), nil
	}

	return v.Convert(targetType), nil
}

func (tc *TypeConverter) convertViaSerializer(value any, targetType reflect.Type) (reflect.Value, error) {
	data, err := tc.serde.SerializeBinary(value)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("failed to serialize value for type conversion: %w", err)
	}

	elemType := targetType
	if targetType.Kind() == reflect.Pointer {
		elemType = targetType.Elem()
	}
	target := reflect.New(elemType)
	if err := tc.serde.DeserializeBinary(data, target.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("failed to deserialize value to %v: %w", targetType, err)
	}

	if targetType.Kind() == reflect.Pointer {
		return target, nil
	}
	return target.Elem(), nil
}

func isNumericKind(k reflect.Kind) bool {
	return isIntegerKind(k) || isFloatKind(k)
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
