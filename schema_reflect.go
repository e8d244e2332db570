package lazyobj

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/fatih/structs"
	"github.com/go-bond/lazyobj/utils"
)

// ReflectTagName is the struct tag read by ReflectSchema.
//
//	Secret string `lazy:"-"`          // not a property
//	ID     uint64 `lazy:",readonly"`  // no setter
const ReflectTagName = "lazy"

// ReflectSchema builds a Schema from the exported fields of the struct T
// points to. It is the fallback for record types that do not declare a
// static property table. name defaults to the struct type name.
func ReflectSchema[T any](name ...string) (*Schema[T], error) {
	typ := utils.TypeOf[T]()
	if !utils.IsStructPointer(typ) {
		return nil, fmt.Errorf("%w: %s is not a pointer to struct", ErrInvalidSchema, typ)
	}

	schemaName := typ.Elem().Name()
	if len(name) > 0 && name[0] != "" {
		schemaName = name[0]
	}

	s := structs.New(utils.MakeNew[T]())
	s.TagName = ReflectTagName

	var properties []PropertyAccessor[T]
	for _, field := range s.Fields() {
		if !field.IsExported() {
			continue
		}

		structField, _ := typ.Elem().FieldByName(field.Name())
		properties = append(properties, &fieldProperty[T]{
			name:     field.Name(),
			typ:      structField.Type,
			readOnly: hasTagOption(field.Tag(ReflectTagName), "readonly"),
		})
	}

	return NewSchema(SchemaOptions[T]{
		Name:       schemaName,
		Properties: properties,
	})
}

func hasTagOption(tag string, option string) bool {
	parts := strings.Split(tag, ",")
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == option {
			return true
		}
	}
	return false
}

type fieldProperty[T any] struct {
	name     string
	typ      reflect.Type
	readOnly bool
}

func (f *fieldProperty[T]) Name() string {
	return f.name
}

func (f *fieldProperty[T]) Type() reflect.Type {
	return f.typ
}

func (f *fieldProperty[T]) ReadOnly() bool {
	return f.readOnly
}

func (f *fieldProperty[T]) GetAny(t T) any {
	return structs.New(t).Field(f.name).Value()
}

func (f *fieldProperty[T]) SetAny(t T, v any) error {
	if f.readOnly {
		return propertyError(ErrPropertyReadOnly, f.name)
	}

	value, err := utils.ConvertValue(v, f.typ)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrPropertyTypeMismatch, f.name, err.Error())
	}

	// structs compares kinds, which never match for interface fields
	if f.typ.Kind() == reflect.Interface {
		reflect.ValueOf(t).Elem().FieldByName(f.name).Set(value)
		return nil
	}

	return structs.New(t).Field(f.name).Set(value.Interface())
}

var _ PropertyAccessor[*struct{}] = (*fieldProperty[*struct{}])(nil)
