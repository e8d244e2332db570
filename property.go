package lazyobj

import (
	"fmt"
	"reflect"
)

// PropertyGetter is the function type used to read a property value from a record.
type PropertyGetter[T any, V any] func(t T) V

// PropertySetter is the function type used to write a property value to a record.
type PropertySetter[T any, V any] func(t T, v V)

type PropertyInfo interface {
	Name() string
	Type() reflect.Type
	ReadOnly() bool
}

// PropertyAccessor is the type erased view of a property that Schema and
// Object work with. Property[T, V] and the reflection backed fields of
// ReflectSchema both implement it.
type PropertyAccessor[T any] interface {
	PropertyInfo

	GetAny(t T) any
	SetAny(t T, v any) error
}

type PropertyOptions[T any, V any] struct {
	Name   string
	Getter PropertyGetter[T, V]
	Setter PropertySetter[T, V]
}

type Property[T any, V any] struct {
	name   string
	getter PropertyGetter[T, V]
	setter PropertySetter[T, V]
}

func NewProperty[T any, V any](opt PropertyOptions[T, V]) *Property[T, V] {
	return &Property[T, V]{
		name:   opt.Name,
		getter: opt.Getter,
		setter: opt.Setter,
	}
}

func (p *Property[T, V]) Name() string {
	return p.name
}

func (p *Property[T, V]) Type() reflect.Type {
	return reflect.TypeOf((*V)(nil)).Elem()
}

func (p *Property[T, V]) ReadOnly() bool {
	return p.setter == nil
}

func (p *Property[T, V]) hasGetter() bool {
	return p.getter != nil
}

func (p *Property[T, V]) Get(t T) V {
	return p.getter(t)
}

func (p *Property[T, V]) Set(t T, v V) error {
	if p.setter == nil {
		return propertyError(ErrPropertyReadOnly, p.name)
	}
	p.setter(t, v)
	return nil
}

func (p *Property[T, V]) GetAny(t T) any {
	return p.getter(t)
}

func (p *Property[T, V]) SetAny(t T, v any) error {
	value, err := p.cast(v)
	if err != nil {
		return err
	}
	return p.Set(t, value)
}

// cast converts an untyped value to V. nil is accepted as the zero value.
func (p *Property[T, V]) cast(v any) (V, error) {
	if v == nil {
		var zero V
		return zero, nil
	}

	if value, ok := v.(V); ok {
		return value, nil
	}

	var zero V
	return zero, fmt.Errorf("%w: %s expects %s, got %T", ErrPropertyTypeMismatch, p.name, p.Type(), v)
}

var _ PropertyAccessor[any] = (*Property[any, int])(nil)
