package lazyobj

import (
	"fmt"
)

// Accessor is the capability of reading and writing properties by name.
type Accessor interface {
	Get(name string) (any, error)
	Set(name string, value any) error
}

type SchemaOptions[T any] struct {
	Name       string
	Properties []PropertyAccessor[T]
}

// Schema is the static property table of a record type. It is built once
// and shared by every Object of that type.
type Schema[T any] struct {
	name string

	properties      map[string]PropertyAccessor[T]
	propertiesOrder []string
}

func NewSchema[T any](opt SchemaOptions[T]) (*Schema[T], error) {
	if opt.Name == "" {
		return nil, fmt.Errorf("%w: name can not be empty", ErrInvalidSchema)
	}

	schema := &Schema[T]{
		name:            opt.Name,
		properties:      make(map[string]PropertyAccessor[T], len(opt.Properties)),
		propertiesOrder: make([]string, 0, len(opt.Properties)),
	}

	for _, prop := range opt.Properties {
		if err := schema.add(prop); err != nil {
			return nil, err
		}
	}

	return schema, nil
}

func MustNewSchema[T any](opt SchemaOptions[T]) *Schema[T] {
	schema, err := NewSchema(opt)
	if err != nil {
		panic(err)
	}
	return schema
}

func (s *Schema[T]) add(prop PropertyAccessor[T]) error {
	if prop == nil {
		return fmt.Errorf("%w: nil property in %s", ErrInvalidSchema, s.name)
	}

	if p, ok := prop.(interface{ hasGetter() bool }); ok && !p.hasGetter() {
		return fmt.Errorf("%w: property %s has no getter", ErrInvalidSchema, prop.Name())
	}

	name := prop.Name()
	if name == "" {
		return fmt.Errorf("%w: property name can not be empty", ErrInvalidSchema)
	}

	if _, ok := s.properties[name]; ok {
		return propertyError(ErrDuplicateProperty, name)
	}

	s.properties[name] = prop
	s.propertiesOrder = append(s.propertiesOrder, name)
	return nil
}

func (s *Schema[T]) Name() string {
	return s.name
}

// Properties returns the properties in declaration order.
func (s *Schema[T]) Properties() []PropertyInfo {
	infos := make([]PropertyInfo, 0, len(s.propertiesOrder))
	for _, name := range s.propertiesOrder {
		infos = append(infos, s.properties[name])
	}
	return infos
}

func (s *Schema[T]) Property(name string) (PropertyAccessor[T], bool) {
	prop, ok := s.properties[name]
	return prop, ok
}

func (s *Schema[T]) lookup(name string) (PropertyAccessor[T], error) {
	prop, ok := s.properties[name]
	if !ok {
		return nil, propertyError(ErrPropertyNotFound, name)
	}
	return prop, nil
}

// Bind returns an Accessor that reads and writes record fields directly,
// without any lazy evaluation.
func (s *Schema[T]) Bind(record T) Accessor {
	return &boundRecord[T]{schema: s, record: record}
}

type boundRecord[T any] struct {
	schema *Schema[T]
	record T
}

func (b *boundRecord[T]) Get(name string) (any, error) {
	prop, err := b.schema.lookup(name)
	if err != nil {
		return nil, err
	}
	return prop.GetAny(b.record), nil
}

func (b *boundRecord[T]) Set(name string, value any) error {
	prop, err := b.schema.lookup(name)
	if err != nil {
		return err
	}
	if prop.ReadOnly() {
		return propertyError(ErrPropertyReadOnly, name)
	}
	return prop.SetAny(b.record, value)
}

var _ Accessor = (*boundRecord[any])(nil)
