package lazyobj

import "fmt"

// SetLazy binds a typed producer to p on o.
//
//	lazyobj.SetLazy(obj, BirthDate, func() time.Time { return loadBirthDate(id) })
func SetLazy[T any, V any](o *Object[T], p *Property[T, V], producer func() V) error {
	if producer == nil {
		return propertyError(ErrNilProducer, p.Name())
	}

	return o.SetLazy(p.Name(), func() (any, error) {
		return producer(), nil
	})
}

// SetLazyE is SetLazy for producers that can fail. The error is returned
// from the Get that triggered the evaluation.
func SetLazyE[T any, V any](o *Object[T], p *Property[T, V], producer func() (V, error)) error {
	if producer == nil {
		return propertyError(ErrNilProducer, p.Name())
	}

	return o.SetLazy(p.Name(), func() (any, error) {
		v, err := producer()
		if err != nil {
			return nil, err
		}
		return v, nil
	})
}

func Get[T any, V any](o *Object[T], p *Property[T, V]) (V, error) {
	var zero V

	value, err := o.Get(p.Name())
	if err != nil {
		return zero, err
	}

	if value == nil {
		return zero, nil
	}

	typed, ok := value.(V)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T, not %s", ErrPropertyTypeMismatch, p.Name(), value, p.Type())
	}
	return typed, nil
}

func Set[T any, V any](o *Object[T], p *Property[T, V], v V) error {
	return o.Set(p.Name(), v)
}
