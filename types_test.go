package lazyobj

import (
	"fmt"
	"time"
)

type TestObj struct {
	ID   uint64    `json:"id" lazy:",readonly"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`

	Note   fmt.Stringer `json:"-"`
	secret string
}

var (
	TestObjID = NewProperty(PropertyOptions[*TestObj, uint64]{
		Name:   "ID",
		Getter: func(o *TestObj) uint64 { return o.ID },
	})
	TestObjText = NewProperty(PropertyOptions[*TestObj, string]{
		Name:   "Text",
		Getter: func(o *TestObj) string { return o.Text },
		Setter: func(o *TestObj, v string) { o.Text = v },
	})
	TestObjDate = NewProperty(PropertyOptions[*TestObj, time.Time]{
		Name:   "Date",
		Getter: func(o *TestObj) time.Time { return o.Date },
		Setter: func(o *TestObj, v time.Time) { o.Date = v },
	})

	TestObjSchema = MustNewSchema(SchemaOptions[*TestObj]{
		Name: "test_obj",
		Properties: []PropertyAccessor[*TestObj]{
			TestObjID,
			TestObjText,
			TestObjDate,
		},
	})
)

// TestCounter relies on the reflect schema.
type TestCounter struct {
	Small uint8
	Count int
}

var birthDate = time.Date(1983, 7, 14, 0, 0, 0, 0, time.UTC)

// countingProducer returns a producer that counts its calls.
func countingProducer[V any](value V) (func() V, *int) {
	calls := 0
	return func() V {
		calls++
		return value
	}, &calls
}

func setupObject(policy CachePolicy) *Object[*TestObj] {
	obj, err := NewObject(ObjectOptions[*TestObj]{
		Record:      &TestObj{ID: 7},
		Schema:      TestObjSchema,
		Policy:      policy,
		IDGenerator: &SequenceGenerator{},
	})
	if err != nil {
		panic(err)
	}
	return obj
}
