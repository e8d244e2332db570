package lazyobj_test

import (
	"fmt"
	"time"

	"github.com/go-bond/lazyobj"
)

type Person struct {
	Name      string
	BirthDate time.Time
}

var (
	PersonName = lazyobj.NewProperty(lazyobj.PropertyOptions[*Person, string]{
		Name:   "Name",
		Getter: func(p *Person) string { return p.Name },
		Setter: func(p *Person, v string) { p.Name = v },
	})
	PersonBirthDate = lazyobj.NewProperty(lazyobj.PropertyOptions[*Person, time.Time]{
		Name:   "BirthDate",
		Getter: func(p *Person) time.Time { return p.BirthDate },
		Setter: func(p *Person, v time.Time) { p.BirthDate = v },
	})

	PersonSchema = lazyobj.MustNewSchema(lazyobj.SchemaOptions[*Person]{
		Name:       "person",
		Properties: []lazyobj.PropertyAccessor[*Person]{PersonName, PersonBirthDate},
	})
)

func ExampleSetLazy() {
	person, err := lazyobj.NewObject(lazyobj.ObjectOptions[*Person]{
		Record: &Person{Name: "Ada"},
		Schema: PersonSchema,
	})
	if err != nil {
		panic(err)
	}

	_ = lazyobj.SetLazy(person, PersonBirthDate, func() time.Time {
		fmt.Println("loading birth date")
		return time.Date(1983, 7, 14, 0, 0, 0, 0, time.UTC)
	})

	state, _ := person.State("BirthDate")
	fmt.Println(state)

	for i := 0; i < 2; i++ {
		birthDate, _ := lazyobj.Get(person, PersonBirthDate)
		fmt.Println(birthDate.Format(time.DateOnly))
	}

	// Output:
	// pending
	// loading birth date
	// 1983-07-14
	// 1983-07-14
}

func ExampleObject_Set() {
	person, _ := lazyobj.NewObject(lazyobj.ObjectOptions[*Person]{
		Schema: PersonSchema,
		Policy: lazyobj.CacheComputeOnce,
	})

	_ = lazyobj.SetLazy(person, PersonName, func() string { return "from producer" })
	_ = lazyobj.Set(person, PersonName, "explicit")

	name, _ := lazyobj.Get(person, PersonName)
	fmt.Println(name)

	// Output:
	// explicit
}
