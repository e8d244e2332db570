package inspect

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-bond/lazyobj"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"
)

// Inspect exposes the lazy state of a set of objects. Apart from
// Materialize, none of its methods run a producer.
type Inspect interface {
	Objects() ([]ObjectEntry, error)
	Properties(object string) (map[string]string, error)
	Status(object string) ([]lazyobj.PropertyStatus, error)

	Materialize(ctx context.Context, object string, properties []string) ([]lazyobj.PropertyStatus, error)
}

type ObjectEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Registry is the in-process Inspect implementation. Objects are looked up
// by the string form of their id.
type Registry struct {
	objects map[uuid.UUID]lazyobj.ObjectInfo
	mutex   sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{objects: make(map[uuid.UUID]lazyobj.ObjectInfo)}
}

func NewInspect(objects []lazyobj.ObjectInfo) (Inspect, error) {
	registry := NewRegistry()
	for _, object := range objects {
		if err := registry.Register(object); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func (r *Registry) Register(object lazyobj.ObjectInfo) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.objects[object.ID()]; ok {
		return fmt.Errorf("object already registered: %s", object.ID())
	}

	r.objects[object.ID()] = object
	return nil
}

func (r *Registry) Unregister(id uuid.UUID) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.objects, id)
}

func (r *Registry) Objects() ([]ObjectEntry, error) {
	r.mutex.RLock()
	objects := maps.Clone(r.objects)
	r.mutex.RUnlock()

	entries := make([]ObjectEntry, 0, len(objects))
	for id, object := range objects {
		entries = append(entries, ObjectEntry{ID: id.String(), Name: object.Name()})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ID < entries[j].ID
	})

	return entries, nil
}

func (r *Registry) Properties(object string) (map[string]string, error) {
	info, err := r.find(object)
	if err != nil {
		return nil, err
	}

	propertiesAndTypes := make(map[string]string)
	for _, prop := range info.Properties() {
		propertiesAndTypes[prop.Name()] = prop.Type().String()
	}
	return propertiesAndTypes, nil
}

func (r *Registry) Status(object string) ([]lazyobj.PropertyStatus, error) {
	info, err := r.find(object)
	if err != nil {
		return nil, err
	}
	return info.Status(), nil
}

func (r *Registry) Materialize(ctx context.Context, object string, properties []string) ([]lazyobj.PropertyStatus, error) {
	info, err := r.find(object)
	if err != nil {
		return nil, err
	}

	err = info.Materialize(ctx, properties...)
	if err != nil {
		return nil, err
	}

	return info.Status(), nil
}

func (r *Registry) find(object string) (lazyobj.ObjectInfo, error) {
	if object == "" {
		return nil, fmt.Errorf("object can not be empty")
	}

	id, err := uuid.Parse(object)
	if err != nil {
		return nil, fmt.Errorf("invalid object id: %w", err)
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	info, ok := r.objects[id]
	if !ok {
		return nil, fmt.Errorf("object not found")
	}
	return info, nil
}

var _ Inspect = (*Registry)(nil)
