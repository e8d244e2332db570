package lazyobj

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/go-bond/lazyobj/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultMaterializeConcurrency = 1

// Producer supplies the value of a lazy property when it is first read.
// It may read other properties of the same object but never its own,
// such a read waits on the evaluation it is part of and never returns.
type Producer func() (any, error)

type ObjectInfo interface {
	ID() uuid.UUID
	Name() string
	Properties() []PropertyInfo
	Status() []PropertyStatus
	Materialize(ctx context.Context, properties ...string) error
}

type PropertyStatus struct {
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	ReadOnly bool          `json:"readOnly"`
	State    PropertyState `json:"state"`

	Evaluations     uint64        `json:"evaluations"`
	LastEvaluatedAt time.Time     `json:"lastEvaluatedAt"`
	LastDuration    time.Duration `json:"lastDuration"`
	LastError       string        `json:"lastError,omitempty"`

	// Value is the printed value, empty while the property is pending.
	Value string `json:"value,omitempty"`
}

type ObjectOptions[T any] struct {
	// Record is the decorated instance. A nil pointer record is replaced by
	// a freshly allocated one.
	Record T

	// Schema defaults to ReflectSchema[T]().
	Schema *Schema[T]

	Policy CachePolicy

	MaterializeConcurrency int

	IDGenerator UniqueIDGenerator

	Logger *slog.Logger
}

type propertyStats struct {
	evaluations     uint64
	lastEvaluatedAt time.Time
	lastDuration    time.Duration
	lastError       string
}

// Object decorates a record with lazily evaluated properties. Reads and
// writes of properties go through Get and Set, which consult the lazy
// bindings registered with SetLazy before touching the record.
type Object[T any] struct {
	id     uuid.UUID
	record T
	schema *Schema[T]
	policy CachePolicy

	materializeConcurrency int

	bindings     map[string]Producer
	cache        map[string]any
	materialized map[string]bool
	generations  map[string]uint64
	stats        map[string]*propertyStats

	flight singleflight.Group
	mutex  sync.Mutex

	logger *slog.Logger
}

func NewObject[T any](opt ObjectOptions[T]) (*Object[T], error) {
	if !opt.Policy.valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCachePolicy, opt.Policy)
	}

	schema := opt.Schema
	if schema == nil {
		var err error
		schema, err = ReflectSchema[T]()
		if err != nil {
			return nil, err
		}
	}

	record := opt.Record
	if utils.IsNil(record) {
		record = utils.MakeNew[T]()
		if utils.IsNil(record) {
			return nil, fmt.Errorf("%w: record can not be nil", ErrInvalidSchema)
		}
	}

	idGenerator := opt.IDGenerator
	if idGenerator == nil {
		idGenerator = &UUIDGenerator{}
	}

	id, err := idGenerator.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to generate object id: %w", err)
	}

	materializeConcurrency := opt.MaterializeConcurrency
	if materializeConcurrency <= 0 {
		materializeConcurrency = DefaultMaterializeConcurrency
	}

	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With(
		slog.String("object", id.String()),
		slog.String("schema", schema.Name()),
	)

	if opt.Policy == CacheNone {
		logger.Warn("cache policy none re-runs producers on every read")
	}

	return &Object[T]{
		id:                     id,
		record:                 record,
		schema:                 schema,
		policy:                 opt.Policy,
		materializeConcurrency: materializeConcurrency,
		bindings:               make(map[string]Producer),
		cache:                  make(map[string]any),
		materialized:           make(map[string]bool),
		generations:            make(map[string]uint64),
		stats:                  make(map[string]*propertyStats),
		logger:                 logger,
	}, nil
}

func (o *Object[T]) ID() uuid.UUID {
	return o.id
}

func (o *Object[T]) Name() string {
	return o.schema.Name()
}

func (o *Object[T]) Schema() *Schema[T] {
	return o.schema
}

func (o *Object[T]) Policy() CachePolicy {
	return o.policy
}

func (o *Object[T]) Properties() []PropertyInfo {
	return o.schema.Properties()
}

// Record returns the decorated record. Pending properties are not reflected
// in it until they are read under CacheComputeOnce or materialized.
func (o *Object[T]) Record() T {
	return o.record
}

// SetLazy binds producer to the property. The producer runs on the first
// Get of the property, never before. Any value cached for the property is
// dropped. The producer must not Get the property it is bound to, that
// call blocks forever.
func (o *Object[T]) SetLazy(name string, producer Producer) error {
	prop, err := o.schema.lookup(name)
	if err != nil {
		return err
	}

	if prop.ReadOnly() {
		return propertyError(ErrPropertyReadOnly, name)
	}

	if producer == nil {
		return propertyError(ErrNilProducer, name)
	}

	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.bindings[name] = producer
	delete(o.cache, name)
	delete(o.materialized, name)
	o.generations[name]++

	o.logger.Debug("lazy property bound", slog.String("property", name))
	return nil
}

// Get returns the property value. A cached value wins, then a pending
// producer, then the record field.
func (o *Object[T]) Get(name string) (any, error) {
	prop, err := o.schema.lookup(name)
	if err != nil {
		return nil, err
	}

	o.mutex.Lock()
	if value, ok := o.cache[name]; ok {
		o.mutex.Unlock()
		return value, nil
	}

	producer, ok := o.bindings[name]
	if !ok {
		value := prop.GetAny(o.record)
		o.mutex.Unlock()
		return value, nil
	}
	generation := o.generations[name]
	o.mutex.Unlock()

	value, err, _ := o.flight.Do(flightKey(name, generation), func() (any, error) {
		value, settled, stale := o.settled(prop, generation)
		if stale {
			return o.Get(name)
		}
		if settled {
			return value, nil
		}
		return o.evaluate(prop, producer, generation)
	})
	return value, err
}

// settled reports the value of a property whose evaluation for generation
// already completed between the caller's lookup and its flight, or that
// the property was rebound or written in the meantime.
func (o *Object[T]) settled(prop PropertyAccessor[T], generation uint64) (value any, settled bool, stale bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	name := prop.Name()
	if o.generations[name] != generation {
		return nil, false, true
	}

	if value, ok := o.cache[name]; ok {
		return value, true, false
	}

	if _, ok := o.bindings[name]; !ok {
		return prop.GetAny(o.record), true, false
	}

	return nil, false, false
}

// Set writes value to the record and cancels any pending producer, so the
// explicit value wins over a lazy one that has not run yet.
func (o *Object[T]) Set(name string, value any) error {
	prop, err := o.schema.lookup(name)
	if err != nil {
		return err
	}

	if prop.ReadOnly() {
		return propertyError(ErrPropertyReadOnly, name)
	}

	normalized, err := normalize(prop, value)
	if err != nil {
		return err
	}

	o.mutex.Lock()
	defer o.mutex.Unlock()

	if err := prop.SetAny(o.record, normalized); err != nil {
		return err
	}

	if _, pending := o.bindings[name]; pending {
		o.logger.Debug("pending producer replaced by explicit value", slog.String("property", name))
	}

	delete(o.bindings, name)
	delete(o.cache, name)
	delete(o.materialized, name)
	o.generations[name]++
	return nil
}

// Cancel drops the pending producer and cached value of the property
// without evaluating it. The record field keeps its current value and the
// property reports StatePlain afterwards.
func (o *Object[T]) Cancel(name string) error {
	if _, err := o.schema.lookup(name); err != nil {
		return err
	}

	o.mutex.Lock()
	defer o.mutex.Unlock()

	delete(o.bindings, name)
	delete(o.cache, name)
	delete(o.materialized, name)
	o.generations[name]++
	return nil
}

func (o *Object[T]) State(name string) (PropertyState, error) {
	if _, err := o.schema.lookup(name); err != nil {
		return "", err
	}

	o.mutex.Lock()
	defer o.mutex.Unlock()

	return o.state(name), nil
}

func (o *Object[T]) state(name string) PropertyState {
	if _, ok := o.cache[name]; ok {
		return StateCached
	}
	if _, ok := o.bindings[name]; ok {
		return StatePending
	}
	if o.materialized[name] {
		return StateMaterialized
	}
	return StatePlain
}

// Status reports every property in schema order. It never runs a producer.
func (o *Object[T]) Status() []PropertyStatus {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	statuses := make([]PropertyStatus, 0, len(o.schema.propertiesOrder))
	for _, name := range o.schema.propertiesOrder {
		prop := o.schema.properties[name]

		status := PropertyStatus{
			Name:     name,
			Type:     prop.Type().String(),
			ReadOnly: prop.ReadOnly(),
			State:    o.state(name),
		}

		if stats, ok := o.stats[name]; ok {
			status.Evaluations = stats.evaluations
			status.LastEvaluatedAt = stats.lastEvaluatedAt
			status.LastDuration = stats.lastDuration
			status.LastError = stats.lastError
		}

		switch status.State {
		case StateCached:
			status.Value = fmt.Sprintf("%v", o.cache[name])
		case StatePlain, StateMaterialized:
			status.Value = fmt.Sprintf("%v", prop.GetAny(o.record))
		}

		statuses = append(statuses, status)
	}

	return statuses
}

// Materialize evaluates the given properties, or every pending and cached
// one when none are given, and writes the results into the record.
func (o *Object[T]) Materialize(ctx context.Context, properties ...string) error {
	if len(properties) == 0 {
		properties = o.lazyProperties()
	}

	for _, name := range properties {
		if _, err := o.schema.lookup(name); err != nil {
			return err
		}
	}

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(o.materializeConcurrency)
	for _, name := range properties {
		grp.Go(func() error {
			if err := grpCtx.Err(); err != nil {
				return err
			}
			return o.materialize(name)
		})
	}
	return grp.Wait()
}

func (o *Object[T]) lazyProperties() []string {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	var names []string
	for _, name := range o.schema.propertiesOrder {
		_, pending := o.bindings[name]
		_, cached := o.cache[name]
		if pending || cached {
			names = append(names, name)
		}
	}
	return names
}

func (o *Object[T]) materialize(name string) error {
	o.mutex.Lock()
	generation := o.generations[name]
	o.mutex.Unlock()

	value, err := o.Get(name)
	if err != nil {
		return err
	}

	o.mutex.Lock()
	defer o.mutex.Unlock()

	// rebound or overwritten while evaluating, the newer state wins
	if o.generations[name] != generation {
		return nil
	}

	_, pending := o.bindings[name]
	cached, isCached := o.cache[name]
	if !pending && !isCached {
		return nil
	}
	if isCached {
		value = cached
	}

	prop := o.schema.properties[name]
	if err := prop.SetAny(o.record, value); err != nil {
		return err
	}

	delete(o.bindings, name)
	delete(o.cache, name)
	o.materialized[name] = true
	o.generations[name]++

	o.logger.Debug("lazy property materialized", slog.String("property", name))
	return nil
}

func (o *Object[T]) evaluate(prop PropertyAccessor[T], producer Producer, generation uint64) (any, error) {
	name := prop.Name()

	start := time.Now()
	value, err := producer()
	elapsed := time.Since(start)

	if err == nil {
		value, err = normalize(prop, value)
	}

	o.mutex.Lock()
	defer o.mutex.Unlock()

	stats, ok := o.stats[name]
	if !ok {
		stats = &propertyStats{}
		o.stats[name] = stats
	}
	stats.evaluations++
	stats.lastEvaluatedAt = start
	stats.lastDuration = elapsed
	stats.lastError = ""

	if err != nil {
		stats.lastError = err.Error()
		o.logger.Warn("lazy property evaluation failed",
			slog.String("property", name),
			slog.Any("error", err),
		)
		return nil, &EvaluationError{Property: name, Err: err}
	}

	o.logger.Debug("lazy property evaluated",
		slog.String("property", name),
		slog.Duration("duration", elapsed),
	)

	if o.generations[name] != generation {
		return value, nil
	}

	switch o.policy {
	case CacheMemoize:
		o.cache[name] = value
	case CacheComputeOnce:
		if err := prop.SetAny(o.record, value); err != nil {
			return nil, &EvaluationError{Property: name, Err: err}
		}
		delete(o.bindings, name)
		o.materialized[name] = true
	case CacheNone:
	}

	return value, nil
}

func normalize[T any](prop PropertyAccessor[T], value any) (any, error) {
	converted, err := utils.ConvertValue(value, prop.Type())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrPropertyTypeMismatch, prop.Name(), err.Error())
	}
	return converted.Interface(), nil
}

func flightKey(name string, generation uint64) string {
	return name + "\x00" + strconv.FormatUint(generation, 10)
}

var _ Accessor = (*Object[any])(nil)
var _ ObjectInfo = (*Object[any])(nil)
