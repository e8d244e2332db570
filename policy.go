package lazyobj

import "fmt"

// CachePolicy decides what happens to the value a producer returns.
type CachePolicy uint8

const (
	// CacheMemoize keeps the produced value next to the record and serves
	// it until the property is written or re-bound.
	CacheMemoize CachePolicy = iota
	// CacheComputeOnce writes the produced value into the record and drops
	// the binding, later reads go straight to the record.
	CacheComputeOnce
	// CacheNone calls the producer on every read.
	CacheNone
)

func (p CachePolicy) String() string {
	switch p {
	case CacheMemoize:
		return "memoize"
	case CacheComputeOnce:
		return "compute-once"
	case CacheNone:
		return "none"
	default:
		return fmt.Sprintf("CachePolicy(%d)", uint8(p))
	}
}

func (p CachePolicy) valid() bool {
	return p <= CacheNone
}

func ParseCachePolicy(s string) (CachePolicy, error) {
	switch s {
	case "memoize", "":
		return CacheMemoize, nil
	case "compute-once":
		return CacheComputeOnce, nil
	case "none":
		return CacheNone, nil
	default:
		return CacheMemoize, fmt.Errorf("unknown cache policy: %s", s)
	}
}

type PropertyState string

const (
	StatePlain        PropertyState = "plain"
	StatePending      PropertyState = "pending"
	StateCached       PropertyState = "cached"
	StateMaterialized PropertyState = "materialized"
)
