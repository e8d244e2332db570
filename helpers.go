package lazyobj

import (
	"sync/atomic"

	"github.com/google/uuid"
)

type UniqueIDGenerator interface {
	Next() (uuid.UUID, error)
}

type UUIDGenerator struct {
}

func (n *UUIDGenerator) Next() (uuid.UUID, error) {
	return uuid.New(), nil
}

// SequenceGenerator hands out deterministic ids, handy in tests and
// examples where stable object ids are wanted.
type SequenceGenerator struct {
	next atomic.Uint64
}

func (s *SequenceGenerator) Next() (uuid.UUID, error) {
	next := s.next.Add(1)

	var id uuid.UUID
	for i := 0; i < 8; i++ {
		id[15-i] = byte(next >> (8 * i))
	}
	return id, nil
}
