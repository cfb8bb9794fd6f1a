// Package idgen generates identifiers for flash operations.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator produces unique identifiers.
type Generator interface {
	Generate() string
}

// NewSequential returns a generator that emits "1", "2", ... It is
// deterministic and is what tests and the self test use.
func NewSequential() Generator {
	return &sequentialGenerator{}
}

// NewXID returns a generator backed by globally unique xids. Use it when ops
// from several runs end up in the same recording.
func NewXID() Generator {
	return xidGenerator{}
}

type sequentialGenerator struct {
	next uint64
}

func (g *sequentialGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.next, 1), 10)
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
