// Package endpoint chooses the coordinator URL used for the next outbound
// request. Selection is pure: no I/O, never blocks, never fails once the
// selector has been built.
package endpoint

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/docdb/internal/common"
)

// Strategy names accepted by New.
const (
	StrategyRoundRobin = "round-robin"
	StrategyRandom     = "random"
)

// Selector returns the base URL for the next request.
type Selector interface {
	Next() string
	// Endpoints returns the ordered endpoint list.
	Endpoints() []string
}

// New builds a selector for the named strategy. An empty strategy means
// round-robin.
func New(strategy string, endpoints []string) (Selector, error) {
	switch strategy {
	case "", StrategyRoundRobin:
		return NewRoundRobin(endpoints)
	case StrategyRandom:
		return NewRandom(endpoints)
	default:
		return nil, fmt.Errorf("unknown endpoint strategy %q", strategy)
	}
}

type list []string

func newList(endpoints []string) (list, error) {
	out := make(list, 0, len(endpoints))
	for _, e := range endpoints {
		e = strings.TrimRight(strings.TrimSpace(e), "/")
		if e != "" {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, common.ErrNoEndpoints
	}
	return out, nil
}

func (l list) Endpoints() []string {
	return append([]string(nil), l...)
}

// RoundRobin cycles through the endpoints in order. The shared index is
// advanced atomically, so concurrent callers never corrupt it; there is no
// fairness guarantee between them.
type RoundRobin struct {
	list
	next atomic.Uint64
}

func NewRoundRobin(endpoints []string) (*RoundRobin, error) {
	l, err := newList(endpoints)
	if err != nil {
		return nil, err
	}
	return &RoundRobin{list: l}, nil
}

func (r *RoundRobin) Next() string {
	n := r.next.Add(1) - 1
	return r.list[n%uint64(len(r.list))]
}

// Random picks an endpoint uniformly, independently on every call.
type Random struct {
	list
}

func NewRandom(endpoints []string) (*Random, error) {
	l, err := newList(endpoints)
	if err != nil {
		return nil, err
	}
	return &Random{list: l}, nil
}

func (r *Random) Next() string {
	return r.list[rand.IntN(len(r.list))]
}
