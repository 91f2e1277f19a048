package endpoint

import (
	"sync"
	"testing"

	"github.com/dmitrijs2005/docdb/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var three = []string{"http://db1:8529", "http://db2:8529/", " http://db3:8529 "}

func TestRoundRobin_CyclesInOrder(t *testing.T) {
	rr, err := NewRoundRobin(three)
	require.NoError(t, err)

	var got []string
	for i := 0; i < 7; i++ {
		got = append(got, rr.Next())
	}
	assert.Equal(t, []string{
		"http://db1:8529", "http://db2:8529", "http://db3:8529",
		"http://db1:8529", "http://db2:8529", "http://db3:8529",
		"http://db1:8529",
	}, got)
}

func TestRoundRobin_ConcurrentCallersShareIndex(t *testing.T) {
	rr, err := NewRoundRobin(three)
	require.NoError(t, err)

	const workers, perWorker = 8, 300
	counts := make(map[string]int)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make(map[string]int)
			for i := 0; i < perWorker; i++ {
				local[rr.Next()]++
			}
			mu.Lock()
			for k, v := range local {
				counts[k] += v
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	// No lost updates: every endpoint got exactly a third of the calls.
	for _, e := range rr.Endpoints() {
		assert.Equal(t, workers*perWorker/3, counts[e], e)
	}
}

func TestRandom_OnlyKnownEndpoints(t *testing.T) {
	r, err := NewRandom(three)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		e := r.Next()
		require.Contains(t, r.Endpoints(), e)
		seen[e] = true
	}
	assert.Len(t, seen, 3)
}

func TestNew_Strategies(t *testing.T) {
	s, err := New("", three)
	require.NoError(t, err)
	assert.IsType(t, &RoundRobin{}, s)

	s, err = New(StrategyRandom, three)
	require.NoError(t, err)
	assert.IsType(t, &Random{}, s)

	_, err = New("sticky", three)
	require.Error(t, err)
}

func TestNew_EmptyEndpointsIsConfigError(t *testing.T) {
	_, err := NewRoundRobin(nil)
	require.ErrorIs(t, err, common.ErrNoEndpoints)

	_, err = NewRandom([]string{" ", ""})
	require.ErrorIs(t, err, common.ErrNoEndpoints)
}

func TestEndpoints_ReturnsCopy(t *testing.T) {
	rr, err := NewRoundRobin(three)
	require.NoError(t, err)

	eps := rr.Endpoints()
	eps[0] = "mutated"
	assert.Equal(t, "http://db1:8529", rr.Next())
}
