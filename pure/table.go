// Package pure memoizes pure functions.
//
// A memoized function must be referentially transparent: the table may
// return a result computed by an earlier call with equal arguments.
package pure

import "sync"

type tableKey[I1, I2 comparable] struct {
	i1 I1
	i2 I2
}

// Table is a bounded memo of two generations. When the current generation
// holds maxSize entries it becomes the previous one and the previous one is
// dropped, so at most 2*maxSize results are kept.
type Table[I1, I2 comparable, O any] struct {
	mu      sync.Mutex
	gens    [2]map[tableKey[I1, I2]]O
	head    int
	maxSize int
}

func NewTable[I1, I2 comparable, O any](maxSize int) *Table[I1, I2, O] {
	if maxSize <= 0 {
		panic("pure: maxSize should be greater than 0")
	}
	return &Table[I1, I2, O]{
		gens:    [2]map[tableKey[I1, I2]]O{{}, {}},
		maxSize: maxSize,
	}
}

func (t *Table[I1, I2, O]) Load(i1 I1, i2 I2) (O, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := tableKey[I1, I2]{i1, i2}
	if v, ok := t.gens[t.head][k]; ok {
		return v, true
	}
	v, ok := t.gens[1-t.head][k]
	return v, ok
}

func (t *Table[I1, I2, O]) Store(i1 I1, i2 I2, v O) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.gens[t.head]) >= t.maxSize {
		t.head = 1 - t.head
		t.gens[t.head] = map[tableKey[I1, I2]]O{}
	}
	t.gens[t.head][tableKey[I1, I2]{i1, i2}] = v
}

func (t *Table[I1, I2, O]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.gens[0]) + len(t.gens[1])
}

// TableizeI2O1 memoizes fn in a table of maxSize entries per generation.
// Concurrent first calls with the same arguments may each run fn.
func TableizeI2O1[I1, I2 comparable, O any](fn func(I1, I2) O, maxSize int) func(I1, I2) O {
	memo := NewTable[I1, I2, O](maxSize)
	return func(i1 I1, i2 I2) O {
		if v, ok := memo.Load(i1, i2); ok {
			return v
		}
		v := fn(i1, i2)
		memo.Store(i1, i2, v)
		return v
	}
}
