package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	Tick uint64
	Name string
}

func TestQueue_New(t *testing.T) {
	q := New[testItem]()
	require.NotNil(t, q)
	assert.Zero(t, q.Len())
	assert.Nil(t, q.Drain(0))
}

func TestQueue_PushAndLen(t *testing.T) {
	q := New[testItem]()

	q.Push(testItem{Tick: 1, Name: "first"})
	assert.Equal(t, 1, q.Len())

	q.Push(testItem{Tick: 2}, testItem{Tick: 3})
	assert.Equal(t, 3, q.Len())

	q.Push()
	assert.Equal(t, 3, q.Len())
}

func TestQueue_DrainAll(t *testing.T) {
	q := New[int]()
	q.Push(1, 2, 3)

	assert.Equal(t, []int{1, 2, 3}, q.Drain(0))
	assert.Zero(t, q.Len())
}

func TestQueue_DrainBatch(t *testing.T) {
	q := New[int]()
	q.Push(1, 2, 3, 4, 5)

	assert.Equal(t, []int{1, 2}, q.Drain(2))
	assert.Equal(t, []int{3, 4}, q.Drain(2))
	assert.Equal(t, []int{5}, q.Drain(2))
	assert.Nil(t, q.Drain(2))
}

func TestQueue_DrainedSliceIsIndependent(t *testing.T) {
	q := New[int]()
	q.Push(1, 2, 3)

	first := q.Drain(1)
	q.Push(9)
	first[0] = 100

	assert.Equal(t, []int{2, 3, 9}, q.Drain(0))
}

func TestQueue_Requeue(t *testing.T) {
	q := New[int]()
	q.Push(1, 2, 3, 4)

	batch := q.Drain(2)
	q.Push(5)
	q.Requeue(batch)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, q.Drain(0))
}

func TestQueue_ReadySignal(t *testing.T) {
	q := New[int]()

	select {
	case <-q.Ready():
		t.Fatal("unexpected signal on empty queue")
	default:
	}

	q.Push(1)
	q.Push(2)

	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatal("expected ready signal")
	}
	assert.Equal(t, 2, q.Len())
}

func TestQueue_ConcurrentPushDrain(t *testing.T) {
	q := New[testItem]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q.Push(testItem{Tick: uint64(id)})
		}(i)
	}

	var mu sync.Mutex
	total := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := len(q.Drain(7))
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	total += len(q.Drain(0))
	assert.Equal(t, 100, total)
}
