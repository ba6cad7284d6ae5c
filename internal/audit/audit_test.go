package audit

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderKeepsEntriesInOrder(t *testing.T) {
	r := NewRecorder(5)
	for i := 0; i < 3; i++ {
		r.Record(Entry{Path: fmt.Sprintf("/p%d", i)})
	}

	got := r.Snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, "/p0", got[0].Path)
	assert.Equal(t, "/p2", got[2].Path)
}

func TestRecorderDropsOldestWhenFull(t *testing.T) {
	r := NewRecorder(3)
	for i := 0; i < 5; i++ {
		r.Record(Entry{Path: fmt.Sprintf("/p%d", i)})
	}

	got := r.Snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, "/p2", got[0].Path)
	assert.Equal(t, "/p3", got[1].Path)
	assert.Equal(t, "/p4", got[2].Path)
	assert.Equal(t, 3, r.Len())
}

func TestRecorderDefaultsCapacity(t *testing.T) {
	r := NewRecorder(0)
	assert.Equal(t, 100, r.Capacity())
}

func TestRecorderConcurrentRecords(t *testing.T) {
	r := NewRecorder(16)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record(Entry{Path: "/x"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, r.Len())
}
