package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReporter_EmitAndSubscribe(t *testing.T) {
	r := NewReporter(4)
	r.Emit(Event{Kind: KindAdd, Seq: 1})
	r.Emit(Event{Kind: KindMerge, Seq: 2})
	r.Close()

	var seqs []uint64
	for e := range r.Subscribe() {
		seqs = append(seqs, e.Seq)
	}
	assert.Equal(t, []uint64{1, 2}, seqs)
}

func TestReporter_DropsWhenFull(t *testing.T) {
	r := NewReporter(1)
	r.Emit(Event{Seq: 1})
	r.Emit(Event{Seq: 2}) // must not block

	e := <-r.Subscribe()
	assert.Equal(t, uint64(1), e.Seq)
	select {
	case <-r.Subscribe():
		t.Fatal("second event should have been dropped")
	default:
	}
}

func TestCounter_Concurrent(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				c.Emit(Event{Kind: KindAdd})
				c.Emit(Event{Kind: KindConflict})
			}
		}()
	}
	wg.Wait()

	s := c.Summary()
	assert.Equal(t, int64(800), s.Adds)
	assert.Equal(t, int64(800), s.Conflicts)
	assert.Zero(t, s.Merges)
}

func TestMulti_ForwardsToAll(t *testing.T) {
	var a, b Counter
	Multi(&a, &b, Discard{}).Emit(Event{Kind: KindDelete})

	assert.Equal(t, int64(1), a.Summary().Deletes)
	assert.Equal(t, int64(1), b.Summary().Deletes)
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{Event{Kind: KindAdd, Seq: 3, Artifact: "x", Rev: "left"}, "  + #3 x (left)"},
		{Event{Kind: KindDelete, Seq: 4, Artifact: "y", Rev: "right"}, "  - #4 y (right)"},
		{Event{Kind: KindConflict, Seq: 5, Artifact: "z"}, "  ! #5 conflict at z"},
		{Event{Kind: KindMerge, Seq: 6, Artifact: "r"}, "  = #6 r"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatEvent(tc.event))
	}
}
