package ledger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/llm-gateway/models"
)

func rec(id int) models.UsageRecord {
	return models.UsageRecord{TraceID: fmt.Sprintf("r%d", id)}
}

func TestRing_AppendBelowCapacity(t *testing.T) {
	r := newRing(5)
	r.append(rec(1))
	r.append(rec(2))

	assert.Equal(t, 2, r.len())
	out := r.newestFirst()
	require.Len(t, out, 2)
	assert.Equal(t, "r2", out[0].TraceID)
	assert.Equal(t, "r1", out[1].TraceID)
}

func TestRing_EvictsOldestAtCapacity(t *testing.T) {
	r := newRing(3)
	for i := 1; i <= 5; i++ {
		r.append(rec(i))
		assert.LessOrEqual(t, r.len(), 3)
	}

	out := r.newestFirst()
	require.Len(t, out, 3)
	assert.Equal(t, "r5", out[0].TraceID)
	assert.Equal(t, "r4", out[1].TraceID)
	assert.Equal(t, "r3", out[2].TraceID)
}

func TestRing_Empty(t *testing.T) {
	r := newRing(4)
	assert.Zero(t, r.len())
	assert.Empty(t, r.newestFirst())
}

func TestRing_WrapAroundKeepsOrder(t *testing.T) {
	r := newRing(4)
	for i := 1; i <= 11; i++ {
		r.append(rec(i))
	}

	out := r.newestFirst()
	require.Len(t, out, 4)
	for i, want := range []string{"r11", "r10", "r9", "r8"} {
		assert.Equal(t, want, out[i].TraceID)
	}
}
