package ledger

import "github.com/upb/llm-gateway/models"

// ring is a fixed-capacity FIFO window over usage records. Appending at
// capacity evicts the oldest record first, so len never exceeds cap, even
// transiently. Not safe for concurrent use on its own; the owning ledger's
// mutex guards it.
type ring struct {
	buf   []models.UsageRecord
	start int
	size  int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]models.UsageRecord, capacity)}
}

func (r *ring) append(rec models.UsageRecord) {
	if r.size == len(r.buf) {
		// evict oldest
		r.buf[r.start] = rec
		r.start = (r.start + 1) % len(r.buf)
		return
	}
	r.buf[(r.start+r.size)%len(r.buf)] = rec
	r.size++
}

func (r *ring) len() int {
	return r.size
}

// newestFirst returns an independent copy of the retained records in
// reverse-chronological order.
func (r *ring) newestFirst() []models.UsageRecord {
	out := make([]models.UsageRecord, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+r.size-1-i)%len(r.buf)]
	}
	return out
}
