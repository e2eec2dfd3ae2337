package schedule

import "sync/atomic"

// Provider publishes immutable Index snapshots. Rebuilds happen out-of-band
// and are swapped in atomically; in-flight searches keep the snapshot they
// started with.
type Provider struct {
	current atomic.Pointer[Index]
}

func NewProvider(idx *Index) *Provider {
	p := &Provider{}
	if idx != nil {
		p.current.Store(idx)
	}
	return p
}

// Current returns the live snapshot, or nil before the first publish.
func (p *Provider) Current() *Index {
	return p.current.Load()
}

// Publish atomically replaces the live snapshot.
func (p *Provider) Publish(idx *Index) {
	p.current.Store(idx)
}
