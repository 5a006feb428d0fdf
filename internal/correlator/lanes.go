package correlator

import (
	"context"
	"hash/fnv"
	"sync"
)

// task is one unit of correlator work executed on a lane.
type task func(context.Context)

// lanePool serialises work per event id: every id hashes to exactly one
// lane, and each lane is drained by a single goroutine. A detection event
// and an audio result for the same id therefore never run concurrently,
// while unrelated ids spread across lanes.
type lanePool struct {
	// mu guards closed against concurrent submits.
	mu sync.Mutex
	// closed blocks further submissions once shutdown has begun.
	closed bool
	// lanes are the bounded per-lane task queues.
	lanes []chan task
	// wg tracks the lane goroutines for a clean drain on shutdown.
	wg sync.WaitGroup
}

// newLanePool creates count lanes, each with the given queue depth.
func newLanePool(count, depth int) *lanePool {
	if count < 1 {
		count = 1
	}

	if depth < 1 {
		depth = 1
	}

	lanes := make([]chan task, count)
	for i := range lanes {
		lanes[i] = make(chan task, depth)
	}

	return &lanePool{lanes: lanes}
}

// start launches one goroutine per lane. Each goroutine runs until its lane
// is closed, then drains whatever was already queued.
func (p *lanePool) start(ctx context.Context) {
	for _, lane := range p.lanes {
		lane := lane

		p.wg.Add(1)

		go func() {
			defer p.wg.Done()

			for t := range lane {
				t(ctx)
			}
		}()
	}
}

// submit enqueues the task on the lane its key hashes to.
// It reports false when the lane is full or the pool is shutting down;
// the caller logs and drops the message.
func (p *lanePool) submit(key string, t task) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}

	select {
	case p.lanes[p.laneFor(key)] <- t:
		return true
	default:
		return false
	}
}

// close stops accepting tasks and blocks until queued work has drained.
func (p *lanePool) close() {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()

		return
	}

	p.closed = true

	for _, lane := range p.lanes {
		close(lane)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// laneFor maps a key to a lane index via FNV-1a.
func (p *lanePool) laneFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))

	return int(h.Sum32() % uint32(len(p.lanes)))
}
