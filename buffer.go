package engraver

// bufferPool is the bounded, blocking queue pair from spec §4.3: empty
// buffers flow from `empty` to the hasher, full ones from `full` to the
// writer, and back. Capacity is 1 or 2 depending on Task.AsyncIO.
type bufferPool struct {
	empty chan *Buffer
	full  chan *Buffer
}

// newBufferPool allocates numBuffer buffers of bufferSize bytes each and
// seeds the empty queue with all of them.
func newBufferPool(numBuffer int, bufferSize uint64) *bufferPool {
	p := &bufferPool{
		empty: make(chan *Buffer, numBuffer),
		full:  make(chan *Buffer, numBuffer),
	}
	for i := 0; i < numBuffer; i++ {
		p.empty <- &Buffer{Data: make([]byte, bufferSize)}
	}
	return p
}

// acquireEmpty blocks until a buffer is available for the hasher to
// fill.
func (p *bufferPool) acquireEmpty() *Buffer {
	return <-p.empty
}

// publishFull hands a filled, tagged buffer to the writer.
func (p *bufferPool) publishFull(b *Buffer) {
	p.full <- b
}

// closeFull signals the writer that no further chunks will arrive once
// it has drained what's already queued. Called exactly once, by the
// scheduler, after the last chunk is dispatched.
func (p *bufferPool) closeFull() {
	close(p.full)
}

// takeFull blocks until a written-to buffer is available, returning
// false once the pool is closed and drained.
func (p *bufferPool) takeFull() (*Buffer, bool) {
	b, ok := <-p.full
	return b, ok
}

// release returns a drained buffer to the empty queue for reuse.
func (p *bufferPool) release(b *Buffer) {
	p.empty <- b
}
