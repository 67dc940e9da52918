package transport

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryTransport is the shared state behind a linked MemoryProducer /
// MemoryConsumer pair: variable/attribute definitions plus a bounded
// channel of step frames standing in for the wire.
type MemoryTransport struct {
	mu    sync.RWMutex
	vars  map[string]VariableInfo
	attrs map[string]json.RawMessage

	frames    chan stepFrame
	ready     chan struct{}
	readyOnce sync.Once
	closeOnce sync.Once
}

type stepFrame struct {
	step int
	data map[string][]float64
}

// NewMemoryPair creates a linked Producer/Consumer sharing a channel of
// capacity bufSize. The consumer's Open blocks until the producer has
// called BeginStep at least once (definitions are frozen by then) or has
// called Close.
func NewMemoryPair(bufSize int) (*MemoryProducer, *MemoryConsumer) {
	t := &MemoryTransport{
		vars:   make(map[string]VariableInfo),
		attrs:  make(map[string]json.RawMessage),
		frames: make(chan stepFrame, bufSize),
		ready:  make(chan struct{}),
	}
	return &MemoryProducer{t: t}, &MemoryConsumer{t: t}
}

// MemoryProducer is the generator side of a MemoryTransport.
type MemoryProducer struct {
	t       *MemoryTransport
	step    int
	pending stepFrame
}

func (p *MemoryProducer) Open() error { return nil }

func (p *MemoryProducer) DefineVariable(name string, shape []int, dtype string) error {
	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	p.t.vars[name] = VariableInfo{Shape: shape, Dtype: dtype}
	return nil
}

func (p *MemoryProducer) DefineAttribute(name string, value json.RawMessage) error {
	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	p.t.attrs[name] = value
	return nil
}

func (p *MemoryProducer) BeginStep() error {
	p.t.readyOnce.Do(func() { close(p.t.ready) })
	p.pending = stepFrame{step: p.step, data: make(map[string][]float64)}
	return nil
}

func (p *MemoryProducer) Put(name string, data []float64) error {
	cp := make([]float64, len(data))
	copy(cp, data)
	p.pending.data[name] = cp
	return nil
}

func (p *MemoryProducer) EndStep() error {
	p.t.frames <- p.pending
	p.step++
	return nil
}

// Close signals end of stream to the consumer. Safe to call even if no
// step was ever begun.
func (p *MemoryProducer) Close() error {
	p.t.readyOnce.Do(func() { close(p.t.ready) })
	p.t.closeOnce.Do(func() { close(p.t.frames) })
	return nil
}

// MemoryConsumer is the receiver side of a MemoryTransport.
type MemoryConsumer struct {
	t       *MemoryTransport
	current stepFrame
}

func (c *MemoryConsumer) Open() error {
	<-c.t.ready
	return nil
}

// BeginStep blocks for the next frame; ok is false once the producer has
// closed the stream and no frame remains buffered.
func (c *MemoryConsumer) BeginStep() (bool, error) {
	frame, ok := <-c.t.frames
	if !ok {
		return false, nil
	}
	c.current = frame
	return true, nil
}

func (c *MemoryConsumer) InquireVariable(name string) (VariableInfo, error) {
	c.t.mu.RLock()
	defer c.t.mu.RUnlock()
	v, ok := c.t.vars[name]
	if !ok {
		return VariableInfo{}, fmt.Errorf("unknown variable %q", name)
	}
	return v, nil
}

func (c *MemoryConsumer) Get(name string, buf []float64) error {
	data, ok := c.current.data[name]
	if !ok {
		return fmt.Errorf("variable %q not present in current step", name)
	}
	if len(buf) != len(data) {
		return fmt.Errorf("buffer length %d does not match frame length %d for %q", len(buf), len(data), name)
	}
	copy(buf, data)
	return nil
}

func (c *MemoryConsumer) InquireAttribute(name string) (json.RawMessage, error) {
	c.t.mu.RLock()
	defer c.t.mu.RUnlock()
	v, ok := c.t.attrs[name]
	if !ok {
		return nil, fmt.Errorf("unknown attribute %q", name)
	}
	return v, nil
}

func (c *MemoryConsumer) CurrentStep() (int, error) {
	return c.current.step, nil
}

func (c *MemoryConsumer) EndStep() error { return nil }
