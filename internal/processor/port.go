package processor

import "sync/atomic"

// PortState represents the state of a connected port pair.
type PortState uint32

const (
	PortIdle     PortState = iota // no data, no demand
	PortNeedData                  // downstream wants data
	PortHasData                   // upstream produced data
	PortFinished                  // no more data will ever come
)

// portData is shared between a connected OutputPort and InputPort.
// Transitions use CAS on state so a Finished set by either side is never
// overwritten by a concurrent Push or Pull.
type portData struct {
	state  atomic.Uint32
	chunk  atomic.Pointer[Chunk]
	pushed atomic.Int64
	rows   atomic.Int64
}

// OutputPort is the output side of a processor.
type OutputPort struct {
	data *portData
}

// NewOutputPort creates a disconnected output port.
func NewOutputPort() *OutputPort {
	return &OutputPort{data: &portData{}}
}

// Push places a chunk into the port. Returns false if not in NeedData state.
func (p *OutputPort) Push(chunk *Chunk) bool {
	if PortState(p.data.state.Load()) != PortNeedData {
		return false
	}
	p.data.chunk.Store(chunk)
	if !p.data.state.CompareAndSwap(uint32(PortNeedData), uint32(PortHasData)) {
		return false
	}
	p.data.pushed.Add(1)
	p.data.rows.Add(int64(chunk.NumRows()))
	return true
}

// SetFinished signals that this output will never produce more data.
func (p *OutputPort) SetFinished() {
	p.data.state.Store(uint32(PortFinished))
}

// CanPush returns true if the downstream is ready for data.
func (p *OutputPort) CanPush() bool {
	return PortState(p.data.state.Load()) == PortNeedData
}

// IsFinished returns true if the port is in the Finished state.
func (p *OutputPort) IsFinished() bool {
	return PortState(p.data.state.Load()) == PortFinished
}

// Stats returns how many chunks and rows went through the port.
func (p *OutputPort) Stats() (chunks, rows int64) {
	return p.data.pushed.Load(), p.data.rows.Load()
}

// InputPort is the input side of a processor.
type InputPort struct {
	data *portData
}

// NewInputPort creates a disconnected input port.
func NewInputPort() *InputPort {
	return &InputPort{data: &portData{}}
}

// Pull extracts the chunk from the port. Returns nil if not in HasData state.
func (p *InputPort) Pull() *Chunk {
	if PortState(p.data.state.Load()) != PortHasData {
		return nil
	}
	chunk := p.data.chunk.Swap(nil)
	if !p.data.state.CompareAndSwap(uint32(PortHasData), uint32(PortNeedData)) {
		return nil
	}
	return chunk
}

// SetNeeded signals that this input wants data.
func (p *InputPort) SetNeeded() {
	p.data.state.CompareAndSwap(uint32(PortIdle), uint32(PortNeedData))
}

// HasData returns true if a chunk is available for pulling.
func (p *InputPort) HasData() bool {
	return PortState(p.data.state.Load()) == PortHasData
}

// IsFinished returns true if the upstream has signaled no more data.
func (p *InputPort) IsFinished() bool {
	return PortState(p.data.state.Load()) == PortFinished
}

// IsNeeded returns true if this port is in NeedData state.
func (p *InputPort) IsNeeded() bool {
	return PortState(p.data.state.Load()) == PortNeedData
}

// SetFinished marks this input as finished. Downstream processors use it to
// stop upstream early, e.g. once a LIMIT is satisfied. A source seeing its
// output finished stops calling the table function.
func (p *InputPort) SetFinished() {
	p.data.state.Store(uint32(PortFinished))
	p.data.chunk.Store(nil)
}

// Connect links an OutputPort to an InputPort by sharing the same portData.
// Initial state is NeedData to signal immediate demand.
func Connect(output *OutputPort, input *InputPort) {
	shared := &portData{}
	shared.state.Store(uint32(PortNeedData))
	output.data = shared
	input.data = shared
}
