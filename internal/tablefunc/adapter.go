package tablefunc

import (
	"io"

	"github.com/harshithgowdakt/granuletvf/internal/column"
)

// The runner drives functions through these erased views so that the
// registry can hold functions with unrelated state types.

type entry interface {
	name() string
	parameters() Parameters
	bind(info *BindInfo) (boundState, error)
}

type boundState interface {
	initGlobal(info *InitInfo) (globalState, error)
	release() error
}

type globalState interface {
	initLocal(info *InitInfo) (localState, error)
	release() error
}

type localState interface {
	produce(out *column.DataChunk) error
	release() error
}

type adapter[B, G, L any] struct {
	fn Function[B, G, L]
}

func (a adapter[B, G, L]) name() string           { return a.fn.Name() }
func (a adapter[B, G, L]) parameters() Parameters { return a.fn.Parameters() }

func (a adapter[B, G, L]) bind(info *BindInfo) (boundState, error) {
	data, err := a.fn.Bind(info)
	if err != nil {
		return nil, err
	}
	return &boundAdapter[B, G, L]{fn: a.fn, data: data}, nil
}

type boundAdapter[B, G, L any] struct {
	fn   Function[B, G, L]
	data B
}

func (b *boundAdapter[B, G, L]) initGlobal(info *InitInfo) (globalState, error) {
	data, err := b.fn.InitGlobal(info, b.data)
	if err != nil {
		return nil, err
	}
	return &globalAdapter[B, G, L]{bound: b, data: data}, nil
}

func (b *boundAdapter[B, G, L]) release() error { return closeState(b.data) }

type globalAdapter[B, G, L any] struct {
	bound *boundAdapter[B, G, L]
	data  G
}

func (g *globalAdapter[B, G, L]) initLocal(info *InitInfo) (localState, error) {
	data, err := g.bound.fn.InitLocal(info, g.bound.data, g.data)
	if err != nil {
		return nil, err
	}
	return &localAdapter[B, G, L]{
		fn: g.bound.fn,
		call: Call[B, G, L]{
			Bind:   g.bound.data,
			Global: g.data,
			Local:  data,
			Worker: info.worker,
		},
	}, nil
}

func (g *globalAdapter[B, G, L]) release() error { return closeState(g.data) }

type localAdapter[B, G, L any] struct {
	fn   Function[B, G, L]
	call Call[B, G, L]
}

func (l *localAdapter[B, G, L]) produce(out *column.DataChunk) error {
	return l.fn.Produce(&l.call, out)
}

func (l *localAdapter[B, G, L]) release() error { return closeState(l.call.Local) }

func closeState(v any) error {
	if c, ok := v.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
