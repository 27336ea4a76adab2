// Package tablefunc defines how table-valued functions plug into the query
// engine and drives their lifecycle.
//
// A function is bound once per query, initialized once per scan, then once
// more per worker, and finally asked to produce output chunks until it
// reports an empty chunk:
//
//	Bind → InitGlobal → InitLocal (per worker) → Produce* → Close
//
// The three state blocks (bind, global, local) are type parameters of
// Function, so each call receives its own state already typed. A state
// block that implements io.Closer is closed exactly once when the scan is
// torn down, whatever the outcome of the scan.
package tablefunc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// Function is a table-valued function with bind state B, per-scan global
// state G and per-worker local state L.
type Function[B, G, L any] interface {
	// Name is the identifier used in FROM clauses.
	Name() string
	// Parameters declares the accepted arguments. The runner validates the
	// call site against it before Bind.
	Parameters() Parameters
	// Bind reads the arguments, declares result columns and builds the
	// query-scoped state. On error it must not hold any resource.
	Bind(info *BindInfo) (B, error)
	// InitGlobal builds the state shared by every worker of one scan.
	InitGlobal(info *InitInfo, bind B) (G, error)
	// InitLocal builds the state private to one worker.
	InitLocal(info *InitInfo, bind B, global G) (L, error)
	// Produce fills out with the next batch and sets its length. A length of
	// zero means the worker is exhausted. Calls for one worker never overlap.
	Produce(call *Call[B, G, L], out *column.DataChunk) error
}

// Call carries the typed state blocks for one production call.
type Call[B, G, L any] struct {
	Bind   B
	Global G
	Local  L
	Worker int
}

// Parameters declares positional and named arguments.
type Parameters struct {
	Positional []types.DataType
	Named      map[string]types.DataType
}

// Arg is one argument value at a call site.
type Arg struct {
	Type  types.DataType
	Value types.Value
}

// Args holds the arguments of one call site.
type Args struct {
	Positional []Arg
	Named      map[string]Arg
}

// Signature describes a registered function.
type Signature struct {
	Name       string
	Parameters Parameters
}

func (s Signature) String() string {
	parts := make([]string, 0, len(s.Parameters.Positional)+len(s.Parameters.Named))
	for _, dt := range s.Parameters.Positional {
		parts = append(parts, dt.Name())
	}
	names := make([]string, 0, len(s.Parameters.Named))
	for name := range s.Parameters.Named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s => %s", name, s.Parameters.Named[name].Name()))
	}
	return s.Name + "(" + strings.Join(parts, ", ") + ")"
}

func (p Parameters) validate(fn string, args Args) error {
	if len(args.Positional) != len(p.Positional) {
		return InvalidArgumentf("%s: expected %d positional argument(s), got %d",
			fn, len(p.Positional), len(args.Positional))
	}
	for i, arg := range args.Positional {
		if arg.Type != p.Positional[i] {
			return InvalidArgumentf("%s: argument %d must be %s, got %s",
				fn, i+1, p.Positional[i].Name(), arg.Type.Name())
		}
	}
	for name, arg := range args.Named {
		want, ok := p.Named[name]
		if !ok {
			return InvalidArgumentf("%s: unknown named argument %q", fn, name)
		}
		if arg.Type != want {
			return InvalidArgumentf("%s: argument %q must be %s, got %s",
				fn, name, want.Name(), arg.Type.Name())
		}
	}
	return nil
}
