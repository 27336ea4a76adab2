package tablefunc

import (
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/granuletvf/internal/memory"
)

// Registry maps function names to implementations. Names are case-insensitive.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]entry)}
}

// Register adds fn to r. It fails if the name is empty or already taken.
func Register[B, G, L any](r *Registry, fn Function[B, G, L]) error {
	name := strings.ToLower(fn.Name())
	if name == "" {
		return errors.New("table function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.funcs[name]; ok {
		return errors.Newf("table function %q already registered", name)
	}
	r.funcs[name] = adapter[B, G, L]{fn: fn}
	return nil
}

// Lookup returns the signature of the named function.
func (r *Registry) Lookup(name string) (Signature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.funcs[strings.ToLower(name)]
	if !ok {
		return Signature{}, false
	}
	return Signature{Name: e.name(), Parameters: e.parameters()}, true
}

// Functions returns every registered signature ordered by name.
func (r *Registry) Functions() []Signature {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Signature, 0, len(r.funcs))
	for _, e := range r.funcs {
		out = append(out, Signature{Name: e.name(), Parameters: e.parameters()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Bind validates args against the function's parameters and runs its Bind
// step. Query-scoped allocations are charged to mon; a nil mon means an
// unlimited monitor. The returned Bound owns the bind state and must be
// closed by the caller.
func (r *Registry) Bind(name string, args Args, mon *memory.Monitor) (*Bound, error) {
	r.mu.RLock()
	e, ok := r.funcs[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Mark(
			errors.WithHint(InvalidArgumentf("unknown table function %q", name),
				"SHOW FUNCTIONS lists the available table functions"),
			ErrBindFailed)
	}
	if err := e.parameters().validate(e.name(), args); err != nil {
		return nil, errors.Mark(
			errors.WithHintf(err, "signature: %s", Signature{Name: e.name(), Parameters: e.parameters()}),
			ErrBindFailed)
	}
	if mon == nil {
		mon = memory.NewMonitor(e.name(), 0)
	}
	info := &BindInfo{function: e.name(), args: args, monitor: mon}
	state, err := e.bind(info)
	if err != nil {
		return nil, errors.Mark(err, ErrBindFailed)
	}
	if len(info.columns) == 0 {
		rerr := state.release()
		return nil, errors.Mark(
			errors.CombineErrors(
				errors.AssertionFailedf("%s: bind declared no result columns", e.name()), rerr),
			ErrBindFailed)
	}
	return &Bound{name: e.name(), columns: info.columns, state: state}, nil
}
