// Package foreach implements the C4 FOREACH Context: a stack-scoped,
// task-local map of loop variables to typed values. Nested FOREACH clauses
// push a new frame; a lookup only ever consults the innermost frame,
// matching Cypher's rule that an inner FOREACH variable shadows an outer
// one of the same name rather than merging with it.
package foreach

import "github.com/relcypher/graphengine/pkg/graphvalue"

// Context is a stack of variable->value frames, one per nested FOREACH.
type Context struct {
	frames []frame
}

type frame struct {
	vars map[string]graphvalue.Value
}

// New creates an empty Context with no active frame.
func New() *Context {
	return &Context{}
}

// Push opens a new innermost frame for one FOREACH iteration.
func (c *Context) Push() {
	c.frames = append(c.frames, frame{vars: make(map[string]graphvalue.Value)})
}

// Pop closes the innermost frame.
func (c *Context) Pop() {
	if len(c.frames) == 0 {
		return
	}
	c.frames = c.frames[:len(c.frames)-1]
}

// Depth reports how many nested frames are active.
func (c *Context) Depth() int {
	return len(c.frames)
}

func (c *Context) top() (*frame, bool) {
	if len(c.frames) == 0 {
		return nil, false
	}
	return &c.frames[len(c.frames)-1], true
}

// Bind sets name to v in the innermost frame. It is a no-op outside any
// FOREACH (no frame to bind into).
func (c *Context) Bind(name string, v graphvalue.Value) {
	f, ok := c.top()
	if !ok {
		return
	}
	f.vars[name] = v
}

// PushInt opens no new frame; it binds name to an integer value in the
// innermost frame.
func (c *Context) PushInt(name string, n int64) {
	c.Bind(name, graphvalue.Int(n))
}

// PushString binds name to a string value in the innermost frame.
func (c *Context) PushString(name string, s string) {
	c.Bind(name, graphvalue.Str(s))
}

// Lookup resolves name against only the innermost frame: an outer
// FOREACH's bindings are invisible once a nested FOREACH has pushed its own
// frame, even if the outer frame also declares name.
func (c *Context) Lookup(name string) (graphvalue.Value, bool) {
	f, ok := c.top()
	if !ok {
		return graphvalue.Value{}, false
	}
	v, ok := f.vars[name]
	return v, ok
}
