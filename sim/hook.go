package sim

// HookPos names a site in the engine or a component where hooks may be
// invoked. Statistics sinks (message log, traffic log) are plugged in as
// Hooks at these positions instead of being hard-wired into the core, per
// spec §6's write-only boundary.
type HookPos struct {
	Name string
}

// HookPosBeforeEvent fires immediately before an event is dispatched.
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent fires immediately after an event has been dispatched.
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

// HookCtx carries the information available at the point a hook fires.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable is anything that accepts Hooks.
type Hookable interface {
	AcceptHook(h Hook)
	NumHooks() int
}

// A Hook is invoked by a Hookable at one or more of its HookPos sites.
type Hook interface {
	Func(ctx HookCtx)
}

// HookableBase implements Hookable; embed it to gain hook support.
type HookableBase struct {
	hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// NumHooks reports how many hooks are registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// InvokeHook calls every registered hook with ctx, in registration order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
