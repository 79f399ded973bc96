package script

import (
	"fmt"
	"strconv"

	"github.com/3-lines-studio/studio/internal/literal"
)

// HookState holds the hook slots of one component instance across renders.
// Nested components get child states keyed by name and call order.
type HookState struct {
	slots    []*hookSlot
	cursor   int
	children map[string]*HookState
	seen     map[string]int
	root     *HookState
	dirty    bool
	effects  []pendingEffect
}

type hookSlot struct {
	kind    string
	value   Value
	setter  *Function
	deps    *Array
	cleanup *Function
}

type pendingEffect struct {
	slot *hookSlot
	fn   *Function
	in   *Interp
}

func NewHookState() *HookState {
	h := &HookState{}
	h.root = h
	return h
}

// Dirty reports whether a state setter changed a value since the last
// MarkClean.
func (h *HookState) Dirty() bool { return h.root.dirty }

func (h *HookState) MarkClean() { h.root.dirty = false }

// PendingEffects is the number of effects queued by the last render.
func (h *HookState) PendingEffects() int { return len(h.root.effects) }

func (h *HookState) begin() {
	h.cursor = 0
	h.seen = nil
}

func (h *HookState) child(name string) *HookState {
	if h.seen == nil {
		h.seen = make(map[string]int)
	}
	key := name + "#" + strconv.Itoa(h.seen[name])
	h.seen[name]++
	if h.children == nil {
		h.children = make(map[string]*HookState)
	}
	c, ok := h.children[key]
	if !ok {
		c = &HookState{root: h.root}
		h.children[key] = c
	}
	return c
}

// next returns the slot for the current hook call. A slot of another kind
// means the call order changed and the slot starts over.
func (h *HookState) next(kind string) (*hookSlot, bool) {
	i := h.cursor
	h.cursor++
	if i < len(h.slots) && h.slots[i].kind == kind {
		return h.slots[i], false
	}
	s := &hookSlot{kind: kind}
	if i < len(h.slots) {
		h.slots[i] = s
		h.slots = h.slots[:i+1]
	} else {
		h.slots = append(h.slots, s)
	}
	return s, true
}

// RunEffects runs the effects queued by the last render in order, calling
// the previous cleanup of each first.
func (h *HookState) RunEffects() error {
	root := h.root
	queue := root.effects
	root.effects = nil
	for _, e := range queue {
		if e.slot.cleanup != nil {
			if _, err := e.in.Call(e.slot.cleanup); err != nil {
				return err
			}
			e.slot.cleanup = nil
		}
		v, err := e.in.Call(e.fn)
		if err != nil {
			return err
		}
		if fn, ok := v.(*Function); ok {
			e.slot.cleanup = fn
		}
	}
	return nil
}

func (in *Interp) activeHooks() (*HookState, error) {
	if in.hooks == nil {
		return nil, fmt.Errorf("hooks can only be called while a component renders")
	}
	return in.hooks, nil
}

func hookUseState(in *Interp, _ Value, args []Value) (Value, error) {
	h, err := in.activeHooks()
	if err != nil {
		return nil, err
	}
	slot, fresh := h.next("state")
	if fresh {
		initial := arg(args, 0)
		if fn, ok := initial.(*Function); ok {
			if initial, err = in.call(in.at, fn, Undefined, nil); err != nil {
				return nil, err
			}
		}
		slot.value = initial
		root := h.root
		slot.setter = native("setState", func(in *Interp, _ Value, args []Value) (Value, error) {
			next := arg(args, 0)
			if fn, ok := next.(*Function); ok {
				v, err := in.call(in.at, fn, Undefined, []Value{slot.value})
				if err != nil {
					return nil, err
				}
				next = v
			}
			if !sameValueZero(next, slot.value) {
				slot.value = next
				root.dirty = true
			}
			return Undefined, nil
		})
	}
	return NewArray(slot.value, slot.setter), nil
}

func hookUseReducer(in *Interp, _ Value, args []Value) (Value, error) {
	h, err := in.activeHooks()
	if err != nil {
		return nil, err
	}
	reducer, ok := arg(args, 0).(*Function)
	if !ok {
		return nil, fmt.Errorf("useReducer expects a reducer function")
	}
	slot, fresh := h.next("reducer")
	if fresh {
		slot.value = arg(args, 1)
		if initFn, ok := arg(args, 2).(*Function); ok {
			if slot.value, err = in.call(in.at, initFn, Undefined, []Value{slot.value}); err != nil {
				return nil, err
			}
		}
		root := h.root
		slot.setter = native("dispatch", func(in *Interp, _ Value, args []Value) (Value, error) {
			reduce, _ := slot.deps.Elems[0].(*Function)
			next, err := in.call(in.at, reduce, Undefined, []Value{slot.value, arg(args, 0)})
			if err != nil {
				return nil, err
			}
			if !sameValueZero(next, slot.value) {
				slot.value = next
				root.dirty = true
			}
			return Undefined, nil
		})
	}
	// the latest reducer is kept so dispatch sees current closures
	slot.deps = NewArray(reducer)
	return NewArray(slot.value, slot.setter), nil
}

func hookUseEffect(in *Interp, _ Value, args []Value) (Value, error) {
	h, err := in.activeHooks()
	if err != nil {
		return nil, err
	}
	fn, ok := arg(args, 0).(*Function)
	if !ok {
		return nil, fmt.Errorf("useEffect expects a function")
	}
	slot, fresh := h.next("effect")
	deps, hasDeps := arg(args, 1).(*Array)
	if fresh || !hasDeps || depsChanged(slot.deps, deps) {
		h.root.effects = append(h.root.effects, pendingEffect{slot: slot, fn: fn, in: in})
	}
	if hasDeps {
		slot.deps = NewArray(append([]Value(nil), deps.Elems...)...)
	}
	return Undefined, nil
}

func hookUseMemo(in *Interp, _ Value, args []Value) (Value, error) {
	h, err := in.activeHooks()
	if err != nil {
		return nil, err
	}
	fn, ok := arg(args, 0).(*Function)
	if !ok {
		return nil, fmt.Errorf("useMemo expects a function")
	}
	slot, fresh := h.next("memo")
	deps, hasDeps := arg(args, 1).(*Array)
	if fresh || !hasDeps || depsChanged(slot.deps, deps) {
		v, err := in.call(in.at, fn, Undefined, nil)
		if err != nil {
			return nil, err
		}
		slot.value = v
		if hasDeps {
			slot.deps = NewArray(append([]Value(nil), deps.Elems...)...)
		}
	}
	return slot.value, nil
}

func hookUseCallback(in *Interp, _ Value, args []Value) (Value, error) {
	h, err := in.activeHooks()
	if err != nil {
		return nil, err
	}
	slot, fresh := h.next("callback")
	deps, hasDeps := arg(args, 1).(*Array)
	if fresh || !hasDeps || depsChanged(slot.deps, deps) {
		slot.value = arg(args, 0)
		if hasDeps {
			slot.deps = NewArray(append([]Value(nil), deps.Elems...)...)
		}
	}
	return slot.value, nil
}

func hookUseRef(in *Interp, _ Value, args []Value) (Value, error) {
	h, err := in.activeHooks()
	if err != nil {
		return nil, err
	}
	slot, fresh := h.next("ref")
	if fresh {
		ref := literal.NewObject()
		ref.Set("current", arg(args, 0))
		slot.value = ref
	}
	return slot.value, nil
}

func depsChanged(prev, next *Array) bool {
	if prev == nil || len(prev.Elems) != len(next.Elems) {
		return true
	}
	for i := range prev.Elems {
		if !sameValueZero(prev.Elems[i], next.Elems[i]) {
			return true
		}
	}
	return false
}
