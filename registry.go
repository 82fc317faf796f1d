package forge

import (
	"reflect"
	"sync"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/table"
)

// maxComponentKinds bounds how many distinct component kinds can ever be
// registered: each kind claims one bit of a fixed-width mask.Mask, used
// throughout archetype signatures and query filters (§3/§7). 128 is the
// conservative bound for a two-word mask.Mask, matching the headroom the
// teacher's mask.Mask256 variant exists to extend beyond.
const maxComponentKinds = 128

// StorageClass selects which backend holds a component kind's payload.
type StorageClass int

const (
	// StorageTable stores the component as a dense column in its
	// archetype's table, for components that rarely churn.
	StorageTable StorageClass = iota
	// StorageSparseSet stores the component in a per-kind sparse set
	// keyed by entity index, for components with churny lifetimes.
	StorageSparseSet
)

// LifecycleEvent identifies one of the four (plus despawn) component
// lifecycle transitions hooks and observers can watch.
type LifecycleEvent int

const (
	OnAdd LifecycleEvent = iota
	OnInsert
	OnReplace
	OnRemove
	OnDespawn
)

func (e LifecycleEvent) String() string {
	switch e {
	case OnAdd:
		return "OnAdd"
	case OnInsert:
		return "OnInsert"
	case OnReplace:
		return "OnReplace"
	case OnRemove:
		return "OnRemove"
	case OnDespawn:
		return "OnDespawn"
	default:
		return "Unknown"
	}
}

// HookFunc is a component-lifecycle hook. It always runs, registered at
// most once per (component kind, lifecycle event) pair.
type HookFunc func(dw *DeferredWorld, e Entity, kind *ComponentKind)

type hookSet [5]HookFunc

func (h *hookSet) set(evt LifecycleEvent, fn HookFunc) { h[evt] = fn }
func (h hookSet) get(evt LifecycleEvent) HookFunc      { return h[evt] }

// ComponentKind is the immutable metadata recorded the first time a
// component type is registered: its dense id, its storage class, and
// its optional lifecycle hooks.
type ComponentKind struct {
	ID      uint32
	Name    string
	Class   StorageClass
	Type    reflect.Type
	element    table.ElementType
	hooks      hookSet
	handle     any
	sparseCtor func() sparseSet
}

// Hook returns the registered hook function for the given lifecycle
// event, or nil if none was registered.
func (k *ComponentKind) Hook(evt LifecycleEvent) HookFunc {
	return k.hooks.get(evt)
}

// ComponentOption customizes a component kind at registration time.
// Options are only applied the first time a type is registered —
// metadata is immutable thereafter, matching §4.1.
type ComponentOption func(*ComponentKind)

// WithHook attaches a lifecycle hook to a component kind.
func WithHook(evt LifecycleEvent, fn HookFunc) ComponentOption {
	return func(k *ComponentKind) { k.hooks.set(evt, fn) }
}

type componentRegistry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*ComponentKind
	byID   []*ComponentKind
	nextID uint32
}

var globalComponents = &componentRegistry{
	byType: make(map[reflect.Type]*ComponentKind),
}

// AnyComponent is the type-erased handle to a registered component kind,
// satisfied by every *Component[T]. Bundles, queries and commands accept
// it so callers don't need to repeat type parameters.
type AnyComponent interface {
	Kind() *ComponentKind
	table.ElementType
}

// Component is a registered, typed component handle. It embeds the
// table.ElementType identifier used to register against a world's
// schema, and (for Table-class components) the accessor used to read
// the value from a cursor or entity ref — the same composition the
// teacher's AccessibleComponent[T] uses.
type Component[T any] struct {
	table.ElementType
	kind     *ComponentKind
	accessor table.Accessor[T]
}

// Kind returns the component's registered metadata.
func (c *Component[T]) Kind() *ComponentKind { return c.kind }

// getTable reads the component's value for the row of a Table-class
// component's own column. Callers must only call this for Table-class
// kinds; sparse-set kinds never have a column.
func (c *Component[T]) getTable(row int, tbl table.Table) *T {
	return c.accessor.Get(row, tbl)
}

// hasTable reports whether tbl carries this component's column.
func (c *Component[T]) hasTable(tbl table.Table) bool {
	return c.accessor.Check(tbl)
}

// RegisterComponent registers T as a component kind with the given
// storage class, or returns the existing kind if T was already
// registered. Registration is idempotent; options passed on a second
// call for the same type are ignored.
func RegisterComponent[T any](class StorageClass, opts ...ComponentOption) *Component[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()

	globalComponents.mu.Lock()
	defer globalComponents.mu.Unlock()

	if kind, ok := globalComponents.byType[t]; ok {
		return kind.handle.(*Component[T])
	}

	if globalComponents.nextID >= maxComponentKinds {
		panic(bark.AddTrace(AddressSpaceExhaustedError{
			Space: "component kind id",
			Limit: maxComponentKinds,
		}))
	}

	kind := &ComponentKind{
		ID:    globalComponents.nextID,
		Name:  t.String(),
		Class: class,
		Type:  t,
	}
	for _, opt := range opts {
		opt(kind)
	}

	comp := &Component[T]{kind: kind}
	if class == StorageTable {
		iden := table.FactoryNewElementType[T]()
		comp.ElementType = iden
		comp.accessor = table.FactoryNewAccessor[T](iden)
		kind.element = iden
	} else {
		kind.sparseCtor = func() sparseSet { return newTypedSparseSet[T]() }
	}
	kind.handle = comp

	globalComponents.nextID++
	globalComponents.byType[t] = kind
	globalComponents.byID = append(globalComponents.byID, kind)

	return comp
}

// ComponentKindOf returns the metadata registered for T, or
// UnknownComponentError if T was never registered.
func ComponentKindOf[T any]() (*ComponentKind, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	globalComponents.mu.RLock()
	defer globalComponents.mu.RUnlock()
	kind, ok := globalComponents.byType[t]
	if !ok {
		return nil, UnknownComponentError{Type: t}
	}
	return kind, nil
}

// componentHandleOf returns the registered *Component[T] handle, for
// internal use by queries that need its table accessor.
func componentHandleOf[T any]() (*Component[T], error) {
	kind, err := ComponentKindOf[T]()
	if err != nil {
		return nil, err
	}
	return kind.handle.(*Component[T]), nil
}

// componentKindByID returns metadata by dense id, for internal use by
// the archetype graph and query planner.
func componentKindByID(id uint32) *ComponentKind {
	globalComponents.mu.RLock()
	defer globalComponents.mu.RUnlock()
	if int(id) >= len(globalComponents.byID) {
		return nil
	}
	return globalComponents.byID[id]
}
