package host

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/val"
)

// Func is a native contract function: it receives the invocation context
// and the already-encoded arguments, and returns a single value.
type Func func(*Context, []val.Val) (val.Val, error)

// Host is an in-memory implementation of the host side of the value
// boundary: the object store behind val.Env, contract registration and
// invocation dispatch, per-contract storage, and an event log.
//
// Object handles are scoped. Every invocation runs in its own scope;
// ending a scope invalidates every handle minted during it, so no later
// invocation can misinterpret a stale handle as valid. The root scope
// (outside any invocation) never ends and is what tests allocate in.
//
// A Host is not safe for concurrent use; one invocation runs at a time.
type Host struct {
	objects   []hostObject
	scopes    []uint32 // active scope stack, scopes[0] is the root
	nextScope uint32

	contracts map[val.Address]*contractEntry
	storage   map[val.Address]*Storage
	events    []Event

	logger *zap.Logger
}

type hostObject struct {
	kind  val.ObjKind
	elems []val.Val
	scope uint32
}

type contractEntry struct {
	fns map[string]Func
}

// New creates an empty host with only the root scope active.
func New() *Host {
	return &Host{
		scopes:    []uint32{0},
		nextScope: 1,
		contracts: make(map[val.Address]*contractEntry),
		storage:   make(map[val.Address]*Storage),
		logger:    Logger(),
	}
}

// NewObject implements val.Env. Elements start as void.
func (h *Host) NewObject(kind val.ObjKind, count uint32) (val.Val, error) {
	if kind.Tag() < val.TagU64Obj || !kind.Tag().Valid() {
		return val.Void(), errors.InvalidData(errors.PhaseHost, nil, "unknown object kind")
	}
	elems := make([]val.Val, count)
	for i := range elems {
		elems[i] = val.Void()
	}
	handle := uint64(len(h.objects))
	h.objects = append(h.objects, hostObject{
		kind:  kind,
		elems: elems,
		scope: h.currentScope(),
	})
	return objectVal(kind, handle), nil
}

// ObjElem implements val.Env.
func (h *Host) ObjElem(obj val.Val, i uint32) (val.Val, error) {
	o, err := h.resolve(obj)
	if err != nil {
		return val.Void(), err
	}
	if int(i) >= len(o.elems) {
		return val.Void(), errors.OutOfBounds(errors.PhaseHost, int(i), len(o.elems))
	}
	return o.elems[i], nil
}

// SetObjElem implements val.Env.
func (h *Host) SetObjElem(obj val.Val, i uint32, elem val.Val) error {
	o, err := h.resolve(obj)
	if err != nil {
		return err
	}
	if int(i) >= len(o.elems) {
		return errors.OutOfBounds(errors.PhaseHost, int(i), len(o.elems))
	}
	o.elems[i] = elem
	return nil
}

// ObjLen implements val.Env.
func (h *Host) ObjLen(obj val.Val) (uint32, error) {
	o, err := h.resolve(obj)
	if err != nil {
		return 0, err
	}
	return uint32(len(o.elems)), nil
}

// CompareObjs implements val.Env: element-wise comparison of two objects
// of the same category, consistent with val.Compare.
func (h *Host) CompareObjs(a, b val.Val) (int, error) {
	ao, err := h.resolve(a)
	if err != nil {
		return 0, err
	}
	bo, err := h.resolve(b)
	if err != nil {
		return 0, err
	}
	return val.CompareElems(h, ao.elems, bo.elems)
}

// Invoke implements val.Env: it resolves the target contract and function
// name, runs the handler in a fresh scope, and re-homes the result into
// the caller's scope before the callee's handles are invalidated.
func (h *Host) Invoke(contract, fn val.Val, args []val.Val) (val.Val, error) {
	addr, err := val.AddressVal(h, contract)
	if err != nil {
		return val.Void(), err
	}
	name, err := val.SymbolString(h, fn)
	if err != nil {
		return val.Void(), err
	}

	entry, ok := h.contracts[addr]
	if !ok {
		return val.Void(), errors.NotFound(errors.PhaseInvoke, "contract", addrShort(addr))
	}
	handler, ok := entry.fns[name]
	if !ok {
		return val.Void(), errors.NotFound(errors.PhaseInvoke, "function", name)
	}

	h.logger.Debug("invoke",
		zap.String("contract", addrShort(addr)),
		zap.String("function", name),
		zap.Int("args", len(args)))

	scope := h.beginScope()
	ctx := &Context{host: h, contract: addr}
	ret, err := handler(ctx, args)
	if err != nil {
		h.endScope(scope)
		return val.Void(), err
	}

	// The result may reference handles from the callee scope. Freeze it
	// before the scope ends and rebuild it in the caller's scope.
	frozen, err := freeze(h, ret)
	h.endScope(scope)
	if err != nil {
		return val.Void(), err
	}
	return thaw(h, frozen)
}

// Register installs a native contract at the given address.
func (h *Host) Register(addr val.Address, fns map[string]Func) error {
	if _, exists := h.contracts[addr]; exists {
		return errors.New(errors.PhaseHost, errors.KindInvalidData).
			Detail("contract already registered at %s", addrShort(addr)).
			Build()
	}
	h.contracts[addr] = &contractEntry{fns: fns}
	return nil
}

// StorageFor returns the persistent storage of a contract, creating it on
// first use.
func (h *Host) StorageFor(addr val.Address) *Storage {
	s, ok := h.storage[addr]
	if !ok {
		s = newStorage(h)
		h.storage[addr] = s
	}
	return s
}

func (h *Host) currentScope() uint32 {
	return h.scopes[len(h.scopes)-1]
}

func (h *Host) beginScope() uint32 {
	id := h.nextScope
	h.nextScope++
	h.scopes = append(h.scopes, id)
	return id
}

// endScope pops the scope and drops the element storage of every object it
// minted, so stale handles fail resolution instead of aliasing new objects.
func (h *Host) endScope(id uint32) {
	for i := len(h.scopes) - 1; i > 0; i-- {
		if h.scopes[i] == id {
			h.scopes = append(h.scopes[:i], h.scopes[i+1:]...)
			break
		}
	}
	for i := range h.objects {
		if h.objects[i].scope == id {
			h.objects[i].elems = nil
			h.objects[i].scope = deadScope
		}
	}
}

const deadScope = ^uint32(0)

func (h *Host) resolve(obj val.Val) (*hostObject, error) {
	if !obj.IsObject() {
		return nil, errors.NotAnObject(errors.PhaseHost, nil, obj.Tag().String())
	}
	handle := obj.Handle()
	if handle >= uint64(len(h.objects)) {
		return nil, errors.InvalidHandle(errors.PhaseHost, handle)
	}
	o := &h.objects[handle]
	if !h.scopeActive(o.scope) {
		return nil, errors.InvalidHandle(errors.PhaseHost, handle)
	}
	kind, _ := val.KindForTag(obj.Tag())
	if o.kind != kind {
		return nil, errors.InvalidHandle(errors.PhaseHost, handle)
	}
	return o, nil
}

func (h *Host) scopeActive(id uint32) bool {
	for _, s := range h.scopes {
		if s == id {
			return true
		}
	}
	return false
}

func objectVal(kind val.ObjKind, handle uint64) val.Val {
	return val.Object(kind, handle)
}

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the host package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the host package's logger.
// This must be called before creating a Host.
func SetLogger(l *zap.Logger) {
	logger = l
}
