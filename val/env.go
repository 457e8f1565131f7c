package val

// ObjKind names the kinds of host-owned objects. It mirrors the object tags:
// the host allocates storage for a kind, the core reads and writes elements
// through the Env primitives and never touches the host representation.
type ObjKind uint8

const (
	KindU64Obj ObjKind = iota
	KindI64Obj
	KindU128Obj
	KindI128Obj
	KindBytesObj
	KindStringObj
	KindSymbolObj
	KindVecObj
	KindMapObj
	KindAddressObj
	KindLedgerKeyObj
)

func (k ObjKind) String() string {
	switch k {
	case KindU64Obj:
		return "u64"
	case KindI64Obj:
		return "i64"
	case KindU128Obj:
		return "u128"
	case KindI128Obj:
		return "i128"
	case KindBytesObj:
		return "bytes"
	case KindStringObj:
		return "string"
	case KindSymbolObj:
		return "symbol"
	case KindVecObj:
		return "vec"
	case KindMapObj:
		return "map"
	case KindAddressObj:
		return "address"
	case KindLedgerKeyObj:
		return "ledger-key"
	default:
		return "invalid"
	}
}

// Tag returns the object tag for values of this kind.
func (k ObjKind) Tag() Tag {
	return TagU64Obj + Tag(k)
}

// KindForTag returns the object kind for an object tag.
func KindForTag(t Tag) (ObjKind, bool) {
	if !t.IsObject() || t > TagLedgerKeyObj {
		return 0, false
	}
	return ObjKind(t - TagU64Obj), true
}

// Env is the host boundary: the fixed primitive set through which the core
// constructs, reads, and compares host-owned objects, plus the call
// primitive. Object handles returned by an Env are valid only within the
// current invocation scope; the host decides the validity window.
//
// No Env operation blocks or retries. All failures are immediate.
type Env interface {
	// NewObject allocates a host object of the given kind with count
	// elements, all initially void, and returns its tagged handle.
	NewObject(kind ObjKind, count uint32) (Val, error)

	// ObjElem reads element i of an object-tagged value.
	ObjElem(obj Val, i uint32) (Val, error)

	// SetObjElem writes element i of an object-tagged value.
	SetObjElem(obj Val, i uint32, elem Val) error

	// ObjLen returns the element count of an object-tagged value.
	ObjLen(obj Val) (uint32, error)

	// CompareObjs deep-compares two object-tagged values of the same
	// category under the total value ordering.
	CompareObjs(a, b Val) (int, error)

	// Invoke calls the named function of the target contract with the
	// given arguments and returns its single result value.
	Invoke(contract Val, fn Val, args []Val) (Val, error)
}

// Object forms an object-tagged value from a host-assigned handle. Intended
// for Env implementations; the core never fabricates handles itself.
func Object(kind ObjKind, handle uint64) Val {
	return makeObject(kind.Tag(), handle)
}

// NewObjectWith allocates an object and fills its elements in order.
func NewObjectWith(e Env, kind ObjKind, elems []Val) (Val, error) {
	obj, err := e.NewObject(kind, uint32(len(elems)))
	if err != nil {
		return Void(), err
	}
	for i, el := range elems {
		if err := e.SetObjElem(obj, uint32(i), el); err != nil {
			return Void(), err
		}
	}
	return obj, nil
}

// ObjElems reads all elements of an object-tagged value.
func ObjElems(e Env, obj Val) ([]Val, error) {
	n, err := e.ObjLen(obj)
	if err != nil {
		return nil, err
	}
	elems := make([]Val, n)
	for i := uint32(0); i < n; i++ {
		elems[i], err = e.ObjElem(obj, i)
		if err != nil {
			return nil, err
		}
	}
	return elems, nil
}
