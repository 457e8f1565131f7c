package host

import (
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/val"
)

func symbol(t *testing.T, e val.Env, s string) val.Val {
	t.Helper()
	x, err := val.NewSymbol(e, s)
	if err != nil {
		t.Fatal(err)
	}
	return x
}

func address(t *testing.T, e val.Env, a val.Address) val.Val {
	t.Helper()
	x, err := val.NewAddress(e, a)
	if err != nil {
		t.Fatal(err)
	}
	return x
}

func TestObjectPrimitives(t *testing.T) {
	h := New()

	obj, err := h.NewObject(val.KindVecObj, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !obj.IsObject() {
		t.Fatal("NewObject returned a non-object value")
	}
	n, err := h.ObjLen(obj)
	if err != nil || n != 3 {
		t.Fatalf("ObjLen = %d, err %v", n, err)
	}

	// Elements start void.
	el, err := h.ObjElem(obj, 0)
	if err != nil || el.Tag() != val.TagVoid {
		t.Errorf("fresh element = %v, err %v", el, err)
	}

	if err := h.SetObjElem(obj, 1, val.U32(42)); err != nil {
		t.Fatal(err)
	}
	el, err = h.ObjElem(obj, 1)
	if err != nil {
		t.Fatal(err)
	}
	if u, _ := val.AsU32(el); u != 42 {
		t.Errorf("element = %v", el)
	}

	// Out-of-bounds access fails.
	if _, err := h.ObjElem(obj, 3); err == nil {
		t.Error("expected out-of-bounds error")
	}
	if err := h.SetObjElem(obj, 99, val.Void()); err == nil {
		t.Error("expected out-of-bounds error")
	}
}

func TestInvalidHandleRejected(t *testing.T) {
	h := New()

	bogus := val.Object(val.KindVecObj, 12345)
	_, err := h.ObjLen(bogus)
	var serr *errors.Error
	if !stderrors.As(err, &serr) || serr.Kind != errors.KindInvalidHandle {
		t.Fatalf("expected invalid_handle, got %v", err)
	}

	// Kind mismatch between tag and allocation is also rejected.
	obj, err := h.NewObject(val.KindVecObj, 1)
	if err != nil {
		t.Fatal(err)
	}
	relabeled := val.Object(val.KindMapObj, obj.Handle())
	if _, err := h.ObjLen(relabeled); err == nil {
		t.Error("expected kind mismatch rejection")
	}
}

func TestScopeInvalidatesHandles(t *testing.T) {
	h := New()
	addr := val.Address{1}

	var leaked val.Val
	fns := map[string]Func{
		"make_vec": func(ctx *Context, args []val.Val) (val.Val, error) {
			v, err := val.NewVec(ctx.Env(), []val.Val{val.U32(1), val.U32(2)})
			leaked = v
			return v, err
		},
	}
	if err := h.Register(addr, fns); err != nil {
		t.Fatal(err)
	}

	got, err := h.Invoke(address(t, h, addr), symbol(t, h, "make_vec"), nil)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	// The returned value was thawed into the caller scope and works.
	elems, err := val.VecElems(h, got)
	if err != nil || len(elems) != 2 {
		t.Fatalf("returned vec unusable: %v (err %v)", elems, err)
	}

	// The handle minted inside the invocation scope is dead.
	if _, err := h.ObjLen(leaked); err == nil {
		t.Error("handle from an ended invocation scope still resolves")
	}
}

func TestInvokeUnknownTargets(t *testing.T) {
	h := New()
	addr := val.Address{9}
	if err := h.Register(addr, map[string]Func{
		"noop": func(*Context, []val.Val) (val.Val, error) { return val.Void(), nil },
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := h.Invoke(address(t, h, val.Address{8}), symbol(t, h, "noop"), nil); err == nil {
		t.Error("expected unknown contract error")
	}
	if _, err := h.Invoke(address(t, h, addr), symbol(t, h, "missing"), nil); err == nil {
		t.Error("expected unknown function error")
	}
}

func TestCrossContractInvoke(t *testing.T) {
	h := New()
	adder := val.Address{1}
	caller := val.Address{2}

	if err := h.Register(adder, map[string]Func{
		"add": func(ctx *Context, args []val.Val) (val.Val, error) {
			a, err := val.AsU32(args[0])
			if err != nil {
				return val.Void(), err
			}
			b, err := val.AsU32(args[1])
			if err != nil {
				return val.Void(), err
			}
			return val.U32(a + b), nil
		},
	}); err != nil {
		t.Fatal(err)
	}
	if err := h.Register(caller, map[string]Func{
		"relay": func(ctx *Context, args []val.Val) (val.Val, error) {
			target, err := val.NewAddress(ctx.Env(), adder)
			if err != nil {
				return val.Void(), err
			}
			return ctx.Invoke(target, "add", []val.Val{val.U32(2), val.U32(3)})
		},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := h.Invoke(address(t, h, caller), symbol(t, h, "relay"), nil)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if n, _ := val.AsU32(got); n != 5 {
		t.Errorf("relay(add(2,3)) = %d, want 5", n)
	}
}

func TestStoragePersistsAcrossInvocations(t *testing.T) {
	h := New()
	addr := val.Address{3}

	if err := h.Register(addr, map[string]Func{
		"put": func(ctx *Context, args []val.Val) (val.Val, error) {
			key, err := val.NewSymbol(ctx.Env(), "data")
			if err != nil {
				return val.Void(), err
			}
			payload, err := val.NewVec(ctx.Env(), []val.Val{args[0], val.Bool(true)})
			if err != nil {
				return val.Void(), err
			}
			return val.Void(), ctx.Storage().Set(key, payload)
		},
		"get": func(ctx *Context, args []val.Val) (val.Val, error) {
			key, err := val.NewSymbol(ctx.Env(), "data")
			if err != nil {
				return val.Void(), err
			}
			v, ok, err := ctx.Storage().Get(key)
			if err != nil {
				return val.Void(), err
			}
			if !ok {
				return val.Void(), nil
			}
			return v, nil
		},
	}); err != nil {
		t.Fatal(err)
	}

	contract := address(t, h, addr)
	if _, err := h.Invoke(contract, symbol(t, h, "put"), []val.Val{val.U32(11)}); err != nil {
		t.Fatal(err)
	}
	got, err := h.Invoke(contract, symbol(t, h, "get"), nil)
	if err != nil {
		t.Fatal(err)
	}
	// Storage froze the vec; the second invocation thawed a fresh copy.
	elems, err := val.VecElems(h, got)
	if err != nil || len(elems) != 2 {
		t.Fatalf("stored vec unusable: err %v", err)
	}
	if n, _ := val.AsU32(elems[0]); n != 11 {
		t.Errorf("stored element = %d, want 11", n)
	}
}

func TestStorageDeterministicKeys(t *testing.T) {
	h := New()
	st := h.StorageFor(val.Address{4})

	for _, u := range []uint32{5, 1, 9, 3} {
		if err := st.Set(val.U32(u), val.Bool(true)); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := st.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 4 {
		t.Fatalf("Keys = %d entries", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		c, err := val.Compare(h, keys[i-1], keys[i])
		if err != nil {
			t.Fatal(err)
		}
		if c >= 0 {
			t.Error("keys not in ascending canonical order")
		}
	}

	if err := st.Remove(val.U32(5)); err != nil {
		t.Fatal(err)
	}
	if ok, _ := st.Has(val.U32(5)); ok {
		t.Error("removed key still present")
	}
	if st.Len() != 3 {
		t.Errorf("Len = %d, want 3", st.Len())
	}
}

func TestStorageKeysMixedSignOrder(t *testing.T) {
	h := New()
	st := h.StorageFor(val.Address{7})

	for _, i := range []int32{1, -1, 3, -7} {
		if err := st.Set(val.I32(i), val.Bool(true)); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := st.Keys()
	if err != nil {
		t.Fatal(err)
	}
	want := []int32{-7, -1, 1, 3}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %d entries, want %d", len(keys), len(want))
	}
	for i, k := range keys {
		got, err := val.AsI32(k)
		if err != nil {
			t.Fatal(err)
		}
		if got != want[i] {
			t.Fatalf("key %d = %d, want %d", i, got, want[i])
		}
	}
}

func TestEvents(t *testing.T) {
	h := New()
	addr := val.Address{5}

	if err := h.Register(addr, map[string]Func{
		"emit": func(ctx *Context, args []val.Val) (val.Val, error) {
			topic, err := val.NewSymbol(ctx.Env(), "transfer")
			if err != nil {
				return val.Void(), err
			}
			return val.Void(), ctx.PublishEvent([]val.Val{topic}, val.U32(99))
		},
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := h.Invoke(address(t, h, addr), symbol(t, h, "emit"), nil); err != nil {
		t.Fatal(err)
	}

	events := h.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Contract != addr {
		t.Errorf("event contract = %v", events[0].Contract)
	}
	topics, err := events[0].Topics(h)
	if err != nil || len(topics) != 1 {
		t.Fatalf("Topics: %v (err %v)", topics, err)
	}
	if s, _ := val.SymbolString(h, topics[0]); s != "transfer" {
		t.Errorf("topic = %q", s)
	}
	data, err := events[0].Data(h)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := val.AsU32(data); n != 99 {
		t.Errorf("data = %v", data)
	}
}

func TestDeployerDerivesDeterministicAddresses(t *testing.T) {
	h := New()
	from := val.Address{6}
	salt := [32]byte{1, 2, 3}

	d := NewDeployer(h, from).WithSalt(salt)
	predicted := d.DeployedAddress()

	deployed, err := d.Deploy(map[string]Func{
		"ping": func(*Context, []val.Val) (val.Val, error) { return val.U32(1), nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	if deployed != predicted {
		t.Error("DeployedAddress disagrees with Deploy")
	}

	// Same (from, salt) always derives the same address; a different
	// salt derives a different one.
	if again := NewDeployer(h, from).WithSalt(salt).DeployedAddress(); again != predicted {
		t.Error("derivation not deterministic")
	}
	if other := NewDeployer(h, from).WithSalt([32]byte{9}).DeployedAddress(); other == predicted {
		t.Error("different salts derived one address")
	}

	got, err := h.Invoke(address(t, h, deployed), symbol(t, h, "ping"), nil)
	if err != nil {
		t.Fatalf("deployed contract not callable: %v", err)
	}
	if n, _ := val.AsU32(got); n != 1 {
		t.Errorf("ping = %d", n)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	h := New()
	addr := val.Address{7}
	st := h.StorageFor(addr)

	key := symbol(t, h, "balance")
	payload, err := val.NewVec(h, []val.Val{val.U32(5), val.Bool(true)})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Set(key, payload); err != nil {
		t.Fatal(err)
	}
	if err := st.Set(val.U32(2), val.I32(-4)); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := h.WriteSnapshot(path); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}

	h2 := New()
	if err := h2.RestoreSnapshot(path); err != nil {
		t.Fatalf("RestoreSnapshot failed: %v", err)
	}

	st2 := h2.StorageFor(addr)
	if st2.Len() != 2 {
		t.Fatalf("restored Len = %d, want 2", st2.Len())
	}

	key2 := symbol(t, h2, "balance")
	got, ok, err := st2.Get(key2)
	if err != nil || !ok {
		t.Fatalf("restored key missing: ok=%v err=%v", ok, err)
	}
	elems, err := val.VecElems(h2, got)
	if err != nil || len(elems) != 2 {
		t.Fatalf("restored vec unusable: err %v", err)
	}
	if n, _ := val.AsU32(elems[0]); n != 5 {
		t.Errorf("restored element = %d, want 5", n)
	}

	got2, ok, err := st2.Get(val.U32(2))
	if err != nil || !ok {
		t.Fatalf("restored scalar key missing: ok=%v err=%v", ok, err)
	}
	if n, _ := val.AsI32(got2); n != -4 {
		t.Errorf("restored scalar = %d, want -4", n)
	}
}
