package extract_test

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/contract-sdk/extract"
	"github.com/wippyai/contract-sdk/host"
	"github.com/wippyai/contract-sdk/spec"
	"github.com/wippyai/contract-sdk/val"
)

type Counter struct{}

func (Counter) Increment(ctx *host.Context, by uint32) (uint32, error) {
	key, err := val.NewSymbol(ctx.Env(), "count")
	if err != nil {
		return 0, err
	}
	var count uint32
	cur, ok, err := ctx.Storage().Get(key)
	if err != nil {
		return 0, err
	}
	if ok {
		if count, err = val.AsU32(cur); err != nil {
			return 0, err
		}
	}
	count += by
	if err := ctx.Storage().Set(key, val.U32(count)); err != nil {
		return 0, err
	}
	return count, nil
}

func (Counter) Reset(ctx *host.Context) error {
	key, err := val.NewSymbol(ctx.Env(), "count")
	if err != nil {
		return err
	}
	return ctx.Storage().Remove(key)
}

func TestContractExtraction(t *testing.T) {
	x := extract.New()
	if err := x.Contract(Counter{}); err != nil {
		t.Fatalf("Contract failed: %v", err)
	}

	s, data, err := x.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Build returned no bytes")
	}

	fns := s.Functions()
	if len(fns) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(fns))
	}

	inc, ok := s.Lookup("increment")
	if !ok {
		t.Fatal("increment entry not found")
	}
	fe := inc.(spec.FunctionEntry)
	// The *host.Context parameter is host-supplied and must not appear.
	if len(fe.Params) != 1 {
		t.Fatalf("increment params = %d, want 1", len(fe.Params))
	}
	if fe.Params[0].Type != spec.TypeRef(spec.PrimU32) {
		t.Errorf("increment param type = %v", fe.Params[0].Type)
	}
	if fe.Return != spec.TypeRef(spec.PrimU32) {
		t.Errorf("increment return = %v", fe.Return)
	}

	reset, _ := s.Lookup("reset")
	if re := reset.(spec.FunctionEntry); re.Return != spec.TypeRef(spec.PrimVoid) {
		t.Errorf("reset return = %v", re.Return)
	}
}

func TestHandlersDispatch(t *testing.T) {
	x := extract.New()
	if err := x.Contract(Counter{}); err != nil {
		t.Fatal(err)
	}

	h := host.New()
	addr := val.Address{0xaa}
	if err := h.Register(addr, x.Handlers()); err != nil {
		t.Fatal(err)
	}

	contract, err := val.NewAddress(h, addr)
	if err != nil {
		t.Fatal(err)
	}
	fn, err := val.NewSymbol(h, "increment")
	if err != nil {
		t.Fatal(err)
	}

	got, err := h.Invoke(contract, fn, []val.Val{val.U32(5)})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if n, err := val.AsU32(got); err != nil || n != 5 {
		t.Errorf("first increment = %d (%v), want 5", n, err)
	}

	got, err = h.Invoke(contract, fn, []val.Val{val.U32(3)})
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := val.AsU32(got); n != 8 {
		t.Errorf("second increment = %d, want 8", n)
	}

	// Wrong arity is rejected before the handler body runs.
	if _, err := h.Invoke(contract, fn, nil); err == nil {
		t.Error("expected error for missing argument")
	}
}

func TestFuncRegistration(t *testing.T) {
	x := extract.New()
	add := func(a, b int32) int32 { return a + b }
	if err := x.Func("add", add, "a", "b"); err != nil {
		t.Fatal(err)
	}

	s, _, err := x.Build()
	if err != nil {
		t.Fatal(err)
	}
	fe, _ := s.Lookup("add")
	if got := spec.Signature(fe.(spec.FunctionEntry)); got != "add(a: i32, b: i32) -> i32" {
		t.Errorf("signature = %q", got)
	}
}

func TestFuncRejectsBadDeclarations(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		fn     any
		params []string
	}{
		{"not a function", "f", 42, nil},
		{"invalid symbol", "bad name!", func() {}, nil},
		{"variadic", "f", func(xs ...uint32) {}, nil},
		{"param name mismatch", "f", func(a uint32) {}, []string{"a", "b"}},
		{"two values", "f", func() (uint32, uint32) { return 0, 0 }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := extract.New()
			if err := x.Func(tt.symbol, tt.fn, tt.params...); err == nil {
				t.Error("expected registration error")
			}
		})
	}
}

func TestTypeRegistration(t *testing.T) {
	type Price struct {
		Amount val.I128
		Quote  val.Symbol
	}

	x := extract.New()
	if err := x.Type(Price{}); err != nil {
		t.Fatal(err)
	}
	s, _, err := x.Build()
	if err != nil {
		t.Fatal(err)
	}
	e, ok := s.Lookup("Price")
	if !ok {
		t.Fatal("Price entry not registered")
	}
	se := e.(spec.StructEntry)
	if len(se.Fields) != 2 || se.Fields[0].Name != "amount" {
		t.Errorf("unexpected entry %+v", se)
	}
}

func TestHandlerErrorPropagates(t *testing.T) {
	x := extract.New()
	boom := func() error { return stderrors.New("refused") }
	if err := x.Func("boom", boom); err != nil {
		t.Fatal(err)
	}

	h := host.New()
	addr := val.Address{1}
	if err := h.Register(addr, x.Handlers()); err != nil {
		t.Fatal(err)
	}
	contract, err := val.NewAddress(h, addr)
	if err != nil {
		t.Fatal(err)
	}
	fn, err := val.NewSymbol(h, "boom")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Invoke(contract, fn, nil); err == nil {
		t.Error("expected handler error to propagate")
	}
}
