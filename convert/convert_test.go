package convert_test

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/wippyai/contract-sdk/convert"
	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/host"
	"github.com/wippyai/contract-sdk/spec"
	"github.com/wippyai/contract-sdk/val"
)

type Point struct {
	X uint32
	Y uint32
}

type Color uint32

const (
	Red  Color = 0
	Blue Color = 7
)

func (Color) EnumCases() []convert.EnumCase {
	return []convert.EnumCase{
		{Name: "Red", Value: 0},
		{Name: "Blue", Value: 7},
	}
}

type DrawError uint32

const ErrOutOfInk DrawError = 1

func (DrawError) EnumCases() []convert.EnumCase {
	return []convert.EnumCase{{Name: "OutOfInk", Value: 1}}
}

func (e DrawError) Error() string {
	if e == ErrOutOfInk {
		return "out of ink"
	}
	return "unknown draw error"
}

type Shape struct {
	convert.UnionTag
	Empty *convert.Unit
	Dot   *Point
	Poly  *[]Point
}

func roundTrip[T any](t *testing.T, e val.Env, v T) T {
	t.Helper()
	x, err := convert.ToVal(e, v)
	if err != nil {
		t.Fatalf("ToVal(%v) failed: %v", v, err)
	}
	got, err := convert.FromVal[T](e, x)
	if err != nil {
		t.Fatalf("FromVal failed: %v", err)
	}
	return got
}

func TestScalarRoundTrips(t *testing.T) {
	e := host.New()

	if got := roundTrip(t, e, true); got != true {
		t.Errorf("bool: got %v", got)
	}
	if got := roundTrip(t, e, uint32(42)); got != 42 {
		t.Errorf("u32: got %d", got)
	}
	if got := roundTrip(t, e, int32(-42)); got != -42 {
		t.Errorf("i32: got %d", got)
	}
	if got := roundTrip(t, e, uint64(1)<<60); got != uint64(1)<<60 {
		t.Errorf("u64: got %d", got)
	}
	if got := roundTrip(t, e, "hello world"); got != "hello world" {
		t.Errorf("string: got %q", got)
	}
	if got := roundTrip(t, e, val.Symbol("transfer")); got != "transfer" {
		t.Errorf("symbol: got %q", got)
	}
	b := roundTrip(t, e, []byte{0, 1, 2, 255})
	if !reflect.DeepEqual(b, []byte{0, 1, 2, 255}) {
		t.Errorf("bytes: got %v", b)
	}
	addr := val.Address{1, 2, 3}
	if got := roundTrip(t, e, addr); got != addr {
		t.Errorf("address: got %v", got)
	}
}

func TestWideNegativeOneRoundTrip(t *testing.T) {
	e := host.New()

	// -1 must survive the hi/lo-half encoding as signed -1, not as an
	// unsigned maximum.
	if got := roundTrip(t, e, int64(-1)); got != -1 {
		t.Errorf("i64 -1: got %d", got)
	}

	neg := val.I128FromI64(-1)
	got := roundTrip(t, e, neg)
	if got != neg {
		t.Errorf("i128 -1: got %+v", got)
	}
	if !got.IsNegative() {
		t.Error("i128 -1 lost its sign")
	}
}

func TestContainerRoundTrips(t *testing.T) {
	e := host.New()

	vec := roundTrip(t, e, []uint32{3, 1, 2})
	if !reflect.DeepEqual(vec, []uint32{3, 1, 2}) {
		t.Errorf("vec order changed: %v", vec)
	}

	m := roundTrip(t, e, map[val.Symbol]uint32{"a": 1, "b": 2})
	if !reflect.DeepEqual(m, map[val.Symbol]uint32{"a": 1, "b": 2}) {
		t.Errorf("map: got %v", m)
	}

	var none *uint32
	if got := roundTrip(t, e, none); got != nil {
		t.Errorf("none: got %v", got)
	}
	seven := uint32(7)
	some := roundTrip(t, e, &seven)
	if some == nil || *some != 7 {
		t.Errorf("some: got %v", some)
	}
}

func TestNestedOptionRejected(t *testing.T) {
	e := host.New()

	// An inner None would encode as Void, which decodes as the outer
	// None, so Some(None) cannot survive a round trip.
	inner := (*uint32)(nil)
	_, err := convert.ToVal(e, &inner)
	var serr *errors.Error
	if !stderrors.As(err, &serr) || serr.Kind != errors.KindUnsupported {
		t.Fatalf("expected unsupported for **uint32, got %v", err)
	}

	if _, err := convert.FromVal[**uint32](e, val.Void()); err == nil {
		t.Error("expected error decoding into a nested option")
	}
}

func TestStructEncodesAsTwoElementObject(t *testing.T) {
	e := host.New()

	x, err := convert.ToVal(e, Point{X: 1, Y: 2})
	if err != nil {
		t.Fatal(err)
	}
	elems, err := val.VecElems(e, x)
	if err != nil {
		t.Fatal(err)
	}
	if len(elems) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elems))
	}

	got, err := convert.FromVal[Point](e, x)
	if err != nil {
		t.Fatal(err)
	}
	if got != (Point{X: 1, Y: 2}) {
		t.Errorf("round trip: got %+v", got)
	}
}

func TestStructMissingField(t *testing.T) {
	e := host.New()

	// One element where Point expects two.
	short, err := val.NewVec(e, []val.Val{val.U32(1)})
	if err != nil {
		t.Fatal(err)
	}
	_, err = convert.FromVal[Point](e, short)
	var serr *errors.Error
	if !stderrors.As(err, &serr) || serr.Kind != errors.KindMissingField {
		t.Fatalf("expected missing_field, got %v", err)
	}
}

func TestUnionRoundTrip(t *testing.T) {
	e := host.New()

	tests := []struct {
		name string
		in   Shape
	}{
		{"unit case", Shape{Empty: &convert.Unit{}}},
		{"payload case", Shape{Dot: &Point{X: 3, Y: 4}}},
		{"vec payload", Shape{Poly: &[]Point{{X: 1, Y: 1}, {X: 2, Y: 2}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := convert.ToVal(e, tt.in)
			if err != nil {
				t.Fatal(err)
			}
			got, err := convert.FromVal[Shape](e, x)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.in) {
				t.Errorf("got %+v, want %+v", got, tt.in)
			}
		})
	}
}

func TestUnionCaseDiscipline(t *testing.T) {
	e := host.New()

	if _, err := convert.ToVal(e, Shape{}); err == nil {
		t.Error("expected error for union with no case set")
	}
	both := Shape{Empty: &convert.Unit{}, Dot: &Point{}}
	if _, err := convert.ToVal(e, both); err == nil {
		t.Error("expected error for union with two cases set")
	}
}

func TestUnionDuplicateCaseRejected(t *testing.T) {
	type Overlap struct {
		convert.UnionTag
		Dot  *Point
		Spot *Point `contract:"dot"`
	}

	c := convert.NewCompiler()
	_, err := c.Compile(reflect.TypeOf(Overlap{}))
	var serr *errors.Error
	if !stderrors.As(err, &serr) || serr.Kind != errors.KindInvalidData {
		t.Fatalf("expected invalid_data for colliding case names, got %v", err)
	}
}

func TestUnknownVariant(t *testing.T) {
	e := host.New()

	disc, err := val.NewSymbol(e, "bogus")
	if err != nil {
		t.Fatal(err)
	}
	obj, err := val.NewVec(e, []val.Val{disc})
	if err != nil {
		t.Fatal(err)
	}
	_, err = convert.FromVal[Shape](e, obj)
	var serr *errors.Error
	if !stderrors.As(err, &serr) || serr.Kind != errors.KindUnknownVariant {
		t.Fatalf("expected unknown_variant, got %v", err)
	}
}

func TestEnumRoundTrip(t *testing.T) {
	e := host.New()

	if got := roundTrip(t, e, Blue); got != Blue {
		t.Errorf("enum: got %d", got)
	}

	// Undeclared discriminant on encode.
	if _, err := convert.ToVal(e, Color(3)); err == nil {
		t.Error("expected error encoding undeclared enum value")
	}

	// Undeclared discriminant on decode.
	obj, err := val.NewVec(e, []val.Val{val.U32(3)})
	if err != nil {
		t.Fatal(err)
	}
	_, err = convert.FromVal[Color](e, obj)
	var serr *errors.Error
	if !stderrors.As(err, &serr) || serr.Kind != errors.KindUnknownVariant {
		t.Fatalf("expected unknown_variant, got %v", err)
	}
}

func TestErrorEnumRoundTrip(t *testing.T) {
	e := host.New()

	x, err := convert.ToVal(e, ErrOutOfInk)
	if err != nil {
		t.Fatal(err)
	}
	if x.Tag() != val.TagError {
		t.Fatalf("error enum should encode inline as error, got tag %s", x.Tag())
	}
	got, err := convert.FromVal[DrawError](e, x)
	if err != nil {
		t.Fatal(err)
	}
	if got != ErrOutOfInk {
		t.Errorf("got %d", got)
	}
}

func TestWrongTagFails(t *testing.T) {
	e := host.New()

	_, err := convert.FromVal[uint32](e, val.Bool(true))
	var serr *errors.Error
	if !stderrors.As(err, &serr) || serr.Kind != errors.KindWrongTag {
		t.Fatalf("expected wrong_tag, got %v", err)
	}
}

func TestCompilerSharedTable(t *testing.T) {
	c := convert.NewCompiler()

	ct, err := c.Compile(reflect.TypeOf(Point{}))
	if err != nil {
		t.Fatal(err)
	}
	if ct.Ref != (spec.Named{Name: "Point"}) {
		t.Errorf("Ref = %v, want Named Point", ct.Ref)
	}

	entries := c.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 registered entry, got %d", len(entries))
	}
	se, ok := entries[0].(spec.StructEntry)
	if !ok || se.Name != "Point" || len(se.Fields) != 2 {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
	if se.Fields[0].Name != "x" || se.Fields[0].Type != spec.TypeRef(spec.PrimU32) {
		t.Errorf("field 0 = %+v", se.Fields[0])
	}

	// Same type compiles to the same cached plan.
	again, err := c.Compile(reflect.TypeOf(Point{}))
	if err != nil {
		t.Fatal(err)
	}
	if again != ct {
		t.Error("expected cached compiled type")
	}
	if got := len(c.Entries()); got != 1 {
		t.Errorf("recompile registered a duplicate entry: %d", got)
	}
}

func TestCompileRecursiveThroughVec(t *testing.T) {
	type Node struct {
		Label    val.Symbol
		Children []Node
	}

	c := convert.NewCompiler()
	ct, err := c.Compile(reflect.TypeOf(Node{}))
	if err != nil {
		t.Fatalf("recursive type through slice should compile: %v", err)
	}

	e := host.New()
	tree := Node{
		Label: "root",
		Children: []Node{
			{Label: "left"},
			{Label: "right", Children: []Node{{Label: "leaf"}}},
		},
	}
	x, err := ct.ToVal(e, tree)
	if err != nil {
		t.Fatal(err)
	}
	var got Node
	if err := ct.FromVal(e, x, &got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, tree) {
		t.Errorf("got %+v, want %+v", got, tree)
	}
}
