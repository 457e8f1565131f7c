package convert

import (
	"reflect"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/val"
)

// ToVal encodes a native value as a tagged value using this compiled
// plan. The value's dynamic type must match the compiled Go type.
func (ct *CompiledType) ToVal(e val.Env, v any) (val.Val, error) {
	rv := reflect.ValueOf(v)
	if ct.Kind == KindVoid && v == nil {
		return val.Void(), nil
	}
	if !rv.IsValid() || rv.Type() != ct.GoType {
		got := "nil"
		if rv.IsValid() {
			got = rv.Type().String()
		}
		return 0, errors.TypeMismatch(errors.PhaseEncode, nil, got, ct.GoType.String())
	}
	return ct.toVal(e, rv, nil)
}

func (ct *CompiledType) toVal(e val.Env, rv reflect.Value, path []string) (val.Val, error) {
	switch ct.Kind {
	case KindVoid:
		return val.Void(), nil
	case KindBool:
		return val.Bool(rv.Bool()), nil
	case KindU32:
		return val.U32(uint32(rv.Uint())), nil
	case KindI32:
		return val.I32(int32(rv.Int())), nil
	case KindU64:
		return val.NewU64(e, rv.Uint())
	case KindI64:
		return val.NewI64(e, rv.Int())
	case KindU128:
		return val.NewU128(e, rv.Interface().(val.U128))
	case KindI128:
		return val.NewI128(e, rv.Interface().(val.I128))
	case KindString:
		return val.NewString(e, rv.String())
	case KindBytes:
		return val.NewBytes(e, rv.Bytes())
	case KindSymbol:
		return val.NewSymbol(e, rv.String())
	case KindAddress:
		return val.NewAddress(e, rv.Interface().(val.Address))
	case KindVec:
		return ct.vecToVal(e, rv, path)
	case KindMap:
		return ct.mapToVal(e, rv, path)
	case KindOption:
		if rv.IsNil() {
			return val.Void(), nil
		}
		return ct.Elem.toVal(e, rv.Elem(), path)
	case KindStruct:
		return ct.structToVal(e, rv, path)
	case KindUnion:
		return ct.unionToVal(e, rv, path)
	case KindEnum:
		disc := uint32(rv.Uint())
		if !ct.hasCase(disc) {
			return 0, errors.OutOfRange(errors.PhaseEncode, path, disc, ct.GoType.String())
		}
		return val.NewObjectWith(e, val.KindVecObj, []val.Val{val.U32(disc)})
	case KindErrorEnum:
		disc := uint32(rv.Uint())
		if !ct.hasCase(disc) {
			return 0, errors.OutOfRange(errors.PhaseEncode, path, disc, ct.GoType.String())
		}
		return val.ErrorVal(disc), nil
	default:
		return 0, errors.Unsupported(errors.PhaseEncode, ct.GoType.String())
	}
}

func (ct *CompiledType) vecToVal(e val.Env, rv reflect.Value, path []string) (val.Val, error) {
	elems := make([]val.Val, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		ev, err := ct.Elem.toVal(e, rv.Index(i), append(path, "[elem]"))
		if err != nil {
			return 0, err
		}
		elems[i] = ev
	}
	return val.NewVec(e, elems)
}

func (ct *CompiledType) mapToVal(e val.Env, rv reflect.Value, path []string) (val.Val, error) {
	pairs := make([]val.MapPair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		kv, err := ct.Key.toVal(e, iter.Key(), append(path, "[key]"))
		if err != nil {
			return 0, err
		}
		vv, err := ct.Value.toVal(e, iter.Value(), append(path, "[value]"))
		if err != nil {
			return 0, err
		}
		pairs = append(pairs, val.MapPair{Key: kv, Val: vv})
	}
	// NewMap sorts pairs into canonical key order, so Go map iteration
	// order never leaks into the encoding.
	return val.NewMap(e, pairs)
}

func (ct *CompiledType) structToVal(e val.Env, rv reflect.Value, path []string) (val.Val, error) {
	elems := make([]val.Val, len(ct.Fields))
	for i, f := range ct.Fields {
		fv, err := f.Type.toVal(e, rv.Field(f.Index), append(path, f.SpecName))
		if err != nil {
			return 0, err
		}
		elems[i] = fv
	}
	return val.NewObjectWith(e, val.KindVecObj, elems)
}

func (ct *CompiledType) unionToVal(e val.Env, rv reflect.Value, path []string) (val.Val, error) {
	var active *CompiledCase
	for i := range ct.Cases {
		if rv.Field(ct.Cases[i].Index).IsNil() {
			continue
		}
		if active != nil {
			return 0, errors.InvalidData(errors.PhaseEncode, path,
				"union has both "+active.Name+" and "+ct.Cases[i].Name+" set")
		}
		active = &ct.Cases[i]
	}
	if active == nil {
		return 0, errors.InvalidData(errors.PhaseEncode, path, "union has no case set")
	}

	disc, err := val.NewSymbol(e, active.Name)
	if err != nil {
		return 0, err
	}
	elems := []val.Val{disc}
	if active.Payload != nil {
		pv, err := active.Payload.toVal(e, rv.Field(active.Index).Elem(), append(path, active.Name))
		if err != nil {
			return 0, err
		}
		elems = append(elems, pv)
	}
	return val.NewObjectWith(e, val.KindVecObj, elems)
}

func (ct *CompiledType) hasCase(disc uint32) bool {
	for _, ec := range ct.Enum {
		if ec.Value == disc {
			return true
		}
	}
	return false
}
