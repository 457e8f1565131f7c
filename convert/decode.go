package convert

import (
	"reflect"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/val"
)

// FromVal decodes a tagged value into out, which must be a non-nil
// pointer to the compiled Go type. Decoding is strict: a tag or shape
// that does not match the compiled plan fails, it never produces a
// default-filled value.
func (ct *CompiledType) FromVal(e val.Env, x val.Val, out any) error {
	rv := reflect.ValueOf(out)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		got := "nil"
		if rv.IsValid() {
			got = rv.Type().String()
		}
		return errors.NilPointer(errors.PhaseDecode, nil, got)
	}
	if rv.Type().Elem() != ct.GoType {
		return errors.TypeMismatch(errors.PhaseDecode, nil, rv.Type().Elem().String(), ct.GoType.String())
	}
	return ct.fromVal(e, x, rv.Elem(), nil)
}

func (ct *CompiledType) fromVal(e val.Env, x val.Val, rv reflect.Value, path []string) error {
	switch ct.Kind {
	case KindVoid:
		if err := val.AsVoid(x); err != nil {
			return err
		}
		rv.Set(reflect.Zero(ct.GoType))
		return nil
	case KindBool:
		b, err := val.AsBool(x)
		if err != nil {
			return pathed(err, path)
		}
		rv.SetBool(b)
		return nil
	case KindU32:
		u, err := val.AsU32(x)
		if err != nil {
			return pathed(err, path)
		}
		rv.SetUint(uint64(u))
		return nil
	case KindI32:
		i, err := val.AsI32(x)
		if err != nil {
			return pathed(err, path)
		}
		rv.SetInt(int64(i))
		return nil
	case KindU64:
		u, err := val.U64Val(e, x)
		if err != nil {
			return pathed(err, path)
		}
		rv.SetUint(u)
		return nil
	case KindI64:
		i, err := val.I64Val(e, x)
		if err != nil {
			return pathed(err, path)
		}
		rv.SetInt(i)
		return nil
	case KindU128:
		u, err := val.U128Val(e, x)
		if err != nil {
			return pathed(err, path)
		}
		rv.Set(reflect.ValueOf(u))
		return nil
	case KindI128:
		i, err := val.I128Val(e, x)
		if err != nil {
			return pathed(err, path)
		}
		rv.Set(reflect.ValueOf(i))
		return nil
	case KindString:
		s, err := val.StringVal(e, x)
		if err != nil {
			return pathed(err, path)
		}
		rv.SetString(s)
		return nil
	case KindBytes:
		b, err := val.BytesVal(e, x)
		if err != nil {
			return pathed(err, path)
		}
		rv.SetBytes(b)
		return nil
	case KindSymbol:
		s, err := val.SymbolString(e, x)
		if err != nil {
			return pathed(err, path)
		}
		rv.SetString(s)
		return nil
	case KindAddress:
		a, err := val.AddressVal(e, x)
		if err != nil {
			return pathed(err, path)
		}
		rv.Set(reflect.ValueOf(a))
		return nil
	case KindVec:
		return ct.vecFromVal(e, x, rv, path)
	case KindMap:
		return ct.mapFromVal(e, x, rv, path)
	case KindOption:
		if x.Tag() == val.TagVoid {
			rv.Set(reflect.Zero(ct.GoType))
			return nil
		}
		elem := reflect.New(ct.GoType.Elem())
		if err := ct.Elem.fromVal(e, x, elem.Elem(), path); err != nil {
			return err
		}
		rv.Set(elem)
		return nil
	case KindStruct:
		return ct.structFromVal(e, x, rv, path)
	case KindUnion:
		return ct.unionFromVal(e, x, rv, path)
	case KindEnum:
		return ct.enumFromVal(e, x, rv, path)
	case KindErrorEnum:
		disc, err := val.AsError(x)
		if err != nil {
			return pathed(err, path)
		}
		if !ct.hasCase(disc) {
			return errors.UnknownVariant(errors.PhaseDecode, path, disc, ct.GoType.String())
		}
		rv.SetUint(uint64(disc))
		return nil
	default:
		return errors.Unsupported(errors.PhaseDecode, ct.GoType.String())
	}
}

func (ct *CompiledType) vecFromVal(e val.Env, x val.Val, rv reflect.Value, path []string) error {
	elems, err := val.VecElems(e, x)
	if err != nil {
		return pathed(err, path)
	}
	if len(elems) == 0 {
		rv.Set(reflect.Zero(ct.GoType))
		return nil
	}
	out := reflect.MakeSlice(ct.GoType, len(elems), len(elems))
	for i, el := range elems {
		if err := ct.Elem.fromVal(e, el, out.Index(i), append(path, "[elem]")); err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func (ct *CompiledType) mapFromVal(e val.Env, x val.Val, rv reflect.Value, path []string) error {
	pairs, err := val.MapPairs(e, x)
	if err != nil {
		return pathed(err, path)
	}
	if len(pairs) == 0 {
		rv.Set(reflect.Zero(ct.GoType))
		return nil
	}
	out := reflect.MakeMapWithSize(ct.GoType, len(pairs))
	for _, p := range pairs {
		key := reflect.New(ct.GoType.Key()).Elem()
		if err := ct.Key.fromVal(e, p.Key, key, append(path, "[key]")); err != nil {
			return err
		}
		value := reflect.New(ct.GoType.Elem()).Elem()
		if err := ct.Value.fromVal(e, p.Val, value, append(path, "[value]")); err != nil {
			return err
		}
		out.SetMapIndex(key, value)
	}
	rv.Set(out)
	return nil
}

func (ct *CompiledType) structFromVal(e val.Env, x val.Val, rv reflect.Value, path []string) error {
	elems, err := val.VecElems(e, x)
	if err != nil {
		return pathed(err, path)
	}
	if len(elems) != len(ct.Fields) {
		return errors.MissingField(errors.PhaseDecode, path, len(ct.Fields), len(elems))
	}
	for i, f := range ct.Fields {
		if err := f.Type.fromVal(e, elems[i], rv.Field(f.Index), append(path, f.SpecName)); err != nil {
			return err
		}
	}
	return nil
}

func (ct *CompiledType) unionFromVal(e val.Env, x val.Val, rv reflect.Value, path []string) error {
	elems, err := val.VecElems(e, x)
	if err != nil {
		return pathed(err, path)
	}
	if len(elems) == 0 {
		return errors.MissingField(errors.PhaseDecode, path, 1, 0)
	}
	disc, err := val.SymbolString(e, elems[0])
	if err != nil {
		return pathed(err, path)
	}

	var active *CompiledCase
	for i := range ct.Cases {
		if ct.Cases[i].Name == disc {
			active = &ct.Cases[i]
			break
		}
	}
	if active == nil {
		return errors.UnknownVariant(errors.PhaseDecode, path, disc, ct.GoType.String())
	}

	// Reset the union so exactly one case is set afterwards.
	rv.Set(reflect.Zero(ct.GoType))

	if active.Payload == nil {
		if len(elems) != 1 {
			return errors.MissingField(errors.PhaseDecode, append(path, disc), 1, len(elems))
		}
		rv.Field(active.Index).Set(reflect.ValueOf(&Unit{}))
		return nil
	}
	if len(elems) != 2 {
		return errors.MissingField(errors.PhaseDecode, append(path, disc), 2, len(elems))
	}
	payload := reflect.New(active.Payload.GoType)
	if err := active.Payload.fromVal(e, elems[1], payload.Elem(), append(path, disc)); err != nil {
		return err
	}
	rv.Field(active.Index).Set(payload)
	return nil
}

func (ct *CompiledType) enumFromVal(e val.Env, x val.Val, rv reflect.Value, path []string) error {
	elems, err := val.VecElems(e, x)
	if err != nil {
		return pathed(err, path)
	}
	if len(elems) != 1 {
		return errors.MissingField(errors.PhaseDecode, path, 1, len(elems))
	}
	disc, err := val.AsU32(elems[0])
	if err != nil {
		return pathed(err, path)
	}
	if !ct.hasCase(disc) {
		return errors.UnknownVariant(errors.PhaseDecode, path, disc, ct.GoType.String())
	}
	rv.SetUint(uint64(disc))
	return nil
}

// pathed attaches a decode path to structured errors that were raised
// below the point where the path was known.
func pathed(err error, path []string) error {
	if len(path) == 0 {
		return err
	}
	if serr, ok := err.(*errors.Error); ok && len(serr.Path) == 0 {
		clone := *serr
		clone.Path = append([]string(nil), path...)
		return &clone
	}
	return err
}
