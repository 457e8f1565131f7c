package spec

import (
	"bytes"
	"fmt"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/internal/binary"
)

// Decode parses a serialized specification and re-validates it through
// the builder, so a decoded Spec carries the same guarantees as a
// freshly finalized one.
func Decode(data []byte) (*Spec, error) {
	r := binary.NewReader(data)

	head, err := r.ReadBytes(len(magic))
	if err != nil {
		return nil, errors.Load("specification too short", err)
	}
	if !bytes.Equal(head, magic[:]) {
		return nil, errors.Load(fmt.Sprintf("bad magic %q", head), nil)
	}
	version, err := r.Byte()
	if err != nil {
		return nil, errors.Load("missing version byte", err)
	}
	if version != FormatVersion {
		return nil, errors.Load(fmt.Sprintf("unsupported format version %d (want %d)", version, FormatVersion), nil)
	}

	count, err := r.ReadU32()
	if err != nil {
		return nil, errors.Load("missing entry count", err)
	}

	b := NewBuilder()
	for i := uint32(0); i < count; i++ {
		e, err := readEntry(r)
		if err != nil {
			return nil, errors.Load(fmt.Sprintf("entry %d", i), err)
		}
		b.Add(e)
	}
	if r.Remaining() != 0 {
		return nil, errors.Load(fmt.Sprintf("%d trailing bytes after last entry", r.Remaining()), nil)
	}
	return b.Finalize()
}

func readEntry(r *binary.Reader) (Entry, error) {
	kind, err := r.Byte()
	if err != nil {
		return nil, err
	}
	name, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	doc, err := r.ReadName()
	if err != nil {
		return nil, err
	}

	switch kind {
	case entryFunction:
		n, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		params := make([]Param, 0, n)
		for i := uint32(0); i < n; i++ {
			pname, err := r.ReadName()
			if err != nil {
				return nil, err
			}
			ptype, err := readType(r)
			if err != nil {
				return nil, err
			}
			params = append(params, Param{Name: pname, Type: ptype})
		}
		ret, err := readType(r)
		if err != nil {
			return nil, err
		}
		return FunctionEntry{Name: name, Doc: doc, Params: params, Return: ret}, nil

	case entryStruct:
		n, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		fields := make([]Field, 0, n)
		for i := uint32(0); i < n; i++ {
			fname, err := r.ReadName()
			if err != nil {
				return nil, err
			}
			ftype, err := readType(r)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: fname, Type: ftype})
		}
		return StructEntry{Name: name, Doc: doc, Fields: fields}, nil

	case entryUnion:
		n, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		cases := make([]UnionCase, 0, n)
		for i := uint32(0); i < n; i++ {
			cname, err := r.ReadName()
			if err != nil {
				return nil, err
			}
			has, err := r.Byte()
			if err != nil {
				return nil, err
			}
			var payload TypeRef
			if has == 1 {
				payload, err = readType(r)
				if err != nil {
					return nil, err
				}
			} else if has != 0 {
				return nil, fmt.Errorf("bad payload flag %d", has)
			}
			cases = append(cases, UnionCase{Name: cname, Payload: payload})
		}
		return UnionEntry{Name: name, Doc: doc, Cases: cases}, nil

	case entryEnum:
		cases, err := readEnumCases(r)
		if err != nil {
			return nil, err
		}
		return EnumEntry{Name: name, Doc: doc, Cases: cases}, nil

	case entryErrorEnum:
		cases, err := readEnumCases(r)
		if err != nil {
			return nil, err
		}
		return ErrorEnumEntry{Name: name, Doc: doc, Cases: cases}, nil

	default:
		return nil, fmt.Errorf("unknown entry kind %d", kind)
	}
}

func readEnumCases(r *binary.Reader) ([]EnumCase, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	cases := make([]EnumCase, 0, n)
	for i := uint32(0); i < n; i++ {
		name, err := r.ReadName()
		if err != nil {
			return nil, err
		}
		value, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		cases = append(cases, EnumCase{Name: name, Value: value})
	}
	return cases, nil
}

func readType(r *binary.Reader) (TypeRef, error) {
	tag, err := r.Byte()
	if err != nil {
		return nil, err
	}
	switch {
	case tag <= byte(PrimLedgerKey):
		return Prim(tag), nil
	case tag == refVec:
		elem, err := readType(r)
		if err != nil {
			return nil, err
		}
		return Vec{Elem: elem}, nil
	case tag == refMap:
		key, err := readType(r)
		if err != nil {
			return nil, err
		}
		value, err := readType(r)
		if err != nil {
			return nil, err
		}
		return Map{Key: key, Value: value}, nil
	case tag == refOption:
		elem, err := readType(r)
		if err != nil {
			return nil, err
		}
		return Option{Elem: elem}, nil
	case tag == refResult:
		ok, err := readType(r)
		if err != nil {
			return nil, err
		}
		errType, err := readType(r)
		if err != nil {
			return nil, err
		}
		return Result{OK: ok, Err: errType}, nil
	case tag == refNamed:
		name, err := r.ReadName()
		if err != nil {
			return nil, err
		}
		return Named{Name: name}, nil
	default:
		return nil, fmt.Errorf("unknown type tag 0x%02x", tag)
	}
}
