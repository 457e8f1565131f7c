package val

import (
	"bytes"
	"strings"

	"github.com/wippyai/contract-sdk/errors"
)

// Compare defines the total ordering over values used as map and sorted-set
// keys: category order first, then payload order within a category. Numeric
// magnitude for integers, lexicographic for symbols, strings, and bytes,
// element-wise for composite objects. The ordering is total, transitive,
// and stable across runs, so maps built from the same logical key set
// always compare and iterate identically.
func Compare(e Env, a, b Val) (int, error) {
	ca, cb := a.Tag().Category(), b.Tag().Category()
	if ca == catInvalid || cb == catInvalid {
		return 0, errors.InvalidData(errors.PhaseHost, nil, "comparing value with invalid tag")
	}
	if ca != cb {
		return cmpOrdered(ca, cb), nil
	}

	switch ca {
	case CatVoid:
		return 0, nil
	case CatBool:
		return cmpOrdered(a.Tag(), b.Tag()), nil // TagFalse < TagTrue
	case CatU32, CatError:
		return cmpOrdered(uint32(a.Body()), uint32(b.Body())), nil
	case CatI32:
		return cmpOrdered(int32(uint32(a.Body())), int32(uint32(b.Body()))), nil
	case CatU64:
		av, err := U64Val(e, a)
		if err != nil {
			return 0, err
		}
		bv, err := U64Val(e, b)
		if err != nil {
			return 0, err
		}
		return cmpOrdered(av, bv), nil
	case CatI64:
		av, err := I64Val(e, a)
		if err != nil {
			return 0, err
		}
		bv, err := I64Val(e, b)
		if err != nil {
			return 0, err
		}
		return cmpOrdered(av, bv), nil
	case CatU128:
		av, err := U128Val(e, a)
		if err != nil {
			return 0, err
		}
		bv, err := U128Val(e, b)
		if err != nil {
			return 0, err
		}
		return av.Cmp(bv), nil
	case CatI128:
		av, err := I128Val(e, a)
		if err != nil {
			return 0, err
		}
		bv, err := I128Val(e, b)
		if err != nil {
			return 0, err
		}
		return av.Cmp(bv), nil
	case CatSymbol:
		as, err := SymbolString(e, a)
		if err != nil {
			return 0, err
		}
		bs, err := SymbolString(e, b)
		if err != nil {
			return 0, err
		}
		return strings.Compare(as, bs), nil
	case CatString, CatBytes, CatAddress:
		ab, err := joinBytes(e, a)
		if err != nil {
			return 0, err
		}
		bb, err := joinBytes(e, b)
		if err != nil {
			return 0, err
		}
		return bytes.Compare(ab, bb), nil
	default:
		// Vec, map, and ledger-key objects compare element-wise through
		// the host primitive, which recurses back into this ordering.
		return e.CompareObjs(a, b)
	}
}

// CompareElems is the element-wise ordering for composite objects: pairwise
// element comparison first, shorter sequence first on a common prefix. Host
// implementations of CompareObjs use it to stay consistent with Compare.
func CompareElems(e Env, a, b []Val) (int, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		c, err := Compare(e, a[i], b[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return cmpOrdered(len(a), len(b)), nil
}

func cmpOrdered[T interface {
	~int | ~int32 | ~int64 | ~uint8 | ~uint32 | ~uint64
}](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
