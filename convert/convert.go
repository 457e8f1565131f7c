package convert

import (
	"reflect"

	"github.com/wippyai/contract-sdk/val"
)

var defaultCompiler = NewCompiler()

// Default returns the process-wide compiler used by the package-level
// ToVal and FromVal helpers.
func Default() *Compiler {
	return defaultCompiler
}

// ToVal encodes v as a tagged value using the default compiler.
func ToVal[T any](e val.Env, v T) (val.Val, error) {
	ct, err := defaultCompiler.Compile(reflect.TypeOf(v))
	if err != nil {
		return 0, err
	}
	return ct.ToVal(e, v)
}

// FromVal decodes a tagged value into a T using the default compiler.
func FromVal[T any](e val.Env, x val.Val) (T, error) {
	var out T
	ct, err := defaultCompiler.Compile(reflect.TypeOf(out))
	if err != nil {
		return out, err
	}
	if err := ct.FromVal(e, x, &out); err != nil {
		return out, err
	}
	return out, nil
}
