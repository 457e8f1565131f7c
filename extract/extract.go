package extract

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/wippyai/contract-sdk/convert"
	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/host"
	"github.com/wippyai/contract-sdk/spec"
	"github.com/wippyai/contract-sdk/val"
)

var (
	ctxType  = reflect.TypeOf((*host.Context)(nil))
	errIface = reflect.TypeOf((*error)(nil)).Elem()
)

// Extractor walks Go declarations and produces specification entries
// whose type references come from the same compiled table the run-time
// conversion uses, so the two can never disagree. It also produces the
// dispatch handlers that make the declarations callable through a
// host registry.
//
// An Extractor is single-use and not safe for concurrent use.
type Extractor struct {
	compiler  *convert.Compiler
	functions []fnDecl
	handlers  map[string]host.Func
}

type fnDecl struct {
	entry   spec.FunctionEntry
	params  []*convert.CompiledType
	result  *convert.CompiledType // nil for void
	call    reflect.Value
	takeCtx bool
}

// New creates an Extractor with a fresh compiler.
func New() *Extractor {
	return &Extractor{
		compiler: convert.NewCompiler(),
		handlers: make(map[string]host.Func),
	}
}

// Compiler returns the compiler backing this Extractor.
func (x *Extractor) Compiler() *convert.Compiler {
	return x.compiler
}

// Type registers a user-defined type so its entry appears in the
// specification even when no function mentions it.
func (x *Extractor) Type(v any) error {
	_, err := x.compiler.Compile(reflect.TypeOf(v))
	return err
}

// Func registers one callable function under the given symbol name.
// The function's first parameter may be *host.Context; it is
// host-supplied and never part of the external signature. Optional
// paramNames override the generated arg names and must match the
// external parameter count.
func (x *Extractor) Func(name string, fn any, paramNames ...string) error {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return errors.TypeMismatch(errors.PhaseSpec, []string{name}, fmt.Sprintf("%T", fn), "func")
	}
	return x.addFunc(name, rv, paramNames)
}

// Contract registers every exported method of v as a contract
// function, each named by the lower_snake_case form of its Go name.
func (x *Extractor) Contract(v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return errors.New(errors.PhaseSpec, errors.KindNilPointer).
			Detail("contract value cannot be nil").
			Build()
	}
	t := rv.Type()
	if t.NumMethod() == 0 {
		return errors.InvalidData(errors.PhaseSpec, nil, t.String()+" has no exported methods")
	}
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		if err := x.addFunc(toSnakeCase(m.Name), rv.Method(i), nil); err != nil {
			return err
		}
	}
	return nil
}

func (x *Extractor) addFunc(name string, fn reflect.Value, paramNames []string) error {
	if !val.ValidSymbol(name) || len(name) > val.MaxSymbolChars {
		return errors.InvalidData(errors.PhaseSpec, []string{name}, "function name is not a valid symbol")
	}
	ft := fn.Type()
	if ft.IsVariadic() {
		return errors.Unsupported(errors.PhaseSpec, "variadic contract function "+name)
	}

	decl := fnDecl{call: fn}
	start := 0
	if ft.NumIn() > 0 && ft.In(0) == ctxType {
		decl.takeCtx = true
		start = 1
	}
	if len(paramNames) != 0 && len(paramNames) != ft.NumIn()-start {
		return errors.InvalidData(errors.PhaseSpec, []string{name},
			fmt.Sprintf("%d param names for %d parameters", len(paramNames), ft.NumIn()-start))
	}

	var params []spec.Param
	for i := start; i < ft.NumIn(); i++ {
		ct, err := x.compiler.Compile(ft.In(i))
		if err != nil {
			return err
		}
		pname := fmt.Sprintf("arg%d", i-start)
		if len(paramNames) != 0 {
			pname = paramNames[i-start]
		}
		params = append(params, spec.Param{Name: pname, Type: ct.Ref})
		decl.params = append(decl.params, ct)
	}

	ret, result, err := x.compileReturn(name, ft)
	if err != nil {
		return err
	}
	decl.result = result

	decl.entry = spec.FunctionEntry{Name: name, Params: params, Return: ret}
	x.functions = append(x.functions, decl)
	x.handlers[name] = makeHandler(decl)
	return nil
}

// compileReturn accepts no results, one value, one trailing error, or
// a (value, error) pair. The error is a run-time failure channel, not
// part of the declared return type.
func (x *Extractor) compileReturn(name string, ft reflect.Type) (spec.TypeRef, *convert.CompiledType, error) {
	n := ft.NumOut()
	if n > 0 && ft.Out(n-1) == errIface {
		n--
	}
	switch n {
	case 0:
		return spec.PrimVoid, nil, nil
	case 1:
		if ft.Out(0) == errIface {
			return nil, nil, errors.Unsupported(errors.PhaseSpec, name+" returns only an error interface pair")
		}
		ct, err := x.compiler.Compile(ft.Out(0))
		if err != nil {
			return nil, nil, err
		}
		return ct.Ref, ct, nil
	default:
		return nil, nil, errors.Unsupported(errors.PhaseSpec,
			fmt.Sprintf("%s returns %d values; at most one value and one error", name, ft.NumOut()))
	}
}

// Handlers returns the dispatch handlers keyed by function symbol,
// ready for host registration.
func (x *Extractor) Handlers() map[string]host.Func {
	out := make(map[string]host.Func, len(x.handlers))
	for k, v := range x.handlers {
		out[k] = v
	}
	return out
}

// Build finalizes the accumulated declarations into a specification
// and its canonical bytes. Type entries precede function entries; both
// keep first-registration order.
func (x *Extractor) Build() (*spec.Spec, []byte, error) {
	b := spec.NewBuilder()
	for _, e := range x.compiler.Entries() {
		b.Add(e)
	}
	for _, d := range x.functions {
		b.Add(d.entry)
	}
	s, err := b.Finalize()
	if err != nil {
		return nil, nil, err
	}
	return s, s.Encode(), nil
}

func makeHandler(decl fnDecl) host.Func {
	return func(ctx *host.Context, args []val.Val) (val.Val, error) {
		if len(args) != len(decl.params) {
			return val.Void(), errors.New(errors.PhaseInvoke, errors.KindInvalidData).
				Path(decl.entry.Name).
				Detail("want %d arguments, got %d", len(decl.params), len(args)).
				Build()
		}
		e := ctx.Env()

		in := make([]reflect.Value, 0, len(args)+1)
		if decl.takeCtx {
			in = append(in, reflect.ValueOf(ctx))
		}
		for i, ct := range decl.params {
			pv := reflect.New(ct.GoType)
			if err := ct.FromVal(e, args[i], pv.Interface()); err != nil {
				return val.Void(), err
			}
			in = append(in, pv.Elem())
		}

		out := decl.call.Call(in)

		// Trailing error aborts the invocation as a host failure.
		if n := len(out); n > 0 && decl.call.Type().Out(n-1) == errIface {
			if errv := out[n-1]; !errv.IsNil() {
				return val.Void(), errv.Interface().(error)
			}
			out = out[:n-1]
		}
		if decl.result == nil {
			return val.Void(), nil
		}
		return decl.result.ToVal(e, out[0].Interface())
	}
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				result.WriteByte('_')
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
