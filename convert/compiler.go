package convert

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/spec"
	"github.com/wippyai/contract-sdk/val"
)

var (
	unitType    = reflect.TypeOf(Unit{})
	u128Type    = reflect.TypeOf(val.U128{})
	i128Type    = reflect.TypeOf(val.I128{})
	symbolType  = reflect.TypeOf(val.Symbol(""))
	addressType = reflect.TypeOf(val.Address{})
	bytesType   = reflect.TypeOf([]byte(nil))
	unionTag    = reflect.TypeOf(UnionTag{})

	unionIface = reflect.TypeOf((*Union)(nil)).Elem()
	enumIface  = reflect.TypeOf((*Enum)(nil)).Elem()
	errIface   = reflect.TypeOf((*error)(nil)).Elem()
)

// Compiler derives conversion plans from Go types by reflection.
// Compiled results are cached per type, and named user types register
// one specification entry each on first compilation.
type Compiler struct {
	cache sync.Map // reflect.Type -> *CompiledType

	mu       sync.Mutex
	inFlight map[reflect.Type]*CompiledType
	entries  []spec.Entry
	byName   map[string]reflect.Type
}

// NewCompiler creates an empty Compiler.
func NewCompiler() *Compiler {
	return &Compiler{
		inFlight: make(map[reflect.Type]*CompiledType),
		byName:   make(map[string]reflect.Type),
	}
}

// Compile derives the conversion plan and type reference for a Go type.
func (c *Compiler) Compile(t reflect.Type) (*CompiledType, error) {
	if t == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("Go type cannot be nil").
			Build()
	}
	if cached, ok := c.cache.Load(t); ok {
		return cached.(*CompiledType), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compile(t, nil)
}

// Entries returns the user-defined-type entries registered so far, in
// first-compilation order. The slice is a copy.
func (c *Compiler) Entries() []spec.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]spec.Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Compiler) compile(t reflect.Type, path []string) (*CompiledType, error) {
	if cached, ok := c.cache.Load(t); ok {
		return cached.(*CompiledType), nil
	}
	// Recursive types hit their own in-flight entry; its Ref is already
	// set, and the plan fills in once the outer compile returns.
	if ct, ok := c.inFlight[t]; ok {
		return ct, nil
	}

	ct, err := c.compileNew(t, path)
	if err != nil {
		return nil, err
	}
	c.cache.Store(t, ct)
	return ct, nil
}

func (c *Compiler) compileNew(t reflect.Type, path []string) (*CompiledType, error) {
	switch t {
	case unitType:
		return &CompiledType{GoType: t, Kind: KindVoid, Ref: spec.PrimVoid}, nil
	case u128Type:
		return &CompiledType{GoType: t, Kind: KindU128, Ref: spec.PrimU128}, nil
	case i128Type:
		return &CompiledType{GoType: t, Kind: KindI128, Ref: spec.PrimI128}, nil
	case symbolType:
		return &CompiledType{GoType: t, Kind: KindSymbol, Ref: spec.PrimSymbol}, nil
	case addressType:
		return &CompiledType{GoType: t, Kind: KindAddress, Ref: spec.PrimAddress}, nil
	}

	// Pointers are options even when the pointee's methods promote an
	// interface onto the pointer type.
	if t.Kind() == reflect.Ptr {
		if t.Elem() == unitType {
			return nil, errors.Unsupported(errors.PhaseCompile, "option of unit (absence is indistinguishable from presence)")
		}
		if t.Elem().Kind() == reflect.Ptr {
			return nil, errors.Unsupported(errors.PhaseCompile, "option of option (inner absence is indistinguishable from outer absence)")
		}
		elem, err := c.compile(t.Elem(), append(path, "[some]"))
		if err != nil {
			return nil, err
		}
		return &CompiledType{GoType: t, Kind: KindOption, Ref: spec.Option{Elem: elem.Ref}, Elem: elem}, nil
	}

	if t.Implements(enumIface) {
		return c.compileEnum(t, path)
	}
	if t.Implements(unionIface) {
		return c.compileUnion(t, path)
	}

	switch t.Kind() {
	case reflect.Bool:
		return &CompiledType{GoType: t, Kind: KindBool, Ref: spec.PrimBool}, nil
	case reflect.Uint32:
		return &CompiledType{GoType: t, Kind: KindU32, Ref: spec.PrimU32}, nil
	case reflect.Int32:
		return &CompiledType{GoType: t, Kind: KindI32, Ref: spec.PrimI32}, nil
	case reflect.Uint64:
		return &CompiledType{GoType: t, Kind: KindU64, Ref: spec.PrimU64}, nil
	case reflect.Int64:
		return &CompiledType{GoType: t, Kind: KindI64, Ref: spec.PrimI64}, nil
	case reflect.String:
		return &CompiledType{GoType: t, Kind: KindString, Ref: spec.PrimString}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &CompiledType{GoType: t, Kind: KindBytes, Ref: spec.PrimBytes}, nil
		}
		elem, err := c.compile(t.Elem(), append(path, "[elem]"))
		if err != nil {
			return nil, err
		}
		return &CompiledType{GoType: t, Kind: KindVec, Ref: spec.Vec{Elem: elem.Ref}, Elem: elem}, nil
	case reflect.Map:
		key, err := c.compile(t.Key(), append(path, "[key]"))
		if err != nil {
			return nil, err
		}
		value, err := c.compile(t.Elem(), append(path, "[value]"))
		if err != nil {
			return nil, err
		}
		return &CompiledType{
			GoType: t,
			Kind:   KindMap,
			Ref:    spec.Map{Key: key.Ref, Value: value.Ref},
			Key:    key,
			Value:  value,
		}, nil
	case reflect.Struct:
		return c.compileStruct(t, path)
	default:
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(t.String()).
			Detail("unsupported Go kind %s", t.Kind()).
			Build()
	}
}

func (c *Compiler) compileStruct(t reflect.Type, path []string) (*CompiledType, error) {
	name, err := c.register(t, path)
	if err != nil {
		return nil, err
	}

	ct := &CompiledType{GoType: t, Kind: KindStruct, Ref: spec.Named{Name: name}}
	c.inFlight[t] = ct
	defer delete(c.inFlight, t)

	var specFields []spec.Field
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		specName := fieldSpecName(f)
		if specName == "" {
			continue
		}
		ft, err := c.compile(f.Type, append(path, specName))
		if err != nil {
			return nil, err
		}
		ct.Fields = append(ct.Fields, CompiledField{
			Name:     f.Name,
			SpecName: specName,
			Index:    i,
			Type:     ft,
		})
		specFields = append(specFields, spec.Field{Name: specName, Type: ft.Ref})
	}

	ct.Entry = spec.StructEntry{Name: name, Fields: specFields}
	c.entries = append(c.entries, ct.Entry)
	return ct, nil
}

func (c *Compiler) compileUnion(t reflect.Type, path []string) (*CompiledType, error) {
	if t.Kind() != reflect.Struct {
		return nil, errors.TypeMismatch(errors.PhaseCompile, path, t.String(), "union struct")
	}
	name, err := c.register(t, path)
	if err != nil {
		return nil, err
	}

	ct := &CompiledType{GoType: t, Kind: KindUnion, Ref: spec.Named{Name: name}}
	c.inFlight[t] = ct
	defer delete(c.inFlight, t)

	var specCases []spec.UnionCase
	seen := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == unionTag {
			continue
		}
		if !f.IsExported() {
			continue
		}
		if f.Type.Kind() != reflect.Ptr {
			return nil, errors.TypeMismatch(errors.PhaseCompile,
				append(path, f.Name), f.Type.String(), "pointer case field")
		}
		caseName := fieldSpecName(f)
		if caseName == "" {
			continue
		}
		if prev, dup := seen[caseName]; dup {
			return nil, errors.InvalidData(errors.PhaseCompile, path,
				"union cases "+prev+" and "+f.Name+" share the discriminant "+caseName)
		}
		seen[caseName] = f.Name

		cc := CompiledCase{Name: caseName, GoName: f.Name, Index: i}
		sc := spec.UnionCase{Name: caseName}
		if f.Type.Elem() != unitType {
			payload, err := c.compile(f.Type.Elem(), append(path, caseName))
			if err != nil {
				return nil, err
			}
			cc.Payload = payload
			sc.Payload = payload.Ref
		}
		ct.Cases = append(ct.Cases, cc)
		specCases = append(specCases, sc)
	}
	if len(ct.Cases) == 0 {
		return nil, errors.InvalidData(errors.PhaseCompile, path, "union has no cases")
	}

	ct.Entry = spec.UnionEntry{Name: name, Cases: specCases}
	c.entries = append(c.entries, ct.Entry)
	return ct, nil
}

func (c *Compiler) compileEnum(t reflect.Type, path []string) (*CompiledType, error) {
	if t.Kind() != reflect.Uint32 {
		return nil, errors.TypeMismatch(errors.PhaseCompile, path, t.String(), "uint32-based enum")
	}
	name, err := c.register(t, path)
	if err != nil {
		return nil, err
	}

	cases := reflect.Zero(t).Interface().(Enum).EnumCases()
	if len(cases) == 0 {
		return nil, errors.InvalidData(errors.PhaseCompile, path, "enum declares no cases")
	}
	seen := make(map[uint32]string, len(cases))
	for _, ec := range cases {
		if prev, dup := seen[ec.Value]; dup {
			return nil, errors.InvalidData(errors.PhaseCompile, path,
				"enum cases "+prev+" and "+ec.Name+" share one discriminant")
		}
		seen[ec.Value] = ec.Name
	}

	ct := &CompiledType{GoType: t, Ref: spec.Named{Name: name}, Enum: cases}
	if t.Implements(errIface) {
		ct.Kind = KindErrorEnum
		ct.Entry = spec.ErrorEnumEntry{Name: name, Cases: cases}
	} else {
		ct.Kind = KindEnum
		ct.Entry = spec.EnumEntry{Name: name, Cases: cases}
	}
	c.entries = append(c.entries, ct.Entry)
	return ct, nil
}

// register claims a specification entry name for a Go type. Two
// distinct Go types cannot share one entry name within a compiler.
func (c *Compiler) register(t reflect.Type, path []string) (string, error) {
	name := t.Name()
	if name == "" {
		return "", errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(t.String()).
			Detail("anonymous types cannot be specification entries").
			Build()
	}
	if prev, ok := c.byName[name]; ok && prev != t {
		return "", errors.DuplicateName(name)
	}
	c.byName[name] = t
	return name, nil
}

// fieldSpecName returns the specification name for a struct field:
// the contract tag when present, otherwise the lower_snake_case form
// of the Go name. A "-" tag excludes the field.
func fieldSpecName(f reflect.StructField) string {
	if tag := f.Tag.Get("contract"); tag != "" {
		if tag == "-" {
			return ""
		}
		return tag
	}
	return toSnakeCase(f.Name)
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
