package bindgen

import (
	"fmt"
	"go/format"
	"sort"
	"strings"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/spec"
)

const sdkModule = "github.com/wippyai/contract-sdk"

func (g *generator) emit() ([]byte, error) {
	g.state = stateEmit

	var functions []spec.FunctionEntry
	for _, e := range g.spec.Entries() {
		switch e := e.(type) {
		case spec.FunctionEntry:
			functions = append(functions, e)
		case spec.StructEntry:
			if err := g.emitStruct(e); err != nil {
				return nil, err
			}
		case spec.UnionEntry:
			if err := g.emitUnion(e); err != nil {
				return nil, err
			}
		case spec.EnumEntry:
			g.emitEnum(e.EntryName(), e.Doc, e.Cases, false)
		case spec.ErrorEnumEntry:
			g.emitEnum(e.EntryName(), e.Doc, e.Cases, true)
		}
	}
	if err := g.emitClient(functions); err != nil {
		return nil, err
	}

	src := g.assemble()
	formatted, err := format.Source([]byte(src))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseGen, errors.KindInvalidData, err, "generated source does not parse")
	}
	g.state = stateDone
	return formatted, nil
}

func (g *generator) assemble() string {
	var sb strings.Builder
	sb.WriteString("// Code generated by spectool. DO NOT EDIT.\n\n")
	sb.WriteString("package " + g.opts.Package + "\n\n")

	if len(g.imports) > 0 {
		paths := make([]string, 0, len(g.imports))
		for p := range g.imports {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		sb.WriteString("import (\n")
		for _, p := range paths {
			sb.WriteString("\t" + `"` + p + `"` + "\n")
		}
		sb.WriteString(")\n\n")
	}

	sb.WriteString(g.out.String())
	return sb.String()
}

func (g *generator) emitStruct(e spec.StructEntry) error {
	g.docComment(e.Doc, e.EntryName(), "struct")
	fmt.Fprintf(&g.out, "type %s struct {\n", g.types[e.Name].goName)
	for _, f := range e.Fields {
		ft, err := g.goType(f.Type)
		if err != nil {
			return err
		}
		fmt.Fprintf(&g.out, "\t%s %s `contract:%q`\n", exportName(f.Name), ft, f.Name)
	}
	g.out.WriteString("}\n\n")
	return nil
}

func (g *generator) emitUnion(e spec.UnionEntry) error {
	g.imports[sdkModule+"/convert"] = true
	g.docComment(e.Doc, e.EntryName(), "union")
	fmt.Fprintf(&g.out, "type %s struct {\n", g.types[e.Name].goName)
	g.out.WriteString("\tconvert.UnionTag\n")
	for _, c := range e.Cases {
		ct := "*convert.Unit"
		if c.Payload != nil {
			pt, err := g.goType(c.Payload)
			if err != nil {
				return err
			}
			ct = "*" + pt
		}
		fmt.Fprintf(&g.out, "\t%s %s `contract:%q`\n", exportName(c.Name), ct, c.Name)
	}
	g.out.WriteString("}\n\n")
	return nil
}

func (g *generator) emitEnum(name, doc string, cases []spec.EnumCase, isError bool) {
	g.imports[sdkModule+"/convert"] = true
	goName := g.types[name].goName

	g.docComment(doc, name, "enum")
	fmt.Fprintf(&g.out, "type %s uint32\n\n", goName)

	g.out.WriteString("const (\n")
	for _, c := range cases {
		fmt.Fprintf(&g.out, "\t%s%s %s = %d\n", goName, exportName(c.Name), goName, c.Value)
	}
	g.out.WriteString(")\n\n")

	fmt.Fprintf(&g.out, "func (%s) EnumCases() []convert.EnumCase {\n", goName)
	g.out.WriteString("\treturn []convert.EnumCase{\n")
	for _, c := range cases {
		fmt.Fprintf(&g.out, "\t\t{Name: %q, Value: %d},\n", c.Name, c.Value)
	}
	g.out.WriteString("\t}\n}\n\n")

	if isError {
		g.imports["fmt"] = true
		fmt.Fprintf(&g.out, "func (e %s) Error() string {\n", goName)
		g.out.WriteString("\tswitch e {\n")
		for _, c := range cases {
			fmt.Fprintf(&g.out, "\tcase %s%s:\n\t\treturn %q\n",
				goName, exportName(c.Name), name+"."+c.Name)
		}
		g.out.WriteString("\t}\n")
		fmt.Fprintf(&g.out, "\treturn fmt.Sprintf(\"%s(%%d)\", uint32(e))\n}\n\n", name)
	}
}

func (g *generator) emitClient(functions []spec.FunctionEntry) error {
	g.imports[sdkModule+"/val"] = true

	g.out.WriteString("// Client invokes contract functions through a host environment.\n")
	g.out.WriteString("type Client struct {\n\tenv val.Env\n\tcontract val.Val\n}\n\n")
	g.out.WriteString("// NewClient binds a client to a contract value.\n")
	g.out.WriteString("func NewClient(env val.Env, contract val.Val) *Client {\n")
	g.out.WriteString("\treturn &Client{env: env, contract: contract}\n}\n\n")

	for _, fe := range functions {
		if err := g.emitMethod(fe); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) emitMethod(fe spec.FunctionEntry) error {
	okRef, errRef, hasResult := splitReturn(fe.Return)

	var okType string
	voidOK := typeIsVoid(okRef)
	if !voidOK {
		var err error
		okType, err = g.goType(okRef)
		if err != nil {
			return err
		}
	}
	var errEnum string
	if hasResult {
		named, ok := errRef.(spec.Named)
		if !ok {
			return errors.Unsupported(errors.PhaseGen, fe.Name+": result error type must be a named error enum")
		}
		if _, isErr := g.types[named.Name].entry.(spec.ErrorEnumEntry); !isErr {
			return errors.Unsupported(errors.PhaseGen, fe.Name+": result error type must be a named error enum")
		}
		errEnum = g.types[named.Name].goName
	}

	// Signature.
	fmt.Fprintf(&g.out, "// %s calls the contract function %q.\n", exportName(fe.Name), fe.Name)
	fmt.Fprintf(&g.out, "func (c *Client) %s(", exportName(fe.Name))
	for i, p := range fe.Params {
		if i > 0 {
			g.out.WriteString(", ")
		}
		pt, err := g.goType(p.Type)
		if err != nil {
			return err
		}
		fmt.Fprintf(&g.out, "%s %s", paramIdent(p.Name), pt)
	}
	if voidOK {
		g.out.WriteString(") error {\n")
	} else {
		fmt.Fprintf(&g.out, ") (%s, error) {\n", okType)
	}

	ret := func(errExpr string) string {
		if voidOK {
			return "return " + errExpr
		}
		return "return zero, " + errExpr
	}

	if !voidOK {
		fmt.Fprintf(&g.out, "\tvar zero %s\n", okType)
	}
	fmt.Fprintf(&g.out, "\tfn, err := val.NewSymbol(c.env, %q)\n", fe.Name)
	fmt.Fprintf(&g.out, "\tif err != nil {\n\t\t%s\n\t}\n", ret("err"))

	args := "nil"
	if len(fe.Params) > 0 {
		g.imports[sdkModule+"/convert"] = true
		var names []string
		for i, p := range fe.Params {
			vn := fmt.Sprintf("v%d", i)
			fmt.Fprintf(&g.out, "\t%s, err := convert.ToVal(c.env, %s)\n", vn, paramIdent(p.Name))
			fmt.Fprintf(&g.out, "\tif err != nil {\n\t\t%s\n\t}\n", ret("err"))
			names = append(names, vn)
		}
		args = "[]val.Val{" + strings.Join(names, ", ") + "}"
	}

	g.imports[sdkModule+"/errors"] = true
	if voidOK && !hasResult {
		// err is already in scope; the returned value is unused.
		fmt.Fprintf(&g.out, "\t_, err = c.env.Invoke(c.contract, fn, %s)\n", args)
	} else {
		fmt.Fprintf(&g.out, "\tret, err := c.env.Invoke(c.contract, fn, %s)\n", args)
	}
	fmt.Fprintf(&g.out, "\tif err != nil {\n\t\t%s\n\t}\n", ret(fmt.Sprintf("errors.InvokeHostFailure(%q, err)", fe.Name)))

	if hasResult {
		g.imports[sdkModule+"/convert"] = true
		g.out.WriteString("\tif ret.Tag() == val.TagError {\n")
		fmt.Fprintf(&g.out, "\t\tee, derr := convert.FromVal[%s](c.env, ret)\n", errEnum)
		fmt.Fprintf(&g.out, "\t\tif derr != nil {\n\t\t\t%s\n\t\t}\n", ret(fmt.Sprintf("errors.InvokeDecodeFailure(%q, derr)", fe.Name)))
		fmt.Fprintf(&g.out, "\t\t%s\n\t}\n", ret("ee"))
	}

	if voidOK {
		g.out.WriteString("\treturn nil\n}\n\n")
		return nil
	}

	g.imports[sdkModule+"/convert"] = true
	fmt.Fprintf(&g.out, "\tout, derr := convert.FromVal[%s](c.env, ret)\n", okType)
	fmt.Fprintf(&g.out, "\tif derr != nil {\n\t\t%s\n\t}\n", ret(fmt.Sprintf("errors.InvokeDecodeFailure(%q, derr)", fe.Name)))
	g.out.WriteString("\treturn out, nil\n}\n\n")
	return nil
}

// splitReturn separates a top-level Result return into its arms.
func splitReturn(t spec.TypeRef) (ok, errArm spec.TypeRef, hasResult bool) {
	if r, isResult := t.(spec.Result); isResult {
		return r.OK, r.Err, true
	}
	return t, nil, false
}

func typeIsVoid(t spec.TypeRef) bool {
	p, ok := t.(spec.Prim)
	return t == nil || (ok && p == spec.PrimVoid)
}

func (g *generator) docComment(doc, name, kind string) {
	if doc == "" {
		fmt.Fprintf(&g.out, "// %s mirrors the contract %s %q.\n", g.types[name].goName, kind, name)
		return
	}
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		fmt.Fprintf(&g.out, "// %s\n", line)
	}
}

// goType maps a type reference to its Go spelling, recording imports.
func (g *generator) goType(t spec.TypeRef) (string, error) {
	switch t := t.(type) {
	case spec.Prim:
		return g.primType(t)
	case spec.Vec:
		elem, err := g.goType(t.Elem)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case spec.Map:
		key, err := g.goType(t.Key)
		if err != nil {
			return "", err
		}
		value, err := g.goType(t.Value)
		if err != nil {
			return "", err
		}
		return "map[" + key + "]" + value, nil
	case spec.Option:
		elem, err := g.goType(t.Elem)
		if err != nil {
			return "", err
		}
		return "*" + elem, nil
	case spec.Named:
		sym, ok := g.types[t.Name]
		if !ok {
			return "", errors.UnresolvedReference("bindings", t.Name)
		}
		return sym.goName, nil
	case spec.Result:
		return "", errors.Unsupported(errors.PhaseGen, "result type outside a function return position")
	default:
		return "", errors.Unsupported(errors.PhaseGen, t.String())
	}
}

func (g *generator) primType(p spec.Prim) (string, error) {
	switch p {
	case spec.PrimBool:
		return "bool", nil
	case spec.PrimU32:
		return "uint32", nil
	case spec.PrimI32:
		return "int32", nil
	case spec.PrimU64:
		return "uint64", nil
	case spec.PrimI64:
		return "int64", nil
	case spec.PrimU128:
		g.imports[sdkModule+"/val"] = true
		return "val.U128", nil
	case spec.PrimI128:
		g.imports[sdkModule+"/val"] = true
		return "val.I128", nil
	case spec.PrimString:
		return "string", nil
	case spec.PrimBytes:
		return "[]byte", nil
	case spec.PrimSymbol:
		g.imports[sdkModule+"/val"] = true
		return "val.Symbol", nil
	case spec.PrimAddress:
		g.imports[sdkModule+"/val"] = true
		return "val.Address", nil
	case spec.PrimLedgerKey, spec.PrimVoid:
		return "", errors.Unsupported(errors.PhaseGen, p.String()+" has no native binding type")
	default:
		return "", errors.Unsupported(errors.PhaseGen, p.String())
	}
}

// paramIdent keeps spec parameter names usable as Go identifiers.
func paramIdent(name string) string {
	switch name {
	case "func", "type", "map", "range", "return", "var", "go", "chan",
		"select", "defer", "interface", "struct", "package", "import",
		"const", "if", "else", "for", "switch", "case", "break",
		"continue", "default", "fallthrough", "goto", "c", "fn", "ret",
		"err", "zero", "out", "derr", "ee":
		return name + "Arg"
	}
	// vN is reserved for converted argument locals.
	if len(name) > 1 && name[0] == 'v' && allDigits(name[1:]) {
		return name + "Arg"
	}
	return name
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
