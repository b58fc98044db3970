package probe

import (
	"fmt"
	"strconv"
	"strings"

	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/source"
	"opcheck/internal/types"
)

// Var is a name bound for case expressions.
type Var struct {
	Name string
	Type types.TypeID
	Kind hir.VarKind
}

// Field is a declared field of a nominal type.
type Field struct {
	Type     types.TypeID
	Readonly bool
}

// Env is the type environment a probe document declares. It owns its
// interner; one Env serves one goroutine.
type Env struct {
	Types     *types.Interner
	names     map[string]types.TypeID
	vars      map[string]Var
	fields    map[types.TypeID]map[string]Field
	Enclosing types.TypeID
}

// NewEnv returns an environment holding only the built-in types.
func NewEnv() *Env {
	return &Env{
		Types:  types.NewInterner(),
		names:  make(map[string]types.TypeID),
		vars:   make(map[string]Var),
		fields: make(map[types.TypeID]map[string]Field),
	}
}

// BuildEnv registers every declaration of doc. Declarations may refer to
// each other in any order.
func BuildEnv(doc *Document) (*Env, error) {
	env := NewEnv()
	in := env.Types
	var errs ValidationError
	fail := func(format string, args ...any) {
		errs.Issues = append(errs.Issues, fmt.Sprintf(format, args...))
	}

	// pass 1: allocate every named type
	nominals := []struct {
		kind  types.Kind
		decls []NominalDecl
	}{
		{types.KindClass, doc.Classes},
		{types.KindInterface, doc.Interfaces},
		{types.KindStruct, doc.Structs},
	}
	for _, group := range nominals {
		for _, d := range group.decls {
			env.names[d.Name] = in.RegisterNominal(group.kind, types.NominalInfo{
				Name:   d.Name,
				Sealed: d.Sealed,
				Size:   d.Size,
			})
		}
	}
	for _, d := range doc.Enums {
		info := types.EnumInfo{Name: d.Name}
		if d.Underlying != "" {
			under, ok := in.PrimitiveByName(d.Underlying)
			if !ok || !in.IsPrimitiveInteger(under) {
				fail("enum %q: underlying type %q is not an integer type", d.Name, d.Underlying)
			} else {
				info.Underlying = under
			}
		}
		next := int64(0)
		for _, m := range d.Members {
			name, value, ok := parseEnumMember(m, next)
			if !ok {
				fail("enum %q: bad member %q", d.Name, m)
				continue
			}
			info.Members = append(info.Members, types.EnumMember{Name: name, Value: value})
			next = value + 1
		}
		env.names[d.Name] = in.RegisterEnum(info)
	}
	for _, d := range doc.Unions {
		env.names[d.Name] = in.RegisterUnion(types.UnionInfo{Name: d.Name})
	}
	for _, d := range doc.TypeParams {
		env.names[d.Name] = in.RegisterTypeParam(types.TypeParamInfo{
			Name:      d.Name,
			Reference: d.Reference,
			Value:     d.Value,
		})
	}

	// pass 2: fill in references between declarations
	for _, group := range nominals {
		for _, d := range group.decls {
			id := env.names[d.Name]
			if group.kind == types.KindClass && d.Base != "" {
				base, err := env.ResolveTypeString(d.Base)
				switch {
				case err != nil:
					fail("class %q: base: %v", d.Name, err)
				case in.Kind(base) != types.KindClass:
					fail("class %q: base %q is not a class", d.Name, d.Base)
				default:
					info, _ := in.NominalInfo(id)
					info.Base = base
				}
			}
			for _, name := range d.Interfaces {
				iface, err := env.ResolveTypeString(name)
				if err != nil || in.Kind(iface) != types.KindInterface {
					fail("%s %q: %q is not an interface", group.kind, d.Name, name)
					continue
				}
				info, _ := in.NominalInfo(id)
				info.Interfaces = append(info.Interfaces, iface)
			}
			for _, op := range d.Operators {
				decl, err := env.operatorDecl(op)
				if err != nil {
					fail("%s %q: operator %q: %v", group.kind, d.Name, op.Op, err)
					continue
				}
				info, _ := in.NominalInfo(id)
				info.Operators = append(info.Operators, decl)
			}
			for _, f := range d.Fields {
				ft, err := env.ResolveTypeString(f.Type)
				if err != nil {
					fail("%s %q: field %q: %v", group.kind, d.Name, f.Name, err)
					continue
				}
				if env.fields[id] == nil {
					env.fields[id] = make(map[string]Field)
				}
				env.fields[id][f.Name] = Field{Type: ft, Readonly: f.Readonly}
			}
		}
	}
	for _, d := range doc.Unions {
		info, _ := in.UnionInfo(env.names[d.Name])
		for _, m := range d.Members {
			mt, err := env.ResolveTypeString(m.Type)
			if err != nil {
				fail("union %q: member %q: %v", d.Name, m.Tag, err)
				continue
			}
			info.Members = append(info.Members, types.UnionMember{Tag: m.Tag, Type: mt})
		}
	}
	for _, d := range doc.TypeParams {
		info, _ := in.TypeParamInfo(env.names[d.Name])
		for _, c := range d.Constraints {
			ct, err := env.ResolveTypeString(c)
			if err != nil {
				fail("typeparam %q: constraint %q: %v", d.Name, c, err)
				continue
			}
			info.Constraints = append(info.Constraints, ct)
		}
	}

	for _, v := range doc.Vars {
		vt, err := env.ResolveTypeString(v.Type)
		if err != nil {
			fail("var %q: %v", v.Name, err)
			continue
		}
		env.Declare(v.Name, vt, varKind(v.Kind))
	}
	if doc.Options.Enclosing != "" {
		encl, err := env.ResolveTypeString(doc.Options.Enclosing)
		if err != nil {
			fail("options.enclosing: %v", err)
		} else {
			env.Enclosing = encl
		}
	}

	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return env, nil
}

func varKind(kind string) hir.VarKind {
	switch kind {
	case "param":
		return hir.VarParam
	case "const":
		return hir.VarConst
	}
	return hir.VarLocal
}

// parseEnumMember accepts "Name" or "Name = 5".
func parseEnumMember(s string, next int64) (string, int64, bool) {
	name, value, hasValue := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", 0, false
	}
	if !hasValue {
		return name, next, true
	}
	v, err := strconv.ParseInt(strings.TrimSpace(value), 0, 64)
	if err != nil {
		return "", 0, false
	}
	return name, v, true
}

func (env *Env) operatorDecl(op OperatorDecl) (types.OperatorDecl, error) {
	decl := types.OperatorDecl{Symbol: op.Op}
	if len(op.Params) == 0 || len(op.Params) > 2 {
		return decl, fmt.Errorf("needs one or two params, got %d", len(op.Params))
	}
	for _, p := range op.Params {
		pt, err := env.ResolveTypeString(p)
		if err != nil {
			return decl, err
		}
		decl.Params = append(decl.Params, pt)
	}
	rt, err := env.ResolveTypeString(op.Result)
	if err != nil {
		return decl, fmt.Errorf("result: %w", err)
	}
	decl.Result = rt
	return decl, nil
}

// Declare binds name, replacing an earlier binding.
func (env *Env) Declare(name string, ty types.TypeID, kind hir.VarKind) {
	env.vars[name] = Var{Name: name, Type: ty, Kind: kind}
}

// Lookup finds a bound variable.
func (env *Env) Lookup(name string) (Var, bool) {
	v, ok := env.vars[name]
	return v, ok
}

// VarNames lists the bound variables in no particular order.
func (env *Env) VarNames() []string {
	names := make([]string, 0, len(env.vars))
	for name := range env.vars {
		names = append(names, name)
	}
	return names
}

// Field finds a declared field of a nominal type.
func (env *Env) Field(owner types.TypeID, name string) (Field, bool) {
	f, ok := env.fields[owner][name]
	return f, ok
}

// TypeByName resolves a declared or built-in type name.
func (env *Env) TypeByName(name string) (types.TypeID, bool) {
	if id, ok := env.names[name]; ok {
		return id, true
	}
	return env.Types.PrimitiveByName(name)
}

// IsTypeName reports names that denote a type; the parser uses it to
// recognise casts.
func (env *Env) IsTypeName(name string) bool {
	if _, isVar := env.vars[name]; isVar {
		return false
	}
	_, ok := env.TypeByName(name)
	return ok
}

// ResolveType maps a parsed type expression to a TypeID.
func (env *Env) ResolveType(t *TypeExpr) (types.TypeID, error) {
	if t == nil {
		return types.NoTypeID, fmt.Errorf("missing type")
	}
	if t.Kind == TypeName {
		id, ok := env.TypeByName(t.Name)
		if !ok {
			return types.NoTypeID, fmt.Errorf("unknown type %q", t.Name)
		}
		return id, nil
	}
	elem, err := env.ResolveType(t.Elem)
	if err != nil {
		return types.NoTypeID, err
	}
	in := env.Types
	switch t.Kind {
	case TypePointer:
		return in.Pointer(elem), nil
	case TypeNullable:
		if in.IsReferenceType(elem) {
			return types.NoTypeID, fmt.Errorf("'%s?' wraps a reference type", types.Label(in, elem))
		}
		return in.Nullable(elem), nil
	case TypeRef:
		return in.Reference(elem), nil
	case TypeOpt:
		return in.Optional(elem), nil
	}
	return types.NoTypeID, fmt.Errorf("bad type expression %s", t)
}

// ResolveTypeString parses and resolves a type written in a declaration.
func (env *Env) ResolveTypeString(s string) (types.TypeID, error) {
	bag := diag.NewBag(4)
	t, ok := ParseType(source.FileID(0), 0, []byte(s), ParseOptions{Reporter: diag.BagReporter{Bag: bag}})
	if !ok {
		if items := bag.Items(); len(items) > 0 {
			return types.NoTypeID, fmt.Errorf("type %q: %s", s, items[0].Message)
		}
		return types.NoTypeID, fmt.Errorf("bad type %q", s)
	}
	return env.ResolveType(t)
}
