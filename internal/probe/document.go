package probe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Document is the decoded form of one probe file.
type Document struct {
	Options    Options         `toml:"options" yaml:"options"`
	Classes    []NominalDecl   `toml:"class" yaml:"class"`
	Interfaces []NominalDecl   `toml:"interface" yaml:"interface"`
	Structs    []NominalDecl   `toml:"struct" yaml:"struct"`
	Enums      []EnumDecl      `toml:"enum" yaml:"enum"`
	Unions     []UnionDecl     `toml:"union" yaml:"union"`
	TypeParams []TypeParamDecl `toml:"typeparam" yaml:"typeparam"`
	Vars       []VarDecl       `toml:"var" yaml:"var"`
	Cases      []Case          `toml:"case" yaml:"case"`
}

// Options are the ambient flags every case starts from.
type Options struct {
	Checked bool `toml:"checked" yaml:"checked"`
	Unsafe  bool `toml:"unsafe" yaml:"unsafe"`
	// Enclosing names the type whose declaration the cases sit in.
	Enclosing string `toml:"enclosing" yaml:"enclosing"`
}

// NominalDecl declares a class, interface or struct.
type NominalDecl struct {
	Name       string         `toml:"name" yaml:"name"`
	Base       string         `toml:"base" yaml:"base"`
	Interfaces []string       `toml:"interfaces" yaml:"interfaces"`
	Sealed     bool           `toml:"sealed" yaml:"sealed"`
	Size       uint32         `toml:"size" yaml:"size"`
	Fields     []FieldDecl    `toml:"fields" yaml:"fields"`
	Operators  []OperatorDecl `toml:"operators" yaml:"operators"`
}

type FieldDecl struct {
	Name     string `toml:"name" yaml:"name"`
	Type     string `toml:"type" yaml:"type"`
	Readonly bool   `toml:"readonly" yaml:"readonly"`
}

// OperatorDecl is a user-defined operator; Op is its source spelling.
type OperatorDecl struct {
	Op     string   `toml:"op" yaml:"op"`
	Params []string `toml:"params" yaml:"params"`
	Result string   `toml:"result" yaml:"result"`
}

type EnumDecl struct {
	Name       string   `toml:"name" yaml:"name"`
	Underlying string   `toml:"underlying" yaml:"underlying"`
	Members    []string `toml:"members" yaml:"members"`
}

type UnionDecl struct {
	Name    string            `toml:"name" yaml:"name"`
	Members []UnionMemberDecl `toml:"members" yaml:"members"`
}

type UnionMemberDecl struct {
	Tag  string `toml:"tag" yaml:"tag"`
	Type string `toml:"type" yaml:"type"`
}

type TypeParamDecl struct {
	Name        string   `toml:"name" yaml:"name"`
	Constraints []string `toml:"constraints" yaml:"constraints"`
	Reference   bool     `toml:"class" yaml:"class"`
	Value       bool     `toml:"struct" yaml:"struct"`
}

// VarDecl binds a name usable in case expressions. Kind is local (the
// default), param or const.
type VarDecl struct {
	Name string `toml:"name" yaml:"name"`
	Type string `toml:"type" yaml:"type"`
	Kind string `toml:"kind" yaml:"kind"`
}

// Case is one expression to resolve, with optional expectations.
type Case struct {
	Name string `toml:"name" yaml:"name"`
	Expr string `toml:"expr" yaml:"expr"`
	// Type is the expected type label of the result; empty skips the check.
	Type string `toml:"type" yaml:"type"`
	// Diagnostics lists expected diagnostic IDs in report order. Nil skips
	// the check; an empty list expects a clean resolution.
	Diagnostics []string `toml:"diagnostics" yaml:"diagnostics"`
	// Tree is the expected rendering of the rewritten tree.
	Tree    string `toml:"tree" yaml:"tree"`
	Checked *bool  `toml:"checked" yaml:"checked"`
	Unsafe  *bool  `toml:"unsafe" yaml:"unsafe"`
}

// IsProbePath reports whether path has a probe document extension.
func IsProbePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".yaml", ".yml":
		return true
	}
	return false
}

// Decode parses content according to the extension of path.
func Decode(path string, content []byte) (*Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return DecodeTOML(path, content)
	case ".yaml", ".yml":
		return DecodeYAML(path, content)
	}
	return nil, fmt.Errorf("%s: unsupported probe extension %q", path, filepath.Ext(path))
}

// DecodeTOML parses a TOML probe document and rejects unknown keys.
func DecodeTOML(path string, content []byte) (*Document, error) {
	var doc Document
	meta, err := toml.Decode(string(content), &doc)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("case") {
		return nil, fmt.Errorf("%s: missing [[case]]", path)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &doc, nil
}

// DecodeYAML parses a YAML probe document and rejects unknown keys.
func DecodeYAML(path string, content []byte) (*Document, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: document is empty", path)
		}
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	if len(doc.Cases) == 0 {
		return nil, fmt.Errorf("%s: missing case list", path)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &doc, nil
}

// ValidationError aggregates document problems found before checking.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	var b strings.Builder
	b.WriteString("invalid probe document:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

func (d *Document) validate() error {
	var errs ValidationError
	seen := make(map[string]string)
	declare := func(kind, name string) {
		if strings.TrimSpace(name) == "" {
			errs.Issues = append(errs.Issues, kind+" without a name")
			return
		}
		if prev, ok := seen[name]; ok {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s %q already declared as %s", kind, name, prev))
			return
		}
		seen[name] = kind
	}
	for _, c := range d.Classes {
		declare("class", c.Name)
	}
	for _, c := range d.Interfaces {
		declare("interface", c.Name)
	}
	for _, s := range d.Structs {
		declare("struct", s.Name)
	}
	for _, e := range d.Enums {
		declare("enum", e.Name)
	}
	for _, u := range d.Unions {
		declare("union", u.Name)
	}
	for _, tp := range d.TypeParams {
		declare("typeparam", tp.Name)
	}
	for _, v := range d.Vars {
		declare("var", v.Name)
		switch v.Kind {
		case "", "local", "param", "const":
		default:
			errs.Issues = append(errs.Issues, fmt.Sprintf("var %q has unknown kind %q", v.Name, v.Kind))
		}
	}
	for i, c := range d.Cases {
		if strings.TrimSpace(c.Expr) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("case[%d] %q has an empty expr", i, c.Name))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// CaseName returns a display name for case i.
func (d *Document) CaseName(i int) string {
	if name := strings.TrimSpace(d.Cases[i].Name); name != "" {
		return name
	}
	return fmt.Sprintf("case %d", i+1)
}
