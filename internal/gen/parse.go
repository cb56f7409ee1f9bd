package gen

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"
)

// File is the part of a Go source file adapters are generated from.
type File struct {
	Package    string
	Imports    []Import
	Interfaces []*Interface
}

// Import is one import spec. Name is the explicit package name, if any.
type Import struct {
	Name string
	Path string
}

// Interface is an interface type declaration.
type Interface struct {
	Name    string
	Methods []*Method
	// Embeds lists embedded interfaces and type constraints verbatim.
	Embeds []string
	// Generic is set when the declaration has type parameters.
	Generic bool
	Line    int
}

// Method is one method of an interface.
type Method struct {
	Name    string
	Params  []Param
	Results []string
}

// Param is one method parameter. Name is empty for unnamed parameters.
type Param struct {
	Name     string
	Type     string
	Variadic bool
}

// ReturnsError reports whether the last result is error.
func (m *Method) ReturnsError() bool {
	return len(m.Results) > 0 && m.Results[len(m.Results)-1] == "error"
}

// Lookup returns the interface named name.
func (f *File) Lookup(name string) (*Interface, bool) {
	for _, it := range f.Interfaces {
		if it.Name == name {
			return it, true
		}
	}
	return nil, false
}

// ParseInterfaces parses Go source and collects its package clause,
// imports and interface declarations.
func ParseInterfaces(ctx context.Context, src []byte) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("gen: tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("gen: syntax error near line %d", firstErrorLine(root))
	}

	f := &File{}
	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_clause":
			if name := firstNamed(child, "package_identifier"); name != nil {
				f.Package = name.Content(src)
			}
		case "import_declaration":
			imports, err := parseImports(child, src)
			if err != nil {
				return nil, err
			}
			f.Imports = append(f.Imports, imports...)
		case "type_declaration":
			f.Interfaces = append(f.Interfaces, parseTypeDecl(child, src)...)
		}
	}
	if f.Package == "" {
		return nil, errors.New("gen: missing package clause")
	}
	return f, nil
}

func parseImports(decl *sitter.Node, src []byte) ([]Import, error) {
	var specs []*sitter.Node
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		switch child.Type() {
		case "import_spec":
			specs = append(specs, child)
		case "import_spec_list":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if spec := child.NamedChild(j); spec.Type() == "import_spec" {
					specs = append(specs, spec)
				}
			}
		}
	}

	imports := make([]Import, 0, len(specs))
	for _, spec := range specs {
		pathNode := spec.ChildByFieldName("path")
		if pathNode == nil {
			continue
		}
		path, err := strconv.Unquote(pathNode.Content(src))
		if err != nil {
			return nil, fmt.Errorf("gen: import path %s: %w", pathNode.Content(src), err)
		}
		imp := Import{Path: path}
		if name := spec.ChildByFieldName("name"); name != nil {
			imp.Name = name.Content(src)
		}
		imports = append(imports, imp)
	}
	return imports, nil
}

func parseTypeDecl(decl *sitter.Node, src []byte) []*Interface {
	var out []*Interface
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		spec := decl.NamedChild(i)
		if spec.Type() != "type_spec" {
			continue
		}
		typ := spec.ChildByFieldName("type")
		name := spec.ChildByFieldName("name")
		if typ == nil || name == nil || typ.Type() != "interface_type" {
			continue
		}
		it := &Interface{
			Name:    name.Content(src),
			Generic: spec.ChildByFieldName("type_parameters") != nil,
			Line:    int(spec.StartPoint().Row) + 1,
		}
		for j := 0; j < int(typ.NamedChildCount()); j++ {
			elem := typ.NamedChild(j)
			switch elem.Type() {
			case "method_elem", "method_spec":
				it.Methods = append(it.Methods, parseMethod(elem, src))
			case "comment":
			default:
				it.Embeds = append(it.Embeds, elem.Content(src))
			}
		}
		out = append(out, it)
	}
	return out
}

func parseMethod(elem *sitter.Node, src []byte) *Method {
	m := &Method{}
	if name := elem.ChildByFieldName("name"); name != nil {
		m.Name = name.Content(src)
	}
	if params := elem.ChildByFieldName("parameters"); params != nil {
		m.Params = parseParams(params, src)
	}
	if result := elem.ChildByFieldName("result"); result != nil {
		if result.Type() == "parameter_list" {
			for _, p := range parseParams(result, src) {
				m.Results = append(m.Results, p.Type)
			}
		} else {
			m.Results = []string{result.Content(src)}
		}
	}
	return m
}

// parseParams flattens a parameter_list, expanding grouped names
// (a, b int) into one Param each.
func parseParams(list *sitter.Node, src []byte) []Param {
	var params []Param
	for i := 0; i < int(list.NamedChildCount()); i++ {
		decl := list.NamedChild(i)
		typ := decl.ChildByFieldName("type")
		if typ == nil {
			continue
		}
		switch decl.Type() {
		case "parameter_declaration":
			var names []string
			for j := 0; j < int(decl.NamedChildCount()); j++ {
				if n := decl.NamedChild(j); n.Type() == "identifier" {
					names = append(names, n.Content(src))
				}
			}
			if len(names) == 0 {
				names = []string{""}
			}
			for _, name := range names {
				params = append(params, Param{Name: name, Type: typ.Content(src)})
			}
		case "variadic_parameter_declaration":
			p := Param{Type: typ.Content(src), Variadic: true}
			if name := decl.ChildByFieldName("name"); name != nil {
				p.Name = name.Content(src)
			}
			params = append(params, p)
		}
	}
	return params
}

func firstNamed(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func firstErrorLine(n *sitter.Node) int {
	if n.IsError() || n.IsMissing() {
		return int(n.StartPoint().Row) + 1
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.HasError() {
			return firstErrorLine(c)
		}
	}
	return int(n.StartPoint().Row) + 1
}
