package gen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/imports"
)

// QuarryImport is the import path generated adapters refer to.
const QuarryImport = "github.com/jward/quarry"

// Options controls Generate.
type Options struct {
	// Types names the interfaces to generate adapters for. Empty means all
	// interfaces in the file.
	Types []string
	// Filename is passed to imports.Process for error messages.
	Filename string
}

// Generate renders adapters for the selected interfaces of f. The output
// is formatted Go source in f's package with unused imports removed.
func Generate(f *File, opts Options) ([]byte, error) {
	selected, err := selectInterfaces(f, opts.Types)
	if err != nil {
		return nil, err
	}

	data := fileData{Package: f.Package}
	for _, imp := range f.Imports {
		if imp.Path == QuarryImport && imp.Name == "" {
			continue
		}
		data.Imports = append(data.Imports, imp)
	}
	for _, it := range selected {
		ad, err := newAdapterData(it)
		if err != nil {
			return nil, err
		}
		data.Adapters = append(data.Adapters, ad)
	}

	var buf bytes.Buffer
	if err := adapterTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("gen: execute template: %w", err)
	}

	filename := opts.Filename
	if filename == "" {
		filename = "mapper_gen.go"
	}
	out, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("gen: format output: %w\n%s", err, buf.String())
	}
	return out, nil
}

func selectInterfaces(f *File, names []string) ([]*Interface, error) {
	if len(names) == 0 {
		if len(f.Interfaces) == 0 {
			return nil, fmt.Errorf("gen: package %s declares no interfaces", f.Package)
		}
		return f.Interfaces, nil
	}
	out := make([]*Interface, 0, len(names))
	for _, name := range names {
		it, ok := f.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("gen: interface %s not found", name)
		}
		out = append(out, it)
	}
	return out, nil
}

type fileData struct {
	Package  string
	Imports  []Import
	Adapters []adapterData
}

type adapterData struct {
	Interface   string
	Struct      string
	Constructor string
	Methods     []methodData
}

type methodData struct {
	Name      string
	Signature string
	Args      string
	// Result is the non-error result type, empty when there is none.
	Result string
	// HasError is set when the method reports failures through an error
	// result; otherwise a failed call panics.
	HasError bool
}

func newAdapterData(it *Interface) (adapterData, error) {
	if it.Generic {
		return adapterData{}, fmt.Errorf("gen: %s: generic interfaces are not supported", it.Name)
	}
	if len(it.Embeds) > 0 {
		return adapterData{}, fmt.Errorf("gen: %s: embedded %s is not supported", it.Name, strings.Join(it.Embeds, ", "))
	}
	ad := adapterData{
		Interface:   it.Name,
		Struct:      lowerFirst(it.Name) + "Mapper",
		Constructor: "New" + upperFirst(it.Name) + "Mapper",
	}
	for _, m := range it.Methods {
		md, err := newMethodData(it, m)
		if err != nil {
			return adapterData{}, err
		}
		ad.Methods = append(ad.Methods, md)
	}
	return ad, nil
}

func newMethodData(it *Interface, m *Method) (methodData, error) {
	md := methodData{Name: m.Name, HasError: m.ReturnsError()}
	results := m.Results
	if md.HasError {
		results = results[:len(results)-1]
	}
	if len(results) > 1 {
		return methodData{}, fmt.Errorf("gen: %s.%s: at most one result besides error is supported", it.Name, m.Name)
	}
	if len(results) == 1 {
		md.Result = results[0]
	}

	params := make([]string, len(m.Params))
	args := make([]string, len(m.Params))
	used := make(map[string]bool, len(m.Params))
	for _, p := range m.Params {
		used[p.Name] = true
	}
	for i, p := range m.Params {
		name := p.Name
		if name == "" || name == "_" || reserved[name] {
			name = freshName(i, used)
		}
		typ := p.Type
		if p.Variadic {
			typ = "..." + typ
		}
		params[i] = name + " " + typ
		args[i] = name
	}
	md.Signature = "(" + strings.Join(params, ", ") + ")"
	if len(args) > 0 {
		md.Args = ", " + strings.Join(args, ", ")
	}
	switch {
	case len(m.Results) == 1:
		md.Signature += " " + m.Results[0]
	case len(m.Results) > 1:
		md.Signature += " (" + strings.Join(m.Results, ", ") + ")"
	}
	return md, nil
}

// reserved holds the identifiers generated method bodies declare.
var reserved = map[string]bool{"m": true, "out": true, "res": true, "err": true, "quarry": true}

// freshName returns a parameter name for an unnamed parameter that no
// other parameter uses.
func freshName(i int, used map[string]bool) string {
	for n := i; ; n++ {
		name := "p" + strconv.Itoa(n)
		if !used[name] && !reserved[name] {
			used[name] = true
			return name
		}
	}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

var adapterTemplate = template.Must(template.New("adapter").Parse(`// Code generated by quarry generate. DO NOT EDIT.

package {{.Package}}

import (
	"` + QuarryImport + `"
{{range .Imports}}	{{if .Name}}{{.Name}} {{end}}"{{.Path}}"
{{end}})
{{range .Adapters}}
type {{.Struct}} struct {
	proxy *quarry.Proxy
}

// {{.Constructor}} returns a {{.Interface}} whose methods run through p.
func {{.Constructor}}(p *quarry.Proxy) {{.Interface}} {
	return &{{.Struct}}{proxy: p}
}
{{$struct := .Struct}}{{range .Methods}}
func (m *{{$struct}}) {{.Name}}{{.Signature}} {
{{- if and .Result .HasError}}
	out, err := m.proxy.Invoke("{{.Name}}"{{.Args}})
	res, _ := out.({{.Result}})
	return res, err
{{- else if .HasError}}
	_, err := m.proxy.Invoke("{{.Name}}"{{.Args}})
	return err
{{- else if .Result}}
	out, err := m.proxy.Invoke("{{.Name}}"{{.Args}})
	if err != nil {
		panic(err)
	}
	res, _ := out.({{.Result}})
	return res
{{- else}}
	if _, err := m.proxy.Invoke("{{.Name}}"{{.Args}}); err != nil {
		panic(err)
	}
{{- end}}
}
{{end}}{{end}}`))
