package definition

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

type hclRoot struct {
	Mappers []*hclMapper `hcl:"mapper,block"`
}

type hclMapper struct {
	Namespace  string              `hcl:"namespace,label"`
	Selects    []*hclStatement     `hcl:"select,block"`
	Inserts    []*hclStatement     `hcl:"insert,block"`
	Updates    []*hclStatement     `hcl:"update,block"`
	Deletes    []*hclStatement     `hcl:"delete,block"`
	Statements []*hclKindStatement `hcl:"statement,block"`
}

type hclStatement struct {
	ID            string   `hcl:"id,label"`
	SQL           string   `hcl:"sql,optional"`
	Script        string   `hcl:"script,optional"`
	Params        []string `hcl:"params,optional"`
	MapKey        string   `hcl:"map_key,optional"`
	GeneratedKeys bool     `hcl:"generated_keys,optional"`
}

// hclKindStatement is the generic form, statement "ID" { kind = "..." }.
type hclKindStatement struct {
	ID            string   `hcl:"id,label"`
	Kind          string   `hcl:"kind"`
	SQL           string   `hcl:"sql,optional"`
	Script        string   `hcl:"script,optional"`
	Params        []string `hcl:"params,optional"`
	MapKey        string   `hcl:"map_key,optional"`
	GeneratedKeys bool     `hcl:"generated_keys,optional"`
}

func parseHCL(filename string, src []byte, vars map[string]string) ([]*Mapper, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("definition: failed to parse HCL file %s: %w", filename, diags)
	}

	var root hclRoot
	diags = gohcl.DecodeBody(file.Body, evalContext(vars), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("definition: failed to decode HCL file %s: %w", filename, diags)
	}

	mappers := make([]*Mapper, 0, len(root.Mappers))
	for _, hm := range root.Mappers {
		m := &Mapper{Namespace: hm.Namespace}
		for _, group := range []struct {
			kind  string
			stmts []*hclStatement
		}{
			{"select", hm.Selects},
			{"insert", hm.Inserts},
			{"update", hm.Updates},
			{"delete", hm.Deletes},
		} {
			for _, s := range group.stmts {
				m.Statements = append(m.Statements, s.translate(group.kind))
			}
		}
		for _, s := range hm.Statements {
			m.Statements = append(m.Statements, &Statement{
				ID:            s.ID,
				Kind:          s.Kind,
				SQL:           s.SQL,
				Script:        s.Script,
				Params:        s.Params,
				MapKey:        s.MapKey,
				GeneratedKeys: s.GeneratedKeys,
			})
		}
		mappers = append(mappers, m)
	}
	return mappers, nil
}

func (s *hclStatement) translate(kind string) *Statement {
	return &Statement{
		ID:            s.ID,
		Kind:          kind,
		SQL:           s.SQL,
		Script:        s.Script,
		Params:        s.Params,
		MapKey:        s.MapKey,
		GeneratedKeys: s.GeneratedKeys,
	}
}

// evalContext exposes vars to HCL expressions as var.<name>.
func evalContext(vars map[string]string) *hcl.EvalContext {
	vals := make(map[string]cty.Value, len(vars))
	for k, v := range vars {
		vals[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var": cty.ObjectVal(vals),
		},
	}
}
