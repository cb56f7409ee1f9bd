package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type yamlMapper struct {
	Namespace  string           `yaml:"namespace"`
	Statements []*yamlStatement `yaml:"statements"`
}

type yamlStatement struct {
	ID            string   `yaml:"id"`
	Kind          string   `yaml:"kind"`
	SQL           string   `yaml:"sql"`
	Script        string   `yaml:"script"`
	Params        []string `yaml:"params"`
	MapKey        string   `yaml:"map_key"`
	GeneratedKeys bool     `yaml:"generated_keys"`
}

func parseYAML(filename string, src []byte, vars map[string]string) ([]*Mapper, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	expand := varReplacer(vars)
	var mappers []*Mapper
	for {
		var doc yamlMapper
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("definition: failed to decode YAML file %s: %w", filename, err)
		}
		m := &Mapper{Namespace: doc.Namespace}
		for _, s := range doc.Statements {
			m.Statements = append(m.Statements, &Statement{
				ID:            s.ID,
				Kind:          s.Kind,
				SQL:           expand.Replace(s.SQL),
				Script:        expand.Replace(s.Script),
				Params:        s.Params,
				MapKey:        s.MapKey,
				GeneratedKeys: s.GeneratedKeys,
			})
		}
		mappers = append(mappers, m)
	}
	return mappers, nil
}

// varReplacer substitutes ${var.<name>} the way HCL templates do.
func varReplacer(vars map[string]string) *strings.Replacer {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "${var."+k+"}", v)
	}
	return strings.NewReplacer(pairs...)
}
