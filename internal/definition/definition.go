package definition

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// Extensions lists the file extensions the loader reads, in lookup order.
var Extensions = []string{".hcl", ".yaml", ".yml"}

// Mapper is the set of statements declared for one namespace.
type Mapper struct {
	Namespace  string
	Source     string
	Statements []*Statement
}

// Statement is one declared statement. ID is relative to the namespace.
type Statement struct {
	ID            string
	Kind          string
	SQL           string
	Script        string
	Params        []string
	MapKey        string
	GeneratedKeys bool
}

// Parse decodes a definition file. The format is chosen by the extension
// of filename.
func Parse(filename string, src []byte, vars map[string]string) ([]*Mapper, error) {
	var (
		mappers []*Mapper
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hcl":
		mappers, err = parseHCL(filename, src, vars)
	case ".yaml", ".yml":
		mappers, err = parseYAML(filename, src, vars)
	default:
		return nil, fmt.Errorf("definition: %s: unsupported file type", filename)
	}
	if err != nil {
		return nil, err
	}
	for _, m := range mappers {
		m.Source = filename
		if err := validate(m); err != nil {
			return nil, fmt.Errorf("definition: %s: %w", filename, err)
		}
	}
	return mappers, nil
}

// LoadFS reads and parses the file name from fsys.
func LoadFS(fsys fs.FS, name string, vars map[string]string) ([]*Mapper, error) {
	src, err := fs.ReadFile(fsys, path.Clean(strings.TrimPrefix(filepath.ToSlash(name), "/")))
	if err != nil {
		return nil, fmt.Errorf("definition: reading %s: %w", name, err)
	}
	return Parse(name, src, vars)
}

// IsDefinitionFile reports whether path has one of Extensions.
func IsDefinitionFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
