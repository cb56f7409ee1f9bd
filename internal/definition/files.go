package definition

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadFiles parses every definition file among paths. Directories are
// walked recursively; paths that do not exist are skipped.
func LoadFiles(paths []string, vars map[string]string) ([]*Mapper, error) {
	files, err := findDefinitionFiles(paths)
	if err != nil {
		return nil, err
	}
	var all []*Mapper
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("definition: reading %s: %w", file, err)
		}
		mappers, err := Parse(file, src, vars)
		if err != nil {
			return nil, err
		}
		all = append(all, mappers...)
	}
	return all, nil
}

// findDefinitionFiles walks paths and returns each definition file once,
// in discovery order.
func findDefinitionFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("definition: accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			if IsDefinitionFile(path) {
				add(path)
			}
			continue
		}
		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && IsDefinitionFile(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("definition: walking %s: %w", path, err)
		}
	}
	return files, nil
}
