package definition

import (
	"errors"
	"fmt"
	"strings"
)

func validate(m *Mapper) error {
	if strings.TrimSpace(m.Namespace) == "" {
		return errors.New("mapper without namespace")
	}
	seen := make(map[string]bool, len(m.Statements))
	for _, s := range m.Statements {
		if s.ID == "" {
			return fmt.Errorf("%s: statement without id", m.Namespace)
		}
		if strings.Contains(s.ID, ".") {
			return fmt.Errorf("%s: statement id %q must not contain a dot", m.Namespace, s.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("%s: duplicate statement %q", m.Namespace, s.ID)
		}
		seen[s.ID] = true
		if s.Kind == "" {
			return fmt.Errorf("%s.%s: missing kind", m.Namespace, s.ID)
		}
		if (s.SQL == "") == (s.Script == "") {
			return fmt.Errorf("%s.%s: exactly one of sql and script must be set", m.Namespace, s.ID)
		}
	}
	return nil
}
