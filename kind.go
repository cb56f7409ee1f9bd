package quarry

import "strings"

//go:generate stringer -type=Kind -trimprefix=Kind

// Kind is the command type of a registered statement. It is fixed by the
// statement definition and never inferred from the calling method.
type Kind int

const (
	// KindUnknown marks a malformed catalog entry. Binding a method to such a
	// statement fails with ErrUnknownCommandType.
	KindUnknown Kind = iota
	KindCreate
	KindMutate
	KindRemove
	KindFetch
)

// ParseKind maps a definition keyword to a Kind. Both the SQL verbs
// (insert, update, delete, select) and the kind names are accepted,
// case-insensitively. Anything else is KindUnknown.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insert", "create":
		return KindCreate
	case "update", "mutate":
		return KindMutate
	case "delete", "remove":
		return KindRemove
	case "select", "fetch":
		return KindFetch
	default:
		return KindUnknown
	}
}
