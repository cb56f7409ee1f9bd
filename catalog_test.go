package quarry

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Kind
// =============================================================================

func TestParseKind(t *testing.T) {
	t.Parallel()
	tests := map[string]Kind{
		"insert":   KindCreate,
		"CREATE":   KindCreate,
		"update":   KindMutate,
		" mutate ": KindMutate,
		"delete":   KindRemove,
		"remove":   KindRemove,
		"Select":   KindFetch,
		"fetch":    KindFetch,
		"flush":    KindUnknown,
		"":         KindUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseKind(in), in)
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Unknown", KindUnknown.String())
	assert.Equal(t, "Create", KindCreate.String())
	assert.Equal(t, "Mutate", KindMutate.String())
	assert.Equal(t, "Remove", KindRemove.String())
	assert.Equal(t, "Fetch", KindFetch.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

// =============================================================================
// Statement identity
// =============================================================================

type namedMapper interface {
	Get() error
}

func TestQualifiedName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "github.com/jward/quarry.namedMapper", QualifiedName(TypeOf[namedMapper]()))
	assert.Equal(t, "int", QualifiedName(reflect.TypeOf(0)))
	assert.Equal(t, "<nil>", QualifiedName(nil))
	assert.Equal(t, "github.com/jward/quarry.namedMapper.Get", StatementID(TypeOf[namedMapper](), "Get"))
}

func TestStatementNamespace(t *testing.T) {
	t.Parallel()
	s := &Statement{ID: "example.com/app.Accounts.Find"}
	assert.Equal(t, "example.com/app.Accounts", s.Namespace())
	assert.Equal(t, "", (&Statement{ID: "bare"}).Namespace())
}

// =============================================================================
// Catalog
// =============================================================================

func TestCatalog_AddLookup(t *testing.T) {
	t.Parallel()
	c := NewCatalog()
	require.NoError(t, c.Add(
		&Statement{ID: "a.B.Find", Kind: KindFetch},
		&Statement{ID: "a.B.Save", Kind: KindCreate},
	))

	s, ok := c.Lookup("a.B.Find")
	require.True(t, ok)
	assert.Equal(t, KindFetch, s.Kind)

	_, ok = c.Lookup("a.B.Nope")
	assert.False(t, ok)
	assert.True(t, c.Has("a.B.Save"))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a.B.Find", "a.B.Save"}, c.IDs())
}

func TestCatalog_AllOrNothing(t *testing.T) {
	t.Parallel()
	c := NewCatalog()
	require.NoError(t, c.Add(&Statement{ID: "a.B.Find"}))

	err := c.Add(&Statement{ID: "a.B.New"}, &Statement{ID: "a.B.Find"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateStatement))
	assert.False(t, c.Has("a.B.New"), "nothing is added when one statement is rejected")

	err = c.Add(&Statement{ID: "x.Y.One"}, &Statement{ID: "x.Y.One"})
	assert.ErrorIs(t, err, ErrDuplicateStatement)

	assert.Error(t, c.Add(&Statement{}))
	assert.Error(t, c.Add(nil))
	assert.Equal(t, 1, c.Len())
}

func TestCatalog_HasNamespace(t *testing.T) {
	t.Parallel()
	c := NewCatalog()
	require.NoError(t, c.Add(&Statement{ID: "a.Accounts.Find"}))

	assert.True(t, c.HasNamespace("a.Accounts"))
	assert.False(t, c.HasNamespace("a.Account"))
	assert.False(t, c.HasNamespace("a.Accounts.Find"))
}
