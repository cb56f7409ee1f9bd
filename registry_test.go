package quarry

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyMapper interface{}

type pingMapper interface {
	Ping() (int, error)
}

func noAnalysis() Option {
	return WithAnalyzer(AnalyzerFunc(func(*Configuration, reflect.Type) error { return nil }))
}

func TestRegister_IgnoresNonInterfaces(t *testing.T) {
	t.Parallel()
	cfg := NewConfiguration()

	require.NoError(t, cfg.Registry().Register(reflect.TypeOf(testAccount{})))
	require.NoError(t, cfg.Registry().Register(nil))
	assert.Empty(t, cfg.Registry().Registered())
}

func TestRegister_Duplicate(t *testing.T) {
	t.Parallel()
	cfg := NewConfiguration()

	require.NoError(t, RegisterFor[emptyMapper](cfg.Registry()))
	err := RegisterFor[emptyMapper](cfg.Registry())
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, "quarry: type is already known to the registry: github.com/jward/quarry.emptyMapper", err.Error())
	assert.True(t, cfg.HasMapper(TypeOf[emptyMapper]()), "a failed duplicate leaves the type registered")
}

func TestRegister_FromWithinAnalysis(t *testing.T) {
	t.Parallel()
	var selfErr, innerErr error
	cfg := NewConfiguration(WithAnalyzer(AnalyzerFunc(func(c *Configuration, iface reflect.Type) error {
		if iface != TypeOf[pingMapper]() {
			return nil
		}
		selfErr = c.AddMapper(iface)
		innerErr = c.AddMapper(TypeOf[emptyMapper]())
		return nil
	})))

	done := make(chan error, 1)
	go func() { done <- RegisterFor[pingMapper](cfg.Registry()) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Register did not return while its analyzer registered other types")
	}

	assert.ErrorIs(t, selfErr, ErrAlreadyRegistered)
	assert.NoError(t, innerErr)
	assert.True(t, cfg.HasMapper(TypeOf[pingMapper]()))
	assert.True(t, cfg.HasMapper(TypeOf[emptyMapper]()))
}

func TestRegister_NestedRegistrationSurvivesOuterFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	cfg := NewConfiguration(WithAnalyzer(AnalyzerFunc(func(c *Configuration, iface reflect.Type) error {
		if iface != TypeOf[pingMapper]() {
			return nil
		}
		if err := c.AddMapper(TypeOf[emptyMapper]()); err != nil {
			return err
		}
		return boom
	})))

	require.ErrorIs(t, RegisterFor[pingMapper](cfg.Registry()), boom)
	assert.False(t, cfg.HasMapper(TypeOf[pingMapper]()))
	assert.True(t, cfg.HasMapper(TypeOf[emptyMapper]()), "only the failed type is rolled back")
}

func TestRegister_RollsBackOnAnalyzerFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	var sawRegistered bool
	cfg := NewConfiguration(WithAnalyzer(AnalyzerFunc(func(c *Configuration, iface reflect.Type) error {
		sawRegistered = c.HasMapper(iface)
		return boom
	})))

	err := cfg.AddMapper(TypeOf[pingMapper]())
	require.ErrorIs(t, err, boom)
	assert.True(t, sawRegistered, "analysis runs with the type already marked known")
	assert.False(t, cfg.HasMapper(TypeOf[pingMapper]()))

	_, err = cfg.Registry().NewProxy(TypeOf[pingMapper](), &fakeSession{cfg: cfg})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegister_DefaultAnalyzerRejectsUnboundMethod(t *testing.T) {
	t.Parallel()
	cfg := NewConfiguration()

	err := RegisterFor[pingMapper](cfg.Registry())
	require.ErrorIs(t, err, ErrStatementNotFound)
	assert.Contains(t, err.Error(), "quarry: analyze github.com/jward/quarry.pingMapper")
	assert.False(t, cfg.HasMapper(TypeOf[pingMapper]()))

	// A later registration succeeds once the statement exists.
	require.NoError(t, cfg.AddStatements(&Statement{
		ID:   StatementID(TypeOf[pingMapper](), "Ping"),
		Kind: KindFetch,
		SQL:  "SELECT 1",
	}))
	require.NoError(t, RegisterFor[pingMapper](cfg.Registry()))
	assert.True(t, cfg.HasMapper(TypeOf[pingMapper]()))
}

func TestRegistered_Sorted(t *testing.T) {
	t.Parallel()
	cfg := NewConfiguration(noAnalysis())

	require.NoError(t, RegisterFor[pingMapper](cfg.Registry()))
	require.NoError(t, RegisterFor[emptyMapper](cfg.Registry()))
	assert.Equal(t, []reflect.Type{TypeOf[emptyMapper](), TypeOf[pingMapper]()}, cfg.Registry().Registered())
}

func TestNewProxy_Errors(t *testing.T) {
	t.Parallel()
	cfg := NewConfiguration(noAnalysis())
	other := NewConfiguration()
	require.NoError(t, RegisterFor[pingMapper](cfg.Registry()))

	_, err := cfg.Registry().NewProxy(TypeOf[emptyMapper](), &fakeSession{cfg: cfg})
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = cfg.Registry().NewProxy(TypeOf[pingMapper](), nil)
	assert.ErrorIs(t, err, ErrProxyCreationFailed)

	_, err = cfg.Registry().NewProxy(TypeOf[pingMapper](), &fakeSession{cfg: other})
	assert.ErrorIs(t, err, ErrProxyCreationFailed)

	p, err := cfg.Registry().NewProxy(TypeOf[pingMapper](), &fakeSession{cfg: cfg})
	require.NoError(t, err)
	assert.Equal(t, TypeOf[pingMapper](), p.Type())
	assert.NotNil(t, p.Session())
}

// pingAdapter is what "quarry generate" would emit for pingMapper.
type pingAdapter struct{ proxy *Proxy }

func (m *pingAdapter) Ping() (int, error) {
	out, err := m.proxy.Invoke("Ping")
	res, _ := out.(int)
	return res, err
}

func TestMapper(t *testing.T) {
	t.Parallel()
	cfg := NewConfiguration()
	require.NoError(t, cfg.AddStatements(&Statement{
		ID:   StatementID(TypeOf[pingMapper](), "Ping"),
		Kind: KindFetch,
		SQL:  "SELECT 1",
	}))
	require.NoError(t, RegisterFor[pingMapper](cfg.Registry()))
	sess := &fakeSession{cfg: cfg, result: 1}

	m, err := Mapper(cfg.Registry(), sess, func(p *Proxy) pingMapper { return &pingAdapter{proxy: p} })
	require.NoError(t, err)
	n, err := m.Ping()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = Mapper[pingMapper](cfg.Registry(), sess, nil)
	assert.ErrorIs(t, err, ErrProxyCreationFailed)

	_, err = Mapper(cfg.Registry(), sess, func(p *Proxy) emptyMapper { return p })
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestPlanFor_ConcurrentCallersShareOnePlan(t *testing.T) {
	t.Parallel()
	cfg := NewConfiguration(noAnalysis())
	require.NoError(t, cfg.AddStatements(binderStatements()...))
	require.NoError(t, RegisterFor[binderMapper](cfg.Registry()))

	iface := TypeOf[binderMapper]()
	m, _ := iface.MethodByName("FindAll")

	const n = 32
	plans := make([]*methodPlan, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := cfg.Registry().planFor(iface, m)
			assert.NoError(t, err)
			plans[i] = p
		}()
	}
	wg.Wait()

	for _, p := range plans[1:] {
		assert.Same(t, plans[0], p)
	}
}

func TestPlanFor_FailureIsNotCached(t *testing.T) {
	t.Parallel()
	cfg := NewConfiguration(noAnalysis())
	require.NoError(t, RegisterFor[pingMapper](cfg.Registry()))
	iface := TypeOf[pingMapper]()
	m, _ := iface.MethodByName("Ping")

	_, err := cfg.Registry().planFor(iface, m)
	require.ErrorIs(t, err, ErrStatementNotFound)

	require.NoError(t, cfg.AddStatements(&Statement{ID: StatementID(iface, "Ping"), Kind: KindFetch, SQL: "SELECT 1"}))
	p, err := cfg.Registry().planFor(iface, m)
	require.NoError(t, err)
	assert.Equal(t, KindFetch, p.kind)
}
