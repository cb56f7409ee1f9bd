// Package quarry binds Go interfaces to SQL statements.
//
// A mapper is an ordinary Go interface. Each of its methods is bound to the
// statement whose ID is the interface's qualified name followed by the
// method name, for example "github.com/acme/app/store.Accounts.FindByID".
// The statement's kind (insert, update, delete or select) and the method's
// signature together decide how a call executes and what it returns.
//
// # Binding
//
// When a mapper is registered, every method is analyzed once into a plan:
//
//   - a trailing error result carries failures; at most one other result
//     is allowed
//   - a slice result (other than []byte) makes a select return a list
//   - a map result with a statement MapKey makes a select return rows keyed
//     by that property
//   - any other result makes a select return a single row
//   - insert, update and delete methods return nothing, an integer or a
//     bool (true when any row was affected)
//   - a context.Context parameter is passed through, a RowBounds parameter
//     pages the result, a ResultHandler parameter streams rows
//
// The remaining (ordinary) parameters are folded into one statement
// parameter. A single unnamed argument is passed as is; otherwise the
// arguments are collected into a map under the names the statement
// declares in Params (default "param1", "param2", ...) and under their
// positions ("0", "1", ...).
//
// # Usage
//
// Load definitions, register the interface and call it through an adapter:
//
//	e, err := quarry.New("app.db", quarry.WithSchema(schema))
//	if err != nil { ... }
//	defer e.Close()
//
//	cfg := e.Configuration()
//	err = cfg.LoadDefinitions("mappers/")
//	err = quarry.RegisterFor[store.Accounts](cfg.Registry())
//
//	accounts, err := quarry.Mapper(cfg.Registry(), e.Session(), store.NewAccountsMapper)
//	acct, err := accounts.FindByID(ctx, 42)
//
// Adapters such as NewAccountsMapper are produced by "quarry generate" or
// written by hand around Proxy.Invoke.
package quarry
