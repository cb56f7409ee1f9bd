// Package definition loads mapper definition files.
//
// A definition file declares the statements of one or more mapper
// namespaces (a mapper interface's qualified name). Two formats are read:
//
// HCL, one block per statement, the block type giving the kind:
//
//	mapper "github.com/acme/app/store.Accounts" {
//	  select "FindByID" {
//	    sql    = "SELECT id, name FROM ${var.schema}accounts WHERE id = #{id}"
//	    params = ["id"]
//	  }
//	  insert "Create" {
//	    sql            = "INSERT INTO accounts (name) VALUES (#{name})"
//	    generated_keys = true
//	  }
//	}
//
// YAML, one document per namespace:
//
//	namespace: github.com/acme/app/store.Accounts
//	statements:
//	  - id: FindByID
//	    kind: select
//	    sql: SELECT id, name FROM accounts WHERE id = #{id}
//	    params: [id]
//
// Both formats substitute ${var.<name>} from the variables passed to the
// loader. Kinds are kept as written; mapping them to command types is the
// caller's job.
package definition
