// Package schema adapts validation conventions into a single call contract.
//
// Validation libraries expose different entry points: some parse and return
// the value, some validate and return a wrapper, some cast. A Schema records
// which one it was built with and Run always returns (T, error):
//
//	users := schema.Parse(func(data any) (User, error) { ... })
//	strict := schema.Struct[CreateUser]() // go-playground/validator tags
//	passthrough := schema.Identity[any]()
//
// From picks the convention of an arbitrary value once, at registration.
package schema
