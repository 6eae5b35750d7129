// Package storage provides the record repository used to persist graph
// nodes, edges and links, and the Backend interface implemented by the
// memstore and sqlstore packages.
//
// # Repository
//
// A Repository is bound to one record type and a Backend:
//
//	edges := storage.NewRepository[Edge](backend, types.Edge)
//	err := edges.Create(ctx, e)
//	list, err := edges.Filter(ctx, storage.EQ("next_state_id", 1))
//
// Predicates passed to one call are joined with AND.
//
// # Hooks
//
// Every write goes through a Mutator chain. Hooks wrap the chain the same
// way middlewares wrap an http.Handler:
//
//	edges.Use(func(next storage.Mutator) storage.Mutator {
//	    return storage.MutateFunc(func(ctx context.Context, m *storage.Mutation) (storage.Value, error) {
//	        log.Println(m.Op(), m.Type())
//	        return next.Mutate(ctx, m)
//	    })
//	})
//
// # Transactions
//
// Backend.Tx runs a function in a transaction and binds the transaction to
// the context it passes on. Repositories resolve their backend from the
// context, so every repository call made with that context joins the
// transaction, and nested Tx calls run in the outer transaction.
package storage
