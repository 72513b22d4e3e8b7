// Package effects describes reads and writes of backend records as plain
// values and evaluates them against a client.Client.
//
// An Effect is a lazy tree. Building one never talks to the backend:
//
//	update := effects.AndThen(
//	    effects.GetRecord(effects.GetRecordParams{App: "1", ID: "5"}),
//	    func(r record.Record) effects.Effect[record.Record] {
//	        return effects.UpdateRecord(effects.UpdateRecordParams{
//	            Record: r.Update(func(v record.FieldMap) record.FieldMap {
//	                return v.WithValue("text", "b")
//	            }),
//	        })
//	    },
//	)
//	_, err := effects.Run(ctx, c, effects.Then(update, effects.Commit()))
//
// # Unit of work
//
// AddRecord, UpdateRecord, DeleteRecord and their plural forms only
// enqueue requests in a Buffer. Commit sends every enqueued request as one
// atomic bulk request, in order. When an effect fails before its Commit
// the enqueued requests are never sent.
//
// # Failures
//
// Failures are error values. Remote failures are record.Error values and
// Async thunks fail with whatever error they return. Fold, Catch and Retry
// are the only ways to recover.
//
// Malformed constructor arguments and plural writes without records are
// programming errors: the constructors panic instead of producing an
// effect.
package effects
