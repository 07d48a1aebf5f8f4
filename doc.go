// Package speq describes an HTTP API from its Go types. Routes are
// registered with structured metadata (path, query, request body,
// responses) and a single build pass turns them into an APISpec: the
// routes plus a deduplicated, cycle-safe table of every data shape they
// reach.
//
// Routes are registered explicitly on a Builder:
//
//	b := speq.New(speq.WithTitle("Items"), speq.WithVersion("1.0.0"))
//	speq.Get(b, "/items/:id",
//	    speq.WithPath[ItemID](),
//	    speq.WithResponse[Item](http.StatusOK, "the item"),
//	)
//	spec, err := b.Build()
//
// Type shapes are derived by package reflection from struct tags: the
// json tag supplies wire names, a default tag marks a field as not
// required, and embedded structs are flattened. Types can describe
// themselves by implementing reflection.Reflector, and tagged unions
// implement reflection.Enum.
//
// The spec can be written as JSON or YAML, rendered as a validated OpenAPI
// 3.0 document, and served together with a docs UI:
//
//	srv, err := speq.NewServer(spec)
//	err = srv.ListenAndServe(ctx, ":8080")
package speq
