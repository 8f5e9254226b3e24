// Package query produces descriptors for hook-based data fetching caches.
//
// Enhance wraps every route of a router.Node with its key path. Each wrapped
// endpoint hands out a stable cache key and query or mutation descriptors
// whose functions return (data, error) instead of a Result:
//
//	api := query.Enhance(nodes)
//	users, _ := query.Lookup[endpoint.None, []User](api, "users", "list")
//	q := users.QueryOptions(query.QueryConfig[endpoint.None]{
//	    URLParams: endpoint.Params{"page": 1},
//	})
//	data, err := q.QueryFn(ctx)
//
// Caching, retries and deduplication belong to the cache layer.
package query
