// Package router composes endpoints into nested trees.
//
// A Node groups endpoints by name. Compose turns it into a Tree of bound
// functions with the same shape:
//
//	api := router.Node{
//	    "users": router.Node{
//	        "get":    getUser,
//	        "create": createUser,
//	    },
//	}
//	tree := router.Compose(api)
//	get, _ := router.Lookup[endpoint.None, User](tree, "users", "get")
//	res, err := get(ctx, endpoint.None{}, nil)
//
// Build creates a Node from a declarative routes section loaded with the
// config package.
package router
