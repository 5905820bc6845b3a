// Package rbt is a hypermedia client for the Review Board Web API.
//
// # Overview
//
// Review Board describes its API through links embedded in every response
// rather than through a fixed schema. This package turns any JSON response
// into an immutable Component and every embedded link into a Resource: a
// callable bound to the link's address and HTTP method. Only the API root
// address is ever hard-coded; everything else is discovered.
//
// Getting started
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/rbt/pkg/rbt"
//	  "github.com/fivetwenty-io/rbt/pkg/rbtclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := rbtclient.New(ctx, &rbt.Config{BaseURL: "https://reviews.reviewboard.org"})
//	  if err != nil { log.Fatal(err) }
//
//	  root, err := cli.Root().Call(ctx, nil)
//	  if err != nil { log.Fatal(err) }
//
//	  requests, err := root.Follow(ctx, "review_requests", rbt.Params{"counts-only": "1"})
//	  if err != nil { log.Fatal(err) }
//
//	  count, _ := requests.GetInt64("count")
//	  _ = count
//	}
//
// # Components
//
// A Component exposes every payload key as an attribute whose name has
// hyphens replaced by underscores ("counts-only" becomes "counts_only").
// Nested objects are components, arrays are Lists. The reserved attribute
// "json" (and JSON()) returns the literal payload, so a value can be read
// either way:
//
//	stat, _ := root.GetString("stat")   // "ok"
//	root.JSON()["stat"]                 // "ok"
//
// # Links
//
// Entries of a payload's "links" object become Resources reachable with
// Component.Link and Component.Follow. A link named "self" keeps the
// current resource name so that content-type checks stay correct.
//
// # Pipeline and errors
//
// Resource.Call runs a fixed sequence: transport, HTTP status, content-type
// check against the ContentTypes registry, JSON decode, stat check, build,
// link resolution. Every failure aborts the call and is reported through a
// typed error (APIError, BadContentTypeError, DecodeError, StatError,
// MissingLinkError, ...) that also matches a sentinel with errors.Is.
package rbt
