// Package rbtclient provides the primary entry point for constructing a
// Review Board Web API client.
//
// It layers configuration, HTTP session, authentication, and URL
// canonicalization on top of the resource engine in the rbt package. Most
// applications build a client here, then navigate from its API root by
// following the links each response carries.
//
// Quick start
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
//
//	  // Minimal: just a server address (anonymous access).
//	  cli, err := rbtclient.New(ctx, &rbt.Config{BaseURL: "https://reviews.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with an API token:
//	  cli, err = rbtclient.NewWithToken(ctx, "https://reviews.example.com", "0123456789abcdef")
//
//	  // Or with username/password. The session logs in through the web login
//	  // form and keeps its session cookie for every later request.
//	  cli, err = rbtclient.NewWithPassword(ctx, "https://reviews.example.com", "user", "pass")
//	  if err != nil { log.Fatal(err) }
//
//	  // Follow links from the root; parameters go with the last call.
//	  counts, err := cli.Navigate(ctx, rbt.Params{"counts-only": "1"}, "review_requests")
//	  if err != nil { log.Fatal(err) }
//	  _ = counts
//	}
//
// # Server address
//
// An address without scheme is probed over https first. When the https
// exchange fails at the transport level (refused connection, TLS error) the
// client falls back to http.
//
// # Helpers
//
// The package also provides convenience constructors NewWithURL, NewWithToken
// and NewWithPassword that wrap New with the appropriate configuration.
package rbtclient
