// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Command watchnext is the operator CLI for a running WatchNext server.
//
// It asks a server for recommendations, clears the catalog lookup caches,
// inspects corpus files before deployment, lists the maintenance audit
// trail and signs maintenance tokens.
//
//	watchnext recommend 603 27205
//	watchnext cache invalidate --reason "catalog refresh" --token "$TOKEN"
//	watchnext corpus inspect --items items.csv --vectorizer vec.json --matrix matrix.json.gz
//	JWT_SECRET=... watchnext token issue --subject ops --role operator
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
