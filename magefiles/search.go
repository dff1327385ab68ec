//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search builds the CLI and runs one search against the configured endpoint.
// TMSEARCH_QUERY overrides the query string (default "q=nike").
func Search() error {
	mg.Deps(Build)
	query := os.Getenv("TMSEARCH_QUERY")
	if query == "" {
		query = "q=nike"
	}
	return sh.RunV("./"+binDir+"/"+binName, "search", query)
}
