package config

import (
	"flag"
	"os"
)

const defaultPagesPath = "./inputs/pages"

// parses CLI flags for the ingester
func ParseIngesterFlags() IngesterFlags {
	args := os.Args[1:]

	fs := flag.NewFlagSet("ingester", flag.ExitOnError)
	path := fs.String("path", defaultPagesPath, "directory containing scraped page files")
	purge := fs.Bool("purge", false, "delete superseded documents after ingesting")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return IngesterFlags{Path: *path, Purge: *purge}
}

// returns default flags for the ingester
func DefaultIngesterFlags() IngesterFlags {
	return IngesterFlags{Path: defaultPagesPath}
}
