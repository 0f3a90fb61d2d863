// Package main provides the entry point for the pagescore CLI.
//
// pagescore analyses exported content pages, scores each one for
// structural and metadata quality, and compiles a report for a
// monitoring dashboard.
//
// Usage:
//
//	pagescore scan pages.yaml
//	pagescore serve pages.yaml
//	pagescore compare <page>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
