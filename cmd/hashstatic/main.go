// Package main provides the entry point for the hashstatic CLI.
//
// hashstatic fingerprints the scripts and stylesheets referenced by an HTML
// document: each asset is copied to a content-addressed name and the
// document is rewritten to point at the copies.
//
// Usage:
//
//	hashstatic index.html
//	hashstatic batch site/*.html
//
// See --help for all available options.
package main

// main is the entry point for hashstatic.
func main() {
	Execute()
}
