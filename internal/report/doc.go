// Package report renders the outcome of fingerprinting runs.
//
// Three formats are available:
//   - SimpleWriter: the console listing, one new filename per line and an
//     optional elapsed time
//   - JSONWriter: a manifest mapping original references to fingerprinted
//     ones, for build tooling
//   - MarkdownWriter: a GitHub Flavored Markdown report with tables, alerts
//     and a status pie chart
//
// MultiWriter fans one run out to several writers, e.g. the console
// listing on stdout and a JSON manifest in a file.
package report
