// Package model defines the data shared by the fingerprinting pipeline,
// the report writers and the history database.
//
// A Run describes one pass over one document: where the document lives,
// which base directory references are resolved against, the document bytes
// before and after rewriting, and one AssetResult per matched element.
package model
