// Package pipeline runs a document through the fingerprinting steps.
//
// A run resolves its base directory, reads the document, streams it through
// the rewriter (fingerprinting every referenced script and stylesheet on the
// way), and finally replaces the document. Each stage is a Step operating on
// a shared *model.Run, so the CLI, the batch driver and the tests drive the
// same sequence.
//
// BatchProcessor runs several documents concurrently with errgroup. All of
// its pipelines share one asset.Fingerprinter, so an asset referenced from
// several documents is fingerprinted once.
package pipeline
