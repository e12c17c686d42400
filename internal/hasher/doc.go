// Package hasher computes the content fingerprints embedded in asset filenames.
//
// A fingerprint is a 32-bit digest serialized as eight lowercase hexadecimal
// digits. The digest only has to distribute well over typical script and
// stylesheet contents; it is not a security primitive.
//
// Two algorithms are available:
//   - xxh32: xxHash32 with seed 0 (default)
//   - sha3: the first four bytes of SHA3-256, read big endian
//
// The algorithm chosen for a run must not change during that run, since the
// digest becomes part of every rewritten reference.
package hasher
