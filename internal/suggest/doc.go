// Package suggest turns a folder of VRChat screenshots into a short list of
// "did you visit this world?" suggestions.
//
// A scan runs in three phases:
//
//  1. Collect walks the directory tree in lexical order and, one file at a
//     time, keeps recent PNGs whose metadata names a world the user has not
//     cataloged or dismissed. Each world is kept once per scan.
//  2. Select shuffles the candidates and keeps at most MaxSuggestions.
//  3. Enrich looks up each selected world remotely, one request at a time.
//     A failed lookup still yields a suggestion named UnknownWorldName.
//
// Scan never returns an error. Per-file failures are logged and skipped, and
// anything unexpected collapses the result to an empty slice.
package suggest
