// Package content decodes response bodies recorded in a trace and memoizes
// the parsed result.
//
// Several classifiers look at the same terminal body: the blockpage
// classifier searches it, the inconclusive filter scans it for seizure
// notices, and the cosine classifier reads its visible text. An Extractor
// decodes each body once (base64, then charset), parses it with goquery, and
// keeps the result in a bounded LRU cache shared by every worker.
package content
