// Package model defines the data shared by the classification packages.
//
// The main types are:
//   - Session: a read-only view over a capture session and its trace
//   - Classification: one immutable node of a verdict tree
//   - Builder: the only way to create a Classification
//   - Record: the JSON form of a verdict tree
//
// A verdict tree has three levels. Leaves are produced by individual
// classifiers about a single page, page nodes combine the leaves for that
// page, and the root combines the page nodes for the whole session.
package model
