// Package filter removes pages that should not take part in classification.
//
// Filters run in a fixed order and each sees only the pages the previous
// filters kept. A filter that lacks the data it needs keeps the page.
package filter
