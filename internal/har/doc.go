// Package har decodes HTTP Archive (HAR 1.2) traces into ordered pages.
//
// A page is one browser navigation and owns the entries (HTTP exchanges)
// whose pageref points at it. Only the fields the classifiers read are
// decoded; everything else in the archive is ignored.
package har
