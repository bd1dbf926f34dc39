// Package pipeline turns a capture session into a single verdict.
//
// A run has five stages:
//  1. Filters drop pages that cannot say anything about censorship.
//  2. Every classifier looks at every remaining page.
//  3. Each page's classifier verdicts are tallied into a page verdict.
//  4. Page verdicts are averaged into a session verdict, weighting recent
//     pages and down pages more heavily.
//  5. Post-processors refine the session verdict, e.g. to mark it blocked.
//
// Pages can be classified one at a time or concurrently with a bounded
// number of workers. Session rollup does not depend on page order, so both
// modes produce the same verdict.
package pipeline
