// Package report writes classification verdicts.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text tree for terminal display
//   - JSONWriter: the serialized record, for tool integration
//   - MarkdownWriter: GitHub Flavored Markdown with summary and per-page tables
//
// Writers take model.Record values rather than live classifications so the
// same writers print fresh verdicts and ones read back from history.
package report
