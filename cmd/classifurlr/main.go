// Package main provides the entry point for the classifurlr CLI.
//
// classifurlr decides whether a URL was up, down or actively blocked from
// a recorded browsing session (a HAR capture plus per-page metadata).
//
// Usage:
//
//	classifurlr classify session.json
//	classifurlr serve --listen 127.0.0.1:8080
//	classifurlr history http://example.com/
//
// See --help for all available options.
package main

func main() {
	Execute()
}
