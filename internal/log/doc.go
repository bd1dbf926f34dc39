// Package log builds the slog loggers used by classifurlr.
//
// Classification diagnostics print raw response headers and matched
// fingerprint values from recorded sessions. Those often carry cookies and
// credentials of the measurement client, so every logger created here wraps
// its handler in a RedactingHandler:
//   - Values of Cookie, Set-Cookie, Authorization and similar keys are masked
//   - Session cookie pairs inside any string value keep their name but lose
//     their value ("incap_ses_1=***REDACTED***")
//   - Bearer and Basic credentials are masked wherever they appear
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose, jsonOutput)
//	slog.SetDefault(logger)
//
//	logger.Debug("captcha challenge",
//	    "page", "page_1",
//	    "set-cookie", "incap_ses_9=abc", // masked
//	)
package log
