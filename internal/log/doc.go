// Package log provides privacy-aware logging built on top of the standard
// slog package.
//
// Browsing history is personal data. A verbose log of a conversion run
// would otherwise carry visited URLs with their query strings, embedded
// credentials and page titles, and such logs are routinely pasted into bug
// reports. The PrivacyHandler removes that material before it reaches the
// underlying handler:
//   - URL values keep scheme, host and path; userinfo and fragments are
//     dropped and query strings are masked
//   - Attributes named like titles, cookies, tokens or passwords are masked
//   - Values that look like bearer tokens, JWTs or private keys are masked
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Warn("dropping incomplete history entry",
//	    "url", "https://user:pw@example.com/a?q=1", // https://example.com/a?***
//	    "title", "Inbox (3)",                       // ***REDACTED***
//	)
package log
