package ports

// Navigator models the one-shot full-page navigation and URL rewriting the
// flow performs. Keeping it behind a port makes the pre-navigation states
// testable without a real browser.
type Navigator interface {
	// Redirect performs an irrevocable navigation to the given URL. No
	// further flow code runs for this attempt once it is called.
	Redirect(url string) error

	// ReplaceQuery rewrites the current URL without the named query
	// parameters, replacing the history entry rather than pushing a new one.
	ReplaceQuery(params ...string) error
}
