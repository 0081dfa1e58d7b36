package navigator

import "sync"

// RecordingNavigator captures redirects and URL rewrites instead of
// performing them. The HTTP transport reads the recorded target to issue a
// real 302; tests read it to assert on the navigation handoff.
type RecordingNavigator struct {
	mu       sync.Mutex
	redirect string
	stripped []string
}

// NewRecordingNavigator creates an empty recorder
func NewRecordingNavigator() *RecordingNavigator {
	return &RecordingNavigator{}
}

// Redirect records the navigation target
func (n *RecordingNavigator) Redirect(url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redirect = url
	return nil
}

// ReplaceQuery records the query parameters stripped from the URL
func (n *RecordingNavigator) ReplaceQuery(params ...string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stripped = append(n.stripped, params...)
	return nil
}

// RedirectedTo returns the recorded navigation target, empty if none
func (n *RecordingNavigator) RedirectedTo() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.redirect
}

// StrippedParams returns the query parameters recorded by ReplaceQuery
func (n *RecordingNavigator) StrippedParams() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.stripped...)
}
