package event

import "strings"

// Topic is a hierarchical dot-notation event name, such as
// "window.loaded" or "session.activated". Subscription patterns may
// use "*" to match exactly one segment.
type Topic string

// Topics published by the engine and lifecycle.
const (
	TopicWindowLoaded       Topic = "window.loaded"
	TopicDocumentAppended   Topic = "document.appended"
	TopicSessionActivated   Topic = "session.activated"
	TopicSessionDeactivated Topic = "session.deactivated"
	TopicSessionCleared     Topic = "session.cleared"
)

// Segments splits the topic on dots.
func (t Topic) Segments() []string {
	return strings.Split(string(t), ".")
}

// Match reports whether the topic matches the given pattern.
// Pattern segments of "*" match any single topic segment.
func (t Topic) Match(pattern Topic) bool {
	if t == pattern {
		return true
	}

	ts := t.Segments()
	ps := pattern.Segments()
	if len(ts) != len(ps) {
		return false
	}
	for i := range ps {
		if ps[i] != "*" && ps[i] != ts[i] {
			return false
		}
	}
	return true
}
