package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique id for entities (users, sessions, requests).
func New() string {
	return ksuid.New().String()
}
