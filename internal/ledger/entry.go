package ledger

import (
	"errors"
	"strings"
)

const separator = "|"

// ErrInvalidEntry is returned by ParseEntry for values that lack the separator.
var ErrInvalidEntry = errors.New("ledger: malformed entry")

// Entry is the last IP that updated an identity's profile together with the
// timestamp of the event that carried it. Timestamp may be empty.
type Entry struct {
	IP        string
	Timestamp string
}

// String encodes the entry as "ip|timestamp".
func (e Entry) String() string {
	return e.IP + separator + e.Timestamp
}

// ParseEntry decodes an "ip|timestamp" value, splitting on the first separator.
func ParseEntry(raw string) (Entry, error) {
	ip, timestamp, ok := strings.Cut(raw, separator)
	if !ok {
		return Entry{}, ErrInvalidEntry
	}
	return Entry{IP: ip, Timestamp: timestamp}, nil
}
