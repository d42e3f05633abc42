// Package ids generates identifiers: uuids for stored records, ksuids for
// request correlation and snowflakes for analytics events and insertion
// sequences.
package ids

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// NewRecordID returns a random uuid string for accounts and tasks.
func NewRecordID() string {
	return uuid.NewString()
}

// NewRequestID returns a time-sortable KSUID string.
func NewRequestID() string {
	return ksuid.New().String()
}

var (
	nodeMu sync.Mutex
	node   *snowflake.Node
)

// SetNode configures the snowflake node used by NewEventID and NewSequence.
func SetNode(id int64) error {
	n, err := snowflake.NewNode(id)
	if err != nil {
		return err
	}
	nodeMu.Lock()
	node = n
	nodeMu.Unlock()
	return nil
}

func nextID() (snowflake.ID, bool) {
	nodeMu.Lock()
	defer nodeMu.Unlock()
	if node == nil {
		n, err := snowflake.NewNode(1)
		if err != nil {
			return 0, false
		}
		node = n
	}
	return node.Generate(), true
}

// NewEventID returns a snowflake id. If no node has been configured node 1
// is used; if that fails it falls back to a KSUID.
func NewEventID() string {
	id, ok := nextID()
	if !ok {
		return NewRequestID()
	}
	return id.String()
}

// NewSequence returns a snowflake as an int64. Values from one node are
// strictly increasing, so stores use them to keep insertion order among rows
// sharing a timestamp.
func NewSequence() int64 {
	id, _ := nextID()
	return id.Int64()
}
