package idgen

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Initialize sets up the Snowflake ID generator with a node ID
func Initialize(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	if err != nil {
		return fmt.Errorf("failed to create snowflake node %d: %w", nodeID, err)
	}
	return nil
}

// GenerateID generates a new Snowflake ID as a string
func GenerateID() string {
	if node == nil {
		// Initialize with default node ID if not already initialized
		_ = Initialize(1)
	}
	return node.Generate().String()
}

// Timestamp returns the creation time encoded in a generated ID, in
// milliseconds since the Unix epoch.
func Timestamp(id string) (int64, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return parsed.Time(), nil
}
