package uid

import (
	"errors"
	"hash/fnv"
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// ErrNodeIdentityUnavailable indicates no stable node identity could be
// derived for the snowflake node number.
var ErrNodeIdentityUnavailable = errors.New("uid: cannot determine snowflake node id (NODE_ID/hostname unavailable)")

// Snowflake generates sortable 63-bit numeric IDs.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake builds a generator whose node number comes from the NODE_ID
// environment variable, or is derived from the hostname when unset. Two
// replicas sharing a node number can collide, so deployments with more than
// one replica should set NODE_ID explicitly.
func NewSnowflake() (*Snowflake, error) {
	nodeID, err := resolveNodeID()
	if err != nil {
		return nil, err
	}

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new snowflake ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func resolveNodeID() (int64, error) {
	if v := os.Getenv("NODE_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 || id > 1023 {
			return 0, ErrNodeIdentityUnavailable
		}
		return id, nil
	}

	host, err := os.Hostname()
	if err != nil || host == "" {
		return 0, ErrNodeIdentityUnavailable
	}

	h := fnv.New32a()
	h.Write([]byte(host)) //nolint:errcheck // fnv never fails
	return int64(h.Sum32() % 1024), nil
}
