package idgen

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init configures the snowflake node used for user ids.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

func NewKSUID() string {
	return ksuid.New().String()
}

// NewUserID returns a snowflake id. If no node was configured it lazily
// starts node 1.
func NewUserID() int64 {
	mu.Lock()
	defer mu.Unlock()
	if node == nil {
		n, err := snowflake.NewNode(1)
		if err != nil {
			panic("idgen: snowflake node 1: " + err.Error())
		}
		node = n
	}
	return node.Generate().Int64()
}

// FormatID renders a user id for JSON payloads; snowflake ids do not fit a
// float64 so they always travel as strings.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func ParseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
