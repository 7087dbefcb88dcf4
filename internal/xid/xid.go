package xid

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns "<prefix>-<uuidv7>", so ids of one kind sort by creation time.
func New(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
	}
	return fmt.Sprintf("%s-%s", prefix, id.String())
}
