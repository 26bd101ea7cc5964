package client

import (
	"fmt"
)

// Error wraps a `Problem` document returned by the API.
type Error struct {
	Problem Problem
}

func (e Error) Error() string {
	return fmt.Sprintf("http problem: status=%d title=%s", e.Problem.Status, e.Problem.Title)
}
