package record

import "fmt"

// Error is the normalized shape of a remote API failure.
type Error struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s (id: %s)", e.Code, e.Message, e.ID)
}
