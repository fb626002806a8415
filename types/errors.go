package types

import "fmt"

// HaltError is returned when a guest program invoked the halt syscall.
// The execution is terminated and none of its effects are kept.
type HaltError struct {
	Location PanicLocation `json:"location"`
	GasUsed  uint64        `json:"gas_used"`
}

var _ error = (*HaltError)(nil)

func (e *HaltError) Error() string {
	return fmt.Sprintf("program panicked in %s", e.Location)
}
