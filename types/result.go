package types

// ExecutionResult is what the host observes when a guest entry point returned normally.
// A halted execution produces a *HaltError instead.
type ExecutionResult struct {
	// ReturnCode is the value returned by the entry point. 0 means success.
	ReturnCode uint64   `json:"return_code"`
	GasUsed    uint64   `json:"gas_used"`
	Logs       []string `json:"logs,omitempty"`
}

// Succeeded reports whether the entry point returned 0.
func (r *ExecutionResult) Succeeded() bool {
	return r != nil && r.ReturnCode == 0
}
