package types

import "fmt"

// PanicLocation describes where a guest halted. It is diagnostic only.
type PanicLocation struct {
	File string `json:"file" yaml:"file"`
	Line uint64 `json:"line" yaml:"line"`
	// Column is reserved. The guest SDK always sends 0 and the host passes it through.
	Column uint64 `json:"column" yaml:"column"`
}

func (l PanicLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}
