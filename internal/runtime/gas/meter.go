package gas

import (
	rterrors "github.com/CosmWasm/recovervm/internal/runtime/error"
)

// Meter tracks gas consumption during a single execution
type Meter interface {
	// Consume charges the specified amount of gas
	Consume(amount uint64) error
	// Remaining returns the amount of gas left
	Remaining() uint64
	// Consumed returns the amount of gas charged so far
	Consumed() uint64
	// HasGas checks if there is any gas left
	HasGas() bool
}

// DefaultMeter is the default implementation of Meter
type DefaultMeter struct {
	limit    uint64
	consumed uint64
}

var _ Meter = (*DefaultMeter)(nil)

// NewDefaultMeter creates a new gas meter with the specified limit
func NewDefaultMeter(limit uint64) *DefaultMeter {
	return &DefaultMeter{
		limit:    limit,
		consumed: 0,
	}
}

// Consume charges amount. When the budget does not cover it the meter is
// drained and a GasError is returned.
func (m *DefaultMeter) Consume(amount uint64) error {
	if amount > m.Remaining() {
		err := &rterrors.GasError{
			Wanted:    amount,
			Available: m.Remaining(),
		}
		m.consumed = m.limit
		return err
	}
	m.consumed += amount
	return nil
}

func (m *DefaultMeter) Remaining() uint64 {
	if m.consumed >= m.limit {
		return 0
	}
	return m.limit - m.consumed
}

func (m *DefaultMeter) Consumed() uint64 {
	return m.consumed
}

func (m *DefaultMeter) HasGas() bool {
	return m.Remaining() > 0
}

// Report contains information about gas usage
type Report struct {
	Limit     uint64
	Remaining uint64
	Used      uint64
}

// Report summarizes the state of a DefaultMeter.
func (m *DefaultMeter) Report() Report {
	return Report{
		Limit:     m.limit,
		Remaining: m.Remaining(),
		Used:      m.consumed,
	}
}
