package component

import "fmt"

// Composite chains conversion stages in physical order: the first stage sits
// at the electrical terminal, the last at the physical side (e.g. a frequency
// converter in front of a battery). All stages share one switchboard.
type Composite struct {
	Name   string
	stages []BidirectionalConverter
}

// NewComposite validates the stage list and switchboard consistency.
func NewComposite(name string, stages ...BidirectionalConverter) (*Composite, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: composite %s needs at least one stage", ErrConfiguration, name)
	}
	sb := stages[0].SwitchboardID()
	for i, s := range stages[1:] {
		if s.SwitchboardID() != sb {
			return nil, fmt.Errorf("%w: composite %s stage %d on switchboard %d, expected %d",
				ErrConfiguration, name, i+1, s.SwitchboardID(), sb)
		}
	}
	return &Composite{Name: name, stages: stages}, nil
}

// Kind returns the variant of the stage on the physical side, which is what
// the composite represents as a whole (a converter-fed battery is storage).
func (c *Composite) Kind() Kind { return c.stages[len(c.stages)-1].Kind() }

// SwitchboardID returns the shared switchboard id.
func (c *Composite) SwitchboardID() int { return c.stages[0].SwitchboardID() }

// Stages returns the stage list in physical order.
func (c *Composite) Stages() []BidirectionalConverter {
	return append([]BidirectionalConverter(nil), c.stages...)
}

// OutputFromInput converts terminal power through every stage in physical
// order; each stage's internal power feeds the next stage's terminal. Losses
// accumulate over the chain.
func (c *Composite) OutputFromInput(terminalKW float64) (Conversion, error) {
	power := terminalKW
	total := Conversion{TerminalKW: terminalKW}
	for _, s := range c.stages {
		conv, err := s.OutputFromInput(power)
		if err != nil {
			return Conversion{}, err
		}
		power = conv.InternalKW
		total.LossKW += conv.LossKW
		total.Clamped = total.Clamped || conv.Clamped
	}
	total.InternalKW = power
	return total, nil
}

// InputFromOutput runs the inverse conversion through the stages in reverse
// order, from the physical side back to the terminal.
func (c *Composite) InputFromOutput(internalKW float64) (Conversion, error) {
	power := internalKW
	total := Conversion{InternalKW: internalKW}
	for i := len(c.stages) - 1; i >= 0; i-- {
		conv, err := c.stages[i].InputFromOutput(power)
		if err != nil {
			return Conversion{}, err
		}
		power = conv.TerminalKW
		total.LossKW += conv.LossKW
		total.Clamped = total.Clamped || conv.Clamped
	}
	total.TerminalKW = power
	return total, nil
}
