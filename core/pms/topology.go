package pms

import (
	"errors"
	"fmt"
	"sort"
)

// ErrConfiguration marks an invalid switchboard topology.
var ErrConfiguration = errors.New("invalid topology configuration")

// Topology is the static single-line description of the generation plant:
// installed genset count per switchboard, bus-tie count and the shared genset
// rating. This model is the equal-engine-size, closed-bus-tie variant: every
// genset has the same rated power and all switchboards are electrically
// coupled, so fleet-wide demand drives the unit commitment.
type Topology struct {
	Switchboards    map[int]int `json:"switchboards"`
	BusTieCount     int         `json:"bus_tie_count"`
	RatedPowerKW    float64     `json:"rated_power_kw"`
	MaxLoadFraction float64     `json:"max_load_fraction"`
}

// Validate checks the topology invariants.
func (t Topology) Validate() error {
	if len(t.Switchboards) == 0 {
		return fmt.Errorf("%w: at least one switchboard required", ErrConfiguration)
	}
	for id, n := range t.Switchboards {
		if n <= 0 {
			return fmt.Errorf("%w: switchboard %d has %d gensets installed", ErrConfiguration, id, n)
		}
	}
	if t.BusTieCount < 1 {
		return fmt.Errorf("%w: closed-bus operation requires at least one bus tie", ErrConfiguration)
	}
	if t.RatedPowerKW <= 0 {
		return fmt.Errorf("%w: genset rated power %.2f kW must be positive", ErrConfiguration, t.RatedPowerKW)
	}
	if t.MaxLoadFraction <= 0 || t.MaxLoadFraction > 1 {
		return fmt.Errorf("%w: max load fraction %.4f outside (0,1]", ErrConfiguration, t.MaxLoadFraction)
	}
	return nil
}

// TotalInstalled returns the fleet size across all switchboards.
func (t Topology) TotalInstalled() int {
	total := 0
	for _, n := range t.Switchboards {
		total += n
	}
	return total
}

// SwitchboardIDs returns the switchboard ids in ascending order. Gapped or
// non-sequential id spaces keep the same numeric ordering.
func (t Topology) SwitchboardIDs() []int {
	ids := make([]int, 0, len(t.Switchboards))
	for id := range t.Switchboards {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
