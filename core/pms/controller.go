package pms

import "math"

// Controller implements the power management system dispatch rules: how many
// gensets must run for a given demand and which units on which switchboards
// are started.
type Controller struct {
	top Topology
}

// DispatchState is the per-timestep commitment decision. Status holds one 0/1
// entry per installed unit on each switchboard. Unmet reports that the ideal
// count exceeded the installed fleet and was capped, so part of the demand
// cannot be served within the load limit.
type DispatchState struct {
	GensetsOn int
	Unmet     bool
	Status    map[int][]int
}

// NewController validates the topology and returns a controller.
func NewController(top Topology) (*Controller, error) {
	if err := top.Validate(); err != nil {
		return nil, err
	}
	return &Controller{top: top}, nil
}

// Topology returns the controller's static configuration.
func (c *Controller) Topology() Topology { return c.top }

// IdealGensetsOn computes, per timestep, the minimum number of units whose
// combined capacity at the maximum allowable load fraction covers the demand.
// At least one unit always runs for bus stability. Counts are capped at the
// installed fleet; the second slice flags the capped (unmet) timesteps.
func (c *Controller) IdealGensetsOn(totalPowerKW []float64) ([]int, []bool) {
	threshold := c.top.RatedPowerKW * c.top.MaxLoadFraction
	installed := c.top.TotalInstalled()
	counts := make([]int, len(totalPowerKW))
	unmet := make([]bool, len(totalPowerKW))
	for i, p := range totalPowerKW {
		k := 1
		if p > 0 {
			k = int(math.Ceil(p / threshold))
			if k < 1 {
				k = 1
			}
		}
		if k > installed {
			counts[i] = installed
			unmet[i] = true
		} else {
			counts[i] = k
		}
	}
	return counts, unmet
}

// StatusMatrix expands per-timestep running-unit counts into one binary matrix
// per switchboard (timesteps x installed units). The fill order is fixed:
// switchboards in ascending id order, units in ascending index order, and a
// switchboard only starts units once every lower-id switchboard is fully on.
func (c *Controller) StatusMatrix(gensetsOn []int) map[int][][]int {
	ids := c.top.SwitchboardIDs()
	matrices := make(map[int][][]int, len(ids))
	for _, id := range ids {
		matrices[id] = make([][]int, len(gensetsOn))
	}
	for t, k := range gensetsOn {
		row := c.statusRow(k)
		for _, id := range ids {
			matrices[id][t] = row[id]
		}
	}
	return matrices
}

// statusRow assigns k running units across the switchboards in fill order.
func (c *Controller) statusRow(k int) map[int][]int {
	if installed := c.top.TotalInstalled(); k > installed {
		k = installed
	}
	row := make(map[int][]int, len(c.top.Switchboards))
	remaining := k
	for _, id := range c.top.SwitchboardIDs() {
		units := make([]int, c.top.Switchboards[id])
		for u := range units {
			if remaining > 0 {
				units[u] = 1
				remaining--
			}
		}
		row[id] = units
	}
	return row
}

// Dispatch commits units for a single timestep.
func (c *Controller) Dispatch(totalPowerKW float64) DispatchState {
	counts, unmet := c.IdealGensetsOn([]float64{totalPowerKW})
	return DispatchState{
		GensetsOn: counts[0],
		Unmet:     unmet[0],
		Status:    c.statusRow(counts[0]),
	}
}

// Schedule commits units for every timestep of a demand series.
func (c *Controller) Schedule(totalPowerKW []float64) []DispatchState {
	counts, unmet := c.IdealGensetsOn(totalPowerKW)
	states := make([]DispatchState, len(totalPowerKW))
	for i, k := range counts {
		states[i] = DispatchState{GensetsOn: k, Unmet: unmet[i], Status: c.statusRow(k)}
	}
	return states
}
