package component

import (
	"fmt"
	"math"
)

// Battery models an energy storage system with separate charge and discharge
// efficiencies and C-rate power limits. Sign convention at the terminal:
// non-negative power is discharging, negative power is charging.
type Battery struct {
	Name           string
	CapacityKWh    float64
	EffCharge      float64
	EffDischarge   float64
	ChargeRateC    float64
	DischargeRateC float64
	Switchboard    int
}

// NewBattery validates the storage configuration.
func NewBattery(name string, capacityKWh, effCharge, effDischarge, chargeRateC, dischargeRateC float64, switchboard int) (*Battery, error) {
	if capacityKWh <= 0 {
		return nil, fmt.Errorf("%w: capacity %.2f kWh must be positive for %s", ErrConfiguration, capacityKWh, name)
	}
	if effCharge <= 0 || effCharge > 1 {
		return nil, fmt.Errorf("%w: charge efficiency %.4f outside (0,1] for %s", ErrConfiguration, effCharge, name)
	}
	if effDischarge <= 0 || effDischarge > 1 {
		return nil, fmt.Errorf("%w: discharge efficiency %.4f outside (0,1] for %s", ErrConfiguration, effDischarge, name)
	}
	if chargeRateC <= 0 || dischargeRateC <= 0 {
		return nil, fmt.Errorf("%w: C-rates must be positive for %s", ErrConfiguration, name)
	}
	return &Battery{
		Name:           name,
		CapacityKWh:    capacityKWh,
		EffCharge:      effCharge,
		EffDischarge:   effDischarge,
		ChargeRateC:    chargeRateC,
		DischargeRateC: dischargeRateC,
		Switchboard:    switchboard,
	}, nil
}

// Kind returns the energy storage variant.
func (b *Battery) Kind() Kind { return KindEnergyStorage }

// SwitchboardID returns the switchboard the battery is connected to.
func (b *Battery) SwitchboardID() int { return b.Switchboard }

// MaxChargeKW is the charging power limit derived from capacity and C-rate.
func (b *Battery) MaxChargeKW() float64 { return b.CapacityKWh * b.ChargeRateC }

// MaxDischargeKW is the discharging power limit derived from capacity and C-rate.
func (b *Battery) MaxDischargeKW() float64 { return b.CapacityKWh * b.DischargeRateC }

// OutputFromInput converts terminal power to cell-side power. Discharging
// draws the losses from the cells (divide), charging loses part of the
// terminal power before it reaches the cells (multiply).
func (b *Battery) OutputFromInput(terminalKW float64) (Conversion, error) {
	var internal float64
	if terminalKW >= 0 {
		internal = terminalKW / b.EffDischarge
	} else {
		internal = terminalKW * b.EffCharge
	}
	return Conversion{
		TerminalKW: terminalKW,
		InternalKW: internal,
		LossKW:     math.Abs(internal - terminalKW),
	}, nil
}

// InputFromOutput is the algebraic per-branch inverse of OutputFromInput.
func (b *Battery) InputFromOutput(internalKW float64) (Conversion, error) {
	var terminal float64
	if internalKW >= 0 {
		terminal = internalKW * b.EffDischarge
	} else {
		terminal = internalKW / b.EffCharge
	}
	return Conversion{
		TerminalKW: terminal,
		InternalKW: internalKW,
		LossKW:     math.Abs(internalKW - terminal),
	}, nil
}
