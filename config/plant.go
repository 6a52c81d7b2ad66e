package config

import (
	"fmt"

	"github.com/hybridship/powersim/core/component"
	"github.com/hybridship/powersim/core/curve"
	"github.com/hybridship/powersim/core/pms"
)

// CurveConfig is a serialisable breakpoint table.
type CurveConfig struct {
	LoadRatios []float64 `json:"load_ratios"`
	Values     []float64 `json:"values"`
}

// EngineConfig describes the genset prime mover shared by all units.
type EngineConfig struct {
	Name          string      `json:"name"`
	RatedPowerKW  float64     `json:"rated_power_kw"`
	RatedSpeedRPM float64     `json:"rated_speed_rpm"`
	Kind          string      `json:"kind"`
	BSFC          CurveConfig `json:"bsfc"`
}

// BatteryConfig describes an energy storage system.
type BatteryConfig struct {
	Name           string  `json:"name"`
	CapacityKWh    float64 `json:"capacity_kwh"`
	EffCharge      float64 `json:"eff_charge"`
	EffDischarge   float64 `json:"eff_discharge"`
	ChargeRateC    float64 `json:"charge_rate_c"`
	DischargeRateC float64 `json:"discharge_rate_c"`
	Switchboard    int     `json:"switchboard"`
}

// ConverterConfig describes a converter stage in front of the battery.
type ConverterConfig struct {
	Name         string      `json:"name"`
	RatedPowerKW float64     `json:"rated_power_kw"`
	Switchboard  int         `json:"switchboard"`
	Efficiency   CurveConfig `json:"efficiency"`
}

// StorageConfig is the optional storage chain: a battery, optionally behind a
// converter stage on the terminal side.
type StorageConfig struct {
	Battery   BatteryConfig    `json:"battery"`
	Converter *ConverterConfig `json:"converter"`
}

// PlantConfig assembles the static plant model.
type PlantConfig struct {
	Topology pms.Topology   `json:"topology"`
	Engine   EngineConfig   `json:"engine"`
	Storage  *StorageConfig `json:"storage"`
}

// Validate builds every component once to surface configuration errors at
// load time rather than at the first simulation.
func (c PlantConfig) Validate() error {
	if _, err := c.BuildController(); err != nil {
		return err
	}
	if _, err := c.BuildEngine(); err != nil {
		return err
	}
	if c.Storage != nil {
		st, err := c.BuildStorage()
		if err != nil {
			return err
		}
		if _, ok := c.Topology.Switchboards[st.SwitchboardID()]; !ok {
			return fmt.Errorf("storage %s: switchboard %d not in topology", c.Storage.Battery.Name, st.SwitchboardID())
		}
	}
	return nil
}

// BuildController constructs the PMS controller from the topology.
func (c PlantConfig) BuildController() (*pms.Controller, error) {
	return pms.NewController(c.Topology)
}

// BuildEngine constructs the shared genset engine model.
func (c PlantConfig) BuildEngine() (*component.Engine, error) {
	bsfc, err := curve.NewBSFC(c.Engine.BSFC.LoadRatios, c.Engine.BSFC.Values)
	if err != nil {
		return nil, fmt.Errorf("engine %s: %w", c.Engine.Name, err)
	}
	kind, err := engineKind(c.Engine.Kind)
	if err != nil {
		return nil, err
	}
	return component.NewEngine(c.Engine.Name, c.Engine.RatedPowerKW, c.Engine.RatedSpeedRPM, bsfc, kind)
}

// BuildStorage constructs the optional storage chain. With a converter stage
// configured the result is a composite applying the converter on the terminal
// side and the battery on the cell side.
func (c PlantConfig) BuildStorage() (component.BidirectionalConverter, error) {
	if c.Storage == nil {
		return nil, nil
	}
	b := c.Storage.Battery
	battery, err := component.NewBattery(b.Name, b.CapacityKWh, b.EffCharge, b.EffDischarge, b.ChargeRateC, b.DischargeRateC, b.Switchboard)
	if err != nil {
		return nil, err
	}
	if c.Storage.Converter == nil {
		return battery, nil
	}
	conv := c.Storage.Converter
	eff, err := curve.NewEfficiency(conv.Efficiency.LoadRatios, conv.Efficiency.Values)
	if err != nil {
		return nil, fmt.Errorf("converter %s: %w", conv.Name, err)
	}
	stage, err := component.NewPowerConversion(conv.Name, conv.RatedPowerKW, conv.Switchboard, eff, component.KindConverter)
	if err != nil {
		return nil, err
	}
	return component.NewComposite(b.Name+"-system", stage, battery)
}

func engineKind(s string) (component.EngineKind, error) {
	switch s {
	case "main_engine":
		return component.EngineMain, nil
	case "auxiliary_engine", "":
		return component.EngineAuxiliary, nil
	case "main_engine_with_gearbox":
		return component.EngineMainWithGearbox, nil
	default:
		return 0, fmt.Errorf("unknown engine kind %q", s)
	}
}
