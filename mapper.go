package shkb

import (
	"fmt"
	"math"

	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/log"

	"github.com/cloudkucooland/HomeKitBridges/SensiboHKBridge/sensibo"
)

// Mode is the single operating mode of the pod
type Mode int

const (
	ModeUnknown Mode = iota
	ModeCool
	ModeHeat
	ModeDry
	ModeFan
)

func parseMode(s string) Mode {
	switch s {
	case "cool":
		return ModeCool
	case "heat":
		return ModeHeat
	case "dry":
		return ModeDry
	case "fan":
		return ModeFan
	default:
		return ModeUnknown
	}
}

// String is the vendor spelling; ModeUnknown has none and is never written
func (m Mode) String() string {
	switch m {
	case ModeCool:
		return "cool"
	case ModeHeat:
		return "heat"
	case ModeDry:
		return "dry"
	case ModeFan:
		return "fan"
	default:
		return "unknown"
	}
}

// TemperatureUnit is the unit of the pod's target temperature. Measurements
// are always Celsius.
type TemperatureUnit int

const (
	UnitUnknown TemperatureUnit = iota // acState not fetched
	UnitCelsius
	UnitFahrenheit
)

func parseTemperatureUnit(s string) TemperatureUnit {
	if s == "F" {
		return UnitFahrenheit
	}
	return UnitCelsius
}

func celsiusFromFahrenheit(f float64) float64 {
	return math.Round((f-32)*50/9) / 10
}

// pods set to Fahrenheit only take whole degrees
func fahrenheitFromCelsius(c float64) float64 {
	return math.Round(c*9/5 + 32)
}

type FanLevel int

const (
	FanLevelUnknown FanLevel = iota
	FanLevelLow
	FanLevelMediumLow
	FanLevelMedium
	FanLevelMediumHigh
	FanLevelHigh
)

func parseFanLevel(s string) FanLevel {
	switch s {
	case "low":
		return FanLevelLow
	case "medium_low":
		return FanLevelMediumLow
	case "medium":
		return FanLevelMedium
	case "medium_high":
		return FanLevelMediumHigh
	case "high":
		return FanLevelHigh
	default:
		// auto, quiet, strong, and whatever comes next
		return FanLevelUnknown
	}
}

func (f FanLevel) String() string {
	switch f {
	case FanLevelLow:
		return "low"
	case FanLevelMediumLow:
		return "medium_low"
	case FanLevelMedium:
		return "medium"
	case FanLevelMediumHigh:
		return "medium_high"
	case FanLevelHigh:
		return "high"
	default:
		return "unknown"
	}
}

type Swing int

const (
	SwingStopped Swing = iota
	SwingFull
)

func parseSwing(s string) Swing {
	if s == "rangeFull" {
		return SwingFull
	}
	return SwingStopped
}

func (s Swing) String() string {
	if s == SwingFull {
		return "rangeFull"
	}
	return "stopped"
}

// ViewKind is one of the logical HomeKit services carved out of the pod
type ViewKind int

const (
	HeaterCooler ViewKind = iota
	Dehumidifier
	Fan
)

var viewKinds = []ViewKind{HeaterCooler, Dehumidifier, Fan}

func (v ViewKind) String() string {
	switch v {
	case HeaterCooler:
		return "HeaterCooler"
	case Dehumidifier:
		return "Dehumidifier"
	case Fan:
		return "Fan"
	default:
		return fmt.Sprintf("ViewKind(%d)", int(v))
	}
}

// MappingError is a value outside the domain of a write with no safe default
type MappingError struct {
	Kind  string
	Value interface{}
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("cannot map %s value %v", e.Kind, e.Value)
}

// activeFor reports whether view owns the device in state
func activeFor(view ViewKind, s State) bool {
	if !s.Power {
		return false
	}
	switch view {
	case HeaterCooler:
		return s.Mode == ModeHeat || s.Mode == ModeCool
	case Dehumidifier:
		return s.Mode == ModeDry
	case Fan:
		return s.Mode == ModeFan
	default:
		return false
	}
}

// activeValue converts to the hap Active enumeration
func activeValue(active bool) int {
	if active {
		return characteristic.ActiveActive
	}
	return characteristic.ActiveInactive
}

func currentHeaterCoolerState(s State) int {
	if !activeFor(HeaterCooler, s) {
		return characteristic.CurrentHeaterCoolerStateInactive
	}
	switch s.Mode {
	case ModeHeat:
		return characteristic.CurrentHeaterCoolerStateHeating
	case ModeCool:
		return characteristic.CurrentHeaterCoolerStateCooling
	default:
		log.Info.Printf("unexpected mode %s while heater/cooler active, reporting inactive", s.Mode)
		return characteristic.CurrentHeaterCoolerStateInactive
	}
}

// targetHeaterCoolerState is only defined while the pod is in heat or cool
func targetHeaterCoolerState(s State) (int, bool) {
	switch s.Mode {
	case ModeHeat:
		return characteristic.TargetHeaterCoolerStateHeat, true
	case ModeCool:
		return characteristic.TargetHeaterCoolerStateCool, true
	default:
		return 0, false
	}
}

func modeFor(target int) (Mode, error) {
	switch target {
	case characteristic.TargetHeaterCoolerStateHeat:
		return ModeHeat, nil
	case characteristic.TargetHeaterCoolerStateCool:
		return ModeCool, nil
	default:
		return ModeUnknown, &MappingError{Kind: "target heater cooler state", Value: target}
	}
}

func currentDehumidifierState(s State) int {
	if activeFor(Dehumidifier, s) {
		return characteristic.CurrentHumidifierDehumidifierStateDehumidifying
	}
	return characteristic.CurrentHumidifierDehumidifierStateInactive
}

func currentFanState(s State) int {
	if activeFor(Fan, s) {
		return characteristic.CurrentFanStateBlowingAir
	}
	return characteristic.CurrentFanStateInactive
}

const defaultRotationSpeed = 5

// rotationSpeedForFanLevel is total, anything outside the table reads as 5
func rotationSpeedForFanLevel(level FanLevel) int {
	switch level {
	case FanLevelLow:
		return 1
	case FanLevelMediumLow:
		return 2
	case FanLevelMedium:
		return 3
	case FanLevelMediumHigh:
		return 4
	case FanLevelHigh:
		return 5
	default:
		return defaultRotationSpeed
	}
}

// fanLevelForRotationSpeed is defined for 1..5; callers treat 0 as a no-op first
func fanLevelForRotationSpeed(speed int) (FanLevel, error) {
	switch speed {
	case 1:
		return FanLevelLow, nil
	case 2:
		return FanLevelMediumLow, nil
	case 3:
		return FanLevelMedium, nil
	case 4:
		return FanLevelMediumHigh, nil
	case 5:
		return FanLevelHigh, nil
	default:
		return FanLevelUnknown, &MappingError{Kind: "rotation speed", Value: speed}
	}
}

func swingEnabled(s State) bool {
	return s.Swing == SwingFull && s.HorizontalSwing == SwingFull
}

func swingValue(enabled bool) int {
	if enabled {
		return characteristic.SwingModeSwingEnabled
	}
	return characteristic.SwingModeSwingDisabled
}

// swingFieldsFor sets both axes identically, hap only has one swing flag
func swingFieldsFor(enabled bool) map[sensibo.Field]interface{} {
	s := SwingStopped
	if enabled {
		s = SwingFull
	}
	return map[sensibo.Field]interface{}{
		sensibo.FieldSwing:           s.String(),
		sensibo.FieldHorizontalSwing: s.String(),
	}
}
