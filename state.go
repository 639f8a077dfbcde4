package shkb

import (
	"github.com/cloudkucooland/HomeKitBridges/SensiboHKBridge/sensibo"
)

// State is the decoded view of a pod. Only the groups that were fetched are
// populated; the rest stay at their zero value.
type State struct {
	Power              bool
	Mode               Mode
	TargetTemperature  float64 // Celsius
	TemperatureUnit    TemperatureUnit
	FanLevel           FanLevel
	Swing              Swing
	HorizontalSwing    Swing
	CurrentTemperature float64
	CurrentHumidity    float64
}

func decodeState(p *sensibo.Pod) State {
	var s State
	if p == nil {
		return s
	}
	if ac := p.AcState; ac != nil {
		s.Power = ac.On
		s.Mode = parseMode(ac.Mode)
		s.TemperatureUnit = parseTemperatureUnit(ac.TemperatureUnit)
		s.TargetTemperature = ac.TargetTemperature
		if s.TemperatureUnit == UnitFahrenheit {
			s.TargetTemperature = celsiusFromFahrenheit(ac.TargetTemperature)
		}
		s.FanLevel = parseFanLevel(ac.FanLevel)
		s.Swing = parseSwing(ac.Swing)
		s.HorizontalSwing = parseSwing(ac.HorizontalSwing)
	}
	if m := p.Measurements; m != nil {
		s.CurrentTemperature = m.Temperature
		s.CurrentHumidity = m.Humidity
	}
	return s
}
