package shkb

import (
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"
)

// threshold bounds, the pod accepts whole degrees celsius
const (
	coolingMin = 18
	coolingMax = 32
	heatingMin = 10
	heatingMax = 30
)

type heaterCoolerSvc struct {
	*service.S

	Active                      *characteristic.Active
	CurrentHeaterCoolerState    *characteristic.CurrentHeaterCoolerState
	TargetHeaterCoolerState     *characteristic.TargetHeaterCoolerState
	CurrentTemperature          *characteristic.CurrentTemperature
	CoolingThresholdTemperature *characteristic.CoolingThresholdTemperature
	HeatingThresholdTemperature *characteristic.HeatingThresholdTemperature
	RotationSpeed               *characteristic.RotationSpeed
	SwingMode                   *characteristic.SwingMode
}

func newHeaterCoolerSvc() *heaterCoolerSvc {
	s := heaterCoolerSvc{}
	s.S = service.New(service.TypeHeaterCooler)

	s.Active = characteristic.NewActive()
	s.AddC(s.Active.C)

	s.CurrentHeaterCoolerState = characteristic.NewCurrentHeaterCoolerState()
	s.AddC(s.CurrentHeaterCoolerState.C)

	// no auto, the pod has a single target temperature
	s.TargetHeaterCoolerState = characteristic.NewTargetHeaterCoolerState()
	s.TargetHeaterCoolerState.SetMinValue(characteristic.TargetHeaterCoolerStateHeat)
	s.TargetHeaterCoolerState.SetMaxValue(characteristic.TargetHeaterCoolerStateCool)
	s.TargetHeaterCoolerState.SetValue(characteristic.TargetHeaterCoolerStateCool)
	s.AddC(s.TargetHeaterCoolerState.C)

	s.CurrentTemperature = characteristic.NewCurrentTemperature()
	s.CurrentTemperature.SetMinValue(-100)
	s.CurrentTemperature.SetMaxValue(100)
	s.CurrentTemperature.SetStepValue(0.1)
	s.AddC(s.CurrentTemperature.C)

	s.CoolingThresholdTemperature = characteristic.NewCoolingThresholdTemperature()
	s.CoolingThresholdTemperature.SetMinValue(coolingMin)
	s.CoolingThresholdTemperature.SetMaxValue(coolingMax)
	s.CoolingThresholdTemperature.SetStepValue(1)
	s.CoolingThresholdTemperature.SetValue(24)
	s.AddC(s.CoolingThresholdTemperature.C)

	s.HeatingThresholdTemperature = characteristic.NewHeatingThresholdTemperature()
	s.HeatingThresholdTemperature.SetMinValue(heatingMin)
	s.HeatingThresholdTemperature.SetMaxValue(heatingMax)
	s.HeatingThresholdTemperature.SetStepValue(1)
	s.HeatingThresholdTemperature.SetValue(20)
	s.AddC(s.HeatingThresholdTemperature.C)

	s.RotationSpeed = newRotationSpeed()
	s.AddC(s.RotationSpeed.C)

	s.SwingMode = characteristic.NewSwingMode()
	s.AddC(s.SwingMode.C)

	return &s
}

type dehumidifierSvc struct {
	*service.S

	Active                             *characteristic.Active
	CurrentHumidifierDehumidifierState *characteristic.CurrentHumidifierDehumidifierState
	TargetHumidifierDehumidifierState  *characteristic.TargetHumidifierDehumidifierState
	CurrentRelativeHumidity            *characteristic.CurrentRelativeHumidity
	RotationSpeed                      *characteristic.RotationSpeed
	SwingMode                          *characteristic.SwingMode
}

func newDehumidifierSvc() *dehumidifierSvc {
	s := dehumidifierSvc{}
	s.S = service.New(service.TypeHumidifierDehumidifier)

	s.Active = characteristic.NewActive()
	s.AddC(s.Active.C)

	s.CurrentHumidifierDehumidifierState = characteristic.NewCurrentHumidifierDehumidifierState()
	s.AddC(s.CurrentHumidifierDehumidifierState.C)

	// dry mode only dehumidifies
	s.TargetHumidifierDehumidifierState = characteristic.NewTargetHumidifierDehumidifierState()
	s.TargetHumidifierDehumidifierState.SetMinValue(characteristic.TargetHumidifierDehumidifierStateDehumidifier)
	s.TargetHumidifierDehumidifierState.SetMaxValue(characteristic.TargetHumidifierDehumidifierStateDehumidifier)
	s.TargetHumidifierDehumidifierState.SetValue(characteristic.TargetHumidifierDehumidifierStateDehumidifier)
	s.AddC(s.TargetHumidifierDehumidifierState.C)

	s.CurrentRelativeHumidity = characteristic.NewCurrentRelativeHumidity()
	s.AddC(s.CurrentRelativeHumidity.C)

	s.RotationSpeed = newRotationSpeed()
	s.AddC(s.RotationSpeed.C)

	s.SwingMode = characteristic.NewSwingMode()
	s.AddC(s.SwingMode.C)

	return &s
}

type fanSvc struct {
	*service.S

	Active          *characteristic.Active
	CurrentFanState *characteristic.CurrentFanState
	RotationSpeed   *characteristic.RotationSpeed
	SwingMode       *characteristic.SwingMode
}

func newFanSvc() *fanSvc {
	s := fanSvc{}
	s.S = service.New(service.TypeFanV2)

	s.Active = characteristic.NewActive()
	s.AddC(s.Active.C)

	s.CurrentFanState = characteristic.NewCurrentFanState()
	s.AddC(s.CurrentFanState.C)

	s.RotationSpeed = newRotationSpeed()
	s.AddC(s.RotationSpeed.C)

	s.SwingMode = characteristic.NewSwingMode()
	s.AddC(s.SwingMode.C)

	return &s
}

// one step per vendor fan level, 0 means "leave it"
func newRotationSpeed() *characteristic.RotationSpeed {
	c := characteristic.NewRotationSpeed()
	c.SetMinValue(0)
	c.SetMaxValue(5)
	c.SetStepValue(1)
	c.Unit = ""
	return c
}
