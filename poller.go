package shkb

import (
	"context"
	"time"

	"github.com/brutella/hap/log"
)

// Poll refreshes the pod on the settings poll rate and pushes the values to
// the characteristics, so subscribed controllers see changes made elsewhere
// (remote, app, schedules). Reads from controllers still go to the pod.
func (acc *Sensibo) Poll(ctx context.Context) {
	for {
		if err := acc.Update(ctx); err != nil {
			log.Info.Printf("poll: %s", err.Error())
		}

		select {
		case <-ctx.Done():
			log.Info.Printf("poller: context canceled")
			return
		case <-time.After(acc.pollInterval()):
		}
	}
}

// pollInterval is read every round, so a PollRate write applies from the next wait
func (acc *Sensibo) pollInterval() time.Duration {
	return time.Duration(acc.Settings.PollRate.seconds()) * time.Second
}

// Update does one full refresh and pushes the result
func (acc *Sensibo) Update(ctx context.Context) error {
	s, err := acc.device.Refresh(ctx)
	if err != nil {
		return err
	}
	acc.push(s)
	return nil
}

func (acc *Sensibo) push(s State) {
	hc := acc.HeaterCooler
	hc.Active.SetValue(activeValue(activeFor(HeaterCooler, s)))
	hc.CurrentHeaterCoolerState.SetValue(currentHeaterCoolerState(s))
	hc.TargetHeaterCoolerState.SetValue(acc.device.heaterCoolerTargetFor(s))
	hc.CurrentTemperature.SetValue(s.CurrentTemperature)
	if inRange(s.TargetTemperature, coolingMin, coolingMax) {
		hc.CoolingThresholdTemperature.SetValue(s.TargetTemperature)
	}
	if inRange(s.TargetTemperature, heatingMin, heatingMax) {
		hc.HeatingThresholdTemperature.SetValue(s.TargetTemperature)
	}

	speed := float64(rotationSpeedForFanLevel(s.FanLevel))
	swing := swingValue(swingEnabled(s))

	hc.RotationSpeed.SetValue(speed)
	hc.SwingMode.SetValue(swing)

	dh := acc.Dehumidifier
	dh.Active.SetValue(activeValue(activeFor(Dehumidifier, s)))
	dh.CurrentHumidifierDehumidifierState.SetValue(currentDehumidifierState(s))
	dh.CurrentRelativeHumidity.SetValue(s.CurrentHumidity)
	dh.RotationSpeed.SetValue(speed)
	dh.SwingMode.SetValue(swing)

	fan := acc.Fan
	fan.Active.SetValue(activeValue(activeFor(Fan, s)))
	fan.CurrentFanState.SetValue(currentFanState(s))
	fan.RotationSpeed.SetValue(speed)
	fan.SwingMode.SetValue(swing)
}

// hap rejects values outside a characteristic's bounds
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
