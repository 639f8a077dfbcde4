package shkb

import (
	"context"
	"math"
	"net/http"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/log"
	"github.com/brutella/hap/service"

	"github.com/cloudkucooland/HomeKitBridges/SensiboHKBridge/sensibo"
)

// Sensibo is the HomeKit accessory for one pod: a heater/cooler, a
// dehumidifier and a fan sharing the same Device
type Sensibo struct {
	*accessory.A

	HeaterCooler *heaterCoolerSvc
	Dehumidifier *dehumidifierSvc
	Fan          *fanSvc
	Settings     *settingsSvc

	device *Device
}

// NewSensibo builds the accessory. pod supplies the accessory information and
// may come from a fetch with only some groups; name overrides the room name.
func NewSensibo(name string, pod *sensibo.Pod, d *Device, pollInterval int) *Sensibo {
	acc := Sensibo{device: d}

	if name == "" && pod.Room != nil {
		name = pod.Room.Name
	}
	if name == "" {
		name = "Sensibo"
	}
	model := pod.ProductModel
	if model == "" {
		model = "sky"
	}

	info := accessory.Info{
		Name:         name,
		SerialNumber: pod.ID,
		Manufacturer: "Sensibo",
		Model:        model,
		Firmware:     pod.FirmwareVersion,
	}
	acc.A = accessory.New(info, accessory.TypeAirConditioner)

	acc.HeaterCooler = newHeaterCoolerSvc()
	acc.HeaterCooler.Primary = true
	acc.AddS(acc.HeaterCooler.S)

	acc.Dehumidifier = newDehumidifierSvc()
	acc.AddS(acc.Dehumidifier.S)
	acc.HeaterCooler.AddS(acc.Dehumidifier.S)

	acc.Fan = newFanSvc()
	acc.AddS(acc.Fan.S)
	acc.HeaterCooler.AddS(acc.Fan.S)

	acc.Settings = newSettingsSvc(pollInterval)
	acc.AddS(acc.Settings.S)

	acc.A.IdentifyFunc = func(r *http.Request) {
		acc.Identify()
	}

	acc.wireHeaterCooler(d.View(HeaterCooler))
	acc.wireDehumidifier(d.View(Dehumidifier))
	acc.wireFan(d.View(Fan))

	// tell controllers right away when a sibling takes the pod
	d.OnDeactivated(func(k ViewKind) {
		log.Info.Printf("%s deactivated by sibling", k)
		switch k {
		case HeaterCooler:
			acc.HeaterCooler.Active.SetValue(characteristic.ActiveInactive)
			acc.HeaterCooler.CurrentHeaterCoolerState.SetValue(characteristic.CurrentHeaterCoolerStateInactive)
		case Dehumidifier:
			acc.Dehumidifier.Active.SetValue(characteristic.ActiveInactive)
			acc.Dehumidifier.CurrentHumidifierDehumidifierState.SetValue(characteristic.CurrentHumidifierDehumidifierStateInactive)
		case Fan:
			acc.Fan.Active.SetValue(characteristic.ActiveInactive)
			acc.Fan.CurrentFanState.SetValue(characteristic.CurrentFanStateInactive)
		}
	})

	return &acc
}

// Identify is called by hap during pairing
func (acc *Sensibo) Identify() {
	log.Info.Printf("identify called for [%s]", acc.Info.Name.Value())
	for _, s := range acc.Services() {
		log.Info.Printf("service: %s (%d characteristics)", s.Type, len(s.Cs))
	}
}

func (acc *Sensibo) Services() []*service.S {
	return acc.A.Ss
}

func (acc *Sensibo) Device() *Device {
	return acc.device
}

func (acc *Sensibo) wireHeaterCooler(v *View) {
	s := acc.HeaterCooler
	prefix := v.Kind().String()

	onGetInt(s.Active.Int, prefix+" Active", func(ctx context.Context) (int, error) {
		active, err := v.Active(ctx)
		return activeValue(active), err
	})
	onSetInt(s.Active.Int, prefix+" Active", func(ctx context.Context, val int) error {
		return v.SetActive(ctx, val == characteristic.ActiveActive)
	})

	onGetInt(s.CurrentHeaterCoolerState.Int, prefix+" CurrentHeaterCoolerState", v.CurrentHeaterCoolerState)
	onGetInt(s.TargetHeaterCoolerState.Int, prefix+" TargetHeaterCoolerState", v.TargetHeaterCoolerState)
	onSetInt(s.TargetHeaterCoolerState.Int, prefix+" TargetHeaterCoolerState", v.SetTargetHeaterCoolerState)

	onGetFloat(s.CurrentTemperature.Float, prefix+" CurrentTemperature", v.CurrentTemperature)

	onGetFloat(s.CoolingThresholdTemperature.Float, prefix+" CoolingThresholdTemperature", v.Threshold)
	onSetFloat(s.CoolingThresholdTemperature.Float, prefix+" CoolingThresholdTemperature", v.SetThreshold)
	onGetFloat(s.HeatingThresholdTemperature.Float, prefix+" HeatingThresholdTemperature", v.Threshold)
	onSetFloat(s.HeatingThresholdTemperature.Float, prefix+" HeatingThresholdTemperature", v.SetThreshold)

	wireRotationSpeed(s.RotationSpeed, v)
	wireSwing(s.SwingMode, v)
}

func (acc *Sensibo) wireDehumidifier(v *View) {
	s := acc.Dehumidifier
	prefix := v.Kind().String()

	onGetInt(s.Active.Int, prefix+" Active", func(ctx context.Context) (int, error) {
		active, err := v.Active(ctx)
		return activeValue(active), err
	})
	onSetInt(s.Active.Int, prefix+" Active", func(ctx context.Context, val int) error {
		return v.SetActive(ctx, val == characteristic.ActiveActive)
	})

	onGetInt(s.CurrentHumidifierDehumidifierState.Int, prefix+" CurrentHumidifierDehumidifierState", v.CurrentDehumidifierState)
	onGetFloat(s.CurrentRelativeHumidity.Float, prefix+" CurrentRelativeHumidity", v.CurrentHumidity)

	wireRotationSpeed(s.RotationSpeed, v)
	wireSwing(s.SwingMode, v)
}

func (acc *Sensibo) wireFan(v *View) {
	s := acc.Fan
	prefix := v.Kind().String()

	onGetInt(s.Active.Int, prefix+" Active", func(ctx context.Context) (int, error) {
		active, err := v.Active(ctx)
		return activeValue(active), err
	})
	onSetInt(s.Active.Int, prefix+" Active", func(ctx context.Context, val int) error {
		return v.SetActive(ctx, val == characteristic.ActiveActive)
	})

	onGetInt(s.CurrentFanState.Int, prefix+" CurrentFanState", v.CurrentFanState)

	wireRotationSpeed(s.RotationSpeed, v)
	wireSwing(s.SwingMode, v)
}

func wireRotationSpeed(c *characteristic.RotationSpeed, v *View) {
	name := v.Kind().String() + " RotationSpeed"
	onGetFloat(c.Float, name, func(ctx context.Context) (float64, error) {
		speed, err := v.RotationSpeed(ctx)
		return float64(speed), err
	})
	onSetFloat(c.Float, name, func(ctx context.Context, val float64) error {
		return v.SetRotationSpeed(ctx, int(math.Round(val)))
	})
}

func wireSwing(c *characteristic.SwingMode, v *View) {
	name := v.Kind().String() + " SwingMode"
	onGetInt(c.Int, name, func(ctx context.Context) (int, error) {
		enabled, err := v.Swing(ctx)
		return swingValue(enabled), err
	})
	onSetInt(c.Int, name, func(ctx context.Context, val int) error {
		return v.SetSwing(ctx, val == characteristic.SwingModeSwingEnabled)
	})
}

// Requests run to completion even if the controller goes away, so the
// handlers use a background context rather than the request's.

func onGetInt(c *characteristic.Int, name string, fn func(context.Context) (int, error)) {
	c.ValueRequestFunc = func(r *http.Request) (interface{}, int) {
		log.Info.Printf("%s GET", name)
		v, err := fn(context.Background())
		if err != nil {
			log.Info.Printf("%s GET error: %s", name, err.Error())
			return nil, hap.JsonStatusServiceCommunicationFailure
		}
		return v, hap.JsonStatusSuccess
	}
}

func onSetInt(c *characteristic.Int, name string, fn func(context.Context, int) error) {
	c.OnSetRemoteValue(func(v int) error {
		log.Info.Printf("%s SET %d", name, v)
		if err := fn(context.Background(), v); err != nil {
			log.Info.Printf("%s SET error: %s", name, err.Error())
			return err
		}
		return nil
	})
}

func onGetFloat(c *characteristic.Float, name string, fn func(context.Context) (float64, error)) {
	c.ValueRequestFunc = func(r *http.Request) (interface{}, int) {
		log.Info.Printf("%s GET", name)
		v, err := fn(context.Background())
		if err != nil {
			log.Info.Printf("%s GET error: %s", name, err.Error())
			return nil, hap.JsonStatusServiceCommunicationFailure
		}
		return v, hap.JsonStatusSuccess
	}
}

func onSetFloat(c *characteristic.Float, name string, fn func(context.Context, float64) error) {
	c.OnSetRemoteValue(func(v float64) error {
		log.Info.Printf("%s SET %.1f", name, v)
		if err := fn(context.Background(), v); err != nil {
			log.Info.Printf("%s SET error: %s", name, err.Error())
			return err
		}
		return nil
	})
}
