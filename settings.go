package shkb

import (
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/log"
	"github.com/brutella/hap/service"
)

// bridge-wide tunable parameters, hidden from the Home app
type settingsSvc struct {
	*service.S

	Name     *characteristic.Name
	PollRate *pollRate
}

type pollRate struct {
	*characteristic.Int
}

func newSettingsSvc(interval int) *settingsSvc {
	s := settingsSvc{}
	s.S = service.New("E880") // custom
	s.S.Hidden = true

	s.Name = characteristic.NewName()
	s.Name.SetValue("Settings")
	s.AddC(s.Name.C)

	s.PollRate = newPollRate(interval)
	s.AddC(s.PollRate.C)

	return &s
}

func newPollRate(interval int) *pollRate {
	c := characteristic.NewInt("E8802")
	c.Format = characteristic.FormatUInt32
	c.Permissions = []string{characteristic.PermissionRead, characteristic.PermissionWrite}
	c.Description = "Poll Rate"
	c.SetMinValue(minPollInterval)
	c.SetMaxValue(maxPollInterval)
	c.SetValue(clampPollInterval(interval))

	c.OnValueRemoteUpdate(func(seconds int) {
		log.Info.Printf("poll rate set to %ds", seconds)
	})

	return &pollRate{c}
}

// seconds reads the current value, clamped in case a controller ignored the bounds
func (p *pollRate) seconds() int {
	return clampPollInterval(p.Value())
}
