package shkb

import (
	"context"
	"sync"
	"time"

	"github.com/brutella/hap/log"

	"github.com/cloudkucooland/HomeKitBridges/SensiboHKBridge/sensibo"
)

// Remote is the part of the sensibo client the views need
type Remote interface {
	Fetch(ctx context.Context, groups ...sensibo.FieldGroup) (*sensibo.Pod, error)
	PatchField(ctx context.Context, field sensibo.Field, value interface{}) (*sensibo.ChangeResult, error)
	BulkUpdate(ctx context.Context, fields map[sensibo.Field]interface{}) (*sensibo.ChangeResult, error)
}

// Device coordinates the views of one physical pod. There is no lock around
// the pod itself: concurrent writes from different views race at the vendor
// and the last power write wins.
type Device struct {
	remote    Remote
	overrides *overrides
	metrics   *Metrics
	views     map[ViewKind]*View

	mu            sync.Mutex
	target        Mode // last heat/cool seen or requested, used when the heater/cooler is activated
	held          bool // target was chosen while the heater/cooler was off, the pod's resting mode must not replace it
	fahrenheit    bool // unit of the pod's target temperature, from the last acState seen
	last          State
	lastRefresh   time.Time
	onDeactivated func(ViewKind)
}

// NewDevice builds the device and its three views. m may be nil.
func NewDevice(r Remote, m *Metrics) *Device {
	d := &Device{
		remote:    r,
		overrides: newOverrides(),
		metrics:   m,
		views:     make(map[ViewKind]*View, len(viewKinds)),
		target:    ModeCool,
	}
	for _, k := range viewKinds {
		d.views[k] = &View{kind: k, d: d}
	}
	return d
}

func (d *Device) View(k ViewKind) *View {
	return d.views[k]
}

// OnDeactivated is called for every sibling after a view takes over the pod,
// so the shell can push the change to subscribed controllers
func (d *Device) OnDeactivated(fn func(ViewKind)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onDeactivated = fn
}

// Refresh does a full fetch. It is authoritative, so any pending overrides
// are dropped.
func (d *Device) Refresh(ctx context.Context) (State, error) {
	p, err := d.remote.Fetch(ctx)
	if err != nil {
		d.metrics.remoteError("fetch", err)
		return State{}, err
	}
	s := decodeState(p)
	d.overrides.clearAll()
	d.observe(s)

	d.mu.Lock()
	d.last = s
	d.lastRefresh = time.Now()
	d.mu.Unlock()

	d.metrics.observeState(s)
	return s, nil
}

// Last is the state from the most recent Refresh, for status reporting only
func (d *Device) Last() (State, time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.lastRefresh
}

// observe remembers the last heat/cool mode so activation restores it. A
// running heater/cooler always wins; a pod that is off only fills in the
// target if nobody picked one since.
func (d *Device) observe(s State) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s.TemperatureUnit != UnitUnknown {
		d.fahrenheit = s.TemperatureUnit == UnitFahrenheit
	}
	if s.Mode != ModeHeat && s.Mode != ModeCool {
		return
	}
	if activeFor(HeaterCooler, s) {
		d.target = s.Mode
		d.held = false
		return
	}
	if !d.held {
		d.target = s.Mode
	}
}

func (d *Device) heaterCoolerTarget() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target
}

// heaterCoolerTargetFor is the pod's own heat/cool while the heater/cooler
// runs, otherwise the remembered target
func (d *Device) heaterCoolerTargetFor(s State) int {
	if activeFor(HeaterCooler, s) {
		if t, ok := targetHeaterCoolerState(s); ok {
			return t
		}
	}
	t, _ := targetHeaterCoolerState(State{Mode: d.heaterCoolerTarget()})
	return t
}

func (d *Device) setHeaterCoolerTarget(m Mode, held bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.target = m
	d.held = held
}

func (d *Device) usesFahrenheit() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fahrenheit
}

func (d *Device) patch(ctx context.Context, field sensibo.Field, value interface{}) error {
	if _, err := d.remote.PatchField(ctx, field, value); err != nil {
		d.metrics.remoteError("patch", err)
		return err
	}
	return nil
}

func (d *Device) deactivateSiblings(owner ViewKind) {
	d.mu.Lock()
	fn := d.onDeactivated
	d.mu.Unlock()

	for _, k := range viewKinds {
		if k == owner {
			continue
		}
		d.overrides.set(k, false)
		if fn != nil {
			fn(k)
		}
	}
}

// View is one logical HomeKit service backed by the shared pod. All methods
// are safe for concurrent use and each performs its own remote calls.
type View struct {
	kind ViewKind
	d    *Device
}

func (v *View) Kind() ViewKind {
	return v.kind
}

func (v *View) fetch(ctx context.Context, groups ...sensibo.FieldGroup) (State, error) {
	p, err := v.d.remote.Fetch(ctx, groups...)
	if err != nil {
		v.d.metrics.remoteError("fetch", err)
		return State{}, err
	}
	v.d.overrides.clear(v.kind)
	s := decodeState(p)
	v.d.observe(s)
	return s, nil
}

// ownedMode is the mode written when this view is activated
func (v *View) ownedMode() Mode {
	switch v.kind {
	case Dehumidifier:
		return ModeDry
	case Fan:
		return ModeFan
	default:
		return v.d.heaterCoolerTarget()
	}
}

// Active reports whether this view owns the pod. A sibling that just took
// over leaves a pending false here, which is returned once without a fetch.
func (v *View) Active(ctx context.Context) (bool, error) {
	if active, ok := v.d.overrides.take(v.kind); ok {
		log.Debug.Printf("%s: active from local override: %t", v.kind, active)
		return active, nil
	}
	s, err := v.fetch(ctx, sensibo.GroupAcState)
	if err != nil {
		return false, err
	}
	return activeFor(v.kind, s), nil
}

// SetActive turns this view on by writing its mode then power, or turns the
// pod off if and only if this view is the one currently running it.
func (v *View) SetActive(ctx context.Context, active bool) error {
	s, err := v.fetch(ctx, sensibo.GroupAcState)
	if err != nil {
		return err
	}
	current := activeFor(v.kind, s)

	if !active {
		if !current {
			log.Info.Printf("%s: not active (power: %t mode: %s), leaving pod alone", v.kind, s.Power, s.Mode)
			return nil
		}
		if err := v.d.patch(ctx, sensibo.FieldOn, false); err != nil {
			return err
		}
		v.d.overrides.clear(v.kind)
		return nil
	}

	if current {
		log.Info.Printf("%s: already active in %s", v.kind, s.Mode)
		return nil
	}

	// mode first: powering on with a stale mode briefly runs the wrong program
	mode := v.ownedMode()
	if err := v.d.patch(ctx, sensibo.FieldMode, mode.String()); err != nil {
		return err
	}
	if err := v.d.patch(ctx, sensibo.FieldOn, true); err != nil {
		return err
	}
	v.d.overrides.clear(v.kind)
	if v.kind == HeaterCooler {
		v.d.setHeaterCoolerTarget(mode, false)
	}
	v.d.deactivateSiblings(v.kind)
	return nil
}

func (v *View) CurrentHeaterCoolerState(ctx context.Context) (int, error) {
	s, err := v.fetch(ctx, sensibo.GroupAcState)
	if err != nil {
		return 0, err
	}
	return currentHeaterCoolerState(s), nil
}

// TargetHeaterCoolerState falls back to the remembered target while the
// heater/cooler is not the one running the pod
func (v *View) TargetHeaterCoolerState(ctx context.Context) (int, error) {
	s, err := v.fetch(ctx, sensibo.GroupAcState)
	if err != nil {
		return 0, err
	}
	return v.d.heaterCoolerTargetFor(s), nil
}

// SetTargetHeaterCoolerState only touches the pod while the heater/cooler is
// the active view; otherwise the target is kept for the next activation.
func (v *View) SetTargetHeaterCoolerState(ctx context.Context, target int) error {
	mode, err := modeFor(target)
	if err != nil {
		return err
	}
	s, err := v.fetch(ctx, sensibo.GroupAcState)
	if err != nil {
		return err
	}
	if !activeFor(HeaterCooler, s) {
		log.Info.Printf("%s: inactive, holding target %s for next activation", v.kind, mode)
		v.d.setHeaterCoolerTarget(mode, true)
		return nil
	}
	if s.Mode == mode {
		return nil
	}
	if err := v.d.patch(ctx, sensibo.FieldMode, mode.String()); err != nil {
		return err
	}
	v.d.setHeaterCoolerTarget(mode, false)
	return nil
}

func (v *View) CurrentDehumidifierState(ctx context.Context) (int, error) {
	s, err := v.fetch(ctx, sensibo.GroupAcState)
	if err != nil {
		return 0, err
	}
	return currentDehumidifierState(s), nil
}

func (v *View) CurrentFanState(ctx context.Context) (int, error) {
	s, err := v.fetch(ctx, sensibo.GroupAcState)
	if err != nil {
		return 0, err
	}
	return currentFanState(s), nil
}

// CurrentTemperature is the room temperature from the pod's sensor
func (v *View) CurrentTemperature(ctx context.Context) (float64, error) {
	s, err := v.fetch(ctx, sensibo.GroupMeasurements)
	if err != nil {
		return 0, err
	}
	return s.CurrentTemperature, nil
}

func (v *View) CurrentHumidity(ctx context.Context) (float64, error) {
	s, err := v.fetch(ctx, sensibo.GroupMeasurements)
	if err != nil {
		return 0, err
	}
	return s.CurrentHumidity, nil
}

// Threshold backs both the cooling and heating threshold characteristics;
// the pod has a single target temperature
func (v *View) Threshold(ctx context.Context) (float64, error) {
	s, err := v.fetch(ctx, sensibo.GroupAcState)
	if err != nil {
		return 0, err
	}
	return s.TargetTemperature, nil
}

// SetThreshold takes Celsius and writes in the pod's own unit
func (v *View) SetThreshold(ctx context.Context, temp float64) error {
	if v.d.usesFahrenheit() {
		return v.d.patch(ctx, sensibo.FieldTargetTemperature, fahrenheitFromCelsius(temp))
	}
	return v.d.patch(ctx, sensibo.FieldTargetTemperature, temp)
}

func (v *View) RotationSpeed(ctx context.Context) (int, error) {
	s, err := v.fetch(ctx, sensibo.GroupAcState)
	if err != nil {
		return 0, err
	}
	return rotationSpeedForFanLevel(s.FanLevel), nil
}

// SetRotationSpeed ignores 0, controllers send it as "unknown" rather than "off"
func (v *View) SetRotationSpeed(ctx context.Context, speed int) error {
	if speed == 0 {
		return nil
	}
	level, err := fanLevelForRotationSpeed(speed)
	if err != nil {
		return err
	}
	return v.d.patch(ctx, sensibo.FieldFanLevel, level.String())
}

func (v *View) Swing(ctx context.Context) (bool, error) {
	s, err := v.fetch(ctx, sensibo.GroupAcState)
	if err != nil {
		return false, err
	}
	return swingEnabled(s), nil
}

// SetSwing writes both swing axes in one call; on error either may have applied
func (v *View) SetSwing(ctx context.Context, enabled bool) error {
	if _, err := v.d.remote.BulkUpdate(ctx, swingFieldsFor(enabled)); err != nil {
		v.d.metrics.remoteError("update", err)
		return err
	}
	return nil
}
