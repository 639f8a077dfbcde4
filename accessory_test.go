package shkb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brutella/hap"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"

	"github.com/cloudkucooland/HomeKitBridges/SensiboHKBridge/sensibo"
)

func newTestAccessory(t *testing.T, ac map[string]interface{}) (*fakePod, *Sensibo, *Metrics) {
	t.Helper()
	pod, client := newFakePod(t, ac)
	m := NewMetrics()
	d := NewDevice(client, m)
	info := &sensibo.Pod{ID: "pod1", Room: &sensibo.Room{Name: "Office"}, ProductModel: "skyv2"}
	return pod, NewSensibo("", info, d, 60), m
}

func TestAccessoryServices(t *testing.T) {
	_, acc, _ := newTestAccessory(t, map[string]interface{}{"on": false})

	if acc.Info.Name.Value() != "Office" {
		t.Fatalf("expected room name, got %q", acc.Info.Name.Value())
	}
	if acc.Info.SerialNumber.Value() != "pod1" {
		t.Fatalf("expected pod id as serial, got %q", acc.Info.SerialNumber.Value())
	}

	found := make(map[string]bool)
	for _, s := range acc.Services() {
		found[s.Type] = true
	}
	for _, typ := range []string{service.TypeHeaterCooler, service.TypeHumidifierDehumidifier, service.TypeFanV2} {
		if !found[typ] {
			t.Errorf("missing service %s", typ)
		}
	}

	// must not panic or touch the pod
	acc.Identify()
}

func TestAccessoryGetHandlers(t *testing.T) {
	_, acc, _ := newTestAccessory(t, map[string]interface{}{"on": true, "mode": "cool", "targetTemperature": 22, "fanLevel": "medium"})

	v, status := acc.HeaterCooler.Active.ValueRequestFunc(nil)
	if status != hap.JsonStatusSuccess || v != characteristic.ActiveActive {
		t.Fatalf("heater/cooler active = %v (%d)", v, status)
	}
	v, status = acc.HeaterCooler.CurrentHeaterCoolerState.ValueRequestFunc(nil)
	if status != hap.JsonStatusSuccess || v != characteristic.CurrentHeaterCoolerStateCooling {
		t.Fatalf("current state = %v (%d)", v, status)
	}
	v, status = acc.HeaterCooler.CoolingThresholdTemperature.ValueRequestFunc(nil)
	if status != hap.JsonStatusSuccess || v != 22.0 {
		t.Fatalf("cooling threshold = %v (%d)", v, status)
	}
	v, status = acc.HeaterCooler.HeatingThresholdTemperature.ValueRequestFunc(nil)
	if status != hap.JsonStatusSuccess || v != 22.0 {
		t.Fatalf("heating threshold = %v (%d)", v, status)
	}
	v, status = acc.Fan.RotationSpeed.ValueRequestFunc(nil)
	if status != hap.JsonStatusSuccess || v != 3.0 {
		t.Fatalf("rotation speed = %v (%d)", v, status)
	}
	v, status = acc.Fan.Active.ValueRequestFunc(nil)
	if status != hap.JsonStatusSuccess || v != characteristic.ActiveInactive {
		t.Fatalf("fan active = %v (%d)", v, status)
	}
}

func TestAccessoryGetFailure(t *testing.T) {
	pod, acc, _ := newTestAccessory(t, map[string]interface{}{"on": true, "mode": "cool"})
	pod.setFail(true)

	if _, status := acc.HeaterCooler.Active.ValueRequestFunc(nil); status != hap.JsonStatusServiceCommunicationFailure {
		t.Fatalf("expected communication failure, got %d", status)
	}
	if _, status := acc.Dehumidifier.CurrentRelativeHumidity.ValueRequestFunc(nil); status != hap.JsonStatusServiceCommunicationFailure {
		t.Fatalf("expected communication failure, got %d", status)
	}
}

func TestAccessoryPushesSiblingDeactivation(t *testing.T) {
	_, acc, _ := newTestAccessory(t, map[string]interface{}{"on": true, "mode": "cool"})
	acc.HeaterCooler.Active.SetValue(characteristic.ActiveActive)
	acc.HeaterCooler.CurrentHeaterCoolerState.SetValue(characteristic.CurrentHeaterCoolerStateCooling)

	if err := acc.Device().View(Fan).SetActive(context.Background(), true); err != nil {
		t.Fatalf("activate fan: %v", err)
	}
	if acc.HeaterCooler.Active.Value() != characteristic.ActiveInactive {
		t.Fatal("heater/cooler active not pushed to inactive")
	}
	if acc.HeaterCooler.CurrentHeaterCoolerState.Value() != characteristic.CurrentHeaterCoolerStateInactive {
		t.Fatal("heater/cooler state not pushed to inactive")
	}
}

func TestAccessoryUpdate(t *testing.T) {
	pod, acc, _ := newTestAccessory(t, map[string]interface{}{
		"on": true, "mode": "dry", "targetTemperature": 40, "fanLevel": "high",
		"swing": "rangeFull", "horizontalSwing": "rangeFull",
	})
	pod.setMeasurements(27.5, 61)

	if err := acc.Update(context.Background()); err != nil {
		t.Fatalf("update: %v", err)
	}

	if acc.Dehumidifier.Active.Value() != characteristic.ActiveActive {
		t.Error("dehumidifier should be active")
	}
	if acc.Dehumidifier.CurrentHumidifierDehumidifierState.Value() != characteristic.CurrentHumidifierDehumidifierStateDehumidifying {
		t.Error("dehumidifier should be dehumidifying")
	}
	if acc.HeaterCooler.Active.Value() != characteristic.ActiveInactive || acc.Fan.Active.Value() != characteristic.ActiveInactive {
		t.Error("only the dehumidifier may be active")
	}
	if acc.Dehumidifier.CurrentRelativeHumidity.Value() != 61 || acc.HeaterCooler.CurrentTemperature.Value() != 27.5 {
		t.Error("measurements not pushed")
	}
	if acc.Fan.RotationSpeed.Value() != 5 || acc.Fan.SwingMode.Value() != characteristic.SwingModeSwingEnabled {
		t.Error("fan speed or swing not pushed")
	}
}

func TestAccessoryUpdateKeepsHeldTarget(t *testing.T) {
	_, acc, _ := newTestAccessory(t, map[string]interface{}{"on": false, "mode": "cool"})
	ctx := context.Background()

	if err := acc.Device().View(HeaterCooler).SetTargetHeaterCoolerState(ctx, characteristic.TargetHeaterCoolerStateHeat); err != nil {
		t.Fatalf("set target: %v", err)
	}
	if err := acc.Update(ctx); err != nil {
		t.Fatalf("update: %v", err)
	}
	if acc.HeaterCooler.TargetHeaterCoolerState.Value() != characteristic.TargetHeaterCoolerStateHeat {
		t.Fatal("poll replaced the held heat target with the pod's resting mode")
	}
}

func TestPollRate(t *testing.T) {
	pod, acc, _ := newTestAccessory(t, map[string]interface{}{"on": false})

	if got := acc.pollInterval(); got != 60*time.Second {
		t.Fatalf("initial interval %s", got)
	}
	acc.Settings.PollRate.SetValue(30)
	if got := acc.pollInterval(); got != 30*time.Second {
		t.Fatalf("interval after write %s", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		acc.Poll(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poll did not stop on a canceled context")
	}
	if n := pod.fetchCount(); n != 0 {
		t.Fatalf("canceled poll reached the pod %d times", n)
	}
}

func TestThresholdBounds(t *testing.T) {
	tests := []struct {
		temp          float64
		cooling, heat bool
	}{
		{9, false, false},
		{10, false, true},
		{18, true, true},
		{30, true, true},
		{31, true, false},
		{32, true, false},
		{40, false, false},
	}
	for _, tt := range tests {
		if got := inRange(tt.temp, coolingMin, coolingMax); got != tt.cooling {
			t.Errorf("%.0f in cooling range: %t", tt.temp, got)
		}
		if got := inRange(tt.temp, heatingMin, heatingMax); got != tt.heat {
			t.Errorf("%.0f in heating range: %t", tt.temp, got)
		}
	}
}

func TestRouter(t *testing.T) {
	_, acc, m := newTestAccessory(t, map[string]interface{}{"on": true, "mode": "heat", "targetTemperature": 21, "fanLevel": "low"})
	if err := acc.Update(context.Background()); err != nil {
		t.Fatalf("update: %v", err)
	}
	router := Router(acc, m)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
	var report statusReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if report.ID != "pod1" || !report.Power || report.Mode != "heat" || report.FanLevel != "low" || report.TargetTemperature != 21 {
		t.Fatalf("unexpected report %+v", report)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "sensibo_power 1") {
		t.Fatalf("metrics missing power gauge:\n%s", body)
	}
	if !strings.Contains(body, `sensibo_mode{mode="heat"} 1`) {
		t.Fatalf("metrics missing mode gauge:\n%s", body)
	}
}
