package shkb

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cloudkucooland/HomeKitBridges/SensiboHKBridge/sensibo"
)

// fakePod is an in-memory Sensibo API for a single pod
type fakePod struct {
	t *testing.T

	mu      sync.Mutex
	ac      map[string]interface{}
	meas    sensibo.Measurements
	fetches int
	writes  []string // "field=value" in arrival order
	fail    bool     // answer everything with status "fail"
	failOn  string   // answer writes to this field with status "fail"
}

func newFakePod(t *testing.T, ac map[string]interface{}) (*fakePod, *sensibo.Client) {
	t.Helper()
	f := &fakePod{t: t, ac: ac}
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return f, sensibo.New("pod1", "key", sensibo.WithBaseURL(server.URL))
}

func (f *fakePod) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Query().Get("apiKey") != "key" {
		f.t.Errorf("missing apiKey on %s", r.URL)
	}
	if f.fail {
		_, _ = io.WriteString(w, `{"status":"fail","reason":"simulated"}`)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/pods/pod1":
		f.fetches++
		result := map[string]interface{}{"id": "pod1", "room": map[string]string{"name": "Office"}}
		fields := r.URL.Query().Get("fields")
		if fields == "*" || strings.Contains(fields, "acState") {
			result["acState"] = f.ac
		}
		if fields == "*" || strings.Contains(fields, "measurements") {
			result["measurements"] = f.meas
		}
		f.reply(w, result)

	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/pods/pod1/acStates/"):
		field := strings.TrimPrefix(r.URL.Path, "/pods/pod1/acStates/")
		var body struct {
			NewValue interface{} `json:"newValue"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			f.t.Errorf("decode patch: %v", err)
		}
		if field == f.failOn {
			_, _ = io.WriteString(w, `{"status":"fail","reason":"simulated"}`)
			return
		}
		f.apply(field, body.NewValue)
		f.reply(w, map[string]interface{}{"status": "Success", "changedProperties": []string{field}})

	case r.Method == http.MethodPost && r.URL.Path == "/pods/pod1/acStates":
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			f.t.Errorf("decode update: %v", err)
		}
		// deterministic order for assertions
		for _, k := range []string{"swing", "horizontalSwing"} {
			if v, ok := body[k]; ok {
				f.apply(k, v)
			}
		}
		f.reply(w, map[string]interface{}{"status": "Success"})

	default:
		f.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakePod) apply(field string, v interface{}) {
	f.ac[field] = v
	b, _ := json.Marshal(v)
	f.writes = append(f.writes, field+"="+string(b))
}

func (f *fakePod) reply(w http.ResponseWriter, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": "success", "result": result})
}

func (f *fakePod) writeLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

func (f *fakePod) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakePod) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakePod) setMeasurements(temp, humidity float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meas.Temperature = temp
	f.meas.Humidity = humidity
}
