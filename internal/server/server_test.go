package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avolkov/lightshal/internal/props"
	"github.com/avolkov/lightshal/internal/sysfs"
	"github.com/avolkov/lightshal/lights"
)

func newTestServer(t *testing.T) (*httptest.Server, *sysfs.Memory) {
	t.Helper()
	hw := sysfs.NewMemory()
	ctrl := lights.NewController(hw, props.NewStatic(nil))
	srv, err := New("127.0.0.1:0", ctrl, false)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, hw
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSetNotification(t *testing.T) {
	ts, hw := newTestServer(t)

	resp := post(t, ts, "/lights/notification", `{"color": "#112233"}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	values := hw.Values()
	if values[sysfs.Red] != 0x11 || values[sysfs.Green] != 0x22 || values[sysfs.Blue] != 0x33 {
		t.Errorf("rendered RGB = (%#x,%#x,%#x), want (0x11,0x22,0x33)",
			values[sysfs.Red], values[sysfs.Green], values[sysfs.Blue])
	}
}

func TestSetBacklight(t *testing.T) {
	ts, hw := newTestServer(t)

	resp := post(t, ts, "/lights/backlight", `{"color": "0xFFFFFF"}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if got := hw.Values()[sysfs.Backlight]; got != 255 {
		t.Errorf("backlight = %d, want 255", got)
	}
}

func TestSetTimedFlash(t *testing.T) {
	ts, hw := newTestServer(t)

	resp := post(t, ts, "/lights/notification",
		`{"color": "#FF0000", "flash_mode": "timed", "flash_on_ms": 500, "flash_off_ms": 500}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	ops := hw.Ops()
	if len(ops) != 1 || ops[0].Reg != sysfs.RedBlink {
		t.Errorf("ops = %v, want single red_blink write", ops)
	}
}

func TestUnknownLight(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := post(t, ts, "/lights/sound", `{"color": "#112233"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestBadRequests(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"bad color", `{"color": "#nope"}`},
		{"bad flash mode", `{"color": "#112233", "flash_mode": "strobe"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, "/lights/notification", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"", 0, false},
		{"#112233", 0x112233, false},
		{"#FF112233", 0xFF112233, false},
		{"0x112233", 0x112233, false},
		{"1122867", 0x112233, false},
		{"#xyz", 0, true},
		{"notacolor", 0, true},
	}
	for _, tt := range tests {
		got, err := parseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseColor(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}
