package mustang

import (
	"bytes"
	"errors"
	"log"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"vehicle-emulator/internal/logger"
	"vehicle-emulator/internal/model"
	"vehicle-emulator/internal/types"
)

func TestScenarioFrames(t *testing.T) {
	m, rec, clk := newTestModel()

	for _, cmd := range [][]string{
		{"RPM", "6000"},
		{"SPEED", "60"},
		{"TIRE", "Driver Front", "32.0"},
		{"VIN", "1FAFP4041X1112345"},
		{"TEMP", "COOLANT", "212"},
	} {
		if err := m.HandleCommand(cmd); err != nil {
			t.Fatalf("%q: %v", cmd, err)
		}
	}
	tickAt(m, clk, startTime)

	tests := []struct {
		name string
		id   uint32
		want model.Payload
	}{
		{"rpm", IDRPM, model.Payload{0x00, 0x00, 0x00, 0x0B, 0xB8, 0x00, 0x00, 0x00}},
		{"speed", IDSpeed, model.Payload{0x00, 0x00, 0x00, 0x00, 0x60, 0x00, 0x25, 0x44}},
		{"tire", IDTirePressure, model.Payload{0x00, 0xDD, 0x00, 0xF1, 0x00, 0xF1, 0x00, 0xF1}},
		{"temperature", IDTemperature, model.Payload{0xA0, 0x00, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00}},
	}
	for _, tt := range tests {
		got, ok := rec.last(tt.id)
		if !ok {
			t.Errorf("%s: no frame on %#x", tt.name, tt.id)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: payload % X, want % X", tt.name, got, tt.want)
		}
	}

	vin := rec.all(IDVIN)
	if len(vin) != 3 {
		t.Fatalf("got %d VIN frames, want 3", len(vin))
	}
	if vin[2][7] != 0xFF {
		t.Errorf("third VIN frame should end in pad, got % X", vin[2])
	}
}

func TestVINUpdateIdempotent(t *testing.T) {
	m, rec, clk := newTestModel()
	const vin = "1FAFP4041X1112345"

	if err := m.HandleCommand([]string{"VIN", vin}); err != nil {
		t.Fatal(err)
	}
	tickAt(m, clk, startTime)
	first := rec.all(IDVIN)

	rec.reset()
	if err := m.HandleCommand([]string{"VIN", vin}); err != nil {
		t.Fatal(err)
	}
	tickAt(m, clk, startTime+200)
	if diff := cmp.Diff(first, rec.all(IDVIN)); diff != "" {
		t.Errorf("second identical VIN changed frames (-first +second):\n%s", diff)
	}

	rec.reset()
	err := m.HandleCommand([]string{"VIN", "SHORT"})
	if !errors.Is(err, ErrVINLength) {
		t.Fatalf("expected ErrVINLength, got %v", err)
	}
	tickAt(m, clk, startTime+400)
	if diff := cmp.Diff(first, rec.all(IDVIN)); diff != "" {
		t.Errorf("rejected VIN changed frames (-want +got):\n%s", diff)
	}
}

func TestDefaultVINFramesPreparedAtInit(t *testing.T) {
	m, rec, clk := newTestModel()
	tickAt(m, clk, startTime)

	want := packVIN(defaultVIN)
	if diff := cmp.Diff(want[:], rec.all(IDVIN)); diff != "" {
		t.Errorf("default VIN frames (-want +got):\n%s", diff)
	}
}

func TestTireRoundTrip(t *testing.T) {
	positions := []struct {
		name string
		byte int
	}{
		{"Driver Front", 1},
		{"Passenger Front", 3},
		{"Passenger Rear", 5},
		{"Driver Rear", 7},
	}
	pressures := []float32{0, 12.5, 30, 32, 35.5, 36.9, 37, 44, 80}

	m, rec, clk := newTestModel()
	now := int64(startTime)
	for _, pos := range positions {
		for _, psi := range pressures {
			cmd := []string{"TIRE", pos.name, strconv.FormatFloat(float64(psi), 'f', -1, 32)}
			if err := m.HandleCommand(cmd); err != nil {
				t.Fatalf("%q: %v", cmd, err)
			}
			rec.reset()
			now += 200
			tickAt(m, clk, now)

			got, ok := rec.last(IDTirePressure)
			if !ok {
				t.Fatalf("no tire frame at %d", now)
			}
			want := uint8(int32(psi*6.895+0.5) % 256)
			if got[pos.byte] != want {
				t.Errorf("%s %.1f psi: byte %d = %d, want %d", pos.name, psi, pos.byte, got[pos.byte], want)
			}
		}
	}
}

func TestBlinkersFlashInLockstep(t *testing.T) {
	m, rec, clk := newTestModel()
	if err := m.HandleCommand([]string{"BLINKER", "BOTH"}); err != nil {
		t.Fatal(err)
	}

	transitions := 0
	var prevLeft bool
	for now := int64(startTime); now < startTime+3000; now += 10 {
		rec.reset()
		tickAt(m, clk, now)

		frame, ok := rec.last(IDBlinker)
		if !ok {
			t.Fatalf("no blinker frame at %d", now)
		}
		mirror, _ := rec.last(IDBlinkerMirror)
		if mirror != frame {
			t.Fatalf("mirror frame differs at %d: % X vs % X", now, mirror, frame)
		}

		left := frame[6]&blinkerLeftBit != 0
		right := frame[4]&blinkerRightBit != 0
		if left != right {
			t.Fatalf("left=%v right=%v at %d", left, right, now)
		}
		if now > startTime && left != prevLeft {
			transitions++
			if (now-startTime)%blinkInterval != 0 {
				t.Errorf("transition at %d is off the %d ms boundary", now, blinkInterval)
			}
		}
		prevLeft = left
	}
	if transitions != 5 {
		t.Errorf("got %d transitions in 3s, want 5", transitions)
	}
}

func TestBlinkPhaseIgnoresEnabledSides(t *testing.T) {
	m, rec, clk := newTestModel()

	// phase runs while blinkers are off
	tickAt(m, clk, startTime)
	if !m.sched.blink.On {
		t.Fatal("phase should be on after the first tick")
	}

	if err := m.HandleCommand([]string{"BLINKER", "LEFT"}); err != nil {
		t.Fatal(err)
	}
	rec.reset()
	tickAt(m, clk, startTime+10)
	frame, _ := rec.last(IDBlinker)
	if frame[6]&blinkerLeftBit == 0 || frame[4]&blinkerRightBit != 0 {
		t.Errorf("left only, on phase: % X", frame)
	}

	rec.reset()
	tickAt(m, clk, startTime+500)
	frame, _ = rec.last(IDBlinker)
	if frame != blinkerTemplate {
		t.Errorf("off phase should be bare template, got % X", frame)
	}
}

func TestButtonHoldExpiry(t *testing.T) {
	m, rec, clk := newTestModel()
	if err := m.HandleCommand([]string{"SETTINGS"}); err != nil {
		t.Fatal(err)
	}

	pressed := model.Payload{0x46, 0x01}
	for now := int64(startTime); now <= startTime+buttonHold; now += 10 {
		rec.reset()
		tickAt(m, clk, now)
		got, _ := rec.last(IDButton)
		if got != pressed {
			t.Fatalf("at +%d ms button frame = % X, want % X", now-startTime, got, pressed)
		}
	}

	rec.reset()
	tickAt(m, clk, startTime+buttonHold+10)
	got, _ := rec.last(IDButton)
	if got != idleTemplate {
		t.Errorf("after hold window button frame = % X, want idle", got)
	}
	if m.state.button.active || m.state.button.frame[1] != 0 {
		t.Errorf("button not fully released: %+v", m.state.button)
	}
	if snap := m.Snapshot(); snap.ButtonActive || snap.Button != types.ButtonNone {
		t.Errorf("snapshot still reports a press: %+v", snap)
	}
}

func TestButtonCodes(t *testing.T) {
	tests := []struct {
		token string
		want  [2]byte
	}{
		{"UP", [2]byte{0x08, 0x00}},
		{"DOWN", [2]byte{0x01, 0x00}},
		{"LEFT", [2]byte{0x02, 0x00}},
		{"RIGHT", [2]byte{0x04, 0x00}},
		{"OK", [2]byte{0x10, 0x00}},
		{"SETTINGS", [2]byte{0x46, 0x01}},
	}
	for _, tt := range tests {
		m, rec, clk := newTestModel()
		if err := m.HandleCommand([]string{tt.token}); err != nil {
			t.Fatal(err)
		}
		tickAt(m, clk, startTime+5)
		got, _ := rec.last(IDButton)
		if got[0] != tt.want[0] || got[1] != tt.want[1] {
			t.Errorf("%s: frame % X, want code % X", tt.token, got, tt.want)
		}
	}
}

func TestEmissionIntervals(t *testing.T) {
	m, rec, clk := newTestModel()
	tickAt(m, clk, startTime)

	counts := func() map[uint32]int {
		c := make(map[uint32]int)
		for _, f := range rec.frames {
			c[f.id]++
		}
		return c
	}

	want := map[uint32]int{
		IDButton: 1, IDRPM: 1, IDSpeed: 1, IDTemperature: 1, IDTirePressure: 1,
		IDVIN: 3, IDBlinker: 1, IDBlinkerMirror: 1, IDDrivetrain: 1, IDStability: 1,
	}
	if diff := cmp.Diff(want, counts()); diff != "" {
		t.Errorf("first tick (-want +got):\n%s", diff)
	}

	rec.reset()
	tickAt(m, clk, startTime+5)
	if len(rec.frames) != 0 {
		t.Errorf("nothing is due 5 ms later, got %d frames", len(rec.frames))
	}

	rec.reset()
	tickAt(m, clk, startTime+100)
	want = map[uint32]int{
		IDButton: 1, IDRPM: 1, IDSpeed: 1, IDTemperature: 1,
		IDBlinker: 1, IDBlinkerMirror: 1, IDDrivetrain: 1, IDStability: 1,
	}
	if diff := cmp.Diff(want, counts()); diff != "" {
		t.Errorf("tick at +100 ms (-want +got):\n%s", diff)
	}
}

func TestTransportErrorsAreSkipped(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewLogger(log.New(&buf, "", 0), logger.LogLevelInfo)
	gate := logger.NewGate(l, 0, true)

	clk := &fakeClock{now: startTime}
	m := New(clk.Now, WithLogger(l), WithGate(gate))
	rec := &recordingTransport{fail: map[uint32]error{IDRPM: errors.New("tx buffer full")}}
	m.Init(rec)

	tickAt(m, clk, startTime)
	if len(rec.all(IDRPM)) != 0 {
		t.Fatal("failed frame was recorded")
	}
	if len(rec.all(IDSpeed)) != 1 {
		t.Error("frames after the failing one were not sent")
	}
	if !strings.Contains(buf.String(), "Error Sending RPM Message") {
		t.Errorf("send failure not reported: %q", buf.String())
	}

	// no retry inside the interval, fresh attempt once due
	delete(rec.fail, IDRPM)
	tickAt(m, clk, startTime+50)
	if len(rec.all(IDRPM)) != 0 {
		t.Error("rpm frame retried before its interval")
	}
	tickAt(m, clk, startTime+100)
	if len(rec.all(IDRPM)) != 1 {
		t.Error("rpm frame not sent on next due tick")
	}
}

func TestTickWithoutTransportIsNoop(t *testing.T) {
	m := New(nil)
	m.Tick(startTime)
	if err := m.HandleCommand([]string{"RPM", "1000"}); err != nil {
		t.Fatal(err)
	}
	m.Tick(startTime + 100)
	if m.Snapshot().RPM != 1000 {
		t.Error("command not applied without transport")
	}
}

func TestButtonWithoutClockUsesLastTick(t *testing.T) {
	m := New(nil)
	rec := &recordingTransport{}
	m.Init(rec)
	m.Tick(startTime)
	if err := m.HandleCommand([]string{"OK"}); err != nil {
		t.Fatal(err)
	}
	if m.state.button.pressedAt != startTime {
		t.Errorf("pressedAt = %d, want %d", m.state.button.pressedAt, startTime)
	}
}

func TestFactoryBuildsModel(t *testing.T) {
	var mdl model.Model = Factory(nil, nil)(func() int64 { return 0 })
	if mdl.Name() != Name {
		t.Errorf("Name() = %q", mdl.Name())
	}
	if _, ok := mdl.(model.Snapshotter); !ok {
		t.Error("mustang model should publish snapshots")
	}
}
