package mustang

import (
	"strconv"

	"vehicle-emulator/internal/logger"
	"vehicle-emulator/internal/model"
)

// blinkInterval is the half-period of the turn-signal flash, in ms.
const blinkInterval = 500

// BlinkPhase is shared by every frame that carries lamp bits.
type BlinkPhase struct {
	On         bool
	lastToggle int64
}

func (p *BlinkPhase) advance(now int64) {
	if now-p.lastToggle >= blinkInterval {
		p.On = !p.On
		p.lastToggle = now
	}
}

// emitter is one periodically transmitted identifier. Only lastFired
// changes after construction.
type emitter struct {
	id        uint32
	name      string
	interval  int64
	lastFired int64
	prepare   func(s *State, now int64)
	encode    encoder
}

func defaultEmitters() []*emitter {
	return []*emitter{
		{id: IDButton, name: "Button", interval: 10, encode: encodeButton,
			prepare: func(s *State, now int64) { s.expireButton(now) }},
		{id: IDRPM, name: "RPM", interval: 100, encode: encodeRPM},
		{id: IDSpeed, name: "Speed", interval: 100, encode: encodeSpeed},
		{id: IDTemperature, name: "Temperature", interval: 100, encode: encodeTemperature},
		{id: IDTirePressure, name: "Tire Pressure", interval: 200, encode: encodeTirePressure},
		{id: IDVIN, name: "VIN", interval: 200, encode: encodeVIN},
		{id: IDBlinker, name: "Blinker", interval: 10, encode: encodeBlinker},
		{id: IDBlinkerMirror, name: "Blinker Mirror", interval: 10, encode: encodeBlinker},
		{id: IDDrivetrain, name: "Drivetrain", interval: 10, encode: constant(drivetrainFrame)},
		{id: IDStability, name: "ABS/Traction", interval: 10, encode: constant(stabilityFrame)},
	}
}

type scheduler struct {
	emitters []*emitter
	blink    BlinkPhase
	gate     *logger.Gate
}

func newScheduler(gate *logger.Gate) *scheduler {
	return &scheduler{
		emitters: defaultEmitters(),
		gate:     gate,
	}
}

// tick sends every due emitter and returns the number of frames accepted by
// the transport. Send failures are reported and skipped; the next due tick
// sends fresh state.
func (sc *scheduler) tick(now int64, s *State, t model.Transport) int {
	if t == nil {
		return 0
	}
	sc.blink.advance(now)

	sent := 0
	for _, e := range sc.emitters {
		if now-e.lastFired < e.interval {
			continue
		}
		if e.prepare != nil {
			e.prepare(s, now)
		}
		payloads := e.encode(s, sc.blink)
		for i, p := range payloads {
			if err := t.Send(e.id, p); err != nil {
				sc.gate.Warnf(now, "Error Sending %s Message%s (0x%03X): %v", e.name, part(payloads, i), e.id, err)
				continue
			}
			sent++
			sc.gate.Infof(now, "%s Message%s Sent", e.name, part(payloads, i))
		}
		e.lastFired = now
	}
	return sent
}

func part(payloads []model.Payload, i int) string {
	if len(payloads) < 2 {
		return ""
	}
	return " Part " + strconv.Itoa(i)
}
