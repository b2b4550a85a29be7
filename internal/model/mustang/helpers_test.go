package mustang

import (
	"vehicle-emulator/internal/model"
)

type sentFrame struct {
	id   uint32
	data model.Payload
}

// recordingTransport captures every frame and can be told to fail per ID.
type recordingTransport struct {
	frames []sentFrame
	fail   map[uint32]error
}

func (r *recordingTransport) Send(id uint32, data model.Payload) error {
	if err := r.fail[id]; err != nil {
		return err
	}
	r.frames = append(r.frames, sentFrame{id: id, data: data})
	return nil
}

func (r *recordingTransport) all(id uint32) []model.Payload {
	var out []model.Payload
	for _, f := range r.frames {
		if f.id == id {
			out = append(out, f.data)
		}
	}
	return out
}

func (r *recordingTransport) last(id uint32) (model.Payload, bool) {
	all := r.all(id)
	if len(all) == 0 {
		return model.Payload{}, false
	}
	return all[len(all)-1], true
}

func (r *recordingTransport) reset() {
	r.frames = nil
}

type fakeClock struct {
	now int64
}

func (c *fakeClock) Now() int64 { return c.now }

const startTime = 10_000

func newTestModel() (*Model, *recordingTransport, *fakeClock) {
	clk := &fakeClock{now: startTime}
	m := New(clk.Now)
	rec := &recordingTransport{}
	m.Init(rec)
	return m, rec, clk
}

// tickAt advances the fake clock and runs one scheduler tick.
func tickAt(m *Model, clk *fakeClock, now int64) {
	clk.now = now
	m.Tick(now)
}
