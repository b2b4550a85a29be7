package hardware

import (
	"context"
	"errors"
	"testing"
	"time"

	"vehicle-emulator/internal/model"

	"github.com/brutella/can"
	"github.com/google/go-cmp/cmp"
	einride "go.einride.tech/can"
)

var testPayload = model.Payload{0x00, 0x00, 0x00, 0x05, 0xDC, 0x00, 0x00, 0x00}

type fakePublisher struct {
	frames       []can.Frame
	err          error
	disconnected bool
}

func (f *fakePublisher) Publish(frame can.Frame) error {
	f.frames = append(f.frames, frame)
	return f.err
}

func (f *fakePublisher) Disconnect() error {
	f.disconnected = true
	return nil
}

func TestBrutellaSend(t *testing.T) {
	pub := &fakePublisher{}
	tr := &BrutellaTransport{bus: pub, iface: "vcan0"}

	if err := tr.Send(0x204, testPayload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	want := []can.Frame{{ID: 0x204, Length: 8, Data: [8]uint8(testPayload)}}
	if diff := cmp.Diff(want, pub.frames); diff != "" {
		t.Errorf("frames (-want +got):\n%s", diff)
	}

	pub.err = errors.New("no buffer space")
	if err := tr.Send(0x204, testPayload); err == nil {
		t.Error("expected publish error to surface")
	}

	if err := tr.Close(); err != nil || !pub.disconnected {
		t.Errorf("Close = %v, disconnected = %v", err, pub.disconnected)
	}
}

type fakeTransmitter struct {
	frames      []einride.Frame
	hadDeadline bool
}

func (f *fakeTransmitter) TransmitFrame(ctx context.Context, frame einride.Frame) error {
	_, f.hadDeadline = ctx.Deadline()
	f.frames = append(f.frames, frame)
	return nil
}

type fakeCloser struct{ closed bool }

func (f *fakeCloser) Close() error {
	f.closed = true
	return nil
}

func TestEinrideSend(t *testing.T) {
	tx := &fakeTransmitter{}
	conn := &fakeCloser{}
	tr := &EinrideTransport{conn: conn, tx: tx, timeout: time.Millisecond, iface: "vcan0"}

	if err := tr.Send(0x3B5, testPayload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(tx.frames) != 1 {
		t.Fatalf("sent %d frames, want 1", len(tx.frames))
	}
	got := tx.frames[0]
	if got.ID != 0x3B5 || got.Length != 8 || got.Data != einride.Data(testPayload) {
		t.Errorf("frame = %+v", got)
	}
	if !tx.hadDeadline {
		t.Error("send context carried no deadline")
	}

	if err := tr.Close(); err != nil || !conn.closed {
		t.Errorf("Close = %v, closed = %v", err, conn.closed)
	}
}

func TestOpenCANNone(t *testing.T) {
	tr, err := OpenCAN(context.Background(), "NONE", "", nil)
	if err != nil {
		t.Fatalf("OpenCAN: %v", err)
	}
	if err := tr.Send(0x109, testPayload); err != nil {
		t.Errorf("Send: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestOpenCANUnknownDriver(t *testing.T) {
	_, err := OpenCAN(context.Background(), "mcp2515", "can0", nil)
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("err = %v, want ErrUnknownDriver", err)
	}
}
