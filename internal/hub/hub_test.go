package hub_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chatspot/internal/domain"
	"chatspot/internal/hub"
	"chatspot/internal/protocol"
	"chatspot/internal/transport"
)

func startHub(t *testing.T, historyCap int) string {
	t.Helper()
	h := hub.New(zerolog.Nop(), historyCap)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialHub(t *testing.T, url string) domain.FrameConn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := transport.Dial(ctx, url)
	if err != nil {
		t.Fatalf("dial hub: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn domain.FrameConn) protocol.Frame {
	t.Helper()
	type result struct {
		frame protocol.Frame
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		raw, err := conn.ReadFrame()
		if err != nil {
			ch <- result{err: err}
			return
		}
		f, err := protocol.Decode(raw)
		ch <- result{frame: f, err: err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			t.Fatalf("read frame: %v", r.err)
		}
		return r.frame
	case <-time.After(5 * time.Second):
		t.Fatal("timed out reading a frame")
		return protocol.Frame{}
	}
}

func envelope(id, room, sender, ct string) protocol.Envelope {
	return protocol.Envelope{
		ID:             id,
		ConversationID: room,
		SenderID:       sender,
		Ciphertext:     ct,
		Nonce:          "bm9uY2Uhbm9uY2Uh", // opaque to the hub
	}
}

func TestHub_IdentifyEchoes(t *testing.T) {
	url := startHub(t, -1)
	conn := dialHub(t, url)

	if err := conn.WriteFrame(protocol.Identify("alice")); err != nil {
		t.Fatalf("write identify: %v", err)
	}
	f := readFrame(t, conn)
	if f.Action != protocol.ActionIdentified || f.UserID != "alice" {
		t.Fatalf("frame = %+v, want identified alice", f)
	}
}

func TestHub_SubscribeDeliversHistory(t *testing.T) {
	url := startHub(t, -1)

	sender := dialHub(t, url)
	if err := sender.WriteFrame(protocol.Subscribe("room1")); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if f := readFrame(t, sender); len(f.History) != 0 {
		t.Fatalf("fresh room history = %d envelopes, want 0", len(f.History))
	}

	for _, id := range []string{"m1", "m2"} {
		if err := sender.WriteFrame(protocol.Message(envelope(id, "room1", "alice", "Y3Q="))); err != nil {
			t.Fatalf("send %s: %v", id, err)
		}
		readFrame(t, sender) // own fan-out copy
	}

	late := dialHub(t, url)
	if err := late.WriteFrame(protocol.Subscribe("room1")); err != nil {
		t.Fatalf("late subscribe: %v", err)
	}
	f := readFrame(t, late)
	if f.Action != protocol.ActionHistory || f.ConversationID != "room1" {
		t.Fatalf("frame = %+v, want history room1", f)
	}
	if len(f.History) != 2 || f.History[0].ID != "m1" || f.History[1].ID != "m2" {
		t.Fatalf("history = %+v, want m1 then m2", f.History)
	}
	for _, env := range f.History {
		if env.Timestamp == 0 {
			t.Fatalf("hub did not stamp envelope %s", env.ID)
		}
	}
}

func TestHub_FanOutReachesAllSubscribers(t *testing.T) {
	url := startHub(t, -1)

	a := dialHub(t, url)
	b := dialHub(t, url)
	for _, conn := range []domain.FrameConn{a, b} {
		if err := conn.WriteFrame(protocol.Subscribe("room1")); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
		readFrame(t, conn) // history
	}

	if err := a.WriteFrame(protocol.Message(envelope("x", "room1", "alice", "Y3Q="))); err != nil {
		t.Fatalf("send: %v", err)
	}

	for name, conn := range map[string]domain.FrameConn{"sender": a, "peer": b} {
		f := readFrame(t, conn)
		if f.Action != protocol.ActionMessage || f.Envelope == nil || f.Envelope.ID != "x" {
			t.Fatalf("%s got %+v, want message x", name, f)
		}
	}
}

func TestHub_RoomsAreIsolated(t *testing.T) {
	url := startHub(t, -1)

	a := dialHub(t, url)
	b := dialHub(t, url)
	if err := a.WriteFrame(protocol.Subscribe("room1")); err != nil {
		t.Fatalf("subscribe a: %v", err)
	}
	readFrame(t, a)
	if err := b.WriteFrame(protocol.Subscribe("room2")); err != nil {
		t.Fatalf("subscribe b: %v", err)
	}
	readFrame(t, b)

	if err := a.WriteFrame(protocol.Message(envelope("only1", "room1", "alice", "Y3Q="))); err != nil {
		t.Fatalf("send: %v", err)
	}
	readFrame(t, a) // own copy

	// b must not receive room1 traffic; the next frame b sees is its own.
	if err := b.WriteFrame(protocol.Message(envelope("only2", "room2", "bob", "Y3Q="))); err != nil {
		t.Fatalf("send b: %v", err)
	}
	f := readFrame(t, b)
	if f.Envelope == nil || f.Envelope.ID != "only2" {
		t.Fatalf("b got %+v, want its own room2 message", f)
	}
}

func TestHub_MalformedFrameTolerated(t *testing.T) {
	url := startHub(t, -1)
	conn := dialHub(t, url)

	if err := conn.WriteFrame(json.RawMessage(`{"action":"explode"}`)); err != nil {
		t.Fatalf("write unknown action: %v", err)
	}
	if err := conn.WriteFrame(json.RawMessage(`{"action":"message"}`)); err != nil {
		t.Fatalf("write invalid message: %v", err)
	}

	// The connection survives and still serves valid frames.
	if err := conn.WriteFrame(protocol.Identify("alice")); err != nil {
		t.Fatalf("write identify: %v", err)
	}
	f := readFrame(t, conn)
	if f.Action != protocol.ActionIdentified {
		t.Fatalf("frame = %+v, want identified", f)
	}
}

func TestHub_HistoryCapTrims(t *testing.T) {
	url := startHub(t, 2)
	conn := dialHub(t, url)

	if err := conn.WriteFrame(protocol.Subscribe("room1")); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	readFrame(t, conn)

	for _, id := range []string{"m1", "m2", "m3"} {
		if err := conn.WriteFrame(protocol.Message(envelope(id, "room1", "alice", "Y3Q="))); err != nil {
			t.Fatalf("send %s: %v", id, err)
		}
		readFrame(t, conn)
	}

	late := dialHub(t, url)
	if err := late.WriteFrame(protocol.Subscribe("room1")); err != nil {
		t.Fatalf("late subscribe: %v", err)
	}
	f := readFrame(t, late)
	if len(f.History) != 2 || f.History[0].ID != "m2" || f.History[1].ID != "m3" {
		t.Fatalf("history = %+v, want trimmed to m2, m3", f.History)
	}
}
