package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"polycity.ai/internal/gen/city"
	"polycity.ai/internal/protocol"
	"polycity.ai/internal/scene"
)

func newTestServer(t *testing.T) (*scene.Manager, string) {
	t.Helper()
	cfg := city.Defaults()
	cfg.TreeLevels = 1
	cfg.Counts = city.Counts{Shops: 2, Benches: 1}
	m, err := scene.NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	hs := httptest.NewServer(NewServer(m, nil).Handler())
	t.Cleanup(hs.Close)
	return m, "ws" + strings.TrimPrefix(hs.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readMsg(t *testing.T, conn *websocket.Conn) (protocol.BaseMessage, []byte) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	base, err := protocol.DecodeBase(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return base, b
}

func hello(t *testing.T, conn *websocket.Conn) protocol.SceneMsg {
	t.Helper()
	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "test"})
	base, b := readMsg(t, conn)
	if base.Type != protocol.TypeScene {
		t.Fatalf("expected SCENE, got %s", base.Type)
	}
	var sc protocol.SceneMsg
	if err := json.Unmarshal(b, &sc); err != nil {
		t.Fatalf("decode scene: %v", err)
	}
	return sc
}

func TestServer_HelloReceivesCurrentScene(t *testing.T) {
	m, url := newTestServer(t)
	conn := dial(t, url)
	sc := hello(t, conn)
	if sc.RunID != m.Current().RunID {
		t.Fatalf("run id %s, want %s", sc.RunID, m.Current().RunID)
	}
	if sc.Stats.Placed["shops"] != 2 || len(sc.Mesh.Vertices) != sc.Stats.Vertices {
		t.Fatalf("unexpected scene stats %+v", sc.Stats)
	}
}

func TestServer_RejectsMissingHello(t *testing.T) {
	_, url := newTestServer(t)
	conn := dial(t, url)
	send(t, conn, protocol.RegenerateMsg{Type: protocol.TypeRegenerate, ProtocolVersion: protocol.Version})
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

func TestServer_RejectsBadVersion(t *testing.T) {
	_, url := newTestServer(t)
	conn := dial(t, url)
	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: "0.1"})
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

func TestServer_RegenerateBroadcastsToAllViewers(t *testing.T) {
	_, url := newTestServer(t)
	a := dial(t, url)
	b := dial(t, url)
	first := hello(t, a)
	hello(t, b)

	seed := int64(4242)
	send(t, a, protocol.RegenerateMsg{
		Type:            protocol.TypeRegenerate,
		ProtocolVersion: protocol.Version,
		Seed:            &seed,
		Counts:          map[string]int{"benches": 3},
	})
	for _, conn := range []*websocket.Conn{a, b} {
		base, raw := readMsg(t, conn)
		if base.Type != protocol.TypeScene {
			t.Fatalf("expected SCENE broadcast, got %s", base.Type)
		}
		var sc protocol.SceneMsg
		if err := json.Unmarshal(raw, &sc); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if sc.Seed != seed || sc.RunID == first.RunID || sc.Stats.Placed["benches"] != 3 {
			t.Fatalf("unexpected regenerated scene seed=%d stats=%+v", sc.Seed, sc.Stats)
		}
	}
}

func TestServer_ErrorReplies(t *testing.T) {
	_, url := newTestServer(t)
	conn := dial(t, url)
	hello(t, conn)

	cases := []struct {
		msg  any
		code string
	}{
		{map[string]any{"type": "PING", "protocol_version": protocol.Version}, protocol.ErrProtoBadRequest},
		{protocol.RegenerateMsg{Type: protocol.TypeRegenerate, ProtocolVersion: "0.1"}, protocol.ErrProtoBadRequest},
		{protocol.RegenerateMsg{Type: protocol.TypeRegenerate, ProtocolVersion: protocol.Version, Counts: map[string]int{"castles": 1}}, protocol.ErrBadRequest},
		{protocol.RegenerateMsg{Type: protocol.TypeRegenerate, ProtocolVersion: protocol.Version, CitySize: -5}, protocol.ErrBadRequest},
	}
	for i, tc := range cases {
		send(t, conn, tc.msg)
		base, raw := readMsg(t, conn)
		if base.Type != protocol.TypeError {
			t.Fatalf("case %d: expected ERROR, got %s", i, base.Type)
		}
		var e protocol.ErrorMsg
		if err := json.Unmarshal(raw, &e); err != nil {
			t.Fatalf("case %d: decode: %v", i, err)
		}
		if e.Code != tc.code || !protocol.IsKnownCode(e.Code) {
			t.Fatalf("case %d: code=%s want %s", i, e.Code, tc.code)
		}
	}
}

func TestErrorCode(t *testing.T) {
	if errorCode(scene.ErrBusy) != protocol.ErrBusy {
		t.Fatalf("busy")
	}
	if errorCode(scene.ErrBadRequest) != protocol.ErrBadRequest {
		t.Fatalf("bad request")
	}
	if errorCode(json.Unmarshal([]byte("{"), &struct{}{})) != protocol.ErrInternal {
		t.Fatalf("internal")
	}
}
