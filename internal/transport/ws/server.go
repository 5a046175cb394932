package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"polycity.ai/internal/protocol"
	"polycity.ai/internal/scene"
)

const sessionQueue = 4

type Server struct {
	scenes *scene.Manager
	log    *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(m *scene.Manager, logger *log.Logger) *Server {
	s := &Server{
		scenes: m,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 1024 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		out, ok := s.handshake(conn)
		if !ok {
			return
		}
		defer s.scenes.Leave(out)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				s.reply(ctx, out, protocol.ErrProtoBadRequest, "malformed json")
				continue
			}
			if base.Type != protocol.TypeRegenerate {
				s.reply(ctx, out, protocol.ErrProtoBadRequest, "unsupported type "+base.Type)
				continue
			}
			var req protocol.RegenerateMsg
			if err := json.Unmarshal(msg, &req); err != nil || req.ProtocolVersion != protocol.Version {
				s.reply(ctx, out, protocol.ErrProtoBadRequest, "bad REGENERATE")
				continue
			}
			sc, err := s.scenes.Regenerate(scene.Request{Seed: req.Seed, CitySize: req.CitySize, Counts: req.Counts})
			if err != nil {
				s.reply(ctx, out, errorCode(err), err.Error())
				continue
			}
			if s.log != nil {
				s.log.Printf("regenerated run=%s seed=%d objects=%d", sc.RunID, sc.Config.Seed, sc.Result.Stats.Total())
			}
		}
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, scene.ErrBusy):
		return protocol.ErrBusy
	case errors.Is(err, scene.ErrBadRequest):
		return protocol.ErrBadRequest
	default:
		return protocol.ErrInternal
	}
}

// reply queues an ERROR for the writer goroutine. It blocks only until the
// connection goes away.
func (s *Server) reply(ctx context.Context, out chan []byte, code, message string) {
	b, err := json.Marshal(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
	if err != nil {
		return
	}
	select {
	case out <- b:
	case <-ctx.Done():
	}
}

func (s *Server) handshake(conn *websocket.Conn) (chan []byte, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil, false
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil, false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return nil, false
	}
	if hello.ClientName == "" {
		hello.ClientName = "viewer"
	}

	out := make(chan []byte, sessionQueue)
	current := s.scenes.Join(out)

	// Send the current scene immediately.
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, current); err != nil {
		s.scenes.Leave(out)
		return nil, false
	}
	if s.log != nil {
		s.log.Printf("viewer joined name=%s", hello.ClientName)
	}
	return out, true
}
