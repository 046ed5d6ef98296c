package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tradehall.gg/internal/protocol"
	"tradehall.gg/internal/trade"
)

// Server is the websocket surface. It owns the connection registry and with
// it implements both trade.Notifier and trade.Presence.
type Server struct {
	coord *trade.Coordinator
	log   *log.Logger

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*client
}

type client struct {
	actor  string
	out    chan []byte
	cancel context.CancelFunc
}

func NewServer(logger *log.Logger) *Server {
	return &Server{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		conns: map[string]*client{},
	}
}

// Attach wires the coordinator in after construction; the coordinator needs
// the server as Notifier/Presence, so the server cannot take it up front.
func (s *Server) Attach(coord *trade.Coordinator) { s.coord = coord }

// Online implements trade.Presence.
func (s *Server) Online(actor string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns[actor] != nil
}

// Notify implements trade.Notifier. Slow consumers get dropped frames rather
// than blocking the coordinator.
func (s *Server) Notify(actor string, n protocol.TradeNotificationMsg) {
	s.mu.Lock()
	cl := s.conns[actor]
	s.mu.Unlock()
	if cl == nil {
		return
	}
	b, err := json.Marshal(n)
	if err != nil {
		return
	}
	select {
	case cl.out <- b:
	default:
		s.log.Printf("notify %s: queue full, dropping %s", actor, n.Kind)
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		actor, out := s.handshake(conn)
		if actor == "" {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		s.mu.Lock()
		if s.conns[actor] != nil {
			// Lost a race with another connection for the same actor.
			s.mu.Unlock()
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "actor already connected"), time.Now().Add(time.Second))
			return
		}
		s.conns[actor] = &client{actor: actor, out: out, cancel: cancel}
		s.mu.Unlock()

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
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			s.dispatch(ctx, out, actor, msg)
		}

		// Cleanup: connection loss is an immediate cancellation signal.
		s.mu.Lock()
		if cur := s.conns[actor]; cur != nil && cur.out == out {
			delete(s.conns, actor)
		}
		s.mu.Unlock()
		s.coord.HandleDisconnect(actor)
	}
}

func (s *Server) dispatch(ctx context.Context, out chan []byte, actor string, msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil || !protocol.IsClientAct(base.Type) {
		return
	}
	if base.ProtocolVersion != protocol.Version {
		return
	}
	if err := protocol.ValidateInbound(base.Type, msg); err != nil {
		s.ack(out, "", false, protocol.ErrProtoBadRequest, err.Error())
		return
	}

	switch base.Type {
	case protocol.TypeSendTradeRequest:
		var m protocol.SendTradeRequestMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		s.ackResult(out, m.ID, s.coord.SendRequest(actor, m.Target))
	case protocol.TypeRespondTradeRequest:
		var m protocol.RespondTradeRequestMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		s.ackResult(out, m.ID, s.coord.RespondRequest(actor, m.From, m.Accept))
	case protocol.TypeUpdateOffer:
		var m protocol.UpdateOfferMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		s.ackResult(out, m.ID, s.coord.UpdateOffer(ctx, actor, m.Coins, m.ItemRefs))
	case protocol.TypeConfirmOffer:
		var m protocol.ConfirmOfferMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		s.ackResult(out, m.ID, s.coord.Confirm(ctx, actor))
	case protocol.TypeCancelTrade:
		var m protocol.CancelTradeMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		s.ackResult(out, m.ID, s.coord.Cancel(actor))
	}
}

func (s *Server) ackResult(out chan []byte, ackFor string, err error) {
	if err == nil {
		s.ack(out, ackFor, true, "", "")
		return
	}
	s.ack(out, ackFor, false, trade.KindOf(err), err.Error())
}

// ack goes through the outbound queue so the writer goroutine stays the only
// writer on the connection.
func (s *Server) ack(out chan []byte, ackFor string, accepted bool, code, message string) {
	b, err := json.Marshal(protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          ackFor,
		Accepted:        accepted,
		Code:            code,
		Message:         message,
	})
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func (s *Server) handshake(conn *websocket.Conn) (actor string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}
	if err := protocol.ValidateInbound(protocol.TypeHello, msg); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad HELLO"), time.Now().Add(time.Second))
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}
	name := strings.TrimSpace(hello.ActorName)
	if name == "" {
		return "", nil
	}

	s.mu.Lock()
	if s.conns[name] != nil {
		s.mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "actor already connected"), time.Now().Add(time.Second))
		return "", nil
	}
	s.mu.Unlock()

	out = make(chan []byte, 32)
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ActorID:         name,
		ServerTimeUnix:  time.Now().Unix(),
	}
	if err := writeJSON(conn, welcome); err != nil {
		return "", nil
	}
	return name, out
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
