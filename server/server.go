package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/duet/broadcast"
	"github.com/wfunc/duet/logger"
	"github.com/wfunc/duet/monitor"
	"github.com/wfunc/duet/protocol"
	"github.com/wfunc/duet/room"
	"github.com/wfunc/duet/session"
)

// Fanout selects the delivery pattern for a routed event.
type Fanout int

const (
	// FanoutPeer unicasts to the other party, never back to the sender.
	FanoutPeer Fanout = iota
	// FanoutRoom broadcasts to every connection in the room, sender included.
	FanoutRoom
)

// Route maps an inbound event to the outbound event the relay emits for it.
type Route struct {
	Out    string
	Fanout Fanout
}

// Routes is the relay's rule table. Almost every event is a plain peer echo
// under its own name; accept-switch is the one asymmetric translation: the
// relay turns it into a switch-approved broadcast so that both parties
// observe the activity switch at the same point in their own event order.
var Routes = map[string]Route{
	protocol.EventAcceptSwitch: {Out: protocol.EventSwitchApproved, Fanout: FanoutRoom},
}

func routeFor(name string) Route {
	if r, ok := Routes[name]; ok {
		return r
	}
	return Route{Out: name, Fanout: FanoutPeer}
}

// DefaultRoomID is used when the join URL carries no room parameter, which
// reproduces the original single-pair deployment.
const DefaultRoomID = "default"

// RelayServer accepts paired connections and forwards events between them.
// It holds no game state, keeps no history, and never inspects payloads
// beyond the envelope name. When a partner disconnects the surviving side is
// not told; the relay emits no synthetic event.
type RelayServer struct {
	addr           string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	mon            *monitor.Monitor
	shutdownChan   chan struct{}
}

// NewRelayServer builds a relay. mon may be nil when metrics are not wanted.
func NewRelayServer(addr string, mon *monitor.Monitor) *RelayServer {
	roomManager := room.NewManager()
	return &RelayServer{
		addr:           addr,
		roomManager:    roomManager,
		sessionManager: session.NewManager(),
		broadcaster:    broadcast.NewRoomBroadcaster(roomManager),
		mon:            mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
}

func (s *RelayServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	logger.Log.Infof("Relay listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *RelayServer) Shutdown() {
	close(s.shutdownChan)
}

// HandleWS upgrades the connection and joins it to its room. Exported so
// tests can mount it on their own listener.
func (s *RelayServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = DefaultRoomID
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(protocol.NewWSConn(conn), roomID)
}

func (s *RelayServer) handleConnection(conn *protocol.WSConn, roomID string) {
	sess := session.NewSession(uuid.New().String(), conn)

	rm := s.roomManager.GetOrCreate(roomID)
	if err := rm.AddSession(sess); err != nil {
		// Exactly two participants per room; extras are refused.
		_ = conn.WriteClose(websocket.ClosePolicyViolation, "room full")
		_ = conn.Close()
		logger.Log.Infof("Refused extra connection to room %s", roomID)
		return
	}
	s.sessionManager.Add(sess)

	logger.Log.Infof("Partner connected: session %s joined room %s from %s", sess.ID, roomID, conn.RemoteAddr())
	if s.mon != nil {
		s.mon.IncConnectedClients()
		s.mon.SetActivePairs(s.roomManager.Count())
	}

	defer func() {
		rm.RemoveSession(sess.ID)
		if rm.Size() == 0 {
			s.roomManager.Remove(roomID)
		}
		s.sessionManager.Remove(sess.ID)
		if s.mon != nil {
			s.mon.DecConnectedClients()
			s.mon.SetActivePairs(s.roomManager.Count())
		}
		conn.Close()
		// No "partner left" event goes to the surviving peer.
		logger.Log.Infof("Partner disconnected: session %s left room %s", sess.ID, roomID)
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			ev, err := conn.ReadEvent()
			if err != nil {
				if errors.Is(err, protocol.ErrMalformedEvent) {
					// Opaque garbage must never take the relay down.
					logger.Log.Debugf("Dropping malformed frame from session %s", sess.ID)
					continue
				}
				return
			}
			s.routeEvent(sess, ev)
		}
	}
}

// routeEvent applies the rule table to one inbound event. Payloads pass
// through unmodified; a missing counterpart is a silent drop.
func (s *RelayServer) routeEvent(sess *session.Session, ev *protocol.Event) {
	start := time.Now()
	rt := routeFor(ev.Name)
	out := protocol.Event{Name: rt.Out, Data: ev.Data}

	switch rt.Fanout {
	case FanoutRoom:
		if err := s.broadcaster.BroadcastToRoom(sess.RoomID, out); err != nil {
			logger.Log.Warnf("Broadcast of %s in room %s failed: %v", out.Name, sess.RoomID, err)
			return
		}
		if s.mon != nil {
			s.mon.IncEventsForwarded()
		}
	default:
		delivered, err := s.broadcaster.ForwardToPeer(sess.RoomID, sess.ID, out)
		if err != nil {
			logger.Log.Warnf("Forward of %s in room %s failed: %v", out.Name, sess.RoomID, err)
			return
		}
		if s.mon != nil {
			if delivered {
				s.mon.IncEventsForwarded()
			} else {
				s.mon.IncEventsDropped()
			}
		}
	}

	if s.mon != nil {
		s.mon.ObserveForwardLatency(time.Since(start))
	}
}
