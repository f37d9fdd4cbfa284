package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"myScheduleAPI/internal/schedule"
	"myScheduleAPI/internal/view"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Deadline for a single backend write triggered by a view effect.
	effectTimeout = 5 * time.Second
)

// ViewSession is one WebSocket connection's server-held view state: the
// reducer state, exactly one live entry subscription for the signed-in
// user, and the write pump. Teardown releases the subscription so
// nothing leaks across user-session changes.
type ViewSession struct {
	ID     string
	UserID string
	Email  string

	conn      *websocket.Conn
	send      chan []byte
	manager   *ViewSessionManager
	schedules *ScheduleService

	mu         sync.Mutex
	state      view.State
	closed     bool
	stopListen func()
	closeOnce  sync.Once
}

// ViewSessionManager tracks live view sessions so they can be counted
// for metrics and closed on shutdown.
type ViewSessionManager struct {
	schedules *ScheduleService

	mu       sync.Mutex
	sessions map[string]*ViewSession
}

func NewViewSessionManager(schedules *ScheduleService) *ViewSessionManager {
	return &ViewSessionManager{
		schedules: schedules,
		sessions:  make(map[string]*ViewSession),
	}
}

// StartSession binds an upgraded connection to a new session for the
// authenticated user and starts the pumps. The first pushed frame is the
// projected state with the initial entry snapshot.
func (m *ViewSessionManager) StartSession(conn *websocket.Conn, userID, email string) (*ViewSession, error) {
	s := &ViewSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Email:     email,
		conn:      conn,
		send:      make(chan []byte, 256),
		manager:   m,
		schedules: m.schedules,
		state:     view.NewState(time.Now()),
	}

	// The connection arrives authenticated, so skip straight past loading.
	s.apply(view.AuthChanged{UserID: userID, Email: email})

	stop, err := m.schedules.ListenEntries(context.Background(), userID, func(entries []schedule.Entry) {
		s.apply(view.EntriesChanged{Entries: entries})
	})
	if err != nil {
		return nil, err
	}
	s.stopListen = stop

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	go s.writePump()
	go s.readPump()

	log.Printf("View session %s opened for user %s", s.ID, userID)
	return s, nil
}

func (m *ViewSessionManager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count reports the number of live sessions. Exposed as a gauge.
func (m *ViewSessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll tears down every live session; used on graceful shutdown.
func (m *ViewSessionManager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*ViewSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// wsEvent is the frame shape clients send; action selects the view event.
type wsEvent struct {
	Action string     `json:"action"`
	Date   string     `json:"date,omitempty"`
	ID     string     `json:"id,omitempty"`
	Form   *view.Form `json:"form,omitempty"`
}

func toViewEvent(p wsEvent) (view.Event, bool) {
	switch p.Action {
	case "select_day":
		return view.DaySelected{Date: p.Date}, true
	case "edit_entry":
		return view.EditRequested{ID: p.ID}, true
	case "form_change":
		if p.Form == nil {
			return nil, false
		}
		return view.FormChanged{Form: *p.Form}, true
	case "submit":
		return view.Submitted{}, true
	case "cancel":
		return view.Canceled{}, true
	case "delete_entry":
		return view.DeleteRequested{ID: p.ID}, true
	case "prev_month":
		return view.MonthPrev{}, true
	case "next_month":
		return view.MonthNext{}, true
	case "today":
		return view.TodayPressed{Now: time.Now()}, true
	case "dismiss_alert":
		return view.AlertDismissed{}, true
	}
	return nil, false
}

// apply runs one event through the reducer, pushes the new render model
// and kicks off any backend effects.
func (s *ViewSession) apply(ev view.Event) {
	s.mu.Lock()
	next, effects := view.Reduce(s.state, ev)
	s.state = next
	model := view.Project(next, time.Now())
	s.mu.Unlock()

	s.push(model)

	for _, eff := range effects {
		go s.runEffect(eff)
	}
}

func (s *ViewSession) runEffect(eff view.Effect) {
	ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
	defer cancel()

	var err error
	alert := "Failed to save schedule. Please try again."
	switch eff := eff.(type) {
	case view.CreateEntry:
		_, err = s.schedules.CreateEntry(ctx, s.UserID, eff.Fields)
	case view.UpdateEntry:
		err = s.schedules.UpdateEntry(ctx, s.UserID, eff.ID, eff.Fields)
	case view.DeleteEntry:
		err = s.schedules.DeleteEntry(ctx, s.UserID, eff.ID)
		alert = "Failed to delete schedule. Please try again."
	}
	if err != nil {
		// No silent retry: report once and leave the next move to the user.
		log.Printf("View session %s: write failed: %v", s.ID, err)
		s.apply(view.WriteFailed{Message: alert})
	}
}

func (s *ViewSession) push(model view.RenderModel) {
	data, err := json.Marshal(model)
	if err != nil {
		log.Printf("View session %s: failed to marshal render model: %v", s.ID, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- data:
	default:
		log.Printf("View session %s: send buffer full, dropping frame", s.ID)
	}
}

// Close releases the live subscription and shuts the connection down.
// Safe to call more than once.
func (s *ViewSession) Close() {
	s.closeOnce.Do(func() {
		if s.stopListen != nil {
			s.stopListen()
		}
		s.manager.remove(s.ID)

		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.send)

		log.Printf("View session %s closed", s.ID)
	})
}

func (s *ViewSession) readPump() {
	defer func() {
		s.Close()
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("View session %s: read error: %v", s.ID, err)
			}
			break
		}

		var payload wsEvent
		if err := json.Unmarshal(message, &payload); err != nil {
			log.Printf("View session %s: bad frame: %v", s.ID, err)
			continue
		}
		ev, ok := toViewEvent(payload)
		if !ok {
			log.Printf("View session %s: unknown action %q", s.ID, payload.Action)
			continue
		}
		s.apply(ev)
	}
}

// writePump pushes render models to the peer and keeps the connection
// alive with pings.
func (s *ViewSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The session closed the channel.
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
