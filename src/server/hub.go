package server

import (
	"encoding/json"
	"net/http"

	"tariff-observer/src/dashboard"
	"tariff-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.setConnections(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.setConnections(len(s.clients))
			// Send current state on connect
			s.stateMutex.RLock()
			initial := *s.latestState
			s.stateMutex.RUnlock()
			initial.Type = "INITIAL"
			client.send <- &initial

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.setConnections(len(s.clients))
			}

		case message := <-s.broadcast:
			s.storeState(message)

			for client := range s.clients {
				select {
				case client.send <- client.filter(message):
				default:
					// Slow consumer, drop it rather than block the hub
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.setConnections(len(s.clients))
		}
	}
}

func (s *APIServer) setConnections(n int) {
	s.stateMutex.Lock()
	s.connections = n
	s.stateMutex.Unlock()
}

func (s *APIServer) storeState(state *models.MLatestData) {
	s.stateMutex.Lock()
	s.latestState = state
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// UpdateAllDatas replaces the served state without notifying clients.
func (s *APIServer) UpdateAllDatas(data interface{}) {
	state, ok := toLatestData(data)
	if !ok {
		s.Logger.Warning("UpdateAllDatas: unsupported payload %T", data)
		return
	}
	s.storeState(state)
}

// -----------------------------------------------------------------------------

// Broadcast queues a payload for every websocket client. Accepted payloads
// are *MDashboard, MLatestData and *MLatestData.
func (s *APIServer) Broadcast(message interface{}) {
	state, ok := toLatestData(message)
	if !ok {
		s.Logger.Warning("Broadcast: unsupported payload %T", message)
		return
	}

	select {
	case s.broadcast <- state:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------

// Publish stores a freshly built dashboard and pushes its summary.
func (s *APIServer) Publish(d *models.MDashboard) *models.MLatestData {
	summary := dashboard.Summarize(d, "UPDATE")
	s.Broadcast(&summary)
	return &summary
}

func toLatestData(payload interface{}) (*models.MLatestData, bool) {
	switch v := payload.(type) {
	case *models.MLatestData:
		if v == nil {
			return nil, false
		}
		return v, true
	case models.MLatestData:
		return &v, true
	case *models.MDashboard:
		if v == nil {
			return nil, false
		}
		summary := dashboard.Summarize(v, "UPDATE")
		return &summary, true
	}
	return nil, false
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MLatestData, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage applies a subscribe command and answers with the
// current state restricted to the requested panels.
func (s *APIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	client.setPanels(cmd.Panels)

	s.stateMutex.RLock()
	response := filterPanels(s.latestState, cmd.Panels)
	s.stateMutex.RUnlock()
	response.Type = "INITIAL"

	select {
	case client.send <- response:
	default:
	}
}
