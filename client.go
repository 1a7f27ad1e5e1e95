package main

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. Game state lives in the Session the
// engine keeps for it; the client only carries the pipe.
type Client struct {
	conn *websocket.Conn
	send chan any
	id   string
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan any, 16),
		id:   uuid.NewString(),
	}
}

func serveWS(cfg *Config, eng *Engine) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := newClient(conn)

		logf(cfg, "SERVE: Client %s connected from %s", client.id, realIP(r))

		eng.Register(client)

		go client.writePump()
		client.readPump(cfg, eng)
	}
}

// readPump validates each inbound event at the boundary and dispatches it
// to the engine. Unknown or malformed events are dropped.
func (c *Client) readPump(cfg *Config, eng *Engine) {
	defer func() {
		eng.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "identify":
			if msg.Identity != "" {
				eng.Identify(c, msg.Identity)
			}
		case "get_state":
			eng.SendGameState(c)
		case "answer":
			if msg.Answer != nil {
				eng.SubmitAnswer(c, *msg.Answer)
			}
		case "leave_game":
			eng.LeaveGame(c)
		case "create_party":
			ack := eng.CreateParty(c, msg.Name)
			eng.Send(c, ack)
		case "join_party":
			ack := eng.JoinParty(c, msg.Code, msg.Name)
			eng.Send(c, ack)
		case "leave_party":
			eng.LeaveParty(c)
		case "start_game":
			if cfg.testMode {
				eng.StartGame("manual")
			} else {
				logf(cfg, "GAME: Ignoring manual start from %s outside test mode", c.id)
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
