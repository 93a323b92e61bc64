package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

const (
	wsWriteDeadline = 5 * time.Second
	wsPingInterval  = 15 * time.Second
	wsReadDeadline  = 120 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsClient struct {
	conn *websocket.Conn
}

// WebSocketManager owns the admin feed connections. All access to the
// client map happens on the Run goroutine.
type WebSocketManager struct {
	clients    map[*wsClient]struct{}
	broadcast  chan any
	register   chan *wsClient
	unregister chan *wsClient
	logger     *slog.Logger
}

func NewWebSocketManager(logger *slog.Logger) *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*wsClient]struct{}),
		broadcast:  make(chan any, 64),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		logger:     logger,
	}
}

// Broadcast queues an event for every connected admin. Never blocks.
func (ws *WebSocketManager) Broadcast(v any) {
	select {
	case ws.broadcast <- v:
	default:
		ws.logger.Warn("ws broadcast queue full, dropping event")
	}
}

func (ws *WebSocketManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range ws.clients {
				client.conn.Close()
			}
			return
		case client := <-ws.register:
			ws.clients[client] = struct{}{}
		case client := <-ws.unregister:
			if _, ok := ws.clients[client]; ok {
				client.conn.Close()
				delete(ws.clients, client)
			}
		case msg := <-ws.broadcast:
			for client := range ws.clients {
				client.conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
				if err := client.conn.WriteJSON(msg); err != nil {
					ws.logger.Warn("ws write failed, dropping client", "err", err)
					client.conn.Close()
					delete(ws.clients, client)
				}
			}
		}
	}
}

// handleAdminWS upgrades the connection after checking the token passed as
// a query param (browsers cannot set headers on websocket dials).
func (app *application) handleAdminWS(w http.ResponseWriter, r *http.Request) {
	claims, err := app.tokenManager.Parse(r.URL.Query().Get("token"))
	if err != nil || claims.Role != models.RoleAdmin {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.errorLog.Printf("ws upgrade: %v", err)
		return
	}

	client := &wsClient{conn: conn}
	app.wsManager.register <- client

	// Reader goroutine: keeps the connection honest (pongs extend the
	// deadline) and unregisters on close.
	go func() {
		defer func() { app.wsManager.unregister <- client }()
		conn.SetReadLimit(1 << 20)
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for range ticker.C {
			conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}()
}
