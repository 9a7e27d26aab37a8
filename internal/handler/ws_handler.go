/*
Package handler provides the HTTP handler function for WebSocket connection upgrading.

This file contains HandleWebSocket, which rate limits and upgrades the HTTP
connection, registers the resulting client with the Hub as an anonymous
connection, and starts the client's message pumps. Identity binding happens
afterwards over the socket via the auth event.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mountain-chan/security-chat-backend/internal/app/chat"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/errs"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/limiter"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/logx"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, conn)
		deps.Hub.HandleConnect(client)

		go client.WritePump()

		logx.Info("WebSocket connection established", "conn_id", client.ID)

		client.ReadPump()
	}
}
