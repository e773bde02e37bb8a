/*
Package handler provides the HTTP handler for WebSocket connection upgrading.

This file contains HandleWebSocket, which validates the identity token,
upgrades the HTTP connection, and starts the client lifecycle against the Hub.
A connection that cannot produce an identity is closed with no session created.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"wavechat/internal/pkg/auth/jwt"
	"wavechat/internal/pkg/errs"
	"wavechat/internal/pkg/logx"
	"wavechat/internal/pkg/resp"
	"wavechat/internal/relay"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := jwt.TokenFromRequest(r)
		if tokenString == "" {
			logx.Warn("WebSocket request rejected: Missing identity token")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		payload, err := jwt.ParseToken(tokenString, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket request rejected: Invalid identity token", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrTokenInvalid))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := relay.NewClient(deps.Hub, conn, payload.UserID)

		go client.WritePump()

		deps.Hub.Connect(payload.UserID, client)

		logx.Info("WebSocket connection established", "user_id", payload.UserID)

		client.ReadPump()
	}
}
