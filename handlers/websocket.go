package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"rental-pricing-api/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LivePredictions godoc
// @Summary Live prediction feed
// @Description Upgrades to a WebSocket and relays every served prediction. Needs Redis.
// @Tags prediction
// @Param token query string false "Service token, required when auth is enabled"
// @Success 101
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /ws/predictions [get]
func LivePredictions(cache *services.CacheService, authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cache.Available() {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "live feed requires redis"})
			return
		}

		if authService.Enabled() {
			tokenStr := c.Query("token")
			if tokenStr == "" {
				c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token query parameter"})
				return
			}
			if _, err := authService.Authorize(tokenStr, services.ScopePredict); err != nil {
				c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired token"})
				return
			}
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		// Read pump: detect client disconnect
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		pubsub := cache.Subscribe(ctx, services.PredictionChannel)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				err := conn.WriteJSON(gin.H{
					"type": "prediction",
					"data": json.RawMessage(msg.Payload),
				})
				if err != nil {
					log.Debug().Err(err).Msg("ws write error")
					return
				}
			}
		}
	}
}
