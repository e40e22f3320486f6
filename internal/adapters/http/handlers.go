package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"

	"github.com/taskhive/realtime-gateway/internal/app"
	"github.com/taskhive/realtime-gateway/internal/config"
)

type onlineResponse struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// handleOnline mirrors the socket-level roster for REST consumers.
func handleOnline(gw *app.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		online := gw.Presence.Online()
		users := make([]string, 0, len(online))
		for _, u := range online {
			users = append(users, string(u))
		}
		c.JSON(http.StatusOK, onlineResponse{Count: len(users), Users: users})
	}
}

func handleRooms(gw *app.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gw.Rooms.List())
	}
}

// handleRTCConfig hands calling clients the ICE servers to use when
// building their peer connections.
func handleRTCConfig(cfg *config.Config) gin.HandlerFunc {
	servers := make([]webrtc.ICEServer, 0, 2)
	if len(cfg.ICE.STUNServers) > 0 {
		servers = append(servers, webrtc.ICEServer{URLs: cfg.ICE.STUNServers})
	}
	if cfg.ICE.TURNURL != "" {
		servers = append(servers, webrtc.ICEServer{
			URLs:           []string{cfg.ICE.TURNURL},
			Username:       cfg.ICE.TURNUsername,
			Credential:     cfg.ICE.TURNCredential,
			CredentialType: webrtc.ICECredentialTypePassword,
		})
	}
	rtcCfg := webrtc.Configuration{ICEServers: servers}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, rtcCfg)
	}
}
