package websocket

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Client fait le lien entre une connexion websocket et le hub
type Client struct {
	conn *websocket.Conn

	// Canal bufferisé des messages sortants
	Send chan []byte

	// Filtre d'abonnement : vide = tous les événements
	EstimationID string

	Hub *Hub

	ConnectedAt time.Time
}

// ServeWS gère l'upgrade websocket et enregistre le client.
// Le paramètre de requête estimation_id permet de suivre une seule estimation.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Upgrade websocket échoué")
		return
	}

	client := &Client{
		conn:         conn,
		Send:         make(chan []byte, 256),
		EstimationID: c.Query("estimation_id"),
		Hub:          h,
		ConnectedAt:  time.Now(),
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

// SendMessage sérialise et envoie un message au client
func (c *Client) SendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.Hub.logger.Error().Err(err).Msg("Sérialisation message websocket")
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

// readPump consomme les messages entrants (uniquement ping/pong et fermeture :
// le flux est unidirectionnel, serveur vers client).
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn().Err(err).Msg("Fermeture websocket inattendue")
			}
			return
		}
	}
}

// writePump pousse les messages du hub vers la connexion
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// le hub a fermé le canal
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
