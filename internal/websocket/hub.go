package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/metrics"
	"github.com/rs/zerolog"
)

// Hub maintient les clients connectés et leur diffuse les événements de
// progression du pipeline d'estimation.
type Hub struct {
	// Clients abonnés, par identifiant d'estimation ("" = tout le flux)
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mutex  sync.RWMutex
	logger *zerolog.Logger
}

// ProgressUpdate est l'événement de progression envoyé aux clients
type ProgressUpdate struct {
	Type         string    `json:"type"`
	EstimationID string    `json:"estimation_id"`
	State        string    `json:"state"`
	Message      string    `json:"message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Message est un message websocket générique
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	// Délai d'écriture d'un message vers le pair
	writeWait = 10 * time.Second

	// Délai d'attente du prochain pong
	pongWait = 60 * time.Second

	// Période d'envoi des pings (doit être < pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Taille maximale des messages entrants
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// L'API est protégée par token ; l'origine n'est pas filtrée ici
		return true
	},
}

// NewHub crée un nouveau hub websocket
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.Global(),
	}
}

// Run démarre la boucle principale du hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// EstimationProgress diffuse une transition d'état du pipeline.
// Implémente service.ProgressSink.
func (h *Hub) EstimationProgress(estimationID, state, message string) {
	update := ProgressUpdate{
		Type:         "estimation_progress",
		EstimationID: estimationID,
		State:        state,
		Message:      message,
		Timestamp:    time.Now(),
	}

	data, err := json.Marshal(update)
	if err != nil {
		h.logger.Error().Err(err).Msg("Sérialisation de l'événement de progression")
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.EstimationID != "" && client.EstimationID != estimationID {
			continue
		}
		select {
		case client.Send <- data:
			metrics.Get().WSMessageSent()
		default:
			// client trop lent : on ne bloque jamais le pipeline
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	metrics.Get().WSConnected()

	h.logger.Info().
		Str("estimation_id", client.EstimationID).
		Int("clients", len(h.clients)).
		Msg("Client websocket connecté")

	welcome := Message{
		Type:      "connection",
		Data:      map[string]string{"status": "connected"},
		Timestamp: time.Now(),
	}
	client.SendMessage(welcome)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		metrics.Get().WSDisconnected()

		h.logger.Info().
			Int("clients", len(h.clients)).
			Msg("Client websocket déconnecté")
	}
}

func (h *Hub) broadcastMessage(message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		select {
		case client.Send <- message:
			metrics.Get().WSMessageSent()
		default:
			h.logger.Warn().Msg("Client websocket trop lent, fermeture")
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

// ClientCount retourne le nombre de clients connectés
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
