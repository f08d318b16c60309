package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"tinysense/internal/config"
	"tinysense/internal/service"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server канал управления для десктопной оболочки: WebSocket для UI,
// REST для внешнего архиватора, опционально gRPC-стрим
type Server struct {
	Config   *config.Config
	Features *service.FeatureService
	Export   *service.ExportService

	clients map[*websocket.Conn]bool
	mu      sync.Mutex
}

// NewServer собирает сервер и подписывает его на события сервисов
func NewServer(cfg *config.Config, features *service.FeatureService, export *service.ExportService) *Server {
	s := &Server{
		Config:   cfg,
		Features: features,
		Export:   export,
		clients:  make(map[*websocket.Conn]bool),
	}
	export.OnExportDone = func(jobID string, files int) {
		s.broadcast(Message{Type: "export_progress", JobID: jobID, Frames: files})
	}
	return s
}

// Start блокирующий запуск HTTP сервера (и gRPC, если настроен)
func (s *Server) Start() {
	if s.Config.GRPCAddr != "" {
		go s.startGRPCServer()
	}

	http.HandleFunc("/ws", s.handleWebSocket)
	http.HandleFunc("/api/export", s.handleExportAPI)

	log.Printf("Backend listening on :%s", s.Config.Port)
	if err := http.ListenAndServe(":"+s.Config.Port, nil); err != nil {
		log.Fatal("ListenAndServe:", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		reply := s.handleMessage(msg)
		s.mu.Lock()
		err = conn.WriteJSON(reply)
		s.mu.Unlock()
		if err != nil {
			return
		}
	}
}

// handleMessage обрабатывает одно сообщение; общий для обоих транспортов
func (s *Server) handleMessage(msg Message) Message {
	switch msg.Type {
	case "get_feature_config":
		cfg := s.Features.Config()
		return Message{Type: "feature_config", Feature: &cfg}

	case "set_feature_config":
		if msg.Feature == nil {
			return Message{Type: "error", Error: "featureConfig is required"}
		}
		if err := s.Features.Configure(*msg.Feature); err != nil {
			return errorMessage(err)
		}
		cfg := s.Features.Config()
		return Message{Type: "feature_config", Feature: &cfg}

	case "extract_features":
		if msg.Frames > 0 {
			return Message{Type: "features", Flat: s.Features.ExtractFixed(msg.Samples, msg.Frames)}
		}
		return Message{Type: "features", Features: s.Features.Extract(msg.Samples)}

	case "export_model":
		res, err := s.Export.Export(msg.Model, msg.Labels)
		if err != nil {
			return errorMessage(err)
		}
		return Message{Type: "export_done", JobID: res.JobID, Files: res.Artifacts}

	case "verify_model":
		probs, err := s.Export.Verify(msg.Model, msg.Flat)
		if err != nil {
			return errorMessage(err)
		}
		return Message{Type: "verify_result", Probs: probs}

	default:
		return Message{Type: "error", Error: "unknown message type: " + msg.Type}
	}
}

// handleExportAPI REST-вариант экспорта: внешний архиватор забирает
// файлы одним POST без WebSocket сессии
func (s *Server) handleExportAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Model  json.RawMessage `json:"model"`
		Labels []string        `json:"labels"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.Export.Export(req.Model, req.Labels)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"jobId": res.JobID,
		"files": res.Artifacts,
	})
}

// broadcast рассылает сообщение всем подключённым клиентам
func (s *Server) broadcast(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("Broadcast failed, dropping client: %v", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}
