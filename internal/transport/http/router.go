package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"classroom-quiz/internal/app"
	"classroom-quiz/internal/domain"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter wires the liveness check, the websocket endpoint and the
// leaderboard read behind a CORS allow-list.
func NewRouter(service *app.QuizService, ws *WSHandler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", ws.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{pin}/leaderboard", leaderboardHandler(service)).Methods(http.MethodGet)

	origins := allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return cors(r)
}

func leaderboardHandler(service *app.QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pin := mux.Vars(r)["pin"]
		board, err := service.Leaderboard(r.Context(), pin)
		if errors.Is(err, domain.ErrRoomNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(leaderboardResponse{Pin: pin, Leaderboard: board})
	}
}
