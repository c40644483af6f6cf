package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Glitch-Aswin/DevArticles/middlewares"
	"github.com/Glitch-Aswin/DevArticles/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		middlewares.ErrorLogger.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
