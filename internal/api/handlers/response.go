package handlers

import (
	"encoding/json"
	"net/http"
)

// APIPrefix - общий префикс всех маршрутов
const APIPrefix = "/api"

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Hint    string `json:"hint"`
}

type validationErrorResponse struct {
	Success         bool                `json:"success"`
	Message         string              `json:"message"`
	Hint            string              `json:"hint"`
	Errors          map[string][]string `json:"errors"`
	ValidationRules map[string]string   `json:"validation_rules"`
}

type taskNotFoundResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Hint         string `json:"hint"`
	AvailableIds []int  `json:"available_ids"`
}

type apiInfoResponse struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Description  string            `json:"description"`
	Endpoints    map[string]string `json:"endpoints"`
	StatusValues map[string]string `json:"status_values"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type healthResponse struct {
	Status string `json:"status"`
}
