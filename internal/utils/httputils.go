package utils

import (
	"encoding/json"
	"net/http"
)

func RespondJSON(w http.ResponseWriter, status int, data interface{}) error {
	response, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, _ = w.Write(response)

	return nil
}

type errorBody struct {
	Error string `json:"error"`
}

func ErrorJSON(w http.ResponseWriter, status int, message string) {
	_ = RespondJSON(w, status, errorBody{Error: message})
}

func Unauthorized(w http.ResponseWriter, message string) {
	ErrorJSON(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	ErrorJSON(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	ErrorJSON(w, http.StatusNotFound, message)
}

func BadRequest(w http.ResponseWriter, message string) {
	ErrorJSON(w, http.StatusBadRequest, message)
}
