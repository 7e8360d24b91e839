package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrCodeInternalError — код ответа 500.
const ErrCodeInternalError = "INTERNAL_ERROR"

// dataResponse — успешный ответ.
type dataResponse struct {
	Data any `json:"data"`
}

// errorResponse — ответ с ошибкой.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Success отправляет 200 с данными.
func Success(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, dataResponse{Data: data})
}

// Accepted отправляет 202: операция запущена асинхронно.
func Accepted(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusAccepted, dataResponse{Data: data})
}

// InternalError логирует err и отправляет 500 без деталей.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)

	var resp errorResponse
	resp.Error.Code = ErrCodeInternalError
	resp.Error.Message = "internal server error"
	writeJSON(w, http.StatusInternalServerError, resp)
}
