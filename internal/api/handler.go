package api

import (
	"log/slog"
	"net/http"

	"github.com/shaiso/Keeper/internal/scheduler"
)

// Scheduler — то, что Handler использует от планировщика.
type Scheduler interface {
	Status() scheduler.Status
	Trigger()
}

// Handler — обработчик служебных маршрутов.
type Handler struct {
	sched  Scheduler
	logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(sched Scheduler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{sched: sched, logger: logger}
}

// Healthz — liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Status возвращает состояние планировщика.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	Success(w, h.sched.Status())
}

// Trigger запускает бэкап вне расписания. Не ждёт завершения:
// результат виден в /status и журнале аудита.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("manual backup triggered", "remote_addr", r.RemoteAddr)
	h.sched.Trigger()
	Accepted(w, map[string]string{"status": "triggered"})
}
