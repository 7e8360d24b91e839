package secrets

import (
	"slices"
	"strings"
	"sync"
)

// Mask — замена для скрытых значений.
const Mask = "******"

// Redactor заменяет зарегистрированные секреты на Mask.
// Безопасен для конкурентного использования.
type Redactor struct {
	mu      sync.RWMutex
	secrets []string
}

// NewRedactor создаёт Redactor с начальным набором секретов.
func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, s := range secrets {
		r.Add(s)
	}
	return r
}

// Add регистрирует секрет. Пустые строки и повторы игнорируются.
func (r *Redactor) Add(secret string) {
	if secret == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.secrets, secret) {
		return
	}
	r.secrets = append(r.secrets, secret)
}

// Redact возвращает s без зарегистрированных секретов.
func (r *Redactor) Redact(s string) string {
	if r == nil || s == "" {
		return s
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, secret := range r.secrets {
		s = strings.ReplaceAll(s, secret, Mask)
	}
	return s
}
