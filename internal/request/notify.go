package request

import (
	"context"
	"log/slog"
	"sync"
)

// MessageType — тип всплывающего уведомления.
type MessageType string

// Типы уведомлений.
const (
	MessageError   MessageType = "error"
	MessageSuccess MessageType = "success"
	MessageWarning MessageType = "warning"
	MessageInfo    MessageType = "info"
)

// Варианты оформления уведомления.
const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Toast — уведомление для пользователя.
type Toast struct {
	Type        MessageType
	Variant     string
	Title       string
	Description string
}

// NewToast собирает уведомление: заголовок по типу, destructive только для ошибок.
func NewToast(message string, t MessageType) Toast {
	variant := VariantDefault
	if t == MessageError {
		variant = VariantDestructive
	}
	return Toast{
		Type:        t,
		Variant:     variant,
		Title:       toastTitle(t),
		Description: message,
	}
}

func toastTitle(t MessageType) string {
	switch t {
	case MessageError:
		return "错误"
	case MessageSuccess:
		return "成功"
	case MessageWarning:
		return "警告"
	default:
		return "提示"
	}
}

// Notifier — получатель уведомлений (строка статуса TUI, лог, тест).
type Notifier interface {
	Notify(t Toast)
}

// NotifierFunc — адаптер функции к Notifier.
type NotifierFunc func(t Toast)

// Notify вызывает f(t).
func (f NotifierFunc) Notify(t Toast) { f(t) }

// LogNotifier пишет уведомления в slog. Используется в неинтерактивном режиме.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier создаёт Notifier поверх логгера.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(slog.String("component", "notifier"))}
}

// Notify пишет уведомление; ошибки — на уровне WARN.
func (n *LogNotifier) Notify(t Toast) {
	level := slog.LevelInfo
	if t.Type == MessageError {
		level = slog.LevelWarn
	}
	n.logger.Log(context.Background(), level, t.Title, slog.String("message", t.Description))
}

// Recorder накапливает уведомления (тесты, буфер строки статуса).
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

// Notify запоминает уведомление.
func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

// Toasts возвращает копию накопленных уведомлений.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}
