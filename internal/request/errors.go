package request

import (
	"errors"
	"fmt"
)

// ErrCanceled — вызов вытеснен более новым с тем же ключом или отменён вызывающим.
// Пользователю не показывается.
var ErrCanceled = errors.New("запрос отменён")

// errSuperseded — причина отмены при вытеснении дубликатом.
var errSuperseded = errors.New("вытеснен более новым запросом")

// Kind — вид сбоя запроса.
type Kind int

const (
	// KindTransport — HTTP-статус вне успешного диапазона.
	KindTransport Kind = iota + 1
	// KindBusiness — HTTP 200, но встроенный statusCode >= 300.
	KindBusiness
	// KindNetwork — ответ не получен (сеть, таймаут).
	KindNetwork
	// KindDecode — тело ответа не разбирается.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindBusiness:
		return "business"
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error — сбой запроса, уже показанный пользователю уведомлением.
type Error struct {
	Kind Kind
	// HTTPStatus — код HTTP (0, если ответа не было).
	HTTPStatus int
	// Status — класс транспортного статуса.
	Status Status
	// Code — прикладной код (только для KindBusiness).
	Code BusinessCode
	// Message — итоговый текст: сообщение сервера или табличное.
	Message string
	// Err — исходная ошибка (сеть, разбор JSON).
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCanceled отличает отмену от настоящих сбоев.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// AsError извлекает *Error из цепочки.
func AsError(err error) (*Error, bool) {
	var reqErr *Error
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// HasCode проверяет, что err — прикладная ошибка с указанным кодом.
func HasCode(err error, code BusinessCode) bool {
	reqErr, ok := AsError(err)
	return ok && reqErr.Kind == KindBusiness && reqErr.Code == code
}

func canceledError(cause error) error {
	if cause == nil {
		return ErrCanceled
	}
	return fmt.Errorf("%w: %w", ErrCanceled, cause)
}
