// Пакет request — диспетчер HTTP-запросов к REST API админки.
// Отвечает за дедупликацию одновременных одинаковых запросов
// (последний выигрывает), подстановку bearer token из хранилища,
// разбор двухуровневого статуса (HTTP + встроенный statusCode)
// и уведомление пользователя о сбоях. Вызывающие уведомлений не дублируют.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/goartstore/admin-console/internal/kvstore"
)

// DefaultTimeout — таймаут запроса, если в Config не задан.
const DefaultTimeout = 5 * time.Second

// maxBodySize — предел размера тела ответа.
const maxBodySize = 10 << 20

// failurePrefix — префикс уведомления о транспортном сбое.
const failurePrefix = "请求失败: "

// TokenSource — источник bearer token (kvstore.Store удовлетворяет интерфейсу).
type TokenSource interface {
	Get(ctx context.Context, key string) (string, error)
}

// Route — пара путь+метод для белого списка отмены.
type Route struct {
	Path   string
	Method string
}

// Config — параметры диспетчера.
type Config struct {
	// BaseURL — префикс для Options.Path (без завершающего слэша).
	BaseURL string
	// Timeout — таймаут одного запроса (по умолчанию 5s).
	Timeout time.Duration
	// HTTPClient — клиент; nil — новый http.Client.
	HTTPClient *http.Client
	// Tokens — хранилище access token; nil — запросы без авторизации.
	Tokens TokenSource
	// Notifier — получатель уведомлений; nil — LogNotifier.
	Notifier Notifier
	// CancelWhitelist — маршруты, дубликаты которых не отменяют друг друга.
	CancelWhitelist []Route
	Logger          *slog.Logger
}

// Options — описание одного вызова.
type Options struct {
	Method string
	Path   string
	// Params — query-параметры: map, url.Values или структура с json-тегами.
	Params any
	// Body — тело запроса, сериализуется в JSON.
	Body    any
	Headers map[string]string
}

// envelope — конверт ответа API.
type envelope struct {
	StatusCode BusinessCode    `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// pendingCall — выполняющийся вызов в таблице дедупликации.
type pendingCall struct {
	id     uint64
	cancel context.CancelCauseFunc
}

// Dispatcher — диспетчер запросов. Таблица выполняющихся вызовов
// принадлежит экземпляру, разные диспетчеры друг на друга не влияют.
type Dispatcher struct {
	baseURL   string
	timeout   time.Duration
	client    *http.Client
	tokens    TokenSource
	notifier  Notifier
	whitelist map[Route]struct{}
	logger    *slog.Logger

	mu      sync.Mutex
	seq     uint64
	pending map[string]pendingCall
}

// New создаёт диспетчер.
func New(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}

	whitelist := make(map[Route]struct{}, len(cfg.CancelWhitelist))
	for _, r := range cfg.CancelWhitelist {
		whitelist[Route{Path: normalizePath(r.Path), Method: strings.ToUpper(r.Method)}] = struct{}{}
	}

	return &Dispatcher{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		timeout:   timeout,
		client:    client,
		tokens:    cfg.Tokens,
		notifier:  notifier,
		whitelist: whitelist,
		logger:    logger.With(slog.String("component", "request_dispatcher")),
		pending:   make(map[string]pendingCall),
	}
}

// Call выполняет запрос и декодирует поле data ответа в T.
func Call[T any](ctx context.Context, d *Dispatcher, opts Options) (T, error) {
	var out T
	err := d.Do(ctx, opts, &out)
	return out, err
}

// Do выполняет запрос и декодирует поле data ответа в out (nil — не декодировать).
// Возвращает nil, ошибку с ErrCanceled (вытеснен или отменён вызывающим)
// либо *Error (пользователь уже уведомлён).
func (d *Dispatcher) Do(ctx context.Context, opts Options, out any) error {
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}
	key := requestKey(method, opts.Path, opts.Params, opts.Body)

	callCtx, cancel := context.WithCancelCause(ctx)
	id := d.register(key, method, opts.Path, cancel)
	defer d.release(key, id, cancel)

	inFlight.Inc()
	start := time.Now()
	defer func() {
		inFlight.Dec()
		requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	data, err := d.execute(callCtx, method, opts)

	// Ответ получен, но вызов уже вытеснен: результат не применяется.
	if err == nil && context.Cause(callCtx) != nil {
		err = canceledError(context.Cause(callCtx))
	}

	if err == nil && out != nil && len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		if uerr := json.Unmarshal(data, out); uerr != nil {
			err = &Error{Kind: KindDecode, HTTPStatus: http.StatusOK, Status: StatusOK, Message: "响应数据格式错误", Err: uerr}
		}
	}

	return d.finish(method, opts.Path, err)
}

// Pending возвращает количество выполняющихся вызовов.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// register заносит вызов в таблицу, отменяя предыдущий с тем же ключом.
func (d *Dispatcher) register(key, method, path string, cancel context.CancelCauseFunc) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if prev, ok := d.pending[key]; ok && !d.whitelisted(method, path) {
		prev.cancel(errSuperseded)
		supersededTotal.Inc()
		d.logger.Debug("Предыдущий запрос вытеснен",
			slog.String("method", method),
			slog.String("path", path),
		)
	}
	d.pending[key] = pendingCall{id: d.seq, cancel: cancel}
	return d.seq
}

// release удаляет запись, только если она всё ещё принадлежит этому вызову.
func (d *Dispatcher) release(key string, id uint64, cancel context.CancelCauseFunc) {
	d.mu.Lock()
	if cur, ok := d.pending[key]; ok && cur.id == id {
		delete(d.pending, key)
	}
	d.mu.Unlock()
	cancel(nil)
}

func (d *Dispatcher) whitelisted(method, path string) bool {
	_, ok := d.whitelist[Route{Path: normalizePath(path), Method: method}]
	return ok
}

// execute выполняет HTTP-обмен и разбирает конверт.
func (d *Dispatcher) execute(ctx context.Context, method string, opts Options) (json.RawMessage, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := d.newRequest(timeoutCtx, method, opts)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Status: StatusUnknown, Message: err.Error(), Err: err}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, d.networkError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, d.networkError(ctx, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	status := Classify(resp.StatusCode)
	if !status.Success() {
		msg := status.Message()
		if decodeErr == nil && env.Message != "" {
			msg = env.Message
		}
		return nil, &Error{Kind: KindTransport, HTTPStatus: resp.StatusCode, Status: status, Message: msg}
	}

	if decodeErr != nil {
		return nil, &Error{
			Kind: KindDecode, HTTPStatus: resp.StatusCode, Status: status,
			Message: "响应数据格式错误", Err: decodeErr,
		}
	}

	if env.StatusCode.IsFailure() {
		msg := env.Message
		if msg == "" {
			msg = env.StatusCode.Message()
		}
		if msg == "" {
			msg = StatusUnknown.Message()
		}
		return nil, &Error{
			Kind: KindBusiness, HTTPStatus: resp.StatusCode, Status: status,
			Code: env.StatusCode, Message: msg,
		}
	}

	return env.Data, nil
}

// networkError различает отмену, таймаут и прочие сетевые сбои.
func (d *Dispatcher) networkError(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause != nil {
		return canceledError(cause)
	}
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = fmt.Sprintf("timeout of %dms exceeded", d.timeout.Milliseconds())
	}
	return &Error{Kind: KindNetwork, Status: StatusUnknown, Message: msg, Err: err}
}

// newRequest собирает HTTP-запрос: URL, query, JSON-тело, заголовки, токен.
func (d *Dispatcher) newRequest(ctx context.Context, method string, opts Options) (*http.Request, error) {
	u, err := url.Parse(d.baseURL + opts.Path)
	if err != nil {
		return nil, fmt.Errorf("некорректный URL %q: %w", opts.Path, err)
	}

	params, err := encodeParams(opts.Params)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader = http.NoBody
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("сериализация тела запроса: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if token := d.accessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// accessToken читает токен; ошибка чтения не мешает запросу.
func (d *Dispatcher) accessToken(ctx context.Context) string {
	if d.tokens == nil {
		return ""
	}
	token, err := d.tokens.Get(ctx, kvstore.KeyAccessToken)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			d.logger.Warn("Не удалось прочитать access token, запрос без авторизации",
				slog.String("error", err.Error()),
			)
		}
		return ""
	}
	return token
}

// finish считает метрики и уведомляет пользователя обо всём, кроме отмены.
func (d *Dispatcher) finish(method, path string, err error) error {
	if err == nil {
		requestsTotal.WithLabelValues(method, outcomeOK).Inc()
		return nil
	}

	if IsCanceled(err) {
		requestsTotal.WithLabelValues(method, outcomeCanceled).Inc()
		d.logger.Debug("Запрос отменён",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("reason", err.Error()),
		)
		return err
	}

	reqErr, ok := AsError(err)
	if !ok {
		reqErr = &Error{Kind: KindNetwork, Status: StatusUnknown, Message: err.Error(), Err: err}
	}
	requestsTotal.WithLabelValues(method, outcomeFor(reqErr.Kind)).Inc()

	if reqErr.Kind == KindBusiness {
		d.notifier.Notify(NewToast(fmt.Sprintf("%d %s", reqErr.Code, reqErr.Message), MessageError))
	} else {
		d.notifier.Notify(NewToast(failurePrefix+reqErr.Message, MessageError))
	}

	d.logger.Warn("Запрос завершился ошибкой",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("kind", reqErr.Kind.String()),
		slog.Int("http_status", reqErr.HTTPStatus),
		slog.Int("code", int(reqErr.Code)),
		slog.String("message", reqErr.Message),
	)
	return reqErr
}
