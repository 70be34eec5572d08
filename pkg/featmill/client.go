// Package featmill предоставляет переиспользуемый SDK для FeatMill feature-платформы.
//
// Architecture:
//
// Это **API SDK**, а не просто "тупой" HTTP клиент. Он предоставляет:
//   - HTTP клиент с retry, rate limiting и классификацией ошибок
//   - Высокоуровневые методы для регистрации датасетов и объявления фичей
//   - Чанкование загрузки и retrieve для больших наборов строк
//   - Строгое выравнивание порядка строк при retrieve
//
// Граница ответственности:
// Вся тяжёлая работа (streaming ingestion, rolling агрегаты, anomaly
// detection, online store) живёт на стороне платформы. SDK реализует только
// внешний контракт вызовов: создать датасет, объявить фичу, запустить
// материализацию, прочитать значения фичей.
//
// Сравнение с S3 клиентом:
//   - S3 клиент (pkg/s3storage) — "тупой" клиент, S3 API простой и стандартный
//   - FeatMill клиент — SDK: обёртки ответов, чанкование, выравнивание порядка
package featmill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ilkoid/featmill/pkg/config"
	"golang.org/x/time/rate"
)

// ErrorType представляет тип ошибки при работе с FeatMill API.
type ErrorType int

const (
	ErrUnknown ErrorType = iota
	ErrAuthFailed
	ErrTimeout
	ErrNetwork
	ErrRateLimit
	ErrNotFound
)

// String возвращает строковое представление типа ошибки.
func (e ErrorType) String() string {
	switch e {
	case ErrAuthFailed:
		return "authentication_failed"
	case ErrTimeout:
		return "timeout"
	case ErrNetwork:
		return "network_error"
	case ErrRateLimit:
		return "rate_limit"
	case ErrNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// HumanMessage возвращает человекочитаемое сообщение для типа ошибки.
func (e ErrorType) HumanMessage() string {
	switch e {
	case ErrAuthFailed:
		return "API ключ недействителен или отсутствует. Проверьте FEATMILL_API_KEY в конфигурации."
	case ErrTimeout:
		return "Превышено время ожидания. Сервер FeatMill не отвечает или проблемы с сетью."
	case ErrNetwork:
		return "Сервер FeatMill недоступен. Проверьте подключение к интернету."
	case ErrRateLimit:
		return "Превышен лимит запросов. Подождите перед следующей попыткой."
	case ErrNotFound:
		return "Датасет или фича не найдены на платформе. Проверьте идентификатор."
	default:
		return "Неизвестная ошибка при подключении к FeatMill API."
	}
}

// HTTPClient интерфейс для выполнения HTTP запросов.
//
// Позволяет мокировать HTTP клиент в тестах.
// Стандартный *http.Client реализует этот интерфейс.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client — клиент FeatMill платформы.
//
// Thread-safe: лимитеры защищены мьютексом, остальные поля иммутабельны
// после создания.
type Client struct {
	apiKey        string
	baseURL       string
	httpClient    HTTPClient // Интерфейс вместо конкретного типа для testability
	retryAttempts int        // Количество retry попыток
	rateLimit     int        // Запросов в минуту
	burst         int        // Burst для rate limiter
	uploadChunk   int        // Строк на один запрос загрузки
	retrieveChunk int        // Строк на один запрос retrieve

	mu       sync.RWMutex
	limiters map[string]*rate.Limiter // endpoint ID → limiter
}

// IsDemoKey проверяет что используется demo ключ (для mock режима).
func (c *Client) IsDemoKey() bool {
	return c.apiKey == "demo_key"
}

// New создает новый клиент FeatMill платформы с дефолтными настройками.
//
// Параметры:
//   - apiKey: API ключ для авторизации
//   - baseURL: базовый URL платформы (пустая строка — дефолтный endpoint)
//
// DEPRECATED: Используйте NewFromConfig для явного указания всех параметров.
func New(apiKey string, baseURL string) *Client {
	// Используем дефолтную конфигурацию для согласованности с NewFromConfig
	defaultCfg := config.FeatMillConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
	}

	client, _ := NewFromConfig(defaultCfg)
	return client
}

// NewFromConfig создает новый клиент из конфигурации.
//
// Параметры:
//   - cfg: Конфигурация FeatMill API
//
// Поля с нулевыми значениями используют дефолтные значения через GetDefaults().
func NewFromConfig(cfg config.FeatMillConfig) (*Client, error) {
	// Применяем дефолтные значения
	cfg = cfg.GetDefaults()

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("featmill.api_key is required")
	}

	// Парсим timeout
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid featmill.timeout format: %w", err)
	}

	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       cfg.BaseURL,
		retryAttempts: cfg.RetryAttempts,
		rateLimit:     cfg.RateLimit,
		burst:         cfg.BurstLimit,
		uploadChunk:   cfg.UploadChunk,
		retrieveChunk: cfg.RetrieveChunk,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiters: make(map[string]*rate.Limiter),
	}, nil
}

// ClassifyError классифицирует ошибку по типу для лучшей диагностики.
//
// Анализирует текст ошибки и возвращает соответствующий тип:
//   - ErrAuthFailed: ошибки 401, unauthorized, Forbidden
//   - ErrTimeout: timeout, deadline exceeded
//   - ErrNetwork: connection refused, no such host
//   - ErrRateLimit: ошибки 429, Too Many Requests
//   - ErrNotFound: ошибки 404
//   - ErrUnknown: все остальные ошибки
func (c *Client) ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrUnknown
	}

	errMsg := err.Error()
	errMsgLower := strings.ToLower(errMsg)

	// Проверка ошибок авторизации
	if strings.Contains(errMsg, "401") ||
		strings.Contains(errMsgLower, "unauthorized") ||
		strings.Contains(errMsg, "Forbidden") {
		return ErrAuthFailed
	}

	// Проверка таймаутов
	if strings.Contains(errMsgLower, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded") {
		return ErrTimeout
	}

	// Проверка сетевых ошибок
	if strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no such host") {
		return ErrNetwork
	}

	// Проверка rate limiting
	if strings.Contains(errMsg, "429") ||
		strings.Contains(errMsg, "Too Many Requests") {
		return ErrRateLimit
	}

	// Проверка not found
	if strings.Contains(errMsg, "404") ||
		strings.Contains(errMsgLower, "not found") {
		return ErrNotFound
	}

	return ErrUnknown
}

// httpRequest описывает параметры HTTP запроса.
//
// body хранится байтами, а не io.Reader: retry loop пересоздаёт reader
// на каждую попытку, иначе повторный запрос ушёл бы с пустым телом.
type httpRequest struct {
	method string
	url    string
	body   []byte
}

// doRequest выполняет HTTP запрос с retry логикой и rate limiting.
//
// Общий метод для get() и post(), реализующий retry loop, rate limiting
// и обработку 429 ответов.
func (c *Client) doRequest(ctx context.Context, endpointID string, req httpRequest, dest interface{}) error {
	// Получаем или создаём limiter для этого endpoint
	limiter := c.getOrCreateLimiter(endpointID)

	var lastErr error

	// Retry loop
	for i := 0; i < c.retryAttempts; i++ {
		// 1. Ждем разрешения от лимитера (блокирует горутину, если превысили лимит)
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}

		var bodyReader io.Reader
		if req.body != nil {
			bodyReader = bytes.NewReader(req.body)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, bodyReader)
		if err != nil {
			return err
		}

		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue // Сетевая ошибка, пробуем еще
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		// Обработка 429 (Too Many Requests)
		if resp.StatusCode == http.StatusTooManyRequests {
			// Читаем заголовок Retry-After
			retryAfter := 1 * time.Second // Дефолт
			if s := resp.Header.Get("Retry-After"); s != "" {
				if sec, err := strconv.Atoi(s); err == nil {
					retryAfter = time.Duration(sec) * time.Second
				}
			}

			// Ждем и ретраем
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfter):
				continue
			}
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("featmill api error: status %d, body: %s", resp.StatusCode, string(body))
		}

		if dest == nil {
			return nil // Ответ не интересует (endpoint без тела)
		}

		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("unmarshal error: %w", err)
		}

		return nil // Успех
	}

	return fmt.Errorf("max retries exceeded, last error: %v", lastErr)
}

// get выполняет GET запрос к FeatMill API с поддержкой Rate Limit и Retries.
func (c *Client) get(ctx context.Context, endpointID string, path string, params url.Values, dest interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	return c.doRequest(ctx, endpointID, httpRequest{
		method: "GET",
		url:    u.String(),
		body:   nil,
	}, dest)
}

// post выполняет POST запрос к FeatMill API с поддержкой Rate Limit и Retries.
//
// body сериализуется в JSON один раз, до retry loop.
func (c *Client) post(ctx context.Context, endpointID string, path string, body interface{}, dest interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	// Сериализуем body
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	return c.doRequest(ctx, endpointID, httpRequest{
		method: "POST",
		url:    u.String(),
		body:   bodyJSON,
	}, dest)
}

// getOrCreateLimiter возвращает существующий limiter для endpointID или создаёт новый.
//
// Параметры:
//   - endpointID: идентификатор endpoint (ключ для map)
//
// Возвращает *rate.Limiter для этого endpoint.
func (c *Client) getOrCreateLimiter(endpointID string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Если limiter уже существует - возвращаем
	if limiter, exists := c.limiters[endpointID]; exists {
		return limiter
	}

	// Создаём новый limiter
	// rateLimit в запросах/минуту → rate.Limit в запросах/секунду
	ratePerSec := float64(c.rateLimit) / 60.0
	limiter := rate.NewLimiter(rate.Limit(ratePerSec), c.burst)
	c.limiters[endpointID] = limiter

	return limiter
}

// PingResponse представляет ответ от ping endpoint FeatMill платформы.
//
// Поля:
//   - Status: Статус сервиса (обычно "OK" при успешном ответе)
//   - TS: Timestamp ответа сервера
type PingResponse struct {
	Status string `json:"status"`
	TS     string `json:"ts"`
}

// Ping проверяет связь с платформой.
//
// Возвращает ответ от API или ошибку. Полезен для диагностики:
//   - проверка доступности сервиса
//   - проверка валидности API ключа (401 = unauthorized)
//   - определение сетевых проблем
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	var resp PingResponse

	err := c.get(ctx, "ping", "/ping", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	if resp.Status != "OK" {
		return nil, fmt.Errorf("ping status not OK: %s", resp.Status)
	}

	return &resp, nil
}
