package featmill

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/ilkoid/featmill/pkg/config"
)

// mockHTTP — мок HTTP клиента для тестов.
//
// Записывает все запросы (метод, путь, тело) и отдаёт заранее
// подготовленные ответы в порядке вызовов. Когда ответы кончаются,
// повторяется последний.
type mockHTTP struct {
	Responses []*http.Response
	Err       error // Если задана — возвращается вместо ответа

	CallCount int
	Requests  []recordedRequest
}

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

func (m *mockHTTP) Do(req *http.Request) (*http.Response, error) {
	body := ""
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		body = string(data)
	}

	m.Requests = append(m.Requests, recordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Body:   body,
		Auth:   req.Header.Get("Authorization"),
	})
	m.CallCount++

	if m.Err != nil {
		return nil, m.Err
	}

	idx := m.CallCount - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// jsonResponse создаёт HTTP ответ с JSON телом для мока.
func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

// newTestClient создаёт клиента с моком и быстрыми лимитами.
func newTestClient(t *testing.T, mock *mockHTTP) *Client {
	t.Helper()

	client, err := NewFromConfig(config.FeatMillConfig{
		APIKey:  "test_key",
		BaseURL: "https://api.test.local",
	})
	if err != nil {
		t.Fatalf("client init: %v", err)
	}
	client.httpClient = mock
	return client
}

// TestNewFromConfig тестирует создание клиента из конфигурации.
func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.FeatMillConfig
		wantErr bool
	}{
		{
			name: "valid config",
			cfg:  config.FeatMillConfig{APIKey: "key"},
		},
		{
			name:    "missing api key",
			cfg:     config.FeatMillConfig{},
			wantErr: true,
		},
		{
			name:    "bad timeout format",
			cfg:     config.FeatMillConfig{APIKey: "key", Timeout: "not-a-duration"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewFromConfig(tt.cfg)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client == nil {
				t.Fatal("expected client")
			}
			// Дефолты должны примениться
			if client.retryAttempts == 0 {
				t.Error("retry attempts default not applied")
			}
			if client.uploadChunk == 0 || client.retrieveChunk == 0 {
				t.Error("chunk size defaults not applied")
			}
		})
	}
}

// TestIsDemoKey тестирует определение demo ключа.
func TestIsDemoKey(t *testing.T) {
	demo := New("demo_key", "")
	if !demo.IsDemoKey() {
		t.Error("demo_key not detected")
	}

	real := New("sk-real", "")
	if real.IsDemoKey() {
		t.Error("real key misdetected as demo")
	}
}

// TestClassifyError тестирует классификацию ошибок по тексту.
func TestClassifyError(t *testing.T) {
	client := New("test_key", "")

	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil error", nil, ErrUnknown},
		{"401 status", fmt.Errorf("featmill api error: status 401"), ErrAuthFailed},
		{"unauthorized text", fmt.Errorf("request Unauthorized"), ErrAuthFailed},
		{"timeout", fmt.Errorf("context deadline exceeded"), ErrTimeout},
		{"client timeout", fmt.Errorf("Client.Timeout exceeded"), ErrTimeout},
		{"connection refused", fmt.Errorf("dial tcp: connection refused"), ErrNetwork},
		{"dns failure", fmt.Errorf("lookup api: no such host"), ErrNetwork},
		{"429 status", fmt.Errorf("featmill api error: status 429"), ErrRateLimit},
		{"404 status", fmt.Errorf("featmill api error: status 404"), ErrNotFound},
		{"dataset not found", fmt.Errorf("dataset not found"), ErrNotFound},
		{"random error", fmt.Errorf("something else"), ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.ClassifyError(tt.err); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

// TestErrorType_String тестирует строковые представления типов ошибок.
func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{ErrUnknown, "unknown"},
		{ErrAuthFailed, "authentication_failed"},
		{ErrTimeout, "timeout"},
		{ErrNetwork, "network_error"},
		{ErrRateLimit, "rate_limit"},
		{ErrNotFound, "not_found"},
	}

	for _, tt := range tests {
		if got := tt.errType.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tt.errType, got, tt.want)
		}
	}
}

// TestErrorType_HumanMessage тестирует что каждый тип имеет сообщение.
func TestErrorType_HumanMessage(t *testing.T) {
	types := []ErrorType{ErrUnknown, ErrAuthFailed, ErrTimeout, ErrNetwork, ErrRateLimit, ErrNotFound}
	for _, et := range types {
		if et.HumanMessage() == "" {
			t.Errorf("empty human message for %s", et)
		}
	}
}

// TestPing тестирует ping endpoint.
func TestPing(t *testing.T) {
	mock := &mockHTTP{
		Responses: []*http.Response{
			jsonResponse(200, `{"status": "OK", "ts": "2026-01-15T10:00:00Z"}`),
		},
	}
	client := newTestClient(t, mock)

	resp, err := client.Ping(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Status != "OK" {
		t.Errorf("status: got %q, want OK", resp.Status)
	}
	if mock.Requests[0].Method != "GET" || mock.Requests[0].Path != "/ping" {
		t.Errorf("unexpected request: %s %s", mock.Requests[0].Method, mock.Requests[0].Path)
	}
}

// TestPing_StatusNotOK тестирует что не-OK статус считается ошибкой.
func TestPing_StatusNotOK(t *testing.T) {
	mock := &mockHTTP{
		Responses: []*http.Response{
			jsonResponse(200, `{"status": "DEGRADED", "ts": ""}`),
		},
	}
	client := newTestClient(t, mock)

	if _, err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error for non-OK status")
	}
}

// TestDoRequest_AuthHeader тестирует что клиент подписывает запросы Bearer токеном.
func TestDoRequest_AuthHeader(t *testing.T) {
	mock := &mockHTTP{
		Responses: []*http.Response{
			jsonResponse(200, `{"status": "OK", "ts": ""}`),
		},
	}
	client := newTestClient(t, mock)

	if _, err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := mock.Requests[0].Auth; got != "Bearer test_key" {
		t.Errorf("auth header: got %q, want %q", got, "Bearer test_key")
	}
}

// TestDoRequest_RetryOn429 тестирует retry при rate limiting от платформы.
func TestDoRequest_RetryOn429(t *testing.T) {
	resp429 := jsonResponse(429, `{"error": "too many requests"}`)
	resp429.Header.Set("Retry-After", "0")

	mock := &mockHTTP{
		Responses: []*http.Response{
			resp429,
			jsonResponse(200, `{"status": "OK", "ts": ""}`),
		},
	}
	client := newTestClient(t, mock)

	resp, err := client.Ping(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "OK" {
		t.Errorf("status: got %q", resp.Status)
	}
	if mock.CallCount != 2 {
		t.Errorf("expected 2 calls (429 then OK), got %d", mock.CallCount)
	}
}

// TestDoRequest_RetryOnNetworkError тестирует retry при сетевых ошибках.
func TestDoRequest_RetryOnNetworkError(t *testing.T) {
	mock := &mockHTTP{Err: fmt.Errorf("dial tcp: connection refused")}
	client := newTestClient(t, mock)
	client.retryAttempts = 3

	_, err := client.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount != 3 {
		t.Errorf("expected 3 attempts, got %d", mock.CallCount)
	}
	if !strings.Contains(err.Error(), "max retries exceeded") {
		t.Errorf("error %q does not mention retries", err)
	}
}

// TestDoRequest_NoRetryOnAPIError тестирует что 4xx/5xx (кроме 429) не ретраятся.
func TestDoRequest_NoRetryOnAPIError(t *testing.T) {
	mock := &mockHTTP{
		Responses: []*http.Response{
			jsonResponse(500, `{"error": "internal"}`),
		},
	}
	client := newTestClient(t, mock)

	_, err := client.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount != 1 {
		t.Errorf("expected 1 call for API error, got %d", mock.CallCount)
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error %q does not contain status", err)
	}
}

// TestDoRequest_RetryResendsBody тестирует что повторный POST уходит с телом.
func TestDoRequest_RetryResendsBody(t *testing.T) {
	resp429 := jsonResponse(429, `{}`)
	resp429.Header.Set("Retry-After", "0")

	mock := &mockHTTP{
		Responses: []*http.Response{
			resp429,
			jsonResponse(200, `{"accepted": 1}`),
		},
	}
	client := newTestClient(t, mock)

	_, err := client.UploadRows(context.Background(), "tx_data", []Row{{"transactionID": "1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mock.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(mock.Requests))
	}
	// Тело второго (retry) запроса не должно быть пустым
	if mock.Requests[1].Body == "" {
		t.Error("retry request sent with empty body")
	}
	if mock.Requests[0].Body != mock.Requests[1].Body {
		t.Errorf("retry body differs: %q vs %q", mock.Requests[0].Body, mock.Requests[1].Body)
	}
}

// TestGetOrCreateLimiter тестирует переиспользование лимитеров по endpoint.
func TestGetOrCreateLimiter(t *testing.T) {
	client := New("test_key", "")

	l1 := client.getOrCreateLimiter("upload_rows")
	l2 := client.getOrCreateLimiter("upload_rows")
	l3 := client.getOrCreateLimiter("retrieve_features")

	if l1 != l2 {
		t.Error("same endpoint must reuse limiter")
	}
	if l1 == l3 {
		t.Error("different endpoints must not share limiter")
	}
}
