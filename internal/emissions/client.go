// Package emissions — клиент внешнего сервиса расчёта CO2-эквивалента.
// Сервис отвечает на вопрос «сколько килограммов CO₂ экономит сдача
// N граммов категории X». Вызов строго ограничен таймаутом: журнал сдач
// не должен ждать внешний сервис дольше пары секунд.
package emissions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Estimator возвращает CO2-эквивалент (кг) для веса и категории вторсырья.
// Ошибка означает «оценки нет» — вызывающая сторона подставляет 0.
type Estimator interface {
	Estimate(ctx context.Context, grams int64, category string) (float64, error)
}

// Client — HTTP-реализация Estimator.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient создаёт клиент сервиса эмиссий.
// timeout — полный бюджет на запрос (соединение + ответ).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// estimateResponse — формат ответа сервиса.
type estimateResponse struct {
	CO2eKg float64 `json:"co2e_kg"`
}

// Estimate запрашивает оценку CO2e: GET /v1/estimate?category=...&grams=...
func (c *Client) Estimate(ctx context.Context, grams int64, category string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v1/estimate?%s", c.baseURL, url.Values{
		"category": {category},
		"grams":    {strconv.FormatInt(grams, 10)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("сервис эмиссий недоступен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("сервис эмиссий вернул статус %d", resp.StatusCode)
	}

	var out estimateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("ошибка разбора ответа: %w", err)
	}

	if out.CO2eKg < 0 {
		return 0, fmt.Errorf("сервис эмиссий вернул отрицательное значение: %f", out.CO2eKg)
	}

	return out.CO2eKg, nil
}
