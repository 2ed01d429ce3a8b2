package clinicapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Telemetry — то, что клиенту нужно от слоя метрик. Реализует engine.Metrics.
type Telemetry interface {
	CacheHit()
	CacheMiss()
	BreakerOpen(open bool)
}

// NopTelemetry — заглушка для тестов и CLI.
type NopTelemetry struct{}

func (NopTelemetry) CacheHit()        {}
func (NopTelemetry) CacheMiss()       {}
func (NopTelemetry) BreakerOpen(bool) {}

// Config — настройки клиента коллабораторов.
type Config struct {
	BaseURL       string        // например http://clinic-api:3000/api
	FetchTimeout  time.Duration // Предел одного вызова (5s)
	CacheTTL      time.Duration // Свежесть ответа (30s)
	CacheCapacity int
	RateLimit     float64 // Запросов в секунду на все валидаторы
	RateBurst     int
	RetryAttempts uint
	CBMaxRequests uint32
	CBInterval    time.Duration
	CBTimeout     time.Duration
}

// Client — read-only клиент CRUD-коллабораторов. Гейт никогда не пишет:
// только GET, все мутации остаются за их владельцами.
// Исходящие вызовы защищены по схеме Rate Limiter -> Circuit Breaker -> Retry.
type Client struct {
	cfg     Config
	http    *http.Client
	cache   *TTLCache
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker
	logger  *zap.Logger
	stats   Telemetry
}

func NewClient(cfg Config, logger *zap.Logger, stats Telemetry) *Client {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 50
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 10
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.CBMaxRequests == 0 {
		cfg.CBMaxRequests = 3
	}
	if cfg.CBInterval <= 0 {
		cfg.CBInterval = 5 * time.Second
	}
	if cfg.CBTimeout <= 0 {
		cfg.CBTimeout = 30 * time.Second
	}
	if stats == nil {
		stats = NopTelemetry{}
	}

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{},
		cache:   NewTTLCache(cfg.CacheTTL, cfg.CacheCapacity),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  logger.Named("clinicapi"),
		stats:   stats,
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "clinic-api",
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.stats.BreakerOpen(to == gobreaker.StateOpen)
			c.logger.Warn("circuit breaker state change",
				zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return c
}

// Cache открывает кэш для инвалидации снаружи (тесты, CLI).
func (c *Client) Cache() *TTLCache { return c.cache }

// getJSON выполняет кэшируемый GET. Ключ кэша — полный URL с query.
// Любой сбой (сеть, не-2xx, таймаут) возвращается ошибкой; интерпретация
// "нет данных = не готово" лежит на валидаторах.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) ([]byte, error) {
	full := c.cfg.BaseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}

	if body, ok := c.cache.Get(full); ok {
		c.stats.CacheHit()
		return body, nil
	}
	c.stats.CacheMiss()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var body []byte
	_, err := c.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(c.cfg.RetryAttempts),
			retry.LastErrorOnly(true),
			retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
				// Коллаборатор прислал Retry-After — уважаем его
				var tErr *ThrottleError
				if errors.As(err, &tErr) {
					return tErr.RetryAfter
				}
				return retry.BackOffDelay(n, err, config)
			}),
		)

		retryErr := r.Do(func() error {
			tCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
			defer cancel()

			var callErr error
			body, callErr = c.doGet(tCtx, full)
			return callErr
		})
		return body, retryErr
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set(full, body)
	return body, nil
}

func (c *Client) doGet(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		after := 2 * time.Second
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, perr := strconv.Atoi(s); perr == nil {
				after = time.Duration(secs) * time.Second
			}
		}
		return nil, &ThrottleError{RetryAfter: after, Cause: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("clinic-api: unexpected status %d for %s", resp.StatusCode, fullURL)
	}

	return io.ReadAll(resp.Body)
}

func tenantQuery(clinicID string) url.Values {
	q := url.Values{}
	if clinicID != "" {
		q.Set("clinicId", clinicID)
	}
	return q
}

// AssetsSummary — месячная амортизация, посчитанная на стороне коллаборатора.
func (c *Client) AssetsSummary(ctx context.Context, clinicID string) (*AssetsSummary, error) {
	body, err := c.getJSON(ctx, "/assets/summary", tenantQuery(clinicID))
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("clinic-api: decode assets summary: %w", err)
	}
	var out AssetsSummary
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &out); err != nil {
			return nil, fmt.Errorf("clinic-api: decode assets summary data: %w", err)
		}
	}
	return &out, nil
}

// FixedCosts — ручные фиксированные затраты клиники (без амортизации).
func (c *Client) FixedCosts(ctx context.Context, clinicID string, limit int) ([]FixedCost, error) {
	q := tenantQuery(clinicID)
	q.Set("limit", strconv.Itoa(limit))
	body, err := c.getJSON(ctx, "/fixed-costs", q)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("clinic-api: decode fixed costs: %w", err)
	}
	var out []FixedCost
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &out); err != nil {
			return nil, fmt.Errorf("clinic-api: decode fixed costs data: %w", err)
		}
	}
	return out, nil
}

// TimeSettings — рабочие дни, часы и реальная загрузка кресла.
func (c *Client) TimeSettings(ctx context.Context, clinicID string) (*TimeSettings, error) {
	body, err := c.getJSON(ctx, "/settings/time", tenantQuery(clinicID))
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("clinic-api: decode time settings: %w", err)
	}
	var out TimeSettings
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &out); err != nil {
			return nil, fmt.Errorf("clinic-api: decode time settings data: %w", err)
		}
	}
	return &out, nil
}

// Equilibrium — точка безубыточности клиники.
func (c *Client) Equilibrium(ctx context.Context, clinicID string) (*Equilibrium, error) {
	body, err := c.getJSON(ctx, "/equilibrium", tenantQuery(clinicID))
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("clinic-api: decode equilibrium: %w", err)
	}
	var out Equilibrium
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &out); err != nil {
			return nil, fmt.Errorf("clinic-api: decode equilibrium data: %w", err)
		}
	}
	return &out, nil
}

// Supplies — складские расходники клиники.
func (c *Client) Supplies(ctx context.Context, clinicID string, limit int) ([]Supply, error) {
	q := tenantQuery(clinicID)
	q.Set("limit", strconv.Itoa(limit))
	body, err := c.getJSON(ctx, "/supplies", q)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("clinic-api: decode supplies: %w", err)
	}
	var out []Supply
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &out); err != nil {
			return nil, fmt.Errorf("clinic-api: decode supplies data: %w", err)
		}
	}
	return out, nil
}

// Services — услуги клиники с рецептами. Единственный эндпоинт без envelope.
func (c *Client) Services(ctx context.Context, clinicID string, limit int) ([]Service, error) {
	q := tenantQuery(clinicID)
	q.Set("limit", strconv.Itoa(limit))
	body, err := c.getJSON(ctx, "/services", q)
	if err != nil {
		return nil, err
	}
	var out []Service
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("clinic-api: decode services: %w", err)
	}
	return out, nil
}

// ServiceCost — итоговая себестоимость конкретной услуги.
func (c *Client) ServiceCost(ctx context.Context, serviceID string) (*ServiceCost, error) {
	body, err := c.getJSON(ctx, "/services/"+url.PathEscape(serviceID)+"/cost", nil)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("clinic-api: decode service cost: %w", err)
	}
	var out ServiceCost
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &out); err != nil {
			return nil, fmt.Errorf("clinic-api: decode service cost data: %w", err)
		}
	}
	return &out, nil
}
