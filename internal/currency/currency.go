package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"tender-backend/internal/pricing"
	"tender-backend/internal/storage/redis"
)

const DefaultURL = "https://www.cbr-xml-daily.ru/daily_json.js"

// Codes — валюты, которые попадают в таблицу курсов шаблона.
var Codes = []string{"EUR", "USD", "GBP", "CNY"}

var ErrMissingRate = errors.New("rate missing in feed")

type Provider interface {
	Rates(ctx context.Context) (pricing.Rates, error)
}

type CBRConfig struct {
	URL           string
	Timeout       time.Duration
	MaxRetries    uint64
	RetryInterval time.Duration
}

// CBRClient reads the daily CBR JSON feed.
type CBRClient struct {
	cfg  CBRConfig
	http *http.Client
	log  *slog.Logger
}

func NewCBRClient(cfg CBRConfig, log *slog.Logger) *CBRClient {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 300 * time.Millisecond
	}

	return &CBRClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

type dailyResponse struct {
	Date   string `json:"Date"`
	Valute map[string]struct {
		CharCode string  `json:"CharCode"`
		Nominal  float64 `json:"Nominal"`
		Value    float64 `json:"Value"`
	} `json:"Valute"`
}

func (c *CBRClient) Rates(ctx context.Context) (pricing.Rates, error) {
	const op = "currency.CBRClient.Rates"

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.RetryInterval
	policy.MaxElapsedTime = 0

	var rates pricing.Rates
	err := backoff.RetryNotify(
		func() error {
			r, err := c.fetch(ctx)
			if err != nil {
				return err
			}
			rates = r
			return nil
		},
		backoff.WithContext(backoff.WithMaxRetries(policy, c.cfg.MaxRetries), ctx),
		func(err error, next time.Duration) {
			c.log.Warn("cbr rates fetch failed, retrying",
				slog.String("op", op),
				slog.String("error", err.Error()),
				slog.Duration("next_attempt_in", next),
			)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rates, nil
}

func (c *CBRClient) fetch(ctx context.Context) (pricing.Rates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var body dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	rates := make(pricing.Rates, len(Codes))
	for _, code := range Codes {
		v, ok := body.Valute[code]
		if !ok || v.Value <= 0 {
			return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrMissingRate, code))
		}

		nominal := v.Nominal
		if nominal <= 0 {
			nominal = 1
		}
		rates[code] = v.Value / nominal
	}

	return rates, nil
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

const cacheKey = "cbr:rates"

// CachedProvider keeps the last rates in the cache for ttl.
// Ошибки кеша только логируются.
type CachedProvider struct {
	next  Provider
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

func NewCachedProvider(next Provider, cache Cache, ttl time.Duration, log *slog.Logger) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, ttl: ttl, log: log}
}

func (p *CachedProvider) Rates(ctx context.Context) (pricing.Rates, error) {
	const op = "currency.CachedProvider.Rates"

	log := p.log.With(slog.String("op", op))

	data, err := p.cache.Get(ctx, cacheKey)
	switch {
	case err == nil:
		var rates pricing.Rates
		if err := json.Unmarshal(data, &rates); err == nil {
			return rates, nil
		}
		log.Warn("cached rates are corrupted, dropping the entry")
		if err := p.cache.Del(ctx, cacheKey); err != nil {
			log.Warn("rates cache delete failed", slog.String("error", err.Error()))
		}
	case !errors.Is(err, redis.ErrCacheMiss):
		log.Warn("rates cache read failed", slog.String("error", err.Error()))
	}

	rates, err := p.next.Rates(ctx)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(rates)
	if err == nil {
		err = p.cache.Set(ctx, cacheKey, data, p.ttl)
	}
	if err != nil {
		log.Warn("rates cache write failed", slog.String("error", err.Error()))
	}

	return rates, nil
}

// Fixed отдаёт заранее заданные курсы: тесты и работа без сети.
type Fixed pricing.Rates

func (f Fixed) Rates(ctx context.Context) (pricing.Rates, error) {
	out := make(pricing.Rates, len(f))
	for k, v := range f {
		out[strings.ToUpper(k)] = v
	}
	return out, nil
}
