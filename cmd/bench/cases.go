// README: Smoke cases for the fare API: environment, settings, profiles, calculation, history and load.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	calcBody := map[string]any{"origin": r.cfg.Origin, "destination": r.cfg.Destination}
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "dsn not set"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not set"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "API: health",
			Run: func(ctx context.Context, r *Runner) Result {
				return expectStatus(ctx, r, http.MethodGet, "/health", nil, http.StatusOK)
			},
		},
		{
			Name: "Settings: invalid value rejected",
			Run: func(ctx context.Context, r *Runner) Result {
				body := map[string]any{"base_fare": "abc", "min_fare": "10", "cost_per_km": "2", "cost_per_min": "0.5"}
				return expectStatus(ctx, r, http.MethodPut, "/api/settings", body, http.StatusBadRequest)
			},
		},
		{
			Name: "Profiles: select premium persists 10/20/3/1",
			Run: func(ctx context.Context, r *Runner) Result {
				res := expectStatus(ctx, r, http.MethodPost, "/api/profiles/premium/select", nil, http.StatusOK)
				if res.Status != statusPass {
					return res
				}
				var got struct {
					Settings struct {
						BaseFare   float64 `json:"base_fare"`
						MinFare    float64 `json:"min_fare"`
						CostPerKm  float64 `json:"cost_per_km"`
						CostPerMin float64 `json:"cost_per_min"`
					} `json:"settings"`
				}
				status, _, err := r.doJSON(ctx, http.MethodGet, "/api/settings", nil, &got)
				if err != nil || status != http.StatusOK {
					return Result{Status: statusFail, Note: fmt.Sprintf("status=%d err=%v", status, err)}
				}
				s := got.Settings
				if s.BaseFare != 10 || s.MinFare != 20 || s.CostPerKm != 3 || s.CostPerMin != 1 {
					return Result{Status: statusFail, Note: fmt.Sprintf("settings=%+v", s)}
				}
				return Result{Status: statusPass, Latency: res.Latency}
			},
		},
		{
			Name: "Profiles: unknown name is 404",
			Run: func(ctx context.Context, r *Runner) Result {
				return expectStatus(ctx, r, http.MethodPost, "/api/profiles/does-not-exist/select", nil, http.StatusNotFound)
			},
		},
		{
			Name: "History: clear is idempotent",
			Run: func(ctx context.Context, r *Runner) Result {
				if res := expectStatus(ctx, r, http.MethodDelete, "/api/history", nil, http.StatusNoContent); res.Status != statusPass {
					return res
				}
				return expectStatus(ctx, r, http.MethodDelete, "/api/history", nil, http.StatusNoContent)
			},
		},
		{
			Name: "Calculate: fare respects minimum and is recorded",
			Run: func(ctx context.Context, r *Runner) Result {
				var q struct {
					Fare struct {
						Total float64 `json:"total"`
					} `json:"fare"`
					Settings struct {
						MinFare float64 `json:"min_fare"`
					} `json:"settings"`
					Entry struct {
						ID string `json:"id"`
					} `json:"entry"`
				}
				status, latency, err := r.doJSON(ctx, http.MethodPost, "/api/routes/calculate", calcBody, &q)
				if err != nil || status != http.StatusOK {
					return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d err=%v", status, err)}
				}
				if q.Fare.Total < q.Settings.MinFare || math.Round(q.Fare.Total*100) != q.Fare.Total*100 {
					return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("total=%v min=%v", q.Fare.Total, q.Settings.MinFare)}
				}

				var h struct {
					History []struct {
						ID string `json:"id"`
					} `json:"history"`
				}
				if _, _, err := r.doJSON(ctx, http.MethodGet, "/api/history", nil, &h); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if len(h.History) == 0 || h.History[0].ID != q.Entry.ID {
					return Result{Status: statusFail, Note: "new entry is not at the head of history"}
				}
				return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("total=%.2f", q.Fare.Total)}
			},
		},
		{
			Name: "Calculate: unknown destination records nothing",
			Run: func(ctx context.Context, r *Runner) Result {
				before, err := r.historyLen(ctx)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				body := map[string]any{"origin": r.cfg.Origin, "destination": "zzzz qqqq xxxx 0000"}
				res := expectStatus(ctx, r, http.MethodPost, "/api/routes/calculate", body, http.StatusNotFound)
				if res.Status != statusPass {
					return res
				}
				after, err := r.historyLen(ctx)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if after != before {
					return Result{Status: statusFail, Note: fmt.Sprintf("history grew %d -> %d", before, after)}
				}
				return res
			},
		},
		{
			Name: "Perf: GET /api/profiles",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, http.MethodGet, "/api/profiles")
			},
		},
	}
}

func (r *Runner) doJSON(ctx context.Context, method, path string, body, out any) (int, time.Duration, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, &buf)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", "bench")
	if r.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", r.cfg.APIKey)
	}

	start := time.Now()
	resp, err := r.httpc.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, latency, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, latency, err
		}
		return resp.StatusCode, latency, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, latency, nil
}

func (r *Runner) historyLen(ctx context.Context) (int, error) {
	var h struct {
		History []json.RawMessage `json:"history"`
	}
	status, _, err := r.doJSON(ctx, http.MethodGet, "/api/history", nil, &h)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("status=%d", status)
	}
	return len(h.History), nil
}

func expectStatus(ctx context.Context, r *Runner, method, path string, body any, want int) Result {
	status, latency, err := r.doJSON(ctx, method, path, body, nil)
	if err != nil {
		return Result{Status: statusFail, Latency: latency, Note: err.Error()}
	}
	if status != want {
		return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d want=%d", status, want)}
	}
	return Result{Status: statusPass, Latency: latency}
}

func perfLoad(ctx context.Context, r *Runner, method, path string) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				status, _, err := r.doJSON(ctx, method, path, nil, nil)
				mu.Lock()
				if err != nil || status >= 500 {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}
