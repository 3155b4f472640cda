package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"PriceCycle/internal/model"
)

// RESTFetcher implements Fetcher against a generic bars REST API:
//
//	GET {base}/api/v1/bars/{daily|weekly}?symbol=X&limit=N
//
// returning a JSON array of {timestamp, open, high, low, close, volume}.
// Bar times are reported in Location, which also decides week boundaries
// when weekly bars are aggregated from daily ones.
type RESTFetcher struct {
	BaseURL  string
	APIKey   string
	Location *time.Location
	Client   *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
// A nil loc means UTC.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration, loc *time.Location) *RESTFetcher {
	if loc == nil {
		loc = time.UTC
	}
	return &RESTFetcher{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		Location: loc,
		Client:   newHTTPClient(proxyURL, timeout),
	}
}

func (f *RESTFetcher) location() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars API.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Open      float64  `json:"open"`
	High      float64  `json:"high"`
	Low       float64  `json:"low"`
	Close     *float64 `json:"close"`
	Volume    float64  `json:"volume"`
}

func (f *RESTFetcher) Fetch(ctx context.Context, symbol string, g model.Granularity, count int) ([]model.Bar, error) {
	if g == model.Daily {
		return f.fetchBars(ctx, "daily", symbol, count)
	}
	bars, err := f.fetchBars(ctx, "weekly", symbol, count)
	if err != nil {
		// Fallback: fetch enough daily bars and aggregate to weekly
		daily, dailyErr := f.fetchBars(ctx, "daily", symbol, count*7)
		if dailyErr != nil {
			return nil, fmt.Errorf("weekly fetch failed: %w; daily fallback also failed: %w", err, dailyErr)
		}
		bars = aggregateDailyToWeekly(daily, f.location())
		if len(bars) > count {
			bars = bars[len(bars)-count:]
		}
	}
	return bars, nil
}

func (f *RESTFetcher) fetchBars(ctx context.Context, period, symbol string, limit int) ([]model.Bar, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/%s?symbol=%s&limit=%d",
		f.BaseURL, period, url.QueryEscape(symbol), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var raw []restBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.Bar, 0, len(raw))
	for _, rb := range raw {
		if rb.Close == nil {
			continue
		}
		bars = append(bars, model.Bar{
			Time:   time.Unix(rb.Timestamp, 0).In(f.location()),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  *rb.Close,
			Volume: rb.Volume,
		})
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// aggregateDailyToWeekly converts daily bars into ISO-week bars, where
// weeks are counted on the exchange calendar in loc.
func aggregateDailyToWeekly(daily []model.Bar, loc *time.Location) []model.Bar {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.Bar
	week := daily[0]
	wy, ww := week.Time.In(loc).ISOWeek()

	for _, d := range daily[1:] {
		y, w := d.Time.In(loc).ISOWeek()
		if y != wy || w != ww {
			weekly = append(weekly, week)
			week = d
			wy, ww = y, w
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Close = d.Close
		week.Volume += d.Volume
	}
	return append(weekly, week)
}
