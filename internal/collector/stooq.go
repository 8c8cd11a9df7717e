package collector

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"RegimeSentinel/internal/model"
)

// StooqFetcher implements Fetcher using the Stooq daily-history CSV endpoint.
// It serves as the fallback data source when Yahoo is unreachable.
type StooqFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewStooqFetcher creates a new fetcher with optional proxy support.
// baseURL is overridable for testing; empty means the public endpoint.
func NewStooqFetcher(baseURL, proxyURL string) *StooqFetcher {
	if baseURL == "" {
		baseURL = "https://stooq.com"
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &StooqFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *StooqFetcher) Name() string { return "stooq" }

// stooqSymbol maps a plain US ticker to Stooq's convention (aapl -> aapl.us).
func stooqSymbol(symbol string) string {
	s := strings.ToLower(symbol)
	if !strings.Contains(s, ".") && !strings.HasPrefix(s, "^") {
		s += ".us"
	}
	return s
}

// FetchDailyCloses downloads the daily CSV history between start and now.
// CSV shape: Date,Open,High,Low,Close,Volume with an ISO date column.
func (f *StooqFetcher) FetchDailyCloses(symbol string, start time.Time) ([]model.OHLCV, error) {
	now := time.Now()
	endpoint := fmt.Sprintf("%s/q/d/l/?s=%s&i=d&d1=%s&d2=%s",
		f.BaseURL, url.QueryEscape(stooqSymbol(symbol)),
		start.Format("20060102"), now.Format("20060102"))

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stooq fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stooq: status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("stooq parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("stooq: no data returned for %s", symbol)
	}

	bars := make([]model.OHLCV, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		if len(rec) < 6 {
			continue
		}
		ts, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			continue
		}
		o, err1 := strconv.ParseFloat(rec[1], 64)
		h, err2 := strconv.ParseFloat(rec[2], 64)
		l, err3 := strconv.ParseFloat(rec[3], 64)
		c, err4 := strconv.ParseFloat(rec[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue // skip rows with missing quotes
		}
		v, _ := strconv.ParseFloat(rec[5], 64)
		bars = append(bars, model.OHLCV{Time: ts, Open: o, High: h, Low: l, Close: c, Volume: v})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("stooq: no parsable bars for %s", symbol)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
