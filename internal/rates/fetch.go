package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DatedEndpoint serves one rate table per calendar date.
	DatedEndpoint = "https://api.exchangerate.host"
	// LatestEndpoint serves the most recent rate table only.
	LatestEndpoint = "https://v6.exchangerate-api.com/v6"
)

// {"base":"USD","date":"2024-03-10","rates":{"UYU":39.12}}
type datedResponse struct {
	Rates map[string]json.Number `json:"rates"`
}

// {"result":"success","base_code":"USD","conversion_rates":{"UYU":39.12}}
type latestResponse struct {
	ConversionRates map[string]json.Number `json:"conversion_rates"`
}

// DatedFetcher queries {Endpoint}/{YYYY-MM-DD}?base=..&symbols=.. where the
// date comes from the resolution key (DD/MM/YYYY or YYYY-MM-DD).
type DatedFetcher struct {
	Client   *http.Client
	Endpoint string
	APIKey   string // sent as access_key when set
	Base     string
	Target   string
}

// FetchRate implements Fetcher.
func (f *DatedFetcher) FetchRate(ctx context.Context, key string) (decimal.Decimal, error) {
	date, err := keyDate(key)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	endpoint := f.Endpoint
	if endpoint == "" {
		endpoint = DatedEndpoint
	}
	u, err := url.Parse(strings.TrimRight(endpoint, "/") + "/" + date.Format("2006-01-02"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	q := u.Query()
	q.Set("base", f.Base)
	q.Set("symbols", f.Target)
	if f.APIKey != "" {
		q.Set("access_key", f.APIKey)
	}
	u.RawQuery = q.Encode()

	var resp datedResponse
	if err := getJSON(ctx, f.Client, u.String(), &resp); err != nil {
		return decimal.Zero, err
	}
	return pickRate(resp.Rates, f.Target)
}

// LatestFetcher queries {Endpoint}/{APIKey}/latest/{Base}. The rate does not
// depend on the key, so every key of a run resolves to the same value.
type LatestFetcher struct {
	Client   *http.Client
	Endpoint string
	APIKey   string
	Base     string
	Target   string
}

// FetchRate implements Fetcher.
func (f *LatestFetcher) FetchRate(ctx context.Context, _ string) (decimal.Decimal, error) {
	endpoint := f.Endpoint
	if endpoint == "" {
		endpoint = LatestEndpoint
	}
	u := fmt.Sprintf("%s/%s/latest/%s", strings.TrimRight(endpoint, "/"), url.PathEscape(f.APIKey), url.PathEscape(f.Base))

	var resp latestResponse
	if err := getJSON(ctx, f.Client, u, &resp); err != nil {
		return decimal.Zero, err
	}
	return pickRate(resp.ConversionRates, f.Target)
}

func getJSON(ctx context.Context, client *http.Client, u string, out any) error {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	rs, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer rs.Body.Close()

	if rs.StatusCode < 200 || rs.StatusCode > 299 {
		return fmt.Errorf("%w: status %s", ErrFetch, rs.Status)
	}
	body, err := io.ReadAll(rs.Body)
	if err != nil {
		return fmt.Errorf("%w: reading body: %w", ErrFetch, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding body: %w", ErrFetch, err)
	}
	return nil
}

func pickRate(rates map[string]json.Number, target string) (decimal.Decimal, error) {
	raw, ok := rates[strings.ToUpper(target)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no %s rate in response", ErrFetch, target)
	}
	d, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: rate %q: %w", ErrFetch, raw, err)
	}
	return d, nil
}

func keyDate(key string) (time.Time, error) {
	for _, layout := range []string{"02/01/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(key)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("resolution key %q is not a date", key)
}
