// Package pricing talks to the Amazon Selling Partner API: current offer
// prices and fee estimates for the rows the engine extracts from supplier
// files.
package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/high-focus/sourcing-cli/internal/config"
)

// Client answers pricing questions for a marketplace catalog identifier.
// The boolean returns are false when the marketplace has no answer (no
// offers, no fee estimate); that is not an error.
type Client interface {
	CurrentPrice(ctx context.Context, asin string) (float64, bool, error)
	EstimateFees(ctx context.Context, asin string, price float64, fba bool) (float64, bool, error)
}

// SPAPI implements Client against the Selling Partner API with LWA
// refresh-token auth.
type SPAPI struct {
	cfg  config.SPAPIConfig
	http *http.Client
	lim  *rate.Limiter

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewSPAPI creates a rate-limited SP-API client.
func NewSPAPI(cfg config.SPAPIConfig) *SPAPI {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	return &SPAPI{
		cfg:  cfg,
		http: &http.Client{Timeout: 45 * time.Second},
		lim:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// lwaToken returns a cached LWA access token, refreshing it when it is
// within a minute of expiry. SP-API access tokens live for an hour but the
// cache is kept short so clock skew never bites.
func (c *SPAPI) lwaToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.cfg.RefreshToken},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", eris.Wrap(err, "pricing: build lwa request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "pricing: lwa token request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", eris.Errorf("pricing: lwa token error: %d %s", resp.StatusCode, body)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", eris.Wrap(err, "pricing: decode lwa token")
	}
	if tok.AccessToken == "" {
		return "", eris.New("pricing: lwa token response missing access_token")
	}

	ttl := time.Duration(tok.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = 50 * time.Second
	}
	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(ttl - time.Minute)
	return c.accessToken, nil
}

// request performs one signed SP-API call and decodes the JSON response.
func (c *SPAPI) request(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if err := c.lim.Wait(ctx); err != nil {
		return eris.Wrap(err, "pricing: rate limit wait")
	}

	token, err := c.lwaToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "pricing: marshal request body")
		}
		reader = bytes.NewReader(data)
	}

	u := c.cfg.Endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return eris.Wrap(err, "pricing: build request")
	}
	req.Header.Set("x-amz-access-token", token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "pricing: %s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return eris.Wrap(err, "pricing: read response")
	}

	if resp.StatusCode >= 400 {
		zap.L().Warn("pricing: sp-api error response",
			zap.Int("status", resp.StatusCode),
			zap.String("path", path),
		)
		return eris.Errorf("pricing: sp-api error: %d %s", resp.StatusCode, truncate(string(data), 1200))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "pricing: decode response")
	}
	return nil
}

// CurrentPrice returns the lowest landed (listing + shipping) new-condition
// offer price for the identifier, or found=false when there are no offers.
func (c *SPAPI) CurrentPrice(ctx context.Context, asin string) (float64, bool, error) {
	var out struct {
		Payload struct {
			Offers []struct {
				ListingPrice struct {
					Amount *float64 `json:"Amount"`
				} `json:"ListingPrice"`
				Shipping struct {
					Amount *float64 `json:"Amount"`
				} `json:"Shipping"`
			} `json:"Offers"`
		} `json:"payload"`
	}

	query := url.Values{
		"MarketplaceId": {c.cfg.MarketplaceID},
		"ItemCondition": {"New"},
	}
	path := fmt.Sprintf("/products/pricing/v0/items/%s/offers", url.PathEscape(asin))
	if err := c.request(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return 0, false, err
	}

	best := 0.0
	found := false
	for _, o := range out.Payload.Offers {
		if o.ListingPrice.Amount == nil {
			continue
		}
		landed := *o.ListingPrice.Amount
		if o.Shipping.Amount != nil {
			landed += *o.Shipping.Amount
		}
		if !found || landed < best {
			best = landed
			found = true
		}
	}
	if !found {
		return 0, false, nil
	}
	return round2(best), true, nil
}

// EstimateFees returns the total estimated marketplace fees for selling the
// identifier at the given price, or found=false when the API offers no
// estimate. When the total is absent it falls back to summing the fee
// detail list.
func (c *SPAPI) EstimateFees(ctx context.Context, asin string, price float64, fba bool) (float64, bool, error) {
	type money struct {
		CurrencyCode string  `json:"CurrencyCode"`
		Amount       float64 `json:"Amount"`
	}
	body := map[string]any{
		"FeesEstimateRequest": map[string]any{
			"MarketplaceId":     c.cfg.MarketplaceID,
			"IsAmazonFulfilled": fba,
			"PriceToEstimateFees": map[string]any{
				"ListingPrice": money{CurrencyCode: "USD", Amount: price},
			},
			"Identifier": fmt.Sprintf("hf-%s-%d", asin, time.Now().Unix()),
		},
	}

	var out struct {
		Payload struct {
			FeesEstimateResult struct {
				FeesEstimate struct {
					TotalFeesEstimate *struct {
						Amount float64 `json:"Amount"`
					} `json:"TotalFeesEstimate"`
					FeeDetailList []struct {
						FinalFee *struct {
							Amount float64 `json:"Amount"`
						} `json:"FinalFee"`
					} `json:"FeeDetailList"`
				} `json:"FeesEstimate"`
			} `json:"FeesEstimateResult"`
		} `json:"payload"`
	}

	path := fmt.Sprintf("/products/fees/v0/listings/%s/feesEstimate", url.PathEscape(asin))
	if err := c.request(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return 0, false, err
	}

	est := out.Payload.FeesEstimateResult.FeesEstimate
	if est.TotalFeesEstimate != nil {
		return round2(est.TotalFeesEstimate.Amount), true, nil
	}

	sum := 0.0
	for _, d := range est.FeeDetailList {
		if d.FinalFee != nil {
			sum += d.FinalFee.Amount
		}
	}
	if sum > 0 {
		return round2(sum), true, nil
	}
	return 0, false, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
