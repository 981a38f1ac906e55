package membership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client клиент сервиса членства
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента сервиса членства
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

// GetActive получает активное членство клиента
func (c *Client) GetActive(ctx context.Context, customerID string) (*Membership, error) {
	endpoint := fmt.Sprintf("%s/internal/memberships/active?customer=%s", c.baseURL, url.QueryEscape(customerID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrMembershipNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var m Membership
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if !m.Active {
		return nil, ErrMembershipNotFound
	}

	return &m, nil
}

// GetTierWithGracefulDegradation возвращает уровень членства клиента или nil
// При недоступности сервиса возвращает ErrServiceDegraded, бронирование продолжается без скидки
func (c *Client) GetTierWithGracefulDegradation(ctx context.Context, customerID string) (*string, error) {
	m, err := c.GetActive(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			c.log.Info("No active membership for customer=%s", customerID)
			return nil, nil
		}

		c.log.Error("Membership service unavailable, applying graceful degradation for customer=%s: %v", customerID, err)
		return nil, fmt.Errorf("%w: customer=%s, error=%v", ErrServiceDegraded, customerID, err)
	}

	c.log.Info("Resolved membership for customer=%s, tier=%s", customerID, m.Tier)
	return &m.Tier, nil
}
