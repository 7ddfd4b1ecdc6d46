package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// User is the subset of the user service's user representation this service
// needs. Inactive users must never be assigned work by automation.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	IsActive bool      `json:"is_active"`
}

// AuthData is the identity extracted from a validated token
type AuthData struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// UserClient defines the interface for calls to the user service
type UserClient interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*User, error)
	ValidateToken(ctx context.Context, token string) (*AuthData, error)
}

// MetricsRecorder records external API call metrics
type MetricsRecorder interface {
	RecordExternalAPIRequest(endpoint, status string, duration time.Duration)
	RecordExternalAPIError(endpoint, errorType string)
}

// userClientImpl is the HTTP implementation of UserClient
type userClientImpl struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    MetricsRecorder
}

// NewUserClient creates a new instance of UserClient. metrics may be nil.
func NewUserClient(baseURL string, timeout time.Duration, logger *zap.Logger, metrics MetricsRecorder) UserClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &userClientImpl{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

type userResponse struct {
	Data User `json:"data"`
}

type validateResponse struct {
	Data AuthData `json:"data"`
}

// GetUser fetches a user by ID from the user service
func (c *userClientImpl) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	url := fmt.Sprintf("%s/api/users/%s", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordError("get_user", "network")
		return nil, fmt.Errorf("failed to call user service: %w", err)
	}
	defer resp.Body.Close()
	c.record("get_user", fmt.Sprintf("%d", resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("User service returned non-OK status",
			zap.String("user_id", userID.String()),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("user service returned status %d", resp.StatusCode)
	}

	var body userResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.recordError("get_user", "decode")
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}
	return &body.Data, nil
}

// ValidateToken asks the user service to validate a bearer token and returns
// the identity it belongs to.
func (c *userClientImpl) ValidateToken(ctx context.Context, token string) (*AuthData, error) {
	url := fmt.Sprintf("%s/api/auth/validate", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create validate request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordError("validate_token", "network")
		return nil, fmt.Errorf("failed to call user service: %w", err)
	}
	defer resp.Body.Close()
	c.record("validate_token", fmt.Sprintf("%d", resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token validation returned status %d", resp.StatusCode)
	}

	var body validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.recordError("validate_token", "decode")
		return nil, fmt.Errorf("failed to decode validate response: %w", err)
	}
	return &body.Data, nil
}

func (c *userClientImpl) record(endpoint, status string, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordExternalAPIRequest(endpoint, status, duration)
	}
}

func (c *userClientImpl) recordError(endpoint, errorType string) {
	if c.metrics != nil {
		c.metrics.RecordExternalAPIError(endpoint, errorType)
	}
}
