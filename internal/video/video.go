// Package video talks to the video-conferencing provider: it opens rooms
// through the provider's REST API and signs the join tokens participants
// present to it.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

var ErrSessionNotCreated = errors.New("video: session not created")

type Config struct {
	BaseURL     string
	APIKey      string
	TokenSecret string
	Issuer      string
	Timeout     time.Duration
	// LocalRooms permits an empty BaseURL; rooms are then named locally.
	// Only local development runs this way.
	LocalRooms bool
}

// Client creates rooms and issues tokens.
type Client struct {
	baseURL    string
	apiKey     string
	secret     []byte
	issuer     string
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.TokenSecret == "" {
		return nil, errors.New("video: token secret required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" && !cfg.LocalRooms {
		return nil, errors.New("video: provider base url required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		secret:     []byte(cfg.TokenSecret),
		issuer:     cfg.Issuer,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type createRoomRequest struct {
	Name string `json:"name"`
}

type createRoomResponse struct {
	Name string `json:"name"`
}

// CreateSession opens a room and returns its identifier. Any transport error
// or non-2xx answer is returned as is, callers decide what to roll back.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	const op = "video.Client.CreateSession"

	name := uuid.NewString()
	if c.baseURL == "" {
		return name, nil
	}

	body, err := json.Marshal(createRoomRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rooms", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%s: status %d: %s: %w", op, resp.StatusCode, strings.TrimSpace(string(msg)), ErrSessionNotCreated)
	}

	var room createRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return "", fmt.Errorf("%s: decode: %w", op, err)
	}
	if room.Name == "" {
		return "", fmt.Errorf("%s: empty room name: %w", op, ErrSessionNotCreated)
	}

	return room.Name, nil
}

// DeleteSession closes a room opened by CreateSession. A room the provider no
// longer knows counts as deleted.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	const op = "video.Client.DeleteSession"

	if c.baseURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/rooms/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: status %d", op, resp.StatusCode)
	}

	return nil
}

type Claims struct {
	Room     string            `json:"room"`
	Role     Role              `json:"role"`
	Metadata map[string]string `json:"metadata,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs a join token for userID valid until expiresAt.
func (c *Client) IssueToken(sessionID, userID string, role Role, expiresAt time.Time, metadata map[string]string) (string, error) {
	const op = "video.Client.IssueToken"

	now := time.Now()
	claims := Claims{
		Room:     sessionID,
		Role:     role,
		Metadata: metadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}
