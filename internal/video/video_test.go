package video

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionPostsRoom(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rooms", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var req createRoomRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(createRoomResponse{Name: req.Name})
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, APIKey: "key", TokenSecret: "secret"})
	require.NoError(t, err)

	id, err := c.CreateSession(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "Bearer key", gotAuth)
}

func TestCreateSessionFailsOnProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, TokenSecret: "secret"})
	require.NoError(t, err)

	_, err = c.CreateSession(context.Background())
	assert.ErrorIs(t, err, ErrSessionNotCreated)
}

func TestDeleteSession(t *testing.T) {
	var deleted []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		deleted = append(deleted, r.URL.Path)
		if r.URL.Path == "/rooms/gone" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Path == "/rooms/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, APIKey: "key", TokenSecret: "secret"})
	require.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, c.DeleteSession(ctx, "room-1"))
	assert.NoError(t, c.DeleteSession(ctx, "gone"))
	assert.Error(t, c.DeleteSession(ctx, "broken"))
	assert.Equal(t, []string{"/rooms/room-1", "/rooms/gone", "/rooms/broken"}, deleted)
}

func TestCreateSessionWithoutProviderNamesRoomLocally(t *testing.T) {
	c, err := New(Config{TokenSecret: "secret", LocalRooms: true})
	require.NoError(t, err)

	a, err := c.CreateSession(context.Background())
	require.NoError(t, err)
	b, err := c.CreateSession(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestIssueTokenRoundTrip(t *testing.T) {
	c, err := New(Config{TokenSecret: "secret", Issuer: "booking-service", LocalRooms: true})
	require.NoError(t, err)

	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token, err := c.IssueToken("room-1", "user-1", RoleHost, exp, map[string]string{"booking_id": "b1"})
	require.NoError(t, err)

	claims, err := parseToken(c, token)
	require.NoError(t, err)
	assert.Equal(t, "room-1", claims.Room)
	assert.Equal(t, RoleHost, claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "b1", claims.Metadata["booking_id"])
	assert.True(t, claims.ExpiresAt.Time.Equal(exp))
}

func TestIssuedTokenExpires(t *testing.T) {
	c, err := New(Config{TokenSecret: "secret", LocalRooms: true})
	require.NoError(t, err)

	token, err := c.IssueToken("room-1", "user-1", RoleGuest, time.Now().Add(-time.Minute), nil)
	require.NoError(t, err)

	_, err = parseToken(c, token)
	assert.Error(t, err)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(Config{LocalRooms: true})
	assert.Error(t, err)
}

func TestNewRequiresProviderOutsideLocal(t *testing.T) {
	_, err := New(Config{TokenSecret: "secret"})
	assert.Error(t, err)

	_, err = New(Config{TokenSecret: "secret", BaseURL: "  "})
	assert.Error(t, err)
}

func parseToken(c *Client, token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(c.issuer))
	if err != nil {
		return nil, err
	}
	return &claims, nil
}
