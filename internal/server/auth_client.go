package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"loveanalyzer/backend/internal/config"
)

// AuthUser is the identity the auth service vouches for. Lifetime is one
// request; nothing is cached.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"-"`
}

type AuthSession struct {
	AccessToken string `json:"access_token"`
	User        AuthUser
}

type AuthClient interface {
	GetUser(ctx context.Context, token string) (AuthUser, error)
	SignUp(ctx context.Context, email, password string) (AuthUser, error)
	SignInWithPassword(ctx context.Context, email, password string) (AuthSession, error)
}

// SupabaseAuthClient proxies sign-up, sign-in and token verification to the
// Supabase GoTrue REST API.
type SupabaseAuthClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewSupabaseAuthClient(cfg config.Config) *SupabaseAuthClient {
	return &SupabaseAuthClient{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.SupabaseURL), "/"),
		apiKey:  strings.TrimSpace(cfg.SupabaseKey),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *SupabaseAuthClient) GetUser(ctx context.Context, token string) (AuthUser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return AuthUser{}, err
	}
	request.Header.Set("apikey", c.apiKey)
	request.Header.Set("Authorization", "Bearer "+token)

	body, err := c.do(request)
	if err != nil {
		return AuthUser{}, err
	}

	var user AuthUser
	if err := json.Unmarshal(body, &user); err != nil {
		return AuthUser{}, err
	}
	if strings.TrimSpace(user.ID) == "" {
		return AuthUser{}, errors.New("auth service returned no user")
	}
	user.Token = token
	return user, nil
}

func (c *SupabaseAuthClient) SignUp(ctx context.Context, email, password string) (AuthUser, error) {
	body, err := c.postJSON(ctx, "/auth/v1/signup", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return AuthUser{}, err
	}

	// With email confirmation on GoTrue answers with the bare user; with
	// autoconfirm it answers with a session wrapping the user.
	var parsed struct {
		ID    string    `json:"id"`
		Email string    `json:"email"`
		User  *AuthUser `json:"user"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return AuthUser{}, err
	}
	if parsed.User != nil {
		return *parsed.User, nil
	}
	return AuthUser{ID: parsed.ID, Email: parsed.Email}, nil
}

func (c *SupabaseAuthClient) SignInWithPassword(ctx context.Context, email, password string) (AuthSession, error) {
	body, err := c.postJSON(ctx, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return AuthSession{}, err
	}

	var session AuthSession
	if err := json.Unmarshal(body, &session); err != nil {
		return AuthSession{}, err
	}
	session.User.Token = session.AccessToken
	return session, nil
}

func (c *SupabaseAuthClient) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	bodyRaw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyRaw))
	if err != nil {
		return nil, err
	}
	request.Header.Set("apikey", c.apiKey)
	request.Header.Set("Content-Type", "application/json")
	return c.do(request)
}

func (c *SupabaseAuthClient) do(request *http.Request) ([]byte, error) {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, errors.New(authErrorMessage(body, response.StatusCode))
	}
	return body, nil
}

// authErrorMessage digs the human-readable message out of a GoTrue error
// body, which uses different envelopes depending on the endpoint.
func authErrorMessage(body []byte, statusCode int) string {
	var parsed struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, candidate := range []string{parsed.ErrorDescription, parsed.Msg, parsed.Message, parsed.Error} {
			if strings.TrimSpace(candidate) != "" {
				return strings.TrimSpace(candidate)
			}
		}
	}
	return fmt.Sprintf("auth service error (%d)", statusCode)
}

// LocalTokenVerifier verifies Supabase access tokens locally with the project
// JWT secret instead of a GoTrue round trip per request. Sign-up and sign-in
// still go to the auth service.
type LocalTokenVerifier struct {
	secret []byte
	next   AuthClient
}

func NewLocalTokenVerifier(secret string, next AuthClient) *LocalTokenVerifier {
	return &LocalTokenVerifier{secret: []byte(secret), next: next}
}

func (v *LocalTokenVerifier) GetUser(_ context.Context, token string) (AuthUser, error) {
	parsed, err := jwt.Parse(
		token,
		func(t *jwt.Token) (any, error) {
			if t.Method == nil || t.Method.Alg() != "HS256" {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return v.secret, nil
		},
		jwt.WithAudience("authenticated"),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return AuthUser{}, errors.New("invalid access token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return AuthUser{}, errors.New("invalid token payload")
	}
	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return AuthUser{}, errors.New("token subject missing")
	}
	email, _ := claims["email"].(string)

	return AuthUser{ID: sub, Email: email, Token: token}, nil
}

func (v *LocalTokenVerifier) SignUp(ctx context.Context, email, password string) (AuthUser, error) {
	return v.next.SignUp(ctx, email, password)
}

func (v *LocalTokenVerifier) SignInWithPassword(ctx context.Context, email, password string) (AuthSession, error) {
	return v.next.SignInWithPassword(ctx, email, password)
}
