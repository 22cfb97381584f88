package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"loveanalyzer/backend/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAIClient struct {
	reply   string
	err     error
	lastReq AIRequest
	calls   int
}

func (m *mockAIClient) GenerateContent(_ context.Context, req AIRequest) (string, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

type mockAuthClient struct {
	users      map[string]AuthUser
	signUpUser AuthUser
	signUpErr  error
	session    AuthSession
	signInErr  error
}

func (m *mockAuthClient) GetUser(_ context.Context, token string) (AuthUser, error) {
	user, ok := m.users[token]
	if !ok {
		return AuthUser{}, errors.New("invalid token")
	}
	user.Token = token
	return user, nil
}

func (m *mockAuthClient) SignUp(_ context.Context, _, _ string) (AuthUser, error) {
	if m.signUpErr != nil {
		return AuthUser{}, m.signUpErr
	}
	return m.signUpUser, nil
}

func (m *mockAuthClient) SignInWithPassword(_ context.Context, _, _ string) (AuthSession, error) {
	if m.signInErr != nil {
		return AuthSession{}, m.signInErr
	}
	return m.session, nil
}

type insertedAnalysis struct {
	UserID          string
	Role            string
	OriginalMessage string
	Analysis        AnalysisResult
}

type mockStore struct {
	inserted  []insertedAnalysis
	insertErr error

	updateRows    int64
	updateErr     error
	updateID      string
	updateUserID  string
	updateHistory []ConversationTurn

	listRecords []StoredAnalysis
	listErr     error
	listUserID  string
	listLimit   int
}

func (m *mockStore) InsertAnalysis(_ context.Context, userID, role, originalMessage string, analysis AnalysisResult) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, insertedAnalysis{
		UserID:          userID,
		Role:            role,
		OriginalMessage: originalMessage,
		Analysis:        analysis,
	})
	return nil
}

func (m *mockStore) UpdateChatHistory(_ context.Context, analysisID, userID string, history []ConversationTurn) (int64, error) {
	m.updateID = analysisID
	m.updateUserID = userID
	m.updateHistory = history
	if m.updateErr != nil {
		return 0, m.updateErr
	}
	return m.updateRows, nil
}

func (m *mockStore) ListByOwner(_ context.Context, userID string, limit int) ([]StoredAnalysis, error) {
	m.listUserID = userID
	m.listLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listRecords, nil
}

func newTestApp(ai *mockAIClient, auth *mockAuthClient, store *mockStore) *App {
	if ai == nil {
		ai = &mockAIClient{reply: "ok"}
	}
	if auth == nil {
		auth = &mockAuthClient{}
	}
	if store == nil {
		store = &mockStore{}
	}
	return &App{
		cfg: config.Config{
			AppName:     "Love Analyzer API",
			FrontendURL: "http://localhost:5173",
		},
		store: store,
		ai:    ai,
		auth:  auth,
	}
}

func performRequest(t *testing.T, app *App, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else if raw, ok := body.([]byte); ok {
		reader = bytes.NewReader(raw)
	} else {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	app.Router().ServeHTTP(recorder, request)
	return recorder
}

func decodeJSONBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var parsed map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode response body %q: %v", recorder.Body.String(), err)
	}
	return parsed
}

func assertStatus(t *testing.T, recorder *httptest.ResponseRecorder, want int) {
	t.Helper()
	if recorder.Code != want {
		t.Fatalf("expected status %d, got %d (body=%s)", want, recorder.Code, recorder.Body.String())
	}
}
