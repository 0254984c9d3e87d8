package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"bank-wallet/internal/config"
	"bank-wallet/internal/logging"
)

func memoryConfig(notBefore time.Duration) *config.Config {
	return &config.Config{
		ServerPort:         "0",
		Storage:            config.StorageMemory,
		DBDriver:           config.DriverPQ,
		AuthSecret:         "test-secret",
		AuthExpires:        2 * time.Hour,
		AuthNotBefore:      notBefore,
		BcryptCost:         4,
		CORSAllowedOrigins: []string{"https://app.example"},
	}
}

type ServerTestSuite struct {
	suite.Suite
	server *Server
	http   *httptest.Server
}

func (s *ServerTestSuite) SetupTest() {
	srv, err := NewServer(context.Background(), memoryConfig(0), logging.Discard())
	s.Require().NoError(err)
	s.server = srv
	s.http = httptest.NewServer(srv.Handler())
}

func (s *ServerTestSuite) TearDownTest() {
	s.http.Close()
	s.server.Stop(context.Background())
}

func (s *ServerTestSuite) call(method, path, token string, body interface{}) (int, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.http.URL+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.http.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var payload map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp.StatusCode, payload
}

func (s *ServerTestSuite) login(email string) string {
	status, _ := s.call(http.MethodPost, "/users/register", "", map[string]string{"email": email, "password": "P@ss1", "name": "A"})
	s.Require().Equal(http.StatusCreated, status)

	status, payload := s.call(http.MethodPost, "/users/login", "", map[string]string{"email": email, "password": "P@ss1"})
	s.Require().Equal(http.StatusOK, status)
	return payload["data"].(map[string]interface{})["token"].(string)
}

func (s *ServerTestSuite) balances(token string) (string, string) {
	status, payload := s.call(http.MethodGet, "/users/me", token, nil)
	s.Require().Equal(http.StatusOK, status)
	data := payload["data"].(map[string]interface{})
	return data["bank_balance"].(string), data["wallet_balance"].(string)
}

func (s *ServerTestSuite) TestHealth() {
	status, payload := s.call(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, status)
	s.Equal("healthy", payload["status"])
}

func (s *ServerTestSuite) TestScenario() {
	token := s.login("a@x.com")

	bank, wallet := s.balances(token)
	s.Equal("10000", bank)
	s.Equal("0", wallet)

	status, payload := s.call(http.MethodPut, "/users/send-to-wallet", token, map[string]int{"money": 12000})
	s.Equal(http.StatusExpectationFailed, status)
	s.Equal("insufficient_funds", payload["code"])

	status, _ = s.call(http.MethodPut, "/users/send-to-wallet", token, map[string]int{"money": 4000})
	s.Equal(http.StatusOK, status)
	bank, wallet = s.balances(token)
	s.Equal("6000", bank)
	s.Equal("4000", wallet)

	status, _ = s.call(http.MethodPut, "/users/send-to-bank", token, map[string]int{"money": 4000})
	s.Equal(http.StatusOK, status)
	bank, wallet = s.balances(token)
	s.Equal("10000", bank)
	s.Equal("0", wallet)
}

func (s *ServerTestSuite) TestConcurrentTransfers() {
	token := s.login("c@x.com")

	const n = 25
	var wg sync.WaitGroup
	statuses := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _ := s.call(http.MethodPut, "/users/send-to-wallet", token, map[string]int{"money": 400})
			statuses <- status
		}()
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		s.Equal(http.StatusOK, status)
	}
	bank, wallet := s.balances(token)
	s.Equal("0", bank)
	s.Equal("10000", wallet)
}

func (s *ServerTestSuite) TestCORSPreflight() {
	req, err := http.NewRequest(http.MethodOptions, s.http.URL+"/users/send-to-wallet", nil)
	s.Require().NoError(err)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	resp, err := s.http.Client().Do(req)
	s.Require().NoError(err)
	resp.Body.Close()

	s.Equal("https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestTokenActivationDelay(t *testing.T) {
	srv, err := NewServer(context.Background(), memoryConfig(time.Hour), logging.Discard())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	post := func(path, body string) *http.Response {
		resp, err := ts.Client().Post(ts.URL+path, "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		return resp
	}

	resp := post("/users/register", `{"email":"a@x.com","password":"P@ss1","name":"A"}`)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = post("/users/login", `{"email":"a@x.com","password":"P@ss1"}`)
	var login struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/users/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Data.Token)
	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "token_not_yet_valid", payload["code"])
}

func TestStartServer_ListensOnFreePort(t *testing.T) {
	srv, port, err := StartServer(context.Background(), memoryConfig(0), logging.Discard())
	require.NoError(t, err)
	defer srv.Stop(context.Background())

	assert.NotEqual(t, "0", port)
	resp, err := http.Get(srv.GetBaseURL() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
