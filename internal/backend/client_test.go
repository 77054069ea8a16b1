package backend

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/schedulr/linker/internal/pkg/testutil"
	"github.com/schedulr/linker/internal/providers"
)

func testClient(t *testing.T, rawURL string) *Client {
	t.Helper()
	u, err := url.Parse(rawURL)
	testutil.Ok(t, err)
	return NewClient(u)
}

func TestExchangeOAuth2Artifacts(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		gotAuth = req.Header.Get("Authorization")
		raw, _ := ioutil.ReadAll(req.Body)
		testutil.Ok(t, json.Unmarshal(raw, &gotBody))
		rw.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	err := client.Exchange(context.Background(), "/api/social/facebook/callback",
		&providers.Artifacts{Code: "abc123"}, "session-credential")
	testutil.Ok(t, err)

	testutil.Equal(t, "/api/social/facebook/callback", gotPath)
	testutil.Equal(t, "Bearer session-credential", gotAuth)
	testutil.Equal(t, map[string]string{"code": "abc123"}, gotBody)
}

func TestExchangeOAuth1Artifacts(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		raw, _ := ioutil.ReadAll(req.Body)
		testutil.Ok(t, json.Unmarshal(raw, &gotBody))
		rw.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	err := client.Exchange(context.Background(), "/oauth/x/callback",
		&providers.Artifacts{
			OAuthToken:       "tok",
			OAuthVerifier:    "ver",
			OAuthTokenSecret: "sec",
		}, "session-credential")
	testutil.Ok(t, err)

	testutil.Equal(t, "/oauth/x/callback", gotPath)
	testutil.Equal(t, map[string]string{
		"oauth_token":        "tok",
		"oauth_verifier":     "ver",
		"oauth_token_secret": "sec",
	}, gotBody)
}

func TestExchangeFailedCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		http.Error(rw, `{"error": "token store on fire"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	err := client.Exchange(context.Background(), "/oauth/youtube/callback",
		&providers.Artifacts{Code: "abc123"}, "session-credential")

	failed, ok := err.(*ExchangeFailedError)
	testutil.Assert(t, ok, "expected ExchangeFailedError, got %v", err)
	testutil.Equal(t, http.StatusBadGateway, failed.Status)
	testutil.Equal(t, "{\"error\": \"token store on fire\"}\n", string(failed.Body))
}

func TestExchangeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := testClient(t, srv.URL)
	err := client.Exchange(context.Background(), "/oauth/x/callback",
		&providers.Artifacts{Code: "abc123"}, "session-credential")

	_, ok := err.(*UnreachableError)
	testutil.Assert(t, ok, "expected UnreachableError, got %v", err)
}

func TestExchangeTimeoutResolvesToUnreachable(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		select {
		case <-block:
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	client.SetHTTPClient(&http.Client{Timeout: 50 * time.Millisecond})

	err := client.Exchange(context.Background(), "/oauth/x/callback",
		&providers.Artifacts{Code: "abc123"}, "session-credential")

	_, ok := err.(*UnreachableError)
	testutil.Assert(t, ok, "expected UnreachableError, got %v", err)
}
