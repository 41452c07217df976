package webnet

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogahub/ogalib"
	"github.com/ogahub/ogalib/job"
)

var testCreds = Credentials{AccountID: "123", AuthorizationCode: "a/b c", IssuerID: 256}

func newLoginClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) (*Client, *job.Pool) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseAPI = srv.URL
	cfg.APIKey = "key"
	for _, m := range mutate {
		m(&cfg)
	}
	r, err := NewRegistry(StaticProvider("psn", testCreds))
	require.NoError(t, err)
	return newTestClient(t, cfg, WithRegistry(r))
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, body) }
}

func login(t *testing.T, c *Client, pool *job.Pool, network string) *ogalib.Value {
	t.Helper()
	var got *ogalib.Value
	c.Login(network, func(result *ogalib.Value) { got = result.Clone() })
	drainPool(t, pool)
	require.NotNil(t, got, "login callback did not run")
	return got
}

func TestClient_Login(t *testing.T) {
	t.Run("success stores session", func(t *testing.T) {
		c, pool := newLoginClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/Login/v1/", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "psn", q.Get("network"))
			assert.Equal(t, "123", q.Get("psnAccountId"))
			assert.Equal(t, "a/b c", q.Get("psnAuthorizationCode"))
			assert.Equal(t, "256", q.Get("psnAuthorizationCodeIssuerId"))
			assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
			io.WriteString(w, `{"resp":"ok","id":42,"token":9001}`)
		})

		got := login(t, c, pool, "psn")
		require.True(t, got.Equal(ogalib.New(ogalib.Obj{{Key: "success", Value: true}})), got.String())
		require.True(t, c.Session().LoggedIn())
		require.Equal(t, uint64(42), c.Session().UserID())
		require.Equal(t, uint64(9001), c.Session().Token())
		require.False(t, c.Session().InProgress())

		c.Logout()
		require.False(t, c.Session().LoggedIn())
	})

	t.Run("rejected login clears earlier session", func(t *testing.T) {
		answers := []string{
			`{"resp":"ok","id":42,"token":9001}`,
			`{"resp":"ok"}`,
		}
		var calls atomic.Int32
		c, pool := newLoginClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, answers[calls.Add(1)-1])
		})

		got := login(t, c, pool, "psn")
		require.True(t, got.Find("success").Bool(), got.String())
		require.True(t, c.Session().LoggedIn())

		got = login(t, c, pool, "psn")
		require.Equal(t, "Invalid user.", got.Find("error").Str())
		require.False(t, c.Session().LoggedIn())
		require.Zero(t, c.Session().UserID())
		require.Zero(t, c.Session().Token())
	})

	t.Run("large ids", func(t *testing.T) {
		c, pool := newLoginClient(t, respond(`{"resp":"ok","id":18446744073709551615,"token":4294967296}`))
		got := login(t, c, pool, "psn")
		require.True(t, got.Find("success").Bool(), got.String())
		require.Equal(t, uint64(18446744073709551615), c.Session().UserID())
		require.Equal(t, uint64(4294967296), c.Session().Token())
	})

	t.Run("double encoded request", func(t *testing.T) {
		c, pool := newLoginClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.URL.RawQuery)
			assert.Equal(t, "/Login/v1/?network=psn&psnAccountId=123&psnAuthorizationCode=a%2Fb+c&psnAuthorizationCodeIssuerId=256", r.URL.Path)
			io.WriteString(w, `{"resp":"ok","id":1,"token":2}`)
		}, func(cfg *Config) { cfg.EncodeURLRequests = true })

		got := login(t, c, pool, "psn")
		require.True(t, got.Find("success").Bool(), got.String())
	})

	errorCases := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name:    "http failure",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			want:    "HTTP status code: 500",
		},
		{
			name:    "service error",
			handler: respond(`{"error":"Account suspended."}`),
			want:    "Account suspended.",
		},
		{
			name:    "missing resp",
			handler: respond(`{"status":"ok"}`),
			want:    "Unknown response.",
		},
		{
			name:    "resp not ok",
			handler: respond(`{"resp":"denied","id":1,"token":2}`),
			want:    "Invalid user.",
		},
		{
			name:    "zero token",
			handler: respond(`{"resp":"ok","id":42,"token":0}`),
			want:    "Invalid user.",
		},
		{
			name:    "non numeric id",
			handler: respond(`{"resp":"ok","id":"42","token":7}`),
			want:    "Invalid user.",
		},
		{
			name:    "negative id",
			handler: respond(`{"resp":"ok","id":-42,"token":7}`),
			want:    "Invalid user.",
		},
		{
			name:    "empty body",
			handler: respond(``),
			want:    "ogalib json parse error, code 1: The document is empty.",
		},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			c, pool := newLoginClient(t, tc.handler)
			got := login(t, c, pool, "psn")
			require.Equal(t, tc.want, got.Find("error").Str(), got.String())
			require.False(t, got.Lookup("success").Ok())
			require.False(t, c.Session().LoggedIn())
			require.False(t, c.Session().InProgress())
		})
	}

	t.Run("malformed body reports parser error", func(t *testing.T) {
		c, pool := newLoginClient(t, respond(`{"resp":`))
		got := login(t, c, pool, "psn")
		require.Contains(t, got.Find("error").Str(), "ogalib json parse error, code ")
	})

	t.Run("unknown network is reported synchronously", func(t *testing.T) {
		c, _ := newLoginClient(t, respond(`{}`))
		var got *ogalib.Value
		c.Login("xbox", func(result *ogalib.Value) { got = result.Clone() })
		require.NotNil(t, got)
		require.Equal(t, "Unknown network xbox.", got.Find("error").Str())
		require.False(t, c.Session().InProgress())
	})

	t.Run("provider failure", func(t *testing.T) {
		c, pool := newLoginClient(t, respond(`{}`))
		require.NoError(t, Apply(c.Registry(), NewProvider("steam", func(ctx context.Context) (Credentials, error) {
			return Credentials{}, errors.New("no user signed in")
		})))

		got := login(t, c, pool, "steam")
		require.Equal(t, "Unable to request steam authorization.", got.Find("error").Str())
		require.False(t, c.Session().InProgress())
	})

	t.Run("second login while one is running", func(t *testing.T) {
		c, pool := newLoginClient(t, respond(`{"resp":"ok","id":1,"token":2}`))
		release := make(chan struct{})
		require.NoError(t, Apply(c.Registry(), NewProvider("slow", func(ctx context.Context) (Credentials, error) {
			<-release
			return testCreds, nil
		})))

		var first, second *ogalib.Value
		c.Login("slow", func(result *ogalib.Value) { first = result.Clone() })
		c.Login("psn", func(result *ogalib.Value) { second = result.Clone() })
		require.NotNil(t, second)
		require.Equal(t, "Login already in progress.", second.Find("error").Str())

		close(release)
		drainPool(t, pool)
		require.True(t, first.Find("success").Bool(), first.String())
	})
}

func TestClient_FinishLogin(t *testing.T) {
	c, _ := newTestClient(t, DefaultConfig())

	t.Run("missing response", func(t *testing.T) {
		got := c.finishLogin(ogalib.New(ogalib.Obj{{Key: "statusCode", Value: 200}}))
		require.Equal(t, "Could not find response.", got.Find("error").Str())
	})

	t.Run("transport error passes through", func(t *testing.T) {
		got := c.finishLogin(ogalib.New(ogalib.Obj{{Key: "error", Value: "dial tcp: refused"}}))
		require.Equal(t, "dial tcp: refused", got.Find("error").Str())
	})
}

func TestEncodeURL(t *testing.T) {
	require.Equal(t, "a%2Fb+c%26d%3De", EncodeURL("a/b c&d=e"))
	require.Equal(t, "plain", EncodeURL("plain"))
}
