package webnet

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogahub/ogalib"
	"github.com/ogahub/ogalib/job"
)

func newTestClient(t *testing.T, cfg Config, opts ...Option) (*Client, *job.Pool) {
	t.Helper()
	pool := job.NewPool()
	t.Cleanup(func() { pool.Close() })
	return New(cfg, pool, opts...), pool
}

func drainPool(t *testing.T, pool *job.Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, pool.Drain(ctx))
}

func TestClient_SendURL(t *testing.T) {
	t.Run("ok response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "ogalib/1.0", r.UserAgent())
			assert.Empty(t, r.Header.Get("Authorization"))
			io.WriteString(w, `{"hello":"world"}`)
		}))
		defer srv.Close()

		c, _ := newTestClient(t, DefaultConfig())
		res, ok := c.SendURL(context.Background(), srv.URL, nil)
		require.True(t, ok)
		require.Equal(t, int32(200), res.Find("statusCode").Int())
		require.Equal(t, "OK", res.Find("statusText").Str())
		require.Equal(t, `{"hello":"world"}`, res.Find("response").Str())
		require.False(t, res.Lookup("error").Ok())
	})

	t.Run("not found reports status and no response", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		c, _ := newTestClient(t, DefaultConfig())
		res, ok := c.SendURL(context.Background(), srv.URL, nil)
		require.False(t, ok)
		require.Equal(t, int32(404), res.Find("statusCode").Int())
		require.Equal(t, "HTTP status code: 404", res.Find("error").Str())
		require.False(t, res.Lookup("response").Ok())
	})

	t.Run("post with data and bearer", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			w.Write(body)
		}))
		defer srv.Close()

		c, _ := newTestClient(t, DefaultConfig())
		params := ogalib.New(ogalib.Obj{
			{Key: "method", Value: "POST"},
			{Key: "data", Value: "a=1&b=2"},
			{Key: "bearer", Value: "tok"},
		})
		res, ok := c.SendURL(context.Background(), srv.URL, params)
		require.True(t, ok)
		require.Equal(t, "a=1&b=2", res.Find("response").Str())
	})

	t.Run("content type and api key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		cfg := DefaultConfig()
		cfg.APIKey = "key"
		c, _ := newTestClient(t, cfg)
		params := ogalib.New(ogalib.Obj{
			{Key: "method", Value: "PUT"},
			{Key: "data", Value: "{}"},
			{Key: "contentType", Value: "application/json"},
			{Key: "usesAPIKey", Value: true},
		})
		res, ok := c.SendURL(context.Background(), srv.URL, params)
		require.True(t, ok)
		require.Equal(t, int32(201), res.Find("statusCode").Int())
		require.Equal(t, "", res.Find("response").Str())
	})

	t.Run("large body is read completely", func(t *testing.T) {
		want := strings.Repeat("0123456789abcdef", 64<<10)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, want)
		}))
		defer srv.Close()

		c, _ := newTestClient(t, DefaultConfig())
		res, ok := c.SendURL(context.Background(), srv.URL, nil)
		require.True(t, ok)
		require.Equal(t, len(want), len(res.Find("response").Str()))
		require.Equal(t, want, res.Find("response").Str())
	})

	t.Run("skip response keeps status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "ignored")
		}))
		defer srv.Close()

		c, _ := newTestClient(t, DefaultConfig())
		res, ok := c.SendURL(context.Background(), srv.URL, ogalib.New(ogalib.Obj{{Key: "skipResponse", Value: true}}))
		require.True(t, ok)
		require.Equal(t, int32(200), res.Find("statusCode").Int())
		require.Equal(t, "", res.Find("response").Str())
	})

	t.Run("stalled body trips receive timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Length", "100")
			io.WriteString(w, "partial")
			w.(http.Flusher).Flush()
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		cfg := DefaultConfig()
		cfg.ReceiveTimeout = 50 * time.Millisecond
		c, _ := newTestClient(t, cfg)
		res, ok := c.SendURL(context.Background(), srv.URL, nil)
		require.False(t, ok)
		require.Contains(t, res.Find("error").Str(), "receive timeout")
		require.False(t, res.Lookup("response").Ok())
	})

	t.Run("zero config reads streamed body without limit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "part1")
			w.(http.Flusher).Flush()
			time.Sleep(20 * time.Millisecond)
			io.WriteString(w, "part2")
		}))
		defer srv.Close()

		c, _ := newTestClient(t, Config{})
		res, ok := c.SendURL(context.Background(), srv.URL, nil)
		require.True(t, ok, res.String())
		require.Equal(t, "part1part2", res.Find("response").Str())
	})

	t.Run("empty url", func(t *testing.T) {
		c, _ := newTestClient(t, DefaultConfig())
		res, ok := c.SendURL(context.Background(), "", nil)
		require.False(t, ok)
		require.Equal(t, ErrEmptyURL.Error(), res.Find("error").Str())
		require.Equal(t, int32(0), res.Find("statusCode").Int())
	})

	t.Run("connection failure reports error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, _ := newTestClient(t, DefaultConfig())
		res, ok := c.SendURL(context.Background(), url, nil)
		require.False(t, ok)
		require.NotEmpty(t, res.Find("error").Str())
	})
}

func TestClient_TLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "secure")
	}))
	defer srv.Close()

	t.Run("unknown certificate fails", func(t *testing.T) {
		c, _ := newTestClient(t, DefaultConfig())
		res, ok := c.SendURL(context.Background(), srv.URL, nil)
		require.False(t, ok)
		require.Contains(t, res.Find("error").Str(), "certificate")
	})

	t.Run("ignoreSSLErrors param", func(t *testing.T) {
		c, _ := newTestClient(t, DefaultConfig())
		res, ok := c.SendURL(context.Background(), srv.URL, ogalib.New(ogalib.Obj{{Key: "ignoreSSLErrors", Value: true}}))
		require.True(t, ok)
		require.Equal(t, "secure", res.Find("response").Str())
	})

	t.Run("IgnoreSSLErrors config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.IgnoreSSLErrors = true
		c, _ := newTestClient(t, cfg)
		_, ok := c.SendURL(context.Background(), srv.URL, nil)
		require.True(t, ok)
	})

	t.Run("trusted tls config", func(t *testing.T) {
		tc := srv.Client().Transport.(*http.Transport).TLSClientConfig.Clone()
		c, _ := newTestClient(t, DefaultConfig(), WithTLSConfig(tc))
		_, ok := c.SendURL(context.Background(), srv.URL, nil)
		require.True(t, ok)
	})
}

func TestClient_SendURLAsync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.URL.Query().Get("echo"))
	}))
	defer srv.Close()

	c, pool := newTestClient(t, DefaultConfig())

	var got *ogalib.Value
	err := c.SendURLAsync(srv.URL+"/?echo=hi", nil, func(result *ogalib.Value) {
		got = result.Clone()
	})
	require.NoError(t, err)
	require.Nil(t, got)

	drainPool(t, pool)
	require.NotNil(t, got)
	require.Equal(t, "hi", got.Find("response").Str())

	require.NoError(t, pool.Close())
	require.ErrorIs(t, c.SendURLAsync(srv.URL, nil, nil), job.ErrClosed)
}
