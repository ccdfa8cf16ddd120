package shopify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *[]time.Duration) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var sleeps []time.Duration
	client := &Client{
		baseURL:           server.URL,
		accessToken:       "test-token",
		httpClient:        server.Client(),
		limiter:           rate.NewLimiter(rate.Inf, 1),
		maxRetries:        3,
		defaultRetryAfter: 2 * time.Second,
		retryMargin:       500 * time.Millisecond,
		sleep:             func(d time.Duration) { sleeps = append(sleeps, d) },
	}
	return client, &sleeps
}

func TestDo_RateLimitHonorsRetryAfter(t *testing.T) {
	attempts := 0
	client, sleeps := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "4.0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"product":{"id":42,"title":"x","body_html":""}}`))
	})

	product, err := client.GetProduct(context.Background(), 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if product.ID != 42 {
		t.Errorf("id = %d", product.ID)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want the throttled call reissued once", attempts)
	}
	if len(*sleeps) != 1 {
		t.Fatalf("sleeps = %v, want exactly one backoff", *sleeps)
	}
	// Must wait at least the platform's hint; the margin rides on top.
	if (*sleeps)[0] < 4*time.Second {
		t.Errorf("backoff %v is below the Retry-After hint", (*sleeps)[0])
	}
}

func TestDo_RateLimitExhaustionBounded(t *testing.T) {
	attempts := 0
	client, sleeps := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetProduct(context.Background(), 42)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want initial call plus 3 retries", attempts)
	}
	// Without a header the default (2s) plus margin applies.
	for _, d := range *sleeps {
		if d != 2*time.Second+500*time.Millisecond {
			t.Errorf("backoff = %v, want default plus margin", d)
		}
	}
}

func TestDo_ValidationRejectionIsTerminal(t *testing.T) {
	attempts := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":{"title":["can't be blank"]}}`))
	})

	_, err := client.CreateProduct(context.Background(), &Product{})
	if !errors.Is(err, ErrPlatformRejected) {
		t.Fatalf("err = %v, want ErrPlatformRejected", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, rejections must not be retried", attempts)
	}
}

func TestDo_NotFound(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetProduct(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFindByHandle_Empty(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[]}`))
	})

	product, err := client.FindByHandle(context.Background(), "prod-4711")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if product != nil {
		t.Errorf("product = %+v, want nil for an unknown handle", product)
	}
}

func TestRetryDelay(t *testing.T) {
	cases := []struct {
		header string
		want   time.Duration
	}{
		{"4.0", 4 * time.Second},
		{"1.5", 1500 * time.Millisecond},
		{"", 2 * time.Second},
		{"garbage", 2 * time.Second},
	}
	for _, c := range cases {
		if got := retryDelay(c.header, 2*time.Second); got != c.want {
			t.Errorf("retryDelay(%q) = %v, want %v", c.header, got, c.want)
		}
	}
}
