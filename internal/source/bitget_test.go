package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a test server and a BitgetAdapter pointed at it.
func setupTestServer(handler http.Handler) (*BitgetAdapter, *httptest.Server) {
	server := httptest.NewServer(handler)

	adapter := &BitgetAdapter{
		client:  resty.New().SetBaseURL(server.URL),
		apiKey:  "test_api_key",
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}

	return adapter, server
}

func TestBitgetFetchCandidates(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockResponse := `{
			"code": "00000",
			"msg": "success",
			"data": {
				"traderList": [
					{
						"traderId": "501492349424132770",
						"traderName": "ETH/USDT Citadel Grid",
						"traderPic": "https://example.com/eth.svg",
						"roi": "0.4628",
						"maxDrawdown": "0.045",
						"winRate": "0.98",
						"aum": "1245000",
						"tradeType": "SPOT"
					},
					{
						"traderId": "525202464857672250",
						"traderName": "ZIG/USDT Growth Bot",
						"roi": "1.3961",
						"maxDrawdown": "0.082",
						"winRate": "0.92",
						"aum": "850000",
						"tradeType": "SPOT"
					}
				]
			}
		}`

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, traderListEndpoint, r.URL.Path)
			assert.Equal(t, "test_api_key", r.Header.Get("ACCESS-KEY"))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(mockResponse))
		})

		adapter, server := setupTestServer(handler)
		defer server.Close()

		// Act
		candidates, err := adapter.FetchCandidates(context.Background())

		// Assert
		assert.NoError(t, err)
		assert.Len(t, candidates, 2)
		assert.Equal(t, "BITGET", candidates[0].ExchangeName)
		assert.Equal(t, "501492349424132770", candidates[0].ExchangeUID)
		assert.Equal(t, 0.4628, candidates[0].ROI90d)
		assert.Equal(t, 0.045, candidates[0].MaxDrawdown)
		assert.Equal(t, "https://www.bitget.com/copy-trading/trader/525202464857672250", candidates[1].ProfileURL)
	})

	t.Run("EmptyList", func(t *testing.T) {
		// Zero candidates is a valid adapter response; deciding what it
		// means is the synchronizer's call.
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"code": "00000", "msg": "success", "data": {"traderList": []}}`))
		})

		adapter, server := setupTestServer(handler)
		defer server.Close()

		candidates, err := adapter.FetchCandidates(context.Background())

		assert.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("ProviderErrorCode", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"code": "40037", "msg": "apikey does not exist"}`))
		})

		adapter, server := setupTestServer(handler)
		defer server.Close()

		candidates, err := adapter.FetchCandidates(context.Background())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "40037")
		assert.Nil(t, candidates)
	})

	t.Run("ClientErrorNotRetried", func(t *testing.T) {
		calls := 0
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"code": "40018", "msg": "forbidden"}`))
		})

		adapter, server := setupTestServer(handler)
		defer server.Close()

		_, err := adapter.FetchCandidates(context.Background())

		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("MalformedNumericParsesToZero", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"code": "00000", "data": {"traderList": [
				{"traderId": "7", "traderName": "Glitchy", "roi": "n/a", "maxDrawdown": "0.05", "winRate": "", "aum": "100"}
			]}}`))
		})

		adapter, server := setupTestServer(handler)
		defer server.Close()

		candidates, err := adapter.FetchCandidates(context.Background())

		assert.NoError(t, err)
		assert.Len(t, candidates, 1)
		assert.Equal(t, 0.0, candidates[0].ROI90d)
		assert.Equal(t, 0.0, candidates[0].WinRate)
		assert.Equal(t, 0.05, candidates[0].MaxDrawdown)
	})
}

func TestStaticAdapter(t *testing.T) {
	adapter := NewStaticAdapter()

	candidates, err := adapter.FetchCandidates(context.Background())

	assert.NoError(t, err)
	assert.Len(t, candidates, 3)
	for _, c := range candidates {
		assert.NotEmpty(t, c.ExchangeName)
		assert.NotEmpty(t, c.ExchangeUID)
		assert.NotEmpty(t, c.Nickname)
		assert.Equal(t, "BITGET", c.ExchangeName)
	}
}
