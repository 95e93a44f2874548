package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(DefaultURLConfig(srv.URL, srv.URL), zaptest.NewLogger(t))
}

func TestRPCs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/main/rpcs", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"1","success":true,"data":{"rpcs":[{"url":"https://a.example","ws":"wss://a.example","weight":1,"batch":true,"name":"A"}]}}`)
	})

	rpcs, err := c.RPCs(context.Background())
	require.NoError(t, err)
	require.Len(t, rpcs, 1)
	assert.Equal(t, "A", rpcs[0].Name)
	assert.Equal(t, "wss://a.example", rpcs[0].WS)
}

func TestChainTimeOffset(t *testing.T) {
	tests := map[string]struct {
		body string
		want int64
	}{
		"seconds to ms":  {body: `{"id":"1","success":true,"data":{"offset":1.5}}`, want: 1500},
		"missing offset": {body: `{"id":"1","success":true,"data":{}}`, want: 0},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			got, err := c.ChainTimeOffset(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorResponses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/main/version":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "upstream down")
		default:
			_, _ = io.WriteString(w, `{"id":"1","success":false,"msg":"rate limited"}`)
		}
	})

	_, err := c.AppVersion(context.Background())
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.Status)
	assert.Equal(t, "upstream down", httpErr.Body)

	_, err = c.AutoFee(context.Background())
	assert.ErrorIs(t, err, ErrUnsuccessful)
	assert.ErrorContains(t, err, "rate limited")
}

func TestLaunchpadConfigsAcceptsQuotedNumbers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/main/configs", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"1","success":true,"data":{"data":[{"key":{"pubKey":"6s1xP3hpbAfFoNtUNF8mfHsjr2Bd97JxFJRWLbL6aHuX","epoch":"812","curveType":0,"index":0,"migrateFee":"0","tradeFeeRate":2500,"maxShareFeeRate":"10000","minSupplyA":"10000000","maxLockRate":"300000","minSellRateA":"200000","minMigrateRateA":"200000","minFundRaisingB":"30000000000","mintB":"So11111111111111111111111111111111111111112"},"mintInfoB":{"address":"So11111111111111111111111111111111111111112","symbol":"WSOL","decimals":9}}]}}`)
	})

	cfgs, err := c.LaunchpadConfigs(context.Background())
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
	assert.Equal(t, "2500", cfgs[0].Key.TradeFeeRate.String())
	assert.Equal(t, "30000000000", cfgs[0].Key.MinFundRaisingB.String())
	assert.Equal(t, 9, cfgs[0].MintInfoB.Decimals)
}

func TestCreateMintInfoSendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/create/mint-info", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get(AuthHeader))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Birth", r.FormValue("name"))
		assert.Equal(t, "BRTH", r.FormValue("ticker"))
		assert.Equal(t, "cf-123", r.FormValue("cfToken"))
		assert.Equal(t, "amm", r.FormValue("migrateType"))
		assert.Equal(t, "1000", r.FormValue("supply"))
		assert.Equal(t, "https://t.me/x", r.FormValue("telegram"))
		_, hasSite := r.MultipartForm.Value["website"]
		assert.False(t, hasSite)

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "logo.png", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "png-bytes", string(data))

		_, _ = io.WriteString(w, `{"id":"1","success":true,"data":{"mint":"Mint1111"}}`)
	})

	mint, err := c.CreateMintInfo(context.Background(), "tok", MintForm{
		Name:     "Birth",
		Ticker:   "BRTH",
		Supply:   1000,
		CfToken:  "cf-123",
		Telegram: "https://t.me/x",
		File:     &File{Name: "logo.png", ContentType: "image/png", Data: strings.NewReader("png-bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mint1111", mint)
}

func TestCreateRandomMintOmitsCfToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/create/get-random-mint", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, ok := r.MultipartForm.Value["cfToken"]
		assert.False(t, ok)
		_, _ = io.WriteString(w, `{"id":"1","success":true,"data":{"mint":"Rnd1111","metadataLink":"https://ipfs.example/meta"}}`)
	})

	res, err := c.CreateRandomMint(context.Background(), "tok", MintForm{Name: "A", Ticker: "B", CfToken: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "Rnd1111", res.Mint)
	assert.Equal(t, "https://ipfs.example/meta", res.MetadataLink)
}

func TestSetURLs(t *testing.T) {
	c := NewClient(DefaultURLConfig("https://a", "https://b"), zaptest.NewLogger(t))
	u := c.URLs()
	u.BaseHost = "https://c"
	c.SetURLs(u)
	assert.Equal(t, "https://c", c.URLs().BaseHost)
	assert.Equal(t, "/main/rpcs", c.URLs().RPCs)
}
