package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"wallet_dashboard/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const poolSharesBody = `{"data":{"poolShares":[
	{"balance":"10","poolId":{"id":"0xpool1","totalShares":"100","tokens":[
		{"address":"0xAAAA","symbol":"WETH","name":"Wrapped Ether","decimals":18,"balance":"1000"},
		{"address":"0xbbbb","symbol":"BAL","name":"Balancer","balance":"0"}
	]}},
	{"balance":"5","poolId":{"id":"0xpool2","totalShares":"0","tokens":[
		{"address":"0xcccc","symbol":"X","name":"X","decimals":18,"balance":"10"}
	]}},
	{"balance":"1"}
]}}`

func newTestTheGraph(t *testing.T, h http.HandlerFunc, prices fakePrices) *TheGraphClient {
	srv := newUpstream(t, h)
	return NewTheGraphClient(newTestTransport(entity.ProviderTheGraph),
		map[string]string{"ethereum": srv.URL + "/eth", "Polygon": srv.URL + "/polygon"},
		"", "Balancer", newTestRegistry(), prices, zap.NewNop())
}

func TestTheGraphPoolShareBalances(t *testing.T) {
	c := newTestTheGraph(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "0x000000000000000000000000000000000000dead", gjson.GetBytes(body, "variables.address").String())
		if r.URL.Path == "/polygon" {
			writeJSON(w, http.StatusOK, `{"errors":[{"message":"indexing error"}]}`)
			return
		}
		writeJSON(w, http.StatusOK, poolSharesBody)
	}, fakePrices{tokens: map[string]float64{"0xaaaa": 2}})

	tokens, err := c.FetchBalances(context.Background(), testWallet, []string{"ethereum", "polygon", "bsc"})
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	weth := tokens[0]
	assert.Equal(t, 100.0, weth.Balance)
	assert.Equal(t, 200.0, weth.Value)
	assert.Equal(t, "Balancer", weth.Protocol)
	assert.Equal(t, "0xpool1", weth.PoolID)
	assert.Equal(t, "Ethereum", weth.Network)
	assert.Equal(t, entity.TokenTypeCryptocurrency, weth.Type)
}

func TestTheGraphPositions(t *testing.T) {
	c := newTestTheGraph(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, poolSharesBody)
	}, fakePrices{})

	positions, err := c.FetchPositions(context.Background(), testWallet, []string{"ethereum"})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, entity.DefiPosition{
		Protocol: "Balancer",
		PoolID:   "0xpool1",
		Name:     "Wrapped Ether",
		Symbol:   "WETH",
		Address:  "0xaaaa",
		Network:  "Ethereum",
		Balance:  100,
		Value:    0,
	}, positions[0])
}

func TestTheGraphUnsupportedNetworks(t *testing.T) {
	c := newTestTheGraph(t, func(w http.ResponseWriter, r *http.Request) {}, fakePrices{})
	_, err := c.FetchBalances(context.Background(), testWallet, []string{"bsc", "optimism"})
	assert.True(t, errors.Is(err, entity.ErrNoSupportedNetworks))
}

func TestShareRatio(t *testing.T) {
	r, ok := shareRatio("10", "100")
	require.True(t, ok)
	assert.Equal(t, "0.1", r.String())

	_, ok = shareRatio("10", "0")
	assert.False(t, ok)
	_, ok = shareRatio("x", "10")
	assert.False(t, ok)
}
