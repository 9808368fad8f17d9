package httpinterface_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/application/marketmaker"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/acl"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/chain"
	chaininmemory "github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/chain/inmemory"
	pubsubinfra "github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/pubsub"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/storage/db/inmemory"
	httpinterface "github.com/tdex-network/tdex-bondingcurve/internal/interfaces/http"
	"github.com/tdex-network/tdex-bondingcurve/pkg/mmabi"
	"gopkg.in/macaroon-bakery.v2/bakery"
)

var (
	ctx      = context.Background()
	secret   = []byte("testsecret")
	deployer = common.HexToAddress("0x00000000000000000000000000000000000000d0")
	admin    = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

type testEnv struct {
	server *httptest.Server
	dai    common.Address
	token  common.Address
}

func newTestEnv(t *testing.T) *testEnv {
	repoManager := inmemory.NewRepoManager()
	host := chain.NewHost(chaininmemory.NewStore(), deployer)
	deployment, err := host.Deploy(ctx, []string{"DAI"})
	require.NoError(t, err)

	perms := make([]acl.Permission, 0)
	for _, op := range acl.AdminOps() {
		perms = append(perms, acl.Permission{Account: admin, Op: op})
	}
	perms = append(perms, acl.Permission{
		Account: alice,
		Op: bakery.Op{
			Entity: domain.MarketMakerEntity, Action: domain.MakeBuyOrderRole,
		},
	}, acl.Permission{
		Account: alice,
		Op: bakery.Op{
			Entity: domain.MarketMakerEntity, Action: domain.MakeSellOrderRole,
		},
	})
	a, err := acl.NewACL(perms...)
	require.NoError(t, err)

	ps, err := pubsubinfra.NewService(pubsubinfra.NewInMemoryStore(), 0)
	require.NoError(t, err)
	t.Cleanup(ps.Close)

	mmSvc, err := marketmaker.NewService(repoManager, host, a, ps)
	require.NoError(t, err)
	webhookSvc, err := pubsub.NewService(ps, a)
	require.NoError(t, err)

	err = mmSvc.Initialize(ctx, marketmaker.InitArgs{
		TokenManager: deployment.TokenManager,
		Formula:      deployment.Formula,
		Reserve:      deployment.Reserve,
		Beneficiary:  admin,
		BuyFeePct:    uint256.NewInt(0),
		SellFeePct:   uint256.NewInt(0),
	})
	require.NoError(t, err)

	handler, err := httpinterface.NewHandler(httpinterface.ServiceOpts{
		JWTSecret:       secret,
		OrdersPerSecond: 100,
		MarketMakerSvc:  mmSvc,
		WebhookSvc:      webhookSvc,
		ACL:             a,
		Ledger:          host,
		Faucet:          chain.NewFaucet(host, nil),
		Registry:        prometheus.NewRegistry(),
	})
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	env := &testEnv{server, deployment.Collaterals["DAI"], deployment.Token}
	env.mustDo(t, http.MethodPost, "/v1/collaterals", admin, httpinterface.CollateralRequest{
		Collateral:     env.dai.Hex(),
		VirtualSupply:  "100000000000000000000000",
		VirtualBalance: "10000000000000000000000",
		ReserveRatio:   100000,
	}, nil)
	return env
}

func token(t *testing.T, account common.Address) string {
	tok, err := httpinterface.IssueToken(secret, account, time.Minute)
	require.NoError(t, err)
	return tok
}

// do sends the request as caller, anonymously if caller is the zero address.
func (e *testEnv) do(
	t *testing.T, method, path string, caller common.Address, body interface{},
) (int, []byte) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if caller != (common.Address{}) {
		req.Header.Set("Authorization", "Bearer "+token(t, caller))
	}

	res, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, resBody
}

func (e *testEnv) mustDo(
	t *testing.T, method, path string, caller common.Address, body, res interface{},
) {
	status, resBody := e.do(t, method, path, caller, body)
	require.Less(t, status, 300, string(resBody))
	if res != nil {
		require.NoError(t, json.Unmarshal(resBody, res))
	}
}

func (e *testEnv) requireError(
	t *testing.T, method, path string, caller common.Address, body interface{},
	expectedStatus int, expectedCode string,
) {
	status, resBody := e.do(t, method, path, caller, body)
	var apiErr httpinterface.Error
	require.NoError(t, json.Unmarshal(resBody, &apiErr), string(resBody))
	require.Equal(t, expectedStatus, status, apiErr.Message)
	require.Equal(t, expectedCode, apiErr.Code, apiErr.Message)
}

func TestQueries(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	var info httpinterface.InfoResponse
	env.mustDo(t, http.MethodGet, "/v1/info", common.Address{}, nil, &info)
	require.True(t, info.IsOpen)
	require.False(t, info.Gated)
	require.Equal(t, admin.Hex(), info.Beneficiary)
	require.Equal(t, env.token.Hex(), info.Token)

	var collaterals []httpinterface.CollateralResponse
	env.mustDo(t, http.MethodGet, "/v1/collaterals", common.Address{}, nil, &collaterals)
	require.Len(t, collaterals, 1)
	require.Equal(t, env.dai.Hex(), collaterals[0].Collateral)
	require.Equal(t, uint32(100000), collaterals[0].ReserveRatio)

	var unknown httpinterface.CollateralResponse
	env.mustDo(t, http.MethodGet, "/v1/collaterals/"+alice.Hex(), common.Address{}, nil, &unknown)
	require.False(t, unknown.Whitelisted)
	require.Equal(t, "0", unknown.VirtualSupply)

	var price httpinterface.PriceResponse
	env.mustDo(t, http.MethodGet, "/v1/collaterals/"+env.dai.Hex()+"/price", common.Address{}, nil, &price)
	require.Equal(t, "1000000", price.PricePPM)

	var preview httpinterface.OrderResponse
	env.mustDo(
		t, http.MethodGet,
		"/v1/collaterals/"+env.dai.Hex()+"/preview/buy?amount=900000000000000000",
		common.Address{}, nil, &preview,
	)
	require.Equal(t, "899963552077514442", preview.ReturnAmount)
}

func TestOrders(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	deposit := "900000000000000000"

	env.mustDo(t, http.MethodPost, "/v1/faucet", alice, httpinterface.FaucetRequest{
		Asset: env.dai.Hex(), Amount: "1000000000000000000",
	}, nil)

	var bought httpinterface.OrderResponse
	env.mustDo(t, http.MethodPost, "/v1/orders/buy", alice, httpinterface.BuyOrderRequest{
		Collateral:    env.dai.Hex(),
		DepositAmount: deposit,
	}, &bought)
	require.Equal(t, alice.Hex(), bought.Trader)
	require.Equal(t, "899963552077514442", bought.ReturnAmount)
	require.Equal(t, "0", bought.Fee)

	var balance httpinterface.BalanceResponse
	env.mustDo(
		t, http.MethodGet, "/v1/balances/"+alice.Hex()+"?asset="+env.token.Hex(),
		common.Address{}, nil, &balance,
	)
	require.Equal(t, bought.ReturnAmount, balance.Balance)

	var sold httpinterface.OrderResponse
	env.mustDo(t, http.MethodPost, "/v1/orders/sell", alice, httpinterface.SellOrderRequest{
		Collateral: env.dai.Hex(),
		Amount:     bought.ReturnAmount,
	}, &sold)
	require.Equal(t, "899999999999999999", sold.ReturnAmount)

	env.mustDo(
		t, http.MethodGet, "/v1/balances/"+alice.Hex()+"?asset="+env.dai.Hex(),
		common.Address{}, nil, &balance,
	)
	require.Equal(t, "999999999999999999", balance.Balance)
}

func TestApproveAndCall(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	amount := uint256.NewInt(900_000_000_000_000_000)

	env.mustDo(t, http.MethodPost, "/v1/faucet", alice, httpinterface.FaucetRequest{
		Asset: env.dai.Hex(), Amount: amount.Dec(),
	}, nil)

	data, err := mmabi.PackMakeBuyOrder(mmabi.Order{
		Trader:     alice,
		Collateral: env.dai,
		Amount:     amount,
		MinReturn:  uint256.NewInt(0),
	})
	require.NoError(t, err)

	var bought httpinterface.OrderResponse
	env.mustDo(t, http.MethodPost, "/v1/orders/approve-and-call", alice,
		httpinterface.ApproveAndCallRequest{
			Token:  env.dai.Hex(),
			Amount: amount.Dec(),
			Data:   "0x" + hex.EncodeToString(data),
		}, &bought)
	require.Equal(t, "899963552077514442", bought.ReturnAmount)

	// bob approves on behalf of alice.
	env.requireError(t, http.MethodPost, "/v1/orders/approve-and-call", bob,
		httpinterface.ApproveAndCallRequest{
			Token:  env.dai.Hex(),
			Amount: amount.Dec(),
			Data:   hex.EncodeToString(data),
		}, http.StatusBadRequest, "MM_BUYER_NOT_FROM")
}

func TestFailingRequests(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	dai := env.dai.Hex()

	tests := []struct {
		name           string
		method         string
		path           string
		caller         common.Address
		body           interface{}
		expectedStatus int
		expectedCode   string
	}{
		{
			"anonymous caller", http.MethodPost, "/v1/open", common.Address{}, nil,
			http.StatusUnauthorized, "UNAUTHENTICATED",
		},
		{
			"unauthorized caller", http.MethodPost, "/v1/open", alice, nil,
			http.StatusForbidden, "APP_AUTH_FAILED",
		},
		{
			"already open", http.MethodPost, "/v1/open", admin, nil,
			http.StatusConflict, "MM_ALREADY_OPEN",
		},
		{
			"already whitelisted", http.MethodPost, "/v1/collaterals", admin,
			httpinterface.CollateralRequest{Collateral: dai, ReserveRatio: 1},
			http.StatusConflict, "MM_COLLATERAL_ALREADY_WHITELISTED",
		},
		{
			"invalid reserve ratio", http.MethodPut, "/v1/collaterals/" + dai, admin,
			httpinterface.CollateralRequest{ReserveRatio: 1_000_001},
			http.StatusBadRequest, "MM_INVALID_RESERVE_RATIO",
		},
		{
			"invalid fee", http.MethodPut, "/v1/fees", admin,
			httpinterface.FeesRequest{BuyFeePct: "1000000000000000000", SellFeePct: "0"},
			http.StatusBadRequest, "MM_INVALID_PERCENTAGE",
		},
		{
			"null beneficiary", http.MethodPut, "/v1/beneficiary", admin,
			httpinterface.BeneficiaryRequest{Beneficiary: common.Address{}.Hex()},
			http.StatusBadRequest, "MM_INVALID_BENEFICIARY",
		},
		{
			"formula not a contract", http.MethodPut, "/v1/formula", admin,
			httpinterface.FormulaRequest{Formula: bob.Hex()},
			http.StatusBadRequest, "MM_ADDRESS_NOT_CONTRACT",
		},
		{
			"sell zero", http.MethodPost, "/v1/orders/sell", alice,
			httpinterface.SellOrderRequest{Collateral: dai, Amount: "0"},
			http.StatusBadRequest, "MM_INVALID_BOND_AMOUNT",
		},
		{
			"buy unknown collateral", http.MethodPost, "/v1/orders/buy", alice,
			httpinterface.BuyOrderRequest{Collateral: bob.Hex(), DepositAmount: "1"},
			http.StatusBadRequest, "MM_COLLATERAL_NOT_WHITELISTED",
		},
		{
			"buy without funds", http.MethodPost, "/v1/orders/buy", alice,
			httpinterface.BuyOrderRequest{Collateral: dai, DepositAmount: "1"},
			http.StatusConflict, "LEDGER_INSUFFICIENT_BALANCE",
		},
		{
			"buy without permission", http.MethodPost, "/v1/orders/buy", bob,
			httpinterface.BuyOrderRequest{Collateral: dai, DepositAmount: "1"},
			http.StatusForbidden, "APP_AUTH_FAILED",
		},
		{
			"invalid amount", http.MethodPost, "/v1/orders/buy", alice,
			httpinterface.BuyOrderRequest{Collateral: dai, DepositAmount: "-1"},
			http.StatusBadRequest, "INVALID_REQUEST",
		},
		{
			"invalid address", http.MethodGet, "/v1/collaterals/notanaddress", alice, nil,
			http.StatusBadRequest, "INVALID_REQUEST",
		},
		{
			"invalid preview side", http.MethodGet,
			"/v1/collaterals/" + dai + "/preview/hold?amount=1", alice, nil,
			http.StatusBadRequest, "INVALID_REQUEST",
		},
		{
			"faucet bonded token", http.MethodPost, "/v1/faucet", alice,
			httpinterface.FaucetRequest{Asset: env.token.Hex(), Amount: "1"},
			http.StatusBadRequest, "FAUCET_DENIED",
		},
		{
			"issue token without permission", http.MethodPost, "/v1/tokens", alice,
			httpinterface.TokenRequest{Account: alice.Hex()},
			http.StatusForbidden, "APP_AUTH_FAILED",
		},
		{
			"unknown path", http.MethodGet, "/v1/unknown", alice, nil,
			http.StatusNotFound, "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			env.requireError(
				t, tt.method, tt.path, tt.caller, tt.body,
				tt.expectedStatus, tt.expectedCode,
			)
		})
	}
}

func TestInvalidToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	forged, err := httpinterface.IssueToken([]byte("wrongsecret"), admin, 0)
	require.NoError(t, err)
	valid, err := httpinterface.IssueToken(secret, admin, time.Minute)
	require.NoError(t, err)

	for _, header := range []string{
		"Bearer " + forged, "Basic dXNlcjpwd2Q=", "Bearer " + valid + "x",
	} {
		req, err := http.NewRequest(http.MethodPost, env.server.URL+"/v1/open", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", header)

		res, err := env.server.Client().Do(req)
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, http.StatusUnauthorized, res.StatusCode, header)
	}
}

func TestPermissions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	buyPerm := httpinterface.PermissionRequest{
		Account: bob.Hex(),
		Entity:  domain.MarketMakerEntity,
		Action:  domain.MakeBuyOrderRole,
	}

	env.requireError(t, http.MethodPost, "/v1/permissions", alice, buyPerm,
		http.StatusForbidden, "APP_AUTH_FAILED")
	env.mustDo(t, http.MethodPost, "/v1/permissions", admin, buyPerm, nil)

	var perms []httpinterface.PermissionResponse
	env.mustDo(t, http.MethodGet, "/v1/permissions/"+bob.Hex(), common.Address{}, nil, &perms)
	require.Equal(t, []httpinterface.PermissionResponse{
		{domain.MarketMakerEntity, domain.MakeBuyOrderRole},
	}, perms)

	var tok httpinterface.TokenResponse
	env.mustDo(t, http.MethodPost, "/v1/tokens", admin, httpinterface.TokenRequest{
		Account: bob.Hex(), TTLSeconds: 60,
	}, &tok)
	require.NotEmpty(t, tok.Token)

	env.mustDo(t, http.MethodDelete, "/v1/permissions", admin, buyPerm, nil)
	env.mustDo(t, http.MethodGet, "/v1/permissions/"+bob.Hex(), common.Address{}, nil, &perms)
	require.Empty(t, perms)

	env.requireError(t, http.MethodPost, "/v1/permissions", admin,
		httpinterface.PermissionRequest{
			Account: bob.Hex(), Entity: domain.MarketMakerEntity, Action: "MINT_ROLE",
		}, http.StatusBadRequest, "ACL_INVALID_PERMISSION")
}

func TestWebhooks(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	var id httpinterface.IDResponse
	env.mustDo(t, http.MethodPost, "/v1/webhooks", admin, httpinterface.WebhookRequest{
		Event:    string(domain.EventMakeBuyOrder),
		Endpoint: "http://localhost:9999/hook",
	}, &id)
	require.NotEmpty(t, id.ID)

	var hooks []pubsub.WebhookInfo
	env.mustDo(t, http.MethodGet, "/v1/webhooks", admin, nil, &hooks)
	require.Len(t, hooks, 1)
	require.Equal(t, id.ID, hooks[0].ID)

	env.requireError(t, http.MethodPost, "/v1/webhooks", admin,
		httpinterface.WebhookRequest{Event: "Unknown", Endpoint: "http://localhost"},
		http.StatusBadRequest, "WEBHOOK_INVALID_EVENT")

	env.mustDo(t, http.MethodDelete, "/v1/webhooks/"+id.ID, admin, nil, nil)
	env.requireError(t, http.MethodDelete, "/v1/webhooks/"+id.ID, admin, nil,
		http.StatusNotFound, "WEBHOOK_NOT_FOUND")
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.mustDo(t, http.MethodGet, "/v1/info", common.Address{}, nil, nil)

	status, body := env.do(t, http.MethodGet, "/metrics", common.Address{}, nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(body), "bonding_http_requests_total")
}

func TestNewHandler(t *testing.T) {
	t.Parallel()

	_, err := httpinterface.NewHandler(httpinterface.ServiceOpts{})
	require.EqualError(t, err, "invalid opts: missing jwt secret")

	_, err = httpinterface.NewHandler(httpinterface.ServiceOpts{
		JWTSecret: secret, OrdersPerSecond: -1,
	})
	require.EqualError(t, err, "invalid opts: orders per second must not be negative")

	_, err = httpinterface.NewHandler(httpinterface.ServiceOpts{JWTSecret: secret})
	require.EqualError(t, err, "invalid opts: market maker app service must not be null")
}
