package httpinterface

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/application/marketmaker"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/acl"
	"gopkg.in/macaroon-bakery.v2/bakery"
)

type handler struct {
	mm       *marketmaker.Service
	webhooks *pubsub.Service
	acl      *acl.ACL
	ledger   Ledger
	faucet   Faucet
	secret   []byte
}

func (h *handler) getInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.mm.GetInfo(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, infoResponse(info))
}

func (h *handler) open(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.mm.Open(r.Context(), caller); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handler) updateBeneficiary(w http.ResponseWriter, r *http.Request) {
	var req BeneficiaryRequest
	caller, err := decodeCallerRequest(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	beneficiary, err := parseAddress(req.Beneficiary, "beneficiary")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.mm.UpdateBeneficiary(r.Context(), caller, beneficiary); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handler) updateFormula(w http.ResponseWriter, r *http.Request) {
	var req FormulaRequest
	caller, err := decodeCallerRequest(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	formula, err := parseAddress(req.Formula, "formula")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.mm.UpdateFormula(r.Context(), caller, formula); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handler) updateFees(w http.ResponseWriter, r *http.Request) {
	var req FeesRequest
	caller, err := decodeCallerRequest(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	buyFeePct, err := parseAmount(req.BuyFeePct, "buy fee")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sellFeePct, err := parseAmount(req.SellFeePct, "sell fee")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.mm.UpdateFees(r.Context(), caller, buyFeePct, sellFeePct); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handler) listCollaterals(w http.ResponseWriter, r *http.Request) {
	collaterals, err := h.mm.ListCollateralTokens(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	res := make([]CollateralResponse, 0, len(collaterals))
	for _, c := range collaterals {
		res = append(res, collateralResponse(c))
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) getCollateral(w http.ResponseWriter, r *http.Request) {
	collateral, err := parseAddress(mux.Vars(r)["collateral"], "collateral")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.mm.GetCollateralToken(r.Context(), collateral)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, collateralResponse(*c))
}

func (h *handler) addCollateral(w http.ResponseWriter, r *http.Request) {
	var req CollateralRequest
	caller, err := decodeCallerRequest(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	args, err := req.parse("")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.mm.AddCollateralToken(r.Context(), caller, args); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct{}{})
}

func (h *handler) updateCollateral(w http.ResponseWriter, r *http.Request) {
	var req CollateralRequest
	caller, err := decodeCallerRequest(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	args, err := req.parse(mux.Vars(r)["collateral"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.mm.UpdateCollateralToken(r.Context(), caller, args); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handler) removeCollateral(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	collateral, err := parseAddress(mux.Vars(r)["collateral"], "collateral")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.mm.RemoveCollateralToken(r.Context(), caller, collateral); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handler) staticPrice(w http.ResponseWriter, r *http.Request) {
	collateral, err := parseAddress(mux.Vars(r)["collateral"], "collateral")
	if err != nil {
		writeError(w, r, err)
		return
	}
	price, err := h.mm.StaticPricePPM(r.Context(), collateral)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PriceResponse{collateral.Hex(), price.Dec()})
}

func (h *handler) previewOrder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collateral, err := parseAddress(vars["collateral"], "collateral")
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount(r.URL.Query().Get("amount"), "amount")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var result *marketmaker.OrderResult
	switch vars["side"] {
	case "buy":
		result, err = h.mm.PreviewBuyOrder(r.Context(), collateral, amount)
	case "sell":
		result, err = h.mm.PreviewSellOrder(r.Context(), collateral, amount)
	default:
		err = fmt.Errorf("%w: side must be either buy or sell", ErrInvalidRequest)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse(result))
}

func (h *handler) makeBuyOrder(w http.ResponseWriter, r *http.Request) {
	var req BuyOrderRequest
	caller, err := decodeCallerRequest(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := req.parse(caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.mm.MakeBuyOrder(r.Context(), order)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse(result))
}

func (h *handler) makeSellOrder(w http.ResponseWriter, r *http.Request) {
	var req SellOrderRequest
	caller, err := decodeCallerRequest(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := req.parse(caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.mm.MakeSellOrder(r.Context(), order)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse(result))
}

func (h *handler) approveAndCall(w http.ResponseWriter, r *http.Request) {
	var req ApproveAndCallRequest
	caller, err := decodeCallerRequest(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	approval, err := req.parse(caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.mm.ReceiveApproval(r.Context(), approval)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse(result))
}

func (h *handler) getBalance(w http.ResponseWriter, r *http.Request) {
	account, err := parseAddress(mux.Vars(r)["account"], "account")
	if err != nil {
		writeError(w, r, err)
		return
	}
	asset, err := parseOptionalAddress(
		r.URL.Query().Get("asset"), "asset", domain.NativeAsset,
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := h.ledger.BalanceOf(r.Context(), asset, account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{
		Account: account.Hex(),
		Asset:   asset.Hex(),
		Balance: balance.Dec(),
	})
}

func (h *handler) fund(w http.ResponseWriter, r *http.Request) {
	var req FaucetRequest
	caller, err := decodeCallerRequest(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	asset, err := parseOptionalAddress(req.Asset, "asset", domain.NativeAsset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.faucet.Fund(r.Context(), asset, caller, amount); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handler) listWebhooks(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	hooks, err := h.webhooks.ListWebhooks(
		r.Context(), caller, r.URL.Query().Get("event"),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hooks)
}

func (h *handler) addWebhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	caller, err := decodeCallerRequest(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.webhooks.AddWebhook(r.Context(), caller, pubsub.WebhookArgs{
		Event:    req.Event,
		Endpoint: req.Endpoint,
		Secret:   req.Secret,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{id})
}

func (h *handler) removeWebhook(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.webhooks.RemoveWebhook(
		r.Context(), caller, mux.Vars(r)["id"],
	); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	account, err := parseAddress(mux.Vars(r)["account"], "account")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ops := h.acl.Permissions(account)
	res := make([]PermissionResponse, 0, len(ops))
	for _, op := range ops {
		res = append(res, PermissionResponse{op.Entity, op.Action})
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) grant(w http.ResponseWriter, r *http.Request) {
	account, op, err := h.parsePermissionRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.acl.Grant(account, op); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handler) revoke(w http.ResponseWriter, r *http.Request) {
	account, op, err := h.parsePermissionRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.acl.Revoke(account, op)
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handler) issueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	caller, err := decodeCallerRequest(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authorizePermissionManager(r, caller); err != nil {
		writeError(w, r, err)
		return
	}
	account, err := parseAddress(req.Account, "account")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.TTLSeconds < 0 {
		writeError(w, r, fmt.Errorf("%w: ttl must not be negative", ErrInvalidRequest))
		return
	}
	token, err := IssueToken(h.secret, account, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, TokenResponse{token})
}

func (h *handler) parsePermissionRequest(
	r *http.Request,
) (common.Address, bakery.Op, error) {
	var req PermissionRequest
	caller, err := decodeCallerRequest(r, &req)
	if err != nil {
		return common.Address{}, bakery.Op{}, err
	}
	if err := h.authorizePermissionManager(r, caller); err != nil {
		return common.Address{}, bakery.Op{}, err
	}
	account, err := parseAddress(req.Account, "account")
	if err != nil {
		return common.Address{}, bakery.Op{}, err
	}
	return account, bakery.Op{Entity: req.Entity, Action: req.Action}, nil
}

func (h *handler) authorizePermissionManager(
	r *http.Request, caller common.Address,
) error {
	op := acl.ManagePermissionsOp
	if !h.acl.HasPermission(r.Context(), caller, op.Entity, op.Action) {
		return fmt.Errorf("%w: %s lacks %s", domain.ErrAuthFailed, caller.Hex(), op.Action)
	}
	return nil
}

// decodeCallerRequest returns the authenticated caller and decodes the JSON
// body into req.
func decodeCallerRequest(r *http.Request, req interface{}) (common.Address, error) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		return common.Address{}, err
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return common.Address{}, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	return caller, nil
}
