package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/stash-pay/stash_pay/internal/config"
	"github.com/stash-pay/stash_pay/internal/logging"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	cfg := config.Config{AppName: "StashPay", Env: "development", InitRateLimit: 100}
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

type apiClient struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func (c *apiClient) do(method, path, body string) (int, map[string]any) {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if c.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Token "+c.token)
	}

	resp, err := c.app.Test(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	var payload map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			c.t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp.StatusCode, payload
}

func data(payload map[string]any) map[string]any {
	d, _ := payload["data"].(map[string]any)
	return d
}

func initAccount(t *testing.T, app *fiber.App, customerXID string) *apiClient {
	t.Helper()
	c := &apiClient{t: t, app: app}
	status, payload := c.do(http.MethodPost, "/api/v1/init", fmt.Sprintf(`{"customer_xid":%q}`, customerXID))
	if status != http.StatusCreated {
		t.Fatalf("init: expected 201, got %d (%v)", status, payload)
	}
	token, _ := data(payload)["token"].(string)
	if token == "" {
		t.Fatalf("init returned no token: %v", payload)
	}
	c.token = token
	return c
}

func TestInitValidation(t *testing.T) {
	app := newTestApp(t)
	c := &apiClient{t: t, app: app}

	status, payload := c.do(http.MethodPost, "/api/v1/init", `{}`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing customer_xid, got %d", status)
	}
	if payload["status"] != "fail" {
		t.Fatalf("expected fail envelope, got %v", payload)
	}
}

func TestMissingTokenHeader(t *testing.T) {
	app := newTestApp(t)
	c := &apiClient{t: t, app: app}

	status, payload := c.do(http.MethodGet, "/api/v1/wallet", "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 without token header, got %d (%v)", status, payload)
	}
}

func TestWalletLifecycleFlow(t *testing.T) {
	app := newTestApp(t)
	c := initAccount(t, app, "cust-1")

	// Balance view before enabling is rejected.
	status, payload := c.do(http.MethodGet, "/api/v1/wallet", "")
	if status != http.StatusBadRequest || data(payload)["error"] != "Wallet disabled" {
		t.Fatalf("expected disabled rejection, got %d (%v)", status, payload)
	}

	status, payload = c.do(http.MethodPost, "/api/v1/wallet", "")
	if status != http.StatusCreated {
		t.Fatalf("enable: expected 201, got %d (%v)", status, payload)
	}
	w, _ := data(payload)["wallet"].(map[string]any)
	if w["status"] != "enabled" || w["owned_by"] != "cust-1" || w["balance"] != float64(0) {
		t.Fatalf("unexpected enabled wallet: %v", w)
	}
	if w["enabled_at"] == nil {
		t.Fatalf("enabled_at missing: %v", w)
	}

	status, payload = c.do(http.MethodPost, "/api/v1/wallet", "")
	if status != http.StatusBadRequest || data(payload)["error"] != "Already enabled" {
		t.Fatalf("expected Already enabled, got %d (%v)", status, payload)
	}

	status, payload = c.do(http.MethodPatch, "/api/v1/wallet", `{"is_disabled":true}`)
	if status != http.StatusOK {
		t.Fatalf("disable: expected 200, got %d (%v)", status, payload)
	}
	w, _ = data(payload)["wallet"].(map[string]any)
	if w["status"] != "disabled" || w["disabled_at"] == nil {
		t.Fatalf("unexpected disabled wallet: %v", w)
	}

	status, payload = c.do(http.MethodPost, "/api/v1/wallet/deposits", `{"amount":100,"reference_id":"r1"}`)
	if status != http.StatusBadRequest || data(payload)["error"] != "Wallet disabled" {
		t.Fatalf("deposit on disabled wallet: got %d (%v)", status, payload)
	}
}

func TestDepositAndWithdrawalFlow(t *testing.T) {
	app := newTestApp(t)
	c := initAccount(t, app, "cust-1")
	if status, _ := c.do(http.MethodPost, "/api/v1/wallet", ""); status != http.StatusCreated {
		t.Fatal("enable failed")
	}

	status, payload := c.do(http.MethodPost, "/api/v1/wallet/deposits", `{"amount":1000,"reference_id":"r1"}`)
	if status != http.StatusCreated {
		t.Fatalf("deposit: expected 201, got %d (%v)", status, payload)
	}
	dep, _ := data(payload)["deposit"].(map[string]any)
	if dep["amount"] != float64(1000) || dep["status"] != "success" || dep["deposited_by"] != "cust-1" || dep["reference_id"] != "r1" {
		t.Fatalf("unexpected deposit envelope: %v", dep)
	}

	status, payload = c.do(http.MethodPost, "/api/v1/wallet/deposits", `{"amount":1000,"reference_id":"r1"}`)
	if status != http.StatusBadRequest || data(payload)["error"] != "Reference ID already exists" {
		t.Fatalf("duplicate deposit: got %d (%v)", status, payload)
	}

	status, payload = c.do(http.MethodGet, "/api/v1/wallet", "")
	w, _ := data(payload)["wallet"].(map[string]any)
	if status != http.StatusOK || w["balance"] != float64(1000) {
		t.Fatalf("expected balance 1000, got %d (%v)", status, w)
	}

	status, payload = c.do(http.MethodPost, "/api/v1/wallet/withdrawals", `{"amount":400,"reference_id":"r2"}`)
	if status != http.StatusCreated {
		t.Fatalf("withdrawal: expected 201, got %d (%v)", status, payload)
	}
	wd, _ := data(payload)["withdrawal"].(map[string]any)
	if wd["amount"] != float64(-400) || wd["withdrawn_by"] != "cust-1" {
		t.Fatalf("unexpected withdrawal envelope: %v", wd)
	}

	status, payload = c.do(http.MethodPost, "/api/v1/wallet/withdrawals", `{"amount":700,"reference_id":"r3"}`)
	if status != http.StatusBadRequest || data(payload)["error"] != "Insufficient balance" {
		t.Fatalf("overdraft: got %d (%v)", status, payload)
	}

	status, payload = c.do(http.MethodGet, "/api/v1/wallet/transactions", "")
	if status != http.StatusOK {
		t.Fatalf("transactions: expected 200, got %d", status)
	}
	txns, _ := data(payload)["transactions"].([]any)
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	first, _ := txns[0].(map[string]any)
	second, _ := txns[1].(map[string]any)
	if first["type"] != "deposit" || second["type"] != "withdrawal" {
		t.Fatalf("transactions out of creation order: %v", txns)
	}
}

func TestFractionalAmountRejected(t *testing.T) {
	app := newTestApp(t)
	c := initAccount(t, app, "cust-1")
	if status, _ := c.do(http.MethodPost, "/api/v1/wallet", ""); status != http.StatusCreated {
		t.Fatal("enable failed")
	}

	status, payload := c.do(http.MethodPost, "/api/v1/wallet/deposits", `{"amount":10.5,"reference_id":"frac"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for fractional minor units, got %d (%v)", status, payload)
	}
}

func TestOutOfRangeAmountRejected(t *testing.T) {
	app := newTestApp(t)
	c := initAccount(t, app, "cust-1")
	if status, _ := c.do(http.MethodPost, "/api/v1/wallet", ""); status != http.StatusCreated {
		t.Fatal("enable failed")
	}

	// 2^64+1000 is integer-valued but does not fit the ledger's amount type;
	// it must be rejected, not truncated to its low 64 bits.
	status, payload := c.do(http.MethodPost, "/api/v1/wallet/deposits", `{"amount":18446744073709552616,"reference_id":"huge"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range amount, got %d (%v)", status, payload)
	}

	status, payload = c.do(http.MethodGet, "/api/v1/wallet", "")
	w, _ := data(payload)["wallet"].(map[string]any)
	if status != http.StatusOK || w["balance"] != float64(0) {
		t.Fatalf("truncated amount reached the ledger: %d (%v)", status, w)
	}
}

func TestTokensAreWalletScoped(t *testing.T) {
	app := newTestApp(t)
	first := initAccount(t, app, "cust-1")
	second := initAccount(t, app, "cust-2")

	for _, c := range []*apiClient{first, second} {
		if status, _ := c.do(http.MethodPost, "/api/v1/wallet", ""); status != http.StatusCreated {
			t.Fatal("enable failed")
		}
	}

	if status, _ := first.do(http.MethodPost, "/api/v1/wallet/deposits", `{"amount":300,"reference_id":"a"}`); status != http.StatusCreated {
		t.Fatal("deposit failed")
	}

	_, payload := second.do(http.MethodGet, "/api/v1/wallet", "")
	w, _ := data(payload)["wallet"].(map[string]any)
	if w["balance"] != float64(0) {
		t.Fatalf("deposit leaked across wallets: %v", w)
	}

	stranger := &apiClient{t: t, app: app, token: "0000000000000000000000000000000000000000"}
	status, payload := stranger.do(http.MethodGet, "/api/v1/wallet", "")
	if status != http.StatusNotFound || data(payload)["error"] != "Wallet not found" {
		t.Fatalf("unknown token: got %d (%v)", status, payload)
	}
}
