package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"investtracker/src/database"
	"investtracker/src/model"
)

func newTestServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	ts := httptest.NewServer(Router(db))
	t.Cleanup(ts.Close)

	return ts, db
}

func request(t *testing.T, method, url string, payload interface{}) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}

	return resp.StatusCode, raw
}

func decodeInto(t *testing.T, raw []byte, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("failed to decode response %q: %v", raw, err)
	}
}

func detailOf(t *testing.T, raw []byte) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	decodeInto(t, raw, &body)
	return body.Detail
}

func signupUser(t *testing.T, ts *httptest.Server, email, username string) model.User {
	t.Helper()

	status, raw := request(t, http.MethodPost, ts.URL+"/users", map[string]string{
		"email":    email,
		"username": username,
		"password": "secret",
	})
	if status != http.StatusOK {
		t.Fatalf("signup failed with status %d: %s", status, raw)
	}

	var user model.User
	decodeInto(t, raw, &user)
	return user
}

func openPortfolio(t *testing.T, ts *httptest.Server, userID uint) model.Portfolio {
	t.Helper()

	status, raw := request(t, http.MethodPost, fmt.Sprintf("%s/users/%d/portfolio", ts.URL, userID), nil)
	if status != http.StatusOK {
		t.Fatalf("portfolio create failed with status %d: %s", status, raw)
	}

	var portfolio model.Portfolio
	decodeInto(t, raw, &portfolio)
	return portfolio
}

func createInstrument(t *testing.T, ts *httptest.Server, symbol string, close float64) model.Instrument {
	t.Helper()

	status, raw := request(t, http.MethodPost, ts.URL+"/instruments", map[string]interface{}{
		"symbol":   symbol,
		"open":     close,
		"high":     close,
		"low":      close,
		"close":    close,
		"currency": "USD",
	})
	if status != http.StatusOK {
		t.Fatalf("instrument create failed with status %d: %s", status, raw)
	}

	var instrument model.Instrument
	decodeInto(t, raw, &instrument)
	return instrument
}

func addAsset(t *testing.T, ts *httptest.Server, userID, instrumentID uint, price, volume float64) model.Asset {
	t.Helper()

	status, raw := request(t, http.MethodPost,
		fmt.Sprintf("%s/users/%d/portfolio/assets", ts.URL, userID),
		map[string]interface{}{
			"instrument_id": instrumentID,
			"buy_date":      "15/03/2025",
			"buy_price":     price,
			"volume":        volume,
		})
	if status != http.StatusOK {
		t.Fatalf("asset create failed with status %d: %s", status, raw)
	}

	var asset model.Asset
	decodeInto(t, raw, &asset)
	return asset
}

func TestHealthcheck(t *testing.T) {
	ts, _ := newTestServer(t)

	status, raw := request(t, http.MethodGet, ts.URL+"/healthcheck", nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}
	if string(raw) != "OK" {
		t.Fatalf("unexpected body: %q", raw)
	}
}

func TestLoginStub(t *testing.T) {
	ts, _ := newTestServer(t)

	status, raw := request(t, http.MethodGet, ts.URL+"/login", nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}

	var body map[string]bool
	decodeInto(t, raw, &body)
	if !body["Login"] {
		t.Fatalf("expected Login true, got %s", raw)
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	ts, _ := newTestServer(t)

	signupUser(t, ts, "a@x.com", "a")

	status, raw := request(t, http.MethodPost, ts.URL+"/users", map[string]string{
		"email":    "a@x.com",
		"username": "someone-else",
		"password": "secret",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", status)
	}
	if detail := detailOf(t, raw); detail != "The user with this email already exists in the system." {
		t.Fatalf("unexpected detail message: %q", detail)
	}
}

func TestSignupNeverExposesPassword(t *testing.T) {
	ts, _ := newTestServer(t)

	status, raw := request(t, http.MethodPost, ts.URL+"/users", map[string]string{
		"email":    "a@x.com",
		"username": "a",
		"password": "secret",
	})
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", status, raw)
	}

	if bytes.Contains(raw, []byte("secret")) || bytes.Contains(raw, []byte("password")) {
		t.Fatalf("response leaks password material: %s", raw)
	}
}

func TestUserListCountIgnoresFilterAndPagination(t *testing.T) {
	ts, _ := newTestServer(t)

	signupUser(t, ts, "a@x.com", "a")
	signupUser(t, ts, "b@x.com", "b")
	signupUser(t, ts, "c@x.com", "c")

	status, raw := request(t, http.MethodGet, ts.URL+"/users?email=b@x.com", nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}

	var filtered model.UsersPublic
	decodeInto(t, raw, &filtered)
	if filtered.Count != 3 {
		t.Fatalf("count must be the total number of users, got %d", filtered.Count)
	}
	if len(filtered.Data) != 1 || filtered.Data[0].Email != "b@x.com" {
		t.Fatalf("unexpected filtered data: %+v", filtered.Data)
	}

	status, raw = request(t, http.MethodGet, ts.URL+"/users?skip=1&limit=1", nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}

	var page model.UsersPublic
	decodeInto(t, raw, &page)
	if page.Count != 3 {
		t.Fatalf("count must ignore pagination, got %d", page.Count)
	}
	if len(page.Data) != 1 {
		t.Fatalf("expected a single-row page, got %d rows", len(page.Data))
	}
}

func TestUpdateUserRequiresAtLeastOneField(t *testing.T) {
	ts, _ := newTestServer(t)

	user := signupUser(t, ts, "a@x.com", "a")

	status, raw := request(t, http.MethodPut,
		fmt.Sprintf("%s/users/%d", ts.URL, user.ID), map[string]string{})
	if status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", status)
	}
	if detail := detailOf(t, raw); detail != "No user details to update." {
		t.Fatalf("unexpected detail message: %q", detail)
	}

	status, raw = request(t, http.MethodPut,
		fmt.Sprintf("%s/users/%d", ts.URL, user.ID),
		map[string]string{"username": "renamed", "password": "newsecret"})
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", status, raw)
	}

	status, raw = request(t, http.MethodGet, fmt.Sprintf("%s/users/%d", ts.URL, user.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}

	var updated model.User
	decodeInto(t, raw, &updated)
	if updated.Username != "renamed" {
		t.Fatalf("expected username to be updated, got %q", updated.Username)
	}
}

func TestPortfolioLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)

	user := signupUser(t, ts, "a@x.com", "a")
	portfolio := openPortfolio(t, ts, user.ID)
	if portfolio.UserID != user.ID {
		t.Fatalf("portfolio not bound to user: %+v", portfolio)
	}

	status, raw := request(t, http.MethodPost,
		fmt.Sprintf("%s/users/%d/portfolio", ts.URL, user.ID), nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", status)
	}
	if detail := detailOf(t, raw); detail != "User already has a portfolio." {
		t.Fatalf("unexpected detail message: %q", detail)
	}

	status, raw = request(t, http.MethodGet,
		fmt.Sprintf("%s/users/%d/portfolio", ts.URL, user.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}

	var fetched model.Portfolio
	decodeInto(t, raw, &fetched)
	if fetched.ID != portfolio.ID {
		t.Fatalf("unexpected portfolio returned: %+v", fetched)
	}
}

func TestAssetEndpointsRequirePortfolio(t *testing.T) {
	ts, _ := newTestServer(t)

	user := signupUser(t, ts, "a@x.com", "a")

	status, raw := request(t, http.MethodGet,
		fmt.Sprintf("%s/users/%d/portfolio/assets", ts.URL, user.ID), nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", status)
	}
	if detail := detailOf(t, raw); detail != "User does not have a portfolio." {
		t.Fatalf("unexpected detail message: %q", detail)
	}
}

func TestAssetLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)

	user := signupUser(t, ts, "a@x.com", "a")
	openPortfolio(t, ts, user.ID)
	instrument := createInstrument(t, ts, "AAPL", 110)

	asset := addAsset(t, ts, user.ID, instrument.ID, 100.5, 2)
	if asset.BuyDate != "15/03/2025" {
		t.Fatalf("buy date must round-trip unchanged, got %q", asset.BuyDate)
	}

	assetURL := fmt.Sprintf("%s/users/%d/portfolio/assets/%d", ts.URL, user.ID, asset.ID)

	status, raw := request(t, http.MethodPut, assetURL, map[string]float64{"buy_price": 120})
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", status, raw)
	}

	var updated model.Asset
	decodeInto(t, raw, &updated)
	if updated.BuyPrice != 120 {
		t.Fatalf("expected buy price 120, got %v", updated.BuyPrice)
	}
	if updated.Volume != 2 {
		t.Fatalf("volume must be untouched by a partial update, got %v", updated.Volume)
	}
	if updated.BuyDate != "15/03/2025" {
		t.Fatalf("buy date must be untouched, got %q", updated.BuyDate)
	}

	status, raw = request(t, http.MethodDelete, assetURL, nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}

	var deleted model.Asset
	decodeInto(t, raw, &deleted)
	if deleted.ID != asset.ID {
		t.Fatalf("expected pre-deletion representation, got %+v", deleted)
	}

	status, raw = request(t, http.MethodGet, assetURL, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected status 400 after deletion, got %d", status)
	}
	if detail := detailOf(t, raw); detail != "No asset exists with this id." {
		t.Fatalf("unexpected detail message: %q", detail)
	}
}

func TestBulkDeleteAssets(t *testing.T) {
	ts, _ := newTestServer(t)

	user := signupUser(t, ts, "a@x.com", "a")
	openPortfolio(t, ts, user.ID)
	instrument := createInstrument(t, ts, "AAPL", 110)

	addAsset(t, ts, user.ID, instrument.ID, 100, 1)
	addAsset(t, ts, user.ID, instrument.ID, 105, 3)

	assetsURL := fmt.Sprintf("%s/users/%d/portfolio/assets", ts.URL, user.ID)

	status, raw := request(t, http.MethodDelete, assetsURL, nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}

	var first model.AssetsPublic
	decodeInto(t, raw, &first)
	if first.Count != 2 || len(first.Data) != 2 {
		t.Fatalf("expected 2 deleted assets, got %+v", first)
	}

	status, raw = request(t, http.MethodDelete, assetsURL, nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200 on repeat delete, got %d", status)
	}

	var second model.AssetsPublic
	decodeInto(t, raw, &second)
	if second.Count != 0 || len(second.Data) != 0 {
		t.Fatalf("repeat delete must be an empty no-op, got %+v", second)
	}
}

func TestOrdersValidationAndFilteredCount(t *testing.T) {
	ts, _ := newTestServer(t)

	user := signupUser(t, ts, "a@x.com", "a")
	instrument := createInstrument(t, ts, "AAPL", 110)
	ordersURL := fmt.Sprintf("%s/users/%d/orders", ts.URL, user.ID)

	status, raw := request(t, http.MethodPost, ordersURL, map[string]interface{}{
		"instrument_id": instrument.ID,
		"type":          "hold",
		"date":          "2025-01-10T00:00:00Z",
		"volume":        1,
		"price":         100,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", status)
	}
	if detail := detailOf(t, raw); detail != "Order type must be buy or sell." {
		t.Fatalf("unexpected detail message: %q", detail)
	}

	for _, orderType := range []string{"buy", "sell"} {
		status, raw = request(t, http.MethodPost, ordersURL, map[string]interface{}{
			"instrument_id": instrument.ID,
			"type":          orderType,
			"date":          "2025-01-10T00:00:00Z",
			"volume":        1,
			"price":         100,
		})
		if status != http.StatusOK {
			t.Fatalf("order create failed with status %d: %s", status, raw)
		}
	}

	status, raw = request(t, http.MethodGet, ordersURL+"?type=buy", nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}

	var filtered model.OrdersPublic
	decodeInto(t, raw, &filtered)
	if filtered.Count != 1 || len(filtered.Data) != 1 {
		t.Fatalf("order count must be the filtered result size, got %+v", filtered)
	}
	if filtered.Data[0].Type != "buy" {
		t.Fatalf("unexpected order returned: %+v", filtered.Data[0])
	}
}

func TestOrderLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)

	user := signupUser(t, ts, "a@x.com", "a")
	instrument := createInstrument(t, ts, "AAPL", 110)
	ordersURL := fmt.Sprintf("%s/users/%d/orders", ts.URL, user.ID)

	status, raw := request(t, http.MethodPost, ordersURL, map[string]interface{}{
		"instrument_id": instrument.ID,
		"type":          "buy",
		"date":          "2025-01-10T00:00:00Z",
		"volume":        1,
		"price":         100,
	})
	if status != http.StatusOK {
		t.Fatalf("order create failed with status %d: %s", status, raw)
	}

	var order model.Order
	decodeInto(t, raw, &order)
	orderURL := fmt.Sprintf("%s/%d", ordersURL, order.ID)

	status, raw = request(t, http.MethodPut, orderURL, map[string]float64{"price": 105})
	if status != http.StatusOK {
		t.Fatalf("order update failed with status %d: %s", status, raw)
	}

	var updated model.Order
	decodeInto(t, raw, &updated)
	if updated.Price != 105 {
		t.Fatalf("expected price 105, got %v", updated.Price)
	}
	if updated.Volume != 1 || updated.Type != "buy" {
		t.Fatalf("untouched fields must survive a partial update: %+v", updated)
	}

	status, raw = request(t, http.MethodDelete, orderURL, nil)
	if status != http.StatusOK {
		t.Fatalf("order delete failed with status %d: %s", status, raw)
	}

	status, raw = request(t, http.MethodGet, orderURL, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected status 400 after deletion, got %d", status)
	}
	if detail := detailOf(t, raw); detail != "No order exists with this id." {
		t.Fatalf("unexpected detail message: %q", detail)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	ts, db := newTestServer(t)

	user := signupUser(t, ts, "a@x.com", "a")
	openPortfolio(t, ts, user.ID)
	instrument := createInstrument(t, ts, "AAPL", 110)
	addAsset(t, ts, user.ID, instrument.ID, 100, 1)
	addAsset(t, ts, user.ID, instrument.ID, 105, 2)

	status, raw := request(t, http.MethodPost,
		fmt.Sprintf("%s/users/%d/orders", ts.URL, user.ID),
		map[string]interface{}{
			"instrument_id": instrument.ID,
			"type":          "buy",
			"date":          "2025-01-10T00:00:00Z",
			"volume":        1,
			"price":         100,
		})
	if status != http.StatusOK {
		t.Fatalf("order create failed with status %d: %s", status, raw)
	}

	status, _ = request(t, http.MethodDelete, fmt.Sprintf("%s/users/%d", ts.URL, user.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}

	for table, value := range map[string]interface{}{
		"users":      &model.User{},
		"orders":     &model.Order{},
		"portfolios": &model.Portfolio{},
		"assets":     &model.Asset{},
		"summaries":  &model.Summary{},
	} {
		var count int64
		if err := db.Model(value).Count(&count).Error; err != nil {
			t.Fatalf("failed to count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("expected %s to be empty after cascade delete, found %d rows", table, count)
		}
	}

	var instrumentCount int64
	if err := db.Model(&model.Instrument{}).Count(&instrumentCount).Error; err != nil {
		t.Fatalf("failed to count instruments: %v", err)
	}
	if instrumentCount != 1 {
		t.Fatalf("instruments are shared and must survive, found %d rows", instrumentCount)
	}
}

func TestSummaryRefresh(t *testing.T) {
	ts, _ := newTestServer(t)

	user := signupUser(t, ts, "a@x.com", "a")
	summaryURL := fmt.Sprintf("%s/users/%d/summary", ts.URL, user.ID)

	status, raw := request(t, http.MethodGet, summaryURL, nil)
	if status != http.StatusOK {
		t.Fatalf("expected a summary right after signup, got %d: %s", status, raw)
	}

	var initial model.Summary
	decodeInto(t, raw, &initial)
	if initial.Invested != 0 || initial.CurrentValue != 0 || initial.ProfitLoss != 0 {
		t.Fatalf("fresh summary must be zeroed, got %+v", initial)
	}

	openPortfolio(t, ts, user.ID)
	instrument := createInstrument(t, ts, "AAPL", 110)
	addAsset(t, ts, user.ID, instrument.ID, 100, 2)

	status, raw = request(t, http.MethodPost, summaryURL+"/refresh", nil)
	if status != http.StatusOK {
		t.Fatalf("summary refresh failed with status %d: %s", status, raw)
	}

	var refreshed model.Summary
	decodeInto(t, raw, &refreshed)
	if refreshed.Invested != 200 {
		t.Fatalf("expected invested 200, got %v", refreshed.Invested)
	}
	if refreshed.CurrentValue != 220 {
		t.Fatalf("expected current value 220, got %v", refreshed.CurrentValue)
	}
	if refreshed.ProfitLoss != 20 {
		t.Fatalf("expected profit 20, got %v", refreshed.ProfitLoss)
	}
}

func TestInstrumentValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	status, raw := request(t, http.MethodPost, ts.URL+"/instruments", map[string]string{"symbol": ""})
	if status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", status)
	}
	if detail := detailOf(t, raw); detail != "Symbol is required." {
		t.Fatalf("unexpected detail message: %q", detail)
	}

	createInstrument(t, ts, "AAPL", 110)

	status, raw = request(t, http.MethodPost, ts.URL+"/instruments", map[string]interface{}{
		"symbol": "AAPL",
		"close":  120,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", status)
	}
	if detail := detailOf(t, raw); detail != "An instrument with this symbol already exists." {
		t.Fatalf("unexpected detail message: %q", detail)
	}
}
