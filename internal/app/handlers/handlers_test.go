package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/supershop/internal/app/handlers"
	"github.com/linemk/supershop/internal/domain/models"
	"github.com/linemk/supershop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/supershop/internal/service"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

// fakeAuthService: фиктивная реализация для тестирования.
type fakeAuthService struct {
	token string
	err   error
}

func (f *fakeAuthService) Register(ctx context.Context, phone, name, password, code string) (string, error) {
	return f.token, f.err
}

func (f *fakeAuthService) Login(ctx context.Context, phone, password string) (string, error) {
	return f.token, f.err
}

type fakeVerifier struct{ err error }

func (f *fakeVerifier) SendCode(ctx context.Context, phone string) error     { return f.err }
func (f *fakeVerifier) Verify(ctx context.Context, phone, code string) error { return f.err }

type fakeInfoService struct {
	resp *service.InfoResponse
	err  error
}

func (f *fakeInfoService) GetInfo(ctx context.Context, userID int64) (*service.InfoResponse, error) {
	return f.resp, f.err
}

type webhookCall struct{ id, status string }

type fakeCheckout struct {
	payment *models.Payment
	outcome service.WebhookOutcome
	err     error

	amount   *decimal.Decimal
	webhooks []webhookCall
}

func (f *fakeCheckout) CreatePayment(ctx context.Context, userID, basketID int64, amount *decimal.Decimal) (*models.Payment, error) {
	f.amount = amount
	return f.payment, f.err
}

func (f *fakeCheckout) HandleWebhook(ctx context.Context, externalID, status string) (service.WebhookOutcome, error) {
	f.webhooks = append(f.webhooks, webhookCall{externalID, status})
	return f.outcome, f.err
}

func (f *fakeCheckout) GetPayment(ctx context.Context, userID, paymentID int64) (*models.Payment, error) {
	return f.payment, f.err
}

func (f *fakeCheckout) SyncPayment(ctx context.Context, userID, paymentID int64) (*models.Payment, error) {
	return f.payment, f.err
}

type fakeBaskets struct {
	view *service.BasketView
	line *models.BasketItem
	err  error
}

func (f *fakeBaskets) GetBasket(ctx context.Context, userID int64) (*service.BasketView, error) {
	return f.view, f.err
}

func (f *fakeBaskets) AddItem(ctx context.Context, userID, itemID int64, color, size string, quantity int) (*models.BasketItem, error) {
	return f.line, f.err
}

func (f *fakeBaskets) UpdateQuantity(ctx context.Context, userID, basketItemID int64, quantity int) error {
	return f.err
}

func (f *fakeBaskets) DeleteItems(ctx context.Context, userID int64, ids []int64) (int64, error) {
	return int64(len(ids)), f.err
}

type fakeFavourites struct{ err error }

func (f *fakeFavourites) List(ctx context.Context, userID int64) ([]*models.FavouritesItem, error) {
	return []*models.FavouritesItem{}, f.err
}
func (f *fakeFavourites) Add(ctx context.Context, userID, stockID int64) error    { return f.err }
func (f *fakeFavourites) Remove(ctx context.Context, userID, stockID int64) error { return f.err }

type flagCall struct {
	linkID int64
	slot   models.Slot
	value  bool
}

type fakePhotos struct {
	item    *models.Item
	err     error
	updated *models.Item
	general *int64
	flags   []flagCall
}

func (f *fakePhotos) GetItem(ctx context.Context, itemID int64) (*models.Item, error) {
	if f.item == nil {
		return nil, service.ErrNotFound
	}
	cp := *f.item
	return &cp, nil
}

func (f *fakePhotos) ListItemPhotos(ctx context.Context, itemID int64) ([]*models.ItemPhoto, error) {
	return nil, nil
}

func (f *fakePhotos) AttachPhoto(ctx context.Context, itemID, photoID int64) (*models.ItemPhoto, error) {
	return &models.ItemPhoto{ID: 1, ItemID: itemID, PhotoID: photoID}, f.err
}

func (f *fakePhotos) SetItemGeneralPhoto(ctx context.Context, itemID int64, slot models.Slot, linkID *int64) error {
	f.general = linkID
	return f.err
}

func (f *fakePhotos) SetPhotoFlag(ctx context.Context, linkID int64, slot models.Slot, value bool) error {
	f.flags = append(f.flags, flagCall{linkID, slot, value})
	return f.err
}

func (f *fakePhotos) DeleteItemPhoto(ctx context.Context, linkID int64) error { return f.err }

func (f *fakePhotos) UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	f.updated = item
	return item, f.err
}

func (f *fakePhotos) DeleteItem(ctx context.Context, itemID int64) error   { return f.err }
func (f *fakePhotos) ConvergeItem(ctx context.Context, itemID int64) error { return f.err }

// withUser эмулирует JWT-middleware
func withUser(req *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(req.Context(), jwtmiddleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

// withURLParams подставляет параметры маршрута chi
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var resp handlers.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Error)
	return resp
}

func TestAuthHandler_Success(t *testing.T) {
	// Фиктивный сервис возвращает корректный токен.
	fakeSvc := &fakeAuthService{token: "test-token", err: nil}
	handler := handlers.AuthHandler(logger, fakeSvc, time.Hour)

	reqBody := `{"phone": "+79990001122", "password": "password123"}`
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "Expected status 200 OK")

	var resp handlers.AuthResponse
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err, "Response decoding should succeed")
	assert.Equal(t, "test-token", resp.Token, "Returned token should match fake token")

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, jwtmiddleware.CookieName, cookies[0].Name)
	assert.Equal(t, "test-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid JSON", body: `{"phone": "+79990001122", "password":`},
		{name: "short password", body: `{"phone": "+79990001122", "password": "short"}`},
		{name: "bad phone", body: `{"phone": "not-a-phone", "password": "password123"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := handlers.AuthHandler(logger, &fakeAuthService{}, time.Hour)
			req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString(tc.body))
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			decodeError(t, rr)
		})
	}
}

func TestAuthHandler_LoginError(t *testing.T) {
	fakeSvc := &fakeAuthService{err: fmt.Errorf("auth.Login: %w", service.ErrInvalidCredentials)}
	handler := handlers.AuthHandler(logger, fakeSvc, time.Hour)

	reqBody := `{"phone": "+79990001122", "password": "password123"}`
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected status 401 for login error")
	assert.Empty(t, rr.Result().Cookies())
}

func TestRegisterHandler(t *testing.T) {
	body := `{"phone": "+79990001122", "name": "Ivan", "password": "password123", "code": "1234"}`

	handler := handlers.RegisterHandler(logger, &fakeAuthService{token: "t"}, time.Hour)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/auth/register", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusCreated, rr.Code)

	handler = handlers.RegisterHandler(logger, &fakeAuthService{err: service.ErrConflict}, time.Hour)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/auth/register", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusConflict, rr.Code)

	bad := `{"phone": "+79990001122", "name": "Ivan", "password": "password123", "code": "12a4"}`
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/auth/register", bytes.NewBufferString(bad)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSendCodeHandler(t *testing.T) {
	body := `{"phone": "+79990001122"}`

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "sent", want: http.StatusOK},
		{name: "rate limited", err: service.ErrTooManyRequests, want: http.StatusTooManyRequests},
		{name: "provider down", err: service.ErrExternalProvider, want: http.StatusBadGateway},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := handlers.SendCodeHandler(logger, &fakeVerifier{err: tc.err})
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/auth/code", bytes.NewBufferString(body)))
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestInfoHandler_Success(t *testing.T) {
	// Подготовка фиктивного ответа от сервиса.
	fakeResp := &service.InfoResponse{
		ID:     1,
		Phone:  "+79990001122",
		Name:   "Ivan",
		Orders: []*models.Order{{ID: 5, UserID: 1, Status: models.OrderStatusPaid}},
		Stats:  service.OrderStats{Total: 1, ByStatus: map[string]int{models.OrderStatusPaid: 1}},
	}
	fakeSvc := &fakeInfoService{resp: fakeResp, err: nil}
	handler := handlers.InfoHandler(logger, fakeSvc)

	// Эмулируем наличие userID в контексте через jwtmiddleware.
	req := withUser(httptest.NewRequest("GET", "/api/info", nil), 1)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	// Проверяем, что статус 200 OK.
	assert.Equal(t, http.StatusOK, rr.Code, "Expected status 200 OK")

	var resp service.InfoResponse
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err, "Response decoding should succeed")
	assert.Equal(t, "Ivan", resp.Name)
	assert.Len(t, resp.Orders, 1, "Expected one order")
	assert.Equal(t, 1, resp.Stats.ByStatus[models.OrderStatusPaid])
}

func TestInfoHandler_Errors(t *testing.T) {
	// Если в контексте нет userID, должен вернуть 401.
	handler := handlers.InfoHandler(logger, &fakeInfoService{})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/info", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected status 401 when userID is missing")

	// Если сервис возвращает внутреннюю ошибку, текст наружу не уходит.
	handler = handlers.InfoHandler(logger, &fakeInfoService{err: assert.AnError})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, withUser(httptest.NewRequest("GET", "/api/info", nil), 1))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal server error", decodeError(t, rr).Message)

	handler = handlers.InfoHandler(logger, &fakeInfoService{err: service.ErrNotFound})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, withUser(httptest.NewRequest("GET", "/api/info", nil), 1))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWebhookHandler(t *testing.T) {
	valid := `{"type": "notification", "event": "payment.succeeded", "object": {"id": "ext-1", "status": "succeeded"}}`

	tests := []struct {
		name    string
		method  string
		body    string
		outcome service.WebhookOutcome
		err     error
		want    int
	}{
		{name: "applied", method: http.MethodPost, body: valid, outcome: service.WebhookApplied, want: http.StatusOK},
		{name: "replay", method: http.MethodPost, body: valid, outcome: service.WebhookReplay, want: http.StatusOK},
		{name: "get is not allowed", method: http.MethodGet, want: http.StatusMethodNotAllowed},
		{name: "malformed JSON", method: http.MethodPost, body: `{"object": `, want: http.StatusBadRequest},
		{name: "missing id", method: http.MethodPost, body: `{"object": {"status": "succeeded"}}`, want: http.StatusBadRequest},
		{name: "unknown payment", method: http.MethodPost, body: valid, err: service.ErrNotFound, want: http.StatusNotFound},
		{name: "concurrent delivery", method: http.MethodPost, body: valid, err: service.ErrConflict, want: http.StatusConflict},
		{name: "unknown status", method: http.MethodPost, body: valid, err: service.ErrValidation, want: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeCheckout{outcome: tc.outcome, err: tc.err}
			handler := handlers.WebhookHandler(logger, svc)

			req := httptest.NewRequest(tc.method, "/webhooks/", bytes.NewBufferString(tc.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.want, rr.Code)
			if tc.want == http.StatusOK {
				assert.JSONEq(t, `{"success": true}`, rr.Body.String())
				require.Len(t, svc.webhooks, 1)
				assert.Equal(t, webhookCall{"ext-1", "succeeded"}, svc.webhooks[0])
			}
		})
	}
}

func TestCreatePaymentHandler(t *testing.T) {
	ext := "ext-1"
	payment := &models.Payment{ID: 3, UserID: 1, BasketID: 2, Amount: decimal.NewFromInt(180), Status: models.PaymentPending, ExternalPaymentID: &ext, ConfirmationURL: "https://pay/ext-1"}

	svc := &fakeCheckout{payment: payment}
	handler := handlers.CreatePaymentHandler(logger, svc)
	req := withUser(httptest.NewRequest("POST", "/api/payments/", bytes.NewBufferString(`{"basket_id": 2, "amount": "180.00"}`)), 1)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, svc.amount)
	assert.True(t, decimal.NewFromInt(180).Equal(*svc.amount))

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "PENDING", resp["status"])
	assert.Equal(t, "ext-1", resp["external_payment_id"])
	assert.Equal(t, "https://pay/ext-1", resp["confirmation_url"])

	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{name: "no basket", body: `{}`, want: http.StatusBadRequest},
		{name: "provider error", body: `{"basket_id": 2}`, err: service.ErrExternalProvider, want: http.StatusBadGateway},
		{name: "out of stock", body: `{"basket_id": 2}`, err: service.ErrBasketNotAvailable, want: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := handlers.CreatePaymentHandler(logger, &fakeCheckout{err: tc.err})
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, withUser(httptest.NewRequest("POST", "/api/payments/", bytes.NewBufferString(tc.body)), 1))
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestGetPaymentHandler_InvalidID(t *testing.T) {
	handler := handlers.GetPaymentHandler(logger, &fakeCheckout{})
	req := withURLParams(withUser(httptest.NewRequest("GET", "/api/payments/abc", nil), 1), map[string]string{"id": "abc"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBasketHandlers(t *testing.T) {
	svc := &fakeBaskets{
		view: &service.BasketView{ID: 1, UserID: 1, Items: []*models.BasketItem{}, TotalCost: decimal.Zero, WithoutDiscount: decimal.Zero, IsAvailableToOrder: true},
		line: &models.BasketItem{ID: 9, BasketID: 1, ProductID: 4, Quantity: 2},
	}

	rr := httptest.NewRecorder()
	handlers.GetBasketHandler(logger, svc).ServeHTTP(rr, withUser(httptest.NewRequest("GET", "/api/baskets/", nil), 1))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"is_available_to_order":true`)

	rr = httptest.NewRecorder()
	body := `{"item_id": 1, "color": "black", "size": "L", "quantity": 2}`
	handlers.AddBasketItemHandler(logger, svc).ServeHTTP(rr, withUser(httptest.NewRequest("POST", "/api/baskets/add/", bytes.NewBufferString(body)), 1))
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	handlers.DeleteBasketItemsHandler(logger, svc).ServeHTTP(rr, withUser(httptest.NewRequest("POST", "/api/baskets/delete/", bytes.NewBufferString(`{"ids": []}`)), 1))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	handlers.DeleteBasketItemsHandler(logger, svc).ServeHTTP(rr, withUser(httptest.NewRequest("POST", "/api/baskets/delete/", bytes.NewBufferString(`{"ids": [9, 10]}`)), 1))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deleted": 2}`, rr.Body.String())

	rr = httptest.NewRecorder()
	req := withURLParams(withUser(httptest.NewRequest("PATCH", "/api/baskets/basket-item/9/", bytes.NewBufferString(`{"quantity": 3}`)), 1), map[string]string{"id": "9"})
	handlers.UpdateBasketItemHandler(logger, &fakeBaskets{err: service.ErrNotFound}).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFavouriteHandlers(t *testing.T) {
	req := withURLParams(withUser(httptest.NewRequest("POST", "/api/favourites/4/add_item/", nil), 1), map[string]string{"stock_id": "4"})
	rr := httptest.NewRecorder()
	handlers.AddFavouriteHandler(logger, &fakeFavourites{}).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)

	req = withURLParams(withUser(httptest.NewRequest("POST", "/api/favourites/4/add_item/", nil), 1), map[string]string{"stock_id": "4"})
	rr = httptest.NewRecorder()
	handlers.AddFavouriteHandler(logger, &fakeFavourites{err: service.ErrAlreadyInFavourites}).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)

	req = withURLParams(withUser(httptest.NewRequest("POST", "/api/favourites/4/remove_item/", nil), 1), map[string]string{"stock_id": "4"})
	rr = httptest.NewRecorder()
	handlers.RemoveFavouriteHandler(logger, &fakeFavourites{err: service.ErrValidation}).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSetGeneralPhotoHandler(t *testing.T) {
	photos := &fakePhotos{item: &models.Item{ID: 1, Name: "Sweater"}}
	handler := handlers.SetGeneralPhotoHandler(logger, photos)

	req := withURLParams(httptest.NewRequest("PUT", "/api/items/1/general-photos/three", bytes.NewBufferString(`{"item_photo_id": 5}`)),
		map[string]string{"id": "1", "slot": "three"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = withURLParams(httptest.NewRequest("PUT", "/api/items/1/general-photos/one", bytes.NewBufferString(`{"item_photo_id": 5}`)),
		map[string]string{"id": "1", "slot": "one"})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, photos.general)
	assert.Equal(t, int64(5), *photos.general)

	photos.err = service.ErrInvalidReference
	req = withURLParams(httptest.NewRequest("PUT", "/api/items/1/general-photos/two", bytes.NewBufferString(`{"item_photo_id": 6}`)),
		map[string]string{"id": "1", "slot": "two"})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateItemHandler_PartialUpdate(t *testing.T) {
	ref := int64(5)
	photos := &fakePhotos{item: &models.Item{ID: 1, Name: "Sweater", Price: decimal.NewFromInt(100), GeneralPhotoOne: &ref, GeneralPhotoTwo: &ref}}
	handler := handlers.UpdateItemHandler(logger, photos)

	body := `{"name": "Warm sweater", "general_photo_one": null}`
	req := withURLParams(httptest.NewRequest("PATCH", "/api/items/1", bytes.NewBufferString(body)), map[string]string{"id": "1"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, photos.updated)
	assert.Equal(t, "Warm sweater", photos.updated.Name)
	assert.Nil(t, photos.updated.GeneralPhotoOne, "explicit null clears the slot")
	require.NotNil(t, photos.updated.GeneralPhotoTwo, "absent field is kept")
	assert.Equal(t, ref, *photos.updated.GeneralPhotoTwo)
	assert.True(t, decimal.NewFromInt(100).Equal(photos.updated.Price))
}

func TestUpdateItemPhotoHandler(t *testing.T) {
	photos := &fakePhotos{}
	handler := handlers.UpdateItemPhotoHandler(logger, photos)

	req := withURLParams(httptest.NewRequest("PATCH", "/api/item-photos/7", bytes.NewBufferString(`{"is_general_two": true}`)), map[string]string{"id": "7"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []flagCall{{linkID: 7, slot: models.SlotTwo, value: true}}, photos.flags)

	req = withURLParams(httptest.NewRequest("PATCH", "/api/item-photos/7", bytes.NewBufferString(`{}`)), map[string]string{"id": "7"})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteItemPhotoHandler(t *testing.T) {
	req := withURLParams(httptest.NewRequest("DELETE", "/api/item-photos/7", nil), map[string]string{"id": "7"})
	rr := httptest.NewRecorder()
	handlers.DeleteItemPhotoHandler(logger, &fakePhotos{}).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req = withURLParams(httptest.NewRequest("DELETE", "/api/item-photos/7", nil), map[string]string{"id": "7"})
	rr = httptest.NewRecorder()
	handlers.DeleteItemPhotoHandler(logger, &fakePhotos{err: service.ErrNotFound}).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
