package app

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campus-eats/appkit/internal/identity"
	"github.com/campus-eats/appkit/internal/likes"
	"github.com/campus-eats/appkit/internal/order"
	apperrors "github.com/campus-eats/appkit/pkg/errors"
	"github.com/campus-eats/appkit/pkg/httputil"
	"github.com/campus-eats/appkit/pkg/pagination"
	"github.com/campus-eats/appkit/pkg/slug"
	"github.com/campus-eats/appkit/pkg/validator"
)

// --- auth ---

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type signUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	UserID   string `json:"userId" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required,krphone"`
}

type userPayload struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	DisplayName   string `json:"displayName"`
}

func toUserPayload(u *identity.User) userPayload {
	return userPayload{Email: u.Email, EmailVerified: u.EmailVerified, DisplayName: u.DisplayName}
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	u, err := a.provider.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, a.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toUserPayload(u)})
}

func (a *App) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	u, err := a.provider.SignUp(r.Context(), identity.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		UserID:   req.UserID,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		httputil.WriteError(w, r, err, a.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: toUserPayload(u)})
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.provider.SignOut(r.Context()); err != nil {
		httputil.WriteError(w, r, err, a.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// handleRefresh backs the token refresh endpoint in local mode.
func (a *App) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	access, refresh, err := a.localProvider.RefreshPair(req.RefreshToken)
	if err != nil {
		httputil.WriteError(w, r, err, a.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// handleVerify marks a dev-provider account as verified, standing in for
// the email verification link.
func (a *App) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if !a.localProvider.MarkVerified(req.Email) {
		httputil.WriteError(w, r, apperrors.NotFound("user", req.Email), a.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- notifications ---

type addNotificationRequest struct {
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (a *App) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	page := pagination.Paginate(a.notifications.Items(r.Context()), pagination.FromRequest(r))
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

func (a *App) handleAddNotification(w http.ResponseWriter, r *http.Request) {
	var req addNotificationRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	item := a.notifications.Add(r.Context(), req.Title, req.Message)
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: item})
}

func (a *App) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	a.notifications.ClearAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// --- orders and coupons ---

type purchaseRequest struct {
	MenuName   string `json:"menuName" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gte=1"`
	TotalPrice int64  `json:"totalPrice" validate:"required,gte=0"`
	StoreName  string `json:"storeName"`
}

func (a *App) handleListOrders(w http.ResponseWriter, r *http.Request) {
	page := pagination.Paginate(a.orders.Orders(r.Context()), pagination.FromRequest(r))
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

func (a *App) handleRecordPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	ord, coupon := a.orders.RecordPurchase(r.Context(), req.MenuName, req.Quantity, req.TotalPrice, req.StoreName)
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: map[string]any{
		"order":  ord,
		"coupon": coupon,
	}})
}

type advanceOrderRequest struct {
	Status order.Status `json:"status" validate:"required,oneof=placed preparing ready completed canceled"`
}

func (a *App) handleAdvanceOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, a.logger)
		return
	}

	var req advanceOrderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := a.orders.AdvanceOrder(r.Context(), id, req.Status); err != nil {
		httputil.WriteError(w, r, err, a.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleListCoupons(w http.ResponseWriter, r *http.Request) {
	page := pagination.Paginate(a.orders.Coupons(r.Context()), pagination.FromRequest(r))
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

func (a *App) handleUseCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, a.logger)
		return
	}

	if err := a.orders.UseCoupon(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, a.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- cart ---

type addCartItemRequest struct {
	MenuName  string `json:"menuName" validate:"required"`
	StoreName string `json:"storeName"`
	Price     int64  `json:"price" validate:"gte=0"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

func (a *App) handleGetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"items":      a.cart.Items(),
		"itemCount":  a.cart.ItemCount(),
		"totalPrice": a.cart.TotalPrice(),
	}})
}

func (a *App) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	item := a.cart.AddItem(req.MenuName, req.StoreName, req.Price, req.Quantity)
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: item})
}

func (a *App) handleClearCart(w http.ResponseWriter, r *http.Request) {
	a.cart.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// --- likes ---

type likeRequest struct {
	Kind       likes.Kind `json:"kind" validate:"required,oneof=cafeteria cafe"`
	MenuSlug   string     `json:"menuSlug"`
	MenuName   string     `json:"menuName" validate:"required"`
	SourceName string     `json:"sourceName" validate:"required"`
}

func (a *App) handleLike(w http.ResponseWriter, r *http.Request) {
	var req likeRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if req.MenuSlug == "" {
		req.MenuSlug = slug.Make(req.MenuName)
	}

	item := a.likes.Like(req.Kind, req.MenuSlug, req.MenuName, req.SourceName)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: item})
}

func (a *App) handleRanking(w http.ResponseWriter, r *http.Request) {
	page := pagination.Paginate(a.likes.Ranking(), pagination.FromRequest(r))
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid id: " + raw)
	}
	return id, nil
}
