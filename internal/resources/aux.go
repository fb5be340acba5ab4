package resources

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"github.com/angelmondragon/shopadmin/pkg/transport"
	"github.com/angelmondragon/shopadmin/pkg/types"
)

// Downloader fetches binary payloads.
type Downloader interface {
	Download(ctx context.Context, route, name string) (*transport.Attachment, error)
}

// Client bundles the transport operations the auxiliary endpoints need.
type Client interface {
	Doer
	Downloader
}

func resolveID(path string, id int64) string {
	return strings.ReplaceAll(path, "{id}", strconv.FormatInt(id, 10))
}

func fetch(ctx context.Context, doer Doer, name string, req transport.Request, dest any) error {
	req.Name = name
	resp, err := doer.Do(ctx, req)
	if err != nil {
		return err
	}
	return transport.DecodeJSON(resp, dest)
}

// ReportsAPI covers the read-only dashboard and report endpoints.
type ReportsAPI struct {
	client Client
}

func NewReportsAPI(client Client) *ReportsAPI {
	return &ReportsAPI{client: client}
}

func (r *ReportsAPI) TodayOrders(ctx context.Context) (*types.SingleEnvelope[[]Order], error) {
	var out types.SingleEnvelope[[]Order]
	if err := fetch(ctx, r.client, "Order.today", transport.Request{Method: http.MethodGet, Path: PathTodayOrders}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profits reports profit between two YYYY-MM-DD dates; empty bounds are left to the server.
func (r *ReportsAPI) Profits(ctx context.Context, from, to string) (*types.SingleEnvelope[ProfitReport], error) {
	params := map[string]string{}
	if from != "" {
		params["from"] = from
	}
	if to != "" {
		params["to"] = to
	}
	var out types.SingleEnvelope[ProfitReport]
	if err := fetch(ctx, r.client, "Order.profits", transport.Request{Method: http.MethodGet, Path: PathProfits, Params: params}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ReportsAPI) Invoice(ctx context.Context, orderID int64) (*types.SingleEnvelope[Invoice], error) {
	var out types.SingleEnvelope[Invoice]
	if err := fetch(ctx, r.client, "Order.invoice", transport.Request{Method: http.MethodGet, Path: resolveID(PathInvoice, orderID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateInvoice downloads the invoice PDF; it is never JSON-decoded.
func (r *ReportsAPI) GenerateInvoice(ctx context.Context, orderID int64) (*transport.Attachment, error) {
	return r.client.Download(ctx, resolveID(PathGenerateInvoice, orderID), "Order.generate")
}

func (r *ReportsAPI) MerchantPurchases(ctx context.Context, merchantID int64) (*types.SingleEnvelope[[]Purchase], error) {
	var out types.SingleEnvelope[[]Purchase]
	if err := fetch(ctx, r.client, "Merchant.purchases", transport.Request{Method: http.MethodGet, Path: resolveID(PathMerchantPurchases, merchantID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ReportsAPI) UserSessions(ctx context.Context, query pagination.Query) (*types.ListEnvelope[Session], error) {
	var out types.ListEnvelope[Session]
	if err := fetch(ctx, r.client, "User.sessions", transport.Request{Method: http.MethodGet, Path: PathUserSessions, Params: query.Params()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AccountAPI covers login and password flows. Login, forgot and reset are sent
// without a token when none is held.
type AccountAPI struct {
	client Doer
}

func NewAccountAPI(client Doer) *AccountAPI {
	return &AccountAPI{client: client}
}

func (a *AccountAPI) Login(ctx context.Context, input LoginInput) (*types.SingleEnvelope[LoginResult], error) {
	var out types.SingleEnvelope[LoginResult]
	if err := fetch(ctx, a.client, "Account.login", transport.Request{Method: http.MethodPost, Path: PathLogin, Body: input}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AccountAPI) Logout(ctx context.Context) (*types.MutationEnvelope[any], error) {
	var out types.MutationEnvelope[any]
	if err := fetch(ctx, a.client, "Account.logout", transport.Request{Method: http.MethodPost, Path: PathLogout}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AccountAPI) ForgotPassword(ctx context.Context, input ForgotPasswordInput) (*types.MutationEnvelope[any], error) {
	var out types.MutationEnvelope[any]
	if err := fetch(ctx, a.client, "Account.forgetPassword", transport.Request{Method: http.MethodPost, Path: PathForgotPassword, Body: input}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AccountAPI) ResetPassword(ctx context.Context, input ResetPasswordInput) (*types.MutationEnvelope[any], error) {
	var out types.MutationEnvelope[any]
	if err := fetch(ctx, a.client, "Account.resetPassword", transport.Request{Method: http.MethodPost, Path: PathResetPassword, Body: input}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
