package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/shopadmin/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL+"/api", tokens, opts...)
	require.NoError(t, err)
	return client
}

func TestAuthorizationHeaderFollowsToken(t *testing.T) {
	var seen []string
	holder := session.NewMemoryStore("tok-123")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_, present := r.Header["Authorization"]
		if !present {
			seen[len(seen)-1] = "<absent>"
		}
		w.WriteHeader(http.StatusOK)
	}, holder, WithBearerPrefix("Bearer "))

	ctx := context.Background()
	_, err := client.Do(ctx, Request{Method: http.MethodGet, Path: "/Categories"})
	require.NoError(t, err)

	require.NoError(t, holder.ClearToken(ctx))
	_, err = client.Do(ctx, Request{Method: http.MethodGet, Path: "/Categories"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer tok-123", "<absent>"}, seen)
}

func TestParamsPassedVerbatim(t *testing.T) {
	var query map[string][]string
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		path = r.URL.Path
	}, nil)

	_, err := client.Do(context.Background(), Request{
		Path: "/Categories",
		Params: map[string]string{
			"PageNumber":     "1",
			"PageSize":       "10",
			"Search":         "",
			"SortField":      "id",
			"SortDescending": "false",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/Categories", path)
	assert.Equal(t, []string{"1"}, query["PageNumber"])
	assert.Equal(t, []string{""}, query["Search"])
	assert.Equal(t, []string{"false"}, query["SortDescending"])
}

func TestMultipartRepeatsSliceKeys(t *testing.T) {
	type userForm struct {
		ID        int64           `json:"id"`
		FirstName string          `json:"firstName"`
		Password  *string         `json:"password"`
		Salary    decimal.Decimal `json:"salary"`
	}

	var ids []string
	var fields map[string][]string
	var fileName string
	var fileBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		ids = r.MultipartForm.Value["ids"]
		fields = r.MultipartForm.Value
		if files := r.MultipartForm.File["image"]; len(files) == 1 {
			fileName = files[0].Filename
			f, err := files[0].Open()
			require.NoError(t, err)
			raw, _ := io.ReadAll(f)
			fileBody = string(raw)
		}
	}, nil)

	ctx := context.Background()
	_, err := client.Do(ctx, Request{
		Method:   http.MethodDelete,
		Path:     "/Categories/delete-multiple",
		Body:     Form{"ids": []int64{4, 5}, "skip": nil},
		Encoding: EncodingMultipart,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "5"}, ids)
	_, hasSkip := fields["skip"]
	assert.False(t, hasSkip, "nil values are not sent")

	_, err = client.Do(ctx, Request{
		Method:   http.MethodPut,
		Path:     "/Admin/updateUserInfo",
		Body:     userForm{ID: 7, FirstName: "Ana", Salary: decimal.RequireFromString("12.50")},
		Encoding: EncodingMultipart,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, fields["id"])
	assert.Equal(t, []string{"Ana"}, fields["firstName"])
	assert.Equal(t, []string{"12.5"}, fields["salary"])
	_, hasPassword := fields["password"]
	assert.False(t, hasPassword)

	_, err = client.Do(ctx, Request{
		Method:   http.MethodPut,
		Path:     "/Products/1",
		Body:     Form{"name": "Milk", "image": File{Name: "milk.png", ContentType: "image/png", Content: []byte("png")}},
		Encoding: EncodingMultipart,
	})
	require.NoError(t, err)
	assert.Equal(t, "milk.png", fileName)
	assert.Equal(t, "png", fileBody)
}

func TestNonSuccessCarriesBackendErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/with-list":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"errors":["Name is required","Name is too short"]}`)
		case "/api/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "<html>oops</html>")
		}
	}, nil)

	ctx := context.Background()
	_, err := client.Do(ctx, Request{Path: "/with-list"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, http.StatusBadRequest, typed.Status())
	assert.Equal(t, []string{"Name is required", "Name is too short"}, typed.Messages())
	assert.Equal(t, "Name is required; Name is too short", pkgerrors.UserMessage(err))

	_, err = client.Do(ctx, Request{Path: "/missing"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, pkgerrors.GenericMessage, pkgerrors.UserMessage(err))

	_, err = client.Do(ctx, Request{Path: "/broken"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
	assert.Equal(t, pkgerrors.GenericMessage, pkgerrors.UserMessage(err))
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	client, err := NewClient(base, nil)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), Request{Path: "/Categories"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTransport))
	assert.Equal(t, pkgerrors.GenericMessage, pkgerrors.UserMessage(err))
}

func TestCallsAreMeasured(t *testing.T) {
	reg := prometheus.NewRegistry()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, nil,
		WithMetrics(metrics.NewClientMetrics(reg)))

	_, err := client.Do(context.Background(), Request{Path: "/Order/today", Name: "Order.today"})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() == "shopadmin_api_requests_total" {
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(1), total)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ", nil)
	assert.Error(t, err)
}

func TestOversizedSuccessBodyIsTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 65))
	}, nil, WithResponseLimit(64))

	_, err := client.Do(context.Background(), Request{Path: "/Product"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTransport))
	assert.Equal(t, pkgerrors.GenericMessage, pkgerrors.UserMessage(err))

	exact := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 64))
	}, nil, WithResponseLimit(64))
	resp, err := exact.Do(context.Background(), Request{Path: "/Product"})
	require.NoError(t, err)
	assert.Len(t, resp.Body, 64)
}
