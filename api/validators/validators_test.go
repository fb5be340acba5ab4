package validators

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/shopadmin/internal/resources"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func multipartRequest(t *testing.T, fields map[string][]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	for key, name := range files {
		part, err := w.CreateFormFile(key, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("file:" + name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	r := httptest.NewRequest(http.MethodPut, "/", &buf)
	r.Header.Set("Content-Type", w.FormDataContentType())
	return r
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	var in resources.CategoryInput
	require.NoError(t, DecodeBody(jsonRequest(`{"name":"Dairy"}`), &in))
	assert.Equal(t, "Dairy", in.Name)

	err := DecodeBody(jsonRequest(`{"name":""}`), &resources.CategoryInput{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, []string{"name is required"}, pkgerrors.As(err).Messages())

	err = DecodeBody(jsonRequest(`{"name":"x","extra":1}`), &resources.CategoryInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "unknown fields are rejected")
}

func TestDecodeJSONArrayPrefixesIndex(t *testing.T) {
	items, err := DecodeJSONArray[resources.CategoryInput](jsonRequest(`[{"name":"a"},{"name":"b"}]`))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = DecodeJSONArray[resources.CategoryInput](jsonRequest(`[{"name":"a"},{"name":""}]`))
	require.Error(t, err)
	assert.Equal(t, []string{"[1] name is required"}, pkgerrors.As(err).Messages())

	_, err = DecodeJSONArray[resources.CategoryInput](jsonRequest(`[]`))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeFormFillsScalarsAndFiles(t *testing.T) {
	r := multipartRequest(t, map[string][]string{
		"name":          {"Cheddar"},
		"quantity":      {"7"},
		"isStock":       {"true"},
		"purchasePrice": {"2.10"},
		"sellingPrice":  {"3.5"},
		"categoryId":    {"4"},
		"uniqueNumber":  {"CH-1"},
	}, map[string]string{"image": "cheddar.png"})

	var in resources.ProductInput
	require.NoError(t, DecodeBody(r, &in))
	assert.Equal(t, "Cheddar", in.Name)
	assert.Equal(t, 7, in.Quantity)
	assert.True(t, in.IsStock)
	assert.True(t, in.SellingPrice.Equal(decimal.RequireFromString("3.5")))
	assert.EqualValues(t, 4, in.CategoryID)
	require.NotNil(t, in.Image)
	assert.Equal(t, "cheddar.png", in.Image.Name)
	assert.Equal(t, "file:cheddar.png", string(in.Image.Content))
}

func TestDecodeFormReportsBadValues(t *testing.T) {
	r := multipartRequest(t, map[string][]string{
		"firstName": {"Ada"}, "lastName": {"L"}, "email": {"ada@shop.test"}, "role": {"admin"},
	}, nil)
	err := DecodeBody(r, &resources.UserInput{})
	require.Error(t, err)
	assert.Equal(t, []string{"role must be an integer"}, pkgerrors.As(err).Messages())
}

func TestDecodeIDs(t *testing.T) {
	r := multipartRequest(t, map[string][]string{"ids": {"4", "5"}}, nil)
	ids, err := DecodeIDs(r, "ids")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, ids)

	ids, err = DecodeIDs(jsonRequest(`[9, 10]`), "ids")
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 10}, ids)

	_, err = DecodeIDs(multipartRequest(t, map[string][]string{"ids": {"x"}}, nil), "ids")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = DecodeIDs(jsonRequest(`[]`), "ids")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPathID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/Categories/12", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "12")
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	id, err := PathID(r, "id")
	require.NoError(t, err)
	assert.EqualValues(t, 12, id)

	rctx.URLParams = chi.RouteParams{}
	rctx.URLParams.Add("id", "-3")
	_, err = PathID(r, "id")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListQueryNormalizes(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/Categories?PageNumber=0&PageSize=500&Search=%20milk%20&SortField=name&SortDescending=true", nil)
	q := ListQuery(r)
	assert.Equal(t, 1, q.PageNumber)
	assert.Equal(t, 100, q.PageSize)
	assert.Equal(t, "milk", q.Search)
	assert.True(t, q.SortDescending)
}
