package resources

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"github.com/angelmondragon/shopadmin/pkg/transport"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method      string
	path        string
	query       map[string][]string
	contentType string
	body        []byte
	form        map[string][]string
	files       []string
}

func newFakeAPI(t *testing.T, reply func(w http.ResponseWriter, r *http.Request)) (*APIs, *[]captured) {
	t.Helper()
	var calls []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := captured{method: r.Method, path: r.URL.Path, query: r.URL.Query(), contentType: r.Header.Get("Content-Type")}
		if r.MultipartForm == nil && len(c.contentType) >= 19 && c.contentType[:19] == "multipart/form-data" {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			c.form = r.MultipartForm.Value
			for field := range r.MultipartForm.File {
				c.files = append(c.files, field)
			}
		} else {
			c.body, _ = io.ReadAll(r.Body)
		}
		calls = append(calls, c)
		w.Header().Set("Content-Type", "application/json")
		reply(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := transport.NewClient(srv.URL, nil)
	require.NoError(t, err)
	return NewAPIs(client), &calls
}

func TestListSendsQueryAndValidatesMetaData(t *testing.T) {
	apis, calls := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":[{"id":1,"name":"Dairy"}],"pageNumber":1,"pageSize":10,"totalCount":25,"totalPages":3}`)
	})

	out, err := apis.Categories.List(context.Background(), pagination.FromView(0, 10, "", "id", false))
	require.NoError(t, err)
	assert.Equal(t, 25, out.TotalCount)

	call := (*calls)[0]
	assert.Equal(t, "/Categories", call.path)
	assert.Equal(t, []string{"1"}, call.query["PageNumber"])
	assert.Equal(t, []string{"id"}, call.query["SortField"])
}

func TestListRejectsInconsistentPages(t *testing.T) {
	apis, _ := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":[],"pageNumber":1,"pageSize":10,"totalCount":25,"totalPages":7}`)
	})
	_, err := apis.Categories.List(context.Background(), pagination.Query{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDecode))
}

func TestProductCreateUsesArrayBody(t *testing.T) {
	apis, calls := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":9,"name":"Milk","sellingPrice":1.5,"categoryId":2,"category":{"id":2,"name":"Dairy"}}],"message":"created"}`)
	})

	out, err := apis.Products.Create(context.Background(), ProductInput{
		Name: "Milk", CategoryID: 2, UniqueNumber: "SKU-1", SellingPrice: decimal.RequireFromString("1.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), out.Data.ID)
	assert.Equal(t, "Dairy", out.Data.Category.Name)

	call := (*calls)[0]
	assert.Equal(t, "/Products/AddProducts", call.path)
	var sent []map[string]any
	require.NoError(t, json.Unmarshal(call.body, &sent))
	require.Len(t, sent, 1)
	assert.Equal(t, "Milk", sent[0]["name"])
	assert.Equal(t, 1.5, sent[0]["sellingPrice"], "money is sent as a JSON number")
	_, hasImage := sent[0]["image"]
	assert.False(t, hasImage)
}

func TestProductUpdateWithImageIsMultipart(t *testing.T) {
	apis, calls := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"id":3,"name":"Milk"},"message":"updated"}`)
	})
	ctx := context.Background()

	_, err := apis.Products.Update(ctx, 3, ProductInput{Name: "Milk", CategoryID: 1, UniqueNumber: "A"})
	require.NoError(t, err)
	_, err = apis.Products.Update(ctx, 3, ProductInput{
		Name: "Milk", CategoryID: 1, UniqueNumber: "A",
		Image: &transport.File{Name: "milk.png", Content: []byte("x")},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", (*calls)[0].contentType)
	second := (*calls)[1]
	assert.Equal(t, "/Products/3", second.path)
	assert.Equal(t, []string{"Milk"}, second.form["name"])
	assert.Equal(t, []string{"image"}, second.files)
}

func TestUserContractEncodings(t *testing.T) {
	apis, calls := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			_, _ = io.WriteString(w, `{"data":2,"message":"deleted"}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"id":5,"email":"a@b.c","role":0},"message":"ok"}`)
	})
	ctx := context.Background()

	_, err := apis.Users.Update(ctx, 5, UserInput{FirstName: "A", LastName: "B", Email: "a@b.c"})
	require.NoError(t, err)
	update := (*calls)[0]
	assert.Equal(t, http.MethodPut, update.method)
	assert.Equal(t, "/Admin/updateUserInfo", update.path)
	assert.Equal(t, []string{"5"}, update.form["id"])
	_, hasPassword := update.form["password"]
	assert.False(t, hasPassword)

	res, err := apis.Users.DeleteMany(ctx, []int64{4, 5})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Data)
	del := (*calls)[1]
	assert.Equal(t, "/Admin/deleteUsers", del.path)
	assert.Equal(t, []string{"4", "5"}, del.form["userIds"])
}

func TestOrderDeleteSendsRawArray(t *testing.T) {
	apis, calls := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":2,"message":"deleted"}`)
	})
	_, err := apis.Orders.DeleteMany(context.Background(), []int64{4, 5})
	require.NoError(t, err)

	call := (*calls)[0]
	assert.Equal(t, http.MethodDelete, call.method)
	assert.Equal(t, "/Order", call.path)
	assert.JSONEq(t, `[4,5]`, string(call.body))
}

func TestCategoryDeleteSendsRepeatedIDs(t *testing.T) {
	apis, calls := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":2,"message":"deleted"}`)
	})
	_, err := apis.Categories.DeleteMany(context.Background(), []int64{4, 5})
	require.NoError(t, err)
	assert.Equal(t, "/Categories/delete-multiple", (*calls)[0].path)
	assert.Equal(t, []string{"4", "5"}, (*calls)[0].form["ids"])

	_, err = apis.Categories.DeleteMany(context.Background(), nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Len(t, *calls, 1, "empty selection issues no request")
}

func TestGenerateInvoiceIsBinary(t *testing.T) {
	apis, calls := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="invoice-12.pdf"`)
		_, _ = io.WriteString(w, "%PDF-1.4")
	})
	att, err := apis.Reports.GenerateInvoice(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "invoice-12.pdf", att.Filename)
	assert.Equal(t, "/Order/generate/12", (*calls)[0].path)
}

func TestContractsCoverEveryResource(t *testing.T) {
	assert.Equal(t, []string{"category", "customer", "expense", "merchant", "order", "payment", "product", "purchase", "user"}, ResourceNames())
	for name, c := range Contracts {
		assert.False(t, c.List.IsZero(), name)
		assert.False(t, c.Get.IsZero(), name)
		assert.False(t, c.Create.IsZero(), name)
		assert.False(t, c.Update.IsZero(), name)
		assert.False(t, c.Delete.IsZero(), name)
	}
	assert.Equal(t, "/Expenses/delete-multiple", ExpenseContract.Delete.Path)
	assert.Equal(t, "/expenses/7", ExpenseContract.Get.Resolve(7))
}

func TestExpenseCategoryNames(t *testing.T) {
	c, ok := ParseExpenseCategory(" rent ")
	require.True(t, ok)
	assert.Equal(t, ExpenseRent, c)
	assert.Equal(t, "Other", ExpenseOther.String())
	assert.Equal(t, "Unknown", ExpenseCategory(42).String())
	assert.False(t, ExpenseCategory(-1).IsValid())
}
