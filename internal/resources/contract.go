package resources

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/angelmondragon/shopadmin/pkg/transport"
)

// Endpoint is one HTTP operation of a resource. Path may contain an {id} placeholder.
type Endpoint struct {
	Method   string
	Path     string
	Encoding transport.Encoding
	// ArrayBody wraps the input in a JSON array (Products/AddProducts).
	ArrayBody bool
	// IDInBody sends the id as the body's "id" field instead of in the path.
	IDInBody bool
}

func (e Endpoint) IsZero() bool {
	return e.Method == "" && e.Path == ""
}

// Resolve substitutes id into the path.
func (e Endpoint) Resolve(id int64) string {
	return strings.ReplaceAll(e.Path, "{id}", strconv.FormatInt(id, 10))
}

// BulkDelete describes how ids are sent for deletion. Field names the repeated
// multipart field; RawArray sends a bare JSON array instead.
type BulkDelete struct {
	Endpoint
	Field    string
	RawArray bool
}

// Body renders ids in the contract's encoding.
func (b BulkDelete) Body(ids []int64) any {
	if b.RawArray {
		return ids
	}
	field := b.Field
	if field == "" {
		field = "ids"
	}
	return transport.Form{field: ids}
}

// Contract is the full HTTP surface of one resource. Every encoding is stated
// here rather than inferred at call sites.
type Contract struct {
	Resource string
	List     Endpoint
	Get      Endpoint
	Create   Endpoint
	Update   Endpoint
	// UpdateWithFile is used instead of Update when the input carries an attachment.
	UpdateWithFile Endpoint
	Delete         BulkDelete
}

func standardContract(resource, collection, deletePath string) Contract {
	item := collection + "/{id}"
	return Contract{
		Resource: resource,
		List:     Endpoint{Method: http.MethodGet, Path: collection},
		Get:      Endpoint{Method: http.MethodGet, Path: item},
		Create:   Endpoint{Method: http.MethodPost, Path: collection},
		Update:   Endpoint{Method: http.MethodPut, Path: item},
		Delete: BulkDelete{
			Endpoint: Endpoint{Method: http.MethodDelete, Path: deletePath, Encoding: transport.EncodingMultipart},
			Field:    "ids",
		},
	}
}

var (
	CategoryContract = standardContract("Category", "/Categories", "/Categories/delete-multiple")
	MerchantContract = standardContract("Merchant", "/Merchant", "/Merchant/delete-multiple")
	CustomerContract = standardContract("Customer", "/Customer", "/Customer/delete-multiple")
	PurchaseContract = standardContract("Purchase", "/Purchase", "/Purchase/delete-multiple")
	PaymentContract  = standardContract("Payment", "/Payments", "/Payments/delete-multiple")
	ExpenseContract  = standardContract("Expense", "/expenses", "/Expenses/delete-multiple")

	ProductContract = func() Contract {
		c := standardContract("Product", "/Products", "/Products/delete-multiple")
		c.Create = Endpoint{Method: http.MethodPost, Path: "/Products/AddProducts", ArrayBody: true}
		c.UpdateWithFile = Endpoint{Method: http.MethodPut, Path: "/Products/{id}", Encoding: transport.EncodingMultipart}
		return c
	}()

	OrderContract = func() Contract {
		c := standardContract("Order", "/Order", "/Order")
		c.Delete = BulkDelete{
			Endpoint: Endpoint{Method: http.MethodDelete, Path: "/Order"},
			RawArray: true,
		}
		return c
	}()

	UserContract = Contract{
		Resource: "User",
		List:     Endpoint{Method: http.MethodGet, Path: "/Admin/getUsers"},
		Get:      Endpoint{Method: http.MethodGet, Path: "/Admin/getUserInfo/{id}"},
		Create:   Endpoint{Method: http.MethodPost, Path: "/Admin/register", Encoding: transport.EncodingMultipart},
		Update:   Endpoint{Method: http.MethodPut, Path: "/Admin/updateUserInfo", Encoding: transport.EncodingMultipart, IDInBody: true},
		Delete: BulkDelete{
			Endpoint: Endpoint{Method: http.MethodDelete, Path: "/Admin/deleteUsers", Encoding: transport.EncodingMultipart},
			Field:    "userIds",
		},
	}
)

// Contracts indexes every resource contract by lower-case resource name.
var Contracts = map[string]Contract{
	"category": CategoryContract,
	"merchant": MerchantContract,
	"product":  ProductContract,
	"customer": CustomerContract,
	"order":    OrderContract,
	"purchase": PurchaseContract,
	"payment":  PaymentContract,
	"expense":  ExpenseContract,
	"user":     UserContract,
}

// ResourceNames lists the keys of Contracts in sorted order.
func ResourceNames() []string {
	names := make([]string, 0, len(Contracts))
	for name := range Contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Auxiliary endpoints outside the per-resource contracts.
const (
	PathTodayOrders       = "/Order/today"
	PathProfits           = "/Order/profits"
	PathInvoice           = "/Order/{id}/invoice"
	PathGenerateInvoice   = "/Order/generate/{id}"
	PathMerchantPurchases = "/Merchant/{id}/purchases"
	PathUserSessions      = "/Admin/all-users-session-data"
	PathLogin             = "/Account/login"
	PathLogout            = "/Account/logout"
	PathForgotPassword    = "/Account/forgetPassword"
	PathResetPassword     = "/Account/resetPassword"
)
