package routes

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/shopadmin/api/controllers"
	"github.com/angelmondragon/shopadmin/api/middleware"
	"github.com/angelmondragon/shopadmin/internal/backend"
	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/pkg/config"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UploadsPrefix is the URL path product images are served under.
const UploadsPrefix = "uploads"

// Options carries the optional collaborators of the router.
type Options struct {
	// Pingers are checked by /health/ready.
	Pingers map[string]controllers.Pinger
	// Registry receives the HTTP metrics and is served on /metrics. Nil
	// disables both.
	Registry *prometheus.Registry
}

func NewRouter(cfg *config.ServerConfig, logg *logger.Logger, svcs *backend.Services, opts Options) http.Handler {
	r := chi.NewRouter()

	var httpMetrics *middleware.HTTPMetrics
	if opts.Registry != nil {
		httpMetrics = middleware.NewHTTPMetrics(opts.Registry)
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Secure(cfg.App.IsProd()),
		middleware.CORS(cfg.MockAPI.AllowedOrigins),
		httpMetrics.Handler,
	)

	r.Get("/health/live", controllers.HealthLive(cfg.App.Env))
	r.Get("/health/ready", controllers.HealthReady(cfg.App.Env, logg, opts.Pingers))
	if opts.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	if dir := strings.TrimSpace(cfg.MockAPI.UploadDir); dir != "" {
		prefix := "/" + UploadsPrefix + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(dir))))
	}

	basePath := "/" + strings.Trim(cfg.MockAPI.BasePath, "/")
	if basePath == "/" {
		apiRoutes(r, cfg, logg, svcs)
	} else {
		r.Route(basePath, func(r chi.Router) {
			apiRoutes(r, cfg, logg, svcs)
		})
	}

	return r
}

func apiRoutes(r chi.Router, cfg *config.ServerConfig, logg *logger.Logger, svcs *backend.Services) {
	r.Group(func(r chi.Router) {
		r.With(middleware.LoginRateLimit(cfg.MockAPI.LoginRateLimit, cfg.MockAPI.LoginRateWindow, logg)).
			Post(resources.PathLogin, controllers.AccountLogin(svcs.Account, logg))
		r.With(middleware.LoginRateLimit(cfg.MockAPI.LoginRateLimit, cfg.MockAPI.LoginRateWindow, logg)).
			Post(resources.PathForgotPassword, controllers.AccountForgotPassword(svcs.Account, logg))
		r.Post(resources.PathResetPassword, controllers.AccountResetPassword(svcs.Account, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, svcs.Account, logg))

		r.Post(resources.PathLogout, controllers.AccountLogout(svcs.Account, logg))

		r.Get(resources.PathTodayOrders, controllers.TodayOrders(svcs.Reports, logg))
		r.Get(resources.PathProfits, controllers.Profits(svcs.Reports, logg))
		r.Get(resources.PathInvoice, controllers.Invoice(svcs.Reports, logg))
		r.Get(resources.PathGenerateInvoice, controllers.GenerateInvoice(svcs.Reports, logg))
		r.Get(resources.PathMerchantPurchases, controllers.MerchantPurchases(svcs.Reports, logg))

		mount(r, controllers.NewResource(svcs.Categories, resources.CategoryContract, logg))
		mount(r, controllers.NewResource(svcs.Merchants, resources.MerchantContract, logg))
		mount(r, controllers.NewResource(svcs.Customers, resources.CustomerContract, logg))
		mount(r, controllers.NewResource(svcs.Products, resources.ProductContract, logg))
		mount(r, controllers.NewResource(svcs.Orders, resources.OrderContract, logg))
		mount(r, controllers.NewResource(svcs.Purchases, resources.PurchaseContract, logg))
		mount(r, controllers.NewResource(svcs.Payments, resources.PaymentContract, logg))
		mount(r, controllers.NewResource(svcs.Expenses, resources.ExpenseContract, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			mount(r, controllers.NewResource(svcs.Users, resources.UserContract, logg))
			r.Get(resources.PathUserSessions, controllers.UserSessions(svcs.Sessions, logg))
		})
	})
}

// mount registers every endpoint of a resource contract. The server and the
// client share the contract table, so paths and methods cannot drift apart.
func mount[E, I any](r chi.Router, h *controllers.Resource[E, I]) {
	c := h.Contract()
	r.Method(c.List.Method, c.List.Path, h.List())
	r.Method(c.Get.Method, c.Get.Path, h.Get())
	r.Method(c.Create.Method, c.Create.Path, h.Create())
	r.Method(c.Update.Method, c.Update.Path, h.Update())
	if withFile := c.UpdateWithFile; !withFile.IsZero() && (withFile.Method != c.Update.Method || withFile.Path != c.Update.Path) {
		r.Method(withFile.Method, withFile.Path, h.Update())
	}
	r.Method(c.Delete.Method, c.Delete.Path, h.DeleteMany())
}
