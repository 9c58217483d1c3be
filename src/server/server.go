package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"investtracker/src/config"
	"investtracker/src/handler"
	"investtracker/src/repository"
)

// Router builds the full route tree over the given DB. Separated from
// StartServer so tests can mount it on an in-memory database.
func Router(db *gorm.DB) chi.Router {
	users := repository.NewUserRepository(db)
	instruments := repository.NewInstrumentRepository(db)
	orders := repository.NewOrderRepository(db)
	portfolios := repository.NewPortfolioRepository(db)
	assets := repository.NewAssetRepository(db)
	summaries := repository.NewSummaryRepository(db)

	r := chi.NewRouter()

	// === Global Middleware ===
	r.Use(middleware.StripSlashes)
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	}))

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("\"/healthcheck\" error")
		}
	})

	r.Get("/login", handler.LoginHandler())

	r.Route("/users", func(r chi.Router) {
		r.Get("/", handler.ListUsersHandler(users))
		r.Post("/", handler.CreateUserHandler(users))

		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", handler.GetUserHandler(users))
			r.Put("/", handler.UpdateUserHandler(users))
			r.Delete("/", handler.DeleteUserHandler(users))

			r.Route("/portfolio", func(r chi.Router) {
				r.Post("/", handler.CreatePortfolioHandler(users, portfolios))
				r.Get("/", handler.GetPortfolioHandler(users, portfolios))

				r.Route("/assets", func(r chi.Router) {
					r.Get("/", handler.ListAssetsHandler(users, portfolios, assets))
					r.Post("/", handler.CreateAssetHandler(users, portfolios, instruments, assets))
					r.Delete("/", handler.DeleteAssetsHandler(users, portfolios, assets))

					r.Route("/{assetID}", func(r chi.Router) {
						r.Get("/", handler.GetAssetHandler(users, portfolios, assets))
						r.Put("/", handler.UpdateAssetHandler(users, portfolios, assets))
						r.Delete("/", handler.DeleteAssetHandler(users, portfolios, assets))
					})
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", handler.ListOrdersHandler(users, orders))
				r.Post("/", handler.CreateOrderHandler(users, instruments, orders))

				r.Route("/{orderID}", func(r chi.Router) {
					r.Get("/", handler.GetOrderHandler(users, orders))
					r.Put("/", handler.UpdateOrderHandler(users, orders))
					r.Delete("/", handler.DeleteOrderHandler(users, orders))
				})
			})

			r.Route("/summary", func(r chi.Router) {
				r.Get("/", handler.GetSummaryHandler(users, summaries))
				r.Post("/refresh", handler.RefreshSummaryHandler(users, portfolios, assets, instruments, summaries))
			})
		})
	})

	r.Route("/instruments", func(r chi.Router) {
		r.Post("/", handler.CreateInstrumentHandler(instruments))
		r.Get("/{instrumentID}", handler.GetInstrumentHandler(instruments))
		r.Delete("/{instrumentID}", handler.DeleteInstrumentHandler(instruments))
	})

	return r
}

// StartServer runs the HTTP API until SIGINT/SIGTERM, then shuts down
// gracefully.
func StartServer(cfg config.Config, db *gorm.DB) {
	r := Router(db)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
