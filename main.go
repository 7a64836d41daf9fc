package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookcourier/backend/config"
	"github.com/bookcourier/backend/handlers"
	"github.com/bookcourier/backend/identity"
	"github.com/bookcourier/backend/middleware"
	"github.com/bookcourier/backend/service"
	"github.com/bookcourier/backend/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("mongodb:", err)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Println("mongodb disconnect:", err)
		}
	}()

	var s3Service *service.S3Service
	if cfg.S3Bucket != "" {
		s3Service, err = service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			log.Fatal("s3:", err)
		}
	} else {
		log.Println("warning: AWS_S3_BUCKET not set; cover uploads will be unavailable")
	}

	verifier := identity.NewJWTVerifier(cfg.JWTSecret)

	usersHandler := &handlers.UsersHandler{DB: db}
	booksHandler := &handlers.BooksHandler{DB: db, S3: s3Service}
	ordersHandler := &handlers.OrdersHandler{DB: db}
	wishlistHandler := &handlers.WishlistHandler{DB: db}
	reviewsHandler := &handlers.ReviewsHandler{DB: db}
	invoicesHandler := &handlers.InvoicesHandler{DB: db}
	coversHandler := &handlers.CoversHandler{
		DB:       db,
		S3:       s3Service,
		MaxBytes: cfg.MaxUploadMB * 1024 * 1024,
	}

	r := chi.NewRouter()
	r.Use(middleware.AllowAll())
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("BookCourier Server is Running!"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public reads
	r.Get("/allbooks", booksHandler.AllBooks)
	r.Get("/latestbooks", booksHandler.LatestBooks)
	r.Get("/book/{id}", booksHandler.Get)
	r.Get("/reviews", reviewsHandler.List)
	r.Get("/books/{id}/cover", coversHandler.Get)

	// Everything else requires a verified bearer credential
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(verifier))

		r.Get("/user", usersHandler.Me)

		r.Get("/admin/users", usersHandler.List)
		r.Patch("/admin/users/{id}/role", usersHandler.UpdateRole)
		r.Get("/admin/books", booksHandler.AdminList)
		r.Patch("/admin/books/{id}/status", booksHandler.UpdateStatus)
		r.Delete("/admin/books/{id}", booksHandler.Delete)

		r.Post("/books", booksHandler.Create)
		r.Get("/mybooks", booksHandler.Mine)
		r.Patch("/books/{id}", booksHandler.Update)
		r.Post("/books/{id}/cover", coversHandler.Upload)

		r.Get("/librarian/orders", ordersHandler.LibrarianList)
		r.Patch("/orders/{id}/status", ordersHandler.UpdateStatus)
		r.Patch("/orders/{id}/cancel", ordersHandler.Cancel)
		r.Patch("/orders/{id}/pay", ordersHandler.Pay)
		r.Post("/order", ordersHandler.Create)
		r.Get("/myorders", ordersHandler.Mine)

		r.Post("/reviews", reviewsHandler.Create)

		r.Post("/wishlist", wishlistHandler.Add)
		r.Get("/wishlist", wishlistHandler.List)
		r.Delete("/wishlist/{id}", wishlistHandler.Delete)

		r.Get("/myinvoices", invoicesHandler.Mine)
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
