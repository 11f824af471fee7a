package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"pdfarchive/internal/config"
	"pdfarchive/internal/handler"
	"pdfarchive/internal/repository"
	"pdfarchive/internal/service"
	"pdfarchive/internal/service/s3"
)

func connectWithRetry(dsn string, maxAttempts int, delay time.Duration) (*sqlx.DB, error) {
	// Сначала подключаемся к базе postgres (системная база, которая всегда существует)
	pgDSN := strings.Replace(dsn, "dbname=pdfarchive", "dbname=postgres", 1)
	pgDB, err := sqlx.Connect("postgres", pgDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres database: %v", err)
	}
	defer pgDB.Close()

	// Проверяем, существует ли база данных pdfarchive
	var exists bool
	err = pgDB.Get(&exists, "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = 'pdfarchive')")
	if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %v", err)
	}

	// Если базы нет, создаем её
	if !exists {
		log.Println("Database pdfarchive does not exist, creating...")
		_, err = pgDB.Exec("CREATE DATABASE pdfarchive")
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	// Теперь пытаемся подключиться к базе pdfarchive
	var db *sqlx.DB
	for i := 0; i < maxAttempts; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxAttempts, err)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %v", maxAttempts, err)
}

func runMigrations(cfg *config.Config) error {
	databaseURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	var m *migrate.Migrate
	var err error

	for i := 0; i < 5; i++ {
		m, err = migrate.New("file://migrations", databaseURL)
		if err == nil {
			break
		}
		log.Printf("Failed to create migrate instance (attempt %d/5): %v", i+1, err)
		time.Sleep(time.Second * 5)
	}

	if err != nil {
		return fmt.Errorf("failed to create migrate instance after retries: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		log.Printf("Found dirty database state at version %d, attempting to force version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func main() {
	// Загружаем конфигурации
	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Подключаемся к базе данных
	db, err := connectWithRetry(appConfig.Database.GetDSN(), 5, time.Second*5)
	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}
	defer db.Close()

	if err := runMigrations(appConfig); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Инициализация S3 клиента
	s3Config, err := s3.NewConfig(".s3.env")
	if err != nil {
		log.Fatalf("Failed to load S3 config: %v", err)
	}

	s3Client, err := s3.NewClient(s3Config)
	if err != nil {
		log.Fatalf("Failed to create S3 client: %v", err)
	}

	// Инициализация репозиториев
	departmentRepo := repository.NewDepartmentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	metadataRepo := repository.NewMetadataRepository(db)
	tagRepo := repository.NewTagRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)

	// Инициализация сервисов
	departmentService := service.NewDepartmentService(departmentRepo)
	subjectService := service.NewSubjectService(subjectRepo)
	folderService := service.NewFolderService(folderRepo, departmentRepo, subjectRepo)
	documentService := service.NewDocumentService(documentRepo, folderRepo, subjectRepo, metadataRepo, tagRepo, s3Client)
	metadataService := service.NewMetadataService(metadataRepo, documentRepo)
	tagService := service.NewTagService(tagRepo, documentRepo)
	statisticsService := service.NewStatisticsService(statsRepo, departmentRepo, subjectRepo)

	// Инициализация хендлеров
	departmentHandler := handler.NewDepartmentHandler(departmentService)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	folderHandler := handler.NewFolderHandler(folderService)
	documentHandler := handler.NewDocumentHandler(documentService)
	metadataHandler := handler.NewMetadataHandler(metadataService)
	tagHandler := handler.NewTagHandler(tagService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Настройка HTTP роутера
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// HTTP маршруты
	r.Route("/api", func(r chi.Router) {
		r.Route("/departments", func(r chi.Router) {
			r.Post("/", departmentHandler.Create)
			r.Get("/", departmentHandler.List)
			r.Get("/{id}", departmentHandler.Get)
			r.Put("/{id}", departmentHandler.Update)
			r.Delete("/{id}", departmentHandler.Delete)
		})

		r.Route("/subjects", func(r chi.Router) {
			r.Post("/", subjectHandler.Create)
			r.Get("/", subjectHandler.List)
			r.Get("/{id}", subjectHandler.Get)
			r.Put("/{id}", subjectHandler.Update)
			r.Delete("/{id}", subjectHandler.Delete)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Post("/", folderHandler.Create)
			r.Get("/", folderHandler.List)
			r.Get("/{id}", folderHandler.Get)
			r.Put("/{id}", folderHandler.Update)
			r.Delete("/{id}", folderHandler.Delete)
			r.Post("/{id}/documents", documentHandler.Upload)
			r.Get("/{id}/documents", documentHandler.ListByFolder)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/recent", documentHandler.Recent)
			r.Get("/without-metadata", documentHandler.WithoutMetadata)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", documentHandler.Get)
				r.Put("/", documentHandler.Update)
				r.Delete("/", documentHandler.Delete)
				r.Get("/download", documentHandler.Download)
				r.Get("/preview", documentHandler.Preview)

				r.Route("/metadata", func(r chi.Router) {
					r.Get("/", metadataHandler.Get)
					r.Post("/", metadataHandler.Set)
					r.Put("/", metadataHandler.SetBulk)
					r.Delete("/{key}", metadataHandler.Delete)
				})

				r.Route("/tags", func(r chi.Router) {
					r.Get("/", tagHandler.DocumentTags)
					r.Post("/", tagHandler.Attach)
					r.Delete("/{tagId}", tagHandler.Detach)
				})
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Post("/", tagHandler.Create)
			r.Get("/", tagHandler.List)
		})

		r.Route("/statistics", func(r chi.Router) {
			r.Get("/overview", statisticsHandler.Overview)
			r.Get("/by-subject", statisticsHandler.BySubject)
			r.Get("/by-date-range", statisticsHandler.ByDateRange)
			r.Get("/empty-folders", statisticsHandler.EmptyFolders)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Создаем HTTP сервер
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Server.Port),
		Handler: r,
	}

	// Канал для сигналов завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Запускаем HTTP сервер
	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server forced to shutdown: %v", err)
	}

	// Закрываем соединение с БД
	if err := db.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	}

	log.Println("Server exited properly")
}
