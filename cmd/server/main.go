package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	config "github.com/postdeckhq/postdeck/configs"
	"github.com/postdeckhq/postdeck/internal/api/handlers"
	job "github.com/postdeckhq/postdeck/internal/jobs"
	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/queue"
	"github.com/postdeckhq/postdeck/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	app := fiber.New(fiber.Config{
		BodyLimit: 100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	draftService := service.NewDraftService(service.DraftConfig{
		Debounce:  time.Duration(cfg.DebounceMs) * time.Millisecond,
		MaxDrafts: cfg.MaxDrafts,
	})
	uploadService := service.NewUploadService(service.UploadConfig{
		TickInterval: time.Duration(cfg.UploadTickMs) * time.Millisecond,
	})
	schedulerService := service.NewSchedulerService(models.ScheduleConfig{
		TimeSlots:      service.DefaultTimeSlots(cfg.SlotHorizonDays),
		MaxPostsPerDay: cfg.MaxPostsPerDay,
	})
	r2Service := service.NewR2Service(*cfg)
	galleryService := service.NewGalleryService()

	var asynqClient *asynq.Client
	if cfg.RedisURI != "" {
		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		asynqClient = asynq.NewClient(redisConn)
		defer asynqClient.Close()
	}

	hooks := service.Hooks{
		OnPostScheduled: func(post models.Post) {
			if asynqClient == nil || post.ScheduledTime == nil {
				log.Printf("Post scheduled: %s", post.ID)
				return
			}
			payload := queue.DeliverPostPayload{
				PostID:        post.ID,
				Content:       post.Content,
				Images:        post.Images,
				ScheduledTime: *post.ScheduledTime,
			}
			delay := time.Until(*post.ScheduledTime)
			if delay < 0 {
				delay = 0
			}
			if err := queue.EnqueuePost(asynqClient, payload, delay); err != nil {
				log.Printf("Error enqueueing post %s: %v", post.ID, err)
			}
		},
		OnPostPublished: func(post models.Post) {
			log.Printf("Post published: %s", post.ID)
			if r2Service.Enabled() {
				go func() {
					if err := r2Service.ArchivePost(context.Background(), post); err != nil {
						log.Printf("Error archiving post %s: %v", post.ID, err)
					}
				}()
			}
		},
	}

	composerService := service.NewComposerService(service.ComposerConfig{
		PublishLatency:    time.Duration(cfg.PublishLatencyMs) * time.Millisecond,
		AnalyticsInterval: time.Duration(cfg.AnalyticsIntervalMs) * time.Millisecond,
	}, draftService, uploadService, schedulerService, hooks, nil)

	// Open an empty editing session so the composer is usable right away.
	if _, err := composerService.NewPost(); err != nil {
		log.Fatalf("Failed to create initial post: %v", err)
	}

	api := app.Group("/api")

	compose := handlers.NewComposeHandler(composerService)
	api.Get("/compose", compose.GetState)
	api.Post("/compose/new", compose.NewPost)
	api.Post("/compose/content", compose.UpdateContent)
	api.Post("/compose/images", compose.UploadImages)
	api.Post("/compose/draft", compose.LoadDraft)
	api.Post("/compose/schedule", compose.SchedulePost)
	api.Post("/compose/publish", compose.PublishPost)

	drafts := handlers.NewDraftHandler(draftService)
	api.Get("/drafts", drafts.ListDrafts)
	api.Post("/drafts/remove", drafts.RemoveDraft)

	schedule := handlers.NewScheduleHandler(schedulerService)
	api.Get("/schedule", schedule.ListScheduled)
	api.Get("/schedule/slots/next", schedule.NextSlot)
	api.Get("/schedule/slots/availability", schedule.SlotAvailability)
	api.Get("/schedule/conflicts", schedule.Conflicts)
	api.Post("/schedule/unschedule", schedule.Unschedule)

	gallery := handlers.NewGalleryHandler(galleryService)
	api.Get("/gallery", gallery.ListImages)
	api.Post("/gallery/upload", gallery.UploadImage)
	api.Post("/gallery/describe", gallery.UpdateDescription)

	// cron jobs
	digestJob := job.NewScheduleDigestJob(schedulerService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", digestJob.Run)
	c.Start()

	if cfg.RedisURI != "" {
		queueW := queue.NewQueue(r2Service)
		deliveries := handlers.NewDeliveryHandler(queueW)
		api.Get("/deliveries", deliveries.ListDeliveries)

		go func() {
			server := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisURI}, asynq.Config{
				Concurrency: 10,
			})

			mux := asynq.NewServeMux()
			mux.HandleFunc(queue.TaskTypeDeliverPost, queueW.HandleDeliverPostTask)

			log.Println("Starting the Asynq server...")
			if err := server.Run(mux); err != nil {
				log.Fatalf("Could not start Asynq server: %v", err)
			}
		}()
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, c, composerService, draftService, uploadService)
}

func gracefulShutdown(app *fiber.App, c *cron.Cron, composer service.ComposerService, drafts service.DraftService, uploads service.UploadService) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	c.Stop()
	composer.Close()
	drafts.Close()
	uploads.Close()
	log.Println("Server shutdown complete.")
}
