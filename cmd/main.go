package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/vnkhanh/e-learning-backend/config"
	"github.com/vnkhanh/e-learning-backend/controllers"
	"github.com/vnkhanh/e-learning-backend/middleware"
	"github.com/vnkhanh/e-learning-backend/routes"
	"github.com/vnkhanh/e-learning-backend/services"
	"github.com/vnkhanh/e-learning-backend/utils"
	"github.com/vnkhanh/e-learning-backend/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("SECRET_KEY is not set")
	}

	db, err := config.OpenDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("postgreSQL connected & migrated successfully!")

	mailer := &utils.SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Email:    cfg.SMTPEmail,
		Password: cfg.SMTPPassword,
	}

	var audioStore services.AudioStore
	if cfg.AudioStorage == "supabase" {
		audioStore = &services.SupabaseAudioStore{URL: cfg.SupabaseURL, Key: cfg.SupabaseKey}
	} else {
		audioStore = &services.LocalAudioStore{Dir: cfg.AudioDir}
	}

	hub := ws.NewHub()
	jobs := services.NewJobRegistry()
	pool := services.NewWorkerPool(cfg.GenerateWorkers)
	defer pool.Stop()

	generator := &services.LessonGenerator{
		DB:    db,
		Text:  services.NewGeminiClient(cfg.GeminiAPIKey),
		TTS:   &services.GoogleTTS{CredentialsFile: cfg.GoogleCredentials},
		Audio: audioStore,
		Jobs:  jobs,
		Notify: func(job services.GenerationJob) {
			hub.BroadcastJSON(job.ID.String(), job)
		},
	}

	h := &routes.Handlers{
		Auth: &controllers.AuthController{
			DB:        db,
			Mailer:    mailer,
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.TokenTTL,
		},
		Lessons:   &controllers.LessonController{DB: db, Generator: generator},
		Quizzes:   &controllers.QuizController{DB: db},
		Questions: &controllers.QuestionController{DB: db},
		Generate:  &controllers.GenerateController{Generator: generator, Jobs: jobs, Pool: pool},
		WS:        &ws.Handler{Hub: hub, JWTSecret: cfg.JWTSecret},

		RequireAuth: middleware.RequireAuth(db, cfg.JWTSecret),
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r = routes.SetupRouter(r, h)

	log.Println("Server running at port " + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
