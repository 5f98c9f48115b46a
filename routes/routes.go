package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-learning-backend/controllers"
	"github.com/vnkhanh/e-learning-backend/ws"
)

// Handlers carries every constructed controller; nothing here is a
// package global.
type Handlers struct {
	Auth      *controllers.AuthController
	Lessons   *controllers.LessonController
	Quizzes   *controllers.QuizController
	Questions *controllers.QuestionController
	Generate  *controllers.GenerateController
	WS        *ws.Handler

	RequireAuth gin.HandlerFunc
}

func SetupRouter(r *gin.Engine, h *Handlers) *gin.Engine {
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Service is running"})
	})
	r.GET("/healthcheck", controllers.HealthCheck)

	auth := r.Group("/auth")
	{
		auth.POST("/users/register/initiate", h.Auth.RegisterInitiate)
		auth.POST("/users/register/confirm", h.Auth.RegisterConfirm)
		auth.POST("/users/login", h.Auth.Login)
		auth.POST("/users/password-reset/initiate", h.Auth.PasswordResetInitiate)
		auth.POST("/users/password-reset/confirm", h.Auth.PasswordResetConfirm)

		me := auth.Group("/users/me", h.RequireAuth)
		{
			me.GET("", h.Auth.GetMe)
			me.PATCH("", h.Auth.UpdateMe)
			me.DELETE("", h.Auth.DeleteMe)
		}
	}

	generate := r.Group("/generate", h.RequireAuth)
	{
		generate.POST("", h.Generate.Generate)
		generate.POST("/document", h.Generate.GenerateFromDocument)
		generate.GET("/jobs/:id", h.Generate.JobStatus)
	}

	lessons := r.Group("/lessons", h.RequireAuth)
	{
		lessons.GET("", h.Lessons.List)
		lessons.POST("", h.Lessons.Create)
		lessons.GET("/:id", h.Lessons.Get)
		lessons.PUT("/:id", h.Lessons.Update)
		lessons.DELETE("/:id", h.Lessons.Delete)
		lessons.GET("/:id/audio", h.Lessons.Audio)
	}

	quizzes := r.Group("/quizzes", h.RequireAuth)
	{
		quizzes.GET("/lesson/:lesson_id", h.Quizzes.GetByLesson)
		quizzes.POST("", h.Quizzes.Create)
		quizzes.GET("/:id", h.Quizzes.Get)
		quizzes.PUT("/:id", h.Quizzes.Update)
		quizzes.DELETE("/:id", h.Quizzes.Delete)
		quizzes.POST("/:id/submit", h.Quizzes.Submit)
	}

	questions := r.Group("/questions", h.RequireAuth)
	{
		questions.GET("/quiz/:quiz_id", h.Questions.ListByQuiz)
		questions.POST("", h.Questions.Create)
		questions.GET("/:id", h.Questions.Get)
		questions.PUT("/:id", h.Questions.Update)
		questions.DELETE("/:id", h.Questions.Delete)
	}

	r.GET("/ws/jobs/:id", h.WS.WatchJob)

	return r
}
