package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/DvwN-Lee/OnlineExam-v2/internal/config"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/handler"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/middleware"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/response"
	"github.com/DvwN-Lee/OnlineExam-v2/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Taking   *handler.TakingHandler
	Scores   *handler.ScoresHandler
	Exam     *handler.ExamHandler
	Paper    *handler.PaperHandler
	Question *handler.QuestionHandler
	Subject  *handler.SubjectHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/me", handlers.Auth.Me)
		studentAPI.POST("/logout", handlers.Auth.Logout)
		studentAPI.GET("/exams", handlers.Exam.MyExams)
		studentAPI.GET("/exams/:exam_id/info", handlers.Taking.Info)
		studentAPI.GET("/exams/:exam_id/paper", handlers.Taking.Paper)
		studentAPI.POST("/exams/:exam_id/start", handlers.Taking.Start)
		studentAPI.PUT("/exams/:exam_id/draft", handlers.Taking.SaveDraft)
		studentAPI.POST("/exams/:exam_id/submit", handlers.Taking.Submit)
		studentAPI.GET("/exams/:exam_id/status", handlers.Taking.Status)
		studentAPI.GET("/exams/:exam_id/score", handlers.Scores.MyScoreDetail)
		studentAPI.GET("/scores", handlers.Scores.MyScores)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/exams/:exam_id/draft", handlers.WS.DraftStream)
	}

	// ─── 4. Teacher Group (JWT) ────────────────────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.GET("/me", handlers.Auth.Me)
		teacherAPI.POST("/logout", handlers.Auth.Logout)

		teacherAPI.GET("/subjects", handlers.Subject.List)
		teacherAPI.POST("/subjects", handlers.Subject.Create)
		teacherAPI.GET("/subjects/:subject_id/questions", handlers.Question.ListBySubject)

		teacherAPI.POST("/questions", handlers.Question.Create)
		teacherAPI.GET("/questions/:question_id", handlers.Question.Get)

		teacherAPI.POST("/papers", handlers.Paper.Create)
		teacherAPI.GET("/papers", handlers.Paper.List)
		teacherAPI.GET("/papers/:paper_id", handlers.Paper.Get)

		teacherAPI.POST("/exams", handlers.Exam.Create)
		teacherAPI.GET("/exams", handlers.Exam.List)
		teacherAPI.GET("/exams/:exam_id", handlers.Exam.Get)
		teacherAPI.POST("/exams/:exam_id/enrollments", handlers.Exam.Enroll)

		teacherAPI.GET("/exams/:exam_id/scores", handlers.Scores.ExamScores)
		teacherAPI.GET("/exams/:exam_id/statistics", handlers.Scores.Statistics)
		teacherAPI.GET("/exams/:exam_id/scores/:student_id", handlers.Scores.StudentDetail)
		teacherAPI.PUT("/exams/:exam_id/scores/:student_id", handlers.Scores.ManualGrade)

		teacherAPI.DELETE("/students/:student_id/session", handlers.Auth.ResetStudentSession)
	}

	return router
}
