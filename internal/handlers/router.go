package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobdash/internal/auth"
	"github.com/justsurfingit/jobdash/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps is everything the router needs. LLM may be nil.
type Deps struct {
	DB          *gorm.DB
	Tokens      *auth.Issuer
	Users       *services.UserService
	UserJobs    *services.UserJobService
	Jobs        *services.JobService
	Documents   *services.DocumentService
	Analytics   *services.AnalyticsService
	LLM         *services.LLMService
	Logger      *zap.Logger
	CORSOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(d.Logger), Metrics())

	config := cors.DefaultConfig()
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	if len(d.CORSOrigins) == 0 || (len(d.CORSOrigins) == 1 && d.CORSOrigins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = d.CORSOrigins
	}
	r.Use(cors.New(config))

	r.GET("/health", healthCheck(d.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := NewAuthHandler(d.Users)
	public := r.Group("/auth")
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
		public.POST("/refresh", authHandler.Refresh)
	}

	api := r.Group("/", RequireAuth(d.Tokens))

	userJobHandler := NewUserJobHandler(d.UserJobs, d.Users)
	userJobs := api.Group("/UserJobs")
	{
		userJobs.GET("/my", userJobHandler.ListMine)
		userJobs.GET("/recent", userJobHandler.Recent)
		userJobs.GET("/status/:status", userJobHandler.ListByStatus)
		userJobs.GET("/status-counts", userJobHandler.StatusCounts)
		userJobs.POST("", userJobHandler.Track)
		userJobs.PUT("/:id/status", userJobHandler.UpdateStatus)
		userJobs.DELETE("/:id", userJobHandler.Untrack)
	}

	jobHandler := NewJobHandler(d.LLM, d.Jobs, d.Users, d.Logger)
	jobs := api.Group("/Jobs")
	{
		jobs.GET("/search", jobHandler.SearchJobs)
		jobs.POST("/new", jobHandler.CreateJob)
		jobs.POST("/extract", jobHandler.ParseJob)
		jobs.GET("/:id", jobHandler.GetJob)
		jobs.PUT("/:id", jobHandler.UpdateJob)
	}

	docHandler := NewDocumentHandler(d.Documents)
	docs := api.Group("/documents")
	{
		docs.GET("/resumes", docHandler.ListResumes)
		docs.POST("/resumes", docHandler.CreateResume)
		docs.GET("/resumes/:id", docHandler.GetResume)
		docs.PUT("/resumes/:id", docHandler.UpdateResume)
		docs.DELETE("/resumes/:id", docHandler.DeleteResume)

		docs.GET("/cover-letters", docHandler.ListCoverLetters)
		docs.POST("/cover-letters", docHandler.CreateCoverLetter)
		docs.GET("/cover-letters/:id", docHandler.GetCoverLetter)
		docs.PUT("/cover-letters/:id", docHandler.UpdateCoverLetter)
		docs.DELETE("/cover-letters/:id", docHandler.DeleteCoverLetter)
	}

	analyticsHandler := NewAnalyticsHandler(d.Analytics)
	analytics := api.Group("/analytics")
	{
		analytics.GET("/salary-distribution", analyticsHandler.SalaryDistribution)
		analytics.GET("/interview-funnel", analyticsHandler.InterviewFunnel)
		analytics.GET("/response-rates", analyticsHandler.ResponseRates)
	}

	api.GET("/users/me/settings", authHandler.GetSettings)
	api.PUT("/users/me/settings", authHandler.UpdateSettings)

	return r
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
