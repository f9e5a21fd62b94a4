package main

import (
	"StudyHub/internal/ai"
	"StudyHub/internal/community"
	"StudyHub/internal/database"
	"StudyHub/internal/handlers"
	"StudyHub/internal/middleware"
	"StudyHub/internal/results"
	"StudyHub/internal/session"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

func main() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetDefault("server.port", "8080")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Could not find config.yaml, using environment variables only.")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Could not connect to the database: %v", err)
	}

	// AI question generation is optional; without a key the endpoint
	// answers 503 and the rest of the API works normally.
	var aiService *ai.Service
	if apiKey := viper.GetString("gemini.api_key"); apiKey != "" {
		aiService, err = ai.NewService(apiKey)
		if err != nil {
			log.Fatalf("Could not initialize AI service: %v", err)
		}
	} else {
		log.Println("WARNING: Gemini API key not configured, question generation disabled.")
	}

	recorder := results.NewRecorder(db)
	sessions := session.NewManager(recorder)
	defer sessions.Shutdown()

	h := handlers.New(
		db,
		sessions,
		recorder,
		community.NewService(db),
		aiService,
		viper.GetStringSlice("auth.admin_emails"),
		viper.GetStringSlice("tests.subjects"),
	)

	router := gin.Default()
	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/google", h.GoogleAuthHandler)

		authorized := v1.Group("/")
		authorized.Use(middleware.GoogleTokenMiddleware(db, viper.GetString("auth.google_audience")))
		{
			authorized.GET("/tests", h.ListTestsHandler)
			authorized.GET("/tests/stats", h.TestStatsHandler)
			authorized.GET("/tests/results", h.ResultsHandler)
			authorized.POST("/tests/:id/start", h.StartTestHandler)
			authorized.GET("/tests/session", h.SessionStateHandler)
			authorized.POST("/tests/session/answer", h.AnswerHandler)
			authorized.POST("/tests/session/next", h.NextHandler)
			authorized.POST("/tests/session/previous", h.PreviousHandler)
			authorized.POST("/tests/session/submit", h.SubmitHandler)
			authorized.GET("/tests/session/review", h.ReviewHandler)
			authorized.POST("/tests/session/dismiss", h.DismissHandler)

			authorized.GET("/questions", h.ListQuestionsHandler)

			authorized.GET("/posts", h.ListPostsHandler)
			authorized.POST("/posts", h.CreatePostHandler)
			authorized.DELETE("/posts/:id", h.DeletePostHandler)
			authorized.POST("/posts/:id/like", h.ToggleLikeHandler)
			authorized.GET("/posts/:id/comments", h.ListCommentsHandler)
			authorized.POST("/posts/:id/comments", h.AddCommentHandler)

			authorized.GET("/users/me", h.UserProfileHandler)
			authorized.PUT("/users/me", h.UpdateProfileHandler)
			authorized.GET("/users/search", h.SearchUsersHandler)
			authorized.POST("/users/:id/follow", h.FollowHandler)
			authorized.GET("/users/:id/followers", h.FollowersHandler)
			authorized.GET("/users/:id/following", h.FollowingHandler)

			admin := authorized.Group("/")
			admin.Use(middleware.AdminRequired())
			{
				admin.POST("/questions", h.CreateQuestionHandler)
				admin.PUT("/questions/:id", h.UpdateQuestionHandler)
				admin.DELETE("/questions/:id", h.DeleteQuestionHandler)
				admin.POST("/questions/generate", h.GenerateQuestionsHandler)
			}
		}
	}

	port := viper.GetString("server.port")
	log.Printf("Starting server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
