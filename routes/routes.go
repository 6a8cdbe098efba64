package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/vnkhanh/notes-backend/controllers"
	"github.com/vnkhanh/notes-backend/middleware"
	"github.com/vnkhanh/notes-backend/utils"
	"github.com/vnkhanh/notes-backend/ws"
)

// Deps là những gì router cần để đăng ký route
type Deps struct {
	DB        *gorm.DB
	Verifier  utils.TokenVerifier
	Notes     *controllers.NoteController
	Users     *controllers.UserController
	Hub       *ws.Hub
	Upgrader  *websocket.Upgrader
	RateRPS   int
	RateBurst int

	// MaxBodyBytes giới hạn body của /api/notes, 0 là không giới hạn
	MaxBodyBytes int64
}

func SetupRouter(r *gin.Engine, d Deps) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	var feed controllers.StatsProvider
	if d.Hub != nil {
		feed = d.Hub
	}
	r.GET("/health", controllers.HealthCheck(d.DB, feed))

	auth := middleware.AuthMiddleware(d.Verifier)
	api := r.Group("/api")

	notes := api.Group("/notes")
	{
		notes.Use(auth, middleware.RateLimit(d.RateRPS, d.RateBurst), middleware.MaxBodySize(d.MaxBodyBytes))

		notes.GET("", d.Notes.List)
		notes.POST("", d.Notes.Create)
		notes.GET("/:id", d.Notes.Get)
		notes.PUT("/:id", d.Notes.Update)
		notes.DELETE("/:id", d.Notes.Delete)
		notes.GET("/:id/summary", d.Notes.Summary)
	}

	user := api.Group("/user")
	{
		user.Use(auth)

		user.GET("/me", d.Users.Me)
		user.POST("/password-change", d.Users.PasswordChange)
	}

	if d.Hub != nil {
		upgrader := d.Upgrader
		if upgrader == nil {
			upgrader = ws.NewUpgrader(nil)
		}
		r.GET("/ws/notes", auth, d.Hub.HandleNotesWebSocket(upgrader))
	}

	return r
}
