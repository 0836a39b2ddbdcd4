package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"xplore/config"
	"xplore/middleware"
	"xplore/models"
	"xplore/storage"
)

// App holds the dependencies every handler needs: config, the store,
// the media relay, the optional Redis like mirror, and the best-effort
// side-effect runners.
type App struct {
	cfg      *config.Properties
	db       *gorm.DB
	media    storage.ObjectStore
	rdb      *redis.Client
	notifier *Notifier
	mailer   *Mailer
}

func NewApp(cfg *config.Properties, db *gorm.DB, media storage.ObjectStore, rdb *redis.Client) *App {
	return &App{
		cfg:      cfg,
		db:       db,
		media:    media,
		rdb:      rdb,
		notifier: NewNotifier(db),
		mailer:   NewMailer(cfg),
	}
}

func (a *App) Router() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{a.cfg.Server.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Cache-Control"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	v1 := r.Group("/api/v1")

	v1.POST("/auth/signup", a.signup)
	v1.POST("/auth/login", a.login)

	auth := v1.Group("/")
	auth.Use(middleware.Auth([]byte(a.cfg.JWT.Secret)))
	{
		auth.POST("/auth/logout", a.logout)
		auth.GET("/auth/me", a.getMe)

		auth.POST("/posts/create", a.createPost)
		auth.DELETE("/posts/:id", a.deletePost)
		auth.POST("/posts/like/:postId", a.likeUnlikePost)
		auth.POST("/posts/comment/:postId", a.commentOnPost)
		auth.GET("/posts/all", a.getAllPosts)
		auth.GET("/posts/following", a.getFollowingPosts)
		auth.GET("/posts/posts/:username", a.getUserPosts)
		auth.GET("/posts/likes/:id", a.getLikedPosts)

		auth.GET("/users/profile/:username", a.getProfile)
		auth.POST("/users/follow/:id", a.followUnfollow)
		auth.GET("/users/suggestions", a.getSuggestedUsers)
		auth.POST("/users/update", a.updateUser)

		auth.GET("/notifications", a.getNotifications)
	}

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Route not found")
	})

	return r
}

// currentUserID reads the id the auth middleware attached.
func currentUserID(c *gin.Context) uint {
	return c.GetUint(middleware.ContextUserID)
}

// currentUser loads the authenticated user's record.
func (a *App) currentUser(c *gin.Context) (*models.User, error) {
	var user models.User
	if err := a.db.First(&user, currentUserID(c)).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
