package router

import (
	"CloudStash/internal/handler"
	"CloudStash/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// InitRouter builds the API routes around the injected handlers.
func InitRouter(
	auth *handler.AuthHandler,
	files *handler.FileHandler,
	tokens *utils.TokenStore,
	logger zerolog.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(utils.RequestLogger(logger))
	r.Use(gin.Recovery())
	r.Use(utils.CORSMiddleware())

	r.POST("/register", auth.Register)
	r.POST("/login", auth.Login)

	authed := r.Group("")
	authed.Use(utils.AuthMiddleware(tokens))
	{
		authed.GET("/", files.Dashboard)
		authed.POST("/upload", files.Upload)
		authed.GET("/download/:fileID", files.Download)
		authed.POST("/delete/:fileID", files.Delete)
		authed.GET("/logout", auth.Logout)
	}

	return r
}
