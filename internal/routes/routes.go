package routes

import (
	"github.com/Rajat-oss/GameHubBack/internal/chat"
	"github.com/Rajat-oss/GameHubBack/internal/config"
	"github.com/Rajat-oss/GameHubBack/internal/handlers"
	"github.com/Rajat-oss/GameHubBack/internal/middleware"
	"github.com/Rajat-oss/GameHubBack/internal/repository"
	"github.com/Rajat-oss/GameHubBack/internal/services"
	chatws "github.com/Rajat-oss/GameHubBack/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, redisClient *redis.Client) {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	followRepo := repository.NewFollowRepository(db)
	gameRepo := repository.NewGameRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	postRepo := repository.NewPostRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	typingRepo := repository.NewTypingRepository(redisClient)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	hub := chatws.NewHub()
	go hub.Run()

	notificationService := services.NewNotificationService(notificationRepo, hub)
	chatService := services.NewChatService(
		db,
		messageRepo,
		roomRepo,
		typingRepo,
		chat.NewRedisBus(redisClient),
		chat.NewFallbackLog(),
		notificationService,
	)
	profileService := services.NewProfileService(profileRepo, followRepo, notificationService)
	libraryService := services.NewLibraryService(gameRepo, libraryRepo)
	postService := services.NewPostService(postRepo, gameRepo)

	authHandler := handlers.NewAuthHandler(db, userRepo, profileRepo, cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(profileService, profileRepo, storageService)
	chatHandler := handlers.NewChatHandler(chatService, profileRepo, hub, cfg.JWTSecret)
	gameHandler := handlers.NewGameHandler(gameRepo, libraryService)
	postHandler := handlers.NewPostHandler(postService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	users := authProtected.Group("/users")
	users.Get("/profile", profileHandler.GetOwnProfile)
	users.Put("/profile", profileHandler.UpdateProfile)
	users.Post("/profile/avatar", profileHandler.UploadAvatar)
	users.Get("/followers", profileHandler.ListFollowers)
	users.Get("/following", profileHandler.ListFollowing)
	users.Post("/:userID/follow", profileHandler.Follow)
	users.Delete("/:userID/follow", profileHandler.Unfollow)
	users.Get("/by-username/:username", profileHandler.GetPublicProfile)

	games := authProtected.Group("/games")
	games.Get("", gameHandler.ListGames)
	games.Get("/:idOrSlug", gameHandler.GetGame)

	library := authProtected.Group("/library")
	library.Post("", gameHandler.LogGame)
	library.Get("", gameHandler.ListLibrary)
	library.Delete("/:gameID", gameHandler.RemoveFromLibrary)

	posts := authProtected.Group("/posts")
	posts.Post("", postHandler.CreatePost)
	posts.Delete("/:postID", postHandler.DeletePost)
	authProtected.Get("/feed", postHandler.GetFeed)

	notifications := authProtected.Group("/notifications")
	notifications.Get("", notificationHandler.ListNotifications)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Put("/:notificationID/read", notificationHandler.MarkRead)

	chatGroup := authProtected.Group("/chat")
	chatGroup.Get("/rooms", chatHandler.ListRooms)
	chatGroup.Get("/rooms/:peerID/messages", chatHandler.GetMessages)
	chatGroup.Post("/rooms/:peerID/messages", chatHandler.SendMessage)
	chatGroup.Post("/rooms/:peerID/seen", chatHandler.MarkSeen)
	chatGroup.Get("/rooms/:peerID/typing", chatHandler.GetTyping)

	api.Use("/v1/ws/chat/:peerID", chatHandler.WebSocketAuth)
	api.Get("/v1/ws/chat/:peerID", websocket.New(chatHandler.HandleWebSocket))
}
