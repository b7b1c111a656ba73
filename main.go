package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/redis/v3"
	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"github.com/vhqtran/campushare/internal/audit"
	"github.com/vhqtran/campushare/internal/auth"
	"github.com/vhqtran/campushare/internal/common"
	"github.com/vhqtran/campushare/internal/config"
	"github.com/vhqtran/campushare/internal/files"
	"github.com/vhqtran/campushare/internal/handlers/api"
	"github.com/vhqtran/campushare/internal/middlewares"
	"github.com/vhqtran/campushare/internal/middlewares/sessions"
	"github.com/vhqtran/campushare/internal/store"
	"github.com/vhqtran/campushare/internal/users"
	"github.com/vhqtran/campushare/model"
	"github.com/vhqtran/campushare/params"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
	usernameFlag = &cli.StringFlag{
		Name:     "username",
		Usage:    "Username of the account to create",
		Required: true,
	}
	roleFlag = &cli.StringFlag{
		Name:  "role",
		Usage: "Account role (student, teacher, staff, admin)",
		Value: model.RoleStudent,
	}
	passwordFlag = &cli.StringFlag{
		Name:  "password",
		Usage: "Temporary password (random when omitted)",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "campushare - a multi-role file sharing server"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
		{
			Name:   "useradd",
			Usage:  "Create an account with a temporary password",
			Flags:  []cli.Flag{configFileFlag, usernameFlag, roleFlag, passwordFlag},
			Action: runUserAdd,
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.DatabaseConfig) *gorm.DB {
	var dialector gorm.Dialector
	switch dbConfig.Driver {
	case "mysql":
		dialector = mysql.Open(dbConfig.Dsn)
	case "sqlite":
		dialector = sqlite.Open(dbConfig.Dsn)
	default:
		slog.Error("Unsupported database driver", "driver", dbConfig.Driver)
		os.Exit(1)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dbConfig.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	return db
}

// mustInitStorage picks the session/counter backend: redis when configured,
// otherwise process memory.
func mustInitStorage(redisCfg config.RedisConfig) (store.Storage, *redis.Storage) {
	if redisCfg.URL == "" {
		return store.NewMemoryStorage(), nil
	}
	redisStorage := redis.New(redis.Config{
		URL:           redisCfg.URL,
		PoolSize:      redisCfg.PoolSize,
		IsClusterMode: redisCfg.ClusterMode,
	})
	return store.NewRedisStorage(redisStorage.Conn()), redisStorage
}

func setupRoutes(
	router fiber.Router,
	sessionConfig sessions.Config,
	rateLimitStorage store.Storage,
	authHandler *api.AuthHandler,
	fileHandler *api.FileHandler,
	adminHandler *api.AdminHandler) {

	var (
		requireLogin          = middlewares.RequireLogin()
		requirePasswordChange = middlewares.RequirePasswordChange()
		requireAdmin          = middlewares.RequireAdmin()
		loginLimit            = middlewares.RateLimit(rateLimitStorage, "login", params.LoginRateLimit, params.RateLimitWindow)
		uploadLimit           = middlewares.RateLimit(rateLimitStorage, "upload", params.UploadRateLimit, params.RateLimitWindow)
		downloadLimit         = middlewares.RateLimit(rateLimitStorage, "download", params.DownloadRateLimit, params.RateLimitWindow)
		adminLimit            = middlewares.RateLimit(rateLimitStorage, "admin", params.AdminRateLimit, params.RateLimitWindow)
	)

	router.Use(sessions.New(sessionConfig))

	// the password-change and logout routes stay reachable from the
	// forced-change state; everything else runs the full guard chain
	router.Post("/api/login", loginLimit, authHandler.PostLogin)
	router.Post("/api/logout", requireLogin, authHandler.PostLogout)
	router.Post("/api/account/password", requireLogin, authHandler.PostChangePassword)

	router.Get("/api/files", requireLogin, requirePasswordChange, fileHandler.GetFiles)
	router.Post("/api/files", requireLogin, requirePasswordChange, uploadLimit, fileHandler.PostFile)
	router.Get("/api/files/:name", requireLogin, requirePasswordChange, downloadLimit, fileHandler.GetFile)

	router.Get("/api/admin/users", requireLogin, requirePasswordChange, requireAdmin, adminHandler.GetUsers)
	router.Post("/api/admin/users", requireLogin, requirePasswordChange, requireAdmin, adminLimit, adminHandler.PostUser)
	router.Post("/api/admin/users/:id/status", requireLogin, requirePasswordChange, requireAdmin, adminLimit, adminHandler.PostUserStatus)
	router.Post("/api/admin/users/:id/reset-password", requireLogin, requirePasswordChange, requireAdmin, adminLimit, adminHandler.PostUserResetPassword)
	router.Get("/api/admin/audit", requireLogin, requirePasswordChange, requireAdmin, adminHandler.GetAuditEvents)
}

func run(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	db := mustInitDatabase(cfg.Database)
	storage, redisStorage := mustInitStorage(cfg.Redis)

	localStore, err := files.NewLocalStore(cfg.StorageDir)
	if err != nil {
		slog.Error("Failed to initialize file storage", "error", err)
		return err
	}

	// repositories
	var (
		userRepo  = users.NewUserRepository(db)
		fileRepo  = files.NewFileRepository(db)
		auditRepo = audit.NewAuditEventRepository(db)
	)

	// services
	var (
		recorder    = audit.NewRecorder(auditRepo)
		userService = users.NewUserService(userRepo)
		authService = auth.NewAuthService(userRepo, recorder, common.SystemClock)
		fileService = files.NewFileService(fileRepo, localStore, recorder)
	)

	// handlers
	var (
		authHandler  = api.NewAuthHandler(authService, userService, recorder)
		fileHandler  = api.NewFileHandler(fileService, userService)
		adminHandler = api.NewAdminHandler(userService, recorder, auditRepo)
	)

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(logger.New())

	setupRoutes(
		router,
		sessions.Config{
			Storage:        store.StorageWithPrefix(storage, params.SessionKeyPrefix),
			SessionMaxAge:  cfg.Session.SessionMaxAge,
			CookieSecure:   cfg.Session.CookieSecure,
			CookieHttpOnly: cfg.Session.CookieHttpOnly,
			CookieName:     cfg.Session.CookieName,
		},
		store.StorageWithPrefix(storage, params.RateLimitKeyPrefix),
		authHandler,
		fileHandler,
		adminHandler,
	)

	healthCheckCtx, term := context.WithCancel(ctx.Context)
	done := make(chan struct{})
	go func() {
		var rdb goredis.UniversalClient
		if redisStorage != nil {
			rdb = redisStorage.Conn()
		}
		common.StartHealthCheckServer(healthCheckCtx, done, rdb, db)
	}()
	defer func() {
		term()
		<-done
	}()
	return router.Listen(cfg.ListenAddr)
}

func runUserAdd(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}
	mustInitLogger(ctx.IsSet(debugFlag.Name))

	db := mustInitDatabase(cfg.Database)
	userService := users.NewUserService(users.NewUserRepository(db))

	tempPassword := ctx.String(passwordFlag.Name)
	if tempPassword == "" {
		tempPassword, err = common.GenerateSecret(params.TempPasswordLength)
		if err != nil {
			return err
		}
	}

	user, err := userService.CreateUser(ctx.Context, users.CreateUserOptions{
		Username:     ctx.String(usernameFlag.Name),
		Role:         ctx.String(roleFlag.Name),
		TempPassword: tempPassword,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created user %s (role %s) with temporary password: %s\n", user.Username, user.Role, tempPassword)
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
