package admincenter

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/kart-io/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/kart-io/admin-guard/internal/admincenter/biz"
	"github.com/kart-io/admin-guard/internal/admincenter/handler"
	"github.com/kart-io/admin-guard/internal/admincenter/router"
	"github.com/kart-io/admin-guard/internal/admincenter/store"
	"github.com/kart-io/admin-guard/pkg/security/authz/casbin"
)

// Name is the name of the application.
const Name = "admin-center"

// NewCommand creates the root command of the admin center.
func NewCommand() *cobra.Command {
	opts := NewOptions()
	var configFile string

	cmd := &cobra.Command{
		Use:          Name,
		Short:        "Admin service with field-level authorization",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Load(configFile, cmd.Flags()); err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			return Run(opts)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	opts.AddFlags(cmd.Flags())
	return cmd
}

// Run starts the admin center with the given options and blocks until
// shutdown.
func Run(opts *Options) error {
	gin.SetMode(opts.Mode)
	logger.Infow("Starting admin center", "addr", opts.Addr)

	// 1. Database
	db, err := openDatabase(opts)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	factory := store.NewFactory(db)
	defer func() {
		if err := factory.Close(); err != nil {
			logger.Errorw("Failed to close store factory", "error", err.Error())
		}
	}()
	if err := factory.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("Database migration completed")

	// 2. Policy engine
	enforcer, err := casbin.NewServiceWithGorm(db)
	if err != nil {
		return fmt.Errorf("initialize policy engine: %w", err)
	}
	if opts.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr, Password: opts.RedisPassword})
		enforcer.SetWatcher(casbin.NewRedisWatcher(client))
		logger.Infow("Policy watcher enabled", "addr", opts.RedisAddr)
	}

	// 3. Business layer
	userSvc := biz.NewUserService(factory)
	roleSvc := biz.NewRoleService(factory)
	authSvc := biz.NewAuthService(factory, opts.JWTSecret, opts.TokenTTL)

	// 4. Admin pages
	pages, err := BuildPages(enforcer, factory, userSvc)
	if err != nil {
		return fmt.Errorf("build admin pages: %w", err)
	}
	permSvc := biz.NewPermissionService(enforcer, pages.Site)
	if err := permSvc.RefreshGrouping(); err != nil {
		return fmt.Errorf("refresh resource grouping: %w", err)
	}
	logger.Info("Admin pages registered")

	// 5. HTTP surface
	engine := router.New(opts.JWTSecret, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		User:       handler.NewUserHandler(userSvc, pages.UserAdmin),
		Role:       handler.NewRoleHandler(roleSvc, pages.RoleAdmin),
		Permission: handler.NewPermissionHandler(permSvc, pages),
		UserRead:   pages.UserAdmin.ReadRoute(),
		RoleRead:   pages.RoleAdmin.ReadRoute(),
	})

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", opts.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		logger.Infow("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openDatabase(opts *Options) (*gorm.DB, error) {
	if opts.MySQLDSN != "" {
		return gorm.Open(mysql.Open(opts.MySQLDSN), &gorm.Config{TranslateError: true})
	}
	return gorm.Open(sqlite.Open(opts.SQLitePath), &gorm.Config{TranslateError: true})
}
