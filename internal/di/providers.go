package di

import (
	"fmt"
	"time"

	"github.com/skillroad/backend-go/internal/auth"
	"github.com/skillroad/backend-go/internal/cache"
	"github.com/skillroad/backend-go/internal/config"
	"github.com/skillroad/backend-go/internal/database"
	"github.com/skillroad/backend-go/internal/embedding"
	"github.com/skillroad/backend-go/internal/generator"
	"github.com/skillroad/backend-go/internal/kafka"
	"github.com/skillroad/backend-go/internal/mailer"
	"github.com/skillroad/backend-go/internal/repository"
	"github.com/skillroad/backend-go/internal/services"
	"go.uber.org/dig"
	"gorm.io/gorm"
)

// RegisterProviders 注册所有依赖提供者
// 调用前必须已完成配置加载与数据库/Redis初始化
func RegisterProviders(container *dig.Container) error {
	// 配置
	if err := container.Provide(func() (*config.Config, error) {
		if config.AppConfig == nil {
			return nil, fmt.Errorf("config not loaded")
		}
		return config.AppConfig, nil
	}); err != nil {
		return err
	}

	// 数据库连接
	if err := container.Provide(func() (*gorm.DB, error) {
		db := database.GetDB()
		if db == nil {
			return nil, fmt.Errorf("database not initialized")
		}
		return db, nil
	}); err != nil {
		return err
	}

	// 结果缓存：Redis启用时用Redis，否则退化为进程内缓存
	if err := container.Provide(func(cfg *config.Config) cache.Store {
		if client := database.GetRedisClient(); client != nil {
			return cache.NewRedisStore(client)
		}
		return cache.NewMemoryStore()
	}); err != nil {
		return err
	}

	// AI组件
	if err := container.Provide(func(cfg *config.Config) embedding.Embedder {
		return embedding.NewEmbedder(cfg.AI)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(cfg *config.Config) generator.Generator {
		return generator.NewGenerator(cfg.AI)
	}); err != nil {
		return err
	}

	// Kafka生产者，未启用时为nil，服务内部做nil检查
	if err := container.Provide(func() *kafka.Producer {
		return kafka.GetProducer()
	}); err != nil {
		return err
	}

	// JWT与邮件
	if err := container.Provide(func(cfg *config.Config) *auth.JWTService {
		return auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpiresIn)*time.Second)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(cfg *config.Config) mailer.Mailer {
		return mailer.NewMailer(cfg.SMTP)
	}); err != nil {
		return err
	}

	// 仓库
	if err := container.Provide(repository.NewRoadmapRepository); err != nil {
		return err
	}
	if err := container.Provide(repository.NewUserRepository); err != nil {
		return err
	}

	// 服务
	if err := container.Provide(services.NewRoadmapService); err != nil {
		return err
	}
	if err := container.Provide(services.NewAuthService); err != nil {
		return err
	}

	return nil
}
