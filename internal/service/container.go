package service

import (
	"context"
	"time"

	"handscore/internal/config"
	"handscore/internal/service/admin"
	"handscore/internal/service/game"
	"handscore/internal/service/score"
	pkgAuth "handscore/pkg/auth"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Score *score.Service
	Admin *admin.Service
}

func NewContainer(db *gorm.DB, rdb *redis.Client, cfg *config.Config) (*Container, error) {
	scoreCfg := score.DefaultConfig()
	if cfg.Scoring.DefaultVariant != "" {
		v, err := game.ParseVariant(cfg.Scoring.DefaultVariant)
		if err != nil {
			return nil, err
		}
		scoreCfg.DefaultVariant = v
	}
	if cfg.Scoring.MaxHands > 0 {
		scoreCfg.MaxHands = cfg.Scoring.MaxHands
	}
	if cfg.Redis.TTLSeconds > 0 {
		scoreCfg.CacheTTL = time.Duration(cfg.Redis.TTLSeconds) * time.Second
	}

	signer := pkgAuth.NewSigner(cfg.JWT.Secret, time.Duration(cfg.JWT.Expire)*time.Hour)

	return &Container{
		Score: score.NewService(db, rdb, scoreCfg),
		Admin: admin.NewService(db, signer, cfg.Admin),
	}, nil
}

func (c *Container) Start(ctx context.Context) error {
	return c.Admin.EnsureDefaultAdmin(ctx)
}
