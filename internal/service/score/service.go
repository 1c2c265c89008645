package score

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"handscore/internal/model"
	"handscore/internal/service/game"
	appErr "handscore/pkg/errors"
	"handscore/pkg/logger"
	"handscore/pkg/utils/random"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Config struct {
	DefaultVariant game.Variant
	MaxHands       int
	CacheTTL       time.Duration
}

func DefaultConfig() Config {
	return Config{
		DefaultVariant: game.VariantStandard,
		MaxHands:       5000,
		CacheTTL:       time.Hour,
	}
}

type Service struct {
	db  *gorm.DB
	rdb *redis.Client
	cfg Config
}

type Request struct {
	Input   string
	Variant string
	Persist bool
}

type RunResult struct {
	*game.Result
	Code      string `json:"code,omitempty"`
	InputHash string `json:"inputHash"`
	Cached    bool   `json:"cached"`
}

type ListResult struct {
	Items []model.ScoreRun
	Total int64
}

// NewService builds the scoring service. rdb may be nil to run without a cache.
func NewService(db *gorm.DB, rdb *redis.Client, cfg Config) *Service {
	if cfg.DefaultVariant == "" {
		cfg.DefaultVariant = game.VariantStandard
	}
	return &Service{db: db, rdb: rdb, cfg: cfg}
}

func (s *Service) ResolveVariant(name string) (game.Variant, error) {
	if name == "" {
		return s.cfg.DefaultVariant, nil
	}
	return game.ParseVariant(name)
}

func (s *Service) Score(ctx context.Context, req Request) (*RunResult, error) {
	variant, err := s.ResolveVariant(req.Variant)
	if err != nil {
		return nil, err
	}

	hands, err := game.ParseHands(req.Input)
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxHands > 0 && len(hands) > s.cfg.MaxHands {
		return nil, fmt.Errorf("%w: %d hands, limit %d", appErr.ErrTooManyHands, len(hands), s.cfg.MaxHands)
	}

	hash := fingerprint(hands)
	out := &RunResult{InputHash: hash}

	if cached, ok := s.loadCached(ctx, variant, hash); ok {
		out.Result = cached
		out.Cached = true
	} else {
		out.Result = game.ScoreAll(hands, variant)
		s.storeCached(ctx, variant, hash, out.Result)
	}

	if req.Persist {
		run, err := s.saveRun(ctx, hash, out.Result)
		if err != nil {
			return nil, err
		}
		out.Code = run.Code
	}

	logger.Log.Debug("Scored hands",
		zap.String("variant", string(variant)),
		zap.Int("hands", len(hands)),
		zap.Int64("total", out.Total),
		zap.Bool("cached", out.Cached),
		zap.String("code", out.Code),
	)
	return out, nil
}

func (s *Service) GetRun(ctx context.Context, code string) (*model.ScoreRun, error) {
	var run model.ScoreRun
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

func (s *Service) ListRuns(ctx context.Context, page, size int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&model.ScoreRun{}).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var items []model.ScoreRun
	if total > 0 {
		offset := (page - 1) * size
		if err := s.db.WithContext(ctx).
			Model(&model.ScoreRun{}).
			Omit("hands_json").
			Order("id DESC").
			Limit(size).
			Offset(offset).
			Find(&items).Error; err != nil {
			return nil, err
		}
	}

	return &ListResult{Items: items, Total: total}, nil
}

func (s *Service) saveRun(ctx context.Context, hash string, res *game.Result) (*model.ScoreRun, error) {
	handsJSON, err := json.Marshal(res.Hands)
	if err != nil {
		return nil, err
	}
	run := model.ScoreRun{
		Code:      random.RunCode(),
		Variant:   string(res.Variant),
		HandCount: len(res.Hands),
		Total:     res.Total,
		InputHash: hash,
		HandsJSON: datatypes.JSON(handsJSON),
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// fingerprint hashes the parsed hands so inputs differing only in spacing,
// case or blank lines share a cache entry.
func fingerprint(hands []game.Hand) string {
	d := xxhash.New()
	for _, h := range hands {
		d.WriteString(h.Cards)
		d.WriteString(" ")
		d.WriteString(strconv.FormatInt(h.Bid, 10))
		d.WriteString("\n")
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

func buildCacheKey(variant game.Variant, hash string) string {
	return fmt.Sprintf("handscore:result:%s:%s", variant, hash)
}

func (s *Service) loadCached(ctx context.Context, variant game.Variant, hash string) (*game.Result, bool) {
	if s.rdb == nil {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, buildCacheKey(variant, hash)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("score cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var res game.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		logger.Log.Warn("score cache entry corrupt", zap.String("hash", hash), zap.Error(err))
		return nil, false
	}
	return &res, true
}

func (s *Service) storeCached(ctx context.Context, variant game.Variant, hash string, res *game.Result) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		logger.Log.Warn("score cache encode failed", zap.String("hash", hash), zap.Error(err))
		return
	}
	if err := s.rdb.Set(ctx, buildCacheKey(variant, hash), raw, s.cfg.CacheTTL).Err(); err != nil {
		logger.Log.Warn("score cache write failed", zap.Error(err))
	}
}
