package score_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"handscore/internal/model"
	"handscore/internal/service/game"
	"handscore/internal/service/score"
	appErr "handscore/pkg/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sampleInput = `32T3K 765
T55J5 684
KK677 28
KTJJT 220
QQQJA 483`

func newService(t *testing.T, cfg score.Config) (*gorm.DB, *score.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.ScoreRun{}); err != nil {
		t.Fatalf("failed to migrate score runs: %v", err)
	}
	return db, score.NewService(db, nil, cfg)
}

func TestScoreBothVariants(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t, score.DefaultConfig())

	std, err := svc.Score(ctx, score.Request{Input: sampleInput})
	if err != nil {
		t.Fatalf("score standard failed: %v", err)
	}
	if std.Variant != game.VariantStandard || std.Total != 6440 {
		t.Fatalf("unexpected standard result: variant=%s total=%d", std.Variant, std.Total)
	}
	if std.Code != "" || std.Cached {
		t.Fatalf("expected unpersisted, uncached result: %+v", std)
	}

	wild, err := svc.Score(ctx, score.Request{Input: sampleInput, Variant: "joker-wild"})
	if err != nil {
		t.Fatalf("score joker-wild failed: %v", err)
	}
	if wild.Total != 5905 {
		t.Fatalf("expected 5905, got %d", wild.Total)
	}
	if wild.InputHash != std.InputHash {
		t.Fatalf("same input should share a hash: %s vs %s", wild.InputHash, std.InputHash)
	}
}

func TestScoreDefaultVariantFromConfig(t *testing.T) {
	cfg := score.DefaultConfig()
	cfg.DefaultVariant = game.VariantJokerWild
	_, svc := newService(t, cfg)

	res, err := svc.Score(context.Background(), score.Request{Input: sampleInput})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if res.Total != 5905 {
		t.Fatalf("expected joker-wild default, got total %d", res.Total)
	}
}

func TestScoreHashIgnoresFormatting(t *testing.T) {
	_, svc := newService(t, score.DefaultConfig())
	ctx := context.Background()

	a, err := svc.Score(ctx, score.Request{Input: sampleInput})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	b, err := svc.Score(ctx, score.Request{Input: "\n" + strings.ToLower(strings.ReplaceAll(sampleInput, "\n", "\r\n\n")) + "\n"})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if a.InputHash != b.InputHash || a.Total != b.Total {
		t.Fatalf("expected equal hash and total, got %s/%d and %s/%d", a.InputHash, a.Total, b.InputHash, b.Total)
	}
}

func TestScoreValidation(t *testing.T) {
	cfg := score.DefaultConfig()
	cfg.MaxHands = 3
	_, svc := newService(t, cfg)
	ctx := context.Background()

	if _, err := svc.Score(ctx, score.Request{Input: sampleInput}); !errors.Is(err, appErr.ErrTooManyHands) {
		t.Fatalf("expected ErrTooManyHands, got %v", err)
	}
	if _, err := svc.Score(ctx, score.Request{Input: "KK677 x"}); !errors.Is(err, appErr.ErrInputFormat) {
		t.Fatalf("expected ErrInputFormat, got %v", err)
	}
	if _, err := svc.Score(ctx, score.Request{Input: "KK677 1", Variant: "deuces"}); !errors.Is(err, appErr.ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
	if _, err := svc.Score(ctx, score.Request{Input: ""}); !errors.Is(err, appErr.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestPersistAndGetRun(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t, score.DefaultConfig())

	res, err := svc.Score(ctx, score.Request{Input: sampleInput, Variant: "joker-wild", Persist: true})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if res.Code == "" {
		t.Fatalf("expected run code for persisted score")
	}

	run, err := svc.GetRun(ctx, res.Code)
	if err != nil {
		t.Fatalf("get run failed: %v", err)
	}
	if run.Total != 5905 || run.HandCount != 5 || run.Variant != "joker-wild" || run.InputHash != res.InputHash {
		t.Fatalf("unexpected run: %+v", run)
	}

	var hands []game.ScoredHand
	if err := json.Unmarshal(run.HandsJSON, &hands); err != nil {
		t.Fatalf("decode hands failed: %v", err)
	}
	if len(hands) != 5 || hands[0].Cards != "KTJJT" || hands[0].Rank != 5 || hands[0].Category != game.FourOfAKind {
		t.Fatalf("unexpected stored hands: %+v", hands)
	}
}

func TestGetRunNotFound(t *testing.T) {
	_, svc := newService(t, score.DefaultConfig())

	_, err := svc.GetRun(context.Background(), "NOPE")
	if err == nil || err != appErr.ErrRunNotFound {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	db, svc := newService(t, score.DefaultConfig())

	runs := []model.ScoreRun{
		{Code: "AAAAAAAAAA", Variant: "standard", HandCount: 1, Total: 1},
		{Code: "BBBBBBBBBB", Variant: "standard", HandCount: 2, Total: 5},
		{Code: "CCCCCCCCCC", Variant: "joker-wild", HandCount: 3, Total: 14},
	}
	if err := db.WithContext(ctx).Create(&runs).Error; err != nil {
		t.Fatalf("failed to seed runs: %v", err)
	}

	result, err := svc.ListRuns(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list runs failed: %v", err)
	}
	if result.Total != 3 {
		t.Fatalf("expected total=3, got %d", result.Total)
	}
	if len(result.Items) != 2 || result.Items[0].Code != "CCCCCCCCCC" {
		t.Fatalf("expected newest-first page of 2, got %+v", result.Items)
	}

	result, err = svc.ListRuns(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list runs page 2 failed: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Code != "AAAAAAAAAA" {
		t.Fatalf("unexpected page 2: %+v", result.Items)
	}
}

func TestScoreCacheHit(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	db, _ := newService(t, score.DefaultConfig())
	svc := score.NewService(db, rdb, score.DefaultConfig())

	first, err := svc.Score(ctx, score.Request{Input: sampleInput, Variant: "joker-wild"})
	if err != nil {
		t.Fatalf("first score failed: %v", err)
	}
	if first.Cached {
		t.Fatalf("first request should not be cached")
	}
	key := "handscore:result:joker-wild:" + first.InputHash
	if !mr.Exists(key) {
		t.Fatalf("expected cache entry %s, have %v", key, mr.Keys())
	}
	if ttl := mr.TTL(key); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", ttl)
	}

	second, err := svc.Score(ctx, score.Request{Input: sampleInput, Variant: "joker-wild", Persist: true})
	if err != nil {
		t.Fatalf("second score failed: %v", err)
	}
	if !second.Cached || second.Total != 5905 || second.Variant != game.VariantJokerWild {
		t.Fatalf("unexpected cached result: cached=%v total=%d variant=%s", second.Cached, second.Total, second.Variant)
	}
	if len(second.Hands) != len(first.Hands) {
		t.Fatalf("expected %d hands, got %d", len(first.Hands), len(second.Hands))
	}
	for i, h := range second.Hands {
		if h != first.Hands[i] {
			t.Fatalf("hand %d differs after cache: %+v vs %+v", i, h, first.Hands[i])
		}
	}
	if top := second.Hands[0]; top.Cards != "KTJJT" || top.Category != game.FourOfAKind || top.Rank != 5 || top.Bid != 220 {
		t.Fatalf("unexpected top hand: %+v", top)
	}
	if second.Code == "" {
		t.Fatalf("cached result should still be persisted")
	}

	std, err := svc.Score(ctx, score.Request{Input: sampleInput, Variant: "standard"})
	if err != nil {
		t.Fatalf("standard score failed: %v", err)
	}
	if std.Cached || std.Total != 6440 {
		t.Fatalf("standard should miss the joker-wild entry: cached=%v total=%d", std.Cached, std.Total)
	}
}

func TestScoreIgnoresCorruptCacheEntry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	db, _ := newService(t, score.DefaultConfig())
	svc := score.NewService(db, rdb, score.DefaultConfig())

	res, err := svc.Score(ctx, score.Request{Input: sampleInput})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if err := mr.Set("handscore:result:standard:"+res.InputHash, "{not json"); err != nil {
		t.Fatalf("failed to overwrite cache entry: %v", err)
	}

	res, err = svc.Score(ctx, score.Request{Input: sampleInput})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if res.Cached || res.Total != 6440 {
		t.Fatalf("expected recomputed result, got cached=%v total=%d", res.Cached, res.Total)
	}
}

func TestScoreSurvivesCacheOutage(t *testing.T) {
	dsn := "file:cache_outage?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	svc := score.NewService(db, rdb, score.DefaultConfig())
	res, err := svc.Score(context.Background(), score.Request{Input: sampleInput})
	if err != nil {
		t.Fatalf("score should not fail on cache errors: %v", err)
	}
	if res.Total != 6440 || res.Cached {
		t.Fatalf("unexpected result: total=%d cached=%v", res.Total, res.Cached)
	}
}
