package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	usagerepo "github.com/upskillworks/roadmap-backend/internal/data/repos/usage"
	types "github.com/upskillworks/roadmap-backend/internal/domain"
	pkgerrors "github.com/upskillworks/roadmap-backend/internal/pkg/errors"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
	"github.com/upskillworks/roadmap-backend/internal/platform/openai"
	"github.com/upskillworks/roadmap-backend/internal/utils"
)

// QuotaService enforces the soft per-user LLM call caps and records
// usage. The counters are Redis INCR windows read before write, so
// under high concurrency they are approximate; that is acceptable for
// a usage cap and would not be for billing.
type QuotaService interface {
	// Check fails with ErrQuotaExceeded before any LLM spend.
	Check(ctx context.Context, userID uuid.UUID) error
	// Record counts the spend and writes the usage ledger row.
	// Best-effort: failures are logged and swallowed.
	Record(ctx context.Context, userID uuid.UUID, operation string, model string, usage *openai.Usage)
}

type quotaService struct {
	db  *gorm.DB
	log *logger.Logger
	rdb *goredis.Client

	usageRepo    usagerepo.LLMUsageRepo
	dailyLimit   int
	monthlyLimit int
}

func NewQuotaService(db *gorm.DB, baseLog *logger.Logger, rdb *goredis.Client, usageRepo usagerepo.LLMUsageRepo) QuotaService {
	log := baseLog.With("service", "QuotaService")
	return &quotaService{
		db:           db,
		log:          log,
		rdb:          rdb,
		usageRepo:    usageRepo,
		dailyLimit:   utils.GetEnvAsInt("LLM_DAILY_CALL_LIMIT", 20, baseLog),
		monthlyLimit: utils.GetEnvAsInt("LLM_MONTHLY_CALL_LIMIT", 200, baseLog),
	}
}

func (s *quotaService) dailyKey(userID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("llm:quota:d:%s:%s", now.UTC().Format("20060102"), userID)
}

func (s *quotaService) monthlyKey(userID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("llm:quota:m:%s:%s", now.UTC().Format("200601"), userID)
}

func (s *quotaService) Check(ctx context.Context, userID uuid.UUID) error {
	if s.rdb == nil {
		return nil
	}
	now := time.Now()

	daily, err := s.rdb.Get(ctx, s.dailyKey(userID, now)).Int()
	if err != nil && err != goredis.Nil {
		// A quota-store outage degrades open; the cap is soft.
		s.log.Warn("quota read failed, allowing call", "user_id", userID, "error", err)
		return nil
	}
	if s.dailyLimit > 0 && daily >= s.dailyLimit {
		return pkgerrors.ErrQuotaExceeded
	}

	monthly, err := s.rdb.Get(ctx, s.monthlyKey(userID, now)).Int()
	if err != nil && err != goredis.Nil {
		s.log.Warn("quota read failed, allowing call", "user_id", userID, "error", err)
		return nil
	}
	if s.monthlyLimit > 0 && monthly >= s.monthlyLimit {
		return pkgerrors.ErrQuotaExceeded
	}
	return nil
}

func (s *quotaService) Record(ctx context.Context, userID uuid.UUID, operation string, model string, usage *openai.Usage) {
	calls := 1
	inTokens, outTokens := 0, 0
	if usage != nil {
		if usage.Calls > 0 {
			calls = usage.Calls
		}
		inTokens = usage.InputTokens
		outTokens = usage.OutputTokens
	}

	if s.rdb != nil {
		now := time.Now()
		dk := s.dailyKey(userID, now)
		mk := s.monthlyKey(userID, now)
		pipe := s.rdb.Pipeline()
		pipe.IncrBy(ctx, dk, int64(calls))
		pipe.Expire(ctx, dk, 48*time.Hour)
		pipe.IncrBy(ctx, mk, int64(calls))
		pipe.Expire(ctx, mk, 40*24*time.Hour)
		if _, err := pipe.Exec(ctx); err != nil {
			s.log.Warn("quota counter update failed", "user_id", userID, "error", err)
		}
	}

	row := &types.LLMUsageRecord{
		UserID:       userID,
		Operation:    operation,
		Model:        model,
		InputTokens:  inTokens,
		OutputTokens: outTokens,
		CallCount:    calls,
	}
	if err := s.usageRepo.Create(ctx, nil, row); err != nil {
		s.log.Warn("usage record write failed", "user_id", userID, "operation", operation, "error", err)
	}
}

// NewRedisClient dials the quota counter store. A missing REDIS_ADDR
// is not an error: the service runs with the caps disabled.
func NewRedisClient(log *logger.Logger) *goredis.Client {
	addr := utils.GetEnv("REDIS_ADDR", "", log)
	if addr == "" {
		log.Warn("REDIS_ADDR not set, LLM quota caps disabled")
		return nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis ping failed, LLM quota caps disabled", "error", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
