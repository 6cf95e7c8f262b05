// Service tests run the real transaction paths against a PostgreSQL
// container and are skipped when Docker is not available.
package service

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Wafflinyo/USALeague/internal/feed"
	"github.com/Wafflinyo/USALeague/internal/game/picks"
	"github.com/Wafflinyo/USALeague/internal/game/slot"
	"github.com/Wafflinyo/USALeague/internal/model"
	"github.com/Wafflinyo/USALeague/internal/repository"
	"github.com/Wafflinyo/USALeague/pkg/apperror"
)

func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, repository.Migrate(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seqPicker replays a fixed draw sequence so spin outcomes are scripted.
type seqPicker struct {
	seq []int
	pos int
}

func (p *seqPicker) Intn(n int) int {
	v := p.seq[p.pos%len(p.seq)]
	p.pos++
	return v % n
}

func slotPool() []slot.Symbol {
	return []slot.Symbol{
		{Type: "team", TeamName: "USA Comets", Icon: "comets.png"},
		{Type: "team", TeamName: "Nashville Narfs", Icon: "narfs.png"},
		{Type: "team", TeamName: "Dreary Eggbeaters", Icon: "eggbeaters.png"},
		{Type: "mascot", TeamName: "Hopedogo", Icon: "hopedogo.png"},
	}
}

func newSlotsService(pool *pgxpool.Pool, draws []int) *SlotsService {
	engine := slot.New(&slot.Config{BasePayout: 500, PoisonLabel: "hopedogo"}, &seqPicker{seq: draws})
	return NewSlotsService(pool, repository.NewAccountRepository(), engine, feed.NopAnnouncer{}, 1)
}

func TestBonusClaim_NewAccount(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	bonus := NewBonusService(pool, repository.NewAccountRepository(), 100, 50)

	// First visit creates the profile with both bonuses.
	result, err := bonus.Claim(ctx, "acct-bonus", "2026-09-01")
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.True(t, result.Created)
	assert.Equal(t, int64(150), result.Balance)

	acct, err := repository.NewAccountRepository().GetByID(ctx, pool, "acct-bonus")
	require.NoError(t, err)
	require.NotNil(t, acct.LastDailyBonus)
	assert.Equal(t, "2026-09-01", *acct.LastDailyBonus)

	// Same-day repeat is a no-op.
	result, err = bonus.Claim(ctx, "acct-bonus", "2026-09-01")
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Equal(t, int64(150), result.Balance)

	// Next civil day grants again.
	result, err = bonus.Claim(ctx, "acct-bonus", "2026-09-02")
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.False(t, result.Created)
	assert.Equal(t, int64(200), result.Balance)
}

func TestBonusClaim_RejectsBadDate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	bonus := NewBonusService(pool, repository.NewAccountRepository(), 100, 50)
	_, err := bonus.Claim(context.Background(), "acct", "yesterday")
	assert.True(t, apperror.Is(err, apperror.KindInvalidInput))
}

func TestSlotsSpin_LossDebitsCostAndResetsStreak(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	_, err := accounts.Create(ctx, pool, "acct-spin", "user_acct-s", 10, nil)
	require.NoError(t, err)

	slots := newSlotsService(pool, []int{0, 1, 2})
	result, err := slots.Spin(ctx, "acct-spin", slotPool())
	require.NoError(t, err)
	assert.False(t, result.Win)
	assert.Equal(t, int64(0), result.Payout)
	assert.Equal(t, int64(9), result.Balance)
	assert.Equal(t, 0, result.Streak)
}

func TestSlotsSpin_WinStreakDoubles(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	_, err := accounts.Create(ctx, pool, "acct-win", "user_acct-w", 10, nil)
	require.NoError(t, err)

	slots := newSlotsService(pool, []int{0, 0, 0})

	// First win pays the base.
	result, err := slots.Spin(ctx, "acct-win", slotPool())
	require.NoError(t, err)
	assert.True(t, result.Win)
	assert.Equal(t, int64(500), result.Payout)
	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, int64(509), result.Balance)

	// Second consecutive win doubles.
	result, err = slots.Spin(ctx, "acct-win", slotPool())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.Payout)
	assert.Equal(t, 2, result.Streak)
	assert.Equal(t, int64(1508), result.Balance)
}

func TestSlotsSpin_PoisonTripleLoses(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	_, err := accounts.Create(ctx, pool, "acct-poison", "user_acct-p", 10, nil)
	require.NoError(t, err)

	slots := newSlotsService(pool, []int{3, 3, 3})
	result, err := slots.Spin(ctx, "acct-poison", slotPool())
	require.NoError(t, err)
	assert.True(t, result.PoisonTriple)
	assert.False(t, result.Win)
	assert.Equal(t, int64(9), result.Balance)
}

func TestSlotsSpin_RequiresFunds(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	_, err := accounts.Create(ctx, pool, "acct-broke", "user_acct-b", 0, nil)
	require.NoError(t, err)

	slots := newSlotsService(pool, []int{0, 0, 0})
	_, err = slots.Spin(ctx, "acct-broke", slotPool())
	assert.True(t, apperror.Is(err, apperror.KindInsufficientFunds))

	_, err = slots.Spin(ctx, "acct-missing", slotPool())
	assert.True(t, apperror.Is(err, apperror.KindFailedPrecondition))
}

func TestShopPurchase_SalePrice(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	_, err := accounts.Create(ctx, pool, "acct-shop", "user_acct-sh", 1000, nil)
	require.NoError(t, err)

	// comet-baseball has base price 200; 10% off makes it 180.
	shop := NewShopService(pool, accounts, repository.NewInventoryRepository(),
		feed.StaticSaleTable{"comet-baseball": 0.10})

	result, err := shop.Purchase(ctx, "acct-shop", "comet-baseball")
	require.NoError(t, err)
	assert.Equal(t, int64(180), result.FinalPrice)
	assert.Equal(t, int64(820), result.Balance)
	assert.Equal(t, 1, result.NewQty)

	entries, err := repository.NewInventoryRepository().ListByAccount(ctx, pool, "acct-shop")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Qty)
}

func TestShopPurchase_NonStackableOwnedOnce(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	_, err := accounts.Create(ctx, pool, "acct-own", "user_acct-o", 10000, nil)
	require.NoError(t, err)

	shop := NewShopService(pool, accounts, repository.NewInventoryRepository(), feed.StaticSaleTable{})

	_, err = shop.Purchase(ctx, "acct-own", "usa-cap")
	require.NoError(t, err)

	_, err = shop.Purchase(ctx, "acct-own", "usa-cap")
	assert.True(t, apperror.Is(err, apperror.KindAlreadyOwned))
}

func TestShopPurchase_StackLimit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	_, err := accounts.Create(ctx, pool, "acct-stack", "user_acct-st", 100000, nil)
	require.NoError(t, err)

	shop := NewShopService(pool, accounts, repository.NewInventoryRepository(), feed.StaticSaleTable{})

	for i := 1; i <= 10; i++ {
		result, err := shop.Purchase(ctx, "acct-stack", "usa-baseball")
		require.NoError(t, err)
		assert.Equal(t, i, result.NewQty)
	}

	_, err = shop.Purchase(ctx, "acct-stack", "usa-baseball")
	assert.True(t, apperror.Is(err, apperror.KindStackLimitReached))
}

func TestShopPurchase_Errors(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	_, err := accounts.Create(ctx, pool, "acct-err", "user_acct-e", 5, nil)
	require.NoError(t, err)

	shop := NewShopService(pool, accounts, repository.NewInventoryRepository(), feed.StaticSaleTable{})

	_, err = shop.Purchase(ctx, "acct-err", "usa-cap")
	assert.True(t, apperror.Is(err, apperror.KindInsufficientFunds))

	_, err = shop.Purchase(ctx, "acct-err", "no-such-item")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = shop.Purchase(ctx, "acct-err", "")
	assert.True(t, apperror.Is(err, apperror.KindInvalidInput))
}

func intp(n int) *int { return &n }

func fiveGameDay() []model.Game {
	return []model.Game{
		{Away: "USA Comets", Home: "Nashville Narfs", AwayScore: intp(5), HomeScore: intp(2)},
		{Away: "Dreary Eggbeaters", Home: "Dayton Dukes", AwayScore: intp(1), HomeScore: intp(6)},
		{Away: "Springfield Sliders", Home: "USA Comets", AwayScore: intp(0), HomeScore: intp(4)},
		{Away: "Nashville Narfs", Home: "Dreary Eggbeaters", AwayScore: intp(9), HomeScore: intp(0)},
		{Away: "Dayton Dukes", Home: "Springfield Sliders", AwayScore: intp(2), HomeScore: intp(4)},
	}
}

func newSettlementService(pool *pgxpool.Pool, payout picks.PayoutPolicy) *SettlementService {
	return NewSettlementService(
		pool,
		repository.NewAccountRepository(),
		repository.NewPredictionRepository(),
		repository.NewSettlementRepository(),
		payout,
		true,
		1,
	)
}

func TestSettle_FourOfFivePaysTable(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	_, err := accounts.Create(ctx, pool, "acct-pred", "user_acct-pr", 100, nil)
	require.NoError(t, err)

	settlement := newSettlementService(pool, picks.Table{0, 10, 50, 200, 1800, 5000})

	require.NoError(t, settlement.PostResults(ctx, "2026-09-01", fiveGameDay()))
	require.NoError(t, settlement.SubmitPicks(ctx, "acct-pred", "2026-09-01", map[string]string{
		"g1": "USA Comets",         // correct
		"g2": "Dayton Dukes",       // correct
		"g3": "Springfield Sliders", // wrong
		"g4": "Nashville Narfs",    // correct
		"g5": "Springfield Sliders", // correct
	}))

	result, err := settlement.Settle(ctx, "acct-pred", "2026-09-01")
	require.NoError(t, err)
	require.True(t, result.Available)
	assert.False(t, result.AlreadyProcessed)
	require.NotNil(t, result.Record)
	assert.Equal(t, model.SettlementResults, result.Record.Kind)
	assert.Equal(t, 4, result.Record.Correct)
	assert.Equal(t, 5, result.Record.Total)
	assert.Equal(t, int64(1800), result.Record.Payout)

	acct, err := accounts.GetByID(ctx, pool, "acct-pred")
	require.NoError(t, err)
	assert.Equal(t, int64(1900), acct.Balance)
	assert.Equal(t, int64(4), acct.CorrectPicks)
	assert.Equal(t, int64(5), acct.TotalPicks)

	leaders, err := repository.NewSettlementRepository().TopLeaders(ctx, pool, 10)
	require.NoError(t, err)
	require.Len(t, leaders, 1)
	assert.Equal(t, 80.0, leaders[0].Pct)

	// Settling the same day again must not pay twice.
	again, err := settlement.Settle(ctx, "acct-pred", "2026-09-01")
	require.NoError(t, err)
	assert.True(t, again.AlreadyProcessed)
	assert.Equal(t, int64(1800), again.Record.Payout)

	acct, err = accounts.GetByID(ctx, pool, "acct-pred")
	require.NoError(t, err)
	assert.Equal(t, int64(1900), acct.Balance)
}

func TestSettle_NoVote(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	_, err := accounts.Create(ctx, pool, "acct-novote", "user_acct-nv", 100, nil)
	require.NoError(t, err)

	settlement := newSettlementService(pool, picks.PerCorrect{Coins: 10})
	require.NoError(t, settlement.PostResults(ctx, "2026-09-01", fiveGameDay()))

	result, err := settlement.Settle(ctx, "acct-novote", "2026-09-01")
	require.NoError(t, err)
	require.True(t, result.Available)
	assert.Equal(t, model.SettlementNoVote, result.Record.Kind)
	assert.Equal(t, int64(0), result.Record.Payout)

	acct, err := accounts.GetByID(ctx, pool, "acct-novote")
	require.NoError(t, err)
	assert.Equal(t, int64(100), acct.Balance)
	assert.Equal(t, int64(0), acct.TotalPicks)

	// Second call returns the identical stored record.
	again, err := settlement.Settle(ctx, "acct-novote", "2026-09-01")
	require.NoError(t, err)
	assert.True(t, again.AlreadyProcessed)
	assert.Equal(t, model.SettlementNoVote, again.Record.Kind)
	assert.Equal(t, int64(0), again.Record.Payout)
}

func TestSettle_IncompletePicks(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	_, err := accounts.Create(ctx, pool, "acct-inc", "user_acct-in", 100, nil)
	require.NoError(t, err)

	settlement := newSettlementService(pool, picks.PerCorrect{Coins: 10})
	require.NoError(t, settlement.PostResults(ctx, "2026-09-01", fiveGameDay()))
	require.NoError(t, settlement.SubmitPicks(ctx, "acct-inc", "2026-09-01", map[string]string{
		"g1": "USA Comets",
		"g2": "Dayton Dukes",
	}))

	result, err := settlement.Settle(ctx, "acct-inc", "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, model.SettlementIncomplete, result.Record.Kind)
	assert.Equal(t, int64(0), result.Record.Payout)

	acct, err := accounts.GetByID(ctx, pool, "acct-inc")
	require.NoError(t, err)
	assert.Equal(t, int64(100), acct.Balance)
}

func TestSettle_ResultsNotAvailable(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	_, err := accounts.Create(ctx, pool, "acct-none", "user_acct-no", 100, nil)
	require.NoError(t, err)

	settlement := newSettlementService(pool, picks.PerCorrect{Coins: 10})

	result, err := settlement.Settle(ctx, "acct-none", "2026-09-01")
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Equal(t, "results-not-available", result.Reason)
	assert.Nil(t, result.Record)
}

func TestSyncNext_WalksNewestFirst(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	_, err := accounts.Create(ctx, pool, "acct-sync", "user_acct-sy", 100, nil)
	require.NoError(t, err)

	settlement := newSettlementService(pool, picks.PerCorrect{Coins: 10})
	require.NoError(t, settlement.PostResults(ctx, "2026-08-30", fiveGameDay()))
	require.NoError(t, settlement.PostResults(ctx, "2026-08-31", fiveGameDay()))

	result, err := settlement.SyncNext(ctx, "acct-sync")
	require.NoError(t, err)
	require.True(t, result.Available)
	assert.Equal(t, "2026-08-31", result.Record.DayID)

	result, err = settlement.SyncNext(ctx, "acct-sync")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", result.Record.DayID)

	result, err = settlement.SyncNext(ctx, "acct-sync")
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Equal(t, "no-unseen-results", result.Reason)
}

func TestAccountService_EnsureAndRename(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	accounts := repository.NewAccountRepository()
	settlements := repository.NewSettlementRepository()
	svc := NewAccountService(pool, accounts, repository.NewInventoryRepository(), settlements, 100)

	acct, created, err := svc.EnsureAccount(ctx, "acct-ensure", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(100), acct.Balance)
	assert.Equal(t, "user_acct-e", acct.DisplayName)

	// Second ensure is a read.
	acct, created, err = svc.EnsureAccount(ctx, "acct-ensure", "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(100), acct.Balance)

	require.NoError(t, settlements.UpsertLeaderboard(ctx, pool, &model.LeaderboardEntry{
		AccountID: "acct-ensure", DisplayName: acct.DisplayName, Correct: 1, Total: 2, Pct: 50,
	}))

	require.NoError(t, svc.UpdateDisplayName(ctx, "acct-ensure", "  Slugger  "))

	got, err := svc.GetAccount(ctx, "acct-ensure")
	require.NoError(t, err)
	assert.Equal(t, "Slugger", got.DisplayName)

	leaders, err := svc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, leaders, 1)
	assert.Equal(t, "Slugger", leaders[0].DisplayName)

	err = svc.UpdateDisplayName(ctx, "acct-ensure", "x")
	assert.True(t, apperror.Is(err, apperror.KindInvalidInput))
}
