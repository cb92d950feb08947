package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/nutriquest/internal/domain/entity"
	repo "github.com/oksasatya/nutriquest/internal/domain/repository"
	"github.com/oksasatya/nutriquest/internal/infrastructure/memory"
	"github.com/oksasatya/nutriquest/pkg/helpers"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }
func floatPtr(f float64) *float64 { return &f }

func newTestStore(t *testing.T) (*ProfileStore, *memory.KeyValueRepository) {
	t.Helper()
	r := memory.NewKeyValueRepository()
	s := NewProfileStore(r, helpers.NewLogger("nutriquest", "test"))
	s.Initialize(context.Background())
	return s, r
}

func storedProfile(t *testing.T, r repo.KeyValueRepository) entity.UserProfile {
	t.Helper()
	raw, err := r.Get(context.Background(), repo.KeyUserInfo)
	require.NoError(t, err)
	var p entity.UserProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func storedCompleted(t *testing.T, r repo.KeyValueRepository) []string {
	t.Helper()
	raw, err := r.Get(context.Background(), repo.KeyCompletedChallenges)
	require.NoError(t, err)
	var ids []string
	require.NoError(t, json.Unmarshal([]byte(raw), &ids))
	return ids
}

func TestInitializeSeedsDefaults(t *testing.T) {
	s, r := newTestStore(t)

	p := s.GetProfile()
	assert.Equal(t, "New User", p.Name)
	assert.Equal(t, 0, p.Coins)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0.0, p.XPProgress)
	assert.Empty(t, s.GetCompletedChallenges())

	assert.Equal(t, entity.DefaultProfile(), storedProfile(t, r))
	assert.Empty(t, storedCompleted(t, r))
}

func TestInitializeLoadsPersistedState(t *testing.T) {
	ctx := context.Background()
	r := memory.NewKeyValueRepository()
	require.NoError(t, r.Set(ctx, repo.KeyUserInfo, `{"name":"Jane","email":"jane@example.com","coins":245,"level":12,"xpProgress":65}`))
	require.NoError(t, r.Set(ctx, repo.KeyCompletedChallenges, `["7","8","7"]`))

	s := NewProfileStore(r, nil)
	s.Initialize(ctx)

	p := s.GetProfile()
	assert.Equal(t, "Jane", p.Name)
	assert.Equal(t, 245, p.Coins)
	assert.Equal(t, 12, p.Level)
	assert.Equal(t, 65.0, p.XPProgress)
	assert.Equal(t, []string{"7", "8"}, s.GetCompletedChallenges())
}

func TestInitializeFillsMissingFieldsFromDefaults(t *testing.T) {
	ctx := context.Background()
	r := memory.NewKeyValueRepository()
	require.NoError(t, r.Set(ctx, repo.KeyUserInfo, `{"name":"Jane"}`))

	s := NewProfileStore(r, nil)
	p := s.GetProfile()
	assert.Equal(t, "Jane", p.Name)
	assert.Equal(t, 1, p.Level)
}

func TestInitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, r := newTestStore(t)

	require.NoError(t, r.Set(ctx, repo.KeyUserInfo, `{"name":"Changed Behind Our Back","level":3}`))
	s.Initialize(ctx)

	assert.Equal(t, "New User", s.GetProfile().Name)
}

func TestInitializeCorruptedValuesFallBackToDefaults(t *testing.T) {
	tests := []struct {
		name      string
		userInfo  string
		completed string
	}{
		{name: "invalid json", userInfo: `{not json`, completed: `[`},
		{name: "wrong types", userInfo: `{"coins":"lots"}`, completed: `{"a":1}`},
		{name: "out of range", userInfo: `{"coins":-5,"level":1}`, completed: `[]`},
		{name: "level zero", userInfo: `{"level":0}`, completed: `[]`},
		{name: "xp over 100", userInfo: `{"level":2,"xpProgress":140}`, completed: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			r := memory.NewKeyValueRepository()
			require.NoError(t, r.Set(ctx, repo.KeyUserInfo, tt.userInfo))
			require.NoError(t, r.Set(ctx, repo.KeyCompletedChallenges, tt.completed))

			s := NewProfileStore(r, helpers.NewLogger("nutriquest", "test"))
			s.Initialize(ctx)

			assert.Equal(t, entity.DefaultProfile(), s.GetProfile())
			assert.Empty(t, s.GetCompletedChallenges())

			// the unreadable value is left in place until the next write
			raw, err := r.Get(ctx, repo.KeyUserInfo)
			require.NoError(t, err)
			assert.Equal(t, tt.userInfo, raw)
		})
	}
}

func TestUpdateProfilePreservesUntouchedFields(t *testing.T) {
	ctx := context.Background()
	s, r := newTestStore(t)

	_, err := s.UpdateProfile(ctx, entity.ProfilePatch{Bio: strPtr("x")})
	require.NoError(t, err)

	p, err := s.UpdateProfile(ctx, entity.ProfilePatch{Name: strPtr("Alex Kim")})
	require.NoError(t, err)

	assert.Equal(t, "Alex Kim", p.Name)
	assert.Equal(t, "x", p.Bio)
	assert.Equal(t, 0, p.Coins)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, p, s.GetProfile())
	assert.Equal(t, p, storedProfile(t, r))
}

func TestUpdateProfileSequenceMatchesMergedPatch(t *testing.T) {
	ctx := context.Background()
	patches := []entity.ProfilePatch{
		{Name: strPtr("A"), Email: strPtr("a@example.com")},
		{Phone: strPtr("+15550001"), Coins: intPtr(10)},
		{Name: strPtr("B"), Level: intPtr(3), XPProgress: floatPtr(42.5)},
		{Avatar: strPtr("https://example.com/a.png"), Bio: strPtr("")},
	}

	s, _ := newTestStore(t)
	want := entity.DefaultProfile()
	for _, p := range patches {
		_, err := s.UpdateProfile(ctx, p)
		require.NoError(t, err)
		want = want.Apply(p)
	}
	assert.Equal(t, want, s.GetProfile())
}

func TestUpdateProfileAcceptsAnyStrings(t *testing.T) {
	s, _ := newTestStore(t)
	p, err := s.UpdateProfile(context.Background(), entity.ProfilePatch{
		Name:  strPtr(""),
		Email: strPtr("not an email"),
		Phone: strPtr("call me maybe"),
	})
	require.NoError(t, err)
	assert.Equal(t, "", p.Name)
	assert.Equal(t, "not an email", p.Email)
}

func TestUpdateProfileRejectsInvalidNumbers(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, err := s.UpdateProfile(ctx, entity.ProfilePatch{Coins: intPtr(100)})
	require.NoError(t, err)
	before := s.GetProfile()

	tests := []struct {
		name  string
		patch entity.ProfilePatch
	}{
		{name: "coins decrease", patch: entity.ProfilePatch{Coins: intPtr(99)}},
		{name: "negative coins", patch: entity.ProfilePatch{Coins: intPtr(-1)}},
		{name: "level zero", patch: entity.ProfilePatch{Level: intPtr(0)}},
		{name: "xp above range", patch: entity.ProfilePatch{XPProgress: floatPtr(100.5)}},
		{name: "xp below range", patch: entity.ProfilePatch{XPProgress: floatPtr(-0.1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateProfile(ctx, tt.patch)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Equal(t, before, s.GetProfile())
		})
	}
}

func TestCompleteChallengeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, r := newTestStore(t)

	first, err := s.CompleteChallenge(ctx, "c1", 50)
	require.NoError(t, err)
	assert.False(t, first.AlreadyCompleted)
	assert.Equal(t, 50, first.NewCoinBalance)

	second, err := s.CompleteChallenge(ctx, "c1", 50)
	require.NoError(t, err)
	assert.True(t, second.AlreadyCompleted)
	assert.Equal(t, 50, second.NewCoinBalance)

	assert.Equal(t, 50, s.GetProfile().Coins)
	assert.Equal(t, []string{"c1"}, s.GetCompletedChallenges())
	assert.Equal(t, []string{"c1"}, storedCompleted(t, r))
	assert.Equal(t, 50, storedProfile(t, r).Coins)
}

func TestCompleteChallengeDistinctIDsAccumulate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.CompleteChallenge(ctx, "c1", 50)
	require.NoError(t, err)
	res, err := s.CompleteChallenge(ctx, "c2", 25)
	require.NoError(t, err)

	assert.Equal(t, 75, res.NewCoinBalance)
	assert.Len(t, s.GetCompletedChallenges(), 2)
	assert.True(t, s.IsCompleted("c2"))
	assert.False(t, s.IsCompleted("c3"))
}

func TestCompleteChallengeZeroRewardStillRecords(t *testing.T) {
	s, _ := newTestStore(t)
	res, err := s.CompleteChallenge(context.Background(), "free", 0)
	require.NoError(t, err)
	assert.False(t, res.AlreadyCompleted)
	assert.Equal(t, 0, res.NewCoinBalance)
	assert.True(t, s.IsCompleted("free"))
}

func TestCompleteChallengeRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		balance int
		id      string
		reward  entity.Reward
	}{
		{name: "empty id", id: "", reward: entity.Reward{Coins: 10}},
		{name: "blank id", id: "   ", reward: entity.Reward{Coins: 10}},
		{name: "negative reward", id: "c1", reward: entity.Reward{Coins: -10}},
		{name: "negative xp", id: "c1", reward: entity.Reward{XP: -1}},
		{name: "coin overflow", balance: 50, id: "c2", reward: entity.Reward{Coins: math.MaxInt}},
		{name: "coin overflow by one", balance: 50, id: "c2", reward: entity.Reward{Coins: math.MaxInt - 49}},
		{name: "xp above cap", id: "c1", reward: entity.Reward{XP: entity.MaxRewardXP + 1}},
		{name: "xp max int", id: "c1", reward: entity.Reward{XP: math.MaxInt}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, r := newTestStore(t)
			if tt.balance > 0 {
				_, err := s.CompleteChallenge(ctx, "c1", tt.balance)
				require.NoError(t, err)
			}
			before := s.GetCompletedChallenges()

			_, err := s.ClaimReward(ctx, tt.id, tt.reward)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Equal(t, before, s.GetCompletedChallenges())
			assert.Equal(t, tt.balance, s.GetProfile().Coins)
			assert.Equal(t, 1, s.GetProfile().Level)
			assert.Equal(t, tt.balance, storedProfile(t, r).Coins)
		})
	}
}

func TestCompleteChallengeAcceptsBalanceUpToMaxInt(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.CompleteChallenge(ctx, "c1", 50)
	require.NoError(t, err)
	res, err := s.CompleteChallenge(ctx, "c2", math.MaxInt-50)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, res.NewCoinBalance)

	_, err = s.CompleteChallenge(ctx, "c3", 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, math.MaxInt, s.GetProfile().Coins)
	assert.False(t, s.IsCompleted("c3"))
}

func TestClaimRewardLargeXPReturnsPromptly(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	done := make(chan entity.CompletionResult, 1)
	go func() {
		res, err := s.ClaimReward(ctx, "big", entity.Reward{XP: entity.MaxRewardXP})
		assert.NoError(t, err)
		done <- res
	}()

	select {
	case res := <-done:
		assert.Equal(t, 1+entity.MaxRewardXP/100, res.Level)
		assert.Equal(t, 0.0, res.XPProgress)
	case <-time.After(2 * time.Second):
		t.Fatal("ClaimReward did not return")
	}
	// the store is still usable
	assert.True(t, s.IsCompleted("big"))
}

func TestClaimRewardRejectsLevelOverflow(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.UpdateProfile(ctx, entity.ProfilePatch{Level: intPtr(math.MaxInt), XPProgress: floatPtr(50)})
	require.NoError(t, err)

	_, err = s.ClaimReward(ctx, "c1", entity.Reward{Coins: 5, XP: 60})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.False(t, s.IsCompleted("c1"))
	assert.Equal(t, 0, s.GetProfile().Coins)

	res, err := s.ClaimReward(ctx, "c2", entity.Reward{XP: 40})
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, res.Level)
	assert.Equal(t, 90.0, res.XPProgress)
}

func TestClaimRewardRollsXPIntoLevels(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	res, err := s.ClaimReward(ctx, "a", entity.Reward{Coins: 10, XP: 250})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Level)
	assert.Equal(t, 50.0, res.XPProgress)

	res, err = s.ClaimReward(ctx, "b", entity.Reward{XP: 60})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Level)
	assert.Equal(t, 10.0, res.XPProgress)
	assert.Equal(t, 10, res.NewCoinBalance)

	_, err = s.ClaimReward(ctx, "c", entity.Reward{XP: -1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestStateSurvivesReinitialize(t *testing.T) {
	ctx := context.Background()
	s, r := newTestStore(t)

	_, err := s.UpdateProfile(ctx, entity.ProfilePatch{Name: strPtr("Jane"), Bio: strPtr("hi")})
	require.NoError(t, err)
	_, err = s.ClaimReward(ctx, "7", entity.Reward{Coins: 70, XP: 140})
	require.NoError(t, err)

	reloaded := NewProfileStore(r, nil)
	reloaded.Initialize(ctx)

	assert.Equal(t, s.GetProfile(), reloaded.GetProfile())
	assert.Equal(t, s.GetCompletedChallenges(), reloaded.GetCompletedChallenges())
}

func TestResetRestoresDefaults(t *testing.T) {
	ctx := context.Background()
	s, r := newTestStore(t)
	_, err := s.CompleteChallenge(ctx, "c1", 50)
	require.NoError(t, err)

	p := s.Reset(ctx)

	assert.Equal(t, entity.DefaultProfile(), p)
	assert.Empty(t, s.GetCompletedChallenges())
	assert.Equal(t, entity.DefaultProfile(), storedProfile(t, r))
	assert.Empty(t, storedCompleted(t, r))

	// the id can be claimed again after a reset
	res, err := s.CompleteChallenge(ctx, "c1", 50)
	require.NoError(t, err)
	assert.False(t, res.AlreadyCompleted)
}

func TestSubscribersSeeEveryMutation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	var got []Change
	unsubscribe := s.Subscribe(func(c Change) { got = append(got, c) })

	_, err := s.UpdateProfile(ctx, entity.ProfilePatch{Name: strPtr("Jane"), Email: strPtr("j@example.com")})
	require.NoError(t, err)
	_, err = s.CompleteChallenge(ctx, "c1", 5)
	require.NoError(t, err)
	_, err = s.CompleteChallenge(ctx, "c1", 5) // duplicate: no change
	require.NoError(t, err)
	_, err = s.UpdateProfile(ctx, entity.ProfilePatch{Level: intPtr(0)}) // rejected: no change
	require.Error(t, err)
	s.Reset(ctx)

	require.Len(t, got, 3)
	assert.Equal(t, ChangeProfileUpdated, got[0].Kind)
	assert.Equal(t, []string{"name", "email"}, got[0].Fields)
	assert.Equal(t, "Jane", got[0].Profile.Name)
	assert.Equal(t, ChangeChallengeCompleted, got[1].Kind)
	assert.Equal(t, "c1", got[1].ChallengeID)
	assert.Equal(t, 5, got[1].Profile.Coins)
	assert.Equal(t, ChangeProfileReset, got[2].Kind)

	unsubscribe()
	_, err = s.CompleteChallenge(ctx, "c2", 5)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSubscribersSeeChangesInMutationOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	var (
		mu  sync.Mutex
		got []Change
	)
	s.Subscribe(func(c Change) {
		// reading the store from a subscriber must not block other mutations
		assert.GreaterOrEqual(t, s.GetProfile().Coins, c.Profile.Coins)
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
	})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.CompleteChallenge(ctx, fmt.Sprintf("c%d", i), 1)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Len(t, got, n)
	for i, c := range got {
		assert.Equal(t, uint64(i+1), c.Seq)
		assert.Equal(t, i+1, c.Profile.Coins, "delivery %d carries a stale balance", i)
	}
}

func TestSubscriberMayReadStore(t *testing.T) {
	s, _ := newTestStore(t)
	var seen int
	s.Subscribe(func(Change) { seen = s.GetProfile().Coins })

	_, err := s.CompleteChallenge(context.Background(), "c1", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, seen)
}

func TestPersistFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	s, r := newTestStore(t)
	r.FailWrites = errors.New("disk full")
	failuresBefore := persistFailures.Value()

	res, err := s.CompleteChallenge(ctx, "c1", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, res.NewCoinBalance)
	assert.Equal(t, 50, s.GetProfile().Coins)

	p, err := s.UpdateProfile(ctx, entity.ProfilePatch{Name: strPtr("Offline")})
	require.NoError(t, err)
	assert.Equal(t, "Offline", p.Name)

	assert.Equal(t, failuresBefore+2, persistFailures.Value())
	// storage still has the seeded defaults
	assert.Equal(t, 0, storedProfile(t, r).Coins)
}

func TestConcurrentCompletionsCreditOnce(t *testing.T) {
	s, _ := newTestStore(t)

	const workers = 32
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fresh int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.CompleteChallenge(context.Background(), "race", 10)
			if err != nil {
				t.Error(err)
				return
			}
			if !res.AlreadyCompleted {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fresh)
	assert.Equal(t, 10, s.GetProfile().Coins)
}

func TestLazyInitializationOnFirstRead(t *testing.T) {
	r := memory.NewKeyValueRepository()
	s := NewProfileStore(r, nil)

	assert.Empty(t, s.GetCompletedChallenges())
	_, err := r.Get(context.Background(), repo.KeyUserInfo)
	assert.NoError(t, err)
}
