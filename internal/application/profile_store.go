package application

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/nutriquest/internal/domain/entity"
	repo "github.com/oksasatya/nutriquest/internal/domain/repository"
)

// XP needed to advance one level; XPProgress is kept as a percentage of it.
const xpPerLevel = 100

var (
	completionsTotal = expvar.NewInt("challenges_completed_total")
	duplicatesTotal  = expvar.NewInt("challenges_duplicate_total")
	persistFailures  = expvar.NewInt("store_persist_failures_total")
)

type ChangeKind string

const (
	ChangeProfileUpdated     ChangeKind = "profile_updated"
	ChangeChallengeCompleted ChangeKind = "challenge_completed"
	ChangeProfileReset       ChangeKind = "profile_reset"
)

// Change is delivered to subscribers after every successful mutation.
type Change struct {
	Kind        ChangeKind
	Profile     entity.UserProfile
	Fields      []string // profile_updated only
	ChallengeID string   // challenge_completed only
	Reward      entity.Reward
	At          time.Time
	Seq         uint64 // increases by one per mutation
}

// ProfileStore is the single holder of the user profile and the completed challenge set.
// Every mutation writes through to the repository before returning.
type ProfileStore struct {
	Repo   repo.KeyValueRepository
	Logger *logrus.Logger

	mu          sync.Mutex
	initialized bool
	profile     entity.UserProfile
	completed   map[string]struct{}

	seq        uint64 // last stamped change, guarded by mu
	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	delivered  uint64 // last delivered change, guarded by notifyMu

	subMu   sync.RWMutex
	subs    map[int]func(Change)
	nextSub int
}

func NewProfileStore(r repo.KeyValueRepository, logger *logrus.Logger) *ProfileStore {
	s := &ProfileStore{
		Repo:      r,
		Logger:    logger,
		profile:   entity.DefaultProfile(),
		completed: map[string]struct{}{},
		subs:      map[int]func(Change){},
	}
	s.notifyCond = sync.NewCond(&s.notifyMu)
	return s
}

// Initialize loads persisted state, falling back to defaults for anything
// missing or unreadable. Calling it again is a no-op.
func (s *ProfileStore) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked(ctx)
}

func (s *ProfileStore) initLocked(ctx context.Context) {
	if s.initialized {
		return
	}
	seed := map[string]string{}

	profile, found := s.loadProfile(ctx)
	if !found {
		b, _ := json.Marshal(profile)
		seed[repo.KeyUserInfo] = string(b)
	}
	completed, found := s.loadCompleted(ctx)
	if !found {
		seed[repo.KeyCompletedChallenges] = "[]"
	}

	s.profile = profile
	s.completed = completed
	s.initialized = true

	if len(seed) > 0 {
		s.persist(ctx, seed)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"coins":     profile.Coins,
			"level":     profile.Level,
			"completed": len(completed),
		}).Info("profile store initialized")
	}
}

// loadProfile reports found=false only when the key was never written;
// corrupted or unreadable values are replaced by defaults but left in storage.
func (s *ProfileStore) loadProfile(ctx context.Context) (entity.UserProfile, bool) {
	raw, err := s.Repo.Get(ctx, repo.KeyUserInfo)
	if errors.Is(err, repo.ErrKeyNotFound) {
		return entity.DefaultProfile(), false
	}
	if err != nil {
		s.warn(err, repo.KeyUserInfo, "storage unavailable, using default profile")
		return entity.DefaultProfile(), true
	}

	p := entity.DefaultProfile()
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.warn(err, repo.KeyUserInfo, "corrupted profile snapshot, using defaults")
		return entity.DefaultProfile(), true
	}
	if err := validateProfile(p); err != nil {
		s.warn(err, repo.KeyUserInfo, "profile snapshot out of range, using defaults")
		return entity.DefaultProfile(), true
	}
	return p, true
}

func (s *ProfileStore) loadCompleted(ctx context.Context) (map[string]struct{}, bool) {
	out := map[string]struct{}{}
	raw, err := s.Repo.Get(ctx, repo.KeyCompletedChallenges)
	if errors.Is(err, repo.ErrKeyNotFound) {
		return out, false
	}
	if err != nil {
		s.warn(err, repo.KeyCompletedChallenges, "storage unavailable, using empty challenge set")
		return out, true
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.warn(err, repo.KeyCompletedChallenges, "corrupted challenge set, using empty set")
		return out, true
	}
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, true
}

// GetProfile returns a copy of the current profile.
func (s *ProfileStore) GetProfile() entity.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked(context.Background())
	return s.profile
}

// GetCompletedChallenges returns the completed ids, sorted.
func (s *ProfileStore) GetCompletedChallenges() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked(context.Background())
	return s.completedSliceLocked()
}

// IsCompleted reports whether id is in the completed set.
func (s *ProfileStore) IsCompleted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked(context.Background())
	_, ok := s.completed[id]
	return ok
}

// UpdateProfile shallow-merges patch into the profile and persists it.
// String fields are accepted as-is; numeric fields must stay in range and
// coins may not decrease.
func (s *ProfileStore) UpdateProfile(ctx context.Context, patch entity.ProfilePatch) (entity.UserProfile, error) {
	s.mu.Lock()
	s.initLocked(ctx)

	if patch.Coins != nil && *patch.Coins < s.profile.Coins {
		s.mu.Unlock()
		return entity.UserProfile{}, fmt.Errorf("%w: coins cannot decrease (%d -> %d)", ErrInvalidArgument, s.profile.Coins, *patch.Coins)
	}
	next := s.profile.Apply(patch)
	if err := validateProfile(next); err != nil {
		s.mu.Unlock()
		return entity.UserProfile{}, err
	}

	s.profile = next
	b, _ := json.Marshal(next)
	s.persist(ctx, map[string]string{repo.KeyUserInfo: string(b)})

	s.unlockAndNotify(Change{Kind: ChangeProfileUpdated, Profile: next, Fields: patch.Changes(), At: time.Now().UTC()})
	return next, nil
}

// CompleteChallenge marks challengeID complete and credits coinReward once.
// A repeated call reports AlreadyCompleted and leaves the balance unchanged.
func (s *ProfileStore) CompleteChallenge(ctx context.Context, challengeID string, coinReward int) (entity.CompletionResult, error) {
	return s.ClaimReward(ctx, challengeID, entity.Reward{Coins: coinReward})
}

// ClaimReward is CompleteChallenge with an XP component. XP rolls over into levels.
func (s *ProfileStore) ClaimReward(ctx context.Context, challengeID string, reward entity.Reward) (entity.CompletionResult, error) {
	if strings.TrimSpace(challengeID) == "" {
		return entity.CompletionResult{}, fmt.Errorf("%w: challenge id is required", ErrInvalidArgument)
	}
	if reward.Coins < 0 || reward.XP < 0 {
		return entity.CompletionResult{}, fmt.Errorf("%w: reward must not be negative", ErrInvalidArgument)
	}
	if reward.XP > entity.MaxRewardXP {
		return entity.CompletionResult{}, fmt.Errorf("%w: xp reward exceeds %d", ErrInvalidArgument, entity.MaxRewardXP)
	}

	s.mu.Lock()
	s.initLocked(ctx)

	if _, done := s.completed[challengeID]; done {
		p := s.profile
		s.mu.Unlock()
		duplicatesTotal.Add(1)
		return entity.CompletionResult{AlreadyCompleted: true, NewCoinBalance: p.Coins, Level: p.Level, XPProgress: p.XPProgress}, nil
	}

	next := s.profile
	if reward.Coins > math.MaxInt-next.Coins {
		s.mu.Unlock()
		return entity.CompletionResult{}, fmt.Errorf("%w: coin balance would overflow", ErrInvalidArgument)
	}
	level, progress, ok := addXP(next.Level, next.XPProgress, reward.XP)
	if !ok {
		s.mu.Unlock()
		return entity.CompletionResult{}, fmt.Errorf("%w: level would overflow", ErrInvalidArgument)
	}
	next.Coins += reward.Coins
	next.Level, next.XPProgress = level, progress

	s.completed[challengeID] = struct{}{}
	s.profile = next

	pb, _ := json.Marshal(next)
	cb, _ := json.Marshal(s.completedSliceLocked())
	s.persist(ctx, map[string]string{
		repo.KeyUserInfo:            string(pb),
		repo.KeyCompletedChallenges: string(cb),
	})
	completionsTotal.Add(1)

	s.unlockAndNotify(Change{Kind: ChangeChallengeCompleted, Profile: next, ChallengeID: challengeID, Reward: reward, At: time.Now().UTC()})
	return entity.CompletionResult{NewCoinBalance: next.Coins, Level: next.Level, XPProgress: next.XPProgress}, nil
}

// Reset restores default state. It is the only way coins go down.
func (s *ProfileStore) Reset(ctx context.Context) entity.UserProfile {
	s.mu.Lock()
	s.initialized = true
	s.profile = entity.DefaultProfile()
	s.completed = map[string]struct{}{}
	pb, _ := json.Marshal(s.profile)
	s.persist(ctx, map[string]string{
		repo.KeyUserInfo:            string(pb),
		repo.KeyCompletedChallenges: "[]",
	})
	p := s.profile
	if s.Logger != nil {
		s.Logger.Warn("profile store reset to defaults")
	}

	s.unlockAndNotify(Change{Kind: ChangeProfileReset, Profile: p, At: time.Now().UTC()})
	return p
}

// Subscribe registers fn for change notifications. fn runs synchronously on the
// mutating goroutine and must not call back into a mutation. Changes are
// delivered one at a time in the order the mutations were applied.
func (s *ProfileStore) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// unlockAndNotify stamps c while s.mu is held, releases s.mu, then waits for
// every earlier change to be delivered before delivering c.
func (s *ProfileStore) unlockAndNotify(c Change) {
	s.seq++
	c.Seq = s.seq
	s.mu.Unlock()

	s.notifyMu.Lock()
	for s.delivered != c.Seq-1 {
		s.notifyCond.Wait()
	}
	s.notifyMu.Unlock()

	defer func() {
		s.notifyMu.Lock()
		s.delivered = c.Seq
		s.notifyCond.Broadcast()
		s.notifyMu.Unlock()
	}()
	s.notify(c)
}

func (s *ProfileStore) notify(c Change) {
	s.subMu.RLock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}

// persist writes entries; failures are logged and the in-memory state stays authoritative.
func (s *ProfileStore) persist(ctx context.Context, entries map[string]string) {
	var err error
	if len(entries) == 1 {
		for k, v := range entries {
			err = s.Repo.Set(ctx, k, v)
		}
	} else {
		err = s.Repo.SetMany(ctx, entries)
	}
	if err != nil {
		persistFailures.Add(1)
		if s.Logger != nil {
			keys := make([]string, 0, len(entries))
			for k := range entries {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			s.Logger.WithError(err).WithField("keys", keys).Warn("persist profile state failed")
		}
	}
}

func (s *ProfileStore) completedSliceLocked() []string {
	out := make([]string, 0, len(s.completed))
	for id := range s.completed {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *ProfileStore) warn(err error, key, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn(msg)
	}
}

// addXP returns the level and progress after gaining xp. ok is false when the
// level would not fit in an int.
func addXP(level int, progress float64, xp int) (int, float64, bool) {
	total := progress + float64(xp)*100/xpPerLevel
	gained := int(total / 100)
	if gained > math.MaxInt-level {
		return level, progress, false
	}
	return level + gained, math.Mod(total, 100), true
}

func validateProfile(p entity.UserProfile) error {
	if p.Coins < 0 {
		return fmt.Errorf("%w: coins must be >= 0", ErrInvalidArgument)
	}
	if p.Level < 1 {
		return fmt.Errorf("%w: level must be >= 1", ErrInvalidArgument)
	}
	if math.IsNaN(p.XPProgress) || p.XPProgress < 0 || p.XPProgress > 100 {
		return fmt.Errorf("%w: xpProgress must be within [0,100]", ErrInvalidArgument)
	}
	return nil
}
