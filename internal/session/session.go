package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pot-code/course-player/internal/infrastructure/driver"
	"github.com/pot-code/course-player/internal/infrastructure/logging"
	"github.com/pot-code/course-player/internal/player"
	"go.uber.org/zap"
)

// KeyPrefix namespace of player sessions in the kv store
const KeyPrefix = "player:session"

// StateKV player state persisted as JSON in a key-value store.
//
// Every save refreshes the TTL so idle sessions expire.
type StateKV struct {
	KV  driver.KeyValueDB
	TTL time.Duration
}

var _ player.StateRepository = &StateKV{}

// NewStateRepository ...
func NewStateRepository(KV driver.KeyValueDB, TTL time.Duration) *StateKV {
	return &StateKV{KV, TTL}
}

func sessionKey(learnerID, courseID string) string {
	return fmt.Sprintf("%s:%s:%s", KeyPrefix, learnerID, courseID)
}

// LoadState returns a fresh state when none is stored or the stored one is unreadable
func (repo *StateKV) LoadState(ctx context.Context, learnerID, courseID string) (player.State, error) {
	raw, err := repo.KV.Get(ctx, sessionKey(learnerID, courseID))
	if errors.Is(err, driver.ErrKeyNotFound) {
		return player.NewState(), nil
	}
	if err != nil {
		return player.State{}, err
	}

	var s player.State
	if err := json.Unmarshal([]byte(raw), &s); err != nil || (s.Phase != player.PhaseInitialized && s.Phase != player.PhaseUninitialized) {
		logging.ExtractLoggerFromContext(ctx).Warn("Discard corrupted player session",
			zap.String("learner.id", learnerID),
			zap.String("course.id", courseID),
		)
		return player.NewState(), nil
	}
	return s, nil
}

// SaveState ...
func (repo *StateKV) SaveState(ctx context.Context, learnerID, courseID string, s player.State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return repo.KV.SetEX(ctx, sessionKey(learnerID, courseID), string(raw), repo.TTL)
}
