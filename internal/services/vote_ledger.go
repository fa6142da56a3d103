package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quill/internal/db"
	"quill/internal/logger"
	"quill/internal/models"

	"go.uber.org/zap"
)

// VotesKey holds every stance as one JSON object of post id to "1" or "-1".
const VotesKey = "quill_votes_v1"

// Transition returns the tally delta and the new stance for a vote in
// direction dir (StanceUp or StanceDown) from stance from. Repeating the
// current stance is a no-op; there is no way back to StanceNone.
func Transition(from, dir models.Stance) (delta int, to models.Stance) {
	switch dir {
	case models.StanceUp:
		switch from {
		case models.StanceUp:
			return 0, models.StanceUp
		case models.StanceDown:
			return 2, models.StanceUp
		default:
			return 1, models.StanceUp
		}
	case models.StanceDown:
		switch from {
		case models.StanceDown:
			return 0, models.StanceDown
		case models.StanceUp:
			return -2, models.StanceDown
		default:
			return -1, models.StanceDown
		}
	}
	return 0, from
}

// VoteLedger records the local voter's stance per post. It is the only
// writer of stances and, like PostStore, relies on Board for serialisation.
type VoteLedger struct {
	kv      db.KV
	stances map[string]models.Stance
}

func NewVoteLedger(kv db.KV) *VoteLedger {
	return &VoteLedger{kv: kv, stances: make(map[string]models.Stance)}
}

// Load reads the stored ledger. A missing or corrupt record loads as empty;
// individual bad entries are skipped.
func (l *VoteLedger) Load(ctx context.Context) {
	l.stances = make(map[string]models.Stance)

	raw, err := l.kv.Get(ctx, VotesKey)
	if errors.Is(err, db.ErrKeyNotFound) {
		return
	}
	if err != nil {
		logger.Error("load votes failed, starting empty", zap.String("key", VotesKey), zap.Error(err))
		return
	}

	var stored map[string]string
	if err := json.Unmarshal(raw, &stored); err != nil {
		logger.Warn("storage corrupt, starting with empty votes", zap.String("key", VotesKey), zap.Error(err))
		return
	}
	for id, v := range stored {
		s, err := models.ParseStance(v)
		if err != nil {
			logger.Warn("skipping bad vote entry", zap.String("id", id), zap.String("value", v))
			continue
		}
		if s != models.StanceNone {
			l.stances[id] = s
		}
	}
}

// Stance returns StanceNone for posts never voted on.
func (l *VoteLedger) Stance(postID string) models.Stance {
	return l.stances[postID]
}

// Apply moves postID's stance toward dir and returns the tally delta.
// Non-zero transitions persist the whole ledger before returning; a failed
// write keeps the new stance and wraps ErrStorageWrite.
func (l *VoteLedger) Apply(ctx context.Context, postID string, dir models.Stance) (int, error) {
	if dir != models.StanceUp && dir != models.StanceDown {
		return 0, fmt.Errorf("%w: %s", ErrInvalidVote, dir)
	}
	delta, to := Transition(l.stances[postID], dir)
	if delta == 0 {
		return 0, nil
	}
	l.stances[postID] = to
	return delta, l.persist(ctx)
}

func (l *VoteLedger) persist(ctx context.Context) error {
	out := make(map[string]string, len(l.stances))
	for id, s := range l.stances {
		out[id] = s.Encode()
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("%w: encode votes: %w", ErrStorageWrite, err)
	}
	if err := l.kv.Put(ctx, VotesKey, raw); err != nil {
		logger.Warn("persist votes failed", zap.String("key", VotesKey), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	return nil
}
