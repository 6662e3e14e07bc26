package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

const keyPrefix = "polls:tally:"

// TallyCache keeps one hash per question, mapping choice ids to counts.
type TallyCache struct {
	client *redis.Client
}

func NewTallyCache(client *redis.Client) ports.TallyCache {
	return &TallyCache{client: client}
}

func tallyKey(questionID uuid.UUID) string {
	return keyPrefix + questionID.String()
}

// setVotesScript raises a choice's count to ARGV[2] unless the hash already
// holds a larger value, then returns the whole hash.
var setVotesScript = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
if tonumber(ARGV[2]) > current then
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
end
return redis.call('HGETALL', KEYS[1])
`)

func (c *TallyCache) SetVotes(ctx context.Context, questionID, choiceID uuid.UUID, votes int64) (domain.Tally, error) {
	pairs, err := setVotesScript.Run(ctx, c.client, []string{tallyKey(questionID)}, choiceID.String(), votes).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to set tally votes: %w", err)
	}

	values := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		values[pairs[i]] = pairs[i+1]
	}
	return parseTally(values)
}

// Seed fills in the choices the hash does not hold yet. Counts already cached
// are left alone.
func (c *TallyCache) Seed(ctx context.Context, questionID uuid.UUID, tally domain.Tally) (domain.Tally, error) {
	key := tallyKey(questionID)

	var all *redis.MapStringStringCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for choiceID, votes := range tally {
			pipe.HSetNX(ctx, key, choiceID.String(), votes)
		}
		all = pipe.HGetAll(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed tally: %w", err)
	}

	return parseTally(all.Val())
}

func (c *TallyCache) Replace(ctx context.Context, questionID uuid.UUID, tally domain.Tally) error {
	key := tallyKey(questionID)

	fields := make(map[string]interface{}, len(tally))
	for choiceID, votes := range tally {
		fields[choiceID.String()] = votes
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(fields) > 0 {
			pipe.HSet(ctx, key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace tally: %w", err)
	}
	return nil
}

func (c *TallyCache) Get(ctx context.Context, questionID uuid.UUID) (domain.Tally, error) {
	values, err := c.client.HGetAll(ctx, tallyKey(questionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get tally: %w", err)
	}
	return parseTally(values)
}

func parseTally(values map[string]string) (domain.Tally, error) {
	tally := make(domain.Tally, len(values))
	for field, raw := range values {
		choiceID, err := uuid.Parse(field)
		if err != nil {
			return nil, fmt.Errorf("invalid choice id %q in tally: %w", field, err)
		}
		votes, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vote count %q in tally: %w", raw, err)
		}
		tally[choiceID] = votes
	}
	return tally, nil
}
