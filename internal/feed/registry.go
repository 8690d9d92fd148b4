package feed

import (
	"github.com/google/uuid"

	"feedmux/internal/wire"
)

// callbackEntry is one registered callback under a key. The token gives
// unsubscribe-by-identity, so two registrations of the same function
// value stay independent.
type callbackEntry struct {
	token string
	fn    Callback
}

// Subscribe registers cb under the (channel, symbol) key; pass symbol ""
// for a channel-level subscription. The first callback for a key emits
// a wire subscribe (dropped with a warning while disconnected; the key
// is still replayed on the next connect). The returned unsubscribe
// function removes exactly this callback and is safe to call more than
// once; removing the last callback for a key emits a wire unsubscribe.
func (c *Client) Subscribe(channel, symbol string, cb Callback) (func(), error) {
	key := Key{Channel: channel, Symbol: symbol}
	entry := &callbackEntry{token: uuid.NewString(), fn: cb}

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return nil, ErrClientDestroyed
	}
	first := len(c.keys[key]) == 0
	c.keys[key] = append(c.keys[key], entry)
	c.mu.Unlock()

	c.logger.Debug().Str("key", key.Name()).Bool("first", first).Msg("callback registered")
	if first {
		c.sendSubscribe(key)
	}

	token := entry.token
	return func() { c.unsubscribe(key, token) }, nil
}

// unsubscribe removes the callback identified by token. Unknown keys
// and already-removed tokens are silent no-ops, which makes the
// returned unsubscribe functions idempotent.
func (c *Client) unsubscribe(key Key, token string) {
	c.mu.Lock()
	entries, ok := c.keys[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	idx := -1
	for i, e := range entries {
		if e.token == token {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	entries = append(entries[:idx], entries[idx+1:]...)
	last := len(entries) == 0
	if last {
		delete(c.keys, key)
		delete(c.live, key)
	} else {
		c.keys[key] = entries
	}
	c.mu.Unlock()

	c.logger.Debug().Str("key", key.Name()).Bool("last", last).Msg("callback removed")
	if last {
		frame, err := wire.NewUnsubscribe(key.Name()).Bytes()
		if err != nil {
			c.logger.Error().Err(err).Str("key", key.Name()).Msg("failed to encode unsubscribe")
			return
		}
		c.sendFrame(frame)
	}
}

// sendSubscribe emits a wire subscribe for one key and records it as
// live when the frame actually went out.
func (c *Client) sendSubscribe(key Key) {
	frame, err := wire.NewSubscribe(key.Name()).Bytes()
	if err != nil {
		c.logger.Error().Err(err).Str("key", key.Name()).Msg("failed to encode subscribe")
		return
	}
	if c.sendFrame(frame) {
		c.mu.Lock()
		if _, ok := c.keys[key]; ok {
			c.live[key] = struct{}{}
		}
		c.mu.Unlock()
	}
}

// replayAll re-emits a subscribe for every registered key. Called after
// each successful (re)connect; the venue is assumed to treat duplicate
// subscribes as idempotent, so replaying unconditionally keeps
// server-side state correct without tracking what survived the drop.
func (c *Client) replayAll(keys []Key) {
	if len(keys) == 0 {
		return
	}
	c.logger.Info().Int("keys", len(keys)).Msg("replaying subscriptions")
	for _, key := range keys {
		c.sendSubscribe(key)
	}
}
