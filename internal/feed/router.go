package feed

import (
	"feedmux/internal/wire"
)

// route decodes one inbound frame and dispatches it. A malformed frame
// is logged and dropped; it never affects the connection or any
// subscriber. Called only from the single read loop, so dispatch of one
// inbound event completes before the next begins.
func (c *Client) route(data []byte) {
	msg, err := wire.Parse(data)
	if err != nil {
		c.logger.Warn().Err(err).Int("len", len(data)).Msg("dropping malformed frame")
		return
	}

	switch msg.Type {
	case wire.TypeTable:
		c.routeTable(msg)
	default:
		// acks and other control frames carry no subscriber payload
		c.logger.Debug().Str("type", msg.Type).Msg("ignoring non-table frame")
	}
}

// routeTable demultiplexes one table frame. An item carrying a symbol
// is delivered both to the (channel, symbol) key and to the bare
// channel-level key; an item without a symbol only to the latter.
func (c *Client) routeTable(msg *wire.Message) {
	for _, item := range msg.Data {
		symbol := wire.ItemSymbol(item)
		env := Envelope{
			Channel: msg.Table,
			Symbol:  symbol,
			Action:  msg.Action,
			Data:    item,
		}
		if symbol != "" {
			c.dispatch(Key{Channel: msg.Table, Symbol: symbol}, env)
		}
		c.dispatch(Key{Channel: msg.Table}, env)
	}
}

// dispatch invokes every callback registered for key, in registration
// order, each isolated from the others.
func (c *Client) dispatch(key Key, env Envelope) {
	c.mu.Lock()
	entries := c.keys[key]
	callbacks := make([]*callbackEntry, len(entries))
	copy(callbacks, entries)
	c.mu.Unlock()

	for _, entry := range callbacks {
		c.invoke(entry, key, env)
	}
}

// invoke runs one callback; a panic is contained so one failing
// subscriber cannot affect siblings, later frames or the connection.
func (c *Client) invoke(entry *callbackEntry, key Key, env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Interface("panic", r).
				Str("key", key.Name()).
				Msg("subscriber callback panic")
		}
	}()
	entry.fn(env)
}
