// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package observer follows a poll from the outside: it fetches the poll once
and then keeps a local copy current from the live feed.

	c := observer.NewClient("http://localhost:3318")
	err := c.Follow(ctx, pollID, func(p models.PollWithOptions) {
		render(p)
	})

Follow dials the feed before fetching the baseline so that no update
accepted in between is missed. Updates are merged into a View by option
ID: the matching option takes the new count and every other option is left
as it was. Updates for other polls, for unknown options, or that arrive
before the baseline are ignored, and a count is never lowered.

Events missed while disconnected are not replayed; call Follow again to
take a fresh baseline.
*/
package observer
