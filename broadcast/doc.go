// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package broadcast fans accepted-vote updates out to live sessions.

The Hub is an in-memory, process-local registry. Nothing is persisted: a
session that is not registered when an update is published never sees it.

	hub := broadcast.NewHub(cfg.SessionBuffer)
	controller := admission.NewController(store, hub, cfg)

	s := hub.Register()
	defer hub.Unregister(s)
	for {
		select {
		case update := <-s.Events():
			// write to the client
		case <-s.Done():
			return
		}
	}

# Delivery

Publish takes one snapshot of the registered sessions under a read lock and
then offers the update to each session's bounded queue without blocking.
When a queue is full the update is dropped for that session only and
counted in Session.Dropped. A slow or dead session never stalls admission
or other sessions.

Every session receives every update; sessions filter by poll themselves.
*/
package broadcast
