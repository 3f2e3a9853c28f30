// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth derives voter identity hints and generates identifiers.

There is no authentication here. A voter is known only by two weak hints:
an opaque token the client generates and keeps across visits, and the
network address the request came from.

# Identity Hints

	hints, err := auth.ExtractHints(r, req.VoterToken)

The token comes from the JSON body, or from the X-Voter-Token header when
the body has none. An empty token returns ErrMissingVoterToken and the vote
never reaches admission.

The address is best-effort:

 1. first entry of X-Forwarded-For
 2. X-Real-IP
 3. host part of RemoteAddr

If none is available SourceAddress is empty and the per-address rule is
skipped for that request.

# Address Hashing

Addresses are stored as an HMAC-SHA256 digest keyed by IP_HASH_SALT:

	ipHash := auth.HashIP(addr, cfg.IPHashSalt)

Equal addresses hash equally, so the per-poll uniqueness rule still holds.

# Poll IDs

	pollID, err := auth.GeneratePollID()

Poll IDs are 10 random base62 characters from crypto/rand, safe to use in
URLs and never reused.
*/
package auth
