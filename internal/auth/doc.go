// Package auth provides authentication and authorization for rosterd.
//
// # Authentication Methods
//
// Two parallel schemes guard the REST API:
//
//   - HTTP Basic: Reserved for principals whose authorities intersect a
//     configured whitelist (ADMIN by default). Non-whitelisted credentials
//     pass through without verification so ordinary principals use the
//     bearer path instead.
//
//   - JWT Bearer: Standard users exchange a username/password for an HS256
//     signed token at POST /v1/auth/token and present it on later requests.
//
// # Identity Resolution
//
// Gates run as an explicit, ordered middleware list: bearer first, basic
// second, route policy last. The first gate to establish an identity wins
// and later gates never overwrite it. The bearer gate only ever adds
// identity; decode failures proceed unauthenticated and the policy denies
// downstream. The basic gate is terminal only for whitelisted principals
// that fail full verification.
//
// # Authorities
//
// Access control is a flat set of capability tags (ADMIN, USER, READ,
// WRITE) compared by membership. There is no hierarchy and no separate role
// concept.
//
// # Route Policy
//
// A static ordered rule table maps path patterns to requirements (anyOf,
// allOf, permitAll, denyAll, authenticated). First match wins; no match
// denies. Denials are 401 without identity and 403 with one.
//
// # Tokens
//
// Tokens are stateless: validity is signature plus expiry at decode time,
// and nothing is persisted server-side. The authority claim is a snapshot
// at issuance; the bearer gate re-resolves authorities from the live
// credential store so a disabled principal loses access on its next
// request even with an unexpired token.
package auth
