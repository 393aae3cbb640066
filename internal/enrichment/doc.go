// Package enrichment synthesizes person attributes from a name using a
// generative text service.
//
// Each attribute is one request with its own short instruction. Replies are
// free text, so every field goes through the recovery layer in recovery.go:
// a direct JSON decode, then unwrapping a quoted-string wrapper, then a
// field-specific repair for known malformed escaping, and finally the raw
// trimmed text. The recovery functions are pure and never fail.
//
// Gender codes map to Female, Male, Non-binary or Not Specified, and a female
// person's "Actor" profession is stored as "Actress". The long biography is
// only requested when the person has none. A separate death check treats
// anything other than an explicit, well-formed positive answer as alive.
package enrichment
