/*
Package routegen builds the route-generation request and parses its reply.

A request is a natural-language prompt embedding the user's position and preferences, a
strict JSON schema for the WalkRoute shape, and a system instruction. The reply is parsed
as JSON and validated against the route invariants before it is accepted; any failure is
reported as domain.ErrGenerationFailed and no partial route is ever returned.
*/
package routegen
