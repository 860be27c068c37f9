// Package driving provides interfaces consumed by callers of the core (primary/inbound ports).
package driving
