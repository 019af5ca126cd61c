// Package resilience implements a circuit breaker used to guard outbound
// fetches against misbehaving or rate-limiting source sites.
package resilience
