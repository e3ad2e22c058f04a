// Package resilience holds the failure policies used around the service's
// external stores: Retry for establishing connections and CircuitBreaker
// for shedding calls to a store that keeps failing.
//
//	err := resilience.RetryFunc(ctx, resilience.RetryConfig{
//	    MaxAttempts: 5,
//	    RetryIf:     database.IsConnectionError,
//	}, connect)
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultBreakerConfig("redis"))
//	err = cb.Execute(func() error { return client.Ping(ctx) })
package resilience
