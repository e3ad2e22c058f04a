// Package redis provides the Redis client used for state shared between
// service instances, currently the login attempt counters.
//
// It wraps go-redis with the service logger, pool configuration and the
// component lifecycle (Start/Stop/Health):
//
//	comp := redis.NewComponent(cfg.Redis, log)
//	registry.Register(comp)
//	// after Start
//	limiter := ratelimit.NewRedisLimiter(comp.Client(), rlCfg, log)
package redis
