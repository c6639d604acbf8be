// Package peek is a per-request instrumentation registry.
//
// Views (probes) are registered once at startup. For every request a request
// id is attached to the request context; code running inside the request
// records measurements for that id into the storage adapter; at the end
// Results asks every enabled view for its context and measurements and merges
// them into one snapshot:
//
//	{"context": {"db": {"queries": 3}}, "data": {"db": {"time_ms": 12}}}
//
// # Request identity
//
// The request id travels in context.Context (see v1/requestctx). Two requests
// never observe each other's id because each owns its own context chain.
// Middleware sets it from the X-Request-Id header, the active trace, or a
// fresh UUID. Outside of net/http use BeforeRequest and AfterRequest.
//
// # Views
//
// A View exposes Key, Enabled, HasContext, Context and Results. Views are
// registered as a ViewFactory plus Options:
//
//	p.Register(peek.NewStoreView, peek.Options{"key": "db"})
//	p.Register(newCacheView, peek.Options{"key": "cache", "enabled": false})
//
// Every call to Results starts a new cycle: each registration is turned into
// a fresh View with a private copy of its options, disabled views are
// dropped, and the remaining views are queried in registration order. Views
// are never shared between cycles or requests. Any view error aborts the
// snapshot.
//
// # Adapters
//
// Exactly one Adapter is active per Peek. The built-in adapters are "memory"
// (the default), "redis", "postgres" and "mariadb":
//
//	err := p.SetAdapter("redis", redis.Config{Host: "cache"}, time.Hour)
//	p.UseAdapter(myAdapter)
//
// An unknown name fails with an error matching ErrUnknownAdapter and the
// previous adapter stays active. RegisterAdapter adds more names.
//
// # Environment gate
//
// Peek is enabled only when Config.Env is "development" or "staging".
// Middleware passes requests straight through when it is not.
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule,
//		peek.FXModule,
//		peek.RedisAdapterModule,
//		peek.AsView(peek.NewStoreView, peek.Options{"key": "db"}),
//		fx.Provide(peek.LoadConfig),
//	)
//
// # Process-wide instance
//
// Default returns a lazily built instance configured from PEEK_* environment
// variables, or the one installed with InitDefault. The package-level
// Register, SetAdapter, Record, Snapshot and Reset functions operate on it.
// A configuration that cannot be built is reported as an error by all of
// them and never replaced by defaults.
package peek
