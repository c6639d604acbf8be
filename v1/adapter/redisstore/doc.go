// Package redisstore is a peek storage adapter backed by Redis.
//
// Every request is stored as a hash under "<prefix>:<request id>" whose
// fields are metric keys and whose values are JSON documents. A sorted set
// stored at "<prefix>" indexes request ids by the time of their last write,
// which is what Requests and Purge read. Each write refreshes the hash TTL
// (30 minutes unless WithExpiresIn says otherwise), so abandoned requests
// disappear on their own even when Purge never runs.
//
//	client, _ := redis.NewClient(redis.Config{Host: "localhost"})
//	store := redisstore.New(client, redisstore.WithExpiresIn(time.Hour))
//	p.UseAdapter(store)
//
// Values read back are decoded from JSON, so numbers come back as float64.
package redisstore
