// Package memory is the default peek storage adapter. It keeps every
// measurement in an in-process map keyed by request identifier.
//
// Nothing is evicted automatically. Long running processes should call Purge
// periodically (peek.Config.PurgeInterval does this) or use a bounded backend
// such as the redis adapter.
package memory
