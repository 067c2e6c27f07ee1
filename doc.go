// Package scache is an in-process key-value cache. A Provider hands out
// Managers by scope and URI, a Manager owns named Caches, and every Cache
// forwards its operations to one strategy from package store. Server and
// Client expose a Manager's caches over gRPC.
package scache
