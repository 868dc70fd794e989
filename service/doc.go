// Package service hosts OrderService, the only write entry point
// into the engine. The book itself is single-writer; OrderService is
// the external serializer that provides mutual exclusion, owns order
// storage while orders rest, and fans completed trades out to the
// configured sinks.
package service
