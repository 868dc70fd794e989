// Package orderbook implements the in-memory matching engine for a
// single instrument: limit and market orders, strict price-time
// priority, per-price FIFO queues, and O(1) cancellation through an
// id lookup index.
//
// The book is a single-writer structure. It is not safe for
// concurrent mutation; the service layer serializes access to it.
package orderbook
