// Package transport implements the client side of the hub connection: a
// gorilla/websocket dial returning a domain.FrameConn that carries one JSON
// frame per WebSocket text message.
//
// Writes are serialized behind a mutex and a background ticker keeps the
// connection alive with pings; reads refresh the deadline on every pong.
// Close sends a normal close frame before tearing the socket down.
package transport
