// Package ws streams app handler events to WebSocket clients.
//
// A Hub is registered with the controller as an observer of every category.
// Clients connect to /stream, optionally filtered with ?categories=added,removed,
// and receive one JSON message per event:
//
//	{"type": "event", "event": {"seq": 3, "category": "added", ...}}
//
// Clients may send {"type": "ping"} or {"type": "subscribe", "categories": [...]}
// to change their filter. A client that falls behind loses events; it never
// slows the controller.
package ws
