// Package ws serves the graphql-transport-ws subprotocol subset this
// gateway needs for subscriptions: connection_init/ack, ping/pong,
// subscribe/next/complete/error.
package ws

import "encoding/json"

type msgType string

const (
	typeConnectionInit msgType = "connection_init"
	typeConnectionAck  msgType = "connection_ack"
	typePing           msgType = "ping"
	typePong           msgType = "pong"
	typeSubscribe      msgType = "subscribe"
	typeNext           msgType = "next"
	typeError          msgType = "error"
	typeComplete       msgType = "complete"
)

// Subprotocol is the value this handler advertises during the WebSocket
// handshake.
const Subprotocol = "graphql-transport-ws"

type message struct {
	ID      string          `json:"id,omitempty"`
	Type    msgType         `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscribePayload struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

type nextPayload struct {
	Data   interface{} `json:"data,omitempty"`
	Errors []string    `json:"errors,omitempty"`
}
