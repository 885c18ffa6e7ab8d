package model

// CallerHeader carries the identity of the authenticated caller.
const CallerHeader = "X-Caller-Identity"

// WebsocketMessageFrame represents a frame exchanged with a websocket client of the admin web.
// Text holds an event record, a replay sequence or an error message depending on Type.
type WebsocketMessageFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PeerRequest represents a request to add a peer or to register a user.
type PeerRequest struct {
	PubKeyHash string `json:"pubKeyHash"`
	MacHash    string `json:"macHash"`
}

// RelationRequest represents a request to add a relation between two peers.
type RelationRequest struct {
	Mine  string `json:"mine"`
	Other string `json:"other"`
}

// NetworkStateRequest represents a request to activate or deactivate a subnet.
type NetworkStateRequest struct {
	Active *bool `json:"active"`
}

// CountResponse represents a count.
type CountResponse struct {
	Count int `json:"count"`
}

// MacHashResponse represents the macHash of a user.
type MacHashResponse struct {
	PubKeyHash string `json:"pubKeyHash"`
	MacHash    string `json:"macHash"`
}

// ErrorResponse represents a failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}
