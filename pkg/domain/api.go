package domain

import "encoding/json"

// Wire bodies shared by the HTTP handlers and the API client.

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        User   `json:"user"`
}

// SubmitRequestBody is the body of POST /api/user/requests/{topic,acl}.
type SubmitRequestBody struct {
	RequestType RequestKind     `json:"request_type"`
	Details     json.RawMessage `json:"details"`
	Rationale   string          `json:"rationale"`
}

type RejectBody struct {
	RejectionReason string `json:"rejection_reason"`
}

// ErrorBody is the envelope of every non-2xx response.
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

type MessageBody struct {
	Message string `json:"message"`
}

// HealthStatus reports backing dependency state.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	Kafka    string `json:"kafka"`
}

// TopicList is the body of GET /api/kafka/topics and GET /api/user/topics.
type TopicList struct {
	Topics []Topic `json:"topics"`
}

type ACLList struct {
	ACLs []ACLEntry `json:"acls"`
}
