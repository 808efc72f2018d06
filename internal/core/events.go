package core

import "encoding/json"

// Event types on the wire.
const (
	EventReady      = "ready"
	EventPing       = "ping"
	EventPong       = "pong"
	EventChat       = "chat message"
	EventTyping     = "typing"
	EventUserList   = "user list"
	EventUserJoined = "user joined"
	EventUserLeft   = "user left"
	EventNewImage   = "new image"
	EventWelcome    = "welcome"
	EventError      = "error"
)

type UserListEvent struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type NoticeEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type ChatEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type TypingEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// NewImageEvent announces the next image. DisplayDuration is in milliseconds.
type NewImageEvent struct {
	Type            string `json:"type"`
	ImageURL        string `json:"imageUrl"`
	DisplayDuration int64  `json:"displayDuration"`
	Uploader        string `json:"uploader,omitempty"`
}

type WelcomeEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func Encode(v any) (Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}
