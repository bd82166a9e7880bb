package models

// Identity is the claim extracted from a verified init data payload.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
}

// AuthRequest is the body of POST /auth.
type AuthRequest struct {
	InitData string `json:"init_data"`
}
