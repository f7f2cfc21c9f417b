package goSession

// User is the profile payload returned by the backend. It is display-only:
// nothing in this package makes authorization decisions from it.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Nickname    string `json:"nickname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	UserType    string `json:"user_type"`
	Avatar      string `json:"avatar,omitempty"`
}

// IdentifierKind classifies the login identifier into the credential field
// the backend expects.
type IdentifierKind uint8

const (
	// IdentifierUsername is the fallback classification.
	IdentifierUsername IdentifierKind = iota
	// IdentifierEmail matches identifiers containing '@'.
	IdentifierEmail
	// IdentifierPhone matches identifiers made of ASCII digits only.
	IdentifierPhone
)

// FileUpload is one file part of a multipart registration request.
type FileUpload struct {
	Field    string
	Filename string
	Content  []byte
}

// RegisterRequest is the input for [Session.Register]. When Files is
// non-empty the request is sent as multipart/form-data, otherwise as JSON.
type RegisterRequest struct {
	Username    string `json:"username"`
	Nickname    string `json:"nickname"`
	Password    string `json:"password"`
	Password2   string `json:"password2"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`

	Files []FileUpload `json:"-"`
}

// RegisterResult is the backend's registration success payload, returned
// verbatim to the caller. Registration never mutates session state.
type RegisterResult struct {
	Message string `json:"message"`
}
