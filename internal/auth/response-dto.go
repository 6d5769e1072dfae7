package auth

// LoginResponse is the OAuth2-style token pair returned on login.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse carries the reissued access token.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}
