package entity

import "time"

// OAuthToken is a Coinbase OAuth2 token pair.
type OAuthToken struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	Scope        string    `json:"scope"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the token must be refreshed before use.
func (t OAuthToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// Money is an amount in a given currency, as Coinbase reports it.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// CoinbaseAccount is one Coinbase wallet account.
type CoinbaseAccount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Balance  Money  `json:"balance"`
	Type     string `json:"type"`
	Primary  bool   `json:"primary"`
}

// CoinbaseTransaction is one transaction of a Coinbase account.
type CoinbaseTransaction struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	Amount       Money     `json:"amount"`
	NativeAmount Money     `json:"native_amount"`
	CreatedAt    time.Time `json:"created_at"`
	Description  string    `json:"description,omitempty"`
	AccountID    string    `json:"accountId"`
}

// CoinbaseData is the combined account view returned to the client.
type CoinbaseData struct {
	Accounts     []CoinbaseAccount     `json:"accounts"`
	Transactions []CoinbaseTransaction `json:"transactions"`
}
