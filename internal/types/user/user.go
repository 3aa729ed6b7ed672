package user

// User is the cross-room profile keyed by account address. Nonce is the
// single-use authentication challenge: set when a login challenge is issued,
// cleared after verification.
type User struct {
	Account       string `json:"account" firestore:"-"`
	Name          string `json:"name,omitempty" firestore:"name"`
	DiscordHandle string `json:"discordHandle,omitempty" firestore:"discordHandle"`
	Nonce         string `json:"nonce,omitempty" firestore:"nonce"`
}
