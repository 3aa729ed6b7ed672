package room

type TokenGate struct {
	ChainID      int64  `json:"chainId" firestore:"chainId"`
	TokenAddress string `json:"tokenAddress" firestore:"tokenAddress"`
}

type Room struct {
	ID                         string      `json:"id,omitempty" firestore:"-"`
	Name                       string      `json:"name" firestore:"name"`
	Mission                    string      `json:"mission,omitempty" firestore:"mission"`
	ProfilePictureURI          string      `json:"profilePictureURI,omitempty" firestore:"profilePictureURI"`
	TwitterHandle              string      `json:"twitterHandle,omitempty" firestore:"twitterHandle"`
	DiscordServer              string      `json:"discordServer,omitempty" firestore:"discordServer"`
	TreasuryAddress            string      `json:"treasury,omitempty" firestore:"treasury"`
	DiscordNotificationWebhook string      `json:"discordNotificationWebhook,omitempty" firestore:"discordNotificationWebhook"`
	TokenGates                 []TokenGate `json:"tokenGates,omitempty" firestore:"tokenGates"`
}
