package leaderboard

// Entry is the derived per-(room, account) aggregate. It is always written as
// a full overwrite and must be exactly reproducible by replaying that
// account's workproofs, so it carries no incremental state of its own.
type Entry struct {
	UserAccount        string  `json:"userAccount" firestore:"userAccount"`
	VerifiedExperience float64 `json:"verifiedExperience" firestore:"verifiedExperience"`
	PendingExperience  float64 `json:"pendingExperience" firestore:"pendingExperience"`
	SubmissionCount    int     `json:"submissionCount" firestore:"submissionCount"`
}
