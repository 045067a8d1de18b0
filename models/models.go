// models/models.go
package models

import (
	"time"
)

// Transcript authorship tags. Each side labels its own messages self and the
// counterpart's partner; there is no global participant identity.
const (
	AuthorSelf    = "self"
	AuthorPartner = "partner"
)

// TranscriptEntry 聊天记录条目
type TranscriptEntry struct {
	Author string    `json:"author"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// Scoreboard is the local view of the round and scores. The two clients'
// scoreboards are mirror images, not copies of a shared object.
type Scoreboard struct {
	Round        int `json:"round"`
	MaxRounds    int `json:"max_rounds"`
	YourScore    int `json:"your_score"`
	PartnerScore int `json:"partner_score"`
}

// Final-screen verdicts, always from the local point of view.
const (
	VerdictYou     = "you"
	VerdictPartner = "partner"
	VerdictDraw    = "draw"
)

// FinalResult compares the two local score fields once the round counter
// passes the last round.
type FinalResult struct {
	YourScore    int    `json:"your_score"`
	PartnerScore int    `json:"partner_score"`
	Verdict      string `json:"verdict"`
}
