package store

// Session is one journal session row. SettingsJSON snapshots the
// settings the session ran under, so replays use the recorded values
// even after the config file changes.
type Session struct {
	Token        string
	MapName      string
	SettingsJSON string
	CreatedSeq   int64
}

// Deal is one recorded deal: the generated layout, its fingerprint,
// and the karma verdict at deal time.
type Deal struct {
	ID           string
	SessionToken string
	NodeKey      string
	Direction    string
	LayoutJSON   string
	Fingerprint  string
	Playable     int
	Required     int
	Accepted     bool
	Seq          int64
}

// Play is one recorded placement attempt. Illegal attempts are
// recorded too; the journal is an audit log, not a filter.
type Play struct {
	ID            string
	DealID        string
	TableauIdx    int
	FoundationIdx int
	CardRank      int
	CardElement   string
	Legal         bool
	Seq           int64
}
