package visits

// Visit is one recorded visit for a user. DateTime is an epoch-millisecond
// timestamp kept as a string, matching how clients render it.
type Visit struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"userId"`
	DateTime string `json:"dateTime"`
}
