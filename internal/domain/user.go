package domain

// UserInfo is the profile shown for the local user.  Description and Donate hold markup and are stored verbatim.
type UserInfo struct {
	Avatar      string `json:"avatar"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Donate      string `json:"donate"`
}

// UserState is the record persisted under the user storage key.  New fields should be added beside UserInfo so that
// previously stored data keeps decoding.
type UserState struct {
	UserInfo UserInfo `json:"userInfo"`
}
