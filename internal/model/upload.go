package model

type Upload struct {
	ID         string     `json:"id" db:"id"`
	EntityID   string     `json:"entity_id" db:"entity_id"`
	EntityKind ImportKind `json:"entity_kind" db:"entity_kind"`
	TeamID     string     `json:"team_id" db:"team_id"`
	UserID     string     `json:"user_id" db:"user_id"`
	RealName   string     `json:"real_name" db:"real_name"`
	LongName   string     `json:"long_name" db:"long_name"`
	Comment    string     `json:"comment" db:"comment"`
	Hash       string     `json:"hash" db:"hash"`
	MimeType   string     `json:"mime_type" db:"mime_type"`
	Size       int64      `json:"size" db:"size"`
	Ctime      int64      `json:"ctime" db:"ctime"`
}
