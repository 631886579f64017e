package model

type Tag struct {
	ID     string `json:"id" db:"id"`
	TeamID string `json:"team_id" db:"team_id"`
	Tag    string `json:"tag" db:"tag"`
	Ctime  int64  `json:"ctime" db:"ctime"`
}

type EntityTag struct {
	TagID      string     `json:"tag_id" db:"tag_id"`
	EntityID   string     `json:"entity_id" db:"entity_id"`
	EntityKind ImportKind `json:"entity_kind" db:"entity_kind"`
}
