package model

const VisibilityTeam = "team"

type Item struct {
	ID         string `json:"id" db:"id"`
	TeamID     string `json:"team_id" db:"team_id"`
	UserID     string `json:"user_id" db:"user_id"`
	CategoryID string `json:"category_id" db:"category_id"`
	Title      string `json:"title" db:"title"`
	Date       string `json:"date" db:"date"`
	Body       string `json:"body" db:"body"`
	Ctime      int64  `json:"ctime" db:"ctime"`
}

type Experiment struct {
	ID         string `json:"id" db:"id"`
	TeamID     string `json:"team_id" db:"team_id"`
	UserID     string `json:"user_id" db:"user_id"`
	Title      string `json:"title" db:"title"`
	Date       string `json:"date" db:"date"`
	Body       string `json:"body" db:"body"`
	Visibility string `json:"visibility" db:"visibility"`
	StatusID   string `json:"status_id" db:"status_id"`
	ElabID     string `json:"elabid" db:"elabid"`
	Ctime      int64  `json:"ctime" db:"ctime"`
}

type Status struct {
	ID        string `json:"id" db:"id"`
	TeamID    string `json:"team_id" db:"team_id"`
	Name      string `json:"name" db:"name"`
	Color     string `json:"color" db:"color"`
	IsDefault bool   `json:"is_default" db:"is_default"`
}
