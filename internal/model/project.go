package model

import "time"

type Project struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Public      bool      `json:"public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProjectQuery struct {
	// ViewerID is zero for anonymous callers.
	ViewerID int64
	Page     int
	Limit    int
}

type ProjectListData struct {
	Items []Project `json:"items"`
}

const (
	RiskStatusOpen      = "open"
	RiskStatusMitigated = "mitigated"
	RiskStatusClosed    = "closed"
)

type Risk struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Probability int       `json:"probability"`
	Impact      int       `json:"impact"`
	Score       int       `json:"score"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RiskListData struct {
	Items []Risk `json:"items"`
}
