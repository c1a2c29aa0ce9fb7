package models

import "time"

// ActivityEntry is one row of the backend Activity Log.
type ActivityEntry struct {
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
	Creation string `json:"creation"`
	User     string `json:"user"`
}

type Update struct {
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	Age       string    `json:"age"`
}
