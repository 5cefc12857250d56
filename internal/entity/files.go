package entity

import "time"

type FileInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Size        string    `json:"size"`
	LastUpdated time.Time `json:"lastUpdated"`
	AccountNo   string    `json:"accno"`
	RecordCount int       `json:"recordCount"`
	Owner       string    `json:"owner"`
}
