package models

import (
	"time"
)

// KVRecord is one keyed value of the application storage scope when it is
// kept in a SQL database.
type KVRecord struct {
	Key       string    `gorm:"column:record_key;primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KVRecord) TableName() string { return "kv_records" }
