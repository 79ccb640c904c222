package models

// Provider is the network operator a SIM card belongs to.
type Provider struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;not null;uniqueIndex" json:"name"`
}
