package model

import "time"

type Message struct {
	ID        string    `gorm:"primaryKey" bson:"id" json:"id"`
	UserID    string    `gorm:"index;not null" bson:"-" json:"-"`
	Content   string    `gorm:"not null;size:300" bson:"content" json:"content"`
	CreatedAt time.Time `gorm:"index" bson:"created_at" json:"createdAt"`
}
