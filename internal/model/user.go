// Package model defines database models
package model

import "time"

// User is both the account and the owner of an inbox. The Mongo store keeps
// Messages embedded in the same document; the SQL stores keep them in their own
// table keyed by UserID.
type User struct {
	ID           string `gorm:"primaryKey" bson:"_id" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" bson:"username" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	PasswordHash string `gorm:"not null" bson:"password_hash" json:"-"`

	VerifyCode         string    `bson:"verify_code" json:"-"`
	VerifyCodeExpiry   time.Time `bson:"verify_code_expiry" json:"-"`
	VerifyCodeIssuedAt time.Time `bson:"verify_code_issued_at" json:"-"`

	Verified bool `gorm:"not null;default:false" bson:"verified" json:"isVerified"`
	// No gorm default here, otherwise a false value would be swapped for the default on insert
	AcceptingMessages bool `gorm:"not null" bson:"accepting_messages" json:"isAcceptingMessages"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"-"`

	Messages []Message `gorm:"foreignKey:UserID" bson:"messages" json:"-"`
}

// CodeExpired reports whether the current verification code is past its expiry at t
func (u *User) CodeExpired(t time.Time) bool {
	return t.After(u.VerifyCodeExpiry)
}
