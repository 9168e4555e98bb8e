// Package model defines the data structures used throughout the application.
package model

// User is the record stored under users/{uid}.
//
// The UID comes from the identity provider (the OIDC "sub" claim) and is the
// document key in every store. It never changes once set.
//
// WHY IsMentor *bool?
// A stored document may lack the mentor field entirely (documents written by
// older clients, or by hand in the console). Synchronization must tell
// "absent" apart from "false" so a returning mentor keeps the flag, so the
// field is nullable in storage. Use Mentor() to read it with the false default.
//
// URLPicture is nil when the provider has no profile picture for the user.
type User struct {
	UID        string  `json:"uid"                  db:"uid"         bson:"_id"                  firestore:"uid"`
	Username   string  `json:"username"             db:"username"    bson:"username"             firestore:"username"`
	IsMentor   *bool   `json:"isMentor"             db:"is_mentor"   bson:"isMentor,omitempty"   firestore:"isMentor,omitempty"`
	URLPicture *string `json:"urlPicture,omitempty" db:"url_picture" bson:"urlPicture,omitempty" firestore:"urlPicture,omitempty"`
}

// NewUser builds a fresh user record with the mentor flag defaulted to false.
func NewUser(uid, username string, urlPicture *string) *User {
	u := &User{
		UID:        uid,
		Username:   username,
		URLPicture: urlPicture,
	}
	u.SetMentor(false)
	return u
}

// Mentor reports the mentor flag, treating an absent field as false.
func (u User) Mentor() bool {
	return u.IsMentor != nil && *u.IsMentor
}

// HasMentorField reports whether the mentor field is present at all.
func (u User) HasMentorField() bool {
	return u.IsMentor != nil
}

func (u *User) SetMentor(v bool) {
	u.IsMentor = &v
}
