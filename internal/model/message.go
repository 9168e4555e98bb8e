package model

import "time"

// Message is a single chat message stored under chats/{chatId}/messages/{id}.
//
// UserSender is a snapshot of the sender's user record taken when the message
// was created. Later username or mentor changes do not rewrite old messages.
//
// In Firestore the id and chat id are the document path, not fields.
type Message struct {
	ID          string    `json:"id"                 bson:"_id"                firestore:"-"`
	ChatID      string    `json:"chatId"             bson:"chatId"             firestore:"-"`
	Message     string    `json:"message"            bson:"message"            firestore:"message"`
	DateCreated time.Time `json:"dateCreated"        bson:"dateCreated"        firestore:"dateCreated"`
	UserSender  User      `json:"userSender"         bson:"userSender"         firestore:"userSender"`
	URLImage    *string   `json:"urlImage,omitempty" bson:"urlImage,omitempty" firestore:"urlImage,omitempty"`
}
