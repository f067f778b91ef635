package models

// Participant links a marketplace profile (professional or planner) to its user account.
type Participant struct {
	ID     string `bson:"id" json:"id"`
	UserID string `bson:"userId" json:"userId"`
	Name   string `bson:"name" json:"name"`
	Role   Role   `bson:"-" json:"role"`
}

// UserDevice holds the push token registered for a user.
type UserDevice struct {
	UserID   string `bson:"id" json:"userId"`
	FCMToken string `bson:"fcmToken" json:"fcmToken"`
}
