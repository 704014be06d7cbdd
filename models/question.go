package models

import "time"

// Question is a multiple-choice quiz entry. Answering one correctly lets the
// player break a maze wall on the client.
type Question struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Slug          string `gorm:"uniqueIndex;not null" json:"slug"` // derived from the prompt, used for catalog upserts
	Difficulty    string `gorm:"index;type:varchar(16);not null" json:"difficulty"`
	Prompt        string `gorm:"type:text;not null" json:"question"`
	OptionA       string `gorm:"not null" json:"option_a"`
	OptionB       string `gorm:"not null" json:"option_b"`
	OptionC       string `gorm:"not null" json:"option_c"`
	OptionD       string `gorm:"not null" json:"option_d"`
	CorrectOption string `gorm:"type:varchar(1);not null" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
