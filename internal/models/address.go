package models

// Address is a postal address kept by a user. Every field is optional.
type Address struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"-"`
	User     *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Street   string `gorm:"size:255" json:"street"`
	City     string `gorm:"size:255" json:"city"`
	Country  string `gorm:"size:255" json:"country"`
	Postcode *int   `json:"postcode"`
}
