package domain

import "time"

type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Hash      string    `db:"password_hash" json:"-"`
	Role      string    `db:"role" json:"role"` // USER | ADMIN
	CreatedAt time.Time `db:"-" json:"createdAt"`
}

// Profile holds the optional contact and address fields of a user.
type Profile struct {
	UserID    string    `db:"user_id" json:"userId"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	City      string    `db:"city" json:"city"`
	State     string    `db:"state" json:"state"`
	ZipCode   string    `db:"zip_code" json:"zipCode"`
	Country   string    `db:"country" json:"country"`
	UpdatedAt time.Time `db:"-" json:"updatedAt"`
}

// Location renders "city, state" or "Unknown" when no city is on file.
func (p *Profile) Location() string {
	if p == nil || p.City == "" {
		return "Unknown"
	}
	return p.City + ", " + p.State
}
