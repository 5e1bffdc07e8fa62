package models

// TimestampLayout is the textual timestamp form stored in the record files.
const TimestampLayout = "2006-01-02 15:04:05"

// UserRecord is a registered student account. It is immutable once written.
type UserRecord struct {
	RegistrationID string `db:"registration_id" json:"ra"`
	FullName       string `db:"full_name" json:"nome"`
	Email          string `db:"email" json:"email"`
	NationalID     string `db:"national_id" json:"cpf"`
	Program        string `db:"program" json:"curso"`
	PasswordHash   string `db:"password_hash" json:"-"`
	RegisteredAt   string `db:"registered_at" json:"data_cadastro"`
}

// UserInfo is the public projection of a user returned by the API.
type UserInfo struct {
	RegistrationID string `json:"ra"`
	FullName       string `json:"nome"`
	Email          string `json:"email"`
	Program        string `json:"curso"`
	RegisteredAt   string `json:"data_cadastro"`
}

// Info returns the public projection of the record.
func (u *UserRecord) Info() UserInfo {
	return UserInfo{
		RegistrationID: u.RegistrationID,
		FullName:       u.FullName,
		Email:          u.Email,
		Program:        u.Program,
		RegisteredAt:   u.RegisteredAt,
	}
}
