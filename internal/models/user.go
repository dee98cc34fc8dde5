package models

// User is a pensioner account as supplied by the auth session.
type User struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	LastName string `yaml:"last_name" json:"lastName"`
	Email    string `yaml:"email" json:"email"`
	Phone    string `yaml:"phone" json:"phone"`
	Active   bool   `yaml:"active" json:"active"`
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}
