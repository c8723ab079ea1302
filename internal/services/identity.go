package services

import (
	"strings"

	"github.com/terraincognita07/mindnet/internal/models"
)

// Identity is the authenticated caller of one request. The zero value is anonymous.
type Identity struct {
	Username string
	Role     string
}

func (identity Identity) Authenticated() bool {
	return strings.TrimSpace(identity.Username) != ""
}

// IsPatient reports whether the caller is the patient account named username.
func (identity Identity) IsPatient(username string) bool {
	return identity.Authenticated() && identity.Role == models.RolePatient && identity.Username == username
}

func (identity Identity) IsTherapist(username string) bool {
	return identity.Authenticated() && identity.Role == models.RoleTherapist && identity.Username == username
}
