package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/terraincognita07/mindnet/internal/db"
	"github.com/terraincognita07/mindnet/internal/models"
	"github.com/terraincognita07/mindnet/internal/security"
	"github.com/terraincognita07/mindnet/internal/services"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 12

type ResetRequest struct {
	Username  string
	Therapist bool
	// Password is used as-is when set; otherwise a temporary one is generated and printed.
	Password string
}

// RunResetPassword replaces the password of a patient or therapist account.
func RunResetPassword(ctx context.Context, database *gorm.DB, request ResetRequest, out io.Writer) error {
	username := strings.TrimSpace(request.Username)
	if username == "" {
		return errors.New("username is required")
	}
	role := models.RolePatient
	if request.Therapist {
		role = models.RoleTherapist
	}

	password := request.Password
	generated := password == ""
	if generated {
		var err error
		password, err = security.TemporaryPassword(temporaryPasswordLength)
		if err != nil {
			return fmt.Errorf("generate temporary password: %w", err)
		}
	}

	repos := db.NewRepositories(database)
	auth := services.NewAuthService(repos.Users, repos.Therapists)
	if err := auth.ResetPassword(ctx, role, username, password); err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			return fmt.Errorf("%s %s not found", role, username)
		}
		return err
	}

	fmt.Fprintf(out, "Password reset for %s %s\n", role, username)
	if generated {
		fmt.Fprintf(out, "Temporary password: %s\n", password)
	}
	return nil
}
