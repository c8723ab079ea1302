package api

import (
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"github.com/terraincognita07/mindnet/internal/db"
	"github.com/terraincognita07/mindnet/internal/models"
	"github.com/terraincognita07/mindnet/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Options struct {
	SecretKey    string
	TemplatesDir string
	CookieSecure bool
	Logger       *zap.Logger
}

type Handler struct {
	secretKey    []byte
	cookieSecure bool
	cookieCodec  *secureCookieCodec
	templates    map[string]*template.Template
	logger       *zap.Logger
	loginLimiter *attemptLimiter

	auth      *services.AuthService
	entries   *services.EntryService
	profiles  *services.ProfileService
	emergency *services.EmergencyService
}

var pageTemplates = []string{
	"login",
	"register",
	"therapist_register",
	"profile",
	"therapist_profile",
	"entry_form",
	"entry_detail",
	"error",
}

func NewHandler(database *gorm.DB, dispatcher services.IncidentDispatcher, options Options) (*Handler, error) {
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("incident dispatcher is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	secretKey := []byte(options.SecretKey)
	codec, err := newSecureCookieCodec(secretKey)
	if err != nil {
		return nil, err
	}

	templates, err := parsePageTemplates(options.TemplatesDir)
	if err != nil {
		return nil, err
	}

	repos := db.NewRepositories(database)
	return &Handler{
		secretKey:    secretKey,
		cookieSecure: options.CookieSecure,
		cookieCodec:  codec,
		templates:    templates,
		logger:       logger,
		loginLimiter: newAttemptLimiter(),
		auth:         services.NewAuthService(repos.Users, repos.Therapists),
		entries:      services.NewEntryService(repos.Entries, repos.Therapists),
		profiles:     services.NewProfileService(repos.Users, repos.Therapists, repos.Entries),
		emergency:    services.NewEmergencyService(repos.Users, repos.Therapists, dispatcher, logger.Named("emergency")),
	}, nil
}

func parsePageTemplates(templateDir string) (map[string]*template.Template, error) {
	funcMap := template.FuncMap{
		"formatDate": func(value time.Time, layout string) string {
			if value.IsZero() {
				return ""
			}
			return value.Format(layout)
		},
		"hasTag": func(selected []string, tag string) bool {
			return models.IsCatalogTag(selected, tag)
		},
		"splitDistortions": func(flattened string) []string {
			return models.SplitTags(flattened, models.CognitiveDistortions())
		},
		"splitConsequences": func(flattened string) []string {
			return models.SplitTags(flattened, models.EmotionalConsequences())
		},
		"fieldError": func(errs services.ValidationErrors, field string) string {
			return strings.TrimSpace(errs[field])
		},
	}

	templates := make(map[string]*template.Template, len(pageTemplates))
	for _, page := range pageTemplates {
		parsed, err := template.New("base").Funcs(funcMap).ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, page+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = parsed
	}
	return templates, nil
}
