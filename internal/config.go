package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/DukeRupert/authui/internal/authform"
	"github.com/DukeRupert/authui/internal/domain"
	"github.com/DukeRupert/authui/internal/view"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// validate is shared so struct metadata is cached across calls.
var validate = validator.New()

func init() {
	// Report failures by environment variable name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	_ = validate.RegisterValidation("localpath", validateLocalPath)
	_ = validate.RegisterValidation("provider", validateProvider)
}

// providerName matches GoTrue provider identifiers such as github and
// linkedin_oidc.
var providerName = regexp.MustCompile(`^[a-z0-9_]+$`)

func validateProvider(fl validator.FieldLevel) bool {
	return providerName.MatchString(fl.Field().String())
}

// validateLocalPath accepts same-origin absolute paths only, so post sign in
// redirects cannot leave the site.
func validateLocalPath(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	return strings.HasPrefix(p, "/") &&
		!strings.HasPrefix(p, "//") &&
		!strings.Contains(p, `\`)
}

type Config struct {
	Env      string `env:"ENV" validate:"oneof=development production test"`
	Port     int    `env:"PORT" validate:"min=1,max=65535"`
	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	// Public URL of this server
	BaseURL string `env:"BASE_URL" validate:"required,url"`

	// Identity backend
	AuthURL     string        `env:"AUTH_URL" validate:"required,url"`
	AuthAPIKey  string        `env:"AUTH_API_KEY" validate:"required"`
	AuthTimeout time.Duration `env:"AUTH_TIMEOUT" validate:"gt=0"`

	// Signs the session cookie
	SessionSecret string `env:"SESSION_SECRET" validate:"required,min=32"`

	// Widget
	View               string            `env:"AUTH_VIEW" validate:"omitempty,oneof=sign_in sign_up forgotten_password magic_link update_password verify_otp"`
	Providers          []string          `env:"AUTH_PROVIDERS" validate:"required_if=OnlyThirdParty true,dive,required,provider"`
	ProviderScopes     map[string]string `env:"AUTH_PROVIDER_SCOPES"`
	QueryParams        map[string]string `env:"AUTH_QUERY_PARAMS"`
	RedirectTo         string            `env:"AUTH_REDIRECT_TO" validate:"omitempty,url"`
	OnlyThirdParty     bool              `env:"AUTH_ONLY_THIRD_PARTY"`
	MagicLink          bool              `env:"AUTH_MAGIC_LINK"`
	ShowLinks          bool              `env:"AUTH_SHOW_LINKS"`
	OtpType            string            `env:"AUTH_OTP_TYPE" validate:"oneof=email sms phone_change signup invite magiclink recovery email_change"`
	SignUpData         map[string]any    `env:"AUTH_SIGNUP_DATA"`
	AfterSignInURL     string            `env:"AUTH_AFTER_SIGN_IN_URL" validate:"required,localpath"`
	I18nFile           string            `env:"I18N_FILE"`
	Stylesheet         string            `env:"STYLESHEET"`
	AppearanceOverride view.Appearance   `env:"-"`

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string `env:"METRICS_USERNAME"`
	MetricsPassword string `env:"METRICS_PASSWORD"`
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		AuthURL:     getEnv("AUTH_URL", ""),
		AuthAPIKey:  getEnv("AUTH_API_KEY", ""),
		AuthTimeout: getEnvDuration("AUTH_TIMEOUT", 10*time.Second),

		SessionSecret: getEnv("SESSION_SECRET", ""),

		View:           getEnv("AUTH_VIEW", string(domain.ViewSignIn)),
		Providers:      getEnvList("AUTH_PROVIDERS"),
		RedirectTo:     getEnv("AUTH_REDIRECT_TO", ""),
		OnlyThirdParty: getEnvBool("AUTH_ONLY_THIRD_PARTY", false),
		MagicLink:      getEnvBool("AUTH_MAGIC_LINK", false),
		ShowLinks:      getEnvBool("AUTH_SHOW_LINKS", true),
		OtpType:        getEnv("AUTH_OTP_TYPE", string(domain.OtpEmail)),
		AfterSignInURL: getEnv("AUTH_AFTER_SIGN_IN_URL", "/"),
		I18nFile:       getEnv("I18N_FILE", ""),
		Stylesheet:     getEnv("STYLESHEET", ""),

		AppearanceOverride: view.Appearance{
			Container:      getEnv("APPEARANCE_CONTAINER_CLASS", ""),
			ProviderList:   getEnv("APPEARANCE_PROVIDER_LIST_CLASS", ""),
			ProviderButton: getEnv("APPEARANCE_PROVIDER_BUTTON_CLASS", ""),
			Divider:        getEnv("APPEARANCE_DIVIDER_CLASS", ""),
			Form:           getEnv("APPEARANCE_FORM_CLASS", ""),
			Label:          getEnv("APPEARANCE_LABEL_CLASS", ""),
			Input:          getEnv("APPEARANCE_INPUT_CLASS", ""),
			Button:         getEnv("APPEARANCE_BUTTON_CLASS", ""),
			Links:          getEnv("APPEARANCE_LINKS_CLASS", ""),
			Anchor:         getEnv("APPEARANCE_ANCHOR_CLASS", ""),
			Message:        getEnv("APPEARANCE_MESSAGE_CLASS", ""),
			Error:          getEnv("APPEARANCE_ERROR_CLASS", ""),
		},

		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	var err error
	// Scopes may contain spaces and commas, so providers are split on ';'
	if cfg.ProviderScopes, err = parsePairs(getEnv("AUTH_PROVIDER_SCOPES", ""), ";"); err != nil {
		return nil, fmt.Errorf("AUTH_PROVIDER_SCOPES: %w", err)
	}
	if cfg.QueryParams, err = parsePairs(getEnv("AUTH_QUERY_PARAMS", ""), ","); err != nil {
		return nil, fmt.Errorf("AUTH_QUERY_PARAMS: %w", err)
	}
	if raw := getEnv("AUTH_SIGNUP_DATA", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.SignUpData); err != nil {
			return nil, fmt.Errorf("AUTH_SIGNUP_DATA must be a JSON object: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags and reports the first failing variable.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Errorf("%s is required", fe.Field())
	case "min":
		return fmt.Errorf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got: %v", fe.Field(), fe.Param(), fe.Value())
	case "provider":
		return fmt.Errorf("%s must be a provider name like github or linkedin_oidc, got: %v", fe.Field(), fe.Value())
	case "localpath":
		return fmt.Errorf("%s must be a path on this site, got: %v", fe.Field(), fe.Value())
	default:
		return fmt.Errorf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// WidgetOptions returns the auth widget settings described by the config.
func (c *Config) WidgetOptions() authform.Options {
	opts := authform.DefaultOptions()
	opts.View = domain.View(c.View)
	opts.RedirectTo = c.RedirectTo
	opts.OnlyThirdPartyProviders = c.OnlyThirdParty
	opts.MagicLink = c.MagicLink
	opts.ShowLinks = c.ShowLinks
	opts.OtpType = domain.OtpType(c.OtpType)
	opts.AdditionalData = c.SignUpData
	opts.QueryParams = c.QueryParams

	for _, p := range c.Providers {
		opts.Providers = append(opts.Providers, domain.Provider(p))
	}
	if len(c.ProviderScopes) > 0 {
		opts.ProviderScopes = make(map[domain.Provider]string, len(c.ProviderScopes))
		for p, scopes := range c.ProviderScopes {
			opts.ProviderScopes[domain.Provider(p)] = scopes
		}
	}
	return opts
}

// Appearance returns the default widget classes with the configured
// overrides merged in.
func (c *Config) Appearance() view.Appearance {
	return view.DefaultAppearance().Merge(c.AppearanceOverride)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, strings.ToLower(trimmed))
		}
	}
	return out
}

// parsePairs parses "k=v<sep>k=v". Values may contain '='.
func parsePairs(s, sep string) (map[string]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(s, sep) {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
