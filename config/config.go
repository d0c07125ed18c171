// Package config loads deployment settings from the environment.
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"quotebuilder/services"
)

// Config holds the fixed identity and export settings of one deployment.
type Config struct {
	CompanyName  string
	CompanyCity  string
	CompanyEmail string
	CompanyPhone string
	Intro        string

	DefaultTaxPercent float64
	ValidityDays      int

	SignerName  string
	SignerTitle string
	SignerEmail string

	HeaderImage    string
	FooterImage    string
	SignatureImage string
	StaticDir      string

	ChromePath    string
	ExportScale   float64
	ExportVariant string
	ExportTimeout time.Duration

	AdminEmail    string
	AdminPassword string
}

// Load reads .env (when present) and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("config: could not read .env: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) Config {
	env := func(k, def string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		CompanyName:  env("QB_COMPANY_NAME", "CJ Producciones"),
		CompanyCity:  env("QB_COMPANY_CITY", "Santiago, Chile"),
		CompanyEmail: env("QB_COMPANY_EMAIL", "contacto@cjproducciones.cl"),
		CompanyPhone: env("QB_COMPANY_PHONE", "+56 9 1234 5678"),
		Intro: env("QB_INTRO",
			"De acuerdo a lo solicitado, presentamos la siguiente propuesta de servicios para su evento."),

		DefaultTaxPercent: services.DefaultTaxPercent,
		ValidityDays:      30,

		SignerName:  env("QB_SIGNER_NAME", "Carlos Jaramillo"),
		SignerTitle: env("QB_SIGNER_TITLE", "Director general"),
		SignerEmail: env("QB_SIGNER_EMAIL", "carlos.jaramillo@cjproducciones.cl"),

		HeaderImage:    env("QB_HEADER_IMAGE", "assets/header.png"),
		FooterImage:    env("QB_FOOTER_IMAGE", "assets/footer.png"),
		SignatureImage: env("QB_SIGNATURE_IMAGE", "assets/signature.png"),
		StaticDir:      env("QB_STATIC_DIR", "./static"),

		ChromePath:    env("CHROME_PATH", ""),
		ExportScale:   2,
		ExportVariant: env("QB_EXPORT_VARIANT", services.VariantTable),
		ExportTimeout: 60 * time.Second,

		AdminEmail:    env("QB_ADMIN_EMAIL", ""),
		AdminPassword: env("QB_ADMIN_PASSWORD", ""),
	}

	if raw := env("QB_DEFAULT_TAX_PERCENT", ""); raw != "" {
		if v, err := cast.ToFloat64E(raw); err == nil && v >= 0 && v <= 100 {
			cfg.DefaultTaxPercent = v
		}
	}
	if raw := env("QB_VALIDITY_DAYS", ""); raw != "" {
		if v, err := cast.ToIntE(raw); err == nil && v > 0 {
			cfg.ValidityDays = v
		}
	}
	if raw := env("QB_EXPORT_SCALE", ""); raw != "" {
		// Below 2x the printed text turns blurry.
		if v, err := cast.ToFloat64E(raw); err == nil && v >= 2 {
			cfg.ExportScale = v
		}
	}
	if raw := env("QB_EXPORT_TIMEOUT", ""); raw != "" {
		if v, err := cast.ToDurationE(raw); err == nil && v > 0 {
			cfg.ExportTimeout = v
		}
	}
	if cfg.ExportVariant != services.VariantBullets {
		cfg.ExportVariant = services.VariantTable
	}
	return cfg
}

// Branding is the subset printed on quotes.
func (c Config) Branding() services.Branding {
	return services.Branding{
		CompanyName:  c.CompanyName,
		CompanyCity:  c.CompanyCity,
		CompanyEmail: c.CompanyEmail,
		CompanyPhone: c.CompanyPhone,
		Signer: services.Signer{
			Name:  c.SignerName,
			Title: c.SignerTitle,
			Email: c.SignerEmail,
		},
		ValidityDays: c.ValidityDays,
		Intro:        c.Intro,
	}
}

// Assets lists the images embedded in every structured export.
func (c Config) Assets() services.AssetSet {
	return services.AssetSet{
		Header:    c.HeaderImage,
		Footer:    c.FooterImage,
		Signature: c.SignatureImage,
	}
}
