package doctor

import (
	"context"
	"fmt"

	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Store          ports.SettingsStore
	Activity       ports.ActivityLog
	Filter         ports.ContentFilter
	Generator      ports.Generator
	DeviceID       string
	Model          domain.ModelDefinition
}

// Run executes checks and returns a report. The error is set only when the
// config itself cannot be loaded.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded %s (%d models)", cfg.ConfigFormatVersion, len(cfg.Models))))

	rec, err := s.Store.Load(ctx, s.DeviceID)
	if err != nil {
		checks = append(checks, fail("Settings store", err.Error()))
	} else {
		checks = append(checks, ok("Settings store", fmt.Sprintf("%s backend, device %s", cfg.GetStorageBackend(), s.DeviceID)))
		checks = append(checks, guardianCheck(rec))
		checks = append(checks, s.keywordCheck(rec))
	}

	if s.Activity != nil {
		if _, err := s.Activity.Entries(1, ""); err != nil {
			checks = append(checks, fail("Activity log", err.Error()))
		} else {
			checks = append(checks, ok("Activity log", s.Activity.Path()))
		}
	} else {
		checks = append(checks, warn("Activity log", "activity log not initialized"))
	}

	checks = append(checks, s.modelCheck())

	return domain.HealthReport{Checks: checks}, nil
}

func guardianCheck(rec domain.DeviceRecord) domain.HealthCheck {
	if !rec.HasCredential() {
		return warn("Guardian password", "not set; run 'kidchat guardian set'")
	}
	if !rec.KeywordsLocked {
		return warn("Guardian password", "set, but settings are unlocked")
	}
	return ok("Guardian password", "set and settings locked")
}

func (s *Service) keywordCheck(rec domain.DeviceRecord) domain.HealthCheck {
	if s.Filter == nil {
		return warn("Keyword filter", "filter not initialized")
	}
	terms := s.Filter.Normalize(rec.BannedTerms)
	if len(terms) == 0 {
		return warn("Keyword filter", "no banned keywords; replies are not filtered")
	}
	return ok("Keyword filter", fmt.Sprintf("%d banned keywords", len(terms)))
}

func (s *Service) modelCheck() domain.HealthCheck {
	name := s.Model.Name
	if s.Generator == nil {
		return fail("Model", name+": provider not initialized")
	}
	if s.Generator.Name() != string(domain.ProviderKindOffline) {
		return ok("Model", fmt.Sprintf("%s via %s", name, s.Generator.Name()))
	}
	if domain.ProviderKind(s.Model.Provider) == domain.ProviderKindOffline {
		return ok("Model", name+" answers offline")
	}
	return warn("Model", fmt.Sprintf("%s falls back to offline replies; %s missing", name, s.missingKey()))
}

func (s *Service) missingKey() string {
	fallback := "OPENAI_API_KEY"
	if domain.ProviderKind(s.Model.Provider) == domain.ProviderKindAnthropic {
		fallback = "ANTHROPIC_API_KEY"
	}
	if s.Model.AuthEnvVar != "" && s.Model.AuthEnvVar != fallback {
		return s.Model.AuthEnvVar + " or " + fallback
	}
	return fallback
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
