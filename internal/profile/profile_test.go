package profile

import (
	"os"
	"testing"
)

func clearSchedulingEnvVars() {
	for _, key := range []string{
		"INITIO_AI_LLM_PROVIDER",
		"INITIO_AI_LLM_API_KEY",
		"INITIO_AI_LLM_BASE_URL",
		"INITIO_AI_LLM_MODEL",
		"INITIO_AI_LLM_TIMEOUT_SECONDS",
		"INITIO_TELEGRAM_BOT_TOKEN",
		"INITIO_SCHEDULING_HOURS_PER_DAY",
		"INITIO_SCHEDULING_BUFFER_DAYS",
		"INITIO_SCHEDULING_SESSION_MINUTES",
	} {
		os.Unsetenv(key)
	}
}

func TestProfileDefaults(t *testing.T) {
	clearSchedulingEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	if profile.IsAIEnabled() {
		t.Error("IsAIEnabled should be false without an API key")
	}
	if profile.LLMProvider != "openai" {
		t.Errorf("LLMProvider: expected %q, got %q", "openai", profile.LLMProvider)
	}
	if profile.LLMBaseURL != "https://api.openai.com/v1" {
		t.Errorf("LLMBaseURL: expected default openai URL, got %q", profile.LLMBaseURL)
	}
	if profile.LLMTimeout != 30 {
		t.Errorf("LLMTimeout: expected 30, got %d", profile.LLMTimeout)
	}
	if profile.FeasibilityHoursPerDay != 2 {
		t.Errorf("FeasibilityHoursPerDay: expected 2, got %v", profile.FeasibilityHoursPerDay)
	}
	if profile.FeasibilityBufferDays != 7 {
		t.Errorf("FeasibilityBufferDays: expected 7, got %d", profile.FeasibilityBufferDays)
	}
	if profile.SessionDurationMinutes != 120 {
		t.Errorf("SessionDurationMinutes: expected 120, got %d", profile.SessionDurationMinutes)
	}
}

func TestProfileFromEnv(t *testing.T) {
	clearSchedulingEnvVars()

	tests := []struct {
		name     string
		envVar   string
		envValue string
		check    func(*Profile) bool
	}{
		{
			name:     "LLM API key enables AI",
			envVar:   "INITIO_AI_LLM_API_KEY",
			envValue: "test-key",
			check:    func(p *Profile) bool { return p.IsAIEnabled() && p.LLMAPIKey == "test-key" },
		},
		{
			name:     "deepseek provider picks deepseek defaults",
			envVar:   "INITIO_AI_LLM_PROVIDER",
			envValue: "deepseek",
			check: func(p *Profile) bool {
				return p.LLMProvider == "deepseek" && p.LLMBaseURL == "https://api.deepseek.com"
			},
		},
		{
			name:     "unknown provider falls back to openai",
			envVar:   "INITIO_AI_LLM_PROVIDER",
			envValue: "not-a-provider",
			check:    func(p *Profile) bool { return p.LLMProvider == "openai" },
		},
		{
			name:     "hours per day override",
			envVar:   "INITIO_SCHEDULING_HOURS_PER_DAY",
			envValue: "3.5",
			check:    func(p *Profile) bool { return p.FeasibilityHoursPerDay == 3.5 },
		},
		{
			name:     "buffer days override",
			envVar:   "INITIO_SCHEDULING_BUFFER_DAYS",
			envValue: "14",
			check:    func(p *Profile) bool { return p.FeasibilityBufferDays == 14 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSchedulingEnvVars()
			os.Setenv(tt.envVar, tt.envValue)
			defer os.Unsetenv(tt.envVar)

			profile := &Profile{}
			profile.FromEnv()

			if !tt.check(profile) {
				t.Errorf("check failed for %s=%s", tt.envVar, tt.envValue)
			}
		})
	}
}

func TestValidateClampsPolicy(t *testing.T) {
	dir := t.TempDir()
	profile := &Profile{
		Mode:                   "dev",
		Data:                   dir,
		Driver:                 "sqlite",
		FeasibilityHoursPerDay: -1,
		FeasibilityBufferDays:  -5,
	}
	if err := profile.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if profile.FeasibilityHoursPerDay != 2 {
		t.Errorf("FeasibilityHoursPerDay not clamped: %v", profile.FeasibilityHoursPerDay)
	}
	if profile.FeasibilityBufferDays != 7 {
		t.Errorf("FeasibilityBufferDays not clamped: %d", profile.FeasibilityBufferDays)
	}
	if profile.DSN == "" {
		t.Error("sqlite DSN should default to a file under the data dir")
	}
}
