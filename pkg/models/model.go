package models

import "time"

// Curated model categories.
const (
	CategoryTopOverall = "top_overall"
	CategoryTopFree    = "top_free"
	CategoryDiscovered = "discovered"
	CategoryFallback   = "fallback"
)

// CuratedModel is an LLM catalog entry. Seeded from a built-in default set,
// refreshed from the live provider catalog; usage fields are updated on
// every successful LLM call.
type CuratedModel struct {
	ID               string    `json:"id"` // provider/model form
	Name             string    `json:"name"`
	Provider         string    `json:"provider"`
	Description      string    `json:"description,omitempty"`
	Category         string    `json:"category"`
	PerformanceScore float64   `json:"performance_score"` // 0-10, derived
	UsageCount       int       `json:"usage_count"`
	AvgResponseTime  float64   `json:"avg_response_time"`
	SuccessRate      float64   `json:"success_rate"`
	LastUsed         time.Time `json:"last_used,omitzero"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// KeyValidation is a short-lived cached verdict for an API key. The key
// itself is never persisted; only its secure hash.
type KeyValidation struct {
	KeyHash     string    `json:"key_hash"`
	IsValid     bool      `json:"is_valid"`
	ModelCount  int       `json:"model_count"`
	ErrorCode   string    `json:"error_code,omitempty"`
	ValidatedAt time.Time `json:"validated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}
