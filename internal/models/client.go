package models

import "time"

// Client statuses and classification values. All of these are open string
// enums in the database; the constants cover the values the UI offers.
const (
	ClientStatusActive    = "active"
	ClientStatusInactive  = "inactive"
	ClientStatusSuspended = "suspended"
)

var (
	ClientLanguages      = []string{"NL", "FR", "EN"}
	ClientStatuses       = []string{ClientStatusActive, ClientStatusInactive, ClientStatusSuspended}
	ClientRiskProfiles   = []string{"low", "normal", "high"}
	ClientTypes          = []string{"company", "person", "non-profit", "other"}
	ClientBillingMethods = []string{"fixed", "hourly", "subscription"}
)

// Client represents a billable legal or natural entity under management.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Required business fields
	Name          string `gorm:"size:255;not null;index" json:"name"`
	LegalForm     string `gorm:"size:50;not null" json:"legal_form"`
	VATNumber     string `gorm:"size:20;not null;index" json:"vat_number"`
	FiscalYearEnd string `gorm:"size:10;not null" json:"fiscal_year_end"` // YYYY-MM-DD
	DirectorName  string `gorm:"size:255;not null" json:"director_name"`
	DirectorEmail string `gorm:"size:255;not null;index" json:"director_email"`

	// Classification
	Language      string `gorm:"size:2;default:NL" json:"language"`
	Status        string `gorm:"size:50;default:active;index" json:"status"`
	RiskProfile   string `gorm:"size:20;default:normal" json:"risk_profile"`
	ClientType    string `gorm:"size:20;default:company" json:"client_type"`
	BillingMethod string `gorm:"size:20;default:fixed" json:"billing_method"`

	// Optional administrative/compliance attributes. Stored and echoed back as
	// entered; nothing in the application interprets them.
	DirectorPhone    string         `gorm:"size:50" json:"director_phone,omitempty"`
	NACECode         string         `gorm:"size:20" json:"nace_code,omitempty"`
	Sector           string         `gorm:"size:100" json:"sector,omitempty"`
	StartDate        string         `gorm:"size:10" json:"start_date,omitempty"`
	EndDate          string         `gorm:"size:10" json:"end_date,omitempty"`
	BankAccount      string         `gorm:"size:50" json:"bank_account,omitempty"`
	TaxRegime        string         `gorm:"size:50" json:"tax_regime,omitempty"`
	AccountingType   string         `gorm:"size:50" json:"accounting_type,omitempty"`
	DocumentLanguage string         `gorm:"size:10" json:"document_language,omitempty"`
	Website          string         `gorm:"size:255" json:"website,omitempty"`
	Notes            string         `gorm:"type:text" json:"notes,omitempty"`
	BillingAddress   map[string]any `gorm:"serializer:json" json:"billing_address,omitempty"`
	Tags             []string       `gorm:"serializer:json" json:"tags,omitempty"`
	Labels           []string       `gorm:"serializer:json" json:"labels,omitempty"`
	CustomFields     map[string]any `gorm:"serializer:json" json:"custom_fields,omitempty"`
	ComplianceStatus map[string]any `gorm:"serializer:json" json:"compliance_status,omitempty"`
	UBOEntries       []map[string]any `gorm:"serializer:json" json:"ubo_entries,omitempty"`
	Mandates         []map[string]any `gorm:"serializer:json" json:"mandates,omitempty"`

	// Relations
	Tasks []Task `gorm:"foreignKey:ClientID" json:"tasks,omitempty"`
}

// IsActive reports whether the client counts toward the dashboard's
// active-client tile.
func (c *Client) IsActive() bool { return c.Status == ClientStatusActive }

// ClientRef is the joined projection embedded in task list and detail views.
type ClientRef struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	VATNumber string `json:"vat_number"`
}

// Ref returns the projection of this client used by task views.
func (c *Client) Ref() ClientRef {
	return ClientRef{ID: c.ID, Name: c.Name, VATNumber: c.VATNumber}
}
