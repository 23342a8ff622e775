package models

import (
	"time"

	"github.com/google/uuid"
)

// PersonInfo holds identity fields for the primary taxpayer or the spouse.
// Presence is enforced at the handler level only; the record itself carries
// whatever the client has entered so far.
type PersonInfo struct {
	Name          string `json:"name"`
	DateOfBirth   string `json:"date_of_birth"`
	TaxID         string `json:"tax_id"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	LicenseState  string `json:"license_state"`
	LicenseNumber string `json:"license_number"`
	LicenseIssue  string `json:"license_issue"`
	LicenseExpiry string `json:"license_expiry"`
	Occupation    string `json:"occupation"`
}

// Dependent is one claimed dependent. List order is insertion order and the
// id is assigned at creation time; content is not deduplicated.
type Dependent struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DateOfBirth  string `json:"date_of_birth"`
	TaxID        string `json:"tax_id"`
	Relationship string `json:"relationship"`
}

// NewDependent assigns a fresh id to a dependent record.
func NewDependent(name, dob, taxID, relationship string) Dependent {
	return Dependent{
		ID:           uuid.NewString(),
		Name:         name,
		DateOfBirth:  dob,
		TaxID:        taxID,
		Relationship: relationship,
	}
}

// BankInfo is the singleton direct-deposit block.
type BankInfo struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
}

// Empty reports whether no bank field has been filled in.
func (b BankInfo) Empty() bool {
	return b.BankName == "" && b.AccountNumber == "" && b.RoutingNumber == ""
}

// UploadedFile is a canonical normalized file record. Data is a
// self-describing data URI; the record is immutable once produced.
type UploadedFile struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// DocumentUploads holds the four singleton identity/prior-document slots plus
// the ordered list of general income documents.
type DocumentUploads struct {
	PrimaryLicense *UploadedFile  `json:"primary_license,omitempty"`
	SpouseLicense  *UploadedFile  `json:"spouse_license,omitempty"`
	PriorReturn    *UploadedFile  `json:"prior_return,omitempty"`
	PinLetter      *UploadedFile  `json:"pin_letter,omitempty"`
	IncomeDocs     []UploadedFile `json:"income_docs"`
}

// CategorizedDocument is one selected category within an income / adjustment /
// credit-deduction list. Selected is an explicit flag: a record may stay in
// the list unselected so already-uploaded files survive a deselect.
type CategorizedDocument struct {
	Category string         `json:"category"`
	Detail   string         `json:"detail"`
	Selected bool           `json:"selected"`
	Files    []UploadedFile `json:"files"`
}

// AccountRecord is the full persisted per-user snapshot, keyed by email in
// the store. One record per email; last write wins.
type AccountRecord struct {
	Email            string                `json:"email"`
	StepIndex        int                   `json:"step_index"`
	FilingJointly    bool                  `json:"filing_jointly"`
	Taxpayer         PersonInfo            `json:"taxpayer"`
	Spouse           PersonInfo            `json:"spouse"`
	Dependents       []Dependent           `json:"dependents"`
	Bank             BankInfo              `json:"bank"`
	Uploads          DocumentUploads       `json:"uploads"`
	IncomeSources    []CategorizedDocument `json:"income_sources"`
	Adjustments      []CategorizedDocument `json:"adjustments"`
	Deductions       []CategorizedDocument `json:"deductions"`
	Signature        string                `json:"signature"`
	SpouseSignature  string                `json:"spouse_signature"`
	Accepted         bool                  `json:"accepted"`
	LastSaved        time.Time             `json:"last_saved"`
}

// NewAccountRecord returns the blank snapshot created implicitly at first
// registration.
func NewAccountRecord(email string) *AccountRecord {
	return &AccountRecord{
		Email:         email,
		Dependents:    []Dependent{},
		IncomeSources: []CategorizedDocument{},
		Adjustments:   []CategorizedDocument{},
		Deductions:    []CategorizedDocument{},
		Uploads:       DocumentUploads{IncomeDocs: []UploadedFile{}},
	}
}

// CategoryList returns the categorized-document list for the given kind.
func (r *AccountRecord) CategoryList(kind string) *[]CategorizedDocument {
	switch kind {
	case KindIncome:
		return &r.IncomeSources
	case KindAdjustment:
		return &r.Adjustments
	case KindDeduction:
		return &r.Deductions
	}
	return nil
}

// SubmissionMetadata is created once at submission time and lives only for
// the session; it is never persisted into the AccountRecord.
type SubmissionMetadata struct {
	SubmittedAt time.Time `json:"submitted_at"`
	Reference   string    `json:"reference"`
}
