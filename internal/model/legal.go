package model

import "time"

const (
	LegalTermsOfService = "terms_of_service"
	LegalPrivacyPolicy  = "privacy_policy"
)

type LegalSection struct {
	Heading string `json:"heading" yaml:"heading"`
	Text    string `json:"text" yaml:"text"`
}

// swagger:model LegalDocument
type LegalDocument struct {
	ID          string         `gorm:"primaryKey;type:varchar(64)" json:"id" yaml:"id"`
	Title       string         `gorm:"size:255" json:"title" yaml:"title"`
	Sections    []LegalSection `gorm:"serializer:json;type:json" json:"sections" yaml:"sections"`
	LastUpdated time.Time      `json:"lastUpdated" yaml:"-"`
}

func (LegalDocument) TableName() string {
	return "legal_content"
}
