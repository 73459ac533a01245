package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SectionContent is one authored tab of draft content.
type SectionContent struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	BodyHTML string `json:"body_html"`
	Position int    `json:"position"`
}

// SectionList is the JSONB-backed collection of a draft's sections.
type SectionList []SectionContent

// Value implements driver.Valuer so drafts persist their sections as JSONB.
func (s SectionList) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal(SectionList{})
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for reading JSONB section columns.
func (s *SectionList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("scan sections: unsupported type %T", src)
	}
}

// Draft is in-progress content for one product, edited but not yet pushed to
// the live catalog. It is the recoverable state the editor works against;
// publishing renders it to HTML, updates Shopify, and removes the draft.
type Draft struct {
	ID        uuid.UUID   `db:"id"         json:"id"`
	ProductID string      `db:"product_id" json:"product_id"`
	Sections  SectionList `db:"sections"   json:"sections"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}
