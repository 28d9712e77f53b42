package domain

import "time"

// EntityType scopes a field mapping to one canonical entity.
type EntityType string

const (
	EntityJob         EntityType = "job"
	EntityCandidate   EntityType = "candidate"
	EntityApplication EntityType = "application"
)

// FieldType declares the target primitive a mapped value is cast to.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
)

// RuleType tags one transformation operation.
type RuleType string

const (
	RuleReplace       RuleType = "replace"
	RuleRegex         RuleType = "regex"
	RuleUppercase     RuleType = "uppercase"
	RuleLowercase     RuleType = "lowercase"
	RuleTrim          RuleType = "trim"
	RuleDateFormat    RuleType = "date_format"
	RuleMapValues     RuleType = "map_values"
	RuleSplit         RuleType = "split"
	RuleJoin          RuleType = "join"
	RuleExtractNumber RuleType = "extract_number"
	RuleBoolean       RuleType = "boolean"
)

// TransformRule is one tagged operation in a mapping's rule pipeline.
// Unknown rule types pass values through unchanged; a mapping with a typo in a
// rule tag degrades to identity instead of poisoning the whole sync.
type TransformRule struct {
	Type         RuleType          `json:"type"`
	Search       string            `json:"search,omitempty"`
	Replace      string            `json:"replace,omitempty"`
	Pattern      string            `json:"pattern,omitempty"`
	SourceFormat string            `json:"source_format,omitempty"`
	TargetFormat string            `json:"target_format,omitempty"`
	Mapping      map[string]string `json:"mapping,omitempty"`
	Separator    string            `json:"separator,omitempty"`
}

// FieldMapping translates one external field path into one canonical field for
// a connection and entity type. (connection, entity type, internal field) is
// unique.
type FieldMapping struct {
	ID           string     `gorm:"type:text;primaryKey" json:"id"`
	ConnectionID string     `gorm:"type:text;not null;index:idx_mappings_unique,unique" json:"connection_id"`
	EntityType   EntityType `gorm:"type:text;not null;index:idx_mappings_unique,unique" json:"entity_type"`

	// InternalField is the canonical field name; ExternalField is a
	// dot/bracket addressable path into the provider payload.
	InternalField string    `gorm:"type:text;not null;index:idx_mappings_unique,unique" json:"internal_field"`
	ExternalField string    `gorm:"type:text;not null" json:"external_field"`
	FieldType     FieldType `gorm:"type:text;default:string" json:"field_type"`

	TransformationRules RuleList `gorm:"type:text" json:"transformation_rules"`
	IsRequired          bool     `gorm:"default:false" json:"is_required"`
	DefaultValue        string   `gorm:"type:text" json:"default_value,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for FieldMapping.
func (FieldMapping) TableName() string {
	return "field_mappings"
}
