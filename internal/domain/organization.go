package domain

// Organization is the tenant anchor every project, board, label and
// automation rule is scoped to. Membership and billing live in other
// services; only the scoping identity is needed here.
type Organization struct {
	BaseModel
	Name string `gorm:"type:varchar(255);not null" json:"name"`
	Slug string `gorm:"type:varchar(100);not null;uniqueIndex:uq_organizations_slug" json:"slug"`
}

// TableName specifies the table name for Organization
func (Organization) TableName() string {
	return "organizations"
}
