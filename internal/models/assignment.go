package models

import (
	"strings"
	"time"
)

// AssignmentType is the taxonomy level at which a counting grant applies.
type AssignmentType string

const (
	AssignmentDivision  AssignmentType = "DIVISION"
	AssignmentCategoria AssignmentType = "CATEGORIA"
	AssignmentGrupo     AssignmentType = "GRUPO"
	AssignmentSubgrupo  AssignmentType = "SUBGRUPO"
)

// ResolutionOrder lists assignment types most specific first; the resolver
// walks it and stops at the first matching grant.
var ResolutionOrder = []AssignmentType{
	AssignmentSubgrupo,
	AssignmentGrupo,
	AssignmentCategoria,
	AssignmentDivision,
}

// ParseAssignmentType maps a raw type string onto the closed enumeration.
func ParseAssignmentType(raw string) (AssignmentType, bool) {
	switch AssignmentType(strings.ToUpper(strings.TrimSpace(raw))) {
	case AssignmentDivision, AssignmentCategoria, AssignmentGrupo, AssignmentSubgrupo:
		return AssignmentType(strings.ToUpper(strings.TrimSpace(raw))), true
	}
	return "", false
}

// Rank returns the specificity of the level; higher is more specific.
func (t AssignmentType) Rank() int {
	switch t {
	case AssignmentSubgrupo:
		return 4
	case AssignmentGrupo:
		return 3
	case AssignmentCategoria:
		return 2
	case AssignmentDivision:
		return 1
	}
	return 0
}

// Taxonomy is the full classification path of a product code.
type Taxonomy struct {
	DivisionCode string `json:"division_code"`
	DivisionName string `json:"division_name"`
	CategoryCode string `json:"category_code"`
	CategoryName string `json:"category_name"`
	GroupCode    string `json:"group_code"`
	GroupName    string `json:"group_name"`
	SubgroupCode string `json:"subgroup_code"`
	SubgroupName string `json:"subgroup_name"`
}

// CodeAt returns the taxonomy code at the requested level.
func (t Taxonomy) CodeAt(level AssignmentType) string {
	switch level {
	case AssignmentDivision:
		return t.DivisionCode
	case AssignmentCategoria:
		return t.CategoryCode
	case AssignmentGrupo:
		return t.GroupCode
	case AssignmentSubgrupo:
		return t.SubgroupCode
	}
	return ""
}

// Grant delegates counting responsibility for a taxonomy scope to a user
// in a store. A grant always records its ancestor levels; deactivation is
// soft so history stays reconstructible.
type Grant struct {
	ID            int64          `db:"id" json:"id"`
	UserID        int64          `db:"user_id" json:"user_id"`
	StoreCode     string         `db:"store_code" json:"store_code"`
	Type          AssignmentType `db:"type" json:"type"`
	DivisionCode  string         `db:"division_code" json:"division_code"`
	DivisionName  string         `db:"division_name" json:"division_name"`
	CategoryCode  *string        `db:"category_code" json:"category_code,omitempty"`
	CategoryName  *string        `db:"category_name" json:"category_name,omitempty"`
	GroupCode     *string        `db:"group_code" json:"group_code,omitempty"`
	GroupName     *string        `db:"group_name" json:"group_name,omitempty"`
	SubgroupCode  *string        `db:"subgroup_code" json:"subgroup_code,omitempty"`
	SubgroupName  *string        `db:"subgroup_name" json:"subgroup_name,omitempty"`
	Active        bool           `db:"active" json:"active"`
	GrantedBy     int64          `db:"granted_by" json:"granted_by"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	DeactivatedAt *time.Time     `db:"deactivated_at" json:"deactivated_at,omitempty"`
}

// ScopeCode returns the grant's code at its own level.
func (g Grant) ScopeCode() string {
	switch g.Type {
	case AssignmentDivision:
		return g.DivisionCode
	case AssignmentCategoria:
		return deref(g.CategoryCode)
	case AssignmentGrupo:
		return deref(g.GroupCode)
	case AssignmentSubgrupo:
		return deref(g.SubgroupCode)
	}
	return ""
}

// ScopeName returns the grant's display name at its own level.
func (g Grant) ScopeName() string {
	switch g.Type {
	case AssignmentDivision:
		return g.DivisionName
	case AssignmentCategoria:
		return deref(g.CategoryName)
	case AssignmentGrupo:
		return deref(g.GroupName)
	case AssignmentSubgrupo:
		return deref(g.SubgroupName)
	}
	return ""
}

// Matches reports whether the grant's scope covers the taxonomy path.
func (g Grant) Matches(tax Taxonomy) bool {
	scope := g.ScopeCode()
	return scope != "" && scope == tax.CodeAt(g.Type)
}

// GrantFilter constrains grant listing queries.
type GrantFilter struct {
	UserID          *int64
	StoreCode       string
	Type            AssignmentType
	IncludeInactive bool
	Page            int
	PageSize        int
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
