package dto

// CreateGrantRequest delegates counting responsibility at one taxonomy
// level. Ancestor codes/names above the grant level are required; levels
// below it are ignored.
type CreateGrantRequest struct {
	UserID       int64  `json:"user_id" validate:"required,gt=0"`
	StoreCode    string `json:"store_code" validate:"required"`
	Type         string `json:"type" validate:"required"`
	DivisionCode string `json:"division_code" validate:"required"`
	DivisionName string `json:"division_name"`
	CategoryCode string `json:"category_code"`
	CategoryName string `json:"category_name"`
	GroupCode    string `json:"group_code"`
	GroupName    string `json:"group_name"`
	SubgroupCode string `json:"subgroup_code"`
	SubgroupName string `json:"subgroup_name"`
}

// GrantQuery carries grant list filters from the HTTP layer.
type GrantQuery struct {
	UserID          *int64
	StoreCode       string
	Type            string
	IncludeInactive bool
	Page            int
	PageSize        int
}
