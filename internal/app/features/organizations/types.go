// internal/app/features/organizations/types.go
package organizations

type createRequest struct {
	OrganizationName string `json:"organizationName" validate:"required,max=200,plaintext" label:"organizationName"`
	Email            string `json:"email" validate:"required,email" label:"email"`
	Password         string `json:"password" validate:"required,password" label:"password"`
}

type updateRequest struct {
	OrganizationName    string `json:"organizationName" validate:"required" label:"organizationName"`
	NewOrganizationName string `json:"newOrganizationName" validate:"required,max=200,plaintext" label:"newOrganizationName"`
	Email               string `json:"email" validate:"required,email" label:"email"`
	Password            string `json:"password" validate:"required,password" label:"password"`
}
