package bootstrap

import (
	"context"
	"log"
	"os"

	"github.com/certibase/backend/internal/application/services"
	"github.com/certibase/backend/pkg/constants"
)

var defaultStandards = []services.StandardRequest{
	{Code: "ISO 9001:2015", Name: "Quality management systems", Description: "Requirements for a quality management system."},
	{Code: "ISO 14001:2015", Name: "Environmental management systems", Description: "Requirements with guidance for use."},
	{Code: "ISO 45001:2018", Name: "Occupational health and safety", Description: "Requirements for an OH&S management system."},
	{Code: "ISO/IEC 27001:2022", Name: "Information security management", Description: "Requirements for an information security management system."},
	{Code: "ISO 22000:2018", Name: "Food safety management systems", Description: "Requirements for any organization in the food chain."},
}

var defaultTemplates = []services.DocumentTemplateRequest{
	{
		Name: "Standard Certificate",
		Kind: "certificate",
		Body: "CERTIFICATE OF REGISTRATION\n\n" +
			"Certificate No: {{certificate_number}}\n\n" +
			"This is to certify that\n\n{{UPPER(client_name)}}\n" +
			"{{client_address}}, {{client_city}}, {{client_country}}\n\n" +
			"operates a management system which complies with the requirements of\n\n" +
			"{{standard_code}} {{standard_name}}\n\n" +
			"Scope: {{scope}}\n" +
			"Issue date: {{issue_date}}\nExpiry date: {{expiry_date}}\n" +
			"Accreditation: {{accreditation_body}}\n",
	},
	{
		Name: "Certification Proposal",
		Kind: "proposal",
		Body: "PROPOSAL {{number}}\n\nPrepared for {{client_name}} ({{client_code}})\n\n" +
			"Total amount: {{total_amount}}\nValid until: {{valid_until}}\n",
	},
	{
		Name: "Certification Services Agreement",
		Kind: "contract",
		Body: "AGREEMENT {{number}}\n\nBetween the certification body and {{client_name}}, " +
			"{{client_address}}, {{client_city}}, {{client_country}}.\n\n" +
			"Term: {{start_date}} to {{end_date}}\nSigned: {{signed_date}}\n" +
			"Total contract value: {{total_value}}\n",
	},
}

// InitializeSystemData seeds the admin account, the ISO standard catalogue
// and the default document templates. Each block only runs against an
// empty table, so existing installations are left alone.
func InitializeSystemData(svcMgr *services.ServiceManager) error {
	ctx := context.Background()

	users, err := svcMgr.Auth.GetUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		email := os.Getenv("ADMIN_EMAIL")
		if email == "" {
			email = "admin@certibase.local"
		}
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			password = "ChangeMe123!"
			log.Println("⚠️  ADMIN_PASSWORD not set, using the default. Change it immediately.")
		}

		if _, err := svcMgr.Auth.CreateUser(ctx, services.CreateUserRequest{
			Name:     "Administrator",
			Email:    email,
			Password: password,
			Role:     constants.RoleAdmin,
		}); err != nil {
			return err
		}
		log.Printf("👤 Admin account created (%s)", email)
	}

	standards, err := svcMgr.Standards.ListStandards(ctx)
	if err != nil {
		return err
	}
	if len(standards) == 0 {
		for _, req := range defaultStandards {
			if _, err := svcMgr.Standards.CreateStandard(ctx, req); err != nil {
				return err
			}
		}
		log.Printf("📋 Seeded %d ISO standards", len(defaultStandards))
	}

	templates, err := svcMgr.Templates.ListTemplates(ctx, "")
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		for _, req := range defaultTemplates {
			if _, err := svcMgr.Templates.CreateTemplate(ctx, req); err != nil {
				return err
			}
		}
		log.Printf("📄 Seeded %d document templates", len(defaultTemplates))
	}

	return nil
}
