// Drops every application table. Development helper, never run this
// against a production database.
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"github.com/certibase/backend/pkg/constants"
)

var tables = []string{
	constants.TableScheduledJob,
	constants.TablePipelineMilestone,
	constants.TablePipelineTransition,
	constants.TablePipeline,
	constants.TableDocument,
	constants.TableTask,
	constants.TablePayrollItem,
	constants.TablePayroll,
	constants.TableEmployee,
	constants.TableContractFee,
	constants.TableContract,
	constants.TableProposalItem,
	constants.TableProposal,
	constants.TableOpportunity,
	constants.TableLead,
	constants.TableDocumentTemplate,
	constants.TableCertificationHistory,
	constants.TableCertification,
	constants.TableChecklistResponse,
	constants.TableChecklistItem,
	constants.TableChecklistTemplate,
	constants.TableAuditFinding,
	constants.TableAudit,
	constants.TableISOStandard,
	constants.TableClientContact,
	constants.TableClient,
	constants.TableSession,
	constants.TableUser,
}

func main() {
	godotenv.Load()

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	database := os.Getenv("DB_DATABASE")

	if port == "" {
		port = "3306"
	}
	if database == "" {
		database = "certibase"
	}

	if len(os.Args) < 2 || os.Args[1] != "--yes" {
		log.Fatalf("This drops all %d tables in %q. Re-run with --yes to confirm.", len(tables), database)
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", user, password, host, port, database)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	for _, table := range tables {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			log.Fatalf("Failed to drop %s: %v", table, err)
		}
		log.Printf("🗑  Dropped %s", table)
	}

	log.Printf("✅ Wiped %d tables", len(tables))
}
