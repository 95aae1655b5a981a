package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"github.com/certibase/backend/pkg/auth"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/errors"
)

// reportableTables is the allowlist for raw report queries. Credentials,
// sessions and file paths never leave the server through reports.
var reportableTables = map[string]bool{
	constants.TableClient:               true,
	constants.TableClientContact:        true,
	constants.TableISOStandard:          true,
	constants.TableAudit:                true,
	constants.TableAuditFinding:         true,
	constants.TableChecklistTemplate:    true,
	constants.TableChecklistItem:        true,
	constants.TableChecklistResponse:    true,
	constants.TableCertification:        true,
	constants.TableCertificationHistory: true,
	constants.TableLead:                 true,
	constants.TableOpportunity:          true,
	constants.TableProposal:             true,
	constants.TableProposalItem:         true,
	constants.TableContract:             true,
	constants.TableContractFee:          true,
	constants.TableEmployee:             true,
	constants.TablePayroll:              true,
	constants.TablePayrollItem:          true,
	constants.TableTask:                 true,
	constants.TablePipeline:             true,
	constants.TablePipelineTransition:   true,
	constants.TablePipelineMilestone:    true,
}

// ReportService runs admin-supplied SELECT queries for ad-hoc reporting.
// Every query is parsed and walked before touching the database: one
// statement, SELECT only, allowlisted tables only.
type ReportService struct {
	db     *sql.DB
	parser *parser.Parser
}

func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{
		db:     db,
		parser: parser.New(),
	}
}

// ReportResult carries the column order and rows of one query.
type ReportResult struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
	Query   string                   `json:"query"` // restored normalized form
}

// RunQuery validates and executes a raw SELECT for an admin user.
func (s *ReportService) RunQuery(ctx context.Context, user *auth.UserSession, query string) (*ReportResult, error) {
	if user == nil || !constants.IsAdmin(user.Role) {
		return nil, errors.NewUnauthorizedError("Raw report queries require the admin role")
	}

	normalized, err := s.validate(query)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("report query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &ReportResult{Columns: columns, Query: normalized}
	raw := make([]sql.RawBytes, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if len(result.Rows) >= constants.MaxListLimit {
			break
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if raw[i] == nil {
				row[col] = nil
			} else {
				row[col] = string(raw[i])
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// validate parses the query and returns its restored normalized form.
func (s *ReportService) validate(query string) (string, error) {
	stmtNodes, _, err := s.parser.Parse(query, "", "")
	if err != nil {
		return "", errors.NewValidationError("query", fmt.Sprintf("SQL parse error: %v", err))
	}
	if len(stmtNodes) != 1 {
		return "", errors.NewValidationError("query", "Only a single SQL statement is allowed")
	}

	stmt, ok := stmtNodes[0].(*ast.SelectStmt)
	if !ok {
		return "", errors.NewValidationError("query", "Only SELECT statements are allowed in reports")
	}

	visitor := &tableAllowlistVisitor{}
	stmt.Accept(visitor)
	if visitor.err != nil {
		return "", visitor.err
	}

	var sb strings.Builder
	restoreCtx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if err := stmt.Restore(restoreCtx); err != nil {
		return "", fmt.Errorf("SQL restore error: %w", err)
	}
	return sb.String(), nil
}

// tableAllowlistVisitor rejects any table reference outside the allowlist,
// including those inside subqueries and joins.
type tableAllowlistVisitor struct {
	err error
}

func (v *tableAllowlistVisitor) Enter(in ast.Node) (ast.Node, bool) {
	if v.err != nil {
		return in, true
	}
	if t, ok := in.(*ast.TableName); ok {
		name := t.Name.L
		if name != "" && !reportableTables[name] {
			v.err = errors.NewValidationError("query", fmt.Sprintf("Table '%s' is not available for reporting", name))
			return in, true
		}
	}
	return in, false
}

func (v *tableAllowlistVisitor) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}
