package postgres

import (
	"context"
	"database/sql"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
)

const researchColumns = `id, user_id, name, email, institution, title, area_of_interest,
		contract_html, status, approver_id, approver_signature_date, approver_notes,
		user_signature_date`

// ContractPostgres is a PostgreSQL implementation of repository.ContractRepository.
type ContractPostgres struct {
	db *sql.DB
}

// NewContractPostgres creates a new ContractPostgres repository.
func NewContractPostgres(db *sql.DB) *ContractPostgres {
	return &ContractPostgres{db: db}
}

var _ repository.ContractRepository = (*ContractPostgres)(nil)

func scanResearch(row interface{ Scan(...any) error }) (*model.ResearchContract, error) {
	var (
		c          model.ResearchContract
		approver   sql.NullString
		signedDate sql.NullTime
	)
	if err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Email, &c.Institution, &c.Title, &c.AreaOfInterest,
		&c.ContractHTML, &c.Status, &approver, &signedDate, &c.ApproverNotes,
		&c.UserSignatureDate,
	); err != nil {
		return nil, err
	}
	if approver.Valid {
		c.ApproverID = &approver.String
	}
	if signedDate.Valid {
		c.ApproverSignatureDate = &signedDate.Time
	}
	return &c, nil
}

// CreateResearch inserts a research contract and returns the stored row.
func (r *ContractPostgres) CreateResearch(ctx context.Context, c *model.ResearchContract) (*model.ResearchContract, error) {
	const q = `
		INSERT INTO research_contracts (user_id, name, email, institution, title, area_of_interest, contract_html, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + researchColumns
	return scanResearch(r.db.QueryRowContext(ctx, q,
		c.UserID, c.Name, c.Email, c.Institution, c.Title, c.AreaOfInterest, c.ContractHTML, c.Status,
	))
}

// FindResearchByID fetches a research contract by ID.
func (r *ContractPostgres) FindResearchByID(ctx context.Context, id string) (*model.ResearchContract, error) {
	const q = `SELECT ` + researchColumns + ` FROM research_contracts WHERE id = $1`
	return scanResearch(r.db.QueryRowContext(ctx, q, id))
}

// ListResearchByUser returns a user's research contracts, newest first.
func (r *ContractPostgres) ListResearchByUser(ctx context.Context, userID string) ([]model.ResearchContract, error) {
	const q = `SELECT ` + researchColumns + ` FROM research_contracts WHERE user_id = $1 ORDER BY user_signature_date DESC, id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ResearchContract, 0)
	for rows.Next() {
		c, err := scanResearch(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// UpdateResearch persists status and approver fields.
func (r *ContractPostgres) UpdateResearch(ctx context.Context, c *model.ResearchContract) error {
	const q = `
		UPDATE research_contracts
		SET status = $2, approver_id = $3, approver_signature_date = $4, approver_notes = $5
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Status, c.ApproverID, c.ApproverSignatureDate, c.ApproverNotes)
	return err
}

// CreateHarvard inserts a harvard contract and returns the stored row.
func (r *ContractPostgres) CreateHarvard(ctx context.Context, c *model.HarvardContract) (*model.HarvardContract, error) {
	const q = `
		INSERT INTO harvard_contracts (user_id, name, title, area_of_interest, contract_html)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, title, area_of_interest, contract_html, user_signature_date
	`
	var out model.HarvardContract
	if err := r.db.QueryRowContext(ctx, q,
		c.UserID, c.Name, c.Title, c.AreaOfInterest, c.ContractHTML,
	).Scan(
		&out.ID, &out.UserID, &out.Name, &out.Title, &out.AreaOfInterest, &out.ContractHTML, &out.UserSignatureDate,
	); err != nil {
		return nil, err
	}
	return &out, nil
}
