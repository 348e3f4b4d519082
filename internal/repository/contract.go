package repository

import (
	"context"

	"github.com/Cab789/capstone/internal/model"
)

// ContractRepository defines data access for research and harvard contracts.
type ContractRepository interface {
	CreateResearch(ctx context.Context, c *model.ResearchContract) (*model.ResearchContract, error)
	FindResearchByID(ctx context.Context, id string) (*model.ResearchContract, error)
	ListResearchByUser(ctx context.Context, userID string) ([]model.ResearchContract, error)
	UpdateResearch(ctx context.Context, c *model.ResearchContract) error

	CreateHarvard(ctx context.Context, c *model.HarvardContract) (*model.HarvardContract, error)
}
