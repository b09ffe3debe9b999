package repository

import (
	"context"

	"github.com/sakif/piston-go/internal/model"
)

type ListOptions struct {
	Limit    int
	Offset   int
	Language string // optional filter
}

type ExecutionRepository interface {
	Create(ctx context.Context, exec *model.Execution) error
	GetByID(ctx context.Context, id string) (*model.Execution, error)
	List(ctx context.Context, opts ListOptions) ([]model.Execution, error)
	Delete(ctx context.Context, id string) error
}
