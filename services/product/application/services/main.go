package services

import (
	"context"
	"io"

	"github.com/ghuser/showcase/pkg/app"
	"github.com/ghuser/showcase/pkg/storage"
	"github.com/ghuser/showcase/services/product/infrastructure/persistence/postgres"
)

// ImageStore is the object storage the submission flow uploads into.
// *storage.ObjectStore implements it.
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType, ext string) (storage.Object, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(raw string) (string, bool)
}

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Query    *QueryService
	Mutation *MutationService
}

// New wires all product application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewProductRepository(a.Db, a.EventBus)

	var images ImageStore
	if a.Storage != nil {
		images = a.Storage
	}

	return &Services{
		Query: NewQueryService(repo, a.Views, a.Products, a.Logger),
		Mutation: NewMutationService(MutationDeps{
			Repo:     repo,
			Images:   images,
			Views:    a.Views,
			Products: a.Products,
			Metrics:  a.Metrics,
			Logger:   a.Logger,
		}),
	}
}
