package di

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskeeper/internal/repo"
	"github.com/BuzzLyutic/taskeeper/pkg/respond"
)

type ctxKey struct{}

func WithRepository(ctx context.Context, r repo.Repository) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

func RepositoryFrom(ctx context.Context) (repo.Repository, bool) {
	r, ok := ctx.Value(ctxKey{}).(repo.Repository)
	return r, ok && r != nil
}

// Middleware attaches a repository over a fresh adapter to every request. A
// backend that cannot be bound fails the request with 500.
func Middleware(b Bindings, logger *zap.Logger, opts ...repo.Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			adapter, err := b.NewAdapter()
			if err != nil {
				logger.Error("failed to bind storage", zap.Error(err))
				respond.Error(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				return
			}

			tasks := repo.NewTaskRepository(adapter, logger, opts...)
			next.ServeHTTP(w, r.WithContext(WithRepository(r.Context(), tasks)))
		})
	}
}
