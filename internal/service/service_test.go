package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jobby-api/internal/auth"
	"jobby-api/internal/repository"
	"jobby-api/internal/repository/sqlite"
)

const testSecret = "test-secret"

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func initRepo(t *testing.T, repo interface{ Init(context.Context) error }) {
	t.Helper()
	require.NoError(t, repo.Init(context.Background()))
}

func newTestUserService(t *testing.T) (UserService, repository.UserRepository, *auth.Issuer) {
	t.Helper()
	repo := sqlite.NewUserRepository(openTestDB(t))
	initRepo(t, repo)
	issuer := auth.NewIssuer(testSecret, 0)

	svc := NewUserService(repo, issuer).(*userService)
	svc.cost = bcrypt.MinCost
	return svc, repo, issuer
}

func newTestJobService(t *testing.T) JobService {
	t.Helper()
	repo := sqlite.NewJobRepository(openTestDB(t))
	initRepo(t, repo)
	return NewJobService(repo)
}

func newTestFeedbackService(t *testing.T) *feedbackService {
	t.Helper()
	repo := sqlite.NewFeedbackRepository(openTestDB(t))
	initRepo(t, repo)
	return NewFeedbackService(repo).(*feedbackService)
}
