package service

import (
	"context"
	"database/sql"

	"github.com/expertpanel/draw-service/internal/domain"
	"github.com/expertpanel/draw-service/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type TransactorMock struct {
	mock.Mock
}

func (m *TransactorMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	var tx *sqlx.Tx

	args := m.Called(ctx, opts)
	if args.Get(0) != nil {
		tx = args.Get(0).(*sqlx.Tx)
	}

	return tx, args.Error(1)
}

type RuleRepositoryMock struct {
	mock.Mock
}

var _ repository.RuleRepository = (*RuleRepositoryMock)(nil)

func (m *RuleRepositoryMock) GetByID(ctx context.Context, ext sqlx.ExtContext, ruleID int64) (*domain.Rule, error) {
	args := m.Called(ctx, ext, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Rule), args.Error(1)
}

type ExpertDirectoryRepositoryMock struct {
	mock.Mock
}

var _ repository.ExpertDirectoryRepository = (*ExpertDirectoryRepositoryMock)(nil)

func (m *ExpertDirectoryRepositoryMock) FindCandidates(ctx context.Context, ext sqlx.ExtContext, q repository.CandidateQuery) ([]domain.Expert, error) {
	args := m.Called(ctx, ext, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Expert), args.Error(1)
}

type ReferenceRepositoryMock struct {
	mock.Mock
}

var _ repository.ReferenceRepository = (*ReferenceRepositoryMock)(nil)

func (m *ReferenceRepositoryMock) ExpandSpecialtyLeaves(ctx context.Context, ext sqlx.ExtContext, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ext, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]int64), args.Error(1)
}

func (m *ReferenceRepositoryMock) ExpandTitleLeaves(ctx context.Context, ext sqlx.ExtContext, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ext, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]int64), args.Error(1)
}

func (m *ReferenceRepositoryMock) ExpandRegionLeaves(ctx context.Context, ext sqlx.ExtContext, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ext, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]int64), args.Error(1)
}

func (m *ReferenceRepositoryMock) ResolveOrganizationIDs(ctx context.Context, ext sqlx.ExtContext, names []string) (map[string]int64, error) {
	args := m.Called(ctx, ext, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]int64), args.Error(1)
}

type DrawCommandRepositoryMock struct {
	mock.Mock
}

var _ repository.DrawCommandRepository = (*DrawCommandRepositoryMock)(nil)

func (m *DrawCommandRepositoryMock) CreateDraw(ctx context.Context, tx *sqlx.Tx, draw *domain.Draw) error {
	args := m.Called(ctx, tx, draw)
	return args.Error(0)
}

func (m *DrawCommandRepositoryMock) UpdateDraw(ctx context.Context, tx *sqlx.Tx, draw *domain.Draw) error {
	args := m.Called(ctx, tx, draw)
	return args.Error(0)
}

func (m *DrawCommandRepositoryMock) DeleteDraws(ctx context.Context, tx *sqlx.Tx, drawIDs []int64) (int64, error) {
	args := m.Called(ctx, tx, drawIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DrawCommandRepositoryMock) GetDrawByIDWithLock(ctx context.Context, tx *sqlx.Tx, drawID int64) (*domain.Draw, error) {
	args := m.Called(ctx, tx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Draw), args.Error(1)
}

func (m *DrawCommandRepositoryMock) UpdateDrawStatus(ctx context.Context, tx *sqlx.Tx, drawID int64, status domain.DrawStatus) error {
	args := m.Called(ctx, tx, drawID, status)
	return args.Error(0)
}

func (m *DrawCommandRepositoryMock) MarkExecuted(ctx context.Context, tx *sqlx.Tx, drawID int64, method string, eligibleCount, totalCount int) error {
	args := m.Called(ctx, tx, drawID, method, eligibleCount, totalCount)
	return args.Error(0)
}

func (m *DrawCommandRepositoryMock) InsertResults(ctx context.Context, tx *sqlx.Tx, results []domain.DrawResult) error {
	args := m.Called(ctx, tx, results)
	return args.Error(0)
}

func (m *DrawCommandRepositoryMock) DeleteResults(ctx context.Context, tx *sqlx.Tx, drawID int64) (int64, error) {
	args := m.Called(ctx, tx, drawID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DrawCommandRepositoryMock) DeleteResult(ctx context.Context, tx *sqlx.Tx, resultID int64) error {
	args := m.Called(ctx, tx, resultID)
	return args.Error(0)
}

func (m *DrawCommandRepositoryMock) UpdateContactStatus(ctx context.Context, tx *sqlx.Tx, resultID int64, status domain.ContactStatus) error {
	args := m.Called(ctx, tx, resultID, status)
	return args.Error(0)
}

func (m *DrawCommandRepositoryMock) ResetContactStatuses(ctx context.Context, tx *sqlx.Tx, drawID int64) error {
	args := m.Called(ctx, tx, drawID)
	return args.Error(0)
}

func (m *DrawCommandRepositoryMock) PromoteBackup(ctx context.Context, tx *sqlx.Tx, resultID int64, ordinal int) error {
	args := m.Called(ctx, tx, resultID, ordinal)
	return args.Error(0)
}

type DrawQueryRepositoryMock struct {
	mock.Mock
}

var _ repository.DrawQueryRepository = (*DrawQueryRepositoryMock)(nil)

func (m *DrawQueryRepositoryMock) GetDrawByID(ctx context.Context, ext sqlx.ExtContext, drawID int64) (*domain.Draw, error) {
	args := m.Called(ctx, ext, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Draw), args.Error(1)
}

func (m *DrawQueryRepositoryMock) ListDraws(ctx context.Context, params domain.PageParams) ([]domain.Draw, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}

	return args.Get(0).([]domain.Draw), args.Int(1), args.Error(2)
}

func (m *DrawQueryRepositoryMock) GetResultByID(ctx context.Context, ext sqlx.ExtContext, drawID, resultID int64) (*domain.DrawResult, error) {
	args := m.Called(ctx, ext, drawID, resultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DrawResult), args.Error(1)
}

func (m *DrawQueryRepositoryMock) ListResults(ctx context.Context, ext sqlx.ExtContext, drawID int64) ([]domain.DrawResult, error) {
	args := m.Called(ctx, ext, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.DrawResult), args.Error(1)
}

func (m *DrawQueryRepositoryMock) ListResultsPage(ctx context.Context, drawID int64, params domain.PageParams) ([]domain.DrawResult, int, error) {
	args := m.Called(ctx, drawID, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}

	return args.Get(0).([]domain.DrawResult), args.Int(1), args.Error(2)
}

func (m *DrawQueryRepositoryMock) FirstBackup(ctx context.Context, tx *sqlx.Tx, drawID int64) (*domain.DrawResult, error) {
	args := m.Called(ctx, tx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DrawResult), args.Error(1)
}

func (m *DrawQueryRepositoryMock) CountResults(ctx context.Context, ext sqlx.ExtContext, drawID int64) (int, error) {
	args := m.Called(ctx, ext, drawID)
	return args.Int(0), args.Error(1)
}

func (m *DrawQueryRepositoryMock) CountAcceptedPrimary(ctx context.Context, ext sqlx.ExtContext, drawID int64) (int, error) {
	args := m.Called(ctx, ext, drawID)
	return args.Int(0), args.Error(1)
}

func (m *DrawQueryRepositoryMock) HasConfirmedResults(ctx context.Context, ext sqlx.ExtContext, drawID int64) (bool, error) {
	args := m.Called(ctx, ext, drawID)
	return args.Bool(0), args.Error(1)
}

type ResolverMock struct {
	mock.Mock
}

var _ Resolver = (*ResolverMock)(nil)

func (m *ResolverMock) Resolve(ctx context.Context, ext sqlx.ExtContext, rule *domain.Rule, draw *domain.Draw) ([]domain.Expert, error) {
	args := m.Called(ctx, ext, rule, draw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Expert), args.Error(1)
}

type PickerMock struct {
	mock.Mock
}

var _ Picker = (*PickerMock)(nil)

func (m *PickerMock) Pick(candidates []domain.Expert, totalNeeded int, method string) ([]domain.Expert, error) {
	args := m.Called(candidates, totalNeeded, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Expert), args.Error(1)
}
