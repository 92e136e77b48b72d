package mcp

import (
	"context"

	"github.com/custodia-labs/drawsync/internal/core/domain"
)

// mockDrawService is a mock implementation of driving.DrawService.
type mockDrawService struct {
	draws []domain.DrawRecord
	err   error
}

func (m *mockDrawService) Latest(_ context.Context) (*domain.DrawRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.draws) == 0 {
		return nil, domain.ErrNotFound
	}
	d := m.draws[len(m.draws)-1]
	return &d, nil
}

func (m *mockDrawService) Get(_ context.Context, issue string) (*domain.DrawRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if _, err := domain.ParseSequenceID(issue); err != nil {
		return nil, err
	}
	for i := range m.draws {
		if m.draws[i].IssueLabel == issue {
			d := m.draws[i]
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDrawService) Range(_ context.Context, _, _ string) ([]domain.DrawRecord, error) {
	return m.draws, m.err
}

func (m *mockDrawService) Count(_ context.Context) (int, error) {
	return len(m.draws), m.err
}

// mockSyncService is a mock implementation of driving.SyncService.
type mockSyncService struct {
	report *domain.SyncReport
	err    error
	calls  int
}

func (m *mockSyncService) Sync(_ context.Context) (*domain.SyncReport, error) {
	m.calls++
	return m.report, m.err
}

func (m *mockSyncService) Status(_ context.Context) (*domain.SyncReport, error) {
	return m.report, nil
}

func testDraw(issue string, id int64) domain.DrawRecord {
	return domain.DrawRecord{
		SequenceID:      id,
		IssueLabel:      issue,
		DrawTimestamp:   "2024-03-17",
		WeekdayLabel:    "日",
		PrimaryNumbers:  [6]int{1, 5, 12, 20, 28, 33},
		SecondaryNumber: 7,
	}
}
