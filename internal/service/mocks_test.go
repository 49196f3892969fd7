package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/akovacs/plantkeeper/internal/apperror"
	"github.com/akovacs/plantkeeper/internal/model"
)

// Hand-written in-memory mocks for the repository interfaces. They store
// copies (never the caller's pointers) so tests cannot interfere with the
// mock's internal state by accident.

type mockPlantRepo struct {
	plants map[string]*model.Plant
	order  []string // insertion order, stands in for ORDER BY created_at
	events []model.WateringEvent
	nextID int

	waterErr error // when set, Water fails with this error
}

func newMockPlantRepo() *mockPlantRepo {
	return &mockPlantRepo{plants: make(map[string]*model.Plant)}
}

func (m *mockPlantRepo) Create(_ context.Context, plant *model.Plant) error {
	m.nextID++
	plant.ID = fmt.Sprintf("plant-%d", m.nextID)
	now := time.Now()
	plant.CreatedAt = now
	plant.UpdatedAt = now
	stored := *plant
	m.plants[plant.ID] = &stored
	m.order = append(m.order, plant.ID)
	return nil
}

func (m *mockPlantRepo) GetByID(_ context.Context, id string) (*model.Plant, error) {
	p, ok := m.plants[id]
	if !ok {
		return nil, apperror.NotFound("plant", id)
	}
	result := *p
	return &result, nil
}

func (m *mockPlantRepo) ListByOwner(_ context.Context, owner string) ([]model.Plant, error) {
	var result []model.Plant
	for _, id := range m.order {
		if p, ok := m.plants[id]; ok && p.Owner == owner {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPlantRepo) ListAll(_ context.Context) ([]model.Plant, error) {
	var result []model.Plant
	for _, id := range m.order {
		if p, ok := m.plants[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPlantRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.plants[id]; !ok {
		return apperror.NotFound("plant", id)
	}
	delete(m.plants, id)
	return nil
}

func (m *mockPlantRepo) DeleteByOwner(_ context.Context, owner string) error {
	for id, p := range m.plants {
		if p.Owner == owner {
			delete(m.plants, id)
		}
	}
	return nil
}

func (m *mockPlantRepo) Water(_ context.Context, plantID, wateredBy string, at time.Time) error {
	if m.waterErr != nil {
		return m.waterErr
	}
	p, ok := m.plants[plantID]
	if !ok {
		return apperror.NotFound("plant", plantID)
	}
	p.LastWatered = at.Format(model.DateFormat)
	p.UpdatedAt = at
	m.events = append(m.events, model.WateringEvent{
		ID:        fmt.Sprintf("event-%d", len(m.events)+1),
		PlantID:   plantID,
		WateredBy: wateredBy,
		WateredAt: at,
	})
	return nil
}

func (m *mockPlantRepo) ListByPlant(_ context.Context, plantID string) ([]model.WateringEvent, error) {
	var result []model.WateringEvent
	// Newest first, like the sqlite implementation.
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].PlantID == plantID {
			result = append(result, m.events[i])
		}
	}
	return result, nil
}

type mockUserRepo struct {
	users  map[string]*model.User // keyed by ID
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return apperror.Conflict("username", user.Username)
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockUserRepo) ListEmails(_ context.Context) ([]string, error) {
	var emails []string
	for _, u := range m.users {
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}
	return emails, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

type mockRunsRepo struct {
	claimed map[string]bool
}

func newMockRunsRepo() *mockRunsRepo {
	return &mockRunsRepo{claimed: make(map[string]bool)}
}

func (m *mockRunsRepo) Claim(_ context.Context, date string) (bool, error) {
	if m.claimed[date] {
		return false, nil
	}
	m.claimed[date] = true
	return true, nil
}

func (m *mockRunsRepo) Release(_ context.Context, date string) error {
	delete(m.claimed, date)
	return nil
}

// fakeSender records every transmission. Setting err simulates a failing
// SMTP transport.
type fakeSender struct {
	err   error
	calls []sentMessage
}

type sentMessage struct {
	recipients []string
	subject    string
	body       string
}

func (f *fakeSender) Send(_ context.Context, recipients []string, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, sentMessage{recipients: recipients, subject: subject, body: body})
	return nil
}

// testLogger discards everything below Error so test output stays quiet.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mustParseLocal parses "2006-01-02 15:04" in local time.
func mustParseLocal(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return ts
}
