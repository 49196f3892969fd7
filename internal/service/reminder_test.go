package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akovacs/plantkeeper/internal/model"
)

type reminderFixture struct {
	svc    *ReminderService
	plants *mockPlantRepo
	users  *mockUserRepo
	runs   *mockRunsRepo
	sender *fakeSender
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()
	f := &reminderFixture{
		plants: newMockPlantRepo(),
		users:  newMockUserRepo(),
		runs:   newMockRunsRepo(),
		sender: &fakeSender{},
	}
	f.svc = NewReminderService(f.plants, f.users, f.runs, f.sender, testLogger())
	return f
}

func (f *reminderFixture) addPlant(t *testing.T, owner, name string, interval int, lastWatered string) *model.Plant {
	t.Helper()
	plant := &model.Plant{Owner: owner, Name: name, IntervalDays: interval}
	if err := f.plants.Create(context.Background(), plant); err != nil {
		t.Fatalf("creating fixture plant: %v", err)
	}
	f.plants.plants[plant.ID].LastWatered = lastWatered
	return plant
}

func (f *reminderFixture) addUser(t *testing.T, username, email string) {
	t.Helper()
	if err := f.users.Create(context.Background(), &model.User{
		Username: username, PasswordHash: "x", Email: email,
	}); err != nil {
		t.Fatalf("creating fixture user: %v", err)
	}
}

// =========================================================================
// DueUnwatered TESTS
// =========================================================================

func TestDueUnwatered_Filtering(t *testing.T) {
	f := newReminderFixture(t)
	now := mustParseLocal(t, "2024-01-04 19:00")

	f.addPlant(t, "anna", "Never watered", 3, "")
	f.addPlant(t, "anna", "Overdue", 3, "2024-01-01")       // due exactly today
	f.addPlant(t, "ben", "Fresh", 3, "2024-01-03")          // not due
	f.addPlant(t, "ben", "Watered today", 1, "2024-01-04")  // due but handled
	f.addPlant(t, "cleo", "Corrupt record", 3, "not-a-date") // fail open

	due, err := f.svc.DueUnwatered(context.Background(), now)
	if err != nil {
		t.Fatalf("DueUnwatered() error = %v", err)
	}

	names := make([]string, 0, len(due))
	for _, p := range due {
		names = append(names, p.Name)
	}
	want := []string{"Never watered", "Overdue", "Corrupt record"}
	if len(names) != len(want) {
		t.Fatalf("DueUnwatered() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("DueUnwatered()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDueUnwatered_Idempotent(t *testing.T) {
	f := newReminderFixture(t)
	now := mustParseLocal(t, "2024-01-04 19:00")
	f.addPlant(t, "anna", "Basil", 3, "")
	f.addPlant(t, "ben", "Mint", 2, "2024-01-01")

	first, err := f.svc.DueUnwatered(context.Background(), now)
	if err != nil {
		t.Fatalf("DueUnwatered() error = %v", err)
	}
	second, err := f.svc.DueUnwatered(context.Background(), now)
	if err != nil {
		t.Fatalf("DueUnwatered() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("repeated evaluation differs: %d vs %d plants", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("repeated evaluation differs at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

// =========================================================================
// Run TESTS — gate behaviour
// =========================================================================

func TestRun_BeforeCutoff(t *testing.T) {
	f := newReminderFixture(t)
	f.addPlant(t, "anna", "Basil", 3, "")
	f.addUser(t, "ben", "ben@example.com")

	result, err := f.svc.Run(context.Background(), mustParseLocal(t, "2024-01-04 17:59"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Outcome != OutcomeBeforeCutoff {
		t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeBeforeCutoff)
	}
	if len(f.sender.calls) != 0 {
		t.Error("Run() before cutoff attempted a transmission")
	}
}

func TestRun_AtCutoffExactly(t *testing.T) {
	f := newReminderFixture(t)
	f.addPlant(t, "anna", "Basil", 3, "")
	f.addUser(t, "ben", "ben@example.com")

	result, err := f.svc.Run(context.Background(), mustParseLocal(t, "2024-01-04 18:00"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Outcome != OutcomeSent {
		t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeSent)
	}
}

func TestRun_NothingDue(t *testing.T) {
	f := newReminderFixture(t)
	f.addPlant(t, "anna", "Fresh", 3, "2024-01-03")
	f.addUser(t, "ben", "ben@example.com")

	result, err := f.svc.Run(context.Background(), mustParseLocal(t, "2024-01-04 19:00"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Outcome != OutcomeNothingDue {
		t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeNothingDue)
	}
	if len(f.sender.calls) != 0 {
		t.Error("Run() with empty due set attempted a transmission")
	}
	if f.runs.claimed["2024-01-04"] {
		t.Error("Run() with nothing due consumed the day's claim")
	}
}

func TestRun_NoRecipients(t *testing.T) {
	f := newReminderFixture(t)
	f.addPlant(t, "anna", "Basil", 3, "")
	f.addUser(t, "anna", "") // registered, but no email

	result, err := f.svc.Run(context.Background(), mustParseLocal(t, "2024-01-04 19:00"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Outcome != OutcomeNoRecipients {
		t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeNoRecipients)
	}
	if len(f.sender.calls) != 0 {
		t.Error("Run() with no recipients attempted a transmission")
	}
}

// =========================================================================
// Run TESTS — dispatch behaviour
// =========================================================================

func TestRun_BroadcastsToAllEmailsAndListsAllOwners(t *testing.T) {
	// User A owns the plant but has no email; user B has an email and no
	// plants. B still gets the message, and the body still names A.
	f := newReminderFixture(t)
	f.addUser(t, "anna", "")
	f.addUser(t, "ben", "ben@example.com")
	f.addPlant(t, "anna", "Basil", 3, "")

	result, err := f.svc.Run(context.Background(), mustParseLocal(t, "2024-01-04 19:00"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Outcome != OutcomeSent {
		t.Fatalf("Outcome = %q, want %q", result.Outcome, OutcomeSent)
	}
	if len(f.sender.calls) != 1 {
		t.Fatalf("sender called %d times, want exactly 1", len(f.sender.calls))
	}

	msg := f.sender.calls[0]
	if len(msg.recipients) != 1 || msg.recipients[0] != "ben@example.com" {
		t.Errorf("recipients = %v, want [ben@example.com]", msg.recipients)
	}
	if !strings.Contains(msg.body, "- Basil (owner: anna)") {
		t.Errorf("body missing plant line:\n%s", msg.body)
	}
}

func TestRun_BodyFormat(t *testing.T) {
	f := newReminderFixture(t)
	f.addUser(t, "ben", "ben@example.com")
	f.addPlant(t, "anna", "Basil", 3, "")
	f.addPlant(t, "ben", "Mint", 2, "")

	_, err := f.svc.Run(context.Background(), mustParseLocal(t, "2024-01-04 19:00"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	body := f.sender.calls[0].body
	lines := strings.Split(body, "\n")
	if len(lines) != 3 {
		t.Fatalf("body has %d lines, want header + 2 plants:\n%s", len(lines), body)
	}
	if lines[0] != "The following plants still need watering today:" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "- Basil (owner: anna)" || lines[2] != "- Mint (owner: ben)" {
		t.Errorf("plant lines = %q, %q", lines[1], lines[2])
	}
}

func TestRun_OncePerDay(t *testing.T) {
	f := newReminderFixture(t)
	f.addUser(t, "ben", "ben@example.com")
	f.addPlant(t, "anna", "Basil", 3, "")

	now := mustParseLocal(t, "2024-01-04 19:00")

	first, err := f.svc.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if first.Outcome != OutcomeSent {
		t.Fatalf("first Outcome = %q, want sent", first.Outcome)
	}

	second, err := f.svc.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if second.Outcome != OutcomeAlreadyRan {
		t.Errorf("second Outcome = %q, want %q", second.Outcome, OutcomeAlreadyRan)
	}
	if len(f.sender.calls) != 1 {
		t.Errorf("sender called %d times across two runs, want 1", len(f.sender.calls))
	}

	// A new day gets a fresh claim.
	third, err := f.svc.Run(context.Background(), mustParseLocal(t, "2024-01-05 19:00"))
	if err != nil {
		t.Fatalf("third Run() error = %v", err)
	}
	if third.Outcome != OutcomeSent {
		t.Errorf("next-day Outcome = %q, want sent", third.Outcome)
	}
}

func TestRun_SendFailureReleasesClaim(t *testing.T) {
	f := newReminderFixture(t)
	f.addUser(t, "ben", "ben@example.com")
	f.addPlant(t, "anna", "Basil", 3, "")

	now := mustParseLocal(t, "2024-01-04 19:00")

	f.sender.err = errors.New("smtp: 535 authentication failed")
	if _, err := f.svc.Run(context.Background(), now); err == nil {
		t.Fatal("Run() with failing transport returned nil error")
	}

	// The failed attempt must not consume the day: a later manual
	// trigger retries with the same content.
	f.sender.err = nil
	result, err := f.svc.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("retry Run() error = %v", err)
	}
	if result.Outcome != OutcomeSent {
		t.Errorf("retry Outcome = %q, want sent", result.Outcome)
	}
}

func TestRun_TransmissionFailureLeavesPlantsUntouched(t *testing.T) {
	f := newReminderFixture(t)
	f.addUser(t, "ben", "ben@example.com")
	plant := f.addPlant(t, "anna", "Basil", 3, "2024-01-01")

	f.sender.err = errors.New("smtp: connection reset")
	if _, err := f.svc.Run(context.Background(), mustParseLocal(t, "2024-01-04 19:00")); err == nil {
		t.Fatal("Run() with failing transport returned nil error")
	}

	got, err := f.plants.GetByID(context.Background(), plant.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.LastWatered != "2024-01-01" {
		t.Errorf("LastWatered changed to %q after failed dispatch", got.LastWatered)
	}
}
