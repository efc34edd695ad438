package patients

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Patient
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Patient{}}
}

func (r *testRepo) Create(_ context.Context, p Patient) error {
	if _, ok := r.byID[p.ID]; ok {
		return ErrConflict
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Patient, error) {
	p, ok := r.byID[id]
	if !ok {
		return Patient{}, errRepoNotFound
	}
	return p, nil
}

func (r *testRepo) ListByCaregiver(_ context.Context, caregiverID string) ([]Patient, error) {
	out := make([]Patient, 0)
	for _, p := range r.byID {
		if p.CaregiverID == caregiverID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

type testDependent struct {
	deleted []string
	err     error
}

func (d *testDependent) DeleteByPatient(_ context.Context, patientID string) error {
	if d.err != nil {
		return d.err
	}
	d.deleted = append(d.deleted, patientID)
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_ValidatesInput(t *testing.T) {
	svc := NewService(newTestRepo())

	cases := []CreateInput{
		{Name: "   ", Age: 80},
		{Name: "Mary", Age: -1},
		{Name: "Mary", Age: 151},
	}
	for _, in := range cases {
		if _, err := svc.Create(context.Background(), "cg-1", in); err != ErrInvalidInput {
			t.Fatalf("Create(%#v) expected ErrInvalidInput, got %v", in, err)
		}
	}
	if _, err := svc.Create(context.Background(), "", CreateInput{Name: "Mary"}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput without caregiver, got %v", err)
	}
}

func TestService_Create_KeepsClientID_AndRejectsDuplicate(t *testing.T) {
	svc := NewService(newTestRepo())

	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	p, err := svc.Create(context.Background(), "cg-1", CreateInput{ID: "p-voice", Name: " Mary ", Age: 80, Condition: "diabetes"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.ID != "p-voice" || p.Name != "Mary" || p.CreatedAt != now {
		t.Fatalf("unexpected patient: %#v", p)
	}

	_, err = svc.Create(context.Background(), "cg-1", CreateInput{ID: "p-voice", Name: "Mary"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestService_Delete_CascadesToDependents(t *testing.T) {
	repo := newTestRepo()
	meds := &testDependent{}
	notes := &testDependent{}
	svc := NewService(repo, meds, notes)

	p, err := svc.Create(context.Background(), "cg-1", CreateInput{Name: "Mary", Age: 80})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := svc.Delete(context.Background(), "cg-1", p.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if len(meds.deleted) != 1 || meds.deleted[0] != p.ID {
		t.Fatalf("expected cascade to medicines, got %#v", meds.deleted)
	}
	if len(notes.deleted) != 1 || notes.deleted[0] != p.ID {
		t.Fatalf("expected cascade to notes, got %#v", notes.deleted)
	}
	if _, ok := repo.byID[p.ID]; ok {
		t.Fatalf("expected patient removed from repo")
	}
}

func TestService_Delete_StopsWhenDependentFails(t *testing.T) {
	repo := newTestRepo()
	failing := &testDependent{err: errors.New("db down")}
	svc := NewService(repo, failing)

	p, err := svc.Create(context.Background(), "cg-1", CreateInput{Name: "Mary"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := svc.Delete(context.Background(), "cg-1", p.ID); err == nil {
		t.Fatalf("expected error from cascade")
	}
	if _, ok := repo.byID[p.ID]; !ok {
		t.Fatalf("patient must stay when the cascade fails")
	}
}

func TestService_OtherCaregiver_NotFound(t *testing.T) {
	repo := newTestRepo()
	deps := &testDependent{}
	svc := NewService(repo, deps)

	p, err := svc.Create(context.Background(), "cg-1", CreateInput{Name: "Mary"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Get(context.Background(), "cg-2", p.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "cg-2", p.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
	if len(deps.deleted) != 0 {
		t.Fatalf("cascade must not run for another caregiver")
	}
}

func TestOwners_ReadsFromRepo(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	owners := NewOwners(repo)

	p, err := svc.Create(context.Background(), "cg-1", CreateInput{Name: "Mary"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	cg, err := owners.CaregiverOf(context.Background(), p.ID)
	if err != nil || cg != "cg-1" {
		t.Fatalf("CaregiverOf = %q, %v", cg, err)
	}
	name, err := owners.NameOf(context.Background(), p.ID)
	if err != nil || name != "Mary" {
		t.Fatalf("NameOf = %q, %v", name, err)
	}
	if _, err := owners.CaregiverOf(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for missing patient")
	}
}
