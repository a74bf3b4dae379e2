package directory

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"medbook/backend/internal/domain"
)

type fakeDoctorRepo struct {
	listByFieldFn  func(ctx context.Context, fieldID uuid.UUID) ([]domain.Doctor, error)
	searchByNameFn func(ctx context.Context, query string) ([]domain.Doctor, error)
}

func (f *fakeDoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Doctor, error) {
	panic("not used")
}

func (f *fakeDoctorRepo) ListByField(ctx context.Context, fieldID uuid.UUID) ([]domain.Doctor, error) {
	return f.listByFieldFn(ctx, fieldID)
}

func (f *fakeDoctorRepo) SearchByName(ctx context.Context, query string) ([]domain.Doctor, error) {
	return f.searchByNameFn(ctx, query)
}

type fakeFieldRepo struct {
	listFn         func(ctx context.Context) ([]domain.MedicalField, error)
	searchByNameFn func(ctx context.Context, query string) ([]domain.MedicalField, error)
}

func (f *fakeFieldRepo) List(ctx context.Context) ([]domain.MedicalField, error) {
	return f.listFn(ctx)
}

func (f *fakeFieldRepo) SearchByName(ctx context.Context, query string) ([]domain.MedicalField, error) {
	return f.searchByNameFn(ctx, query)
}

var (
	cardiologyID = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	doctorID     = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

func TestDoctors_NilFieldListsEveryone(t *testing.T) {
	doctors := &fakeDoctorRepo{
		searchByNameFn: func(ctx context.Context, query string) ([]domain.Doctor, error) {
			if query != "" {
				t.Fatalf("query = %q, want empty for full listing", query)
			}
			return []domain.Doctor{{ID: doctorID, Name: "Levin"}}, nil
		},
	}
	svc := NewService(doctors, &fakeFieldRepo{})

	views, err := svc.Doctors(context.Background(), nil)
	if err != nil {
		t.Fatalf("Doctors error: %v", err)
	}
	if len(views) != 1 || views[0].Name != "Levin" {
		t.Fatalf("views = %+v", views)
	}
}

func TestDoctors_FieldFilterApplied(t *testing.T) {
	doctors := &fakeDoctorRepo{
		listByFieldFn: func(ctx context.Context, fieldID uuid.UUID) ([]domain.Doctor, error) {
			if fieldID != cardiologyID {
				t.Fatalf("field = %s, want %s", fieldID, cardiologyID)
			}
			return []domain.Doctor{
				{ID: doctorID, Name: "Levin", MedicalFieldID: cardiologyID,
					MedicalField: &domain.MedicalField{ID: cardiologyID, Name: "Cardiology"}, ExperienceYears: 12},
			}, nil
		},
	}
	svc := NewService(doctors, &fakeFieldRepo{})

	views, err := svc.Doctors(context.Background(), &cardiologyID)
	if err != nil {
		t.Fatalf("Doctors error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("views = %d, want 1", len(views))
	}
	v := views[0]
	if v.MedicalFieldName != "Cardiology" || v.ExperienceYears != 12 {
		t.Fatalf("view = %+v", v)
	}
}

func TestSearch_QueriesBothCatalogs(t *testing.T) {
	var doctorQuery, fieldQuery string
	doctors := &fakeDoctorRepo{
		searchByNameFn: func(ctx context.Context, query string) ([]domain.Doctor, error) {
			doctorQuery = query
			return []domain.Doctor{{ID: doctorID, Name: "Cardoso"}}, nil
		},
	}
	fields := &fakeFieldRepo{
		searchByNameFn: func(ctx context.Context, query string) ([]domain.MedicalField, error) {
			fieldQuery = query
			return []domain.MedicalField{{ID: cardiologyID, Name: "Cardiology"}}, nil
		},
	}
	svc := NewService(doctors, fields)

	result, err := svc.Search(context.Background(), "  card  ")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if doctorQuery != "card" || fieldQuery != "card" {
		t.Fatalf("queries = %q/%q, want trimmed %q", doctorQuery, fieldQuery, "card")
	}
	if len(result.Doctors) != 1 || len(result.MedicalFields) != 1 {
		t.Fatalf("result = %+v", result)
	}
}

func TestMedicalFields_ListsAll(t *testing.T) {
	fields := &fakeFieldRepo{
		listFn: func(ctx context.Context) ([]domain.MedicalField, error) {
			return []domain.MedicalField{
				{ID: cardiologyID, Name: "Cardiology", Description: "Heart"},
			}, nil
		},
	}
	svc := NewService(&fakeDoctorRepo{}, fields)

	views, err := svc.MedicalFields(context.Background())
	if err != nil {
		t.Fatalf("MedicalFields error: %v", err)
	}
	if len(views) != 1 || views[0].Description != "Heart" {
		t.Fatalf("views = %+v", views)
	}
}
