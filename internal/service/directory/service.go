// Package directory exposes the doctor and medical field catalog. It is
// pass-through persistence with no invariants of its own.
package directory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"medbook/backend/internal/domain"
	"medbook/backend/internal/store"
)

type DoctorView struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	MedicalFieldID   uuid.UUID `json:"medicalFieldId"`
	MedicalFieldName string    `json:"medicalFieldName"`
	ExperienceYears  int       `json:"experienceYears"`
}

type FieldView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

type SearchResult struct {
	Doctors       []DoctorView `json:"doctors"`
	MedicalFields []FieldView  `json:"medicalFields"`
}

type Service struct {
	doctors store.DoctorRepository
	fields  store.MedicalFieldRepository
}

func NewService(doctors store.DoctorRepository, fields store.MedicalFieldRepository) *Service {
	return &Service{doctors: doctors, fields: fields}
}

// Doctors lists doctors, optionally narrowed to one medical field. A nil
// fieldID lists everyone.
func (s *Service) Doctors(ctx context.Context, fieldID *uuid.UUID) ([]DoctorView, error) {
	var (
		rows []domain.Doctor
		err  error
	)
	if fieldID != nil {
		rows, err = s.doctors.ListByField(ctx, *fieldID)
	} else {
		rows, err = s.doctors.SearchByName(ctx, "")
	}
	if err != nil {
		return nil, err
	}
	return doctorViews(rows), nil
}

func (s *Service) MedicalFields(ctx context.Context) ([]FieldView, error) {
	rows, err := s.fields.List(ctx)
	if err != nil {
		return nil, err
	}
	return fieldViews(rows), nil
}

// Search runs one case-insensitive substring query over both doctors and
// medical fields.
func (s *Service) Search(ctx context.Context, query string) (SearchResult, error) {
	query = strings.TrimSpace(query)

	doctors, err := s.doctors.SearchByName(ctx, query)
	if err != nil {
		return SearchResult{}, err
	}
	fields, err := s.fields.SearchByName(ctx, query)
	if err != nil {
		return SearchResult{}, err
	}

	return SearchResult{
		Doctors:       doctorViews(doctors),
		MedicalFields: fieldViews(fields),
	}, nil
}

func doctorViews(rows []domain.Doctor) []DoctorView {
	out := make([]DoctorView, 0, len(rows))
	for _, d := range rows {
		v := DoctorView{
			ID:              d.ID,
			Name:            d.Name,
			MedicalFieldID:  d.MedicalFieldID,
			ExperienceYears: d.ExperienceYears,
		}
		if d.MedicalField != nil {
			v.MedicalFieldName = d.MedicalField.Name
		}
		out = append(out, v)
	}
	return out
}

func fieldViews(rows []domain.MedicalField) []FieldView {
	out := make([]FieldView, 0, len(rows))
	for _, f := range rows {
		out = append(out, FieldView{ID: f.ID, Name: f.Name, Description: f.Description})
	}
	return out
}
