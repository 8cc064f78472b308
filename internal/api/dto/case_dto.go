package dto

import (
	"time"

	"github.com/spec-kit/forensic-case-service/internal/domain"
)

// PersonPayload identifies an individual tied to a case.
type PersonPayload struct {
	Name        string `json:"name"`
	CPRNo       string `json:"cpr_no"`
	PassportNo  string `json:"passport_no"`
	Gender      string `json:"gender"`
	Nationality string `json:"nationality"`
}

// IntakePayload carries the registration-desk paperwork.
type IntakePayload struct {
	ReceivedDate       string `json:"received_date"`
	ReceivedTime       string `json:"received_time"`
	SenderName         string `json:"sender_name"`
	FromDept           string `json:"from_dept"`
	PoliceNo           string `json:"police_no"`
	SenderCaseNo       string `json:"sender_case_no"`
	PoliceStation      string `json:"police_station"`
	SubmittedBy        string `json:"submitted_by"`
	SubmitterPoliceNo  string `json:"submitter_police_no"`
	PersonInCharge     string `json:"person_in_charge"`
	SampleCount        int    `json:"sample_count"`
	SampleReceiver     string `json:"sample_receiver"`
	ExpectedFinishDate string `json:"expected_finish_date"`
	CaseEnteredBy      string `json:"case_entered_by"`
}

// CreateCaseRequest payload.
type CreateCaseRequest struct {
	CaseNumber  string              `json:"case_number"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    domain.CasePriority `json:"priority"`
	Department  string              `json:"department"`
	Persons     []PersonPayload     `json:"persons"`
	Intake      IntakePayload       `json:"intake"`
}

// SetPriorityRequest payload.
type SetPriorityRequest struct {
	Priority domain.CasePriority `json:"priority"`
}

// CaseSummary response.
type CaseSummary struct {
	ID             string              `json:"id"`
	CaseNumber     string              `json:"case_number"`
	Title          string              `json:"title"`
	Status         domain.CaseStatus   `json:"status"`
	Priority       domain.CasePriority `json:"priority"`
	Department     string              `json:"department"`
	AssignedToID   *string             `json:"assigned_to_id"`
	AssignedToName *string             `json:"assigned_to_name,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
}

// CaseDetailResponse provides full case info.
type CaseDetailResponse struct {
	CaseSummary
	Description string          `json:"description"`
	CreatedBy   string          `json:"created_by"`
	Persons     []PersonPayload `json:"persons"`
	Intake      IntakePayload   `json:"intake"`
}

// ToPersons converts request persons into domain values.
func ToPersons(payloads []PersonPayload) []domain.Person {
	persons := make([]domain.Person, 0, len(payloads))
	for _, p := range payloads {
		persons = append(persons, domain.Person{
			Name:        p.Name,
			CPRNo:       p.CPRNo,
			PassportNo:  p.PassportNo,
			Gender:      p.Gender,
			Nationality: p.Nationality,
		})
	}
	return persons
}

// FromPersons converts domain persons into response payloads.
func FromPersons(persons []domain.Person) []PersonPayload {
	payloads := make([]PersonPayload, 0, len(persons))
	for _, p := range persons {
		payloads = append(payloads, PersonPayload{
			Name:        p.Name,
			CPRNo:       p.CPRNo,
			PassportNo:  p.PassportNo,
			Gender:      p.Gender,
			Nationality: p.Nationality,
		})
	}
	return payloads
}

// ToIntake converts an intake payload into domain values.
func ToIntake(p IntakePayload) domain.IntakeDetails {
	return domain.IntakeDetails{
		ReceivedDate:       p.ReceivedDate,
		ReceivedTime:       p.ReceivedTime,
		SenderName:         p.SenderName,
		FromDept:           p.FromDept,
		PoliceNo:           p.PoliceNo,
		SenderCaseNo:       p.SenderCaseNo,
		PoliceStation:      p.PoliceStation,
		SubmittedBy:        p.SubmittedBy,
		SubmitterPoliceNo:  p.SubmitterPoliceNo,
		PersonInCharge:     p.PersonInCharge,
		SampleCount:        p.SampleCount,
		SampleReceiver:     p.SampleReceiver,
		ExpectedFinishDate: p.ExpectedFinishDate,
		CaseEnteredBy:      p.CaseEnteredBy,
	}
}

// FromIntake converts domain intake details into a response payload.
func FromIntake(d domain.IntakeDetails) IntakePayload {
	return IntakePayload{
		ReceivedDate:       d.ReceivedDate,
		ReceivedTime:       d.ReceivedTime,
		SenderName:         d.SenderName,
		FromDept:           d.FromDept,
		PoliceNo:           d.PoliceNo,
		SenderCaseNo:       d.SenderCaseNo,
		PoliceStation:      d.PoliceStation,
		SubmittedBy:        d.SubmittedBy,
		SubmitterPoliceNo:  d.SubmitterPoliceNo,
		PersonInCharge:     d.PersonInCharge,
		SampleCount:        d.SampleCount,
		SampleReceiver:     d.SampleReceiver,
		ExpectedFinishDate: d.ExpectedFinishDate,
		CaseEnteredBy:      d.CaseEnteredBy,
	}
}
