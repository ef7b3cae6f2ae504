package portalapi

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/admissions-portal/roles"
)

type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Role           roles.Role `json:"role"`
	IsVerified     bool       `json:"is_verified,omitempty"`
	OrganizationID *int64     `json:"organization,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the access token issued by POST auth/login/.
type LoginResponse struct {
	Access string     `json:"access"`
	Role   roles.Role `json:"role"`
}

type RegisterRequest struct {
	Email                   string `json:"email"`
	Password                string `json:"password"`
	Password2               string `json:"password2"`
	ConsentToDataProcessing bool   `json:"consent_to_data_processing"`
}

type PasswordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type UserUpdate struct {
	Email string `json:"email,omitempty"`
}

// StaffInput creates or updates a moderator or an organization admin.
type StaffInput struct {
	Email                   string `json:"email,omitempty"`
	Password                string `json:"password,omitempty"`
	OrganizationID          *int64 `json:"organization_id,omitempty"`
	ConsentToDataProcessing *bool  `json:"consent_to_data_processing,omitempty"`
}

type StaffMember struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	OrganizationID *int64 `json:"organization,omitempty"`
}

// ApplicantProfile is the applicant's personal file. TaskID is set when the
// backend started extracting the average grade from an uploaded attestation.
type ApplicantProfile struct {
	FirstName              string   `json:"first_name"`
	LastName               string   `json:"last_name"`
	MiddleName             string   `json:"middle_name,omitempty"`
	DateOfBirth            string   `json:"date_of_birth,omitempty"`
	Citizenship            string   `json:"citizenship"`
	BirthPlace             string   `json:"birth_place"`
	PassportSeries         string   `json:"passport_series"`
	PassportNumber         string   `json:"passport_number"`
	PassportIssuedDate     string   `json:"passport_issued_date,omitempty"`
	PassportIssuedBy       string   `json:"passport_issued_by"`
	Snils                  string   `json:"snils"`
	RegistrationAddress    string   `json:"registration_address"`
	ActualAddress          string   `json:"actual_address"`
	Phone                  string   `json:"phone"`
	EducationType          string   `json:"education_type"`
	EducationInstitution   string   `json:"education_institution"`
	GraduationYear         *int     `json:"graduation_year,omitempty"`
	DocumentType           string   `json:"document_type"`
	DocumentSeries         string   `json:"document_series"`
	DocumentNumber         string   `json:"document_number"`
	AverageGrade           *float64 `json:"average_grade,omitempty"`
	CalculatedAverageGrade *float64 `json:"calculated_average_grade,omitempty"`
	ForeignLanguages       []string `json:"foreign_languages,omitempty"`
	AdditionalInfo         string   `json:"additional_info,omitempty"`
	MotherFullName         string   `json:"mother_full_name"`
	MotherWorkplace        string   `json:"mother_workplace"`
	MotherPhone            string   `json:"mother_phone"`
	FatherFullName         string   `json:"father_full_name"`
	FatherWorkplace        string   `json:"father_workplace"`
	FatherPhone            string   `json:"father_phone"`
	Photo                  string   `json:"photo,omitempty"`
	AttestationPhoto       string   `json:"attestation_photo,omitempty"`
	TaskID                 string   `json:"task_id,omitempty"`
}

// Upload is a file attached to a multipart request.
type Upload struct {
	Filename string
	Content  io.Reader
}

// ProfileInput is the multipart payload of POST/PATCH users/profile/.
type ProfileInput struct {
	Profile          ApplicantProfile
	Photo            *Upload
	AttestationPhoto *Upload
}

type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskCompleted TaskState = "completed"
	TaskFailed    TaskState = "failed"
)

// TaskStatus is the payload of GET users/task-status/.
type TaskStatus struct {
	Status TaskState       `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
}

// State folds every non-terminal status reported by the backend into TaskPending.
func (s TaskStatus) State() TaskState {
	switch TaskState(strings.ToLower(string(s.Status))) {
	case TaskCompleted:
		return TaskCompleted
	case TaskFailed:
		return TaskFailed
	default:
		return TaskPending
	}
}

// Grade returns the numeric result of a completed task.
func (s TaskStatus) Grade() (float64, error) {
	var grade float64
	if err := json.Unmarshal(s.Result, &grade); err == nil {
		return grade, nil
	}
	var text string
	if err := json.Unmarshal(s.Result, &text); err == nil {
		return strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	}
	return 0, fmt.Errorf("task result %s is not a number", string(s.Result))
}

// FailureMessage returns result.error of a failed task.
func (s TaskStatus) FailureMessage() string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(s.Result, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return DefaultMessage
}

type Organization struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city,omitempty"`
}

// OrganizationApplication is an institution asking to join the platform.
type OrganizationApplication struct {
	InstitutionName string `json:"institutionName"`
	InstitutionType string `json:"institutionType"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	City            string `json:"city"`
	Website         string `json:"website,omitempty"`
	Description     string `json:"description"`
	ReturnURL       string `json:"return_url,omitempty"`
}

type PaymentResponse struct {
	PaymentURL string `json:"payment_url"`
}

type Building struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organization,omitempty"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
}

type BuildingSpecialty struct {
	ID               int64      `json:"id"`
	Building         *Building  `json:"building,omitempty"`
	Specialty        *Specialty `json:"specialty,omitempty"`
	BudgetPlaces     int        `json:"budget_places"`
	CommercialPlaces int        `json:"commercial_places"`
	CommercialPrice  float64    `json:"commercial_price"`
}

type Specialty struct {
	ID                  int64               `json:"id"`
	Name                string              `json:"name"`
	Code                string              `json:"code"`
	Organization        *Organization       `json:"organization,omitempty"`
	Duration            string              `json:"duration,omitempty"`
	Requirements        string              `json:"requirements,omitempty"`
	BuildingSpecialties []BuildingSpecialty `json:"building_specialties,omitempty"`
}

type StudyForm string

const (
	StudyFullTime StudyForm = "full_time"
	StudyPartTime StudyForm = "part_time"
)

type FundingBasis string

const (
	FundingBudget     FundingBasis = "budget"
	FundingCommercial FundingBasis = "commercial"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Label is the ru display name of the status.
func (s ApplicationStatus) Label() string {
	switch s {
	case ApplicationAccepted:
		return "Принято"
	case ApplicationRejected:
		return "Отклонено"
	default:
		return "На рассмотрении"
	}
}

type Application struct {
	ID                 int64              `json:"id"`
	ApplicantID        int64              `json:"applicant"`
	ApplicantProfile   *ApplicantProfile  `json:"applicant_profile,omitempty"`
	BuildingSpecialty  *BuildingSpecialty `json:"building_specialty,omitempty"`
	Priority           int                `json:"priority"`
	Course             int                `json:"course"`
	StudyForm          StudyForm          `json:"study_form"`
	FundingBasis       FundingBasis       `json:"funding_basis"`
	DormitoryNeeded    bool               `json:"dormitory_needed"`
	FirstTimeEducation bool               `json:"first_time_education"`
	InfoSource         string             `json:"info_source"`
	Status             ApplicationStatus  `json:"status"`
	RejectReason       string             `json:"reject_reason,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

type ApplicationInput struct {
	BuildingSpecialtyID int64        `json:"building_specialty_id"`
	Priority            int          `json:"priority"`
	Course              int          `json:"course"`
	StudyForm           StudyForm    `json:"study_form"`
	FundingBasis        FundingBasis `json:"funding_basis"`
	DormitoryNeeded     bool         `json:"dormitory_needed"`
	FirstTimeEducation  bool         `json:"first_time_education"`
	InfoSource          string       `json:"info_source"`
}

type DecisionAction string

const (
	DecisionAccept DecisionAction = "accept"
	DecisionReject DecisionAction = "reject"
)

type ModeratorDecision struct {
	ID           int64          `json:"id"`
	Action       DecisionAction `json:"action"`
	RejectReason string         `json:"reject_reason,omitempty"`
}

// ApplicationAttempts reports how many submissions remain for a building specialty.
type ApplicationAttempts struct {
	Used      int `json:"attempts"`
	Remaining int `json:"remaining"`
}

type LeaderboardEntry struct {
	ID               int64             `json:"id"`
	ApplicantEmail   string            `json:"applicant_email"`
	ApplicantProfile *ApplicantProfile `json:"applicant_profile,omitempty"`
	Priority         int               `json:"priority"`
	Status           ApplicationStatus `json:"status"`
	Rank             *int              `json:"rank,omitempty"`
}

type Chat struct {
	ID           int64         `json:"id"`
	Organization *Organization `json:"organization,omitempty"`
	Applicant    *StaffMember  `json:"applicant,omitempty"`
	LastMessage  *Message      `json:"last_message,omitempty"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type ChatDetail struct {
	Chat
	Messages []Message `json:"messages"`
}

type Message struct {
	ID        int64     `json:"id"`
	SenderID  int64     `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Statistics is a dashboard data source. Its shape differs per endpoint.
type Statistics map[string]json.RawMessage

// StatEntry is one top level metric of a Statistics payload.
type StatEntry struct {
	Key   string
	Value string
}

// Entries flattens the payload into sorted key/value pairs for display.
func (s Statistics) Entries() []StatEntry {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]StatEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, StatEntry{Key: k, Value: scalarText(s[k])})
	}
	return entries
}
