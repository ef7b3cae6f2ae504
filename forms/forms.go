package forms

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/admissions-portal/internal/utils"
	"github.com/jrsteele09/admissions-portal/portalapi"
)

type Login struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

func LoginFrom(v url.Values) Login {
	return Login{
		Email:    strings.TrimSpace(v.Get("email")),
		Password: v.Get("password"),
	}
}

type Register struct {
	Email     string `form:"email" validate:"required,email"`
	Password  string `form:"password" validate:"required,min=6"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
	Consent   bool   `form:"consent_to_data_processing" validate:"required"`
}

func RegisterFrom(v url.Values) Register {
	return Register{
		Email:     strings.TrimSpace(v.Get("email")),
		Password:  v.Get("password"),
		Password2: v.Get("password2"),
		Consent:   checked(v, "consent_to_data_processing"),
	}
}

func (f Register) Request() portalapi.RegisterRequest {
	return portalapi.RegisterRequest{
		Email:                   f.Email,
		Password:                f.Password,
		Password2:               f.Password2,
		ConsentToDataProcessing: f.Consent,
	}
}

type EmailChange struct {
	Email string `form:"email" validate:"required,email"`
}

func EmailChangeFrom(v url.Values) EmailChange {
	return EmailChange{Email: strings.TrimSpace(v.Get("email"))}
}

func (f EmailChange) Request() portalapi.UserUpdate {
	return portalapi.UserUpdate{Email: f.Email}
}

type PasswordChange struct {
	OldPassword     string `form:"old_password" validate:"required,min=8"`
	NewPassword     string `form:"new_password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=NewPassword"`
}

func PasswordChangeFrom(v url.Values) PasswordChange {
	return PasswordChange{
		OldPassword:     v.Get("old_password"),
		NewPassword:     v.Get("new_password"),
		ConfirmPassword: v.Get("confirm_password"),
	}
}

func (f PasswordChange) Request() portalapi.PasswordChange {
	return portalapi.PasswordChange{OldPassword: f.OldPassword, NewPassword: f.NewPassword}
}

type Application struct {
	BuildingSpecialtyID int64  `form:"building_specialty_id" validate:"required,gt=0"`
	Priority            int    `form:"priority" validate:"required,min=1,max=5"`
	Course              int    `form:"course" validate:"required,min=1,max=6"`
	StudyForm           string `form:"study_form" validate:"required,oneof=full_time part_time"`
	FundingBasis        string `form:"funding_basis" validate:"required,oneof=budget commercial"`
	DormitoryNeeded     bool   `form:"dormitory_needed"`
	FirstTimeEducation  bool   `form:"first_time_education"`
	InfoSource          string `form:"info_source" validate:"required,max=255"`
}

// ApplicationFrom reads the form. Missing numbers fall back to the defaults
// the form is rendered with.
func ApplicationFrom(v url.Values) Application {
	return Application{
		BuildingSpecialtyID: int64Value(v, "building_specialty_id"),
		Priority:            intValue(v, "priority", 1),
		Course:              intValue(v, "course", 1),
		StudyForm:           v.Get("study_form"),
		FundingBasis:        v.Get("funding_basis"),
		DormitoryNeeded:     checked(v, "dormitory_needed"),
		FirstTimeEducation:  checked(v, "first_time_education"),
		InfoSource:          strings.TrimSpace(v.Get("info_source")),
	}
}

func (f Application) Request() portalapi.ApplicationInput {
	return portalapi.ApplicationInput{
		BuildingSpecialtyID: f.BuildingSpecialtyID,
		Priority:            f.Priority,
		Course:              f.Course,
		StudyForm:           portalapi.StudyForm(f.StudyForm),
		FundingBasis:        portalapi.FundingBasis(f.FundingBasis),
		DormitoryNeeded:     f.DormitoryNeeded,
		FirstTimeEducation:  f.FirstTimeEducation,
		InfoSource:          f.InfoSource,
	}
}

type Rejection struct {
	Reason string `form:"reason" validate:"required,min=3"`
}

type Profile struct {
	FirstName            string `form:"first_name" validate:"required,min=2"`
	LastName             string `form:"last_name" validate:"required,min=2"`
	MiddleName           string `form:"middle_name"`
	DateOfBirth          string `form:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Citizenship          string `form:"citizenship" validate:"required,min=2"`
	BirthPlace           string `form:"birth_place" validate:"required,min=2"`
	PassportSeries       string `form:"passport_series" validate:"required,min=2"`
	PassportNumber       string `form:"passport_number" validate:"required,min=2"`
	PassportIssuedDate   string `form:"passport_issued_date" validate:"required,datetime=2006-01-02"`
	PassportIssuedBy     string `form:"passport_issued_by" validate:"required,min=2"`
	Snils                string `form:"snils" validate:"required,min=2"`
	RegistrationAddress  string `form:"registration_address" validate:"required,min=5"`
	ActualAddress        string `form:"actual_address" validate:"required,min=5"`
	Phone                string `form:"phone" validate:"required,min=10"`
	EducationType        string `form:"education_type" validate:"required,min=2"`
	EducationInstitution string `form:"education_institution" validate:"required,min=2"`
	GraduationYear       string `form:"graduation_year" validate:"required,year"`
	DocumentType         string `form:"document_type" validate:"required,min=2"`
	DocumentSeries       string `form:"document_series" validate:"required,min=2"`
	DocumentNumber       string `form:"document_number" validate:"required,min=2"`
	AverageGrade         string `form:"average_grade" validate:"grade"`
	ForeignLanguages     string `form:"foreign_languages"`
	AdditionalInfo       string `form:"additional_info"`
	MotherFullName       string `form:"mother_full_name" validate:"required,min=2"`
	MotherWorkplace      string `form:"mother_workplace" validate:"required"`
	MotherPhone          string `form:"mother_phone" validate:"required,min=10"`
	FatherFullName       string `form:"father_full_name" validate:"required,min=2"`
	FatherWorkplace      string `form:"father_workplace" validate:"required"`
	FatherPhone          string `form:"father_phone" validate:"required,min=10"`
}

func ProfileFrom(v url.Values) Profile {
	get := func(k string) string { return strings.TrimSpace(v.Get(k)) }
	return Profile{
		FirstName:            get("first_name"),
		LastName:             get("last_name"),
		MiddleName:           get("middle_name"),
		DateOfBirth:          get("date_of_birth"),
		Citizenship:          get("citizenship"),
		BirthPlace:           get("birth_place"),
		PassportSeries:       get("passport_series"),
		PassportNumber:       get("passport_number"),
		PassportIssuedDate:   get("passport_issued_date"),
		PassportIssuedBy:     get("passport_issued_by"),
		Snils:                get("snils"),
		RegistrationAddress:  get("registration_address"),
		ActualAddress:        get("actual_address"),
		Phone:                get("phone"),
		EducationType:        get("education_type"),
		EducationInstitution: get("education_institution"),
		GraduationYear:       get("graduation_year"),
		DocumentType:         get("document_type"),
		DocumentSeries:       get("document_series"),
		DocumentNumber:       get("document_number"),
		AverageGrade:         get("average_grade"),
		ForeignLanguages:     get("foreign_languages"),
		AdditionalInfo:       get("additional_info"),
		MotherFullName:       get("mother_full_name"),
		MotherWorkplace:      get("mother_workplace"),
		MotherPhone:          get("mother_phone"),
		FatherFullName:       get("father_full_name"),
		FatherWorkplace:      get("father_workplace"),
		FatherPhone:          get("father_phone"),
	}
}

// FromProfile fills the form from a stored profile for editing.
func FromProfile(p *portalapi.ApplicantProfile) Profile {
	if p == nil {
		return Profile{}
	}
	f := Profile{
		FirstName:            p.FirstName,
		LastName:             p.LastName,
		MiddleName:           p.MiddleName,
		DateOfBirth:          p.DateOfBirth,
		Citizenship:          p.Citizenship,
		BirthPlace:           p.BirthPlace,
		PassportSeries:       p.PassportSeries,
		PassportNumber:       p.PassportNumber,
		PassportIssuedDate:   p.PassportIssuedDate,
		PassportIssuedBy:     p.PassportIssuedBy,
		Snils:                p.Snils,
		RegistrationAddress:  p.RegistrationAddress,
		ActualAddress:        p.ActualAddress,
		Phone:                p.Phone,
		EducationType:        p.EducationType,
		EducationInstitution: p.EducationInstitution,
		DocumentType:         p.DocumentType,
		DocumentSeries:       p.DocumentSeries,
		DocumentNumber:       p.DocumentNumber,
		ForeignLanguages:     strings.Join(p.ForeignLanguages, ", "),
		AdditionalInfo:       p.AdditionalInfo,
		MotherFullName:       p.MotherFullName,
		MotherWorkplace:      p.MotherWorkplace,
		MotherPhone:          p.MotherPhone,
		FatherFullName:       p.FatherFullName,
		FatherWorkplace:      p.FatherWorkplace,
		FatherPhone:          p.FatherPhone,
	}
	if p.GraduationYear != nil {
		f.GraduationYear = strconv.Itoa(*p.GraduationYear)
	}
	if p.AverageGrade != nil {
		f.AverageGrade = utils.FormatGrade(*p.AverageGrade)
	}
	return f
}

// APIProfile converts a validated form to the API payload.
func (f Profile) APIProfile() portalapi.ApplicantProfile {
	p := portalapi.ApplicantProfile{
		FirstName:            f.FirstName,
		LastName:             f.LastName,
		MiddleName:           f.MiddleName,
		DateOfBirth:          f.DateOfBirth,
		Citizenship:          f.Citizenship,
		BirthPlace:           f.BirthPlace,
		PassportSeries:       f.PassportSeries,
		PassportNumber:       f.PassportNumber,
		PassportIssuedDate:   f.PassportIssuedDate,
		PassportIssuedBy:     f.PassportIssuedBy,
		Snils:                f.Snils,
		RegistrationAddress:  f.RegistrationAddress,
		ActualAddress:        f.ActualAddress,
		Phone:                f.Phone,
		EducationType:        f.EducationType,
		EducationInstitution: f.EducationInstitution,
		DocumentType:         f.DocumentType,
		DocumentSeries:       f.DocumentSeries,
		DocumentNumber:       f.DocumentNumber,
		ForeignLanguages:     utils.SplitList(f.ForeignLanguages),
		AdditionalInfo:       f.AdditionalInfo,
		MotherFullName:       f.MotherFullName,
		MotherWorkplace:      f.MotherWorkplace,
		MotherPhone:          f.MotherPhone,
		FatherFullName:       f.FatherFullName,
		FatherWorkplace:      f.FatherWorkplace,
		FatherPhone:          f.FatherPhone,
	}
	if year, err := strconv.Atoi(f.GraduationYear); err == nil {
		p.GraduationYear = utils.Ptr(year)
	}
	if grade, err := utils.ParseGrade(f.AverageGrade); err == nil {
		p.AverageGrade = utils.Ptr(grade)
	}
	return p
}

type InstitutionApplication struct {
	InstitutionName string `form:"institutionName" validate:"required,min=3"`
	InstitutionType string `form:"institutionType" validate:"required,oneof=university college school other"`
	Email           string `form:"email" validate:"required,email"`
	Phone           string `form:"phone" validate:"required,min=10"`
	Address         string `form:"address" validate:"required,min=5"`
	City            string `form:"city" validate:"required,min=2"`
	Website         string `form:"website" validate:"omitempty,url"`
	Description     string `form:"description" validate:"required,min=30"`
	AcceptTerms     bool   `form:"acceptTerms" validate:"required"`
}

func InstitutionApplicationFrom(v url.Values) InstitutionApplication {
	get := func(k string) string { return strings.TrimSpace(v.Get(k)) }
	return InstitutionApplication{
		InstitutionName: get("institutionName"),
		InstitutionType: get("institutionType"),
		Email:           get("email"),
		Phone:           get("phone"),
		Address:         get("address"),
		City:            get("city"),
		Website:         get("website"),
		Description:     get("description"),
		AcceptTerms:     checked(v, "acceptTerms"),
	}
}

func (f InstitutionApplication) Request(returnURL string) portalapi.OrganizationApplication {
	return portalapi.OrganizationApplication{
		InstitutionName: f.InstitutionName,
		InstitutionType: f.InstitutionType,
		Email:           f.Email,
		Phone:           f.Phone,
		Address:         f.Address,
		City:            f.City,
		Website:         f.Website,
		Description:     f.Description,
		ReturnURL:       returnURL,
	}
}

// Staff creates or edits a moderator or an organization admin. The password
// may be left empty when editing.
type Staff struct {
	ID       int64  `form:"id"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"omitempty,min=8"`
}

func StaffFrom(v url.Values) Staff {
	return Staff{
		ID:       int64Value(v, "id"),
		Email:    strings.TrimSpace(v.Get("email")),
		Password: v.Get("password"),
	}
}

func (f Staff) Request() portalapi.StaffInput {
	return portalapi.StaffInput{Email: f.Email, Password: f.Password}
}

type Organization struct {
	ID      int64  `form:"id"`
	Name    string `form:"name" validate:"required,min=2,max=100"`
	Email   string `form:"email" validate:"required,email"`
	Phone   string `form:"phone" validate:"required,min=5,max=20"`
	Address string `form:"address" validate:"required,min=5"`
	City    string `form:"city" validate:"required,min=2,max=100"`
}

func OrganizationFrom(v url.Values) Organization {
	get := func(k string) string { return strings.TrimSpace(v.Get(k)) }
	return Organization{
		ID:      int64Value(v, "id"),
		Name:    get("name"),
		Email:   get("email"),
		Phone:   get("phone"),
		Address: get("address"),
		City:    get("city"),
	}
}

func (f Organization) Request() portalapi.Organization {
	return portalapi.Organization{ID: f.ID, Name: f.Name, Email: f.Email, Phone: f.Phone, Address: f.Address, City: f.City}
}

type Specialty struct {
	ID           int64  `form:"id"`
	Name         string `form:"name" validate:"required,min=2"`
	Code         string `form:"code" validate:"required"`
	Duration     string `form:"duration"`
	Requirements string `form:"requirements"`
}

func SpecialtyFrom(v url.Values) Specialty {
	get := func(k string) string { return strings.TrimSpace(v.Get(k)) }
	return Specialty{
		ID:           int64Value(v, "id"),
		Name:         get("name"),
		Code:         get("code"),
		Duration:     get("duration"),
		Requirements: get("requirements"),
	}
}

func (f Specialty) Request() portalapi.SpecialtyInput {
	return portalapi.SpecialtyInput{ID: f.ID, Name: f.Name, Code: f.Code, Duration: f.Duration, Requirements: f.Requirements}
}

type ChatMessage struct {
	ChatID  int64  `form:"chat_id" validate:"required,gt=0"`
	Content string `form:"content" validate:"required,max=4000"`
}

func ChatMessageFrom(v url.Values) ChatMessage {
	return ChatMessage{ChatID: int64Value(v, "chat_id"), Content: strings.TrimSpace(v.Get("content"))}
}

func checked(v url.Values, key string) bool {
	switch strings.ToLower(v.Get(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func intValue(v url.Values, key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v.Get(key)))
	if err != nil {
		return def
	}
	return n
}

func int64Value(v url.Values, key string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(v.Get(key)), 10, 64)
	return n
}

type Building struct {
	ID      int64  `form:"id"`
	Name    string `form:"name" validate:"required,min=2"`
	Address string `form:"address" validate:"required,min=5"`
	Phone   string `form:"phone" validate:"omitempty,min=5,max=20"`
	Email   string `form:"email" validate:"omitempty,email"`
}

func BuildingFrom(v url.Values) Building {
	get := func(k string) string { return strings.TrimSpace(v.Get(k)) }
	return Building{
		ID:      int64Value(v, "id"),
		Name:    get("name"),
		Address: get("address"),
		Phone:   get("phone"),
		Email:   get("email"),
	}
}

func (f Building) Request() portalapi.Building {
	return portalapi.Building{ID: f.ID, Name: f.Name, Address: f.Address, Phone: f.Phone, Email: f.Email}
}

// Offering opens a specialty in a building with its places and price.
type Offering struct {
	BuildingID       int64  `form:"building_id" validate:"required,gt=0"`
	SpecialtyID      int64  `form:"specialty_id" validate:"required,gt=0"`
	BudgetPlaces     int    `form:"budget_places" validate:"min=0"`
	CommercialPlaces int    `form:"commercial_places" validate:"min=0"`
	CommercialPrice  string `form:"commercial_price" validate:"omitempty,price"`
}

func OfferingFrom(v url.Values) Offering {
	return Offering{
		BuildingID:       int64Value(v, "building_id"),
		SpecialtyID:      int64Value(v, "specialty_id"),
		BudgetPlaces:     intValue(v, "budget_places", 0),
		CommercialPlaces: intValue(v, "commercial_places", 0),
		CommercialPrice:  strings.TrimSpace(v.Get("commercial_price")),
	}
}

func (f Offering) Request() portalapi.BuildingSpecialtyInput {
	in := portalapi.BuildingSpecialtyInput{
		BuildingID:       f.BuildingID,
		SpecialtyID:      f.SpecialtyID,
		BudgetPlaces:     f.BudgetPlaces,
		CommercialPlaces: f.CommercialPlaces,
	}
	if price, err := utils.ParseGrade(f.CommercialPrice); err == nil {
		in.CommercialPrice = price
	}
	return in
}
