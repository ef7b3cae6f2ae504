package forms_test

import (
	"net/url"
	"testing"

	"github.com/jrsteele09/admissions-portal/forms"
	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *forms.Validator {
	t.Helper()
	return forms.NewValidator(portalapi.NewMessages().Translator())
}

func fieldErrors(t *testing.T, err error) forms.FieldErrors {
	t.Helper()
	require.Error(t, err)
	fe, ok := err.(forms.FieldErrors)
	require.True(t, ok, "unexpected error type %T", err)
	return fe
}

func TestLogin(t *testing.T) {
	v := newValidator(t)

	require.NoError(t, v.Check(forms.LoginFrom(url.Values{"email": {" a@example.org "}, "password": {"secret1"}})))

	fe := fieldErrors(t, v.Check(forms.LoginFrom(url.Values{"email": {"nope"}})))
	require.Equal(t, "Введите корректный email", fe["email"])
	require.Equal(t, "Обязательное поле", fe["password"])
}

func TestEmailChange(t *testing.T) {
	v := newValidator(t)

	form := forms.EmailChangeFrom(url.Values{"email": {" new@example.org "}})
	require.NoError(t, v.Check(form))
	require.Equal(t, portalapi.UserUpdate{Email: "new@example.org"}, form.Request())

	fe := fieldErrors(t, v.Check(forms.EmailChangeFrom(url.Values{})))
	require.Equal(t, "Обязательное поле", fe["email"])
}

func TestRegister(t *testing.T) {
	v := newValidator(t)
	values := url.Values{
		"email":                      {"a@example.org"},
		"password":                   {"secret1"},
		"password2":                  {"secret2"},
		"consent_to_data_processing": {"on"},
	}

	fe := fieldErrors(t, v.Check(forms.RegisterFrom(values)))
	require.Equal(t, "Пароли не совпадают", fe["password2"])
	require.Len(t, fe, 1)

	values.Set("password2", "secret1")
	values.Del("consent_to_data_processing")
	fe = fieldErrors(t, v.Check(forms.RegisterFrom(values)))
	require.Contains(t, fe, "consent_to_data_processing")

	values.Set("consent_to_data_processing", "on")
	f := forms.RegisterFrom(values)
	require.NoError(t, v.Check(f))
	require.True(t, f.Request().ConsentToDataProcessing)
}

func TestApplication(t *testing.T) {
	v := newValidator(t)
	f := forms.ApplicationFrom(url.Values{
		"building_specialty_id": {"12"},
		"study_form":            {"full_time"},
		"funding_basis":         {"budget"},
		"dormitory_needed":      {"on"},
		"info_source":           {"Сайт организации"},
	})
	require.NoError(t, v.Check(f))

	req := f.Request()
	require.Equal(t, int64(12), req.BuildingSpecialtyID)
	require.Equal(t, 1, req.Priority)
	require.Equal(t, 1, req.Course)
	require.Equal(t, portalapi.StudyFullTime, req.StudyForm)
	require.True(t, req.DormitoryNeeded)
	require.False(t, req.FirstTimeEducation)

	f.FundingBasis = "free"
	fe := fieldErrors(t, v.Check(f))
	require.Contains(t, fe, "funding_basis")
}

func TestProfile(t *testing.T) {
	v := newValidator(t)
	values := url.Values{}
	for k, val := range map[string]string{
		"first_name": "Иван", "last_name": "Петров", "date_of_birth": "2006-03-01",
		"citizenship": "РФ", "birth_place": "Казань", "passport_series": "9204",
		"passport_number": "123456", "passport_issued_date": "2020-04-01",
		"passport_issued_by": "МВД", "snils": "123-456-789 00",
		"registration_address": "ул. Ленина, 1", "actual_address": "ул. Ленина, 1",
		"phone": "+79001234567", "education_type": "Среднее общее",
		"education_institution": "Школа 5", "graduation_year": "2024",
		"document_type": "Аттестат", "document_series": "16", "document_number": "0012345",
		"average_grade": "4,25", "foreign_languages": "English, German",
		"mother_full_name": "Петрова А.А.", "mother_workplace": "Школа", "mother_phone": "+79000000001",
		"father_full_name": "Петров Б.Б.", "father_workplace": "Завод", "father_phone": "+79000000002",
	} {
		values.Set(k, val)
	}

	f := forms.ProfileFrom(values)
	require.NoError(t, v.Check(f))

	p := f.APIProfile()
	require.Equal(t, []string{"English", "German"}, p.ForeignLanguages)
	require.Equal(t, 2024, *p.GraduationYear)
	require.Equal(t, 4.25, *p.AverageGrade)

	back := forms.FromProfile(&p)
	require.Equal(t, "English, German", back.ForeignLanguages)
	require.Equal(t, "4.25", back.AverageGrade)

	f.GraduationYear = "24"
	f.AverageGrade = "5,5"
	fe := fieldErrors(t, v.Check(f))
	require.Equal(t, "Введите корректный год", fe["graduation_year"])
	require.Equal(t, "Средний балл должен быть от 0 до 5.0", fe["average_grade"])
}

func TestStaff(t *testing.T) {
	v := newValidator(t)

	fe := fieldErrors(t, v.Check(forms.StaffFrom(url.Values{"email": {"m@example.org"}})))
	require.Equal(t, "Обязательное поле", fe["password"])

	require.NoError(t, v.Check(forms.StaffFrom(url.Values{"id": {"4"}, "email": {"m@example.org"}})))

	fe = fieldErrors(t, v.Check(forms.StaffFrom(url.Values{"id": {"4"}, "email": {"m@example.org"}, "password": {"short"}})))
	require.Contains(t, fe, "password")
}

func TestInstitutionApplication(t *testing.T) {
	v := newValidator(t)
	f := forms.InstitutionApplicationFrom(url.Values{
		"institutionName": {"Колледж связи"},
		"institutionType": {"college"},
		"email":           {"info@college.example"},
		"phone":           {"+78430000000"},
		"address":         {"ул. Пушкина, 10"},
		"city":            {"Казань"},
		"website":         {""},
		"description":     {"Колледж готовит специалистов в области связи и IT."},
		"acceptTerms":     {"true"},
	})
	require.NoError(t, v.Check(f))
	require.Equal(t, "https://portal.example/payment-success", f.Request("https://portal.example/payment-success").ReturnURL)

	f.Website = "not a url"
	f.InstitutionType = "academy"
	fe := fieldErrors(t, v.Check(f))
	require.Contains(t, fe, "website")
	require.Contains(t, fe, "institutionType")
}

func TestFieldErrors_Error(t *testing.T) {
	fe := forms.FieldErrors{"b": "второе", "a": "первое"}
	require.Equal(t, "a: первое; b: второе", fe.Error())
}
