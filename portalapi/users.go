package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	perrors "github.com/jrsteele09/admissions-portal/internal/errors"
)

// CurrentUser fetches the authenticated user record.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.getJSON(ctx, "users/me/", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateCurrentUser(ctx context.Context, update UserUpdate) (*User, error) {
	var u User
	if err := c.sendJSON(ctx, http.MethodPatch, "users/me/", nil, update, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ChangePassword(ctx context.Context, change PasswordChange) error {
	return c.sendJSON(ctx, http.MethodPut, "users/me/password/", nil, change, nil)
}

// ApplicantProfile fetches the applicant profile. Applicants without a
// profile get an *Error with status 404, see IsNotFound.
func (c *Client) ApplicantProfile(ctx context.Context) (*ApplicantProfile, error) {
	var p ApplicantProfile
	if err := c.getJSON(ctx, "users/profile/", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateApplicantProfile uploads a new profile. The response may carry a task id.
func (c *Client) CreateApplicantProfile(ctx context.Context, in ProfileInput) (*ApplicantProfile, error) {
	return c.sendProfile(ctx, http.MethodPost, in)
}

// UpdateApplicantProfile uploads changes to the profile. The response may carry a task id.
func (c *Client) UpdateApplicantProfile(ctx context.Context, in ProfileInput) (*ApplicantProfile, error) {
	return c.sendProfile(ctx, http.MethodPatch, in)
}

// TaskStatus polls a background job.
// TaskStatus fetches the state of a grade extraction task. An unknown task
// is an *Error wrapping ErrTaskNotFound.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	var status TaskStatus
	if err := c.getJSON(ctx, "users/task-status/", url.Values{"task_id": {taskID}}, &status); err != nil {
		if apiErr, ok := AsError(err); ok && apiErr.Status == http.StatusNotFound && apiErr.Err == nil {
			apiErr.Err = perrors.ErrTaskNotFound
		}
		return nil, err
	}
	return &status, nil
}

func (c *Client) Moderators(ctx context.Context) ([]StaffMember, error) {
	var out []StaffMember
	if err := c.getJSON(ctx, "users/moderators/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateModerator(ctx context.Context, in StaffInput) (*StaffMember, error) {
	var m StaffMember
	if err := c.sendJSON(ctx, http.MethodPost, "users/moderators/", nil, in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateModerator sends the id in the body, as the moderators endpoint expects.
func (c *Client) UpdateModerator(ctx context.Context, id int64, in StaffInput) (*StaffMember, error) {
	body := struct {
		ID int64 `json:"id"`
		StaffInput
	}{ID: id, StaffInput: in}

	var m StaffMember
	if err := c.sendJSON(ctx, http.MethodPatch, "users/moderators/", nil, body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DeleteModerator(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "users/moderators/", idQuery(id), nil, nil)
}

func (c *Client) OrganizationAdmins(ctx context.Context) ([]StaffMember, error) {
	var out []StaffMember
	if err := c.getJSON(ctx, "users/admin-org/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateOrganizationAdmin(ctx context.Context, in StaffInput) (*StaffMember, error) {
	var m StaffMember
	if err := c.sendJSON(ctx, http.MethodPost, "users/admin-org/", nil, in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) UpdateOrganizationAdmin(ctx context.Context, id int64, in StaffInput) (*StaffMember, error) {
	var m StaffMember
	if err := c.sendJSON(ctx, http.MethodPatch, fmt.Sprintf("users/admin-org/%d/", id), nil, in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DeleteOrganizationAdmin(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("users/admin-org/%d/", id), nil, nil, nil)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == http.StatusNotFound
}

func idQuery(id int64) url.Values {
	return url.Values{"id": {strconv.FormatInt(id, 10)}}
}

func (c *Client) sendProfile(ctx context.Context, method string, in ProfileInput) (*ApplicantProfile, error) {
	body, contentType, err := encodeProfile(in)
	if err != nil {
		return nil, &Error{Code: CodeServerError, Message: c.messages.Default(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint("users/profile/", nil), body)
	if err != nil {
		return nil, &Error{Code: CodeServerError, Message: c.messages.Default(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)

	var p ApplicantProfile
	if err := c.send(req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// encodeProfile writes the profile as multipart form data. Optional fields are
// omitted when empty and foreign languages are sent as a JSON array.
func encodeProfile(in ProfileInput) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	p := in.Profile

	fields := []struct {
		name     string
		value    string
		optional bool
	}{
		{"first_name", p.FirstName, false},
		{"last_name", p.LastName, false},
		{"middle_name", p.MiddleName, true},
		{"date_of_birth", p.DateOfBirth, false},
		{"citizenship", p.Citizenship, false},
		{"birth_place", p.BirthPlace, false},
		{"passport_series", p.PassportSeries, false},
		{"passport_number", p.PassportNumber, false},
		{"passport_issued_date", p.PassportIssuedDate, false},
		{"passport_issued_by", p.PassportIssuedBy, false},
		{"snils", p.Snils, false},
		{"registration_address", p.RegistrationAddress, false},
		{"actual_address", p.ActualAddress, false},
		{"phone", p.Phone, false},
		{"education_type", p.EducationType, false},
		{"education_institution", p.EducationInstitution, false},
		{"graduation_year", intText(p.GraduationYear), true},
		{"document_type", p.DocumentType, false},
		{"document_series", p.DocumentSeries, false},
		{"document_number", p.DocumentNumber, false},
		{"average_grade", floatText(p.AverageGrade), true},
		{"additional_info", p.AdditionalInfo, true},
		{"mother_full_name", p.MotherFullName, false},
		{"mother_workplace", p.MotherWorkplace, false},
		{"mother_phone", p.MotherPhone, false},
		{"father_full_name", p.FatherFullName, false},
		{"father_workplace", p.FatherWorkplace, false},
		{"father_phone", p.FatherPhone, false},
	}
	for _, f := range fields {
		if f.optional && f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if len(p.ForeignLanguages) > 0 {
		langs, err := json.Marshal(p.ForeignLanguages)
		if err != nil {
			return nil, "", err
		}
		if err := w.WriteField("foreign_languages", string(langs)); err != nil {
			return nil, "", err
		}
	}

	uploads := []struct {
		name   string
		upload *Upload
	}{
		{"photo", in.Photo},
		{"attestation_photo", in.AttestationPhoto},
	}
	for _, u := range uploads {
		upload := u.upload
		if upload == nil || upload.Content == nil {
			continue
		}
		part, err := w.CreateFormFile(u.name, upload.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, upload.Content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func intText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatText(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
