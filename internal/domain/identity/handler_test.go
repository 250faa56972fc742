package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichub/clinichub/internal/platform/auth"
)

func newHandlerEnv(t *testing.T) (*Handler, *testEnv) {
	t.Helper()
	env := newTestEnv()
	return NewHandler(env.svc), env
}

func newEchoCtx(method, path, body string, principal uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	ctx := context.WithValue(req.Context(), auth.UserIDKey, principal)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func TestRegisterCustomerEndpoint_Created(t *testing.T) {
	h, env := newHandlerEnv(t)

	body := `{"email":"jan@example.com","password":"secret","first_name":"Jan","last_name":"Novak","age":30}`
	c, rec := newEchoCtx(http.MethodPost, "/user/register/customer", body, uuid.Nil)

	if err := h.RegisterCustomer(c); err != nil {
		t.Fatalf("RegisterCustomer() error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var session Session
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if session.Role != auth.RoleCustomer {
		t.Errorf("role = %s, want %s", session.Role, auth.RoleCustomer)
	}
	if _, err := env.issuer.Parse(session.Token); err != nil {
		t.Errorf("returned token does not verify: %v", err)
	}
}

func TestRegisterCustomerEndpoint_MissingFieldsIs400(t *testing.T) {
	h, _ := newHandlerEnv(t)

	c, _ := newEchoCtx(http.MethodPost, "/user/register/customer",
		`{"email":"jan@example.com","password":"secret"}`, uuid.Nil)

	err := h.RegisterCustomer(c)
	if got := httpStatus(t, err); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}

func TestLoginEndpoint_WrongPasswordIs401(t *testing.T) {
	h, env := newHandlerEnv(t)
	env.registerClinic(t)

	c, _ := newEchoCtx(http.MethodPost, "/user/login",
		`{"email":"clinic@example.com","password":"wrong"}`, uuid.Nil)

	err := h.Login(c)
	if got := httpStatus(t, err); got != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", got)
	}
}

func TestRegisterDoctorEndpoint_DuplicateEmailIs400(t *testing.T) {
	h, env := newHandlerEnv(t)
	clinicID := env.registerClinic(t)

	body := `{"email":"doc@example.com","password":"secret","first_name":"Eva","last_name":"Svobodova","speciality":"cardiology"}`
	c, rec := newEchoCtx(http.MethodPost, "/clinic/doctor", body, clinicID)
	if err := h.RegisterDoctor(c); err != nil {
		t.Fatalf("first RegisterDoctor() error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	c, _ = newEchoCtx(http.MethodPost, "/clinic/doctor", body, clinicID)
	err := h.RegisterDoctor(c)
	if got := httpStatus(t, err); got != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate email, got %d", got)
	}
}

func TestClinicProfileEndpoint(t *testing.T) {
	h, env := newHandlerEnv(t)
	clinicID := env.registerClinic(t)

	c, rec := newEchoCtx(http.MethodGet, "/clinic", "", clinicID)
	if err := h.ClinicProfile(c); err != nil {
		t.Fatalf("ClinicProfile() error: %v", err)
	}

	var clinic Clinic
	if err := json.Unmarshal(rec.Body.Bytes(), &clinic); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if clinic.Name != "City Clinic" {
		t.Errorf("name = %q, want %q", clinic.Name, "City Clinic")
	}
}

func TestUpdateClinicProfileEndpoint_Merges(t *testing.T) {
	h, env := newHandlerEnv(t)
	clinicID := env.registerClinic(t)

	c, rec := newEchoCtx(http.MethodPost, "/clinic", `{"description":"open weekdays"}`, clinicID)
	if err := h.UpdateClinicProfile(c); err != nil {
		t.Fatalf("UpdateClinicProfile() error: %v", err)
	}

	var clinic Clinic
	if err := json.Unmarshal(rec.Body.Bytes(), &clinic); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if clinic.Name != "City Clinic" || clinic.Description != "open weekdays" {
		t.Errorf("unexpected merge result: %+v", clinic)
	}
}

func TestClinicDoctorEndpoint_ForeignIs404(t *testing.T) {
	h, env := newHandlerEnv(t)
	clinicID := env.registerClinic(t)

	session, err := env.svc.RegisterDoctor(context.Background(), clinicID, RegisterDoctorInput{
		Email: "doc@example.com", Password: "secret",
		FirstName: "Eva", LastName: "Svobodova", Speciality: "cardiology",
	})
	if err != nil {
		t.Fatalf("RegisterDoctor() error: %v", err)
	}
	claims, _ := env.issuer.Parse(session.Token)
	doctorID := claims.Subject

	c, _ := newEchoCtx(http.MethodGet, "/clinic/doctor/"+doctorID, "", uuid.New())
	c.SetParamNames("doctorId")
	c.SetParamValues(doctorID)

	err = h.ClinicDoctor(c)
	if got := httpStatus(t, err); got != http.StatusNotFound {
		t.Errorf("expected 404 for foreign doctor, got %d", got)
	}
}

func TestSearchClinicsEndpoint_Public(t *testing.T) {
	h, env := newHandlerEnv(t)
	env.registerClinic(t)

	c, rec := newEchoCtx(http.MethodGet, "/search/clinic", "", uuid.Nil)
	if err := h.SearchClinics(c); err != nil {
		t.Fatalf("SearchClinics() error: %v", err)
	}

	var resp struct {
		Data  []*Clinic `json:"data"`
		Total int       `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Errorf("expected one clinic, got total=%d items=%d", resp.Total, len(resp.Data))
	}
}
