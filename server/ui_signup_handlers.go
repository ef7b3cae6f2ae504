package server

import (
	"net/http"

	"github.com/jrsteele09/admissions-portal/forms"
	"github.com/rs/zerolog/log"
)

// RegisterGetHandler renders the applicant registration page
func (s *Server) RegisterGetHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("register.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPublicPage(w, r, "Регистрация", tmpl, nil)
	}
}

// RegisterPostHandler creates the account. The backend sends the
// verification email; the user signs in once the address is confirmed.
func (s *Server) RegisterPostHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("register.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := forms.RegisterFrom(r.PostForm)

		render := func(data pageData) {
			data["Email"] = form.Email
			s.renderPublicPage(w, r, "Регистрация", tmpl, data)
		}

		if err := s.validator.Check(form); err != nil {
			render(formErrorData(err))
			return
		}
		if err := browserFrom(r).API.Register(r.Context(), form.Request()); err != nil {
			log.Info().Err(err).Str("email", form.Email).Msg("Registration failed")
			render(pageData{"Error": s.userMessage(err)})
			return
		}

		redirectWithNotice(w, r, withQuery(RouteLogin, "email", form.Email), "Регистрация прошла успешно. Подтвердите email по ссылке из письма.")
	}
}

// VerifyEmailHandler confirms the address from the emailed link
func (s *Server) VerifyEmailHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("verify_email.html")
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		data := pageData{}
		switch {
		case token == "":
			data["Error"] = "Ссылка подтверждения недействительна"
		default:
			if err := browserFrom(r).API.VerifyEmail(r.Context(), token); err != nil {
				log.Info().Err(err).Msg("Email verification failed")
				data["Error"] = s.userMessage(err)
			} else {
				data["Verified"] = true
			}
		}
		s.renderPublicPage(w, r, "Подтверждение email", tmpl, data)
	}
}

// InstitutionApplyGetHandler renders the institution onboarding form. The
// payment provider returns the user here with paid=1.
func (s *Server) InstitutionApplyGetHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("institutions_apply.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPublicPage(w, r, "Подключение учебного заведения", tmpl, pageData{
			"Paid": r.URL.Query().Get("paid") == "1",
		})
	}
}

// InstitutionApplyPostHandler submits the application and hands the user
// over to the payment provider.
func (s *Server) InstitutionApplyPostHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("institutions_apply.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := forms.InstitutionApplicationFrom(r.PostForm)

		render := func(data pageData) {
			data["Form"] = form
			s.renderPublicPage(w, r, "Подключение учебного заведения", tmpl, data)
		}

		if err := s.validator.Check(form); err != nil {
			render(formErrorData(err))
			return
		}

		api := browserFrom(r).API
		returnURL := getScheme(r) + "://" + r.Host + RouteInstitutionsApply + "?paid=1"
		req := form.Request(returnURL)

		if err := api.ApplyOrganization(r.Context(), req); err != nil {
			log.Info().Err(err).Str("institution", form.InstitutionName).Msg("Institution application failed")
			render(pageData{"Error": s.userMessage(err)})
			return
		}

		payment, err := api.InitiatePayment(r.Context(), req)
		if err != nil {
			log.Warn().Err(err).Str("institution", form.InstitutionName).Msg("Payment initiation failed")
			render(pageData{"Error": s.userMessage(err)})
			return
		}
		if payment.PaymentURL == "" {
			redirectWithNotice(w, r, RouteInstitutionsApply, "Заявка отправлена. Мы свяжемся с вами по email.")
			return
		}
		redirectSuccess(w, r, payment.PaymentURL)
	}
}
