package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jrsteele09/admissions-portal/forms"
	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/jrsteele09/admissions-portal/querycache"
	"github.com/jrsteele09/admissions-portal/roles"
	"github.com/rs/zerolog/log"
)

func chatPath(chatID int64) string {
	return fillPath(RouteMessageChat, chatID)
}

// ChatsHandler lists the chats of the user. Applicants also get the
// organizations they can start a chat with.
func (s *Server) ChatsHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("messages.html")

	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		api := browserFrom(r).API
		data := pageData{}

		chats, err := cached(r, querycache.KeyChats, api.Chats)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load chats")
			data["Error"] = s.userMessage(err)
		}
		data["Chats"] = chats

		if sess.Role == roles.Applicant {
			orgs, err := api.ChatOrganizations(r.Context())
			if err != nil {
				log.Warn().Err(err).Msg("Failed to load chat organizations")
			}
			data["Organizations"] = orgs
		}

		s.renderPage(w, r, RouteMessages, "Сообщения", tmpl, data)
	}
}

// ChatCreateHandler opens a chat between the applicant and an organization
func (s *Server) ChatCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionFrom(r).Role != roles.Applicant {
			redirectSuccess(w, r, RouteNotFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		orgID, err := strconv.ParseInt(r.PostForm.Get("organization_id"), 10, 64)
		if err != nil || orgID <= 0 {
			redirectWithError(w, r, RouteMessages, "Выберите учебное заведение")
			return
		}

		browser := browserFrom(r)
		chat, err := browser.API.CreateChat(r.Context(), orgID)
		if err != nil {
			log.Info().Err(err).Int64("organizationID", orgID).Msg("Failed to create chat")
			redirectWithError(w, r, RouteMessages, s.userMessage(err))
			return
		}
		browser.Queries.Invalidate(querycache.KeyChats)
		redirectSuccess(w, r, chatPath(chat.ID))
	}
}

// ChatDetailHandler shows one conversation. htmx requests get only the
// message list, which the page refreshes periodically.
func (s *Server) ChatDetailHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("chat.html")
	listTmpl := MustParseTemplate("chat_messages.html")

	return func(w http.ResponseWriter, r *http.Request) {
		chatID, ok := pathID(r, "chatId")
		if !ok {
			redirectSuccess(w, r, RouteNotFound)
			return
		}

		chat, err := browserFrom(r).API.ChatDetail(r.Context(), chatID)
		if err != nil {
			log.Info().Err(err).Int64("chatID", chatID).Msg("Failed to load chat")
			redirectWithError(w, r, RouteMessages, s.userMessage(err))
			return
		}

		data := pageData{
			"Chat":   chat,
			"UserID": sessionFrom(r).ID,
		}
		if isHTMXRequest(r) {
			s.renderFragment(w, r, listTmpl, data)
			return
		}
		s.renderPage(w, r, RouteMessages, chatTitle(chat), tmpl, data)
	}
}

// ChatSendHandler posts a message to a conversation
func (s *Server) ChatSendHandler() http.HandlerFunc {
	listTmpl := MustParseTemplate("chat_messages.html")

	return func(w http.ResponseWriter, r *http.Request) {
		chatID, ok := pathID(r, "chatId")
		if !ok {
			redirectSuccess(w, r, RouteNotFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := forms.ChatMessageFrom(r.PostForm)
		form.ChatID = chatID
		if err := s.validator.Check(form); err != nil {
			redirectWithError(w, r, chatPath(chatID), err.Error())
			return
		}

		browser := browserFrom(r)
		if _, err := browser.API.SendMessage(r.Context(), chatID, form.Content); err != nil {
			log.Info().Err(err).Int64("chatID", chatID).Msg("Failed to send message")
			redirectWithError(w, r, chatPath(chatID), s.userMessage(err))
			return
		}
		browser.Queries.Invalidate(querycache.KeyChats)

		if !isHTMXRequest(r) {
			redirectSuccess(w, r, chatPath(chatID))
			return
		}
		chat, err := browser.API.ChatDetail(r.Context(), chatID)
		if err != nil {
			redirectSuccess(w, r, chatPath(chatID))
			return
		}
		s.renderFragment(w, r, listTmpl, pageData{"Chat": chat, "UserID": sessionFrom(r).ID})
	}
}

func chatTitle(chat *portalapi.ChatDetail) string {
	if chat.Organization == nil || chat.Organization.Name == "" {
		return "Чат"
	}
	return fmt.Sprintf("Чат: %s", chat.Organization.Name)
}

// pathID reads a positive numeric path value
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
