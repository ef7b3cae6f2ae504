package portalapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) Chats(ctx context.Context) ([]Chat, error) {
	var out []Chat
	if err := c.getJSON(ctx, "message/chats/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChatOrganizations lists the organizations an applicant may open a chat with.
func (c *Client) ChatOrganizations(ctx context.Context) ([]Organization, error) {
	var out []Organization
	if err := c.getJSON(ctx, "message/available-organizations/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateChat(ctx context.Context, organizationID int64) (*Chat, error) {
	body := struct {
		OrganizationID string `json:"organization_id"`
	}{OrganizationID: strconv.FormatInt(organizationID, 10)}

	var out Chat
	if err := c.sendJSON(ctx, http.MethodPost, "message/chats/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChatDetail(ctx context.Context, chatID int64) (*ChatDetail, error) {
	q := url.Values{"id": {strconv.FormatInt(chatID, 10)}}
	var out ChatDetail
	if err := c.getJSON(ctx, "message/chat-detail/", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, content string) (*Message, error) {
	body := struct {
		ChatID  string `json:"chat_id"`
		Content string `json:"content"`
	}{ChatID: strconv.FormatInt(chatID, 10), Content: content}

	var out Message
	if err := c.sendJSON(ctx, http.MethodPost, "message/chat-detail/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
