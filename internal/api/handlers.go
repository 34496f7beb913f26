package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/minislack/minislack/internal/database"
	"github.com/minislack/minislack/internal/server"
	"github.com/minislack/minislack/internal/types"
)

type CreateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type CreateChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
	CreatedBy   *int   `json:"created_by"`
}

type PostMessageRequest struct {
	Content string `json:"content"`
	UserId  int    `json:"user_id"`
}

type UpdateMessageRequest struct {
	Content string `json:"content"`
}

type AddReactionRequest struct {
	UserId int    `json:"user_id"`
	Emoji  string `json:"emoji"`
}

func (s *App) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

// apiError maps the core error taxonomy onto HTTP status codes: missing
// fields and duplicates are 400, missing rows are 404, everything else is
// an opaque 500.
func (s *App) apiError(err error) *ApiError {
	switch {
	case errors.Is(err, server.ErrInvalidInput):
		return NewBadRequestError()
	case errors.Is(err, database.ErrDuplicate):
		return NewBadRequestError()
	case errors.Is(err, database.ErrNotFound):
		return NewNotFoundError()
	default:
		return NewInternalServerError(err)
	}
}

func pathId(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}

func (s *App) home(w http.ResponseWriter, _ *http.Request) {
	s.writeJson(w, http.StatusOK, map[string]any{
		"message": "minislack API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"users":    "/api/users",
			"channels": "/api/channels",
			"messages": "/api/channels/{id}/messages",
		},
	})
}

func (s *App) healthCheck(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Write([]byte("OK"))
}

func (s *App) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Username == "" || req.Email == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	newUser, err := s.db.CreateUser(database.CreateUserParams{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		errResp := s.apiError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, s.toUser(newUser))
}

func (s *App) getUsers(w http.ResponseWriter, _ *http.Request) {
	dbUsers, err := s.db.GetUsers()
	if err != nil {
		errResp := s.apiError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	users := make([]types.User, 0, len(dbUsers))
	for _, u := range dbUsers {
		users = append(users, s.toUser(u))
	}

	s.writeJson(w, http.StatusOK, users)
}

// login is a non-authenticating lookup: both fields must match an
// existing row exactly, nothing is verified beyond equality.
func (s *App) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Username == "" || req.Email == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := s.db.FindUserByUsernameEmail(req.Username, req.Email)
	if err != nil {
		errResp := s.apiError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, s.toUser(dbUser))
}

func (s *App) createChannel(w http.ResponseWriter, r *http.Request) {
	var req CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	channel, err := s.cs.CreateChannel(database.CreateChannelParams{
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		errResp := s.apiError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, channel)
}

func (s *App) getChannels(w http.ResponseWriter, _ *http.Request) {
	dbChannels, err := s.db.GetChannels()
	if err != nil {
		errResp := s.apiError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	channels := make([]types.Channel, 0, len(dbChannels))
	for _, c := range dbChannels {
		channels = append(channels, toChannel(c))
	}

	s.writeJson(w, http.StatusOK, channels)
}

func (s *App) getChannel(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbChannel, err := s.db.GetChannel(id)
	if err != nil {
		errResp := s.apiError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, toChannel(dbChannel))
}

func (s *App) deleteChannel(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	deleted, err := s.cs.RemoveChannel(id)
	if err != nil {
		s.log.Println("delete channel:", err)
		errResp := s.apiError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]any{
		"message":         "channel deleted",
		"deleted_channel": deleted,
	})
}

func (s *App) getMessages(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbMessages, err := s.db.GetMessages(id)
	if err != nil {
		errResp := s.apiError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages := make([]types.Message, 0, len(dbMessages))
	for _, m := range dbMessages {
		messages = append(messages, toMessage(m))
	}

	s.writeJson(w, http.StatusOK, messages)
}

func (s *App) postMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msg, err := s.cs.PostMessage(id, req.UserId, req.Content)
	if err != nil {
		errResp := s.apiError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, msg)
}

func (s *App) updateMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UpdateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msg, err := s.cs.EditMessage(id, req.Content)
	if err != nil {
		errResp := s.apiError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, msg)
}

func (s *App) deleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.cs.RemoveMessage(id); err != nil {
		errResp := s.apiError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"message": "message deleted"})
}

func (s *App) addReaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req AddReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	reaction, err := s.cs.AddReaction(id, req.UserId, req.Emoji)
	if err != nil {
		errResp := s.apiError(err)
		if errors.Is(err, database.ErrDuplicate) {
			errResp.Message = "reaction already exists"
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, reaction)
}

func (s *App) getReactions(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	reactions, err := s.cs.Reactions(id)
	if err != nil {
		errResp := s.apiError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, reactions)
}

func (s *App) deleteReaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.cs.RemoveReaction(id); err != nil {
		errResp := s.apiError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"message": "reaction deleted"})
}

func (s *App) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client, err := server.NewClient(conn, s.cs, s.log)
	if err != nil {
		s.log.Println("error creating client:", err)
		conn.Close()
		return
	}

	s.cs.RegisterClient(client)
	go client.Write()
	go client.Read()
}

func (s *App) toUser(u database.User) types.User {
	return types.User{
		Id:          u.Id,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Status:      types.UserStatus(u.Status),
		IsOnline:    s.cs.IsOnline(u.Id),
	}
}

func toChannel(c database.Channel) types.Channel {
	channel := types.Channel{
		Id:          c.Id,
		Name:        c.Name,
		Description: c.Description,
		IsPrivate:   c.IsPrivate,
		CreatedAt:   types.NewTimestamp(c.CreatedAt),
	}

	if c.CreatedBy.Valid {
		createdBy := int(c.CreatedBy.Int64)
		channel.CreatedBy = &createdBy
	}
	if c.CreatorName.Valid {
		channel.CreatorName = c.CreatorName.String
	}

	return channel
}

func toMessage(m database.Message) types.Message {
	return types.Message{
		Id:          m.Id,
		ChannelId:   m.ChannelId,
		UserId:      m.UserId,
		Content:     m.Content,
		IsEdited:    m.IsEdited,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		CreatedAt:   types.NewTimestamp(m.CreatedAt),
	}
}
