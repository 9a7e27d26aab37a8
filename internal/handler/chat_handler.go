/*
Package handler provides the HTTP handlers and routing setup for the chat backend.

This file contains the REST surface over the message log: sending into a
conversation, reading paginated history, and deleting single messages. The path
id of the send and history endpoints may name either a peer user (the pairwise
conversation id is derived) or a conversation id directly.
*/
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mountain-chan/security-chat-backend/internal/app/chat"
	"github.com/mountain-chan/security-chat-backend/internal/app/store"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/auth/jwt"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/errs"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/logx"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/req"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/resp"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

type SendMessageInput struct {
	Message string `json:"message"`
}

// HandleSendMessage appends a message to a conversation. When the path id names
// a registered user, the pairwise conversation with the caller is used and its
// record is materialized on first contact.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input SendMessageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if input.Message == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageContentEmpty))
			return
		}

		conversationID, customErr := resolveConversationID(r, deps, payload.Identity, true)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		msg, err := deps.Messages.Append(r.Context(), conversationID, payload.Identity, input.Message)
		if err != nil {
			logx.Error(err, "failed to append message", "conversation_id", conversationID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorage))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message_id": msg.ID,
		})
	}
}

// HandleGetMessages returns one page of a conversation's history, newest-first.
func HandleGetMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		page, pageSize, customErr := parsePagination(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		conversationID, customErr := resolveConversationID(r, deps, payload.Identity, false)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		messages, err := deps.Messages.ListByConversation(r.Context(), conversationID, page, pageSize)
		if err != nil {
			if errors.Is(err, store.ErrInvalidPage) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPagination))
				return
			}
			logx.Error(err, "failed to list messages", "conversation_id", conversationID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorage))
			return
		}

		resp.RespondSuccess(w, r, messages)
	}
}

// HandleDeleteMessage removes a single message by id; a missing id is reported
// as not found.
func HandleDeleteMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		messageID := chi.URLParam(r, "id")
		if messageID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if err := deps.Messages.Delete(r.Context(), messageID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrMessageNotFound))
				return
			}
			logx.Error(err, "failed to delete message", "message_id", messageID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorage))
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}

// resolveConversationID interprets the path id: a registered user id resolves
// to the pairwise conversation with the caller, anything else is taken as a
// conversation id directly. When ensure is set, the pairwise conversation
// record is materialized on first contact.
func resolveConversationID(r *http.Request, deps *AppDeps, callerID string, ensure bool) (string, *errs.CustomError) {
	pathID := chi.URLParam(r, "id")
	if pathID == "" {
		return "", errs.NewError(errs.ErrInvalidParams)
	}

	isUser, err := deps.Users.Exists(r.Context(), pathID)
	if err != nil {
		logx.Error(err, "failed to look up path id", "id", pathID)
		return "", errs.NewError(errs.ErrStorage)
	}
	if !isUser {
		return pathID, nil
	}

	conversationID, customErr := chat.ConversationID(callerID, pathID)
	if customErr != nil {
		return "", customErr
	}

	if ensure {
		if err := deps.Messages.EnsureConversation(r.Context(), conversationID); err != nil {
			logx.Error(err, "failed to ensure conversation", "conversation_id", conversationID)
			return "", errs.NewError(errs.ErrStorage)
		}
	}

	return conversationID, nil
}

// parsePagination reads page/page_size query parameters with the original
// backend's defaults of page 1, size 10.
func parsePagination(r *http.Request) (int, int, *errs.CustomError) {
	page := defaultPage
	pageSize := defaultPageSize

	if raw := r.URL.Query().Get("page"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errs.NewError(errs.ErrInvalidPagination)
		}
		page = val
	}

	if raw := r.URL.Query().Get("page_size"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errs.NewError(errs.ErrInvalidPagination)
		}
		pageSize = val
	}

	if page <= 0 || pageSize <= 0 {
		return 0, 0, errs.NewError(errs.ErrInvalidPagination)
	}

	return page, pageSize, nil
}
