package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"messages-service/internal/domain"
	"messages-service/internal/service"
	"messages-service/internal/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(repo domain.MessageRepository) http.Handler {
	h := NewMessageHandler(service.NewMessageService(repo))

	r := chi.NewRouter()
	r.Post("/messages", h.Create)
	r.Get("/messages", h.List)
	r.Get("/messages/{id}", h.Get)
	r.Put("/messages/{id}", h.Update)
	r.Delete("/messages/{id}", h.Delete)
	return r
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMessageHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "valid", body: `{"message_text":"Hello"}`, wantStatus: http.StatusCreated},
		{name: "max_length", body: `{"message_text":"` + strings.Repeat("a", 255) + `"}`, wantStatus: http.StatusCreated},
		{name: "too_long", body: `{"message_text":"` + strings.Repeat("a", 256) + `"}`, wantStatus: http.StatusBadRequest, wantError: domain.MsgTextTooLong},
		{name: "empty", body: `{"message_text":""}`, wantStatus: http.StatusBadRequest, wantError: domain.MsgTextRequired},
		{name: "whitespace", body: `{"message_text":"   "}`, wantStatus: http.StatusBadRequest, wantError: domain.MsgTextRequired},
		{name: "missing_field", body: `{}`, wantStatus: http.StatusBadRequest, wantError: domain.MsgTextRequired},
		{name: "empty_body", body: ``, wantStatus: http.StatusBadRequest, wantError: domain.MsgTextRequired},
		{name: "malformed_json", body: `{"message_text":`, wantStatus: http.StatusBadRequest, wantError: "Invalid request body"},
		{name: "wrong_type", body: `{"message_text":42}`, wantStatus: http.StatusBadRequest, wantError: "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockMessageRepository()
			router := newTestRouter(repo)

			w := serve(router, testutil.NewRawRequest(http.MethodPost, "/messages", tt.body))

			if tt.wantError != "" {
				testutil.AssertJSONError(t, w, tt.wantStatus, tt.wantError)
				assert.Zero(t, repo.CallCount("Create"))
				return
			}
			testutil.AssertStatusCode(t, w, tt.wantStatus)
			msg := testutil.DecodeJSON[domain.Message](t, w)
			assert.Positive(t, msg.ID)
			assert.False(t, msg.CreatedAt.IsZero())
		})
	}
}

func TestMessageHandler_Create_TrimsText(t *testing.T) {
	router := newTestRouter(testutil.NewMockMessageRepository())

	w := serve(router, testutil.NewJSONRequest(t, http.MethodPost, "/messages", map[string]string{"message_text": "  Hello  "}))

	testutil.AssertStatusCode(t, w, http.StatusCreated)
	msg := testutil.DecodeJSON[domain.Message](t, w)
	assert.Equal(t, "Hello", msg.MessageText)
}

func TestMessageHandler_Create_StoreFailureIsGeneric(t *testing.T) {
	repo := testutil.NewMockMessageRepository()
	repo.CreateFunc = func(ctx context.Context, text string) (*domain.Message, error) {
		return nil, domain.ErrConnection
	}
	router := newTestRouter(repo)

	w := serve(router, testutil.NewRawRequest(http.MethodPost, "/messages", `{"message_text":"Hello"}`))

	testutil.AssertJSONError(t, w, http.StatusInternalServerError, "Failed to create message")
	assert.NotContains(t, w.Body.String(), "database")
}

func TestMessageHandler_List(t *testing.T) {
	t.Run("empty_array", func(t *testing.T) {
		router := newTestRouter(testutil.NewMockMessageRepository())

		w := serve(router, httptest.NewRequest(http.MethodGet, "/messages", nil))

		testutil.AssertStatusCode(t, w, http.StatusOK)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("insertion_order", func(t *testing.T) {
		repo := testutil.NewMockMessageRepository()
		repo.Seed(testutil.NewTestMessages(3)...)
		router := newTestRouter(repo)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/messages", nil))

		testutil.AssertStatusCode(t, w, http.StatusOK)
		messages := testutil.DecodeJSON[[]domain.Message](t, w)
		require.Len(t, messages, 3)
		assert.Equal(t, int64(1), messages[0].ID)
		assert.Equal(t, int64(3), messages[2].ID)
	})

	t.Run("store_failure", func(t *testing.T) {
		repo := testutil.NewMockMessageRepository()
		repo.FindAllFunc = func(ctx context.Context) ([]*domain.Message, error) {
			return nil, domain.ErrStore
		}
		router := newTestRouter(repo)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/messages", nil))

		testutil.AssertJSONError(t, w, http.StatusInternalServerError, "Failed to fetch messages")
	})
}

func TestMessageHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := testutil.NewMockMessageRepository()
		repo.Seed(testutil.NewTestMessage(testutil.WithMessageID(1), testutil.WithMessageText("Hello")))
		router := newTestRouter(repo)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/messages/1", nil))

		testutil.AssertStatusCode(t, w, http.StatusOK)
		msg := testutil.DecodeJSON[domain.Message](t, w)
		assert.Equal(t, int64(1), msg.ID)
		assert.Equal(t, "Hello", msg.MessageText)
	})

	t.Run("empty_table_info_body", func(t *testing.T) {
		router := newTestRouter(testutil.NewMockMessageRepository())

		w := serve(router, httptest.NewRequest(http.MethodGet, "/messages/1", nil))

		testutil.AssertJSONMessage(t, w, http.StatusOK, "No messages found in the database.")
	})

	t.Run("not_found", func(t *testing.T) {
		repo := testutil.NewMockMessageRepository()
		repo.Seed(testutil.NewTestMessage(testutil.WithMessageID(1)))
		router := newTestRouter(repo)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/messages/999", nil))

		testutil.AssertJSONError(t, w, http.StatusNotFound, "Message with ID 999 not found.")
	})

	t.Run("store_failure", func(t *testing.T) {
		repo := testutil.NewMockMessageRepository()
		repo.CountFunc = func(ctx context.Context) (int64, error) {
			return 0, domain.ErrStore
		}
		router := newTestRouter(repo)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/messages/1", nil))

		testutil.AssertJSONError(t, w, http.StatusInternalServerError, "Failed to fetch message")
	})
}

func TestMessageHandler_InvalidIDs(t *testing.T) {
	ids := []struct {
		raw     string
		wantMsg string
	}{
		{raw: "abc", wantMsg: domain.MsgIDInvalid},
		{raw: "12abc", wantMsg: domain.MsgIDInvalid},
		{raw: "1.5", wantMsg: domain.MsgIDInvalid},
		{raw: "0", wantMsg: domain.MsgIDNotPositive},
		{raw: "-3", wantMsg: domain.MsgIDNotPositive},
	}
	methods := []string{http.MethodGet, http.MethodPut, http.MethodDelete}

	for _, method := range methods {
		for _, id := range ids {
			t.Run(method+"_"+id.raw, func(t *testing.T) {
				repo := testutil.NewMockMessageRepository()
				router := newTestRouter(repo)

				w := serve(router, testutil.NewRawRequest(method, "/messages/"+id.raw, `{"message_text":"x"}`))

				testutil.AssertJSONError(t, w, http.StatusBadRequest, id.wantMsg)
				assert.Zero(t, repo.CallCount("FindByID"))
				assert.Zero(t, repo.CallCount("Count"))
			})
		}
	}
}

func TestMessageHandler_Update(t *testing.T) {
	t.Run("updates_text", func(t *testing.T) {
		repo := testutil.NewMockMessageRepository()
		original := testutil.NewTestMessage(testutil.WithMessageID(1), testutil.WithMessageText("Hello"))
		repo.Seed(original)
		router := newTestRouter(repo)

		w := serve(router, testutil.NewRawRequest(http.MethodPut, "/messages/1", `{"message_text":" Hi "}`))

		testutil.AssertStatusCode(t, w, http.StatusOK)
		msg := testutil.DecodeJSON[domain.Message](t, w)
		assert.Equal(t, "Hi", msg.MessageText)
		assert.True(t, msg.UpdatedAt.After(original.UpdatedAt))
	})

	t.Run("body_validation", func(t *testing.T) {
		tests := []struct {
			name    string
			body    string
			wantMsg string
		}{
			{name: "missing_field", body: `{}`, wantMsg: domain.MsgTextMissing},
			{name: "null_field", body: `{"message_text":null}`, wantMsg: domain.MsgTextMissing},
			{name: "empty", body: `{"message_text":""}`, wantMsg: domain.MsgTextEmpty},
			{name: "too_long", body: `{"message_text":"` + strings.Repeat("z", 256) + `"}`, wantMsg: domain.MsgTextTooLong},
			{name: "malformed", body: `not json`, wantMsg: "Invalid request body"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := testutil.NewMockMessageRepository()
				repo.Seed(testutil.NewTestMessage(testutil.WithMessageID(1)))
				router := newTestRouter(repo)

				w := serve(router, testutil.NewRawRequest(http.MethodPut, "/messages/1", tt.body))

				testutil.AssertJSONError(t, w, http.StatusBadRequest, tt.wantMsg)
				assert.Zero(t, repo.CallCount("Save"))
			})
		}
	})

	t.Run("not_found", func(t *testing.T) {
		router := newTestRouter(testutil.NewMockMessageRepository())

		w := serve(router, testutil.NewRawRequest(http.MethodPut, "/messages/7", `{"message_text":"x"}`))

		testutil.AssertJSONError(t, w, http.StatusNotFound, "Message with ID 7 not found.")
	})

	t.Run("store_failure", func(t *testing.T) {
		repo := testutil.NewMockMessageRepository()
		repo.Seed(testutil.NewTestMessage(testutil.WithMessageID(1)))
		repo.SaveFunc = func(ctx context.Context, message *domain.Message) (*domain.Message, error) {
			return nil, domain.ErrStore
		}
		router := newTestRouter(repo)

		w := serve(router, testutil.NewRawRequest(http.MethodPut, "/messages/1", `{"message_text":"x"}`))

		testutil.AssertJSONError(t, w, http.StatusInternalServerError, "Failed to update message")
	})
}

func TestMessageHandler_Delete(t *testing.T) {
	t.Run("confirmation", func(t *testing.T) {
		repo := testutil.NewMockMessageRepository()
		repo.Seed(testutil.NewTestMessage(testutil.WithMessageID(4)))
		router := newTestRouter(repo)

		w := serve(router, httptest.NewRequest(http.MethodDelete, "/messages/4", nil))

		testutil.AssertJSONMessage(t, w, http.StatusOK, "Message with ID 4 deleted successfully.")
		_, err := repo.FindByID(context.Background(), 4)
		assert.ErrorIs(t, err, domain.ErrMessageNotFound)
	})

	t.Run("not_found", func(t *testing.T) {
		router := newTestRouter(testutil.NewMockMessageRepository())

		w := serve(router, httptest.NewRequest(http.MethodDelete, "/messages/4", nil))

		testutil.AssertJSONError(t, w, http.StatusNotFound, "Message with ID 4 not found.")
	})

	t.Run("store_failure", func(t *testing.T) {
		repo := testutil.NewMockMessageRepository()
		repo.Seed(testutil.NewTestMessage(testutil.WithMessageID(4)))
		repo.RemoveFunc = func(ctx context.Context, message *domain.Message) error {
			return domain.ErrStore
		}
		router := newTestRouter(repo)

		w := serve(router, httptest.NewRequest(http.MethodDelete, "/messages/4", nil))

		testutil.AssertJSONError(t, w, http.StatusInternalServerError, "Failed to delete message")
	})
}
