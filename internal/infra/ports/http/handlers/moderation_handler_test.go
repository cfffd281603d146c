package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/LetzTalk/internal/domain/input"
	"github.com/qrave1/LetzTalk/internal/domain/models"
	"github.com/qrave1/LetzTalk/internal/infra/appctx"
	"github.com/qrave1/LetzTalk/internal/usecase"
)

type fakeModeration struct {
	reportIn *input.ReportInput
	blockIn  *input.BlockInput
	existing bool
	err      error
}

func (f *fakeModeration) Report(_ context.Context, in *input.ReportInput) (*models.Report, error) {
	f.reportIn = in
	if f.err != nil {
		return nil, f.err
	}

	return models.NewReport(in.ReporterID, in.ReportedUserID, in.ReportedConnectionID, in.Reason, in.RoomID), nil
}

func (f *fakeModeration) Block(_ context.Context, in *input.BlockInput) (*models.Block, bool, error) {
	f.blockIn = in
	if f.err != nil {
		return nil, false, f.err
	}

	return models.NewBlock(in.BlockerID, in.BlockedUserID, in.BlockedConnectionID), !f.existing, nil
}

func moderationRequest(t *testing.T, handler echo.HandlerFunc, userID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	if userID != uuid.Nil {
		req = req.WithContext(appctx.WithUserID(req.Context(), userID))
	}

	rec := httptest.NewRecorder()
	require.NoError(t, handler(echo.New().NewContext(req, rec)))

	return rec
}

func TestModerationHandler_Report(t *testing.T) {
	fake := &fakeModeration{}
	h := NewModerationHandler(fake)
	reporter, reported := uuid.New(), uuid.New()

	rec := moderationRequest(t, h.ReportHandler, reporter,
		`{"reportedUserId":"`+reported.String()+`","reportedConnectionId":"c1","reason":"spam","roomId":"r1"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, fake.reportIn)
	assert.Equal(t, reporter, fake.reportIn.ReporterID)
	assert.Equal(t, reported, fake.reportIn.ReportedUserID.UUID)
	assert.Equal(t, "c1", fake.reportIn.ReportedConnectionID)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestModerationHandler_Errors(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		userID     uuid.UUID
		body       string
		err        error
		wantStatus int
	}{
		{name: "no identity", userID: uuid.Nil, body: `{}`, wantStatus: http.StatusUnauthorized},
		{name: "bad user id", userID: userID, body: `{"reportedUserId":"nope"}`, wantStatus: http.StatusBadRequest},
		{name: "no target", userID: userID, body: `{}`, err: usecase.ErrTargetRequired, wantStatus: http.StatusBadRequest},
		{name: "store failure", userID: userID, body: `{"reportedConnectionId":"c"}`, err: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewModerationHandler(&fakeModeration{err: tt.err})

			rec := moderationRequest(t, h.ReportHandler, tt.userID, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestModerationHandler_Block(t *testing.T) {
	fake := &fakeModeration{}
	h := NewModerationHandler(fake)
	blocker := uuid.New()

	rec := moderationRequest(t, h.BlockHandler, blocker, `{"blockedConnectionId":"c2"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, fake.blockIn)
	assert.Equal(t, blocker, fake.blockIn.BlockerID)
	assert.False(t, fake.blockIn.BlockedUserID.Valid)
	assert.Equal(t, "c2", fake.blockIn.BlockedConnectionID)
}

func TestModerationHandler_RepeatBlockIsOK(t *testing.T) {
	h := NewModerationHandler(&fakeModeration{existing: true})

	rec := moderationRequest(t, h.BlockHandler, uuid.New(), `{"blockedUserId":"`+uuid.NewString()+`"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}
